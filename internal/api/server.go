// Package api exposes the analytics over HTTP. It validates and decodes
// request parameters at the boundary, hands validated values to the
// analyzer, and serializes results — no pricing logic lives here.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/schema"

	"github.com/contactkeval/option-surface/internal/analyzer"
	"github.com/contactkeval/option-surface/internal/data"
	"github.com/contactkeval/option-surface/internal/logger"
	"github.com/contactkeval/option-surface/internal/pricing"
)

// Server routes pricing, analysis and surface requests.
type Server struct {
	an      *analyzer.Analyzer
	router  *mux.Router
	decoder *schema.Decoder
}

// NewServer wires the routes onto a fresh router.
func NewServer(an *analyzer.Analyzer) *Server {
	s := &Server{
		an:      an,
		router:  mux.NewRouter(),
		decoder: schema.NewDecoder(),
	}
	s.decoder.IgnoreUnknownKeys(true)

	s.router.HandleFunc("/analyze", s.handleAnalyze).Methods(http.MethodPost)
	s.router.HandleFunc("/api/price", s.handlePrice).Methods(http.MethodGet)
	s.router.HandleFunc("/api/surface-data", s.handleSurface).Methods(http.MethodPost)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	return s
}

// Router returns the http.Handler for the server.
func (s *Server) Router() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// analyzeForm mirrors the browser form fields.
type analyzeForm struct {
	Ticker       string   `schema:"ticker,required"`
	StrikePrice  float64  `schema:"strike_price,required"`
	DaysToExpiry float64  `schema:"days_to_expiration"`
	MarketPrice  float64  `schema:"market_price"`
	OptionType   string   `schema:"option_type,required"`
	Volatility   float64  `schema:"volatility"`
	Spot         float64  `schema:"spot_price"`
	RiskFreeRate *float64 `schema:"risk_free_rate"`
	Lookback     int      `schema:"lookback_days"`
}

func (f analyzeForm) request() (analyzer.Request, error) {
	typ, err := pricing.ParseOptionType(f.OptionType)
	if err != nil {
		return analyzer.Request{}, err
	}
	return analyzer.Request{
		Ticker:       f.Ticker,
		Strike:       f.StrikePrice,
		DaysToExpiry: f.DaysToExpiry,
		MarketPrice:  f.MarketPrice,
		Type:         typ,
		Spot:         f.Spot,
		Vol:          f.Volatility,
		Rate:         f.RiskFreeRate,
		LookbackDays: f.Lookback,
	}, nil
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var form analyzeForm
	if !s.decodeForm(w, r, &form) {
		return
	}
	// Expiry is required here but not on the surface endpoint, which
	// defaults it from the time horizon, so the tag cannot carry this.
	if !r.PostForm.Has("days_to_expiration") {
		s.writeError(w, &pricing.ValidationError{Field: "days_to_expiration", Reason: "missing required field"})
		return
	}
	req, err := form.request()
	if err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.an.AnalyzeOption(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// handlePrice serves a single-point computation from query parameters.
func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	var form analyzeForm
	if err := s.decoder.Decode(&form, r.URL.Query()); err != nil {
		s.writeError(w, &pricing.ValidationError{Field: "query", Reason: err.Error()})
		return
	}
	if !r.URL.Query().Has("days_to_expiration") {
		s.writeError(w, &pricing.ValidationError{Field: "days_to_expiration", Reason: "missing required field"})
		return
	}
	req, err := form.request()
	if err != nil {
		s.writeError(w, err)
		return
	}
	req.MarketPrice = 0 // pricing only, no comparison

	res, err := s.an.AnalyzeOption(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// surfaceForm adds the grid controls to the contract fields.
type surfaceForm struct {
	analyzeForm
	PriceRangePct float64 `schema:"price_range_pct"`
	TimeHorizon   float64 `schema:"time_horizon"`
	NumPrices     int     `schema:"num_price_points"`
	NumTimes      int     `schema:"num_time_points"`
}

func (s *Server) handleSurface(w http.ResponseWriter, r *http.Request) {
	// Grid defaults: half the spot either side, one year out, 50x30.
	form := surfaceForm{
		PriceRangePct: 0.5,
		TimeHorizon:   1.0,
		NumPrices:     50,
		NumTimes:      30,
	}
	if !s.decodeForm(w, r, &form) {
		return
	}
	if form.DaysToExpiry == 0 {
		form.DaysToExpiry = form.TimeHorizon * 365
	}
	req, err := form.request()
	if err != nil {
		s.writeError(w, err)
		return
	}

	surf, err := s.an.Surface(req, form.PriceRangePct, form.TimeHorizon, form.NumPrices, form.NumTimes)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, surf)
}

// decodeForm parses and decodes a POST form, writing the error response
// itself on failure.
func (s *Server) decodeForm(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := r.ParseForm(); err != nil {
		s.writeError(w, &pricing.ValidationError{Field: "form", Reason: err.Error()})
		return false
	}
	if err := s.decoder.Decode(dst, r.PostForm); err != nil {
		s.writeError(w, &pricing.ValidationError{Field: "form", Reason: err.Error()})
		return false
	}
	return true
}

// apiError is the wire shape of every failure response.
type apiError struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

// writeError maps the error taxonomy onto HTTP statuses and a stable
// machine-readable kind.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	kind, status := classify(err)
	logger.Debugf("request failed (%s): %v", kind, err)

	var body apiError
	body.Error.Kind = kind
	body.Error.Message = err.Error()
	writeJSON(w, status, body)
}

func classify(err error) (kind string, status int) {
	var verr *pricing.ValidationError
	var qerr *pricing.InvalidQuoteError
	var cerr *pricing.ConvergenceError
	switch {
	case errors.As(err, &verr):
		return "validation", http.StatusBadRequest
	case errors.As(err, &qerr):
		return "invalid_quote", http.StatusUnprocessableEntity
	case errors.As(err, &cerr):
		return "no_convergence", http.StatusUnprocessableEntity
	case errors.Is(err, data.ErrUnavailable):
		return "data_unavailable", http.StatusBadGateway
	default:
		return "internal", http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("encoding response: %v", err)
	}
}
