// Package analyzer compares theoretical Black-Scholes values with
// observed market prices and resolves market-data inputs (spot price,
// historical volatility) for the pricing core. It owns the control flow
// between the data adapter and the pure pricing functions; the pricing
// package itself never performs I/O.
package analyzer

import (
	"errors"
	"fmt"

	"github.com/contactkeval/option-surface/internal/data"
	"github.com/contactkeval/option-surface/internal/logger"
	"github.com/contactkeval/option-surface/internal/pricing"
)

// DefaultLookbackDays is the historical-volatility window used when a
// request does not specify one.
const DefaultLookbackDays = 30

// Analyzer resolves market inputs and runs pricing computations.
type Analyzer struct {
	prov data.Provider
	rate float64 // default annual risk-free rate
}

// New returns an Analyzer backed by prov. prov may be nil, in which
// case every request must carry explicit spot and volatility.
func New(prov data.Provider, riskFreeRate float64) *Analyzer {
	return &Analyzer{prov: prov, rate: riskFreeRate}
}

// Request carries the validated parameters of one analysis. Zero-valued
// optional fields fall back: Spot and Vol to the market-data provider,
// Rate to the analyzer default, LookbackDays to DefaultLookbackDays.
type Request struct {
	Ticker       string
	Strike       float64
	DaysToExpiry float64
	MarketPrice  float64 // observed option price; 0 skips the comparison
	Type         pricing.OptionType
	Spot         float64
	Vol          float64
	Rate         *float64
	LookbackDays int
}

// Analysis is the market-vs-model comparison for one option.
type Analysis struct {
	Ticker           string             `json:"ticker"`
	OptionType       pricing.OptionType `json:"option_type"`
	StockPrice       float64            `json:"stock_price"`
	Strike           float64            `json:"strike_price"`
	TimeToExpiry     float64            `json:"time_to_expiration"`
	Volatility       float64            `json:"volatility"`
	RiskFreeRate     float64            `json:"risk_free_rate"`
	Moneyness        float64            `json:"moneyness"` // S/K ratio
	TheoreticalPrice float64            `json:"theoretical_price"`
	Greeks           pricing.Result     `json:"greeks"`
	MarketPrice      *float64           `json:"market_price,omitempty"`
	Difference       *float64           `json:"difference,omitempty"`      // market - theoretical; positive = market rich
	PercentDiff      *float64           `json:"percentage_diff,omitempty"` // difference relative to theoretical
	ImpliedVol       *float64           `json:"implied_volatility,omitempty"`
}

// AnalyzeOption prices the requested contract and, when a market price
// is supplied, reports the mispricing and the quote's implied
// volatility. An implied vol that cannot be recovered (quote outside
// arbitrage bounds, or no convergence) is reported as absent rather
// than failing the whole analysis — the theoretical side is still
// useful on its own.
func (a *Analyzer) AnalyzeOption(req Request) (*Analysis, error) {
	c, err := a.buildContract(req)
	if err != nil {
		return nil, err
	}

	res, err := pricing.Price(c)
	if err != nil {
		return nil, err
	}

	out := &Analysis{
		Ticker:           c.Ticker,
		OptionType:       c.Type,
		StockPrice:       c.Spot,
		Strike:           c.Strike,
		TimeToExpiry:     c.TimeToExpiry,
		Volatility:       c.Vol,
		RiskFreeRate:     c.Rate,
		Moneyness:        c.Spot / c.Strike,
		TheoreticalPrice: res.Price,
		Greeks:           res,
	}

	if req.MarketPrice > 0 {
		diff := req.MarketPrice - res.Price
		pct := 0.0
		if res.Price != 0 {
			pct = diff / res.Price * 100
		}
		mp := req.MarketPrice
		out.MarketPrice = &mp
		out.Difference = &diff
		out.PercentDiff = &pct

		if iv, err := pricing.SolveImpliedVol(c, req.MarketPrice); err == nil {
			out.ImpliedVol = &iv
		} else {
			logger.Debugf("implied vol unavailable for %s %.2f %s: %v", c.Ticker, c.Strike, c.Type, err)
		}
	}
	return out, nil
}

// Surface resolves market inputs and generates a price surface centered
// on the current spot.
func (a *Analyzer) Surface(req Request, rangePct, horizon float64, nPrice, nTime int) (*pricing.Surface, error) {
	c, err := a.buildContract(req)
	if err != nil {
		return nil, err
	}
	return pricing.GenerateSurface(c, rangePct, horizon, nPrice, nTime)
}

// ImpliedVol recovers the volatility implied by marketPrice for the
// requested contract.
func (a *Analyzer) ImpliedVol(req Request, marketPrice float64) (float64, error) {
	c, err := a.buildContract(req)
	if err != nil {
		return 0, err
	}
	return pricing.SolveImpliedVol(c, marketPrice)
}

// buildContract resolves the request into a validated Contract, pulling
// spot and volatility from the provider when absent.
func (a *Analyzer) buildContract(req Request) (pricing.Contract, error) {
	c := pricing.Contract{
		Ticker:       req.Ticker,
		Strike:       req.Strike,
		TimeToExpiry: req.DaysToExpiry / 365,
		Spot:         req.Spot,
		Vol:          req.Vol,
		Rate:         a.rate,
		Type:         req.Type,
	}
	if req.Rate != nil {
		c.Rate = *req.Rate
	}

	if c.Spot == 0 {
		spot, err := a.spotFromProvider(req.Ticker)
		if err != nil {
			return pricing.Contract{}, err
		}
		c.Spot = spot
	}

	// Vol == 0 means "not supplied" at the request level; pricing a
	// genuinely zero-vol contract is done through the core directly.
	if c.Vol == 0 {
		vol, err := a.volFromProvider(req.Ticker, req.LookbackDays)
		if err != nil {
			return pricing.Contract{}, err
		}
		c.Vol = vol
	}

	if err := c.Validate(); err != nil {
		return pricing.Contract{}, err
	}
	return c, nil
}

func (a *Analyzer) spotFromProvider(ticker string) (float64, error) {
	if a.prov == nil {
		return 0, fmt.Errorf("no spot price supplied and no market data provider configured: %w", data.ErrUnavailable)
	}
	spot, err := a.prov.SpotPrice(ticker)
	if err != nil {
		return 0, fmt.Errorf("resolving spot for %s: %w", ticker, err)
	}
	return spot, nil
}

func (a *Analyzer) volFromProvider(ticker string, lookbackDays int) (float64, error) {
	if a.prov == nil {
		return 0, fmt.Errorf("no volatility supplied and no market data provider configured: %w", data.ErrUnavailable)
	}
	if lookbackDays == 0 {
		lookbackDays = DefaultLookbackDays
	}
	vol, err := a.prov.HistoricalVolatility(ticker, lookbackDays)
	if err != nil {
		return 0, fmt.Errorf("resolving volatility for %s: %w", ticker, err)
	}
	return vol, nil
}

// IsDataUnavailable reports whether err stems from the market-data
// adapter rather than the pricing core.
func IsDataUnavailable(err error) bool {
	return errors.Is(err, data.ErrUnavailable)
}
