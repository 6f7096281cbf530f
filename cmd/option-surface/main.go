package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/contactkeval/option-surface/internal/analyzer"
	"github.com/contactkeval/option-surface/internal/api"
	"github.com/contactkeval/option-surface/internal/data"
	"github.com/contactkeval/option-surface/internal/logger"
	"github.com/contactkeval/option-surface/internal/pricing"
	"github.com/contactkeval/option-surface/internal/report"
)

// Config describes one analysis job for the CLI mode and the shared
// service settings.
type Config struct {
	Ticker       string  `json:"ticker"`
	Strike       float64 `json:"strike"`
	DaysToExpiry float64 `json:"days_to_expiration"`
	MarketPrice  float64 `json:"market_price,omitempty"`
	OptionType   string  `json:"option_type"`
	Volatility   float64 `json:"volatility,omitempty"`
	SpotPrice    float64 `json:"spot_price,omitempty"`
	RiskFreeRate float64 `json:"risk_free_rate,omitempty"`
	LookbackDays int     `json:"lookback_days,omitempty"`
	ReportDir    string  `json:"report_dir,omitempty"`

	Surface struct {
		PriceRangePct float64 `json:"price_range_pct,omitempty"`
		TimeHorizon   float64 `json:"time_horizon,omitempty"`
		NumPrices     int     `json:"num_price_points,omitempty"`
		NumTimes      int     `json:"num_time_points,omitempty"`
	} `json:"surface"`
}

func defaultConfig() Config {
	cfg := Config{
		OptionType:   "call",
		RiskFreeRate: 0.05,
		LookbackDays: 30,
		ReportDir:    "./out",
	}
	cfg.Surface.PriceRangePct = 0.5
	cfg.Surface.TimeHorizon = 1.0
	cfg.Surface.NumPrices = 50
	cfg.Surface.NumTimes = 30
	return cfg
}

func main() {
	configPath := flag.String("config", "", "path to JSON analysis config")
	rest := flag.Bool("rest", false, "run as REST server")
	port := flag.String("port", ":8080", "REST server listen address")
	verbosity := flag.Int("v", 1, "log verbosity: 0=error 1=info 2=debug 3=trace")
	flag.Parse()

	logger.SetVerbosity(*verbosity)

	// .env is optional; environment beats file either way.
	if err := godotenv.Load(); err == nil {
		logger.Debugf("loaded .env")
	}

	cfg := defaultConfig()
	if *configPath != "" {
		raw, err := os.ReadFile(*configPath)
		if err != nil {
			logger.Errorf("reading config: %v", err)
			os.Exit(1)
		}
		if err := json.Unmarshal(raw, &cfg); err != nil {
			logger.Errorf("invalid config: %v", err)
			os.Exit(1)
		}
	}

	var prov data.Provider
	if apiKey := os.Getenv("POLYGON_API_KEY"); apiKey != "" {
		prov = data.NewPolygonDataProvider(apiKey)
	} else {
		prov = data.NewSyntheticProvider()
		logger.Infof("POLYGON_API_KEY not set, using synthetic market data")
	}

	an := analyzer.New(prov, cfg.RiskFreeRate)

	if *rest {
		srv := api.NewServer(an)
		logger.Infof("starting REST server on %s", *port)
		if err := http.ListenAndServe(*port, srv.Router()); err != nil {
			logger.Errorf("server stopped: %v", err)
			os.Exit(1)
		}
		return
	}

	if cfg.Ticker == "" || cfg.Strike <= 0 {
		logger.Errorf("one-shot mode needs a config with at least ticker and strike (see -config)")
		os.Exit(2)
	}
	runOnce(an, cfg)
}

// runOnce performs a single analysis and writes the report files.
func runOnce(an *analyzer.Analyzer, cfg Config) {
	start := time.Now()

	typ, err := pricing.ParseOptionType(cfg.OptionType)
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
	req := analyzer.Request{
		Ticker:       cfg.Ticker,
		Strike:       cfg.Strike,
		DaysToExpiry: cfg.DaysToExpiry,
		MarketPrice:  cfg.MarketPrice,
		Type:         typ,
		Spot:         cfg.SpotPrice,
		Vol:          cfg.Volatility,
		LookbackDays: cfg.LookbackDays,
	}

	res, err := an.AnalyzeOption(req)
	if err != nil {
		logger.Errorf("analysis failed: %v", err)
		os.Exit(1)
	}

	surf, err := an.Surface(req, cfg.Surface.PriceRangePct, cfg.Surface.TimeHorizon,
		cfg.Surface.NumPrices, cfg.Surface.NumTimes)
	if err != nil {
		logger.Errorf("surface generation failed: %v", err)
		os.Exit(1)
	}

	// Strike ladder at ±10% around the resolved spot.
	c := pricing.Contract{
		Ticker:       res.Ticker,
		Spot:         res.StockPrice,
		Strike:       res.Strike,
		TimeToExpiry: res.TimeToExpiry,
		Rate:         res.RiskFreeRate,
		Vol:          res.Volatility,
		Type:         res.OptionType,
	}
	var strikes []float64
	for _, m := range []float64{0.9, 0.95, 1.0, 1.05, 1.1} {
		strikes = append(strikes, res.StockPrice*m)
	}
	chain, err := pricing.PriceChain(c, strikes)
	if err != nil {
		logger.Errorf("chain pricing failed: %v", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.ReportDir, 0755); err != nil {
		logger.Errorf("could not create report dir %s: %v", cfg.ReportDir, err)
		os.Exit(1)
	}
	if err := report.WriteAnalysisJSON(res, cfg.ReportDir); err != nil {
		logger.Errorf("writing analysis report: %v", err)
	}
	if err := report.WriteSurfaceJSON(surf, cfg.ReportDir); err != nil {
		logger.Errorf("writing surface report: %v", err)
	}
	if err := report.WriteChainCSV(chain, cfg.ReportDir); err != nil {
		logger.Errorf("writing chain report: %v", err)
	}

	// Summary to stdout; reports carry the full detail.
	out, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(out))
	logger.Infof("finished in %v, reports in %s", time.Since(start), cfg.ReportDir)
}
