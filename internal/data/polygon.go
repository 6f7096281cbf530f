package data

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/montanaflynn/stats"
	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"

	"github.com/contactkeval/option-surface/internal/logger"
)

const (
	polygonBaseURL = "https://api.polygon.io"

	// Spot moves constantly, historical vol does not; cache accordingly.
	spotTTL = 30 * time.Second
	volTTL  = 5 * time.Minute
)

// cached is a value with its fetch time.
type cached struct {
	val float64
	at  time.Time
}

// polygonDataProvider implements Provider against Polygon.io: aggregate
// bars through the official REST SDK, option-chain snapshots through a
// raw HTTP call (the snapshot endpoint is not covered by the SDK models
// we need). All caching lives here, keyed and time-bounded — never in
// the pricing core.
type polygonDataProvider struct {
	apiKey  string
	client  *polygon.Client
	httpc   *http.Client
	baseURL string

	mu        sync.Mutex
	spotCache map[string]cached
	volCache  map[string]cached
}

// NewPolygonDataProvider constructs a Polygon-backed data provider.
func NewPolygonDataProvider(apiKey string) Provider {
	logger.Infof("initializing Polygon data provider")
	return &polygonDataProvider{
		apiKey:    apiKey,
		client:    polygon.New(apiKey),
		httpc:     &http.Client{Timeout: 30 * time.Second},
		baseURL:   polygonBaseURL,
		spotCache: make(map[string]cached),
		volCache:  make(map[string]cached),
	}
}

// SpotPrice returns the close of the most recent daily bar.
func (p *polygonDataProvider) SpotPrice(ticker string) (float64, error) {
	p.mu.Lock()
	if c, ok := p.spotCache[ticker]; ok && time.Since(c.at) < spotTTL {
		p.mu.Unlock()
		return c.val, nil
	}
	p.mu.Unlock()

	// A one-week window covers weekends and market holidays.
	bars, err := p.dailyBars(ticker, time.Now().AddDate(0, 0, -7), time.Now())
	if err != nil {
		return 0, err
	}
	if len(bars) == 0 {
		return 0, fmt.Errorf("no recent bars for %s: %w", ticker, ErrUnavailable)
	}
	spot := bars[len(bars)-1].Close

	p.mu.Lock()
	p.spotCache[ticker] = cached{val: spot, at: time.Now()}
	p.mu.Unlock()
	logger.Debugf("spot %s = %.2f", ticker, spot)
	return spot, nil
}

// HistoricalVolatility annualizes the sample standard deviation of
// daily log returns over the lookback window.
func (p *polygonDataProvider) HistoricalVolatility(ticker string, lookbackDays int) (float64, error) {
	if lookbackDays < 2 {
		return 0, fmt.Errorf("lookback must be >= 2 days, got %d: %w", lookbackDays, ErrUnavailable)
	}

	key := fmt.Sprintf("%s/%d", ticker, lookbackDays)
	p.mu.Lock()
	if c, ok := p.volCache[key]; ok && time.Since(c.at) < volTTL {
		p.mu.Unlock()
		return c.val, nil
	}
	p.mu.Unlock()

	// Fetch extra calendar days so weekends do not starve the window.
	from := time.Now().AddDate(0, 0, -(lookbackDays*7/5 + 10))
	bars, err := p.dailyBars(ticker, from, time.Now())
	if err != nil {
		return 0, err
	}
	if len(bars) > lookbackDays+1 {
		bars = bars[len(bars)-lookbackDays-1:]
	}

	hv, err := AnnualizedVolatility(bars)
	if err != nil {
		return 0, fmt.Errorf("historical vol for %s: %w", ticker, err)
	}

	p.mu.Lock()
	p.volCache[key] = cached{val: hv, at: time.Now()}
	p.mu.Unlock()
	logger.Debugf("hist vol %s (%dd) = %.2f%%", ticker, lookbackDays, hv*100)
	return hv, nil
}

// dailyBars pulls daily aggregates through the SDK iterator.
func (p *polygonDataProvider) dailyBars(ticker string, from, to time.Time) ([]Bar, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	params := models.ListAggsParams{
		Ticker:     ticker,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(from),
		To:         models.Millis(to),
	}.WithOrder(models.Asc).WithAdjusted(true)

	iter := p.client.ListAggs(ctx, params)

	var bars []Bar
	for iter.Next() {
		item := iter.Item()
		bars = append(bars, Bar{
			Date:  time.Time(item.Timestamp),
			Open:  item.Open,
			High:  item.High,
			Low:   item.Low,
			Close: item.Close,
			Vol:   item.Volume,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("polygon aggs for %s: %v: %w", ticker, err, ErrUnavailable)
	}
	return bars, nil
}

// snapshotResp models the paginated option-chain snapshot response.
type snapshotResp struct {
	Results []struct {
		Details struct {
			Ticker       string  `json:"ticker"`
			ContractType string  `json:"contract_type"`
			ExpiryDate   string  `json:"expiration_date"`
			StrikePrice  float64 `json:"strike_price"`
		} `json:"details"`
		LastQuote struct {
			Bid float64 `json:"bid"`
			Ask float64 `json:"ask"`
		} `json:"last_quote"`
		Day struct {
			Close float64 `json:"close"`
		} `json:"day"`
	} `json:"results"`
	Status  string `json:"status"`
	NextURL string `json:"next_url"`
}

// OptionChain fetches the option-chain snapshot for ticker, keeping
// only quotes on the expiry nearest the requested date.
func (p *polygonDataProvider) OptionChain(ticker string, expiry time.Time) ([]Quote, error) {
	endpoint := fmt.Sprintf("%s/v3/snapshot/options/%s?limit=250", p.baseURL, url.PathEscape(ticker))

	var all []Quote
	for page := 0; endpoint != "" && page < 5; page++ {
		quotes, next, err := p.fetchSnapshotPage(endpoint)
		if err != nil {
			return nil, err
		}
		all = append(all, quotes...)
		endpoint = next
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("empty option chain for %s: %w", ticker, ErrUnavailable)
	}

	// Keep the expiry closest to the requested date.
	best := all[0].Expiry
	for _, q := range all {
		if absDuration(q.Expiry.Sub(expiry)) < absDuration(best.Sub(expiry)) {
			best = q.Expiry
		}
	}
	var out []Quote
	for _, q := range all {
		if q.Expiry.Equal(best) {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Strike != out[j].Strike {
			return out[i].Strike < out[j].Strike
		}
		return out[i].Type < out[j].Type
	})
	logger.Debugf("chain %s: %d quotes @ %s", ticker, len(out), best.Format("2006-01-02"))
	return out, nil
}

func (p *polygonDataProvider) fetchSnapshotPage(endpoint string) ([]Quote, string, error) {
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", fmt.Errorf("snapshot request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpc.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("snapshot fetch: %v: %w", err, ErrUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("snapshot fetch: http %s: %w", resp.Status, ErrUnavailable)
	}

	var dto snapshotResp
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return nil, "", fmt.Errorf("snapshot decode: %v: %w", err, ErrUnavailable)
	}

	quotes := make([]Quote, 0, len(dto.Results))
	for _, r := range dto.Results {
		exp, err := time.Parse("2006-01-02", r.Details.ExpiryDate)
		if err != nil {
			logger.Tracef("skipping contract %s: bad expiry %q", r.Details.Ticker, r.Details.ExpiryDate)
			continue
		}
		quotes = append(quotes, Quote{
			Symbol: r.Details.Ticker,
			Strike: r.Details.StrikePrice,
			Type:   r.Details.ContractType,
			Expiry: exp,
			Bid:    r.LastQuote.Bid,
			Ask:    r.LastQuote.Ask,
			Last:   r.Day.Close,
		})
	}
	return quotes, dto.NextURL, nil
}

// AnnualizedVolatility computes the sample stddev of daily log returns
// scaled by sqrt(252), the classic close-to-close estimator.
func AnnualizedVolatility(bars []Bar) (float64, error) {
	if len(bars) < 2 {
		return 0, fmt.Errorf("need at least 2 bars, got %d: %w", len(bars), ErrUnavailable)
	}
	rets := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		if bars[i-1].Close <= 0 || bars[i].Close <= 0 {
			return 0, fmt.Errorf("non-positive close in bar series: %w", ErrUnavailable)
		}
		rets = append(rets, math.Log(bars[i].Close/bars[i-1].Close))
	}
	sd, err := stats.StandardDeviationSample(rets)
	if err != nil {
		return 0, fmt.Errorf("stddev: %v: %w", err, ErrUnavailable)
	}
	return sd * math.Sqrt(TradingDaysPerYear), nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
