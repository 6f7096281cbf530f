package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeval/option-surface/internal/data"
	"github.com/contactkeval/option-surface/internal/pricing"
)

// stubProvider returns canned values so assertions stay exact.
type stubProvider struct {
	spot float64
	vol  float64
}

func (s *stubProvider) SpotPrice(string) (float64, error)                  { return s.spot, nil }
func (s *stubProvider) HistoricalVolatility(string, int) (float64, error)  { return s.vol, nil }
func (s *stubProvider) OptionChain(string, time.Time) ([]data.Quote, error) { return nil, nil }

func TestAnalyzeOptionTheoreticalOnly(t *testing.T) {
	a := New(&stubProvider{spot: 100, vol: 0.2}, 0.05)

	got, err := a.AnalyzeOption(Request{
		Ticker:       "AAPL",
		Strike:       100,
		DaysToExpiry: 365,
		Type:         pricing.Call,
	})
	require.NoError(t, err)

	assert.Equal(t, "AAPL", got.Ticker)
	assert.Equal(t, 100.0, got.StockPrice)
	assert.Equal(t, 0.2, got.Volatility)
	assert.InDelta(t, 1.0, got.Moneyness, 1e-12)
	assert.InDelta(t, 10.4506, got.TheoreticalPrice, 1e-3)
	assert.Nil(t, got.MarketPrice)
	assert.Nil(t, got.ImpliedVol)
}

func TestAnalyzeOptionWithMarketPrice(t *testing.T) {
	a := New(&stubProvider{spot: 100, vol: 0.2}, 0.05)

	// Quote priced at sigma=0.25 against a 0.20 model vol: market rich.
	quoted, err := pricing.Price(pricing.Contract{
		Spot: 100, Strike: 100, TimeToExpiry: 1, Rate: 0.05, Vol: 0.25, Type: pricing.Call,
	})
	require.NoError(t, err)

	got, err := a.AnalyzeOption(Request{
		Ticker:       "AAPL",
		Strike:       100,
		DaysToExpiry: 365,
		MarketPrice:  quoted.Price,
		Type:         pricing.Call,
	})
	require.NoError(t, err)

	require.NotNil(t, got.Difference)
	assert.Greater(t, *got.Difference, 0.0)
	require.NotNil(t, got.PercentDiff)
	assert.InDelta(t, *got.Difference/got.TheoreticalPrice*100, *got.PercentDiff, 1e-9)

	require.NotNil(t, got.ImpliedVol)
	assert.InDelta(t, 0.25, *got.ImpliedVol, 1e-4)
}

func TestAnalyzeOptionImpossibleQuoteStillAnalyzes(t *testing.T) {
	a := New(&stubProvider{spot: 100, vol: 0.2}, 0.05)

	// Above the spot price no call IV exists; the analysis survives.
	got, err := a.AnalyzeOption(Request{
		Ticker:       "AAPL",
		Strike:       100,
		DaysToExpiry: 365,
		MarketPrice:  150,
		Type:         pricing.Call,
	})
	require.NoError(t, err)
	assert.Nil(t, got.ImpliedVol)
	require.NotNil(t, got.Difference)
}

func TestExplicitInputsBypassProvider(t *testing.T) {
	// No provider at all: explicit spot and vol must be enough.
	a := New(nil, 0.05)

	got, err := a.AnalyzeOption(Request{
		Ticker:       "NVDA",
		Strike:       180,
		DaysToExpiry: 30,
		Type:         pricing.Put,
		Spot:         182.5,
		Vol:          0.4,
	})
	require.NoError(t, err)
	assert.Equal(t, 182.5, got.StockPrice)
	assert.Equal(t, 0.4, got.Volatility)
}

func TestMissingInputsSurfaceDataUnavailable(t *testing.T) {
	a := New(nil, 0.05)

	_, err := a.AnalyzeOption(Request{Ticker: "NVDA", Strike: 180, DaysToExpiry: 30, Type: pricing.Call})
	require.Error(t, err)
	assert.True(t, IsDataUnavailable(err))
}

func TestAnalyzerSurface(t *testing.T) {
	a := New(&stubProvider{spot: 400, vol: 0.4}, 0.05)

	surf, err := a.Surface(Request{Ticker: "TSLA", Strike: 400, DaysToExpiry: 365, Type: pricing.Call}, 0.5, 1.0, 12, 8)
	require.NoError(t, err)

	assert.Equal(t, 400.0, surf.SpotPrice)
	assert.Len(t, surf.Times, 8)
	assert.Len(t, surf.StockPrices, 12)
}

func TestAnalyzerImpliedVolRoundTrip(t *testing.T) {
	a := New(&stubProvider{spot: 100, vol: 0.2}, 0.05)

	quoted, err := pricing.Price(pricing.Contract{
		Spot: 100, Strike: 110, TimeToExpiry: 0.5, Rate: 0.05, Vol: 0.33, Type: pricing.Put,
	})
	require.NoError(t, err)

	iv, err := a.ImpliedVol(Request{
		Ticker: "AAPL", Strike: 110, DaysToExpiry: 0.5 * 365, Type: pricing.Put, Vol: 0.2,
	}, quoted.Price)
	require.NoError(t, err)
	assert.InDelta(t, 0.33, iv, 1e-4)
}
