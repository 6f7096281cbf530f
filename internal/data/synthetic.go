package data

import (
	"hash/fnv"
	"math"
	"math/rand"
	"time"
)

// synthDataProvider implements Provider with generated data, for offline
// runs and tests. All values derive from a ticker-seeded generator, so
// the same ticker always produces the same spot, vol and chain.
type synthDataProvider struct{}

func NewSyntheticProvider() Provider { return &synthDataProvider{} }

// tickerRand returns a deterministic generator for the ticker.
func tickerRand(ticker string) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(ticker))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

func (synthDataProv *synthDataProvider) SpotPrice(ticker string) (float64, error) {
	rng := tickerRand(ticker)
	return 50 + rng.Float64()*400, nil
}

func (synthDataProv *synthDataProvider) HistoricalVolatility(ticker string, lookbackDays int) (float64, error) {
	rng := tickerRand(ticker)
	rng.Float64() // skip the spot draw
	return 0.15 + rng.Float64()*0.35, nil
}

// OptionChain fabricates a strike ladder around spot. Quoted prices are
// intrinsic value plus a moneyness-decaying time premium — crude, but
// shaped enough to exercise quote-vs-model comparisons end to end.
func (synthDataProv *synthDataProvider) OptionChain(ticker string, expiry time.Time) ([]Quote, error) {
	spot, _ := synthDataProv.SpotPrice(ticker)
	rng := tickerRand(ticker)

	var quotes []Quote
	for pct := -0.2; pct <= 0.201; pct += 0.05 {
		strike := math.Round(spot*(1+pct)*100) / 100
		premium := spot * 0.02 * math.Exp(-8*pct*pct) * (0.8 + 0.4*rng.Float64())

		callMid := math.Max(spot-strike, 0) + premium
		putMid := math.Max(strike-spot, 0) + premium
		spread := premium * 0.1

		quotes = append(quotes,
			Quote{Symbol: ticker, Strike: strike, Type: "call", Expiry: expiry, Bid: callMid - spread, Ask: callMid + spread, Last: callMid},
			Quote{Symbol: ticker, Strike: strike, Type: "put", Expiry: expiry, Bid: putMid - spread, Ask: putMid + spread, Last: putMid},
		)
	}
	return quotes, nil
}
