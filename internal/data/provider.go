// Package data provides the market-data adapter consumed by the
// analytics layer: spot price, historical volatility, and option-chain
// snapshots. The pricing core never touches this package — it receives
// already-resolved scalar inputs, so every failure here is handled
// before a contract is priced.
package data

import (
	"errors"
	"time"
)

// ErrUnavailable is wrapped by every provider failure so callers can
// detect the data-unavailability condition with errors.Is and fall back
// to explicit user-supplied inputs.
var ErrUnavailable = errors.New("market data unavailable")

// Provider supplies market data.
type Provider interface {
	// SpotPrice returns the latest traded price for ticker.
	SpotPrice(ticker string) (float64, error)

	// HistoricalVolatility returns the annualized volatility of daily
	// log returns over roughly lookbackDays trading days.
	HistoricalVolatility(ticker string, lookbackDays int) (float64, error)

	// OptionChain returns observed quotes for the expiry nearest to the
	// requested date.
	OptionChain(ticker string, expiry time.Time) ([]Quote, error)
}

// Bar is a simplified daily OHLC sample.
type Bar struct {
	Date  time.Time
	Open  float64
	High  float64
	Low   float64
	Close float64
	Vol   float64
}

// Quote is one observed option quote from a chain snapshot. The core
// never caches or owns quotes; they are inputs for implied-volatility
// inversion and mispricing comparison.
type Quote struct {
	Symbol string    `json:"symbol"`
	Strike float64   `json:"strike"`
	Type   string    `json:"option_type"` // "call" or "put"
	Expiry time.Time `json:"expiry"`
	Bid    float64   `json:"bid"`
	Ask    float64   `json:"ask"`
	Last   float64   `json:"last"`
}

// Mid returns the bid/ask midpoint, falling back to the last trade when
// either side of the book is empty.
func (q Quote) Mid() float64 {
	if q.Bid > 0 && q.Ask > 0 {
		return (q.Bid + q.Ask) / 2
	}
	return q.Last
}

// TradingDaysPerYear is the annualization base for daily returns.
const TradingDaysPerYear = 252
