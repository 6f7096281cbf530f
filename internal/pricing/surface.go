package pricing

import "fmt"

// MaxAxisPoints caps each surface dimension. Grid generation is
// O(nPrice * nTime); the cap keeps worst-case latency bounded.
const MaxAxisPoints = 50

// Surface is a visualization-ready grid of option values over stock
// price and time-to-expiry.
//
// StockPrices ascend; Times ascend with the smallest time first and
// every sample strictly positive, so the T=0 branch is never priced
// implicitly. Values is indexed [time][price]: len(Values) == len(Times)
// and len(Values[i]) == len(StockPrices) for every row.
type Surface struct {
	Ticker      string      `json:"ticker"`
	Strike      float64     `json:"strike"`
	Type        OptionType  `json:"option_type"`
	Vol         float64     `json:"volatility"`
	SpotPrice   float64     `json:"current_price"`
	StockPrices []float64   `json:"stock_prices"`
	Times       []float64   `json:"times"`
	Values      [][]float64 `json:"option_values"`
}

// GenerateSurface prices c over a grid of (time, stock price) pairs.
//
// The price axis spans [S*(1-rangePct), S*(1+rangePct)] with nPrice even
// samples; the time axis spans (0, horizon] with nTime even samples.
// Strike, rate, volatility and option type are held fixed from c.
//
// If any node fails to price, generation aborts and returns the error:
// a silently wrong cell would corrupt the whole surface with no visible
// signal, so no default is ever substituted.
func GenerateSurface(c Contract, rangePct, horizon float64, nPrice, nTime int) (*Surface, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if rangePct <= 0 || rangePct >= 1 {
		return nil, &ValidationError{Field: "price_range_pct", Reason: fmt.Sprintf("must be in (0, 1), got %v", rangePct)}
	}
	if horizon <= 0 {
		return nil, &ValidationError{Field: "time_horizon", Reason: fmt.Sprintf("must be > 0, got %v", horizon)}
	}
	if nPrice < 2 || nPrice > MaxAxisPoints {
		return nil, &ValidationError{Field: "num_price_points", Reason: fmt.Sprintf("must be in [2, %d], got %d", MaxAxisPoints, nPrice)}
	}
	if nTime < 1 || nTime > MaxAxisPoints {
		return nil, &ValidationError{Field: "num_time_points", Reason: fmt.Sprintf("must be in [1, %d], got %d", MaxAxisPoints, nTime)}
	}

	prices := make([]float64, nPrice)
	low := c.Spot * (1 - rangePct)
	step := c.Spot * 2 * rangePct / float64(nPrice-1)
	for j := range prices {
		prices[j] = low + float64(j)*step
	}

	times := make([]float64, nTime)
	for i := range times {
		times[i] = horizon * float64(i+1) / float64(nTime)
	}

	values := make([][]float64, nTime)
	node := c
	for i, t := range times {
		row := make([]float64, nPrice)
		for j, s := range prices {
			node.TimeToExpiry = t
			node.Spot = s
			res, err := Price(node)
			if err != nil {
				return nil, fmt.Errorf("surface node (T=%.4f, S=%.2f): %w", t, s, err)
			}
			row[j] = res.Price
		}
		values[i] = row
	}

	return &Surface{
		Ticker:      c.Ticker,
		Strike:      c.Strike,
		Type:        c.Type,
		Vol:         c.Vol,
		SpotPrice:   c.Spot,
		StockPrices: prices,
		Times:       times,
		Values:      values,
	}, nil
}
