// Package pricing implements the closed-form Black-Scholes valuation of
// European options: theoretical price, the Greeks, an implied-volatility
// root finder, strike-ladder chain pricing, and price-surface generation.
//
// Everything in this package is a pure function of its inputs. No state
// is shared between calls, no I/O is performed, and concurrent use needs
// no locking.
package pricing

import (
	"math"

	gaussian "github.com/chobie/go-gaussian"
)

// stdNorm is the standard normal distribution used for N(d1)/N'(d1).
var stdNorm = gaussian.NewGaussian(0, 1)

// Result holds the theoretical price and risk sensitivities of one
// contract. Scaling conventions:
//
//   - Theta is per year; divide by 365 for daily decay.
//   - Vega is per 1 percentage point of volatility.
//   - Rho is per 1 percentage point of the risk-free rate.
type Result struct {
	Price float64 `json:"price"`
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
	Rho   float64 `json:"rho"`
}

// Price evaluates the Black-Scholes formula and all Greeks for c.
//
//	d1 = (ln(S/K) + (r + sigma^2/2) T) / (sigma sqrt(T))
//	d2 = d1 - sigma sqrt(T)
//	call = S N(d1) - K e^(-rT) N(d2)
//	put  = K e^(-rT) N(-d2) - S N(-d1)
//
// The degenerate branches are handled before d1/d2 so the division by
// sigma*sqrt(T) can never produce NaN:
//
//   - T == 0 returns intrinsic value with a 0/±1 moneyness delta and all
//     other Greeks zero.
//   - sigma == 0 with T > 0 returns the discounted deterministic payoff
//     max(S - K e^(-rT), 0) (put symmetric) with a forward-moneyness
//     delta and all other Greeks zero.
func Price(c Contract) (Result, error) {
	if err := c.Validate(); err != nil {
		return Result{}, err
	}
	if c.TimeToExpiry == 0 {
		return expiryResult(c), nil
	}
	if c.Vol == 0 {
		return zeroVolResult(c), nil
	}

	sqrtT := math.Sqrt(c.TimeToExpiry)
	d1 := (math.Log(c.Spot/c.Strike) + (c.Rate+0.5*c.Vol*c.Vol)*c.TimeToExpiry) / (c.Vol * sqrtT)
	d2 := d1 - c.Vol*sqrtT
	disc := math.Exp(-c.Rate * c.TimeToExpiry)
	nd1 := stdNorm.Pdf(d1)

	var res Result
	if c.Type == Call {
		res.Price = c.Spot*stdNorm.Cdf(d1) - c.Strike*disc*stdNorm.Cdf(d2)
		res.Delta = stdNorm.Cdf(d1)
		res.Theta = -c.Spot*nd1*c.Vol/(2*sqrtT) - c.Rate*c.Strike*disc*stdNorm.Cdf(d2)
		res.Rho = c.Strike * c.TimeToExpiry * disc * stdNorm.Cdf(d2) / 100
	} else {
		res.Price = c.Strike*disc*stdNorm.Cdf(-d2) - c.Spot*stdNorm.Cdf(-d1)
		res.Delta = stdNorm.Cdf(d1) - 1
		res.Theta = -c.Spot*nd1*c.Vol/(2*sqrtT) + c.Rate*c.Strike*disc*stdNorm.Cdf(-d2)
		res.Rho = -c.Strike * c.TimeToExpiry * disc * stdNorm.Cdf(-d2) / 100
	}
	res.Gamma = nd1 / (c.Spot * c.Vol * sqrtT)
	res.Vega = c.Spot * nd1 * sqrtT / 100
	return res, nil
}

// expiryResult prices a contract at expiration: intrinsic value only.
func expiryResult(c Contract) Result {
	if c.Type == Call {
		res := Result{Price: math.Max(c.Spot-c.Strike, 0)}
		if c.Spot > c.Strike {
			res.Delta = 1
		}
		return res
	}
	res := Result{Price: math.Max(c.Strike-c.Spot, 0)}
	if c.Spot < c.Strike {
		res.Delta = -1
	}
	return res
}

// zeroVolResult prices a riskless contract: with sigma = 0 the payoff is
// deterministic, so the option is worth its discounted forward payoff.
func zeroVolResult(c Contract) Result {
	fwd := c.Strike * math.Exp(-c.Rate*c.TimeToExpiry)
	if c.Type == Call {
		res := Result{Price: math.Max(c.Spot-fwd, 0)}
		if c.Spot > fwd {
			res.Delta = 1
		}
		return res
	}
	res := Result{Price: math.Max(fwd-c.Spot, 0)}
	if c.Spot < fwd {
		res.Delta = -1
	}
	return res
}

// rawVega is the unscaled dPrice/dSigma used by the Newton iteration.
// Returns 0 for degenerate inputs instead of dividing by zero.
func rawVega(c Contract) float64 {
	if c.TimeToExpiry <= 0 || c.Vol <= 0 {
		return 0
	}
	sqrtT := math.Sqrt(c.TimeToExpiry)
	d1 := (math.Log(c.Spot/c.Strike) + (c.Rate+0.5*c.Vol*c.Vol)*c.TimeToExpiry) / (c.Vol * sqrtT)
	return c.Spot * stdNorm.Pdf(d1) * sqrtT
}
