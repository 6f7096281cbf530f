package pricing

import "math"

// Root-finder constants. Newton-Raphson with the teacher-tested
// guardrails, then a plain bisection over the same bracket when the
// Newton step goes unstable (tiny vega) or runs out of budget.
const (
	ivInitialGuess  = 0.20
	ivNewtonBudget  = 100
	ivBisectBudget  = 100
	ivTolerance     = 1e-6 // absolute tolerance on the price residual
	ivVegaFloor     = 1e-8 // below this the Newton step is meaningless
	ivSigmaMin      = 1e-4
	ivSigmaMax      = 5.0
)

// SolveImpliedVol finds the volatility that makes the Black-Scholes
// price of c equal marketPrice. The Vol field of c is ignored.
//
// Before iterating, the quote is checked against no-arbitrage bounds:
// a call must trade strictly inside (max(S-Ke^(-rT),0), S), a put inside
// (max(Ke^(-rT)-S,0), Ke^(-rT)). A quote at or outside those bounds has
// no finite implied volatility and is rejected with *InvalidQuoteError.
//
// Returns *ValidationError for malformed contracts (including T == 0,
// where no volatility is recoverable) and *ConvergenceError when both
// iteration budgets are exhausted.
func SolveImpliedVol(c Contract, marketPrice float64) (float64, error) {
	probe := c
	probe.Vol = 0
	if err := probe.Validate(); err != nil {
		return 0, err
	}
	if c.TimeToExpiry == 0 {
		return 0, &ValidationError{Field: "time_to_expiry", Reason: "expired contract has no implied volatility"}
	}

	disc := math.Exp(-c.Rate * c.TimeToExpiry)
	var lower, upper float64
	if c.Type == Call {
		lower = math.Max(c.Spot-c.Strike*disc, 0)
		upper = c.Spot
	} else {
		lower = math.Max(c.Strike*disc-c.Spot, 0)
		upper = c.Strike * disc
	}
	if marketPrice <= lower || marketPrice >= upper {
		return 0, &InvalidQuoteError{Price: marketPrice, Lower: lower, Upper: upper}
	}

	cc := c
	sigma := ivInitialGuess
	spent := 0
	for i := 0; i < ivNewtonBudget; i++ {
		spent = i + 1
		cc.Vol = sigma
		res, err := Price(cc)
		if err != nil {
			return 0, err
		}
		diff := res.Price - marketPrice
		if math.Abs(diff) < ivTolerance {
			return sigma, nil
		}

		vega := rawVega(cc)
		if vega < ivVegaFloor {
			break
		}
		sigma -= diff / vega

		// Guardrails
		if sigma < ivSigmaMin {
			sigma = ivSigmaMin
		}
		if sigma > ivSigmaMax {
			sigma = ivSigmaMax
		}
	}

	return bisectImpliedVol(c, marketPrice, spent)
}

// bisectImpliedVol is the fallback root finder. Price is monotonically
// increasing in sigma, so a plain bisection over [ivSigmaMin, ivSigmaMax]
// always narrows toward the root if one exists in the bracket.
// newtonSpent is the iteration count already consumed by the Newton
// phase; the convergence error reports the true total.
func bisectImpliedVol(c Contract, marketPrice float64, newtonSpent int) (float64, error) {
	lo, hi := ivSigmaMin, ivSigmaMax
	cc := c

	var mid, diff float64
	for i := 0; i < ivBisectBudget; i++ {
		mid = (lo + hi) / 2
		cc.Vol = mid
		res, err := Price(cc)
		if err != nil {
			return 0, err
		}
		diff = res.Price - marketPrice
		if math.Abs(diff) < ivTolerance {
			return mid, nil
		}
		if diff < 0 {
			lo = mid
		} else {
			hi = mid
		}
	}

	return 0, &ConvergenceError{
		Iterations: newtonSpent + ivBisectBudget,
		LastSigma:  mid,
		Residual:   math.Abs(diff),
	}
}
