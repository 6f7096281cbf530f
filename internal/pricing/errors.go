package pricing

import "fmt"

// The error types below form the failure taxonomy of the core. Callers
// branch on them with errors.As; the HTTP layer maps each to a stable
// machine-readable kind. A failed computation is always surfaced — no
// code path substitutes a default value for a price.

// ValidationError reports a contract or request parameter outside its
// legal range.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidQuoteError reports an observed market price that violates
// no-arbitrage bounds, so no volatility can reproduce it.
type InvalidQuoteError struct {
	Price float64 // observed market price
	Lower float64 // intrinsic (discounted) lower bound
	Upper float64 // upper bound: S for calls, K*e^(-rT) for puts
}

func (e *InvalidQuoteError) Error() string {
	return fmt.Sprintf("market price %.6f outside no-arbitrage bounds (%.6f, %.6f)", e.Price, e.Lower, e.Upper)
}

// ConvergenceError reports that the implied-volatility root finder
// exhausted both the Newton and the bisection iteration budgets.
type ConvergenceError struct {
	Iterations int     // total iterations spent
	LastSigma  float64 // final volatility estimate
	Residual   float64 // final |model price - market price|
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("implied vol did not converge after %d iterations (sigma=%.6f residual=%.2e)",
		e.Iterations, e.LastSigma, e.Residual)
}
