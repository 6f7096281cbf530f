package pricing

import (
	"fmt"
	"strings"
)

// OptionType identifies the exercise side of a contract.
type OptionType string

const (
	Call OptionType = "call"
	Put  OptionType = "put"
)

// ParseOptionType normalizes a user-supplied option type string.
// Accepts "call"/"c" and "put"/"p" in any case.
func ParseOptionType(s string) (OptionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "call", "c":
		return Call, nil
	case "put", "p":
		return Put, nil
	default:
		return "", &ValidationError{Field: "option_type", Reason: fmt.Sprintf("must be call or put, got %q", s)}
	}
}

// Contract describes a single European option. It is a plain value:
// built once at the boundary, never mutated, safe to copy freely.
//
// Ticker is carried only for labeling output; the math never reads it.
type Contract struct {
	Ticker       string
	Spot         float64    // current underlying price, > 0
	Strike       float64    // strike price, > 0
	TimeToExpiry float64    // years remaining, >= 0
	Rate         float64    // annual risk-free rate
	Vol          float64    // annualized volatility, >= 0
	Type         OptionType // call or put
}

// Validate range-checks the contract. All checks run before any pricing
// math so a malformed input can never reach d1/d2 and produce NaN.
func (c Contract) Validate() error {
	if c.Spot <= 0 {
		return &ValidationError{Field: "spot", Reason: fmt.Sprintf("must be > 0, got %v", c.Spot)}
	}
	if c.Strike <= 0 {
		return &ValidationError{Field: "strike", Reason: fmt.Sprintf("must be > 0, got %v", c.Strike)}
	}
	if c.TimeToExpiry < 0 {
		return &ValidationError{Field: "time_to_expiry", Reason: fmt.Sprintf("must be >= 0, got %v", c.TimeToExpiry)}
	}
	if c.Vol < 0 {
		return &ValidationError{Field: "volatility", Reason: fmt.Sprintf("must be >= 0, got %v", c.Vol)}
	}
	if c.Type != Call && c.Type != Put {
		return &ValidationError{Field: "option_type", Reason: fmt.Sprintf("must be call or put, got %q", c.Type)}
	}
	return nil
}
