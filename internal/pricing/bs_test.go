package pricing

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceATMCall(t *testing.T) {
	c := Contract{Spot: 100, Strike: 100, TimeToExpiry: 1, Rate: 0.05, Vol: 0.2, Type: Call}

	res, err := Price(c)
	require.NoError(t, err)

	assert.InDelta(t, 10.4506, res.Price, 1e-3)
	assert.InDelta(t, 0.6368, res.Delta, 1e-3)
}

func TestPriceATMPut(t *testing.T) {
	c := Contract{Spot: 100, Strike: 100, TimeToExpiry: 1, Rate: 0.05, Vol: 0.2, Type: Put}

	res, err := Price(c)
	require.NoError(t, err)

	assert.InDelta(t, 5.5735, res.Price, 1e-3)
	assert.Less(t, res.Delta, 0.0)
}

func TestPutCallParity(t *testing.T) {
	contracts := []Contract{
		{Spot: 100, Strike: 100, TimeToExpiry: 1, Rate: 0.05, Vol: 0.2},
		{Spot: 100, Strike: 100, TimeToExpiry: 45.0 / 365, Rate: 0.03, Vol: 0.25},
		{Spot: 250, Strike: 180, TimeToExpiry: 0.5, Rate: 0.05, Vol: 0.6},
		{Spot: 40, Strike: 95, TimeToExpiry: 2, Rate: 0.01, Vol: 0.15},
		{Spot: 100, Strike: 100, TimeToExpiry: 1, Rate: 0, Vol: 0.4},
	}

	for _, c := range contracts {
		call := c
		call.Type = Call
		put := c
		put.Type = Put

		cres, err := Price(call)
		require.NoError(t, err)
		pres, err := Price(put)
		require.NoError(t, err)

		lhs := cres.Price - pres.Price
		rhs := c.Spot - c.Strike*math.Exp(-c.Rate*c.TimeToExpiry)
		assert.InDeltaf(t, rhs, lhs, 1e-6, "parity violated for %+v", c)

		gap, err := ParityGap(call)
		require.NoError(t, err)
		assert.InDelta(t, 0, gap, 1e-6)
	}
}

func TestGreekBounds(t *testing.T) {
	spots := []float64{50, 90, 100, 110, 200}
	vols := []float64{0.05, 0.2, 0.8}
	expiries := []float64{5.0 / 365, 0.5, 2}

	for _, s := range spots {
		for _, v := range vols {
			for _, ttl := range expiries {
				base := Contract{Spot: s, Strike: 100, TimeToExpiry: ttl, Rate: 0.05, Vol: v}

				call := base
				call.Type = Call
				cres, err := Price(call)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, cres.Delta, 0.0)
				assert.LessOrEqual(t, cres.Delta, 1.0)
				assert.GreaterOrEqual(t, cres.Gamma, 0.0)
				assert.GreaterOrEqual(t, cres.Vega, 0.0)

				put := base
				put.Type = Put
				pres, err := Price(put)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, pres.Delta, -1.0)
				assert.LessOrEqual(t, pres.Delta, 0.0)
				assert.GreaterOrEqual(t, pres.Gamma, 0.0)
				assert.GreaterOrEqual(t, pres.Vega, 0.0)
			}
		}
	}
}

func TestPriceConvergesToIntrinsic(t *testing.T) {
	for _, typ := range []OptionType{Call, Put} {
		c := Contract{Spot: 110, Strike: 100, TimeToExpiry: 1e-9, Rate: 0.05, Vol: 0.2, Type: typ}
		res, err := Price(c)
		require.NoError(t, err)

		intrinsic := math.Max(c.Spot-c.Strike, 0)
		if typ == Put {
			intrinsic = math.Max(c.Strike-c.Spot, 0)
		}
		assert.InDelta(t, intrinsic, res.Price, 1e-6)
		assert.False(t, math.IsNaN(res.Delta))
	}
}

func TestPriceAtExpiry(t *testing.T) {
	// OTM call at expiry is worth exactly zero with zero delta.
	c := Contract{Spot: 95, Strike: 100, TimeToExpiry: 0, Rate: 0.05, Vol: 0.2, Type: Call}
	res, err := Price(c)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Price)
	assert.Equal(t, 0.0, res.Delta)
	assert.Equal(t, 0.0, res.Gamma)
	assert.Equal(t, 0.0, res.Vega)
	assert.Equal(t, 0.0, res.Theta)

	// ITM put at expiry is worth intrinsic with delta -1.
	p := Contract{Spot: 95, Strike: 100, TimeToExpiry: 0, Rate: 0.05, Vol: 0.2, Type: Put}
	res, err = Price(p)
	require.NoError(t, err)
	assert.Equal(t, 5.0, res.Price)
	assert.Equal(t, -1.0, res.Delta)
}

func TestPriceZeroVol(t *testing.T) {
	c := Contract{Spot: 100, Strike: 90, TimeToExpiry: 1, Rate: 0.05, Vol: 0, Type: Call}
	res, err := Price(c)
	require.NoError(t, err)

	want := 100 - 90*math.Exp(-0.05)
	assert.InDelta(t, want, res.Price, 1e-3)
	assert.Equal(t, 1.0, res.Delta)
	assert.False(t, math.IsNaN(res.Gamma))
}

func TestPriceRejectsBadInputs(t *testing.T) {
	bad := []Contract{
		{Spot: 0, Strike: 100, TimeToExpiry: 1, Vol: 0.2, Type: Call},
		{Spot: -5, Strike: 100, TimeToExpiry: 1, Vol: 0.2, Type: Call},
		{Spot: 100, Strike: 0, TimeToExpiry: 1, Vol: 0.2, Type: Put},
		{Spot: 100, Strike: 100, TimeToExpiry: -0.1, Vol: 0.2, Type: Call},
		{Spot: 100, Strike: 100, TimeToExpiry: 1, Vol: -0.2, Type: Put},
		{Spot: 100, Strike: 100, TimeToExpiry: 1, Vol: 0.2, Type: "straddle"},
	}

	for _, c := range bad {
		_, err := Price(c)
		require.Errorf(t, err, "expected rejection for %+v", c)

		var verr *ValidationError
		assert.True(t, errors.As(err, &verr), "want ValidationError, got %T", err)
	}
}

func TestParseOptionType(t *testing.T) {
	for in, want := range map[string]OptionType{"call": Call, "C": Call, " Put ": Put, "p": Put} {
		got, err := ParseOptionType(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseOptionType("bond")
	assert.Error(t, err)
}
