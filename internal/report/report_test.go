package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeval/option-surface/internal/analyzer"
	"github.com/contactkeval/option-surface/internal/pricing"
)

func TestWriteChainCSV(t *testing.T) {
	dir := t.TempDir()

	c := pricing.Contract{Spot: 100, Strike: 100, TimeToExpiry: 0.5, Rate: 0.05, Vol: 0.25, Type: pricing.Call}
	chain, err := pricing.PriceChain(c, []float64{95, 100, 105})
	require.NoError(t, err)

	require.NoError(t, WriteChainCSV(chain, dir))

	b, err := os.ReadFile(filepath.Join(dir, "chain.csv"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	assert.Len(t, lines, 4) // header + 3 strikes
	assert.Contains(t, lines[0], "strike")
	assert.Contains(t, lines[0], "delta")
}

func TestWriteSurfaceJSON(t *testing.T) {
	dir := t.TempDir()

	c := pricing.Contract{Ticker: "SPY", Spot: 500, Strike: 500, TimeToExpiry: 1, Rate: 0.05, Vol: 0.18, Type: pricing.Put}
	surf, err := pricing.GenerateSurface(c, 0.4, 1, 4, 3)
	require.NoError(t, err)

	require.NoError(t, WriteSurfaceJSON(surf, dir))

	b, err := os.ReadFile(filepath.Join(dir, "surface.json"))
	require.NoError(t, err)

	var got pricing.Surface
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "SPY", got.Ticker)
	assert.Len(t, got.Values, 3)
}

func TestWriteAnalysisJSON(t *testing.T) {
	dir := t.TempDir()

	res := &analyzer.Analysis{Ticker: "NVDA", TheoreticalPrice: 3.5}
	require.NoError(t, WriteAnalysisJSON(res, dir))

	b, err := os.ReadFile(filepath.Join(dir, "analysis.json"))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"NVDA"`)
}
