// Package report writes analysis results to disk for the CLI mode.
package report

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/contactkeval/option-surface/internal/analyzer"
	"github.com/contactkeval/option-surface/internal/pricing"
)

// WriteAnalysisJSON writes the market-vs-model analysis to
// analysis.json in outdir.
func WriteAnalysisJSON(res *analyzer.Analysis, outdir string) error {
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, "analysis.json"), b, 0644)
}

// WriteSurfaceJSON writes the full surface grid to surface.json in
// outdir.
func WriteSurfaceJSON(surf *pricing.Surface, outdir string) error {
	b, err := json.MarshalIndent(surf, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, "surface.json"), b, 0644)
}

// WriteChainCSV writes a priced strike ladder to chain.csv in outdir.
func WriteChainCSV(chain []pricing.ChainEntry, outdir string) error {
	f, err := os.Create(filepath.Join(outdir, "chain.csv"))
	if err != nil {
		return err
	}
	defer f.Close()
	return gocsv.MarshalFile(&chain, f)
}
