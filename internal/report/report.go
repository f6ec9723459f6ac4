// Package report writes processed chains and IV surfaces to disk.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/contactkeval/iv-surface/internal/chain"
	"github.com/contactkeval/iv-surface/internal/surface"
)

// pointRow flattens a PricedPoint for gocsv. Pointer fields marshal to
// empty cells when absent.
type pointRow struct {
	Symbol     string   `csv:"symbol"`
	Expiry     string   `csv:"expiry"`
	Strike     float64  `csv:"strike"`
	Kind       string   `csv:"kind"`
	Bid        *float64 `csv:"bid"`
	Ask        *float64 `csv:"ask"`
	Mid        *float64 `csv:"mid"`
	ImpliedVol *float64 `csv:"implied_vol"`
	Delta      *float64 `csv:"delta"`
	Gamma      *float64 `csv:"gamma"`
	Theta      *float64 `csv:"theta"`
	Rho        *float64 `csv:"rho"`
}

// WriteJSON dumps the processed points to <outdir>/chain.json.
func WriteJSON(points []chain.PricedPoint, outdir string) error {
	b, err := json.MarshalIndent(points, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, "chain.json"), b, 0644)
}

// WriteCSV dumps the processed points to <outdir>/chain.csv.
func WriteCSV(points []chain.PricedPoint, outdir string) error {
	rows := make([]pointRow, 0, len(points))
	for _, p := range points {
		rows = append(rows, pointRow{
			Symbol:     p.Symbol,
			Expiry:     p.Expiry,
			Strike:     p.Strike,
			Kind:       string(p.Kind),
			Bid:        p.Bid,
			Ask:        p.Ask,
			Mid:        p.Mid,
			ImpliedVol: p.ImpliedVol,
			Delta:      p.Delta,
			Gamma:      p.Gamma,
			Theta:      p.Theta,
			Rho:        p.Rho,
		})
	}

	f, err := os.Create(filepath.Join(outdir, "chain.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	return gocsv.MarshalFile(&rows, f)
}

// WriteSurfaceCSV dumps one surface to <outdir>/<name>.csv with maturity
// columns and strike rows. The header depends on the surface's maturity
// axis, so this uses a plain csv.Writer rather than struct tags.
func WriteSurfaceCSV(s surface.Surface, name, outdir string) error {
	f, err := os.Create(filepath.Join(outdir, name+".csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, row := range s.Rows() {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing surface %s: %w", name, err)
		}
	}

	// Flush buffers through to the file before reporting success; a
	// deferred flush would swallow any write error.
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("writing surface %s: %w", name, err)
	}
	return nil
}
