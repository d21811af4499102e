// Package report renders final universe state for a terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"universe-sim/internal/universe"
)

// WriteSummary prints one block per galaxy, numbered from 1.
func WriteSummary(w io.Writer, summaries []universe.GalaxySummary) error {
	for _, s := range summaries {
		_, err := fmt.Fprintf(w,
			"Galaxy %d:\n  Position: (%.2f, %.2f, %.2f)\n  Mass: %.2E\n  Stars: %d\n  Black Hole Mass: %.2E\n\n",
			s.Index+1,
			s.Position.X, s.Position.Y, s.Position.Z,
			s.Mass,
			s.StarCount,
			s.BlackHoleMass,
		)
		if err != nil {
			return fmt.Errorf("failed to write galaxy %d summary: %w", s.Index+1, err)
		}
	}
	return nil
}

// WriteTiers prints the mass range and the size of every non-empty tier.
func WriteTiers(w io.Writer, tiers universe.Tiers) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Mass range: %.2E .. %.2E\n", tiers.Range.Min, tiers.Range.Max)
	if tiers.Uniform {
		b.WriteString("All galaxies share one mass\n")
	}
	for _, tier := range tiers.Legend() {
		fmt.Fprintf(&b, "  %-4s %d galaxies\n", tier, len(tiers.Of(tier)))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
