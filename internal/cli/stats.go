package cli

import (
	"fmt"
	"io"

	"github.com/raphaelgruber/braindump/internal/metrics"
)

// printStats displays per-label timing statistics of the generation calls.
func printStats(w io.Writer, snap metrics.Snapshot) {
	if len(snap.Operations) == 0 {
		return
	}
	count, total := snap.Total()

	fmt.Fprintf(w, "\nStatistiche chiamate al modello\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════\n")
	for _, op := range snap.Operations {
		fmt.Fprintf(w, "  %-26s %4d chiamate  avg %6dms  max %6dms", op.Label, op.Count, op.AvgTime.Milliseconds(), op.MaxTime.Milliseconds())
		if op.Failures > 0 {
			fmt.Fprintf(w, "  errori %d", op.Failures)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "  %-26s %4d chiamate  totale %.1fs\n", "totale", count, total.Seconds())
}
