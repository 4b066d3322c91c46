package trajectory

import (
	"fmt"
	"io"

	"cellsort/probe"
)

// maxPreviewValues bounds how many leading/trailing cell values RenderTable
// prints per row, so a 1000-cell array still renders a readable table.
const maxPreviewValues = 6

// RenderTable writes a plain-text, one-row-per-step table: step number, swap
// count, and a head/tail preview of that step's values. Grounded on the
// teacher's show_grid/show_policy helpers, which print plain fmt lines
// rather than reach for a table-formatting library.
func RenderTable[V any](snapshots []probe.Snapshot[V], w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%-6s %-10s %s\n", "step", "swaps", "values"); err != nil {
		return err
	}
	for _, s := range snapshots {
		if _, err := fmt.Fprintf(w, "%-6d %-10d %s\n", s.StepNumber, s.SwapCount, previewValues(s.Values)); err != nil {
			return err
		}
	}
	return nil
}

func previewValues[V any](values []V) string {
	if len(values) <= 2*maxPreviewValues {
		return fmt.Sprint(values)
	}
	head := values[:maxPreviewValues]
	tail := values[len(values)-maxPreviewValues:]
	return fmt.Sprintf("%v ... %v", head, tail)
}
