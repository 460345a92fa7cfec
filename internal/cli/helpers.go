package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/habit-king/habitking/internal/domain"
)

// parseMonthFlag parses a --month value; empty means the zero month.
func parseMonthFlag(s string) (domain.Month, error) {
	if s == "" {
		return domain.Month{}, nil
	}
	return domain.ParseMonth(s)
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTable returns a tabwriter over stdout.
func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

// formatPoints drops the decimal for whole numbers.
func formatPoints(p float64) string {
	if p == float64(int64(p)) {
		return fmt.Sprintf("%d", int64(p))
	}
	return fmt.Sprintf("%.1f", p)
}
