package invoice

import (
	"fmt"
	"strconv"
	"strings"
)

// Prefix is the per-year part of an invoice number, e.g. "INV-2026-".
func Prefix(year int) string {
	return fmt.Sprintf("INV-%d-", year)
}

func FormatNumber(year, seq int) string {
	return fmt.Sprintf("%s%03d", Prefix(year), seq)
}

// NextNumber returns the number following the highest one in existing for
// the given year. Numbers of other years are ignored.
func NextNumber(year int, existing []string) string {
	prefix := Prefix(year)
	highest := 0
	for _, n := range existing {
		if !strings.HasPrefix(n, prefix) {
			continue
		}
		seq, err := strconv.Atoi(strings.TrimPrefix(n, prefix))
		if err == nil && seq > highest {
			highest = seq
		}
	}
	return FormatNumber(year, highest+1)
}
