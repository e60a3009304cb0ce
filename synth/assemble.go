package synth

import (
	"slices"
	"time"
)

// Assemble concatenates transaction batches and orders them by timestamp.
// The sort is stable, so rows sharing a timestamp keep generation order and
// the result is reproducible. Identifiers, labels and amounts are untouched.
func Assemble(batches ...[]Transaction) []Transaction {
	total := 0
	for _, b := range batches {
		total += len(b)
	}
	out := make([]Transaction, 0, total)
	for _, b := range batches {
		for _, t := range b {
			t.Timestamp = t.Timestamp.UTC().Truncate(time.Second)
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b Transaction) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out
}
