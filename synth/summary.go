package synth

import (
	"fmt"
	"strings"
)

// Summary is the diagnostic report of a run: table sizes and how many
// transactions carry each label. It is not part of the dataset.
type Summary struct {
	Customers    int
	Accounts     int
	Merchants    int
	Transactions int
	Labels       map[Pattern]int
}

// Summarize counts the rows of every table and the label distribution.
func Summarize(ds *Dataset) Summary {
	s := Summary{
		Customers:    len(ds.Customers),
		Accounts:     len(ds.Accounts),
		Merchants:    len(ds.Merchants),
		Transactions: len(ds.Transactions),
		Labels:       make(map[Pattern]int, len(Patterns)+1),
	}
	for _, t := range ds.Transactions {
		s.Labels[t.Pattern]++
	}
	return s
}

// labelName names unlabeled rows "normal" in reports.
func labelName(p Pattern) string {
	if p == PatternNone {
		return "normal"
	}
	return p.String()
}

// LogData flattens the summary for structured logging.
func (s Summary) LogData() map[string]any {
	data := map[string]any{
		"customers":    s.Customers,
		"accounts":     s.Accounts,
		"merchants":    s.Merchants,
		"transactions": s.Transactions,
	}
	for _, p := range append([]Pattern{PatternNone}, Patterns...) {
		data["label_"+labelName(p)] = s.Labels[p]
	}
	return data
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "customers: %d rows\n", s.Customers)
	fmt.Fprintf(&b, "accounts: %d rows\n", s.Accounts)
	fmt.Fprintf(&b, "merchants: %d rows\n", s.Merchants)
	fmt.Fprintf(&b, "transactions: %d rows\n", s.Transactions)
	b.WriteString("labels:\n")
	for _, p := range append([]Pattern{PatternNone}, Patterns...) {
		fmt.Fprintf(&b, "  %-12s %d\n", labelName(p), s.Labels[p])
	}
	return b.String()
}
