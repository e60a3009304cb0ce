package store

import "github.com/remiges-tech/amlsynth/synth"

var (
	customerColumns    = []string{"customer_id", "full_name", "email", "phone", "address", "created_at"}
	accountColumns     = []string{"account_id", "customer_id", "account_type", "opened_at"}
	merchantColumns    = []string{"merchant_id", "merchant_name", "category", "country"}
	transactionColumns = []string{"transaction_id", "timestamp", "account_id", "merchant_id", "direction",
		"amount", "channel", "description", "is_suspicious_ground_truth", "pattern"}
)

func customerRow(c synth.Customer) []any {
	return []any{c.CustomerID, c.FullName, c.Email, c.Phone, c.Address, c.CreatedAt.UTC()}
}

func accountRow(a synth.Account) []any {
	return []any{a.AccountID, a.CustomerID, a.AccountType, a.OpenedAt.UTC()}
}

func merchantRow(m synth.Merchant) []any {
	return []any{m.MerchantID, m.MerchantName, m.Category, m.Country}
}

// transactionRow maps an unlabeled pattern to NULL. Amounts go through
// float64; the numeric(14,2) column restores cent precision.
func transactionRow(t synth.Transaction) []any {
	var pattern any
	if t.Pattern != synth.PatternNone {
		pattern = t.Pattern.String()
	}
	return []any{
		t.TransactionID,
		t.Timestamp.UTC(),
		t.AccountID,
		t.MerchantID,
		string(t.Direction),
		t.Amount.InexactFloat64(),
		t.Channel,
		t.Description,
		t.Suspicious(),
		pattern,
	}
}
