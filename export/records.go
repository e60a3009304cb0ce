package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/remiges-tech/amlsynth/synth"
	"github.com/shopspring/decimal"
)

// TimeLayout renders every timestamp column.
const TimeLayout = "2006-01-02 15:04:05"

// Table file names inside an export directory.
const (
	CustomersFile    = "customers.csv"
	AccountsFile     = "accounts.csv"
	MerchantsFile    = "merchants.csv"
	TransactionsFile = "transactions.csv"
)

// Files lists the table files in the order they are written.
var Files = []string{CustomersFile, AccountsFile, MerchantsFile, TransactionsFile}

var (
	customerHeader    = []string{"customer_id", "full_name", "email", "phone", "address", "created_at"}
	accountHeader     = []string{"account_id", "customer_id", "account_type", "opened_at"}
	merchantHeader    = []string{"merchant_id", "merchant_name", "category", "country"}
	transactionHeader = []string{"transaction_id", "timestamp", "account_id", "merchant_id", "direction",
		"amount", "channel", "description", "is_suspicious_ground_truth", "pattern"}
)

// RecordError reports a row that cannot be written or parsed.
type RecordError struct {
	File string
	Row  int // 1-based data row, header excluded
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s row %d: %v", e.File, e.Row, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, s, time.UTC)
}

func customerRecord(c synth.Customer) []string {
	return []string{c.CustomerID, c.FullName, c.Email, c.Phone, c.Address, formatTime(c.CreatedAt)}
}

func parseCustomer(rec []string) (synth.Customer, error) {
	created, err := parseTime(rec[5])
	if err != nil {
		return synth.Customer{}, err
	}
	return synth.Customer{
		CustomerID: rec[0],
		FullName:   rec[1],
		Email:      rec[2],
		Phone:      rec[3],
		Address:    rec[4],
		CreatedAt:  created,
	}, nil
}

func accountRecord(a synth.Account) []string {
	return []string{a.AccountID, a.CustomerID, a.AccountType, formatTime(a.OpenedAt)}
}

func parseAccount(rec []string) (synth.Account, error) {
	opened, err := parseTime(rec[3])
	if err != nil {
		return synth.Account{}, err
	}
	return synth.Account{AccountID: rec[0], CustomerID: rec[1], AccountType: rec[2], OpenedAt: opened}, nil
}

func merchantRecord(m synth.Merchant) []string {
	return []string{m.MerchantID, m.MerchantName, m.Category, m.Country}
}

func parseMerchant(rec []string) (synth.Merchant, error) {
	return synth.Merchant{MerchantID: rec[0], MerchantName: rec[1], Category: rec[2], Country: rec[3]}, nil
}

// checkSign rejects a row whose amount sign disagrees with its direction.
func checkSign(dir synth.Direction, amount decimal.Decimal) error {
	switch {
	case dir == synth.Debit && amount.IsNegative():
	case dir == synth.Credit && amount.IsPositive():
	case dir != synth.Debit && dir != synth.Credit:
		return fmt.Errorf("unknown direction %q", dir)
	default:
		return fmt.Errorf("%s with amount %s", dir, amount.StringFixed(2))
	}
	return nil
}

func transactionRecord(t synth.Transaction) ([]string, error) {
	if err := checkSign(t.Direction, t.Amount); err != nil {
		return nil, fmt.Errorf("transaction %s: %w", t.TransactionID, err)
	}
	suspicious := "0"
	if t.Suspicious() {
		suspicious = "1"
	}
	return []string{
		t.TransactionID,
		formatTime(t.Timestamp),
		t.AccountID,
		t.MerchantID,
		string(t.Direction),
		t.Amount.StringFixed(2),
		t.Channel,
		t.Description,
		suspicious,
		t.Pattern.String(),
	}, nil
}

func parseTransaction(rec []string) (synth.Transaction, error) {
	ts, err := parseTime(rec[1])
	if err != nil {
		return synth.Transaction{}, err
	}
	amount, err := decimal.NewFromString(rec[5])
	if err != nil {
		return synth.Transaction{}, fmt.Errorf("amount: %w", err)
	}
	dir := synth.Direction(strings.ToLower(rec[4]))
	if err := checkSign(dir, amount); err != nil {
		return synth.Transaction{}, err
	}
	pattern, ok := synth.ParsePattern(rec[9])
	if !ok {
		return synth.Transaction{}, fmt.Errorf("unknown pattern %q", rec[9])
	}
	want := "0"
	if pattern.IsSuspicious() {
		want = "1"
	}
	if rec[8] != want {
		return synth.Transaction{}, fmt.Errorf("is_suspicious_ground_truth %q disagrees with pattern %q", rec[8], rec[9])
	}
	return synth.Transaction{
		TransactionID: rec[0],
		Timestamp:     ts,
		AccountID:     rec[2],
		MerchantID:    rec[3],
		Direction:     dir,
		Amount:        amount,
		Channel:       rec[6],
		Description:   rec[7],
		Pattern:       pattern,
	}, nil
}
