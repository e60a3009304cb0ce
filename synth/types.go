package synth

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a synthetic bank customer.
type Customer struct {
	CustomerID string
	FullName   string
	Email      string
	Phone      string
	Address    string
	CreatedAt  time.Time
}

// Account is owned by exactly one customer.
type Account struct {
	AccountID   string
	CustomerID  string
	AccountType string
	OpenedAt    time.Time
}

// Merchant is a transaction counterparty.
type Merchant struct {
	MerchantID   string
	MerchantName string
	Category     string
	Country      string
}

// Direction is the side of a transaction from the account's point of view.
type Direction string

const (
	Debit  Direction = "debit"
	Credit Direction = "credit"
)

// Pattern is the ground-truth label of a transaction.
type Pattern uint8

const (
	PatternNone Pattern = iota
	PatternStructuring
	PatternVelocity
	PatternRoundTrip
)

// Patterns lists every labeled pattern, in injection order.
var Patterns = []Pattern{PatternStructuring, PatternVelocity, PatternRoundTrip}

// String returns the label as written to the pattern column. Unlabeled
// transactions render as the empty string.
func (p Pattern) String() string {
	switch p {
	case PatternStructuring:
		return "structuring"
	case PatternVelocity:
		return "velocity"
	case PatternRoundTrip:
		return "round_trip"
	default:
		return ""
	}
}

// IsSuspicious reports whether the pattern marks a suspicious transaction.
func (p Pattern) IsSuspicious() bool {
	return p != PatternNone
}

// ParsePattern is the inverse of Pattern.String.
func ParsePattern(s string) (Pattern, bool) {
	switch s {
	case "":
		return PatternNone, true
	case "structuring":
		return PatternStructuring, true
	case "velocity":
		return PatternVelocity, true
	case "round_trip":
		return PatternRoundTrip, true
	}
	return PatternNone, false
}

// Transaction is one row of the transactions table. Amount is signed:
// negative for debits, positive for credits.
type Transaction struct {
	TransactionID string
	Timestamp     time.Time
	AccountID     string
	MerchantID    string
	Direction     Direction
	Amount        decimal.Decimal
	Channel       string
	Description   string
	Pattern       Pattern
}

// Suspicious is the ground-truth flag, derived from the pattern label.
func (t Transaction) Suspicious() bool {
	return t.Pattern.IsSuspicious()
}

// newTransaction builds a transaction whose sign always agrees with its
// direction. magnitude must be positive.
func newTransaction(id string, ts time.Time, accountID, merchantID string, dir Direction, magnitude decimal.Decimal, channel, description string, pattern Pattern) Transaction {
	amount := magnitude.Abs()
	if dir == Debit {
		amount = amount.Neg()
	}
	return Transaction{
		TransactionID: id,
		Timestamp:     ts,
		AccountID:     accountID,
		MerchantID:    merchantID,
		Direction:     dir,
		Amount:        amount,
		Channel:       channel,
		Description:   description,
		Pattern:       pattern,
	}
}

// Population is the reference entity set a transaction stream draws from.
type Population struct {
	Customers []Customer
	Accounts  []Account
	Merchants []Merchant
}

// Dataset is the complete output of one run.
type Dataset struct {
	Customers    []Customer
	Accounts     []Account
	Merchants    []Merchant
	Transactions []Transaction
}
