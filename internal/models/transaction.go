package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind distinguishes money leaving from money entering the account.
type Kind string

const (
	KindExpense Kind = "Expense"
	KindIncome  Kind = "Income"
)

// Category is one label from the fixed category set (see categorize.Rules).
type Category string

// CategoryOthers is the fallback label when nothing else matches.
const CategoryOthers Category = "Others"

// PaymentMethodUnspecified is the sentinel used when the statement carries
// no payment method information.
const PaymentMethodUnspecified = "Not specified"

// TransactionCandidate is one parsed, not-yet-confirmed transaction.
// Candidates are created by the parser, held immutably in staging, and
// consumed read-only by the upload gateway.
type TransactionCandidate struct {
	ID            string          `json:"id"`
	Owner         string          `json:"owner"`
	Title         string          `json:"title"`
	Amount        decimal.Decimal `json:"amount"`
	Category      Category        `json:"category"`
	Kind          Kind            `json:"kind"`
	Date          string          `json:"date"` // ISO calendar date, YYYY-MM-DD
	PaymentMethod string          `json:"paymentMethod"`
	Note          string          `json:"note"`
}

// PendingBatch is the staged import unit for one owner. At most one batch
// exists per owner; staging a new batch replaces the previous one.
type PendingBatch struct {
	Owner    string                 `json:"owner"`
	Items    []TransactionCandidate `json:"items"`
	StagedAt time.Time              `json:"stagedAt"`
}
