package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionCredit = "CREDIT"
	TransactionDebit  = "DEBIT"

	TransactionCompleted = "COMPLETED"
	TransactionPending   = "PENDING"
	TransactionFailed    = "FAILED"
)

// Transaction is an immutable ledger entry. Rows are appended by
// balance-affecting operations and never updated.
type Transaction struct {
	ID          int             `json:"id"`
	Reference   string          `json:"reference"`
	UserID      int             `json:"-"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
}
