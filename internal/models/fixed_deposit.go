package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	FixedDepositActive  = "ACTIVE"
	FixedDepositMatured = "MATURED"
	FixedDepositClosed  = "CLOSED"
)

type FixedDeposit struct {
	ID            int             `json:"id"`
	UserID        int             `json:"-"`
	Plan          string          `json:"plan"`
	Currency      string          `json:"currency"`
	DepositAmount decimal.Decimal `json:"depositAmount"`
	ReturnAmount  decimal.Decimal `json:"returnAmount"`
	Status        string          `json:"status"`
	MatureDate    time.Time       `json:"matureDate"`
	CreatedAt     time.Time       `json:"createdAt"`
}
