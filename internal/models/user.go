package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SupportedCurrencies is the closed set of wallet currencies. Every user gets
// a zero balance in each of them at registration.
var SupportedCurrencies = []string{"USD", "EUR", "GBP"}

type User struct {
	ID            int       `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Password      string    `json:"-"`
	AccountNumber string    `json:"accountNumber"`
	Balances      []Balance `json:"balances"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Balance is one per-currency wallet entry; currencies are unique per user.
type Balance struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}
