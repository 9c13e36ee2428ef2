package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GiftCard is a single-use code. Cards are issued out-of-band (cmd/giftcards)
// and flip from unredeemed to redeemed exactly once.
type GiftCard struct {
	ID         string          `json:"id"`
	Code       string          `json:"code"`
	Currency   string          `json:"currency"`
	Amount     decimal.Decimal `json:"amount"`
	IsRedeemed bool            `json:"isRedeemed"`
	RedeemedBy *int            `json:"redeemedBy,omitempty"`
	RedeemedAt *time.Time      `json:"redeemedAt,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}
