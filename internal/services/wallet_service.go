package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/titanbank/backend/internal/models"
)

// WalletService owns the balance-affecting operations. Every balance change
// and its ledger entry are written inside one database transaction so the
// wallet and the ledger cannot drift apart on partial failure.
type WalletService struct {
	db        *sql.DB
	mailer    Mailer
	notify    *NotifyService
	validator *ValidationHelper
}

func NewWalletService(db *sql.DB, mailer Mailer, notify *NotifyService) *WalletService {
	return &WalletService{
		db:        db,
		mailer:    mailer,
		notify:    notify,
		validator: NewValidationHelper(),
	}
}

// DepositRequest is the boundary schema for deposit.
type DepositRequest struct {
	Amount   float64 `json:"amount" validate:"required,gt=0"`
	Currency string  `json:"currency" validate:"required,oneof=USD EUR GBP"`
}

// Deposit credits the caller's wallet and appends the matching CREDIT ledger
// entry, creating the per-currency balance row on first use.
func (s *WalletService) Deposit(ctx context.Context, userID int, req DepositRequest) (*models.User, error) {
	if err := s.validator.ValidateStruct(&req); err != nil {
		if req.Amount <= 0 {
			return nil, models.ErrInvalidAmount
		}
		return nil, models.ErrUnsupportedCurrency
	}

	amount := decimal.NewFromFloat(req.Amount)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := creditBalance(ctx, tx, userID, req.Currency, amount); err != nil {
		return nil, err
	}

	if err := appendLedgerEntry(ctx, tx, userID,
		fmt.Sprintf("Deposit to %s wallet", req.Currency),
		amount, models.TransactionCredit, req.Currency); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Printf("[WALLET] Deposit of %s %s for user %d", amount, req.Currency, userID)
	return getUserWithBalances(ctx, s.db, userID)
}

// RedeemRequest is the boundary schema for redeemGiftCard.
type RedeemRequest struct {
	Code string `json:"code" validate:"required"`
}

// RedeemGiftCard credits the card's amount to the caller's matching-currency
// wallet. The card row is locked for the duration of the transaction and the
// redeemed flag is flipped with a guarded update, so a code can be consumed
// at most once even under concurrent redemption.
func (s *WalletService) RedeemGiftCard(ctx context.Context, userID int, req RedeemRequest) (*models.User, error) {
	if err := s.validator.ValidateStruct(&req); err != nil {
		return nil, models.ErrGiftCardNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var card models.GiftCard
	err = tx.QueryRowContext(ctx,
		"SELECT id, currency, amount, is_redeemed FROM gift_cards WHERE code = $1 FOR UPDATE",
		req.Code).Scan(&card.ID, &card.Currency, &card.Amount, &card.IsRedeemed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrGiftCardNotFound
	}
	if err != nil {
		return nil, err
	}
	if card.IsRedeemed {
		return nil, models.ErrGiftCardRedeemed
	}

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT id FROM users WHERE id = $1", userID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := creditBalance(ctx, tx, userID, card.Currency, card.Amount); err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx,
		"UPDATE gift_cards SET is_redeemed = TRUE, redeemed_by = $1, redeemed_at = $2 WHERE id = $3 AND NOT is_redeemed",
		userID, time.Now(), card.ID)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, models.ErrGiftCardRedeemed
	}

	if err := appendLedgerEntry(ctx, tx, userID,
		fmt.Sprintf("Gift card redemption (%s)", req.Code),
		card.Amount, models.TransactionCredit, card.Currency); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	log.Printf("[WALLET] Gift card %s redeemed by user %d", req.Code, userID)

	if err := s.mailer.SendToAdmin("Gift card redeemed",
		fmt.Sprintf("Card %s (%s %s) was redeemed by user %d.",
			req.Code, card.Amount, card.Currency, userID)); err != nil {
		log.Printf("[WALLET] Admin notice failed: %v", err)
	}
	if err := s.notify.Publish(ctx, fmt.Sprintf("Gift card %s redeemed", req.Code)); err != nil {
		log.Printf("[WALLET] Bus notice failed: %v", err)
	}

	return getUserWithBalances(ctx, s.db, userID)
}

// Transactions returns the caller's ledger entries, most recent first.
func (s *WalletService) Transactions(ctx context.Context, userID int) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, reference, date, description, amount, type, currency, status FROM transactions WHERE user_id = $1 ORDER BY date DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		t := models.Transaction{UserID: userID}
		if err := rows.Scan(&t.ID, &t.Reference, &t.Date, &t.Description,
			&t.Amount, &t.Type, &t.Currency, &t.Status); err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

// creditBalance upserts the per-currency wallet entry. The unique index on
// (user_id, currency) makes the increment atomic.
func creditBalance(ctx context.Context, tx *sql.Tx, userID int, currency string, amount decimal.Decimal) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO balances (user_id, currency, amount) VALUES ($1, $2, $3) ON CONFLICT (user_id, currency) DO UPDATE SET amount = balances.amount + EXCLUDED.amount",
		userID, currency, amount)
	return err
}

func appendLedgerEntry(ctx context.Context, tx *sql.Tx, userID int, description string, amount decimal.Decimal, entryType, currency string) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO transactions (reference, user_id, date, description, amount, type, currency, status) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		uuid.NewString(), userID, time.Now(), description, amount, entryType, currency, models.TransactionCompleted)
	return err
}
