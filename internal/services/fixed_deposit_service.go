package services

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/titanbank/backend/internal/models"
)

type depositPlan struct {
	Rate   decimal.Decimal
	Months int
}

// Plans is the closed set of fixed-deposit products. Payout is principal plus
// simple interest at the plan rate, due at maturity.
var plans = map[string]depositPlan{
	"starter":      {Rate: decimal.NewFromFloat(0.05), Months: 6},
	"premium":      {Rate: decimal.NewFromFloat(0.08), Months: 12},
	"professional": {Rate: decimal.NewFromFloat(0.12), Months: 24},
}

// FixedDepositService issues and lists term-deposit contracts.
//
// Applying does not debit the principal from any wallet balance. That matches
// the product's observed behavior and is a recorded decision, not an
// oversight; see DESIGN.md.
type FixedDepositService struct {
	db        *sql.DB
	validator *ValidationHelper
}

func NewFixedDepositService(db *sql.DB) *FixedDepositService {
	return &FixedDepositService{
		db:        db,
		validator: NewValidationHelper(),
	}
}

// ApplyRequest is the boundary schema for applyFixedDeposit.
type ApplyRequest struct {
	Plan     string  `json:"plan" validate:"required"`
	Currency string  `json:"currency" validate:"required,oneof=USD EUR GBP"`
	Amount   float64 `json:"amount" validate:"required,gt=0"`
}

// Apply creates an ACTIVE fixed-deposit contract for the caller.
func (s *FixedDepositService) Apply(ctx context.Context, userID int, req ApplyRequest) (*models.FixedDeposit, error) {
	if err := s.validator.ValidateStruct(&req); err != nil {
		if req.Amount <= 0 {
			return nil, models.ErrInvalidAmount
		}
		return nil, models.ErrUnsupportedCurrency
	}

	plan, ok := plans[req.Plan]
	if !ok {
		return nil, models.ErrUnknownPlan
	}

	amount := decimal.NewFromFloat(req.Amount)
	fd := &models.FixedDeposit{
		UserID:        userID,
		Plan:          req.Plan,
		Currency:      req.Currency,
		DepositAmount: amount,
		ReturnAmount:  amount.Add(amount.Mul(plan.Rate)).Round(2),
		Status:        models.FixedDepositActive,
		MatureDate:    time.Now().AddDate(0, plan.Months, 0),
	}

	err := s.db.QueryRowContext(ctx,
		"INSERT INTO fixed_deposits (user_id, plan, currency, deposit_amount, return_amount, status, mature_date) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at",
		fd.UserID, fd.Plan, fd.Currency, fd.DepositAmount, fd.ReturnAmount, fd.Status, fd.MatureDate).
		Scan(&fd.ID, &fd.CreatedAt)
	if err != nil {
		return nil, err
	}

	log.Printf("[DEPOSIT] Fixed deposit %d opened for user %d (%s, %s %s)",
		fd.ID, userID, fd.Plan, fd.DepositAmount, fd.Currency)
	return fd, nil
}

// List returns the caller's fixed deposits, newest first.
func (s *FixedDepositService) List(ctx context.Context, userID int) ([]models.FixedDeposit, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, plan, currency, deposit_amount, return_amount, status, mature_date, created_at FROM fixed_deposits WHERE user_id = $1 ORDER BY created_at DESC",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deposits []models.FixedDeposit
	for rows.Next() {
		fd := models.FixedDeposit{UserID: userID}
		if err := rows.Scan(&fd.ID, &fd.Plan, &fd.Currency, &fd.DepositAmount,
			&fd.ReturnAmount, &fd.Status, &fd.MatureDate, &fd.CreatedAt); err != nil {
			return nil, err
		}
		deposits = append(deposits, fd)
	}
	return deposits, rows.Err()
}
