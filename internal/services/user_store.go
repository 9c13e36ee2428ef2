package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/titanbank/backend/internal/models"
)

// getUserWithBalances loads a user row together with its per-currency wallet
// entries. Shared by every resolver that returns a User.
func getUserWithBalances(ctx context.Context, db *sql.DB, userID int) (*models.User, error) {
	var user models.User
	err := db.QueryRowContext(ctx,
		"SELECT id, name, email, account_number FROM users WHERE id = $1",
		userID).Scan(&user.ID, &user.Name, &user.Email, &user.AccountNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		"SELECT currency, amount FROM balances WHERE user_id = $1 ORDER BY currency",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var b models.Balance
		if err := rows.Scan(&b.Currency, &b.Amount); err != nil {
			return nil, err
		}
		user.Balances = append(user.Balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &user, nil
}
