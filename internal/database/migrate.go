package database

import (
	"database/sql"
	"fmt"
	"log"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		account_number VARCHAR(10) NOT NULL UNIQUE,
		otp_code VARCHAR(6),
		otp_expires_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS balances (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id),
		currency VARCHAR(3) NOT NULL,
		amount NUMERIC(18,2) NOT NULL DEFAULT 0,
		UNIQUE (user_id, currency)
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id SERIAL PRIMARY KEY,
		reference UUID NOT NULL UNIQUE,
		user_id INTEGER NOT NULL REFERENCES users(id),
		date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		description TEXT NOT NULL,
		amount NUMERIC(18,2) NOT NULL,
		type VARCHAR(6) NOT NULL CHECK (type IN ('CREDIT', 'DEBIT')),
		currency VARCHAR(3) NOT NULL,
		status VARCHAR(9) NOT NULL DEFAULT 'COMPLETED'
			CHECK (status IN ('COMPLETED', 'PENDING', 'FAILED'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_user_date
		ON transactions (user_id, date DESC)`,
	`CREATE TABLE IF NOT EXISTS fixed_deposits (
		id SERIAL PRIMARY KEY,
		user_id INTEGER NOT NULL REFERENCES users(id),
		plan TEXT NOT NULL,
		currency VARCHAR(3) NOT NULL,
		deposit_amount NUMERIC(18,2) NOT NULL,
		return_amount NUMERIC(18,2) NOT NULL,
		status VARCHAR(7) NOT NULL DEFAULT 'ACTIVE'
			CHECK (status IN ('ACTIVE', 'MATURED', 'CLOSED')),
		mature_date TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS gift_cards (
		id UUID PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		currency VARCHAR(3) NOT NULL,
		amount NUMERIC(18,2) NOT NULL,
		is_redeemed BOOLEAN NOT NULL DEFAULT FALSE,
		redeemed_by INTEGER REFERENCES users(id),
		redeemed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id SERIAL PRIMARY KEY,
		ticket_id TEXT NOT NULL UNIQUE,
		user_id INTEGER NOT NULL REFERENCES users(id),
		subject TEXT NOT NULL,
		status VARCHAR(7) NOT NULL DEFAULT 'PENDING'
			CHECK (status IN ('PENDING', 'ACTIVE', 'CLOSED')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS ticket_replies (
		id SERIAL PRIMARY KEY,
		ticket_id INTEGER NOT NULL REFERENCES tickets(id),
		author TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate creates missing tables at boot. Statements are idempotent so the
// server can run them unconditionally on every start.
func Migrate(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	log.Println("Database schema up to date")
	return nil
}
