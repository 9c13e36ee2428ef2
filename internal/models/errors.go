package models

import "errors"

// Domain errors surfaced to the API caller. The GraphQL layer returns the
// message verbatim in the error list; the messages match what the client
// already displays.
var (
	ErrNotAuthenticated    = errors.New("Not authenticated")
	ErrInvalidCredentials  = errors.New("Invalid credentials")
	ErrEmailTaken          = errors.New("User with this email already exists.")
	ErrInvalidOTP          = errors.New("Invalid or expired OTP")
	ErrInvalidGoogleToken  = errors.New("Invalid Google token payload.")
	ErrUserNotFound        = errors.New("User not found")
	ErrGiftCardNotFound    = errors.New("Gift card not found")
	ErrGiftCardRedeemed    = errors.New("Gift card has already been redeemed")
	ErrInvalidAmount       = errors.New("Amount must be greater than zero")
	ErrUnsupportedCurrency = errors.New("Unsupported currency")
	ErrUnknownPlan         = errors.New("Unknown deposit plan")
)
