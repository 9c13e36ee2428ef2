package services

import (
	"context"
	cryptorand "crypto/rand"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"github.com/titanbank/backend/internal/models"
)

const uniqueViolation = "23505"

// AuthService owns registration, both sign-in flows, OTP verification and
// session-token issuance.
//
// The two flows are deliberately asymmetric: password sign-in is two-step
// (Login hands out an OtpChallenge, VerifyOTP hands out the token) while
// federated sign-in returns the token directly.
type AuthService struct {
	db        *sql.DB
	mailer    Mailer
	identity  IdentityProvider
	validator *ValidationHelper
}

func NewAuthService(db *sql.DB, mailer Mailer, identity IdentityProvider) *AuthService {
	return &AuthService{
		db:        db,
		mailer:    mailer,
		identity:  identity,
		validator: NewValidationHelper(),
	}
}

// RegisterRequest is the boundary schema for registerUser.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthPayload is the result of a completed sign-in.
type AuthPayload struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// OtpChallenge is the pending-verification signal returned by password login.
// No session token exists until the challenge is answered.
type OtpChallenge struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Register creates a user with a hashed password, a generated account number
// and zero balances in every supported currency.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	if err := s.validator.ValidateStruct(&req); err != nil {
		return nil, err
	}

	var existing int
	err := s.db.QueryRowContext(ctx, "SELECT id FROM users WHERE email = $1", req.Email).Scan(&existing)
	if err == nil {
		return nil, models.ErrEmailTaken
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, req.Name, req.Email, string(hashed))
	if err != nil {
		return nil, err
	}

	log.Printf("[AUTH] User registered - ID: %d, Email: %s", user.ID, user.Email)

	if err := s.mailer.Send(user.Email, "Welcome to Titan Bank",
		fmt.Sprintf("Hello %s,\n\nYour account %s is ready.", user.Name, user.AccountNumber)); err != nil {
		log.Printf("[AUTH] Welcome email failed for %s: %v", user.Email, err)
	}

	return user, nil
}

// createUser inserts the user row and its default balances in one transaction.
// The unique index on email backs the duplicate check even if the pre-check
// raced with a concurrent registration.
func (s *AuthService) createUser(ctx context.Context, name, email, hashedPassword string) (*models.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	user := &models.User{
		Name:          name,
		Email:         email,
		AccountNumber: generateAccountNumber(),
	}

	err = tx.QueryRowContext(ctx,
		"INSERT INTO users (name, email, password, account_number) VALUES ($1, $2, $3, $4) RETURNING id",
		name, email, hashedPassword, user.AccountNumber).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, models.ErrEmailTaken
		}
		return nil, err
	}

	for _, currency := range models.SupportedCurrencies {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO balances (user_id, currency, amount) VALUES ($1, $2, 0)",
			user.ID, currency); err != nil {
			return nil, err
		}
		user.Balances = append(user.Balances, models.Balance{Currency: currency})
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return user, nil
}

// LoginRequest is the boundary schema for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login checks the password and, on success, issues an OTP challenge instead
// of a session token. The code is persisted on the user row and emailed.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*OtpChallenge, error) {
	if err := s.validator.ValidateStruct(&req); err != nil {
		return nil, err
	}

	var (
		userID         int
		name           string
		hashedPassword string
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, password FROM users WHERE email = $1",
		req.Email).Scan(&userID, &name, &hashedPassword)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(req.Password)) != nil {
		log.Printf("[AUTH] Invalid password for %s", req.Email)
		return nil, models.ErrInvalidCredentials
	}

	viper.SetDefault("otp.ttl_minutes", 10)
	code := generateOTP()
	expiresAt := time.Now().Add(time.Duration(viper.GetInt("otp.ttl_minutes")) * time.Minute)

	if _, err := s.db.ExecContext(ctx,
		"UPDATE users SET otp_code = $1, otp_expires_at = $2, updated_at = NOW() WHERE id = $3",
		code, expiresAt, userID); err != nil {
		return nil, err
	}

	log.Printf("[AUTH] OTP issued for user %d", userID)

	if err := s.mailer.Send(req.Email, "Your Titan Bank verification code",
		fmt.Sprintf("Hello %s,\n\nYour one-time code is %s. It expires in %d minutes.",
			name, code, viper.GetInt("otp.ttl_minutes"))); err != nil {
		log.Printf("[AUTH] OTP email failed for %s: %v", req.Email, err)
	}

	return &OtpChallenge{Email: req.Email, ExpiresAt: expiresAt}, nil
}

// VerifyOTPRequest is the boundary schema for verifyOtp.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

// VerifyOTP answers the challenge: the (email, code) pair must match an
// unexpired OTP. The code is single-use and cleared before the token is
// returned.
func (s *AuthService) VerifyOTP(ctx context.Context, req VerifyOTPRequest) (*AuthPayload, error) {
	if err := s.validator.ValidateStruct(&req); err != nil {
		return nil, err
	}

	var userID int
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM users WHERE email = $1 AND otp_code = $2 AND otp_expires_at > NOW()",
		req.Email, req.OTP).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		log.Printf("[AUTH] OTP rejected for %s", req.Email)
		return nil, models.ErrInvalidOTP
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx,
		"UPDATE users SET otp_code = NULL, otp_expires_at = NULL, updated_at = NOW() WHERE id = $1",
		userID); err != nil {
		return nil, err
	}

	user, err := getUserWithBalances(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	token, err := generateToken(userID)
	if err != nil {
		return nil, err
	}

	log.Printf("[AUTH] Login completed for user %d", userID)

	if err := s.mailer.Send(user.Email, "New login to your Titan Bank account",
		fmt.Sprintf("Hello %s,\n\nA new login to your account just succeeded. If this wasn't you, contact support.",
			user.Name)); err != nil {
		log.Printf("[AUTH] Login notice email failed for %s: %v", user.Email, err)
	}

	return &AuthPayload{Token: token, User: user}, nil
}

// SignInWithGoogle exchanges the client's authorization code and signs the
// user in directly, creating a local account on first sight. No OTP step on
// this path.
func (s *AuthService) SignInWithGoogle(ctx context.Context, code string) (*AuthPayload, error) {
	identity, err := s.identity.Exchange(ctx, code)
	if err != nil {
		log.Printf("[AUTH] Google exchange failed: %v", err)
		return nil, models.ErrInvalidGoogleToken
	}
	if identity.Email == "" || identity.Name == "" {
		return nil, models.ErrInvalidGoogleToken
	}

	var userID int
	err = s.db.QueryRowContext(ctx, "SELECT id FROM users WHERE email = $1", identity.Email).Scan(&userID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Placeholder password: unusable for password login.
		hashed, hashErr := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
		if hashErr != nil {
			return nil, hashErr
		}
		user, createErr := s.createUser(ctx, identity.Name, identity.Email, string(hashed))
		if createErr != nil {
			return nil, createErr
		}
		userID = user.ID
		log.Printf("[AUTH] Google sign-in created user %d (%s)", userID, identity.Email)
	case err != nil:
		return nil, err
	}

	user, err := getUserWithBalances(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	token, err := generateToken(userID)
	if err != nil {
		return nil, err
	}

	return &AuthPayload{Token: token, User: user}, nil
}

// GetUserByID resolves the calling principal's profile.
func (s *AuthService) GetUserByID(ctx context.Context, userID int) (*models.User, error) {
	return getUserWithBalances(ctx, s.db, userID)
}

func generateToken(userID int) (string, error) {
	viper.SetDefault("jwt.expiry_hours", 24)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Duration(viper.GetInt("jwt.expiry_hours")) * time.Hour).Unix(),
	})
	return token.SignedString([]byte(viper.GetString("jwt.secret_key")))
}

func generateAccountNumber() string {
	const digits = "0123456789"
	b := make([]byte, 10)
	for i := range b {
		b[i] = digits[rand.Intn(len(digits))]
	}
	return string(b)
}

func generateOTP() string {
	b := make([]byte, 4)
	cryptorand.Read(b)
	return fmt.Sprintf("%06d", binary.BigEndian.Uint32(b)%1000000)
}
