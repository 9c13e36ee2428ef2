package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/titanbank/backend/internal/models"
)

func newAuthFixture(t *testing.T) (*AuthService, sqlmock.Sqlmock, *MockMailer, *MockIdentityProvider) {
	t.Helper()

	db, dbMock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	viper.Set("jwt.secret_key", "test-secret")
	viper.Set("jwt.expiry_hours", 24)
	viper.Set("otp.ttl_minutes", 10)

	mailer := new(MockMailer)
	identity := new(MockIdentityProvider)
	return NewAuthService(db, mailer, identity), dbMock, mailer, identity
}

func TestAuthService_Register(t *testing.T) {
	t.Run("successful registration", func(t *testing.T) {
		service, dbMock, mailer, _ := newAuthFixture(t)

		dbMock.ExpectQuery("SELECT id FROM users WHERE email").
			WithArgs("jane@example.com").
			WillReturnError(sql.ErrNoRows)

		dbMock.ExpectBegin()
		dbMock.ExpectQuery("INSERT INTO users").
			WithArgs("Jane Doe", "jane@example.com", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
		for _, currency := range models.SupportedCurrencies {
			dbMock.ExpectExec("INSERT INTO balances").
				WithArgs(1, currency).
				WillReturnResult(sqlmock.NewResult(1, 1))
		}
		dbMock.ExpectCommit()

		mailer.On("Send", "jane@example.com", mock.Anything, mock.Anything).Return(nil)

		user, err := service.Register(context.Background(), RegisterRequest{
			Name:     "Jane Doe",
			Email:    "jane@example.com",
			Password: "password123",
		})

		assert.NoError(t, err)
		assert.Equal(t, 1, user.ID)
		assert.Len(t, user.AccountNumber, 10)
		assert.Len(t, user.Balances, 3)
		for _, b := range user.Balances {
			assert.True(t, b.Amount.IsZero())
		}
		assert.NoError(t, dbMock.ExpectationsWereMet())
		mailer.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		service, dbMock, _, _ := newAuthFixture(t)

		dbMock.ExpectQuery("SELECT id FROM users WHERE email").
			WithArgs("jane@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

		_, err := service.Register(context.Background(), RegisterRequest{
			Name:     "Jane Doe",
			Email:    "jane@example.com",
			Password: "password123",
		})

		assert.ErrorIs(t, err, models.ErrEmailTaken)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("invalid email rejected at the boundary", func(t *testing.T) {
		service, dbMock, _, _ := newAuthFixture(t)

		_, err := service.Register(context.Background(), RegisterRequest{
			Name:     "Jane Doe",
			Email:    "not-an-email",
			Password: "password123",
		})

		assert.Error(t, err)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestAuthService_Login(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)

	t.Run("issues OTP challenge, not a token", func(t *testing.T) {
		service, dbMock, mailer, _ := newAuthFixture(t)

		dbMock.ExpectQuery("SELECT id, name, password FROM users WHERE email").
			WithArgs("jane@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "password"}).
				AddRow(1, "Jane Doe", string(hashed)))
		dbMock.ExpectExec("UPDATE users SET otp_code").
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		mailer.On("Send", "jane@example.com", mock.Anything, mock.Anything).Return(nil)

		challenge, err := service.Login(context.Background(), LoginRequest{
			Email:    "jane@example.com",
			Password: "password123",
		})

		assert.NoError(t, err)
		assert.Equal(t, "jane@example.com", challenge.Email)
		assert.True(t, challenge.ExpiresAt.After(time.Now()))
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("wrong password", func(t *testing.T) {
		service, dbMock, _, _ := newAuthFixture(t)

		dbMock.ExpectQuery("SELECT id, name, password FROM users WHERE email").
			WithArgs("jane@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "password"}).
				AddRow(1, "Jane Doe", string(hashed)))

		_, err := service.Login(context.Background(), LoginRequest{
			Email:    "jane@example.com",
			Password: "wrong",
		})

		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		service, dbMock, _, _ := newAuthFixture(t)

		dbMock.ExpectQuery("SELECT id, name, password FROM users WHERE email").
			WithArgs("nobody@example.com").
			WillReturnError(sql.ErrNoRows)

		_, err := service.Login(context.Background(), LoginRequest{
			Email:    "nobody@example.com",
			Password: "password123",
		})

		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	})
}

func TestAuthService_VerifyOTP(t *testing.T) {
	t.Run("correct code yields token with matching principal", func(t *testing.T) {
		service, dbMock, mailer, _ := newAuthFixture(t)

		dbMock.ExpectQuery("SELECT id FROM users WHERE email = (.+) AND otp_code").
			WithArgs("jane@example.com", "123456").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
		dbMock.ExpectExec("UPDATE users SET otp_code = NULL").
			WithArgs(7).
			WillReturnResult(sqlmock.NewResult(0, 1))
		expectUserWithBalances(dbMock, 7, "jane@example.com", "0")

		mailer.On("Send", "jane@example.com", mock.Anything, mock.Anything).Return(nil)

		payload, err := service.VerifyOTP(context.Background(), VerifyOTPRequest{
			Email: "jane@example.com",
			OTP:   "123456",
		})

		assert.NoError(t, err)
		assert.Equal(t, 7, payload.User.ID)

		token, err := jwt.Parse(payload.Token, func(token *jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		assert.NoError(t, err)
		claims := token.Claims.(jwt.MapClaims)
		assert.Equal(t, float64(7), claims["user_id"])
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("wrong or expired code", func(t *testing.T) {
		service, dbMock, _, _ := newAuthFixture(t)

		dbMock.ExpectQuery("SELECT id FROM users WHERE email = (.+) AND otp_code").
			WithArgs("jane@example.com", "654321").
			WillReturnError(sql.ErrNoRows)

		_, err := service.VerifyOTP(context.Background(), VerifyOTPRequest{
			Email: "jane@example.com",
			OTP:   "654321",
		})

		assert.ErrorIs(t, err, models.ErrInvalidOTP)
	})

	t.Run("malformed code rejected at the boundary", func(t *testing.T) {
		service, dbMock, _, _ := newAuthFixture(t)

		_, err := service.VerifyOTP(context.Background(), VerifyOTPRequest{
			Email: "jane@example.com",
			OTP:   "12",
		})

		assert.Error(t, err)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestAuthService_SignInWithGoogle(t *testing.T) {
	t.Run("existing user signs in without OTP", func(t *testing.T) {
		service, dbMock, _, identity := newAuthFixture(t)

		identity.On("Exchange", mock.Anything, "auth-code").
			Return(&Identity{Email: "jane@example.com", Name: "Jane Doe"}, nil)

		dbMock.ExpectQuery("SELECT id FROM users WHERE email").
			WithArgs("jane@example.com").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
		expectUserWithBalances(dbMock, 3, "jane@example.com", "0")

		payload, err := service.SignInWithGoogle(context.Background(), "auth-code")

		assert.NoError(t, err)
		assert.NotEmpty(t, payload.Token)
		assert.Equal(t, 3, payload.User.ID)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("first sign-in creates the user", func(t *testing.T) {
		service, dbMock, _, identity := newAuthFixture(t)

		identity.On("Exchange", mock.Anything, "auth-code").
			Return(&Identity{Email: "new@example.com", Name: "New User"}, nil)

		dbMock.ExpectQuery("SELECT id FROM users WHERE email").
			WithArgs("new@example.com").
			WillReturnError(sql.ErrNoRows)
		dbMock.ExpectBegin()
		dbMock.ExpectQuery("INSERT INTO users").
			WithArgs("New User", "new@example.com", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
		for _, currency := range models.SupportedCurrencies {
			dbMock.ExpectExec("INSERT INTO balances").
				WithArgs(9, currency).
				WillReturnResult(sqlmock.NewResult(1, 1))
		}
		dbMock.ExpectCommit()
		expectUserWithBalances(dbMock, 9, "new@example.com", "0")

		payload, err := service.SignInWithGoogle(context.Background(), "auth-code")

		assert.NoError(t, err)
		assert.Equal(t, 9, payload.User.ID)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("assertion without email", func(t *testing.T) {
		service, _, _, identity := newAuthFixture(t)

		identity.On("Exchange", mock.Anything, "auth-code").
			Return(&Identity{Name: "Jane Doe"}, nil)

		_, err := service.SignInWithGoogle(context.Background(), "auth-code")

		assert.ErrorIs(t, err, models.ErrInvalidGoogleToken)
	})

	t.Run("exchange failure", func(t *testing.T) {
		service, _, _, identity := newAuthFixture(t)

		identity.On("Exchange", mock.Anything, "bad-code").
			Return(nil, assert.AnError)

		_, err := service.SignInWithGoogle(context.Background(), "bad-code")

		assert.ErrorIs(t, err, models.ErrInvalidGoogleToken)
	})
}

// expectUserWithBalances queues the user+balances fetch shared by resolvers.
func expectUserWithBalances(dbMock sqlmock.Sqlmock, userID int, email, usdAmount string) {
	dbMock.ExpectQuery("SELECT id, name, email, account_number FROM users WHERE id").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "account_number"}).
			AddRow(userID, "Jane Doe", email, "1234567890"))
	dbMock.ExpectQuery("SELECT currency, amount FROM balances WHERE user_id").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"currency", "amount"}).
			AddRow("EUR", "0").
			AddRow("GBP", "0").
			AddRow("USD", usdAmount))
}
