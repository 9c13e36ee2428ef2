package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/titanbank/backend/internal/middleware"
	"github.com/titanbank/backend/internal/services"
)

type silentMailer struct{}

func (silentMailer) Send(to, subject, body string) error    { return nil }
func (silentMailer) SendToAdmin(subject, body string) error { return nil }

func newHandlerFixture(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()

	db, dbMock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mailer := silentMailer{}
	notify := services.NewNotifyService(nil)
	resolver := &Resolver{
		Auth:     services.NewAuthService(db, mailer, nil),
		Wallet:   services.NewWalletService(db, mailer, notify),
		Deposits: services.NewFixedDepositService(db),
		Tickets:  services.NewTicketService(db),
		Notify:   notify,
	}

	handler, err := NewHandler(resolver)
	assert.NoError(t, err)
	return handler, dbMock
}

type graphqlResponse struct {
	Data   map[string]any `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func execute(t *testing.T, handler *Handler, ctx context.Context, body string) (*httptest.ResponseRecorder, graphqlResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp graphqlResponse
	if rec.Code == http.StatusOK {
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestHandler_ServeHTTP(t *testing.T) {
	t.Run("unauthenticated query is refused per field", func(t *testing.T) {
		handler, dbMock := newHandlerFixture(t)

		rec, resp := execute(t, handler, context.Background(),
			`{"query": "{ myTickets { ticketId } }"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, resp.Errors, 1)
		assert.Contains(t, resp.Errors[0].Message, "Not authenticated")
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("authenticated transactions query", func(t *testing.T) {
		handler, dbMock := newHandlerFixture(t)

		dbMock.ExpectQuery("SELECT id, reference, date, description, amount, type, currency, status FROM transactions WHERE user_id").
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows(
				[]string{"id", "reference", "date", "description", "amount", "type", "currency", "status"}).
				AddRow(1, "ref-1", time.Now(), "Deposit to USD wallet", "100.00", "CREDIT", "USD", "COMPLETED"))

		ctx := context.WithValue(context.Background(), middleware.UserIDKey, 1)
		rec, resp := execute(t, handler, ctx,
			`{"query": "{ myTransactions { reference description amount currency } }"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, resp.Errors)

		transactions, ok := resp.Data["myTransactions"].([]any)
		assert.True(t, ok)
		assert.Len(t, transactions, 1)
		first := transactions[0].(map[string]any)
		assert.Equal(t, "ref-1", first["reference"])
		assert.Equal(t, "Deposit to USD wallet", first["description"])
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("mutation with variables", func(t *testing.T) {
		handler, dbMock := newHandlerFixture(t)

		body := `{
			"query": "mutation Notify($message: String!) { triggerTestNotification(message: $message) }",
			"variables": {"message": "hello"}
		}`
		rec, resp := execute(t, handler, context.Background(), body)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, resp.Errors)
		assert.Equal(t, "Notification sent!", resp.Data["triggerTestNotification"])
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		handler, _ := newHandlerFixture(t)

		rec, _ := execute(t, handler, context.Background(), `{"query": `)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("trailing JSON object rejected", func(t *testing.T) {
		handler, _ := newHandlerFixture(t)

		rec, _ := execute(t, handler, context.Background(),
			`{"query": "{ me { id } }"}{"query": "{ me { id } }"}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing query rejected", func(t *testing.T) {
		handler, _ := newHandlerFixture(t)

		rec, _ := execute(t, handler, context.Background(), `{"variables": {}}`)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
