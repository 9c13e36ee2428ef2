package services

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationHelper_ValidateStruct(t *testing.T) {
	helper := NewValidationHelper()

	assert.NoError(t, helper.ValidateStruct(&DepositRequest{Amount: 10, Currency: "USD"}))
	assert.Error(t, helper.ValidateStruct(&DepositRequest{Amount: 10, Currency: "JPY"}))
	assert.Error(t, helper.ValidateStruct(&RedeemRequest{Code: ""}))
	assert.NoError(t, helper.ValidateStruct(&RedeemRequest{Code: "GC1"}))
}

func TestSendErrorResponse(t *testing.T) {
	rec := httptest.NewRecorder()

	SendErrorResponse(rec, "Invalid request body", http.StatusBadRequest)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error": "Invalid request body"}`, rec.Body.String())
}
