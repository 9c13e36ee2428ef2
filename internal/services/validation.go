package services

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// ValidationHelper wraps the shared validator instance behind the boundary
// schemas (RegisterRequest, DepositRequest, RedeemRequest, ...). Services
// translate its errors into domain sentinels; field-level detail never
// leaves the service layer.
type ValidationHelper struct {
	validator *validator.Validate
}

func NewValidationHelper() *ValidationHelper {
	return &ValidationHelper{
		validator: validator.New(),
	}
}

// ValidateStruct validates a struct against its validate tags.
func (vh *ValidationHelper) ValidateStruct(s any) error {
	return vh.validator.Struct(s)
}

// ErrorResponse is the JSON body for transport-level failures, which here
// means malformed request envelopes. Operation failures travel inside the
// GraphQL response instead.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SendErrorResponse writes a JSON error with the given status.
func SendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
