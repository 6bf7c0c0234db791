package dto

import (
	"net/http"

	"github.com/erp/stockledger/internal/domain/shared"
)

// Error codes raised by the HTTP layer itself. Domain errors keep their shared.Code* values.
const (
	ErrCodeInternal            = "INTERNAL_ERROR"
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeRequestTooLarge     = "REQUEST_TOO_LARGE"
	ErrCodeIdempotencyConflict = "IDEMPOTENCY_CONFLICT"
	ErrCodeRequestInProgress   = "REQUEST_IN_PROGRESS"
	ErrCodeRouteNotFound       = "ROUTE_NOT_FOUND"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	shared.CodeValidation:          http.StatusBadRequest,
	shared.CodeInsufficientStock:   http.StatusUnprocessableEntity,
	shared.CodeNotFound:            http.StatusNotFound,
	shared.CodeInvalidTransition:   http.StatusUnprocessableEntity,
	shared.CodeConcurrencyConflict: http.StatusConflict,
	shared.CodeAlreadyExists:       http.StatusConflict,

	ErrCodeInternal:            http.StatusInternalServerError,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeRequestTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeIdempotencyConflict: http.StatusUnprocessableEntity,
	ErrCodeRequestInProgress:   http.StatusConflict,
	ErrCodeRouteNotFound:       http.StatusNotFound,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
