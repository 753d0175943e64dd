package handler

import (
	"errors"
	"net/http"

	"github.com/use-agent/aeoaudit/models"
)

func invalidInput(err error) *models.ErrorDetail {
	return &models.ErrorDetail{
		Code:    models.ErrCodeInvalidInput,
		Message: err.Error(),
	}
}

// asAuditError unwraps err to an AuditError, wrapping unknown errors as
// INTERNAL_ERROR.
func asAuditError(err error) *models.AuditError {
	var ae *models.AuditError
	if errors.As(err, &ae) {
		return ae
	}
	return models.NewAuditError(models.ErrCodeInternal, err.Error(), err)
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.AuditError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeFetchFailed, models.ErrCodeOracleCall, models.ErrCodeOracleParse:
		return http.StatusBadGateway // 502
	case models.ErrCodeOracleAuth, models.ErrCodeOracleRateLimit:
		return http.StatusServiceUnavailable // 503
	case models.ErrCodeOracleTimeout:
		return http.StatusGatewayTimeout // 504
	default:
		return http.StatusInternalServerError // 500
	}
}
