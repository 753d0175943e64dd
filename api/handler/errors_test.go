package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/use-agent/aeoaudit/models"
)

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{models.ErrCodeInvalidInput, http.StatusBadRequest},
		{models.ErrCodeUnauthorized, http.StatusUnauthorized},
		{models.ErrCodeRateLimited, http.StatusTooManyRequests},
		{models.ErrCodeFetchFailed, http.StatusBadGateway},
		{models.ErrCodeOracleCall, http.StatusBadGateway},
		{models.ErrCodeOracleParse, http.StatusBadGateway},
		{models.ErrCodeOracleAuth, http.StatusServiceUnavailable},
		{models.ErrCodeOracleRateLimit, http.StatusServiceUnavailable},
		{models.ErrCodeOracleTimeout, http.StatusGatewayTimeout},
		{models.ErrCodeTransformInvariant, http.StatusInternalServerError},
		{models.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, mapErrorToStatus(models.NewAuditError(tt.code, "x", nil)))
		})
	}
}

func TestAsAuditError(t *testing.T) {
	ae := models.NewAuditError(models.ErrCodeOracleTimeout, "slow", nil)
	assert.Same(t, ae, asAuditError(fmt.Errorf("wrapped: %w", ae)))

	plain := asAuditError(errors.New("boom"))
	assert.Equal(t, models.ErrCodeInternal, plain.Code)
	assert.Equal(t, "boom", plain.Message)
}
