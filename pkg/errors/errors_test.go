package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAppError(t *testing.T) {
	err := NewAppError(ErrCodeInvalidRange, "end date must be after start date")

	assert.Equal(t, ErrCodeInvalidRange, err.Code)
	assert.Equal(t, http.StatusBadRequest, err.HTTPStatus)
	assert.False(t, err.Retryable)
	assert.Equal(t, "INVALID_DATE_RANGE: end date must be after start date", err.Error())
}

func TestWrapError(t *testing.T) {
	cause := fmt.Errorf("dial tcp: connection refused")
	err := WrapError(cause, ErrCodeFeedError, "failed to download market data")

	assert.Equal(t, http.StatusBadGateway, err.HTTPStatus)
	assert.True(t, err.Retryable)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrapErrorNil(t *testing.T) {
	assert.Nil(t, WrapError(nil, ErrCodeInternal, "whatever"))
}

func TestGetAppError(t *testing.T) {
	appErr := NewAppError(ErrCodeNoData, "no data returned for AAPL")
	wrapped := fmt.Errorf("loading frames: %w", appErr)

	got := GetAppError(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, ErrCodeNoData, got.Code)

	assert.Nil(t, GetAppError(fmt.Errorf("plain error")))
	assert.Nil(t, GetAppError(nil))
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		code   ErrorCode
		status int
	}{
		{ErrCodeInvalidSymbol, http.StatusBadRequest},
		{ErrCodeNoData, http.StatusNotFound},
		{ErrCodeRateLimit, http.StatusTooManyRequests},
		{ErrCodeFeedError, http.StatusBadGateway},
		{ErrCodeTimeout, http.StatusGatewayTimeout},
		{ErrCodeOptimization, http.StatusInternalServerError},
		{ErrCodeDatabaseError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.status, NewAppError(tt.code, "x").HTTPStatus, string(tt.code))
	}
}

func TestToErrorResponse(t *testing.T) {
	err := NewAppError(ErrCodeOptimization, "failed to optimize weights").
		WithDetails("covariance matrix is not positive definite").
		WithRequestID("req-123")

	resp := err.ToErrorResponse()
	assert.Equal(t, ErrCodeOptimization, resp.Code)
	assert.Equal(t, "failed to optimize weights", resp.Message)
	assert.Equal(t, "covariance matrix is not positive definite", resp.Details)
	assert.Equal(t, "req-123", resp.RequestID)
}
