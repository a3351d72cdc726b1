package openwebif

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusError_Sentinels(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusUnauthorized, ErrForbidden},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusConflict, ErrConflict},
		{http.StatusGatewayTimeout, ErrTimeout},
		{http.StatusBadGateway, ErrUpstreamError},
		{http.StatusInternalServerError, ErrUpstreamError},
		{http.StatusTeapot, ErrUpstreamBadResponse},
	}
	for _, tt := range tests {
		err := statusError("epgservice", tt.status, "body")
		assert.ErrorIs(t, err, tt.want, "status %d", tt.status)

		var owi *OWIError
		if assert.True(t, errors.As(err, &owi)) {
			assert.Equal(t, tt.status, owi.Status)
			assert.Contains(t, owi.Error(), "epgservice")
		}
	}
}

func TestTransportError(t *testing.T) {
	assert.ErrorIs(t, transportError("timerlist", context.DeadlineExceeded), ErrTimeout)
	assert.ErrorIs(t, transportError("timerlist", errors.New("connection refused")), ErrUpstreamUnavailable)
}

func TestCountsAsFailure(t *testing.T) {
	assert.True(t, countsAsFailure(statusError("x", http.StatusInternalServerError, "")))
	assert.True(t, countsAsFailure(transportError("x", errors.New("refused"))))
	assert.False(t, countsAsFailure(statusError("x", http.StatusNotFound, "")))
	assert.False(t, countsAsFailure(timerOperationError("timeradd", "Conflicting Timer(s) detected!")))
}

func TestTimerOperationError(t *testing.T) {
	tests := []struct {
		message  string
		conflict bool
		notFound bool
	}{
		{"Conflicting Timer(s) detected! Tagesschau", true, false},
		{"Timer-Konflikt mit Sportschau", true, false},
		{"Timer not found", false, true},
		{"Timer nicht gefunden", false, true},
		{"invalid parameters", false, false},
	}
	for _, tt := range tests {
		err := timerOperationError("timeradd", tt.message)
		assert.Equal(t, tt.conflict, IsTimerConflict(err), tt.message)
		assert.Equal(t, tt.notFound, IsTimerNotFound(err), tt.message)
	}
	assert.False(t, IsTimerConflict(nil))
	assert.False(t, IsTimerNotFound(nil))
}
