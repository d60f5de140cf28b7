package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type MockHealthChecker struct {
	PingFunc func(ctx context.Context) error
}

func (m *MockHealthChecker) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

func TestHealth(t *testing.T) {
	h := &Handler{cfg: testConfig(), health: &MockHealthChecker{}}

	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}

func TestReady(t *testing.T) {
	t.Run("remote store reachable", func(t *testing.T) {
		var hasDeadline bool
		h := &Handler{cfg: testConfig(), health: &MockHealthChecker{
			PingFunc: func(ctx context.Context) error {
				_, hasDeadline = ctx.Deadline()
				return nil
			},
		}}

		rr := httptest.NewRecorder()
		h.Ready(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ok", rr.Body.String())
		assert.True(t, hasDeadline, "ping should run with a timeout")
	})

	for name, pingErr := range map[string]error{
		"connection refused": errors.New("connection refused"),
		"deadline exceeded":  context.DeadlineExceeded,
	} {
		t.Run(name, func(t *testing.T) {
			h := &Handler{cfg: testConfig(), health: &MockHealthChecker{
				PingFunc: func(ctx context.Context) error { return pingErr },
			}}

			rr := httptest.NewRecorder()
			h.Ready(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
			assert.Equal(t, "remote store unavailable", rr.Body.String())
		})
	}
}
