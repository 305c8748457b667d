package httphandler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/classterra/school-platform-backend/db"
)

// pingStubDBConnectionPool overrides Ping only; nothing else is touched by the handler.
type pingStubDBConnectionPool struct {
	db.DBConnectionPool
	pingErr error
}

func (m *pingStubDBConnectionPool) Ping(ctx context.Context) error {
	return m.pingErr
}

func Test_HealthHandler(t *testing.T) {
	t.Run("healthy database", func(t *testing.T) {
		handler := HealthHandler{
			Version:          "0.1.0",
			GitCommit:        "abc123",
			DBConnectionPool: &pingStubDBConnectionPool{},
		}

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status": "pass", "version": "0.1.0", "commit": "abc123"}`, rr.Body.String())
	})

	t.Run("unreachable database", func(t *testing.T) {
		handler := HealthHandler{
			Version:          "0.1.0",
			DBConnectionPool: &pingStubDBConnectionPool{pingErr: errors.New("connection refused")},
		}

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.JSONEq(t, `{"error": "Database unreachable."}`, rr.Body.String())
	})
}
