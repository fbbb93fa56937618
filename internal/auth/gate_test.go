package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/prn-tf/abernathy-accounts/internal/domain"
	"github.com/prn-tf/abernathy-accounts/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestGate_Authorize(t *testing.T) {
	gate := NewGate("secret-key")

	if err := gate.Authorize("secret-key"); err != nil {
		t.Errorf("correct key rejected: %v", err)
	}

	for _, key := range []string{"", "wrong", "secret-key ", "SECRET-KEY"} {
		if err := gate.Authorize(key); !errors.Is(err, domain.ErrInvalidAPIKey) {
			t.Errorf("key %q: expected ErrInvalidAPIKey, got %v", key, err)
		}
	}
}

func TestRequireAPIKey(t *testing.T) {
	gate := NewGate("secret-key")
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})
	protected := RequireAPIKey(gate, m, zerolog.Nop())(next)

	t.Run("missing key is rejected", func(t *testing.T) {
		reached = false
		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
		if rec.Body.String() != `{"message":"Invalid API key"}` {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}
		if reached {
			t.Error("handler chain was reached without a key")
		}
	})

	t.Run("wrong key is rejected and counted", func(t *testing.T) {
		reached = false
		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		req.Header.Set(HeaderAPIKey, "wrong")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
		if reached {
			t.Error("handler chain was reached with a wrong key")
		}
		if got := testutil.ToFloat64(m.APIKeyRejections); got < 2 {
			t.Errorf("expected at least 2 rejections counted, got %v", got)
		}
	})

	t.Run("correct key passes through", func(t *testing.T) {
		reached = false
		req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
		req.Header.Set(HeaderAPIKey, "secret-key")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected 200, got %d", rec.Code)
		}
		if !reached {
			t.Error("handler chain was not reached with the correct key")
		}
	})
}
