package auth

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/prn-tf/abernathy-accounts/internal/metrics"
)

// HeaderAPIKey is the request header carrying the shared secret.
const HeaderAPIKey = "X-API-Key"

// RequireAPIKey creates a middleware enforcing the shared-secret check.
// Requests with an absent, empty or mismatched key are rejected with
// 401 and a stable message; the handler chain is never reached.
func RequireAPIKey(gate *Gate, m *metrics.Metrics, logger zerolog.Logger) func(http.Handler) http.Handler {
	log := logger.With().Str("middleware", "apikey").Logger()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := gate.Authorize(r.Header.Get(HeaderAPIKey)); err != nil {
				log.Debug().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("remote", r.RemoteAddr).
					Msg("request rejected by API key gate")
				if m != nil {
					m.APIKeyRejections.Inc()
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"message":"Invalid API key"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
