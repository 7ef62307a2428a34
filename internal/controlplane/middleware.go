package controlplane

import (
	"net/http"

	"github.com/kgkgzrtk/yuragi-haptic-go/internal/hapticconfig"
)

// WithMiddleware wraps next with CORS and optional API-key enforcement
// read from cfg. This is deliberately a single function rather than a
// middleware stack/framework, matching how thin the control-plane layer
// is meant to stay (§4.9).
func WithMiddleware(cfg hapticconfig.Config, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		applyCORS(cfg, w, r)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if cfg.APIKey != nil && r.URL.Path != "/health" {
			if r.Header.Get("X-API-Key") != *cfg.APIKey {
				writeError(w, http.StatusUnauthorized, errUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

var errUnauthorized = errUnauthorizedSentinel("missing or invalid API key")

type errUnauthorizedSentinel string

func (e errUnauthorizedSentinel) Error() string { return string(e) }

func applyCORS(cfg hapticconfig.Config, w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	for _, allowed := range cfg.CORSOrigins {
		if allowed == "*" || allowed == origin {
			w.Header().Set("Access-Control-Allow-Origin", allowed)
			break
		}
	}
	w.Header().Set("Access-Control-Allow-Methods", "GET, PUT, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
}
