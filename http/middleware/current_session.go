package middleware

import (
	"context"
	"net/http"

	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/logger"
)

// A SessionGetter resolves the identity session a request carries.
type SessionGetter interface {
	GetSession(r *http.Request) (*gatekeeper.Session, error)
}

// CurrentSession asks the SessionGetter for the request's session
// and stores it in *http.Request.Context under gatekeeper.CurrentSessionKey.
//
// Failing to get a session is logged and the request continues without one;
// access control is left to the handlers that follow.
// Responses to requests carrying an authenticated session are marked uncacheable.
//
// If getter is nil, NoopAdapter returns and this middleware does nothing.
func CurrentSession(getter SessionGetter, ls logger.Logger) Adapter {
	if getter == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, err := getter.GetSession(r)
			if err != nil {
				if ls != nil {
					ls.Warn("could not get current session", &logger.LogContext{Request: r, Error: err})
				}
				h.ServeHTTP(w, r)
				return
			}

			if s == nil {
				h.ServeHTTP(w, r)
				return
			}

			if s.IsAuthenticated() {
				w.Header().Set("Cache-Control", "no-store")
				w.Header().Set("Pragma", "no-cache")
			}

			ctx := context.WithValue(r.Context(), gatekeeper.CurrentSessionKey, s)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
