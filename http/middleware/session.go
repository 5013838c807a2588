package middleware

import (
	"context"
	"net/http"

	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/http/session"
)

// InjectSession stores the session associated with the *http.Request in *http.Request.Context
// under gatekeeper.SessionKey.
//
// If store is nil, NoopAdapter returns and this middleware does nothing.
func InjectSession(store session.SessionStorer) Adapter {
	if store == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// NOTE: a session that fails decoding is replaced by a fresh one
			s, _ := store.GetSession(r)
			ctx := context.WithValue(r.Context(), gatekeeper.SessionKey, s)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
