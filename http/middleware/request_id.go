package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/xy-planning-network/gatekeeper"
)

const requestIDHeader = "X-Request-Id"

// RequestID adds a uuid to the request context under gatekeeper.RequestIDKey
// and echoes it in the "X-Request-Id" response header.
//
// A well-formed UUID already set on the request's "X-Request-Id" header is reused,
// so IDs assigned by a proxy in front of gatekeeper carry through.
func RequestID() Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if _, err := uuid.Parse(id); err != nil {
				id = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, id)
			ctx := context.WithValue(r.Context(), gatekeeper.RequestIDKey, id)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
