package resp

import (
	"net/http"

	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/logger"
)

// newLogContext helps structure a logger.LogContext from the provided parts.
// The user comes from the session the identity provider resolved for r, if any.
func newLogContext(r *http.Request, err error, data any) *logger.LogContext {
	if r == nil && err == nil && data == nil {
		return nil
	}

	ctx := new(logger.LogContext)
	if r != nil {
		ctx.Request = r
		if s, ok := r.Context().Value(gatekeeper.CurrentSessionKey).(*gatekeeper.Session); ok && s.HasEmail() {
			ctx.User = s.User
		}
	}

	if err != nil {
		ctx.Error = err
	}

	switch t := data.(type) {
	case map[string]any:
		ctx.Data = t
	case nil:
	default:
		ctx.Data = map[string]any{"data": t}
	}

	return ctx
}
