package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/logger"
)

// LogRequest logs the request's originating IP address, method, requested URL,
// response status and duration using the enclosed implementation of logger.Logger.
//
// LogRequest scrubs the values for the following query keys:
// - password
//
// if logger.Logger is nil, NoopAdapter returns and this middleware does nothing.
func LogRequest(ls logger.Logger) Adapter {
	if ls == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := newStatusRecorder(w)
			h.ServeHTTP(sr, r)

			uri := r.URL.Path
			q := r.URL.Query()
			gatekeeper.Mask(q, "password")
			if query := q.Encode(); query != "" {
				uri += "?" + query
			}

			strs := []string{r.Method, uri, strconv.Itoa(sr.Status()), time.Since(start).Round(time.Microsecond).String()}
			if ip, ok := r.Context().Value(gatekeeper.IpAddrKey).(string); ok {
				strs = append([]string{ip}, strs...)
			}

			var lc *logger.LogContext
			if id, ok := r.Context().Value(gatekeeper.RequestIDKey).(string); ok {
				lc = &logger.LogContext{Data: map[string]any{"request_id": id}}
			}

			ls.Info(strings.Join(strs, " "), lc)
		})
	}
}
