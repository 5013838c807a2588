package middleware

import (
	"net/http"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/xy-planning-network/gatekeeper"
)

// ReportPanic recovers panics raised by the next handler and reports them to Sentry
// if the environment is not "development".
//
// The client receives a 500 when a panic occurs before anything was written.
func ReportPanic(env gatekeeper.Environment) Adapter {
	if env.IsDevelopment() {
		return NoopAdapter
	}

	sh := sentryhttp.New(sentryhttp.Options{
		Repanic:         false,
		WaitForDelivery: true,
	})

	return func(handler http.Handler) http.Handler {
		return sh.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sr := newStatusRecorder(w)
			defer func() {
				if err := recover(); err != nil {
					if sr.code == 0 {
						http.Error(sr, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					}

					// NOTE: sentryhttp recovers and reports
					panic(err)
				}
			}()

			handler.ServeHTTP(sr, r)
		}))
	}
}
