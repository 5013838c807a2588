/*
Package middleware defines what a middleware is in gatekeeper and the middlewares every route runs through.

The available middlewares are:
  - CORS
  - CurrentSession
  - ForceHTTPS
  - InjectIPAddress
  - InjectSession
  - LogRequest
  - Metrics
  - ReportPanic
  - RequestID

ranger assembles them in this order:

	adpts := []middleware.Adapter{
		middleware.ForceHTTPS(env),
		middleware.RequestID(),
		middleware.InjectIPAddress(),
		middleware.Metrics(prometheus.DefaultRegisterer),
		middleware.LogRequest(log),
		middleware.InjectSession(sessionStore),
		middleware.CurrentSession(provider, log),
	}
*/
package middleware
