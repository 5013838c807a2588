package router

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/http/middleware"
)

// A Route maps a path and HTTP method to an [http.Handler].
// Additional [middleware.Adapter] can be called when a server handles
// a request matching the Route.
type Route struct {
	Path        string
	Method      string
	Handler     http.Handler
	Middlewares []middleware.Adapter

	// Preflight also routes OPTIONS requests for Path through the Route's middlewares,
	// so a CORS middleware can answer them.
	Preflight bool
}

// A Provider wraps an [http.Handler] so it is only served to requests passing the gate.
type Provider interface {
	Provide(app http.Handler) http.Handler
}

// Router routes requests to gatekeeper's own endpoints and to the application behind the gate.
type Router struct {
	Env           gatekeeper.Environment
	everyReqStack []middleware.Adapter
	logReq        middleware.Adapter
	r             *mux.Router
}

// New constructs a [*Router] for the given environment.
func New(env gatekeeper.Environment, logReq middleware.Adapter) *Router {
	if logReq == nil {
		logReq = middleware.NoopAdapter
	}

	return &Router{logReq: logReq, Env: env, r: mux.NewRouter()}
}

// CatchAll sets up a handler for all requests not matching a registered Route.
// Register it last: mux matches routes in the order they were added.
func (r *Router) CatchAll(handler http.Handler, middlewares ...middleware.Adapter) {
	mws := append(append([]middleware.Adapter{}, r.everyReqStack...), middlewares...)
	mws = append(mws, middleware.ReportPanic(r.Env))
	r.r.PathPrefix("/").Handler(middleware.Chain(handler, mws...))
}

// GatedRoutes registers the set of Routes behind the gate:
// each Route's handler is only served once provider lets the request through.
func (r *Router) GatedRoutes(provider Provider, routes []Route, middlewares ...middleware.Adapter) {
	gated := make([]Route, 0, len(routes))
	for _, route := range routes {
		route.Handler = provider.Provide(route.Handler)
		gated = append(gated, route)
	}

	r.HandleRoutes(gated, middlewares...)
}

// Handle applies the [Route] to the [*Router].
func (r *Router) Handle(route Route) {
	r.HandleRoutes([]Route{route})
}

// HandleNotFound sets the provided [http.Handler] as the default handler
// for when no other registered Route is matched.
func (r *Router) HandleNotFound(handler http.Handler) {
	r.r.NotFoundHandler = middleware.Chain(handler, r.logReq, middleware.ReportPanic(r.Env))
}

// HandleRoutes registers the set of Routes on the Router
// and includes all the [middleware.Adapter] on each Route.
// Any [middleware.Adapter] already assigned to a Route is appended to middlewares,
// so are called after the default set.
func (r *Router) HandleRoutes(routes []Route, middlewares ...middleware.Adapter) {
	for _, route := range routes {
		mws := append(append([]middleware.Adapter{}, r.everyReqStack...), middlewares...)
		mws = append(mws, route.Middlewares...)
		mws = append(mws, middleware.ReportPanic(r.Env))
		handler := middleware.Chain(route.Handler, mws...)

		methods := []string{route.Method}
		if route.Preflight {
			methods = append(methods, http.MethodOptions)
		}

		r.r.Handle(route.Path, handler).Methods(methods...)
	}
}

// OnEveryRequest appends the middlewares to the existing stack
// that the [*Router] will apply to every request.
func (r *Router) OnEveryRequest(middlewares ...middleware.Adapter) {
	r.everyReqStack = append(r.everyReqStack, middlewares...)
}

// ServeHTTP responds to an HTTP request.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.r.ServeHTTP(w, req)
}
