/*
Package router registers gatekeeper's routes on a gorilla/mux router.

A [Route] pairs a path and HTTP method with an [http.Handler] and any middlewares particular to it.
Middlewares added with [Router.OnEveryRequest] run first on every Route.

[Router.GatedRoutes] registers Routes whose handlers are only served once the gate lets a request through,
and [Router.CatchAll] sends everything else, typically the protected application, to one handler.
*/
package router
