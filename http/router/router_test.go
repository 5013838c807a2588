package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/http/middleware"
	"github.com/xy-planning-network/gatekeeper/http/router"
)

type denyAll struct{}

func (denyAll) Provide(http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
}

func ok(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	})
}

func header(key, val string) middleware.Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add(key, val)
			h.ServeHTTP(w, r)
		})
	}
}

func TestRouterHandleRoutes(t *testing.T) {
	// Arrange
	rt := router.New(gatekeeper.Testing, nil)
	rt.OnEveryRequest(header("X-Order", "every"))
	rt.HandleRoutes([]router.Route{
		{Path: "/validate-admin", Method: http.MethodPost, Handler: ok("checked"), Middlewares: []middleware.Adapter{header("X-Order", "route")}},
	}, header("X-Order", "group"))

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/validate-admin", nil)

	// Act
	rt.ServeHTTP(w, r)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "checked", w.Body.String())
	require.Equal(t, []string{"every", "group", "route"}, w.Header().Values("X-Order"))

	// Arrange
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/validate-admin", nil)

	// Act
	rt.ServeHTTP(w, r)

	// Assert
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRouterPreflight(t *testing.T) {
	// Arrange
	rt := router.New(gatekeeper.Testing, nil)
	rt.Handle(router.Route{Path: "/validate-admin/session", Method: http.MethodPost, Handler: ok("checked"), Preflight: true})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodOptions, "/validate-admin/session", nil)

	// Act
	rt.ServeHTTP(w, r)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRouterGatedRoutesAndCatchAll(t *testing.T) {
	// Arrange
	rt := router.New(gatekeeper.Testing, nil)
	rt.Handle(router.Route{Path: "/login", Method: http.MethodGet, Handler: ok("form")})
	rt.GatedRoutes(denyAll{}, []router.Route{{Path: "/reports", Method: http.MethodGet, Handler: ok("reports")}})
	rt.CatchAll(ok("app"))

	tcs := []struct {
		path string
		code int
		body string
	}{
		{"/login", http.StatusOK, "form"},
		{"/reports", http.StatusUnauthorized, ""},
		{"/anything/else", http.StatusOK, "app"},
	}

	for _, tc := range tcs {
		t.Run(tc.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			rt.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))

			require.Equal(t, tc.code, w.Code)
			require.Equal(t, tc.body, w.Body.String())
		})
	}
}

func TestRouterHandleNotFound(t *testing.T) {
	// Arrange
	rt := router.New(gatekeeper.Testing, nil)
	rt.HandleNotFound(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()

	// Act
	rt.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))

	// Assert
	require.Equal(t, http.StatusTeapot, w.Code)
}
