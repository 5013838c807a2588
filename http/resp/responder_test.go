package resp_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/http/resp"
	"github.com/xy-planning-network/gatekeeper/http/session"
	tt "github.com/xy-planning-network/gatekeeper/http/template/templatetest"
	"github.com/xy-planning-network/gatekeeper/logger"
)

const jsonMediaType = "application/json; charset=UTF-8"

func newLogger(b *bytes.Buffer) logger.Logger {
	return logger.New(logger.WithLogger(log.New(b, "", 0)))
}

func withSession(t *testing.T, r *http.Request) (*http.Request, session.Session) {
	t.Helper()

	s, err := session.NewStub("").GetSession(r)
	require.Nil(t, err)

	ctx := context.WithValue(r.Context(), gatekeeper.SessionKey, s)
	return r.WithContext(ctx), s
}

func TestResponderDoCancelled(t *testing.T) {
	// Arrange
	r := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	ctx, cancel := context.WithCancel(r.Context())
	r = r.WithContext(ctx)

	w := httptest.NewRecorder()
	w.WriteHeader(http.StatusPaymentRequired)

	cancel()

	d := resp.NewResponder()

	// Act
	err := d.Json(w, r, resp.Code(http.StatusTeapot))

	// Assert
	require.ErrorIs(t, err, resp.ErrDone)
	require.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestResponderCurrentSession(t *testing.T) {
	// Arrange
	d := resp.NewResponder()
	s := &gatekeeper.Session{User: gatekeeper.SessionUser{Email: "a@x.com"}}

	// Act
	actual, err := d.CurrentSession(context.Background())

	// Assert
	require.ErrorIs(t, err, resp.ErrNotFound)
	require.Nil(t, actual)

	// Act
	actual, err = d.CurrentSession(context.WithValue(context.Background(), gatekeeper.CurrentSessionKey, s))

	// Assert
	require.Nil(t, err)
	require.Equal(t, s, actual)
}

func TestResponderErr(t *testing.T) {
	// Arrange
	b := new(bytes.Buffer)
	r := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	w := httptest.NewRecorder()
	d := resp.NewResponder(resp.WithLogger(newLogger(b)))

	// Act
	d.Err(w, r, errors.New("my favorite error"))

	// Assert
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, b.String(), "my favorite error")
	require.NotContains(t, w.Body.String(), "my favorite error")
}

func TestResponderJson(t *testing.T) {
	tcs := []struct {
		name         string
		fns          []resp.Fn
		expectedCode int
		expectedBody string
	}{
		{"Zero-Value", nil, http.StatusOK, "null\n"},
		{"Data", []resp.Fn{resp.Data(map[string]any{"valid": true})}, http.StatusOK, `{"valid":true}` + "\n"},
		{
			"Code",
			[]resp.Fn{resp.Code(http.StatusUnauthorized), resp.Data(map[string]string{"state": "signed_out"})},
			http.StatusUnauthorized,
			`{"state":"signed_out"}` + "\n",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			r := httptest.NewRequest(http.MethodPost, "http://example.com", nil)
			w := httptest.NewRecorder()
			d := resp.NewResponder()

			// Act
			err := d.Json(w, r, tc.fns...)

			// Assert
			require.Nil(t, err)
			require.Equal(t, tc.expectedCode, w.Code)
			require.Equal(t, jsonMediaType, w.Header().Get("Content-Type"))
			require.Equal(t, tc.expectedBody, w.Body.String())
		})
	}
}

func TestResponderRedirect(t *testing.T) {
	tcs := []struct {
		name     string
		fns      []resp.Fn
		code     int
		location string
	}{
		{"Default", nil, http.StatusFound, "/"},
		{"Url", []resp.Fn{resp.Url("/reports")}, http.StatusFound, "/reports"},
		{"Param", []resp.Fn{resp.Url("/login"), resp.Param("mode", "signup")}, http.StatusFound, "/login?mode=signup"},
		{"Client-Error", []resp.Fn{resp.Code(http.StatusBadRequest)}, http.StatusSeeOther, "/"},
		{"Server-Error", []resp.Fn{resp.Code(http.StatusBadGateway)}, http.StatusTemporaryRedirect, "/"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			r := httptest.NewRequest(http.MethodPost, "http://example.com/logout", nil)
			w := httptest.NewRecorder()
			d := resp.NewResponder()

			// Act
			err := d.Redirect(w, r, tc.fns...)

			// Assert
			require.Nil(t, err)
			require.Equal(t, tc.code, w.Code)
			require.Equal(t, tc.location, w.Header().Get("Location"))
		})
	}
}

func TestResponderRedirectBadUrl(t *testing.T) {
	// Arrange
	r := httptest.NewRequest(http.MethodPost, "http://example.com", nil)
	w := httptest.NewRecorder()
	d := resp.NewResponder()

	// Act
	err := d.Redirect(w, r, resp.Url("not a url"))

	// Assert
	require.ErrorIs(t, err, resp.ErrInvalid)
}

func TestResponderHtml(t *testing.T) {
	// Arrange
	parser := tt.NewParser(
		tt.NewMockFile("layout.tmpl", []byte(`<main>{{ range .Flashes }}<b>{{ .Msg }}</b>{{ end }}{{ template "content" . }}</main>`)),
		tt.NewMockFile("page.tmpl", []byte(`{{ define "content" }}<p>{{ .Data }}</p>{{ end }}`)),
	)
	d := resp.NewResponder(resp.WithParser(parser), resp.WithLayoutTemplate("layout.tmpl"))

	r, s := withSession(t, httptest.NewRequest(http.MethodGet, "http://example.com", nil))
	w := httptest.NewRecorder()
	require.Nil(t, s.SetFlash(w, r, session.Flash{Class: session.FlashSuccess, Msg: "Signed in successfully!"}))

	// Act
	err := d.Html(w, r, resp.Tmpls("page.tmpl"), resp.Data("Loading..."), resp.Code(http.StatusUnauthorized))

	// Assert
	require.Nil(t, err)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "<main><b>Signed in successfully!</b><p>Loading...</p></main>", w.Body.String())

	// Arrange
	w = httptest.NewRecorder()

	// Act
	err = d.Html(w, r, resp.Tmpls("page.tmpl"), resp.Data("again"))

	// Assert
	require.Nil(t, err)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "<main><p>again</p></main>", w.Body.String())
}

func TestResponderHtmlErrors(t *testing.T) {
	// Arrange
	b := new(bytes.Buffer)
	r := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	w := httptest.NewRecorder()
	d := resp.NewResponder(resp.WithLogger(newLogger(b)))

	// Act
	err := d.Html(w, r, resp.Tmpls("page.tmpl"))

	// Assert
	require.ErrorIs(t, err, resp.ErrBadConfig)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	// Arrange
	parser := tt.NewParser(tt.NewMockFile("oops.tmpl", []byte(`<p>{{ .Contact }}</p>`)))
	d = resp.NewResponder(
		resp.WithLogger(newLogger(b)),
		resp.WithParser(parser),
		resp.WithErrTemplate("oops.tmpl"),
		resp.WithContactErrMsg("Call us"),
	)
	w = httptest.NewRecorder()

	// Act
	err = d.Html(w, r)

	// Assert
	require.ErrorIs(t, err, resp.ErrMissingData)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "<p>Call us</p>", w.Body.String())
}

func TestFlashWithoutSession(t *testing.T) {
	// Arrange
	r := httptest.NewRequest(http.MethodPost, "http://example.com", nil)
	w := httptest.NewRecorder()
	d := resp.NewResponder()

	// Act
	err := d.Redirect(w, r, resp.Success("Signed in successfully!"))

	// Assert
	require.ErrorIs(t, err, resp.ErrNotFound)
}

func TestHeader(t *testing.T) {
	// Arrange
	r := httptest.NewRequest(http.MethodPost, "http://example.com", nil)
	w := httptest.NewRecorder()
	d := resp.NewResponder()

	// Act
	err := d.Json(w, r, resp.Header("X-Gatekeeper-Notice", "hi"))

	// Assert
	require.Nil(t, err)
	require.Equal(t, "hi", w.Header().Get("X-Gatekeeper-Notice"))
}
