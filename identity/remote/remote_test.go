package remote_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/identity"
	"github.com/xy-planning-network/gatekeeper/identity/remote"
)

func newService(t *testing.T, h http.HandlerFunc) *remote.Provider {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	p, err := remote.NewProvider(srv.URL + "/")
	require.Nil(t, err)
	return p
}

func TestNewProvider(t *testing.T) {
	_, err := remote.NewProvider("auth.example.com")
	require.ErrorIs(t, err, gatekeeper.ErrBadConfig)

	_, err = remote.NewProvider("https://auth.example.com", remote.WithTimeout(time.Second))
	require.Nil(t, err)
}

func TestGetSession(t *testing.T) {
	tcs := []struct {
		name     string
		status   int
		body     string
		expected *gatekeeper.Session
		err      error
	}{
		{"Session", http.StatusOK, `{"session":{"id":"s1"},"user":{"id":"u1","email":"a@x.com","name":"a"}}`, &gatekeeper.Session{User: gatekeeper.SessionUser{ID: "u1", Email: "a@x.com", Name: "a"}}, nil},
		{"Null", http.StatusOK, `null`, nil, nil},
		{"Unauthorized", http.StatusUnauthorized, ``, nil, nil},
		{"Server-Error", http.StatusBadGateway, ``, nil, identity.ErrUnavailable},
		{"Garbage", http.StatusOK, `<html>`, nil, identity.ErrUnavailable},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			var gotCookie string
			p := newService(t, func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/api/auth/get-session", r.URL.Path)
				require.Equal(t, http.MethodGet, r.Method)
				gotCookie = r.Header.Get("Cookie")
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("Cookie", "better-auth.session_token=abc")

			// Act
			s, err := p.GetSession(r)

			// Assert
			require.Equal(t, "better-auth.session_token=abc", gotCookie)
			require.Equal(t, tc.expected, s)
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
			} else {
				require.Nil(t, err)
			}
		})
	}
}

func TestGetSessionUnreachable(t *testing.T) {
	// Arrange
	srv := httptest.NewServer(http.NotFoundHandler())
	p, err := remote.NewProvider(srv.URL)
	require.Nil(t, err)
	srv.Close()

	// Act
	s, err := p.GetSession(httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	require.Nil(t, s)
	require.ErrorIs(t, err, identity.ErrUnavailable)
}

func TestSignIn(t *testing.T) {
	// Arrange
	var got map[string]string
	p := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/sign-in/email", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NotEmpty(t, r.Header.Get("Origin"))
		require.Nil(t, json.NewDecoder(r.Body).Decode(&got))
		http.SetCookie(w, &http.Cookie{Name: "better-auth.session_token", Value: "xyz"})
		w.Write([]byte(`{"redirect":false,"token":"xyz"}`))
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", nil)

	// Act
	err := p.SignIn(w, r, identity.Credentials{Email: "a@x.com", Password: "secret", Name: "ignored"})

	// Assert
	require.Nil(t, err)
	require.Equal(t, map[string]string{"email": "a@x.com", "password": "secret"}, got)
	require.Contains(t, w.Header().Get("Set-Cookie"), "better-auth.session_token=xyz")
}

func TestSignInErrors(t *testing.T) {
	tcs := []struct {
		name   string
		status int
		body   string
		err    error
		msg    string
	}{
		{"Invalid", http.StatusUnauthorized, `{"code":"INVALID_EMAIL_OR_PASSWORD","message":"Invalid email or password"}`, identity.ErrInvalidCredentials, "Invalid email or password"},
		{"Unverified", http.StatusForbidden, `{"code":"EMAIL_NOT_VERIFIED","message":"Email not verified"}`, identity.ErrInvalidCredentials, "Email not verified"},
		{"No-Body", http.StatusBadRequest, ``, identity.ErrInvalidCredentials, "Invalid email or password"},
		{"Down", http.StatusServiceUnavailable, ``, identity.ErrUnavailable, ""},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			p := newService(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			// Act
			err := p.SignIn(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/login", nil), identity.Credentials{Email: "a@x.com", Password: "secret"})

			// Assert
			require.ErrorIs(t, err, tc.err)
			require.Equal(t, tc.msg, identity.Message(err))
		})
	}
}

func TestSignUp(t *testing.T) {
	// Arrange
	var got map[string]string
	p := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/sign-up/email", r.URL.Path)
		require.Nil(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"code":"USER_ALREADY_EXISTS","message":"User already exists. Use another email."}`))
	})

	// Act
	err := p.SignUp(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/login", nil), identity.Credentials{Email: "a@x.com", Password: "secret", Name: "a"})

	// Assert
	require.Equal(t, map[string]string{"email": "a@x.com", "password": "secret", "name": "a"}, got)
	require.ErrorIs(t, err, identity.ErrAccountExists)
	require.Equal(t, "User already exists. Use another email.", identity.Message(err))
}

func TestSignOut(t *testing.T) {
	// Arrange
	p := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/sign-out", r.URL.Path)
		require.Equal(t, "Bearer abc", r.Header.Get("Authorization"))
		http.SetCookie(w, &http.Cookie{Name: "better-auth.session_token", Value: "", MaxAge: -1})
		w.Write([]byte(`{"success":true}`))
	})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/logout", nil)
	r.Header.Set("Authorization", "Bearer abc")

	// Act
	err := p.SignOut(w, r)

	// Assert
	require.Nil(t, err)
	require.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}
