package gate_test

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/check"
	"github.com/xy-planning-network/gatekeeper/gate"
	"github.com/xy-planning-network/gatekeeper/http/session"
	"github.com/xy-planning-network/gatekeeper/identity"
	"github.com/xy-planning-network/gatekeeper/identity/identitytest"
	"github.com/xy-planning-network/gatekeeper/logger"
)

var (
	_ gate.Validator = check.Local{}
	_ gate.Validator = (*check.Client)(nil)
)

var admin = gatekeeper.AdminCredentials{Email: "a@x.com", Password: "secret"}

type fakeValidator struct {
	mu        sync.Mutex
	creds     check.Result
	credsErr  error
	sess      check.Result
	sessErr   error
	sessCalls int
}

func (f *fakeValidator) ValidateCredentials(r *http.Request, email, password string) (check.Result, error) {
	return f.creds, f.credsErr
}

func (f *fakeValidator) ValidateSession(r *http.Request) (check.Result, error) {
	f.mu.Lock()
	f.sessCalls++
	f.mu.Unlock()
	return f.sess, f.sessErr
}

// slowValidator answers the session check only once the request ends.
type slowValidator struct {
	fakeValidator
}

func (s *slowValidator) ValidateSession(r *http.Request) (check.Result, error) {
	<-r.Context().Done()
	return check.Result{}, r.Context().Err()
}

// appBody is written only by the gated application, never by the gate's own pages.
const appBody = "protected-app-body"

var app = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(appBody))
})

func newTestLogger() logger.Logger {
	return logger.New(logger.WithLogger(log.New(io.Discard, "", 0)))
}

func newGate(provider identity.Provider, v gate.Validator, sessions session.SessionStorer, opts ...gate.Option) *gate.Gate {
	opts = append([]gate.Option{gate.WithLogger(newTestLogger())}, opts...)
	return gate.New(provider, v, sessions, opts...)
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.Nil(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestProvideNoSession(t *testing.T) {
	// Arrange
	v := new(fakeValidator)
	g := newGate(identitytest.NewFake(), v, session.NewStub(""))
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/reports?year=2024", nil)

	// Act
	g.Provide(app).ServeHTTP(w, r)

	// Assert
	require.Equal(t, http.StatusUnauthorized, w.Code)
	body := w.Body.String()
	require.NotContains(t, body, appBody)
	require.Contains(t, body, "<h1>Sign In</h1>")
	require.Contains(t, body, `action="/login"`)
	require.Contains(t, body, `name="next" value="/reports?year=2024"`)
	require.Equal(t, 0, v.sessCalls)
}

func TestProvideTempSessionIsSignedOut(t *testing.T) {
	// Arrange
	v := &fakeValidator{sess: check.Result{Valid: true}}
	g := newGate(identitytest.NewFake().SetSession(tempSession), v, session.NewStub(""))
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	// Act
	g.Provide(app).ServeHTTP(w, r)

	// Assert
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "<form")
	require.Equal(t, 0, v.sessCalls)
}

func TestProvideValidated(t *testing.T) {
	// Arrange
	v := &fakeValidator{sess: check.Result{Valid: true}}
	g := newGate(identitytest.NewFake().SetSession(adminSession), v, session.NewStub(""))
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	// Act
	g.Provide(app).ServeHTTP(w, r)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, appBody, w.Body.String())
	require.Equal(t, 1, v.sessCalls)
}

func TestProvidePassesSessionToApp(t *testing.T) {
	// Arrange
	v := &fakeValidator{sess: check.Result{Valid: true}}
	g := newGate(identitytest.NewFake().SetSession(adminSession), v, session.NewStub(""))
	var actual *gatekeeper.Session
	spy := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actual, _ = r.Context().Value(gatekeeper.CurrentSessionKey).(*gatekeeper.Session)
	})
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	// Act
	g.Provide(spy).ServeHTTP(w, r)

	// Assert
	require.NotNil(t, actual)
	require.Equal(t, adminSession.User.Email, actual.User.Email)
}

func TestProvideDenied(t *testing.T) {
	// Arrange
	fake := identitytest.NewFake().SetSession(adminSession)
	v := &fakeValidator{sess: check.Result{Error: "Access denied"}}
	g := newGate(fake, v, session.NewStub(""))
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	// Act
	g.Provide(app).ServeHTTP(w, r)

	// Assert
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotContains(t, w.Body.String(), appBody)
	require.Contains(t, w.Body.String(), "Access denied. Only authorized users can access this app.")
	require.Contains(t, fake.Calls(), "signout")
	require.Nil(t, fake.Session())
}

func TestProvideDeniedJSON(t *testing.T) {
	// Arrange
	v := &fakeValidator{sess: check.Result{Error: "Access denied"}}
	g := newGate(identitytest.NewFake().SetSession(adminSession), v, session.NewStub(""))
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/things", nil)
	r.Header.Set("Accept", "application/json")

	// Act
	g.Provide(app).ServeHTTP(w, r)

	// Assert
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, map[string]string{"state": "signedOut", "error": gate.MsgDenied}, decodeState(t, w))
}

func TestProvideTransportPolicy(t *testing.T) {
	tcs := []struct {
		name   string
		policy gate.Policy
		code   int
		app    bool
	}{
		{"Fail-Open", gate.FailOpen, http.StatusOK, true},
		{"Fail-Closed", gate.FailClosed, http.StatusUnauthorized, false},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			fake := identitytest.NewFake().SetSession(adminSession)
			v := &fakeValidator{sessErr: check.ErrTransport}
			g := newGate(fake, v, session.NewStub(""), gate.WithPolicy(tc.policy))
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/", nil)

			// Act
			g.Provide(app).ServeHTTP(w, r)

			// Assert
			require.Equal(t, tc.code, w.Code)
			require.Equal(t, tc.app, strings.Contains(w.Body.String(), appBody))
			require.Equal(t, !tc.app, fake.Session() == nil)
		})
	}
}

func TestProvideSessionError(t *testing.T) {
	// Arrange
	fake := identitytest.NewFake().SetSession(adminSession).FailGetSession(identity.ErrUnavailable)
	v := &fakeValidator{sess: check.Result{Valid: true}}
	g := newGate(fake, v, session.NewStub(""))
	w := httptest.NewRecorder()

	// Act
	g.Provide(app).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "<form")
	require.Equal(t, 0, v.sessCalls)
}

func TestProvideVerifyingPlaceholder(t *testing.T) {
	// Arrange
	v := new(slowValidator)
	g := newGate(identitytest.NewFake().SetSession(adminSession), v, session.NewStub(""), gate.WithWait(10*time.Millisecond))
	w := httptest.NewRecorder()

	// Act
	g.Provide(app).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, "1", w.Header().Get("Retry-After"))
	require.Contains(t, w.Body.String(), "Verifying access...")
	require.NotContains(t, w.Body.String(), appBody)
}

func TestProvideSurfacesNotice(t *testing.T) {
	// Arrange
	stub := session.NewStub("")
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	s, err := stub.GetSession(r)
	require.Nil(t, err)
	require.Nil(t, s.SetFlash(httptest.NewRecorder(), r, session.Flash{Class: session.FlashSuccess, Msg: gate.MsgSignedIn}))

	v := &fakeValidator{sess: check.Result{Valid: true}}
	g := newGate(identitytest.NewFake().SetSession(adminSession), v, stub)
	w := httptest.NewRecorder()

	// Act
	g.Provide(app).ServeHTTP(w, r)

	// Assert
	require.Equal(t, "Signed in successfully!", w.Header().Get(gate.NoticeHeader))

	// Act
	w = httptest.NewRecorder()
	g.Provide(app).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	require.Empty(t, w.Header().Get(gate.NoticeHeader))
}

func TestLogin(t *testing.T) {
	// Arrange
	g := newGate(identitytest.NewFake(), new(fakeValidator), session.NewStub(""))
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/login?mode=signup&next=//evil.com", nil)

	// Act
	g.Login(w, r)

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Contains(t, body, "<h1>Create Account</h1>")
	require.Contains(t, body, `name="name"`)
	require.Contains(t, body, "Already have an account? Sign in")
	require.NotContains(t, body, "evil.com")
}

func postLogin(form url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestSubmitSignInCreatesMissingAccount(t *testing.T) {
	// Arrange
	fake := identitytest.NewFake()
	stub := session.NewStub("")
	g := newGate(fake, check.NewLocal(check.SessionChecker{Admin: admin, Provider: fake}), stub)
	w := httptest.NewRecorder()
	r := postLogin(url.Values{"email": {"a@x.com"}, "password": {"secret"}, "next": {"/reports"}})

	// Act
	g.Submit(w, r)

	// Assert
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/reports", w.Header().Get("Location"))
	require.Equal(t, []string{"signin a@x.com", "signup a@x.com a", "signin a@x.com"}, fake.Calls())
	require.Equal(t, "a@x.com", fake.Session().User.Email)

	s, err := stub.GetSession(r)
	require.Nil(t, err)
	require.Equal(t, []session.Flash{{Class: session.FlashSuccess, Msg: "Account created and signed in!"}}, s.Flashes(httptest.NewRecorder(), r))
}

func TestSubmitInvalidCredentialsNeverReachProvider(t *testing.T) {
	// Arrange
	fake := identitytest.NewFake()
	g := newGate(fake, check.NewLocal(check.SessionChecker{Admin: admin, Provider: fake}), session.NewStub(""))
	w := httptest.NewRecorder()
	r := postLogin(url.Values{"email": {"a@x.com"}, "password": {"wrong"}})

	// Act
	g.Submit(w, r)

	// Assert
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "Access denied. Invalid credentials.")
	require.Contains(t, w.Body.String(), `value="a@x.com"`)
	require.Empty(t, fake.Calls())
}

func TestSubmitJSON(t *testing.T) {
	tcs := []struct {
		name     string
		fake     *identitytest.Fake
		v        *fakeValidator
		body     string
		code     int
		expected map[string]string
	}{
		{
			"Signed-In",
			identitytest.NewFake().AddAccount("a@x.com", "secret", "a"),
			&fakeValidator{creds: check.Result{Valid: true}},
			`{"email":"a@x.com","password":"secret"}`,
			http.StatusOK,
			map[string]string{"state": "validated", "notice": "Signed in successfully!"},
		},
		{
			"Sign-Up-Mode",
			identitytest.NewFake(),
			&fakeValidator{creds: check.Result{Valid: true}},
			`{"email":"a@x.com","password":"secret","mode":"signup"}`,
			http.StatusOK,
			map[string]string{"state": "validated", "notice": "Account created successfully!"},
		},
		{
			"Sign-Up-Fails",
			identitytest.NewFake().FailSignUp(identity.ErrAccountExists),
			&fakeValidator{creds: check.Result{Valid: true}},
			`{"email":"a@x.com","password":"secret"}`,
			http.StatusUnauthorized,
			map[string]string{"state": "signedOut", "error": "Sign in failed. Please try signing up first."},
		},
		{
			"Check-Unreachable",
			identitytest.NewFake(),
			&fakeValidator{credsErr: check.ErrTransport},
			`{"email":"a@x.com","password":"secret"}`,
			http.StatusUnauthorized,
			map[string]string{"state": "signedOut", "error": "Authentication failed"},
		},
		{
			"Check-Denies-Without-Message",
			identitytest.NewFake(),
			&fakeValidator{creds: check.Result{}},
			`{"email":"a@x.com","password":"secret"}`,
			http.StatusUnauthorized,
			map[string]string{"state": "signedOut", "error": "Access denied. Invalid credentials."},
		},
		{
			"Malformed",
			identitytest.NewFake(),
			&fakeValidator{creds: check.Result{Valid: true}},
			`{"email":`,
			http.StatusUnauthorized,
			map[string]string{"state": "signedOut", "error": "Authentication failed"},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			g := newGate(tc.fake, tc.v, session.NewStub(""))
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tc.body))
			r.Header.Set("Content-Type", "application/json")

			// Act
			g.Submit(w, r)

			// Assert
			require.Equal(t, tc.code, w.Code)
			require.Equal(t, tc.expected, decodeState(t, w))
		})
	}
}

func TestSubmitFieldErrors(t *testing.T) {
	tcs := []struct {
		name     string
		body     string
		expected map[string]string
	}{
		{"Bad-Email", `{"email":"not-an-email","password":"secret"}`, map[string]string{"email": "Enter a valid email address."}},
		{"Missing-Password", `{"email":"a@x.com"}`, map[string]string{"password": "Password is required."}},
		{"Bad-Mode", `{"email":"a@x.com","password":"secret","mode":"sideways"}`, map[string]string{"mode": "Mode is not one of the allowed choices."}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			fake := identitytest.NewFake()
			g := newGate(fake, &fakeValidator{creds: check.Result{Valid: true}}, session.NewStub(""))
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(tc.body))
			r.Header.Set("Content-Type", "application/json")

			var body struct {
				State  string            `json:"state"`
				Error  string            `json:"error"`
				Fields map[string]string `json:"fields"`
			}

			// Act
			g.Submit(w, r)

			// Assert
			require.Equal(t, http.StatusUnauthorized, w.Code)
			require.Nil(t, json.NewDecoder(w.Body).Decode(&body))
			require.Equal(t, "signedOut", body.State)
			require.Equal(t, gate.MsgInvalidInput, body.Error)
			require.Equal(t, tc.expected, body.Fields)
			require.Empty(t, fake.Calls())
		})
	}
}

func TestSubmitFieldErrorsOnForm(t *testing.T) {
	// Arrange
	g := newGate(identitytest.NewFake(), &fakeValidator{creds: check.Result{Valid: true}}, session.NewStub(""))
	w := httptest.NewRecorder()
	r := postLogin(url.Values{"email": {"not-an-email"}})

	// Act
	g.Submit(w, r)

	// Assert
	require.Equal(t, http.StatusUnauthorized, w.Code)
	body := w.Body.String()
	require.Contains(t, body, `<p class="field-error">Enter a valid email address.</p>`)
	require.Contains(t, body, `<p class="field-error">Password is required.</p>`)
	require.Contains(t, body, `value="not-an-email"`)
}

// panicky panics when signing in.
type panicky struct {
	*identitytest.Fake
}

func (panicky) SignIn(w http.ResponseWriter, r *http.Request, c identity.Credentials) error {
	panic(errors.New("nil map"))
}

func TestSubmitRecovers(t *testing.T) {
	// Arrange
	g := newGate(panicky{identitytest.NewFake()}, &fakeValidator{creds: check.Result{Valid: true}}, session.NewStub(""))
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@x.com","password":"secret"}`))
	r.Header.Set("Content-Type", "application/json")

	// Act
	require.NotPanics(t, func() { g.Submit(w, r) })

	// Assert
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, map[string]string{"state": "signedOut", "error": "Authentication failed"}, decodeState(t, w))
}

func TestSubmitRejectsOffsiteNext(t *testing.T) {
	// Arrange
	fake := identitytest.NewFake().AddAccount("a@x.com", "secret", "a")
	g := newGate(fake, &fakeValidator{creds: check.Result{Valid: true}}, session.NewStub(""))
	w := httptest.NewRecorder()

	// Act
	g.Submit(w, postLogin(url.Values{"email": {"a@x.com"}, "password": {"secret"}, "next": {"https://evil.com/"}}))

	// Assert
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/", w.Header().Get("Location"))
}

func TestSignOut(t *testing.T) {
	// Arrange
	fake := identitytest.NewFake().SetSession(adminSession)
	g := newGate(fake, new(fakeValidator), session.NewStub(""))
	w := httptest.NewRecorder()

	// Act
	g.SignOut(w, httptest.NewRequest(http.MethodPost, "/logout", nil))

	// Assert
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))
	require.Nil(t, fake.Session())
}

// TestScenario walks an admin from the login form to the application,
// with accounts kept by a fake identity provider and checks run in-process.
func TestScenario(t *testing.T) {
	// Arrange
	fake := identitytest.NewFake()
	stub := session.NewStub("")
	g := newGate(fake, check.NewLocal(check.SessionChecker{Admin: admin, Provider: fake}), stub)
	gated := g.Provide(app)

	// Act
	w := httptest.NewRecorder()
	gated.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Act
	w = httptest.NewRecorder()
	g.Submit(w, postLogin(url.Values{"email": {"A@X.com"}, "password": {"secret"}}))

	// Assert
	require.Equal(t, http.StatusSeeOther, w.Code)

	// Act
	w = httptest.NewRecorder()
	gated.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, appBody, w.Body.String())
	require.Equal(t, "Account created and signed in!", w.Header().Get(gate.NoticeHeader))
}
