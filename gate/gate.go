package gate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/check"
	"github.com/xy-planning-network/gatekeeper/http/req"
	"github.com/xy-planning-network/gatekeeper/http/resp"
	"github.com/xy-planning-network/gatekeeper/http/session"
	"github.com/xy-planning-network/gatekeeper/http/template"
	"github.com/xy-planning-network/gatekeeper/identity"
	"github.com/xy-planning-network/gatekeeper/logger"
)

const (
	// NoticeHeader carries the success message of a login
	// on the first response of the gated application after it.
	NoticeHeader = "X-Gatekeeper-Notice"

	// MsgInvalidInput is shown when the login form is not filled in correctly.
	MsgInvalidInput = "Please enter a valid email and password."

	defaultLoginPath = "/login"
)

// A Validator runs the admin checks for the gate.
//
// A non-nil error means the check could not be reached;
// a reached check that fails returns an invalid check.Result and a nil error.
type Validator interface {
	ValidateCredentials(r *http.Request, email, password string) (check.Result, error)
	ValidateSession(r *http.Request) (check.Result, error)
}

// A Gate only lets agents that are signed in as the admin through to the application it provides.
//
// Every request walks its own Machine through the gate:
// the gate is safe for concurrent use.
type Gate struct {
	logger    logger.Logger
	loginPath string
	metrics   *Metrics
	parser    *req.Parser
	policy    Policy
	provider  identity.Provider
	responder *resp.Responder
	sessions  session.SessionStorer
	validator Validator
	wait      time.Duration
}

// An Option configures a *Gate.
type Option func(*Gate)

// WithLogger sets the logger.Logger the Gate logs through.
func WithLogger(l logger.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithLoginPath sets the path the login form is served from and posts to.
// The default is "/login".
func WithLoginPath(p string) Option {
	return func(g *Gate) {
		if strings.HasPrefix(p, "/") {
			g.loginPath = p
		}
	}
}

// WithPolicy sets what happens when the session check cannot be reached.
// The default is FailOpen.
func WithPolicy(p Policy) Option {
	return func(g *Gate) {
		g.policy = p
	}
}

// WithWait bounds how long the Gate waits on the identity provider and the session check.
// When the wait ends first, the Gate serves its Pending or Validating placeholder
// and asks the agent to retry.
// By default the Gate waits as long as the request lasts.
func WithWait(d time.Duration) Option {
	return func(g *Gate) {
		g.wait = d
	}
}

// WithRegisterer registers the Gate's Metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(g *Gate) {
		g.metrics = NewMetrics(reg)
	}
}

// WithResponder sets the *resp.Responder pages are rendered with.
//
// The Responder must be able to render template.LayoutTmpl, template.LoginTmpl and template.StatusTmpl.
func WithResponder(d *resp.Responder) Option {
	return func(g *Gate) {
		g.responder = d
	}
}

// New constructs a *Gate.
//
// provider owns accounts and sessions,
// validator runs the admin checks,
// and sessions holds the flash messages shown after a login.
func New(provider identity.Provider, validator Validator, sessions session.SessionStorer, opts ...Option) *Gate {
	g := &Gate{
		loginPath: defaultLoginPath,
		parser:    req.NewParser(),
		policy:    FailOpen,
		provider:  provider,
		sessions:  sessions,
		validator: validator,
	}

	for _, opt := range opts {
		opt(g)
	}

	if g.logger == nil {
		g.logger = logger.New()
	}

	if g.metrics == nil {
		g.metrics = NewMetrics(nil)
	}

	if g.responder == nil {
		g.responder = resp.NewResponder(
			resp.WithLogger(g.logger),
			resp.WithParser(template.NewParser()),
			resp.WithLayoutTemplate(template.LayoutTmpl),
			resp.WithErrTemplate(template.ErrorTmpl),
		)
	}

	return g
}

// Provide mounts the gate around app.
//
// app is served only once the request's session passes the admin check,
// and finds that session in the request context under gatekeeper.CurrentSessionKey.
// Otherwise the login form, or a placeholder while the gate waits, is served in its place.
func (g *Gate) Provide(app http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := new(Machine)
		if s := g.walk(w, r, m); m.Renders() && s != nil {
			r = r.WithContext(context.WithValue(r.Context(), gatekeeper.CurrentSessionKey, s))
		}

		g.metrics.rendered(m.State())
		g.render(w, r, m, app)
	})
}

// walk moves m as far through the gate as the request allows,
// returning the session it resolved.
// A session or check not answered before the wait ends leaves m where it was.
func (g *Gate) walk(w http.ResponseWriter, r *http.Request, m *Machine) *gatekeeper.Session {
	if err := m.Mount(); err != nil {
		g.logger.Error(err.Error(), &logger.LogContext{Request: r, Error: err})
		return nil
	}

	wr := r
	if g.wait > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), g.wait)
		defer cancel()
		wr = r.WithContext(ctx)
	}

	s, err := g.provider.GetSession(wr)
	if wr.Context().Err() != nil {
		return nil
	}

	if err != nil {
		g.logger.Warn("could not get session, treating as signed out", &logger.LogContext{Request: r, Error: err})
		s = nil
	}

	validate, err := m.Resolve(s)
	if err != nil || !validate {
		return s
	}

	res, err := g.validator.ValidateSession(wr)
	if wr.Context().Err() != nil {
		return s
	}

	if err != nil {
		g.logger.Warn(fmt.Sprintf("session check unreachable, failing %s", g.policy), &logger.LogContext{Request: r, Error: err, User: s.User})
	}

	if err := m.Finish(res, err, g.policy); err != nil {
		g.logger.Error(err.Error(), &logger.LogContext{Request: r, Error: err})
		return s
	}

	if m.State() != Denied {
		return s
	}

	g.logger.Info("session denied, signing out", &logger.LogContext{Request: r, User: s.User})
	if err := g.provider.SignOut(w, r); err != nil {
		g.logger.Error("could not sign out denied session", &logger.LogContext{Request: r, Error: err, User: s.User})
	}

	if err := m.SignedOut(""); err != nil {
		g.logger.Error(err.Error(), &logger.LogContext{Request: r, Error: err})
	}

	return nil
}

func (g *Gate) render(w http.ResponseWriter, r *http.Request, m *Machine, app http.Handler) {
	switch m.State() {
	case Validated:
		g.surfaceNotices(w, r)
		app.ServeHTTP(w, r)
		return
	case Pending, Validating:
		msg := MsgLoading
		if m.State() == Validating {
			msg = MsgVerifying
		}

		w.Header().Set("Retry-After", "1")
		if req.WantsJSON(r) {
			g.json(w, r, http.StatusServiceUnavailable, stateBody{State: m.State()})
			return
		}

		g.html(w, r, http.StatusServiceUnavailable, template.StatusTmpl, statusPage{Message: msg})
	default:
		w.Header().Set("Cache-Control", "no-store")
		if req.WantsJSON(r) {
			g.json(w, r, http.StatusUnauthorized, stateBody{State: m.State(), Error: m.Message()})
			return
		}

		page := newLoginPage(g.loginPath, gatekeeper.SignIn, r.URL.RequestURI(), "", m.Message())
		g.html(w, r, http.StatusUnauthorized, template.LoginTmpl, page)
	}
}

// surfaceNotices moves success flashes into NoticeHeader.
func (g *Gate) surfaceNotices(w http.ResponseWriter, r *http.Request) {
	s, err := g.sessions.GetSession(r)
	if err != nil {
		g.logger.Warn("could not get session for notices", &logger.LogContext{Request: r, Error: err})
		return
	}

	for _, f := range s.Flashes(w, r) {
		if f.Class == session.FlashSuccess {
			w.Header().Add(NoticeHeader, f.Msg)
		}
	}
}

// Login serves the login form.
// "?mode=signup" serves the sign up form; "?next=" is where a successful login goes.
func (g *Gate) Login(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := gatekeeper.Mode(q.Get("mode")).Or(gatekeeper.SignIn)
	g.html(w, r, http.StatusOK, template.LoginTmpl, newLoginPage(g.loginPath, mode, safeNext(q.Get("next")), "", ""))
}

// Submit handles the login form.
//
// The admin credentials check runs first, so credentials that are not the admin's
// never reach the identity provider.
// Only then are the mode's Plan's calls made to the identity provider.
func (g *Gate) Submit(w http.ResponseWriter, r *http.Request) {
	var la gatekeeper.LoginAttempt
	m := newSignedOut()
	v := g.submit(w, r, &la)
	mode := la.Mode.Or(gatekeeper.SignIn)
	g.metrics.submitted(mode.String(), v.Granted)

	if !v.Granted {
		if err := m.Reject(v.Msg); err != nil {
			g.logger.Error("could not reject login", &logger.LogContext{Request: r, Error: err})
		}

		lc := &logger.LogContext{Request: r, Error: v.Err, Data: map[string]any{"mode": mode.String(), "ran": fmt.Sprint(v.Ran)}}
		if v.Err != nil && v.Msg == MsgAuthFailed {
			g.logger.Error("login failed", lc)
		} else {
			g.logger.Info("login denied", lc)
		}

		if req.WantsJSON(r) {
			g.json(w, r, http.StatusUnauthorized, stateBody{State: m.State(), Error: m.Message(), Fields: fieldMessages(v.Err)})
			return
		}

		page := newLoginPage(g.loginPath, mode, safeNext(la.Next), la.Email, m.Message())
		page.Fields = fieldMessages(v.Err)
		g.html(w, r, http.StatusUnauthorized, template.LoginTmpl, page)
		return
	}

	if err := m.Grant(v.Notice); err != nil {
		g.logger.Error("could not grant login", &logger.LogContext{Request: r, Error: err})
	}

	g.logger.Info("login granted", &logger.LogContext{Request: r, Data: map[string]any{"mode": mode.String(), "ran": fmt.Sprint(v.Ran)}})

	if req.WantsJSON(r) {
		w.Header().Set(NoticeHeader, m.Notice())
		g.json(w, r, http.StatusOK, stateBody{State: m.State(), Notice: m.Notice()})
		return
	}

	if s, err := g.sessions.GetSession(r); err != nil {
		g.logger.Warn("could not get session to flash notice", &logger.LogContext{Request: r, Error: err})
	} else if err := s.SetFlash(w, r, session.Flash{Class: session.FlashSuccess, Msg: m.Notice()}); err != nil {
		g.logger.Warn("could not flash notice", &logger.LogContext{Request: r, Error: err})
	}

	opts := []resp.Fn{resp.Code(http.StatusSeeOther)}
	if next := safeNext(la.Next); next != "" {
		opts = append(opts, resp.Url(next))
	}

	if err := g.responder.Redirect(w, r, opts...); err != nil {
		g.logger.Error("could not redirect after login", &logger.LogContext{Request: r, Error: err})
	}
}

func (g *Gate) submit(w http.ResponseWriter, r *http.Request, la *gatekeeper.LoginAttempt) (v Verdict) {
	defer func() {
		if p := recover(); p != nil {
			v = Verdict{Msg: MsgAuthFailed, Err: fmt.Errorf("%w: recovered: %v", gatekeeper.ErrUnexpected, p)}
		}
	}()

	if err := g.parser.Parse(r, la); err != nil {
		if errors.Is(err, gatekeeper.ErrNotValid) {
			return Verdict{Msg: MsgInvalidInput, Err: err}
		}

		return Verdict{Msg: MsgAuthFailed, Err: err}
	}

	res, err := g.validator.ValidateCredentials(r, la.Email, la.Password)
	if err != nil {
		return Verdict{Msg: MsgAuthFailed, Err: err}
	}

	if !res.Valid {
		msg := res.Error
		if msg == "" {
			msg = check.MsgInvalidCredentials
		}

		return Verdict{Msg: msg}
	}

	return PlanFor(la.Mode).Run(r.Context(), func(a Action) error {
		c := identity.Credentials{Email: la.Email, Password: la.Password}
		switch a.Op {
		case OpSignIn:
			return g.provider.SignIn(w, r, c)
		case OpSignUp:
			c.Name = a.Name.Name(*la)
			return g.provider.SignUp(w, r, c)
		default:
			return fmt.Errorf("%w: op %s", ErrBadPlan, a.Op)
		}
	})
}

// SignOut signs the agent out and sends them to the login form.
func (g *Gate) SignOut(w http.ResponseWriter, r *http.Request) {
	err := g.provider.SignOut(w, r)
	if err != nil {
		g.logger.Error("could not sign out", &logger.LogContext{Request: r, Error: err})
	}

	if req.WantsJSON(r) {
		if err != nil {
			g.json(w, r, http.StatusBadGateway, stateBody{State: Validated, Error: MsgAuthFailed})
			return
		}

		g.json(w, r, http.StatusOK, stateBody{State: SignedOut})
		return
	}

	if err := g.responder.Redirect(w, r, resp.Url(g.loginPath), resp.Code(http.StatusSeeOther)); err != nil {
		g.logger.Error("could not redirect after sign out", &logger.LogContext{Request: r, Error: err})
	}
}

func (g *Gate) html(w http.ResponseWriter, r *http.Request, code int, tmpl string, data any) {
	if err := g.responder.Html(w, r, resp.Tmpls(tmpl), resp.Data(data), resp.Code(code)); err != nil {
		g.logger.Error("could not render gate", &logger.LogContext{Request: r, Error: err})
	}
}

func (g *Gate) json(w http.ResponseWriter, r *http.Request, code int, body stateBody) {
	if err := g.responder.Json(w, r, resp.Data(body), resp.Code(code)); err != nil {
		g.logger.Error("could not write gate state", &logger.LogContext{Request: r, Error: err})
	}
}

// safeNext returns next if it is a path on this host, and "" otherwise.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}

	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}

	return u.RequestURI()
}
