package ranger

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/auth"
	"github.com/xy-planning-network/gatekeeper/check"
	"github.com/xy-planning-network/gatekeeper/gate"
	"github.com/xy-planning-network/gatekeeper/http/middleware"
	"github.com/xy-planning-network/gatekeeper/http/resp"
	"github.com/xy-planning-network/gatekeeper/http/router"
	"github.com/xy-planning-network/gatekeeper/http/session"
	"github.com/xy-planning-network/gatekeeper/identity"
	"github.com/xy-planning-network/gatekeeper/logger"
	"github.com/xy-planning-network/gatekeeper/postgres"
)

// A Ranger manages and exposes all components of a gatekeeper app to one another.
type Ranger struct {
	*resp.Responder
	*router.Router

	accounts  gatekeeper.AccountStore
	admin     *gatekeeper.AdminCredentials
	ctx       context.Context
	db        *postgres.DB
	env       gatekeeper.Environment
	gate      *gate.Gate
	gateOpts  []gate.Option
	l         logger.Logger
	provider  identity.Provider
	reg       *prometheus.Registry
	sessions  session.SessionStorer
	srv       *http.Server
	tokens    *auth.TokenService
	upstream  http.Handler
	url       *url.URL
	validator gate.Validator
}

// New constructs a Ranger from the provided options.
// Options passed to New are applied first;
// every component they leave unset is then built from the environment.
// OptFollowups run once all components exist,
// before the upstream application is mounted behind the gate.
func New(opts ...RangerOption) (*Ranger, error) {
	rng := new(Ranger)
	followups := make([]OptFollowup, 0)

	for _, opt := range opts {
		fn, err := opt(rng)
		if err != nil {
			return nil, badConfig(err)
		}

		if fn != nil {
			followups = append(followups, fn)
		}
	}

	if err := rng.setup(); err != nil {
		return nil, badConfig(err)
	}

	for _, fn := range followups {
		if err := fn(); err != nil {
			return nil, badConfig(err)
		}
	}

	// NOTE: mux matches routes in the order they were added,
	// so the catch-all goes last.
	rng.Router.CatchAll(rng.gate.Provide(rng.upstream))
	rng.srv.Handler = rng.Router

	return rng, nil
}

func badConfig(err error) error {
	if errors.Is(err, gatekeeper.ErrBadConfig) {
		return err
	}

	return fmt.Errorf("%w: %s", gatekeeper.ErrBadConfig, err)
}

// setup fills in every component not set by an option, in dependency order.
func (rng *Ranger) setup() error {
	var err error
	if rng.env == "" {
		rng.env = gatekeeper.EnvVarOrEnv(EnvironmentEnvVar, gatekeeper.Development)
	}

	if rng.l == nil {
		rng.l = defaultAppLogger(rng.env)
	}

	if rng.ctx == nil {
		rng.ctx = context.Background()
	}

	rng.url = gatekeeper.EnvVarOrURL(BaseURLEnvVar, defaultBaseURL)
	if rng.url == nil {
		return fmt.Errorf("%w: %s is not a URL", gatekeeper.ErrBadConfig, BaseURLEnvVar)
	}

	if rng.admin == nil {
		admin := gatekeeper.LoadAdminCredentials()
		rng.admin = &admin
	}

	if !rng.admin.Restricted() {
		rng.l.Warn("ADMIN_EMAIL and ADMIN_PASSWORD not both set, sign in is open to every account", nil)
	}

	if rng.reg == nil {
		rng.reg = defaultRegistry()
	}

	if rng.sessions == nil {
		if rng.sessions, err = defaultSessionStore(rng.env, rng.l); err != nil {
			return err
		}
	}

	if rng.tokens, err = defaultTokens(); err != nil {
		return err
	}

	if rng.provider == nil {
		rng.provider, err = defaultProvider(rng.sessions, rng.tokens, rng.accountStore)
		if err != nil {
			return err
		}
	}

	if rng.validator == nil {
		if rng.validator, err = defaultValidator(*rng.admin, rng.provider, rng.l); err != nil {
			return err
		}
	}

	policy, err := defaultPolicy()
	if err != nil {
		return err
	}

	rng.Responder = defaultResponder(rng.l, rng.url, defaultParser(rng.env, rng.url))

	if rng.upstream == nil {
		if rng.upstream, err = defaultUpstream(rng.l, rng.Responder); err != nil {
			return err
		}
	}

	gateOpts := []gate.Option{
		gate.WithLogger(rng.l),
		gate.WithLoginPath(LoginPath),
		gate.WithPolicy(policy),
		gate.WithRegisterer(rng.reg),
		gate.WithResponder(rng.Responder),
	}
	if wait := gatekeeper.EnvVarOrDuration(gateWaitEnvVar, 0); wait > 0 {
		gateOpts = append(gateOpts, gate.WithWait(wait))
	}

	rng.gate = gate.New(rng.provider, rng.validator, rng.sessions, append(gateOpts, rng.gateOpts...)...)
	rng.l.Info(fmt.Sprintf("gate failing %s when the session check is unreachable", policy), nil)

	checks := check.NewHandler(*rng.admin, rng.provider, check.WithLogger(rng.l), check.WithRegisterer(rng.reg))
	rng.Router = rng.routes(checks)

	if rng.srv == nil {
		rng.srv = defaultServer(rng.ctx)
	}

	return nil
}

// accountStore connects the account store the local identity provider needs,
// unless WithAccountStore set one.
func (rng *Ranger) accountStore() (gatekeeper.AccountStore, error) {
	if rng.accounts != nil {
		return rng.accounts, nil
	}

	store, db, err := defaultAccountStore(rng.env, rng.l)
	if err != nil {
		return nil, err
	}

	rng.accounts, rng.db = store, db

	return store, nil
}

// routes constructs the *router.Router serving gatekeeper's own endpoints.
func (rng *Ranger) routes(checks *check.Handler) *router.Router {
	r := router.New(rng.env, middleware.LogRequest(rng.l))
	r.OnEveryRequest(defaultMiddlewares(rng.env, rng.l, rng.reg, rng.sessions)...)

	var origins []string
	for _, o := range strings.Split(os.Getenv(corsOriginEnvVar), ",") {
		origins = append(origins, strings.TrimSpace(o))
	}

	r.HandleRoutes([]router.Route{
		{Path: "/validate-admin", Method: http.MethodPost, Handler: http.HandlerFunc(checks.ValidateAdmin), Preflight: true},
		{Path: "/validate-admin/session", Method: http.MethodPost, Handler: http.HandlerFunc(checks.ValidateSession), Preflight: true},
	}, middleware.CORS(origins...))

	r.HandleRoutes([]router.Route{
		{Path: LoginPath, Method: http.MethodGet, Handler: http.HandlerFunc(rng.gate.Login)},
		{Path: LoginPath, Method: http.MethodPost, Handler: http.HandlerFunc(rng.gate.Submit)},
		{Path: LogoutPath, Method: http.MethodPost, Handler: http.HandlerFunc(rng.gate.SignOut)},
	}, middleware.CurrentSession(rng.provider, rng.l))

	r.Handle(router.Route{
		Path:    MetricsPath,
		Method:  http.MethodGet,
		Handler: promhttp.HandlerFor(rng.reg, promhttp.HandlerOpts{Registry: rng.reg}),
	})

	return r
}

func (rng *Ranger) debug(msg string) {
	if rng.l != nil {
		rng.l.Debug(msg, nil)
	}
}

func (rng *Ranger) EmitAccountStore() gatekeeper.AccountStore { return rng.accounts }
func (rng *Ranger) EmitDB() *postgres.DB                      { return rng.db }
func (rng *Ranger) EmitGate() *gate.Gate                      { return rng.gate }
func (rng *Ranger) EmitLogger() logger.Logger                 { return rng.l }
func (rng *Ranger) EmitProvider() identity.Provider           { return rng.provider }
func (rng *Ranger) EmitRegistry() *prometheus.Registry        { return rng.reg }
func (rng *Ranger) EmitSessionStore() session.SessionStorer   { return rng.sessions }
func (rng *Ranger) EmitTokens() *auth.TokenService            { return rng.tokens }

// Guide begins the web server.
//
// These, and (*Ranger).Shutdown, stop Guide:
//
// - os.Interrupt
// - os.Kill
// - syscall.SIGHUP
// - syscall.SIGINT
// - syscall.SIGQUIT
// - syscall.SIGTERM
func (rng *Ranger) Guide() error {
	ctx, cancel := context.WithCancel(rng.ctx)
	defer cancel()

	ch := make(chan os.Signal, 1)
	signal.Notify(
		ch,
		os.Interrupt,
		os.Kill,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	defer signal.Stop(ch)

	go func() {
		select {
		case s := <-ch:
			rng.l.Info(fmt.Sprint("received shutdown signal: ", s), nil)
			cancel()
		case <-ctx.Done():
		}
	}()

	go func() {
		rng.l.Info(fmt.Sprintf("running web server at %s", rng.srv.Addr), nil)
		if err := rng.srv.ListenAndServe(); err != http.ErrServerClosed {
			err = fmt.Errorf("could not listen: %w", err)
			rng.l.Error(err.Error(), nil)
			cancel()
		}
	}()

	<-ctx.Done()
	return rng.Shutdown()
}

// Shutdown shutdowns the web server and closes the database connection, if any.
func (rng *Ranger) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rng.l.Info("shutting down web server", nil)
	err := rng.srv.Shutdown(shutdownCtx)
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("could not shutdown: %w", err)
	}

	if rng.db != nil {
		if sqlDB, err := rng.db.DB().DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	rng.l.Info("web server shutdown successfully", nil)
	return nil
}
