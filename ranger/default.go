package ranger

import (
	"context"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"strings"

	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/auth"
	"github.com/xy-planning-network/gatekeeper/check"
	"github.com/xy-planning-network/gatekeeper/gate"
	"github.com/xy-planning-network/gatekeeper/http/middleware"
	"github.com/xy-planning-network/gatekeeper/http/resp"
	"github.com/xy-planning-network/gatekeeper/http/session"
	"github.com/xy-planning-network/gatekeeper/http/template"
	"github.com/xy-planning-network/gatekeeper/identity"
	"github.com/xy-planning-network/gatekeeper/identity/local"
	"github.com/xy-planning-network/gatekeeper/identity/remote"
	"github.com/xy-planning-network/gatekeeper/logger"
	"github.com/xy-planning-network/gatekeeper/postgres"
)

// defaultAppLogger constructs a [logger.Logger] configured for use in the application.
// When SENTRY_DSN is set, errors are shipped to Sentry as well.
func defaultAppLogger(env gatekeeper.Environment) logger.Logger {
	return logger.New(
		logger.WithEnv(env.String()),
		logger.WithLevel(logger.NewLogLevel(os.Getenv(logLevelEnvVar))),
	)
}

// defaultAccountStore connects to the database configured by the DATABASE env vars
// and runs gatekeeper's migrations.
//
// Without a database configured, environments allowing stubs keep accounts in memory.
func defaultAccountStore(env gatekeeper.Environment, l logger.Logger) (gatekeeper.AccountStore, *postgres.DB, error) {
	if !hasDatabase() {
		if !env.CanUseServiceStub() {
			err := fmt.Errorf("%w: set %s or %s to store accounts", gatekeeper.ErrBadConfig, dbURLEnvVar, dbNameEnvVar)
			return nil, nil, err
		}

		l.Warn("no database configured, keeping accounts in memory", nil)
		return local.NewMemoryStore(), nil, nil
	}

	db, err := postgres.Connect(NewPostgresConfig(env), postgres.Migrations, env)
	if err != nil {
		return nil, nil, err
	}

	return postgres.NewAccountStore(db), db, nil
}

// defaultTokens constructs the *auth.TokenService bearer tokens are verified with,
// if JWT_KEY is set.
func defaultTokens() (*auth.TokenService, error) {
	if os.Getenv(JWTKeyEnvVar) == "" {
		return nil, nil
	}

	return NewTokenService()
}

// defaultRegistry constructs the registry /metrics exposes,
// including Go runtime and process metrics.
func defaultRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return reg
}

// defaultParser constructs a template.Parser to be used
// when responding to HTTP requests with [*http/resp.Responder.Html].
//
// defaultParser makes available these functions in an HTML template:
//
//   - "env"
//   - "isDevelopment"
//   - "nonce"
//   - "rootUrl"
func defaultParser(env gatekeeper.Environment, u *url.URL) template.Parser {
	p := template.NewParser()
	p.AddFn(template.Env(env))
	p.AddFn("isDevelopment", env.IsDevelopment)
	p.AddFn(template.RootUrl(u))

	return p
}

// defaultResponder configures the [*resp.Responder] to be used by http.Handlers.
func defaultResponder(l logger.Logger, u *url.URL, p template.Parser) *resp.Responder {
	contact := gatekeeper.EnvVarOrString(ContactUsEnvVar, defaultContactUs)

	return resp.NewResponder(
		resp.WithContactErrMsg(fmt.Sprintf(session.ContactUsErr, contact)),
		resp.WithErrTemplate(template.ErrorTmpl),
		resp.WithLayoutTemplate(template.LayoutTmpl),
		resp.WithLogger(l),
		resp.WithParser(p),
		resp.WithRootUrl(u.String()),
	)
}

// defaultSessionStore constructs a SessionStorer to be used for storing session data.
//
// defaultSessionStore relies on these env vars:
//   - SESSION_AUTH_KEY
//   - SESSION_ENCRYPTION_KEY
//   - REDIS_URL, to store sessions in Redis instead of cookies
//   - REDIS_PASSWORD
//
// Both KEY env vars be valid hex encoded values; cf. [encoding/hex].
// Environments allowing stubs may omit SESSION_AUTH_KEY:
// a random one is generated, so sessions do not outlive the process.
func defaultSessionStore(env gatekeeper.Environment, l logger.Logger) (session.SessionStorer, error) {
	cfg := session.Config{
		AuthKey:     os.Getenv(SessionAuthKeyEnvVar),
		EncryptKey:  os.Getenv(SessionEncryptKeyEnvVar),
		Env:         env,
		SessionName: sessionName,
	}

	if cfg.AuthKey == "" {
		if !env.CanUseServiceStub() {
			return nil, fmt.Errorf("%w: %s is required", gatekeeper.ErrBadConfig, SessionAuthKeyEnvVar)
		}

		l.Warn(fmt.Sprintf("%s not set, generating a key for this process", SessionAuthKeyEnvVar), nil)
		cfg.AuthKey = hex.EncodeToString(securecookie.GenerateRandomKey(32))
	}

	args := []session.ServiceOpt{session.WithMaxAge(sessionMaxAge)}
	if uri := os.Getenv(redisURLEnvVar); uri != "" {
		args = append(args, session.WithRedis(uri, os.Getenv(redisPassEnvVar)))
	} else {
		args = append(args, session.WithCookie())
	}

	return session.NewStoreService(cfg, args...)
}

// defaultProvider constructs the identity.Provider IDENTITY_PROVIDER names.
//
// The local provider needs accounts, which is only called for it.
func defaultProvider(
	sessions session.SessionStorer,
	tokens *auth.TokenService,
	accounts func() (gatekeeper.AccountStore, error),
) (identity.Provider, error) {
	switch kind := strings.ToLower(gatekeeper.EnvVarOrString(identityProviderEnvVar, providerLocal)); kind {
	case providerLocal:
		store, err := accounts()
		if err != nil {
			return nil, err
		}

		var opts []local.ProviderOpt
		if tokens != nil {
			opts = append(opts, local.WithTokens(tokens))
		}

		return local.NewProvider(store, sessions, opts...), nil

	case providerRemote:
		var opts []remote.ProviderOpt
		if d := gatekeeper.EnvVarOrDuration(identityTimeoutEnvVar, 0); d > 0 {
			opts = append(opts, remote.WithTimeout(d))
		}

		return remote.NewProvider(os.Getenv(identityURLEnvVar), opts...)

	default:
		return nil, fmt.Errorf("%w: unknown %s %q", gatekeeper.ErrBadConfig, identityProviderEnvVar, kind)
	}
}

// defaultValidator constructs the gate.Validator the gate checks admins with.
//
// When GATE_VALIDATOR_URL is set, the gate calls the check endpoints served at that base URL,
// otherwise it checks in-process.
func defaultValidator(admin gatekeeper.AdminCredentials, provider identity.Provider, l logger.Logger) (gate.Validator, error) {
	base := os.Getenv(gateValidatorURLEnvVar)
	if base == "" {
		return check.NewLocal(check.SessionChecker{Admin: admin, Logger: l, Provider: provider}), nil
	}

	var opts []check.ClientOpt
	if d := gatekeeper.EnvVarOrDuration(gateValidatorTOEnvVar, 0); d > 0 {
		opts = append(opts, check.WithTimeout(d))
	}

	return check.NewClient(base, opts...)
}

// defaultUpstream constructs the application served behind the gate.
//
// When UPSTREAM_URL is set, requests are proxied to it.
// Otherwise a page confirming access is served.
func defaultUpstream(l logger.Logger, d *resp.Responder) (http.Handler, error) {
	raw := os.Getenv(upstreamURLEnvVar)
	if raw == "" {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			msg := "Access granted."
			if s, err := d.CurrentSession(r.Context()); err == nil && s.HasEmail() {
				msg = fmt.Sprintf("Signed in as %s.", s.User.Email)
			}

			_ = d.Html(w, r, resp.Tmpls(template.StatusTmpl), resp.Data(map[string]any{"Message": msg}))
		}), nil
	}

	u, err := url.ParseRequestURI(raw)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: %s %q is not an absolute URL", gatekeeper.ErrBadConfig, upstreamURLEnvVar, raw)
	}

	proxy := httputil.NewSingleHostReverseProxy(u)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		l.Error("upstream unreachable", &logger.LogContext{Request: r, Error: err})
		w.WriteHeader(http.StatusBadGateway)
	}

	return proxy, nil
}

// defaultPolicy reads GATE_TRANSPORT_POLICY.
func defaultPolicy() (gate.Policy, error) {
	p, err := gate.ParsePolicy(os.Getenv(gatePolicyEnvVar))
	if err != nil {
		return p, fmt.Errorf("%w: %s: %s", gatekeeper.ErrBadConfig, gatePolicyEnvVar, err)
	}

	return p, nil
}

// defaultMiddlewares is the stack every request passes through.
func defaultMiddlewares(
	env gatekeeper.Environment,
	l logger.Logger,
	reg prometheus.Registerer,
	sessions session.SessionStorer,
) []middleware.Adapter {
	return []middleware.Adapter{
		middleware.ReportPanic(env),
		middleware.ForceHTTPS(env),
		middleware.RequestID(),
		middleware.InjectIPAddress(),
		middleware.LogRequest(l),
		middleware.Metrics(reg),
		middleware.InjectSession(sessions),
	}
}

// defaultServer constructs a default [*http.Server].
func defaultServer(ctx context.Context) *http.Server {
	port := gatekeeper.EnvVarOrString(portEnvVar, DefaultPort)
	if port[0] != ':' {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		IdleTimeout:  gatekeeper.EnvVarOrDuration(serverIdleTimeoutEnvVar, DefaultServerIdleTimeout),
		ReadTimeout:  gatekeeper.EnvVarOrDuration(serverReadTimeoutEnvVar, DefaultServerReadTimeout),
		WriteTimeout: gatekeeper.EnvVarOrDuration(serverWriteTimeoutEnvVar, DefaultServerWriteTimeout),
	}
	if ctx != nil {
		srv.BaseContext = func(_ net.Listener) context.Context { return ctx }
	}

	return srv
}
