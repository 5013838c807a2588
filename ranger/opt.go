package ranger

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/gate"
	"github.com/xy-planning-network/gatekeeper/http/router"
	"github.com/xy-planning-network/gatekeeper/http/session"
	"github.com/xy-planning-network/gatekeeper/identity"
	"github.com/xy-planning-network/gatekeeper/logger"
)

// A RangerOption configures a *Ranger either (1) directly, immediately upon being called
// or (2) in the OptFollowup it returns.
// Some RangerOptions require components New builds from the others
// and thus an OptFollowup can be returned in order to be called
// once those components are available.
//
// WithLogger is an example of the first.
// An unexported field on the passed in *Ranger is updated with the enclosed value.
//
// WithGatedRoutes is an example of the second.
// Routes are registered behind the gate only when the closure it returns is called.
type RangerOption func(rng *Ranger) (OptFollowup, error)
type OptFollowup func() error

// WithAccountStore sets where the local identity provider keeps accounts.
// No database is connected to.
func WithAccountStore(store gatekeeper.AccountStore) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.accounts = store
		rng.debug(fmt.Sprintf("using account store %T", store))

		return nil, nil
	}
}

// WithAdmin sets the admin allow-list instead of reading ADMIN_EMAIL and ADMIN_PASSWORD.
func WithAdmin(admin gatekeeper.AdminCredentials) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.admin = &admin
		rng.debug(fmt.Sprintf("using admin %s", admin))

		return nil, nil
	}
}

// WithContext exposes the provided context.Context to the gatekeeper app.
func WithContext(ctx context.Context) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.ctx = ctx
		rng.debug(fmt.Sprintf("using context %T", ctx))

		return nil, nil
	}
}

// WithEnv sets the Environment instead of reading ENVIRONMENT.
func WithEnv(env gatekeeper.Environment) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		if err := env.Valid(); err != nil {
			return nil, fmt.Errorf("%w: %q", err, env)
		}

		rng.env = env
		rng.debug(fmt.Sprintf("using env %s", env))

		return nil, nil
	}
}

// WithGatedRoutes constructs a followup option that, when called,
// registers routes behind the gate ahead of the upstream application.
func WithGatedRoutes(routes ...router.Route) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		return func() error {
			rng.Router.GatedRoutes(rng.gate, routes)
			rng.debug(fmt.Sprintf("gating %d routes", len(routes)))

			return nil
		}, nil
	}
}

// WithGateOptions passes opts to gate.New, after the options New sets from the environment.
func WithGateOptions(opts ...gate.Option) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.gateOpts = append(rng.gateOpts, opts...)

		return nil, nil
	}
}

// WithLogger exposes the provided logger.Logger to the gatekeeper app.
func WithLogger(l logger.Logger) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.l = l
		rng.debug(fmt.Sprintf("using logger %T", l))

		return nil, nil
	}
}

// WithProvider sets the identity.Provider instead of the one IDENTITY_PROVIDER names.
func WithProvider(p identity.Provider) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.provider = p
		rng.debug(fmt.Sprintf("using identity provider %T", p))

		return nil, nil
	}
}

// WithRegistry sets the registry collectors register with and /metrics exposes.
func WithRegistry(reg *prometheus.Registry) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.reg = reg

		return nil, nil
	}
}

// WithServer exposes the *http.Server to the gatekeeper app.
func WithServer(s *http.Server) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.srv = s

		return nil, nil
	}
}

// WithSessionStore exposes the session.SessionStorer to the gatekeeper app.
func WithSessionStore(store session.SessionStorer) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.sessions = store
		rng.debug(fmt.Sprintf("using session store %T", store))

		return nil, nil
	}
}

// WithUpstream sets the application served behind the gate instead of proxying UPSTREAM_URL.
func WithUpstream(app http.Handler) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.upstream = app

		return nil, nil
	}
}

// WithValidator sets the gate.Validator the gate checks admins with.
func WithValidator(v gate.Validator) RangerOption {
	return func(rng *Ranger) (OptFollowup, error) {
		rng.validator = v
		rng.debug(fmt.Sprintf("using validator %T", v))

		return nil, nil
	}
}
