package ranger

import (
	"fmt"
	"os"
	"time"

	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/auth"
	"github.com/xy-planning-network/gatekeeper/postgres"
)

const (
	// Base URL defaults
	BaseURLEnvVar = "BASE_URL"

	// Contact defaults
	ContactUsEnvVar  = "CONTACT_US_EMAIL"
	defaultContactUs = "hello@xyplanningnetwork.com"

	// Environment defaults
	EnvironmentEnvVar = "ENVIRONMENT"

	// Log defaults
	logLevelEnvVar = "LOG_LEVEL"

	// Database defaults
	dbHostEnvVar         = "DATABASE_HOST"
	defaultDBHost        = "localhost"
	dbNameEnvVar         = "DATABASE_NAME"
	dbPassEnvVar         = "DATABASE_PASSWORD"
	dbPortEnvVar         = "DATABASE_PORT"
	defaultDBPort        = "5432"
	dbSSLModeEnvVar      = "DATABASE_SSLMODE"
	defaultDBSSLMode     = "prefer"
	dbURLEnvVar          = "DATABASE_URL"
	dbUserEnvVar         = "DATABASE_USER"
	dbMaxIdleCxnsEnvVar  = "DATABASE_MAX_IDLE_CXNS"
	defaultDBMaxIdleCxns = 1

	// Gate defaults
	corsOriginEnvVar       = "CORS_ORIGIN"
	gatePolicyEnvVar       = "GATE_TRANSPORT_POLICY"
	gateValidatorURLEnvVar = "GATE_VALIDATOR_URL"
	gateValidatorTOEnvVar  = "GATE_VALIDATOR_TIMEOUT"
	gateWaitEnvVar         = "GATE_WAIT"
	upstreamURLEnvVar      = "UPSTREAM_URL"
	LoginPath              = "/login"
	LogoutPath             = "/logout"
	MetricsPath            = "/metrics"

	// Identity defaults
	identityProviderEnvVar = "IDENTITY_PROVIDER"
	identityTimeoutEnvVar  = "IDENTITY_TIMEOUT"
	identityURLEnvVar      = "IDENTITY_URL"
	JWTKeyEnvVar           = "JWT_KEY"
	providerLocal          = "local"
	providerRemote         = "remote"

	// Redis defaults
	redisPassEnvVar = "REDIS_PASSWORD"
	redisURLEnvVar  = "REDIS_URL"

	// Web server defaults
	DefaultHost               = "localhost"
	hostEnvVar                = "HOST"
	DefaultPort               = ":3000"
	portEnvVar                = "PORT"
	serverReadTimeoutEnvVar   = "SERVER_READ_TIMEOUT"
	DefaultServerReadTimeout  = 5 * time.Second
	serverIdleTimeoutEnvVar   = "SERVER_IDLE_TIMEOUT"
	DefaultServerIdleTimeout  = 120 * time.Second
	serverWriteTimeoutEnvVar  = "SERVER_WRITE_TIMEOUT"
	DefaultServerWriteTimeout = 5 * time.Second

	// Session defaults
	SessionAuthKeyEnvVar    = "SESSION_AUTH_KEY"
	SessionEncryptKeyEnvVar = "SESSION_ENCRYPTION_KEY"
	sessionName             = "gatekeeper"
	sessionMaxAge           = 3600 * 24 * 7

	// Test defaults
	dbTestHostEnvVar     = "DATABASE_TEST_HOST"
	defaultDBTestHost    = "localhost"
	dbTestNameEnvVar     = "DATABASE_TEST_NAME"
	dbTestPassEnvVar     = "DATABASE_TEST_PASSWORD"
	dbTestPortEnvVar     = "DATABASE_TEST_PORT"
	defaultDBTestPort    = "5432"
	dbTestURLEnvVar      = "DATABASE_TEST_URL"
	dbTestUserEnvVar     = "DATABASE_TEST_USER"
	dbTestSSLModeEnvVar  = "DATABASE_TEST_SSLMODE"
	defaultDBTestSSLMode = "prefer"
)

var defaultBaseURL = "http://" + DefaultHost + DefaultPort

// NewPostgresConfig constructs a *postgres.CxnConfig appropriate to the given environment.
// Confer the DATABASE env vars for usage.
func NewPostgresConfig(env gatekeeper.Environment) *postgres.CxnConfig {
	var cfg *postgres.CxnConfig
	switch {
	case env.IsTesting() && os.Getenv(dbTestURLEnvVar) != "":
		cfg = &postgres.CxnConfig{IsTestDB: true, URL: os.Getenv(dbTestURLEnvVar)}

	case env.IsTesting():
		cfg = &postgres.CxnConfig{
			Host:     gatekeeper.EnvVarOrString(dbTestHostEnvVar, defaultDBTestHost),
			IsTestDB: true,
			Name:     os.Getenv(dbTestNameEnvVar),
			Password: os.Getenv(dbTestPassEnvVar),
			Port:     gatekeeper.EnvVarOrString(dbTestPortEnvVar, defaultDBTestPort),
			SSLMode:  gatekeeper.EnvVarOrString(dbTestSSLModeEnvVar, defaultDBTestSSLMode),
			User:     os.Getenv(dbTestUserEnvVar),
		}

	case os.Getenv(dbURLEnvVar) == "":
		cfg = &postgres.CxnConfig{
			Host:     gatekeeper.EnvVarOrString(dbHostEnvVar, defaultDBHost),
			IsTestDB: false,
			Name:     os.Getenv(dbNameEnvVar),
			Password: os.Getenv(dbPassEnvVar),
			Port:     gatekeeper.EnvVarOrString(dbPortEnvVar, defaultDBPort),
			SSLMode:  gatekeeper.EnvVarOrString(dbSSLModeEnvVar, defaultDBSSLMode),
			User:     os.Getenv(dbUserEnvVar),
		}

	default:
		cfg = &postgres.CxnConfig{IsTestDB: false, URL: os.Getenv(dbURLEnvVar)}
	}

	cfg.MaxIdleCxns = gatekeeper.EnvVarOrInt(dbMaxIdleCxnsEnvVar, defaultDBMaxIdleCxns)

	return cfg
}

// hasDatabase asserts whether the environment points at a database to store accounts in.
func hasDatabase() bool {
	return os.Getenv(dbURLEnvVar) != "" || os.Getenv(dbNameEnvVar) != ""
}

// NewTokenService constructs the *auth.TokenService signing with JWT_KEY.
// Tokens it mints name the host of BASE_URL as their issuer.
func NewTokenService(opts ...auth.TokenServiceOpt) (*auth.TokenService, error) {
	u := gatekeeper.EnvVarOrURL(BaseURLEnvVar, defaultBaseURL)
	if u == nil {
		return nil, fmt.Errorf("%w: %s is not a URL", gatekeeper.ErrBadConfig, BaseURLEnvVar)
	}

	opts = append([]auth.TokenServiceOpt{auth.WithIssuer(u.Host)}, opts...)

	return auth.NewTokenService(os.Getenv(JWTKeyEnvVar), opts...)
}
