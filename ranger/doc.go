/*
Package ranger initializes and manages a gatekeeper app with sane defaults.

# Ranger

The main entrypoint to package ranger is the [Ranger] type, constructed with [New].

[*Ranger.Guide] begins gatekeeper's web server.
By default, [*Ranger.Guide] listens on [DefaultPort] (:3000).
Stop that web server with [*Ranger.Shutdown]
or send a signal [*Ranger.Guide] listens for.

A Ranger serves these routes:
  - POST /validate-admin: checks an email and password against the admin allow-list
  - POST /validate-admin/session: checks the current session's email against the admin allow-list
  - GET /login, POST /login: the login form
  - POST /logout: signs the current session out
  - GET /metrics: Prometheus metrics
  - everything else: the upstream application, behind the gate

# Configuration

A developer configures a gatekeeper app through environment variables
and by passing [RangerOption]s to [New].
Options take precedence over environment variables.

Environment variables ought to be set in a file called ".env"
found at the same directory the application is executed from.

Here are the available environment variables.
  - ADMIN_EMAIL: the only email allowed through the gate; unset, every account is allowed
  - ADMIN_PASSWORD: the password ADMIN_EMAIL must sign in with
  - BASE_URL: the base URL the application runs on; default: http://localhost:3000
  - CONTACT_US_EMAIL: the email address end users can contact; default: hello@xyplanningnetwork.com
  - CORS_ORIGIN: comma-separated origins allowed to call the check endpoints from a browser
  - DATABASE_HOST: the host the database is running on; default: localhost
  - DATABASE_NAME: the name of the database
  - DATABASE_PASSWORD: the password for authenticating a connection to the database
  - DATABASE_PORT: the port the database is listening on; default: 5432
  - DATABASE_SSLMODE: cf. libpq sslmode; default: prefer
  - DATABASE_URL: the fully-qualified connection string for connecting to the database; replaces all other DATABASE_* env vars
  - DATABASE_USER: the user for authenticating a connection to the database
  - ENVIRONMENT: the environment the application is running in; cf. [gatekeeper.Environment]
  - GATE_TRANSPORT_POLICY: "open" (default) or "closed"; whether the gate lets sessions through when the session check is unreachable
  - GATE_VALIDATOR_URL: the base URL of check endpoints served elsewhere; unset, checks run in-process
  - GATE_VALIDATOR_TIMEOUT: the timeout for calls to GATE_VALIDATOR_URL; default: none
  - GATE_WAIT: how long the gate waits on the session before serving a placeholder; default: as long as the request lasts
  - IDENTITY_PROVIDER: "local" (default) keeps accounts in the database, "remote" calls IDENTITY_URL
  - IDENTITY_URL: the base URL of a Better Auth compatible identity service
  - IDENTITY_TIMEOUT: the timeout for calls to IDENTITY_URL; default: none
  - JWT_KEY: the key bearer tokens for the local provider are signed with
  - LOG_LEVEL: the level at which to begin logging; default: INFO; cf. [logger.LogLevel]
  - PORT: the port the application should listen on; default: :3000
  - REDIS_URL: the Redis server sessions are stored in; unset, sessions are stored in cookies
  - REDIS_PASSWORD: the password for authenticating to REDIS_URL
  - SENTRY_DSN: the Sentry project errors and panics are reported to
  - SERVER_IDLE_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for idling between requests when using keep-alives; default: 120s
  - SERVER_READ_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for reading HTTP requests; default: 5s
  - SERVER_WRITE_TIMEOUT: the timeout - as understood by [time.ParseDuration] - for writing HTTP responses; default: 5s
  - SESSION_AUTH_KEY: a hex-encoded key for authenticating cookies; cf. [encoding/hex]
  - SESSION_ENCRYPTION_KEY: a hex-encoded key for encrypting cookies; cf. [encoding/hex]
  - UPSTREAM_URL: the application requests passing the gate are proxied to
*/
package ranger
