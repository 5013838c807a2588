package check

import (
	"net/http"

	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/identity"
	"github.com/xy-planning-network/gatekeeper/logger"
)

// Messages a failed check carries.
const (
	MsgAccessDenied       = "Access denied"
	MsgInvalidCredentials = "Access denied. Invalid credentials."
	MsgNotAuthenticated   = "Not authenticated"
	MsgValidationFailed   = "Validation failed"
)

// A Result is the outcome of checking an agent against the admin credentials.
type Result struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// Valid is a passing Result.
func Valid() Result { return Result{Valid: true} }

// Invalid is a failing Result carrying msg.
func Invalid(msg string) Result { return Result{Error: msg} }

// Credentials checks an email and password against the admin credentials.
//
// When the admin credentials are not fully configured, every email and password passes.
// Otherwise email must match ignoring case and password must match exactly.
func Credentials(admin gatekeeper.AdminCredentials, email, password string) Result {
	if !admin.Restricted() {
		return Valid()
	}

	// NOTE: both comparisons always run
	emailOK := admin.MatchEmail(email)
	passwordOK := admin.MatchPassword(password)
	if emailOK && passwordOK {
		return Valid()
	}

	return Invalid(MsgInvalidCredentials)
}

// A SessionChecker checks the email of the session a request carries against the admin email.
type SessionChecker struct {
	Admin    gatekeeper.AdminCredentials
	Logger   logger.Logger
	Provider identity.Provider
}

// Check asks the Provider for the request's session and compares its email to the admin email.
//
// A request without a session, or whose session has no email, never passes,
// even when no admin email is configured.
func (sc SessionChecker) Check(r *http.Request) Result {
	s, err := sc.Provider.GetSession(r)
	if err != nil {
		if sc.Logger != nil {
			sc.Logger.Error("could not get session to check", &logger.LogContext{Request: r, Error: err})
		}

		return Invalid(MsgValidationFailed)
	}

	if !s.HasEmail() {
		return Invalid(MsgNotAuthenticated)
	}

	if !sc.Admin.RestrictsEmail() || sc.Admin.MatchEmail(s.User.Email) {
		return Valid()
	}

	return Invalid(MsgAccessDenied)
}
