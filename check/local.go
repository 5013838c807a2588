package check

import (
	"net/http"

	"github.com/xy-planning-network/gatekeeper"
)

// Local runs the checks in-process.
// It never fails to reach a check, so its errors are always nil.
type Local struct {
	Admin   gatekeeper.AdminCredentials
	Checker SessionChecker
}

// NewLocal constructs a Local checking against the SessionChecker's admin credentials.
func NewLocal(checker SessionChecker) Local {
	return Local{Admin: checker.Admin, Checker: checker}
}

// ValidateCredentials runs Credentials.
func (l Local) ValidateCredentials(r *http.Request, email, password string) (Result, error) {
	return Credentials(l.Admin, email, password), nil
}

// ValidateSession runs the SessionChecker.
func (l Local) ValidateSession(r *http.Request) (Result, error) {
	return l.Checker.Check(r), nil
}
