package gatekeeper

import (
	"crypto/subtle"
	"os"
	"strings"
)

const (
	AdminEmailEnvVar    = "ADMIN_EMAIL"
	AdminPasswordEnvVar = "ADMIN_PASSWORD"
)

// AdminCredentials is the single email & password pair allowed to use the gated application.
//
// The zero value restricts nothing: every check passes when no pair is configured.
type AdminCredentials struct {
	Email    string
	Password string
}

// LoadAdminCredentials reads AdminCredentials from ADMIN_EMAIL and ADMIN_PASSWORD.
func LoadAdminCredentials() AdminCredentials {
	return AdminCredentials{
		Email:    os.Getenv(AdminEmailEnvVar),
		Password: os.Getenv(AdminPasswordEnvVar),
	}
}

// Restricted asserts whether both halves of the pair are configured.
// Checks of raw credentials only apply when Restricted.
func (ac AdminCredentials) Restricted() bool {
	return ac.Email != "" && ac.Password != ""
}

// RestrictsEmail asserts whether the email half of the pair is configured.
// Checks of an existing session only compare emails, so only need this half.
func (ac AdminCredentials) RestrictsEmail() bool { return ac.Email != "" }

// MatchEmail compares email to the configured email, ignoring case.
func (ac AdminCredentials) MatchEmail(email string) bool {
	return strings.EqualFold(email, ac.Email)
}

// MatchPassword compares password to the configured password exactly.
func (ac AdminCredentials) MatchPassword(password string) bool {
	return subtle.ConstantTimeCompare([]byte(password), []byte(ac.Password)) == 1
}

// String stringifies AdminCredentials without exposing the password.
func (ac AdminCredentials) String() string {
	if ac.Password == "" {
		return "email=" + ac.Email + " password="
	}

	return "email=" + ac.Email + " password=" + LogMaskVal
}
