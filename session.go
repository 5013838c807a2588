package gatekeeper

import "strings"

const (
	// AnonymousName is the name identity providers give guest users.
	AnonymousName = "Anonymous"

	// TempEmailPrefix starts the placeholder email identity providers give guest users.
	TempEmailPrefix = "temp-"
)

// A Session is what an identity provider knows about the agent making a request.
//
// gatekeeper only reads a Session; identity providers own creating and ending them.
type Session struct {
	User SessionUser `json:"user"`
}

// A SessionUser is the user a Session belongs to.
type SessionUser struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GetEmail exposes the email to a logger.LogContext.
func (u SessionUser) GetEmail() string { return u.Email }

// GetID exposes the ID to a logger.LogContext.
func (u SessionUser) GetID() string { return u.ID }

// HasEmail asserts whether s is set and has a user with an email.
func (s *Session) HasEmail() bool {
	return s != nil && s.User.Email != ""
}

// IsAuthenticated asserts whether s belongs to a real user instead of a guest.
//
// A nil Session, an anonymously named user and a user with a "temp-" email
// are all not authenticated.
func (s *Session) IsAuthenticated() bool {
	if !s.HasEmail() {
		return false
	}

	if s.User.Name == AnonymousName {
		return false
	}

	return !strings.HasPrefix(s.User.Email, TempEmailPrefix)
}
