package gatekeeper

type Key string

const (
	// CurrentSessionKey stashes the *Session the identity provider resolved for a request.
	CurrentSessionKey Key = "CurrentSessionKey"

	// IpAddrKey stashes the IP address of an HTTP request being handled by gatekeeper.
	IpAddrKey Key = "IpAddrKey"

	// RequestIDKey stashes a unique UUID for each HTTP request.
	RequestIDKey Key = "RequestIDKey"

	// SessionKey stashes the cookie session associated with an HTTP request.
	SessionKey Key = "SessionKey"
)

// String formats the stringified key with additional contextual information
func (k Key) String() string {
	return "gatekeeper context key: " + string(k)
}
