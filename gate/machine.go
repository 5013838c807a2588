package gate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/check"
)

// MsgDenied is shown after a session fails the admin check and is signed out.
const MsgDenied = "Access denied. Only authorized users can access this app."

var ErrBadTransition = errors.New("bad gate transition")

// A State is where a Machine is in deciding whether to render the gated application.
type State int

const (
	// Pending waits on the identity provider to resolve the session.
	Pending State = iota + 1

	// SignedOut has no authenticated session and shows the login form.
	SignedOut

	// Validating has an authenticated session and waits on the admin check.
	Validating

	// Validated renders the gated application.
	Validated

	// Denied failed the admin check; its session is being signed out.
	Denied
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case SignedOut:
		return "signedOut"
	case Validating:
		return "validating"
	case Validated:
		return "validated"
	case Denied:
		return "denied"
	default:
		return "unmounted"
	}
}

// MarshalText renders s as its name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// A Policy decides what a failure to reach the session check means.
type Policy int

const (
	// FailOpen lets the session through when the check cannot be reached.
	FailOpen Policy = iota

	// FailClosed denies the session when the check cannot be reached.
	FailClosed
)

func (p Policy) String() string {
	if p == FailClosed {
		return "closed"
	}

	return "open"
}

// ParsePolicy reads "open" or "closed", ignoring case.
// An empty string is FailOpen.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "open":
		return FailOpen, nil
	case "closed":
		return FailClosed, nil
	default:
		return FailOpen, fmt.Errorf("%w: transport policy %q", gatekeeper.ErrNotValid, s)
	}
}

// A Machine tracks one agent's way through the gate.
//
// The zero value is unmounted; call Mount before anything else.
// A Machine is not safe for concurrent use.
type Machine struct {
	state      State
	validating bool
	msg        string
	notice     string
}

// newSignedOut returns a Machine at the login form: mounted and SignedOut.
func newSignedOut() *Machine {
	return &Machine{state: SignedOut}
}

// State reports the current State.
func (m *Machine) State() State { return m.state }

// Message is the error shown alongside the login form.
func (m *Machine) Message() string { return m.msg }

// Notice is the success message set when the Machine was granted.
func (m *Machine) Notice() string { return m.notice }

// Renders asserts whether the gated application may render.
func (m *Machine) Renders() bool { return m.state == Validated }

// Mount starts the Machine in Pending.
func (m *Machine) Mount() error {
	if m.state != 0 {
		return m.bad("mount")
	}

	m.state = Pending
	return nil
}

// Resolve moves the Machine on once the session is known.
//
// An absent or anonymous session is SignedOut.
// An authenticated session not yet validated, and not being validated, moves to Validating:
// Resolve then returns true and the caller must run the session check and call Finish.
func (m *Machine) Resolve(s *gatekeeper.Session) (bool, error) {
	switch m.state {
	case Pending, SignedOut, Validated:
	case Validating:
		return false, nil
	default:
		return false, m.bad("resolve")
	}

	if !s.IsAuthenticated() {
		m.state = SignedOut
		return false, nil
	}

	if m.state == Validated || m.validating {
		return false, nil
	}

	m.state = Validating
	m.validating = true
	return true, nil
}

// Finish applies the outcome of the session check.
//
// A check that could not be reached, err != nil, is Validated under FailOpen and Denied under FailClosed.
func (m *Machine) Finish(res check.Result, err error, p Policy) error {
	if m.state != Validating {
		return m.bad("finish")
	}

	m.validating = false
	switch {
	case err != nil && p == FailOpen:
		m.state = Validated
	case err != nil:
		m.state = Denied
		m.msg = MsgDenied
	case res.Valid:
		m.state = Validated
	default:
		m.state = Denied
		m.msg = MsgDenied
	}

	return nil
}

// SignedOut records that a Denied session was signed out.
// The denial message is kept unless msg replaces it.
func (m *Machine) SignedOut(msg string) error {
	if m.state != Denied {
		return m.bad("sign out")
	}

	m.state = SignedOut
	if msg != "" {
		m.msg = msg
	}

	return nil
}

// Grant validates a SignedOut Machine after a successful login.
func (m *Machine) Grant(notice string) error {
	if m.state != SignedOut {
		return m.bad("grant")
	}

	m.state = Validated
	m.msg = ""
	m.notice = notice
	return nil
}

// Reject keeps the Machine SignedOut, showing msg.
func (m *Machine) Reject(msg string) error {
	if m.state != SignedOut && m.state != Denied {
		return m.bad("reject")
	}

	m.state = SignedOut
	m.msg = msg
	return nil
}

func (m *Machine) bad(event string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrBadTransition, event, m.state)
}
