package gate

import (
	"context"
	"errors"
	"fmt"

	"github.com/xy-planning-network/gatekeeper"
	"github.com/xy-planning-network/gatekeeper/identity"
)

// Messages a login attempt ends with.
const (
	MsgAccountCreated         = "Account created successfully!"
	MsgAccountCreatedSignedIn = "Account created and signed in!"
	MsgAuthFailed             = "Authentication failed"
	MsgSignInFailed           = "Sign in failed"
	MsgSignedIn               = "Signed in successfully!"
	MsgSignUpFirst            = "Sign in failed. Please try signing up first."
)

var ErrBadPlan = errors.New("bad plan")

// An Op is a call a Plan makes to the identity provider.
type Op int

const (
	OpSignIn Op = iota + 1
	OpSignUp
)

func (o Op) String() string {
	switch o {
	case OpSignIn:
		return "signin"
	case OpSignUp:
		return "signup"
	default:
		return "unknown"
	}
}

// A NameSource picks the name an account is signed up with.
type NameSource int

const (
	// NameEntered uses the entered name, falling back to the email's local part.
	NameEntered NameSource = iota

	// NameLocalPart always uses the email's local part.
	NameLocalPart
)

// Name picks the name for la.
func (ns NameSource) Name(la gatekeeper.LoginAttempt) string {
	if ns == NameLocalPart {
		return la.LocalPart()
	}

	return la.DerivedName()
}

// An Action is one call to the identity provider.
type Action struct {
	Op   Op
	Name NameSource
}

func (a Action) String() string { return a.Op.String() }

type transitionKind int

const (
	toNext transitionKind = iota + 1
	toGrant
	toDeny
)

// A Transition is where a Plan goes after a Step.
type Transition struct {
	kind transitionKind
	next int
	msg  string
}

// Next continues with the Step at index i.
func Next(i int) Transition { return Transition{kind: toNext, next: i} }

// Grant ends the Plan successfully with notice.
func Grant(notice string) Transition { return Transition{kind: toGrant, msg: notice} }

// Deny ends the Plan showing msg.
// An empty msg shows the identity provider's message for the failure,
// falling back to MsgSignInFailed.
func Deny(msg string) Transition { return Transition{kind: toDeny, msg: msg} }

// A Step runs an Action and transitions on its outcome.
type Step struct {
	Action    Action
	OnSuccess Transition
	OnFailure Transition
}

// A Plan is an ordered fallback of identity provider calls.
type Plan []Step

// A Verdict is how a Plan ended.
type Verdict struct {
	Granted bool

	// Notice is set when Granted.
	Notice string

	// Msg is set when not Granted.
	Msg string

	// Err is the failure that ended the Plan, if any.
	Err error

	// Ran lists the Actions run, in order.
	Ran []Action
}

var (
	signIn       = Action{Op: OpSignIn}
	signUp       = Action{Op: OpSignUp, Name: NameEntered}
	signUpByMail = Action{Op: OpSignUp, Name: NameLocalPart}
)

// SignInPlan signs in, creating the account when signing in fails.
var SignInPlan = Plan{
	{Action: signIn, OnSuccess: Grant(MsgSignedIn), OnFailure: Next(1)},
	{Action: signUpByMail, OnSuccess: Next(2), OnFailure: Deny(MsgSignUpFirst)},
	{Action: signIn, OnSuccess: Grant(MsgAccountCreatedSignedIn), OnFailure: Deny("")},
}

// SignUpPlan creates the account, signing in when it already exists.
var SignUpPlan = Plan{
	{Action: signUp, OnSuccess: Next(2), OnFailure: Next(1)},
	{Action: signIn, OnSuccess: Grant(MsgSignedIn), OnFailure: Deny("")},
	{Action: signIn, OnSuccess: Grant(MsgAccountCreated), OnFailure: Deny("")},
}

// PlanFor returns the Plan for the login form's Mode.
func PlanFor(mode gatekeeper.Mode) Plan {
	if mode == gatekeeper.SignUp {
		return SignUpPlan
	}

	return SignInPlan
}

// Valid asserts every Step transitions, and every Next moves forward to a Step that exists.
func (p Plan) Valid() error {
	if len(p) == 0 {
		return fmt.Errorf("%w: no steps", ErrBadPlan)
	}

	for i, s := range p {
		for _, t := range []Transition{s.OnSuccess, s.OnFailure} {
			switch t.kind {
			case toGrant, toDeny:
			case toNext:
				if t.next <= i || t.next >= len(p) {
					return fmt.Errorf("%w: step %d cannot go to %d", ErrBadPlan, i, t.next)
				}
			default:
				return fmt.Errorf("%w: step %d has no transition", ErrBadPlan, i)
			}
		}
	}

	return nil
}

// Run runs the Plan, calling exec for each Action.
//
// A failure wrapping identity.ErrUnavailable, or ctx ending, stops the Plan with MsgAuthFailed:
// falling back only makes sense when the provider answered.
func (p Plan) Run(ctx context.Context, exec func(Action) error) Verdict {
	if err := p.Valid(); err != nil {
		return Verdict{Msg: MsgAuthFailed, Err: err}
	}

	var ran []Action
	for i := 0; ; {
		if err := ctx.Err(); err != nil {
			return Verdict{Msg: MsgAuthFailed, Err: err, Ran: ran}
		}

		step := p[i]
		err := exec(step.Action)
		ran = append(ran, step.Action)
		if errors.Is(err, identity.ErrUnavailable) {
			return Verdict{Msg: MsgAuthFailed, Err: err, Ran: ran}
		}

		t := step.OnSuccess
		if err != nil {
			t = step.OnFailure
		}

		switch t.kind {
		case toNext:
			i = t.next
		case toGrant:
			return Verdict{Granted: true, Notice: t.msg, Ran: ran}
		default:
			return Verdict{Msg: denial(t.msg, err), Err: err, Ran: ran}
		}
	}
}

func denial(msg string, err error) string {
	if msg != "" {
		return msg
	}

	if msg = identity.Message(err); msg != "" {
		return msg
	}

	return MsgSignInFailed
}
