package req

import (
	"fmt"
	"strings"

	"github.com/xy-planning-network/gatekeeper"
)

// A FieldError is one submitted field breaking one of its rules.
//
// Msg is written for the person filling in the form.
type FieldError struct {
	Field string
	Rule  string
	Msg   string
}

// FieldErrors are every rule a submission broke, in field order.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	msgs := make([]string, 0, len(fe))
	for _, e := range fe {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field, e.Rule))
	}

	return "invalid fields: " + strings.Join(msgs, ", ")
}

func (FieldErrors) Unwrap() error { return gatekeeper.ErrNotValid }

// Messages maps each field to the first message reported for it.
func (fe FieldErrors) Messages() map[string]string {
	if len(fe) == 0 {
		return nil
	}

	out := make(map[string]string, len(fe))
	for _, e := range fe {
		if _, ok := out[e.Field]; !ok {
			out[e.Field] = e.Msg
		}
	}

	return out
}
