package req

import (
	"errors"
	"fmt"

	"github.com/gorilla/schema"
	"github.com/xy-planning-network/gatekeeper"
)

func newValuesDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)

	return dec
}

// translateDecoderError converts an error from *schema.Decoder into FieldErrors,
// or into ErrBadFormat when the error names no field.
func translateDecoderError(err error) error {
	var multi schema.MultiError
	if !errors.As(err, &multi) {
		return fmt.Errorf("%w: %s", gatekeeper.ErrBadFormat, err)
	}

	var fe FieldErrors
	for key, e := range multi {
		var conv schema.ConversionError
		if !errors.As(e, &conv) {
			return fmt.Errorf("%w: %s: %s", gatekeeper.ErrBadFormat, key, e)
		}

		fe = append(fe, FieldError{
			Field: conv.Key,
			Rule:  "type=" + conv.Type.String(),
			Msg:   conv.Key + " has the wrong type.",
		})
	}

	return fe
}
