package req

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/gorilla/schema"
	"github.com/xy-planning-network/gatekeeper"
)

// maxFormMemory bounds how much of a multipart form ParseForm keeps in memory.
const maxFormMemory = 1 << 20

type Parser struct {
	valuesDecoder *schema.Decoder
	validator
}

func NewParser() *Parser {
	return &Parser{
		valuesDecoder: newValuesDecoder(),
		validator:     newValidator(),
	}
}

// Parse decodes the payload of r into a pointer to a struct.
// Form posts are decoded as forms; every other body is decoded as JSON,
// whatever its Content-Type says.
func (p *Parser) Parse(r *http.Request, structPtr any) error {
	if IsForm(r) {
		return p.ParseForm(r, structPtr)
	}

	return p.ParseBody(r.Body, structPtr)
}

// ParseBody decodes into a pointer to a struct the JSON data in *http.Request.Body.
// If successful, ParseBody runs validation against the contents,
// returning FieldErrors if the data fails validation rules.
//
// ParseBody reads the entire r.Body and can't be read from again.
// Use a [io.TeeReader] if r.Body needs to be reused after calling ParseBody.
func (p *Parser) ParseBody(body io.Reader, structPtr any) error {
	if body == nil {
		return fmt.Errorf("gatekeeper/http/req: %w: no request body", gatekeeper.ErrBadFormat)
	}

	var ourFault *json.InvalidUnmarshalError
	err := json.NewDecoder(body).Decode(structPtr)
	if errors.As(err, &ourFault) {
		return fmt.Errorf("gatekeeper/http/req: %w: ParseBody called with non-pointer: %s", gatekeeper.ErrBadAny, err)
	}

	if err != nil {
		return fmt.Errorf("gatekeeper/http/req: %w: failed decoding request body: %s", gatekeeper.ErrBadFormat, err)
	}

	if err := p.validate(structPtr); err != nil {
		return fmt.Errorf("gatekeeper/http/req: %T failed validation: %w", structPtr, err)
	}

	return nil
}

// ParseForm decodes into a pointer to a struct the form data posted in r.
// If successful, ParseForm runs validation against the contents,
// returning FieldErrors if the data fails validation rules.
func (p *Parser) ParseForm(r *http.Request, structPtr any) error {
	var err error
	if ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type")); ct == "multipart/form-data" {
		err = r.ParseMultipartForm(maxFormMemory)
	} else {
		err = r.ParseForm()
	}

	if err != nil {
		return fmt.Errorf("gatekeeper/http/req: %w: failed parsing form: %s", gatekeeper.ErrBadFormat, err)
	}

	if err := p.decodeValues(r.PostForm, structPtr); err != nil {
		return fmt.Errorf("gatekeeper/http/req: failed decoding form: %w", err)
	}

	if err := p.validate(structPtr); err != nil {
		return fmt.Errorf("gatekeeper/http/req: %T failed validation: %w", structPtr, err)
	}

	return nil
}

func (p *Parser) decodeValues(vals url.Values, structPtr any) error {
	rv := reflect.ValueOf(structPtr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: expected pointer to struct, got %T", gatekeeper.ErrBadAny, structPtr)
	}

	if err := p.valuesDecoder.Decode(structPtr, vals); err != nil {
		return translateDecoderError(err)
	}

	return nil
}

// IsJSON reports whether r declares a JSON payload.
func IsJSON(r *http.Request) bool {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return ct == "application/json"
}

// IsForm reports whether r declares a urlencoded or multipart form payload.
func IsForm(r *http.Request) bool {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return ct == "application/x-www-form-urlencoded" || ct == "multipart/form-data"
}

// WantsJSON reports whether the client asked for a JSON response,
// either through the "Accept" header or by sending JSON.
func WantsJSON(r *http.Request) bool {
	for _, v := range r.Header.Values("Accept") {
		for _, part := range splitMediaTypes(v) {
			if part == "application/json" {
				return true
			}
		}
	}

	return IsJSON(r)
}

func splitMediaTypes(header string) []string {
	var out []string
	for _, raw := range strings.Split(header, ",") {
		mt, _, err := mime.ParseMediaType(raw)
		if err != nil {
			continue
		}

		out = append(out, mt)
	}

	return out
}
