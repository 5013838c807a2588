package logger

import (
	"bytes"
	"encoding"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
)

const maskVal = "xxxxxx"

var (
	_ encoding.TextMarshaler = LogContext{}

	// maskedKeys are never written out from request forms or JSON bodies.
	maskedKeys = []string{"password"}
)

// LogUser is the interface exposing attributes of a user to a LogContext.
type LogUser interface {
	// GetID retrieves the identity provider's identifier for a user.
	GetID() string

	// GetEmail retrieves the email address of the user.
	GetEmail() string
}

// A LogContext provides additional information and configuration
// for a [Logger] method that cannot be tersely captured in the message itself.
type LogContext struct {
	// Caller overrides the caller file and line number with the provided value.
	//
	// Caller is not logged in the text of a LogContext.
	Caller string

	// Data is any information pertinent at the time of the logging event.
	Data map[string]any

	// Error is the error that may or may not have instigated a logging event.
	Error error

	// Request is the *http.Request that may or may not have been open during the logging event.
	Request *http.Request

	// User is the user whose session was active during the logging event.
	User LogUser
}

// MarshalText converts LogContext into a JSON representation,
// eliminating zero-value fields or fields not requiring logging.
//
// Values in LogContext.Data that cannot be represented in JSON will cause an error to be thrown.
//
// MarshalText implements [encoding.TextMarshaler].
func (lc LogContext) MarshalText() ([]byte, error) {
	m := make(map[string]any)
	if lc.Data != nil {
		m["data"] = lc.Data
	}

	if lc.Error != nil {
		m["error"] = lc.Error.Error()
	}

	if lc.Request != nil {
		m["request"] = requestFields(lc.Request)
	}

	if lc.User != nil {
		u := make(map[string]any)
		if id := lc.User.GetID(); id != "" {
			u["id"] = id
		}
		if email := lc.User.GetEmail(); email != "" {
			u["email"] = email
		}
		if len(u) > 0 {
			m["user"] = u
		}
	}

	return json.Marshal(m)
}

// String stringifies LogContext as a JSON representation of it.
func (lc LogContext) String() string {
	b, err := lc.MarshalText()
	if err != nil {
		return fmt.Sprintf(`{"error":%q}`, err)
	}

	return string(b)
}

// requestFields pulls the loggable parts out of r.
// A JSON body is read and put back so handlers can still decode it.
func requestFields(r *http.Request) map[string]any {
	fields := map[string]any{
		"method": r.Method,
		"url":    r.URL.String(),
	}

	if r.Header.Get("Content-Type") == "application/json" && r.Body != nil {
		j := make(map[string]any)
		b := new(bytes.Buffer)
		tee := io.TeeReader(r.Body, b)
		if err := json.NewDecoder(tee).Decode(&j); err == nil {
			for _, k := range maskedKeys {
				if _, ok := j[k]; ok {
					j[k] = maskVal
				}
			}
			fields["json"] = j
		}

		r.Body.Close()
		r.Body = io.NopCloser(b)
	}

	if r.Form != nil {
		form := make(url.Values, len(r.Form))
		for k, v := range r.Form {
			form[k] = v
		}
		for _, k := range maskedKeys {
			if _, ok := form[k]; ok {
				form.Set(k, maskVal)
			}
		}
		fields["form"] = form
	}

	return fields
}

// CurrentCaller retrieves the caller for the caller of CurrentCaller,
// formatted for using as a value in LogContext.Caller.
//
//	myFunc() { 		<- returns this caller
//		func() {
//			CurrentCaller()
//		}()
//	}
func CurrentCaller() string {
	_, file, line, _ := runtime.Caller(2)
	return callSite(file, line)
}
