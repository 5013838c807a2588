package session

import (
	"net/http"
)

const (
	// Default Flash Class
	FlashError   = "error"
	FlashInfo    = "info"
	FlashSuccess = "success"
	FlashWarning = "warning"

	DefaultErrMsg = "Uh oh! We've run into an issue."
)

// ContactUsErr is a format string for an error message pointing users to an email address.
var ContactUsErr = DefaultErrMsg + " Please contact us at %s if the issue persists."

type FlashSessionable interface {
	Flashes(w http.ResponseWriter, r *http.Request) []Flash
	SetFlash(w http.ResponseWriter, r *http.Request, flash Flash) error
}

// A Flash is a message shown once, on the response after the one that set it.
type Flash struct {
	Class string `json:"class"`
	Msg   string `json:"msg"`
}
