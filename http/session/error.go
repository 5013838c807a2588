package session

import "errors"

var (
	ErrNotValid  = errors.New("not valid")
	ErrNoAccount = errors.New("no account")
)
