package auth

import "errors"

var (
	ErrExpired    = errors.New("expired")
	ErrNoToken    = errors.New("no token")
	ErrNotValid   = errors.New("not valid")
	ErrUnexpected = errors.New("unexpected")
)
