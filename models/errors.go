package models

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrEmailInUse         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateFavorite  = errors.New("listing already in favorites")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrPaymentFinalized   = errors.New("payment is no longer pending")
	ErrInvalidKind        = errors.New("unknown listing kind")
	ErrInvalidReference   = errors.New("invalid property reference")
	ErrForbidden          = errors.New("forbidden")
)
