package service

import "errors"

var (
	// ErrValidation is returned when a search carries no identifying field
	ErrValidation = errors.New("at least one field required")

	// ErrMemberNotFound is returned when neither the membership table nor any
	// migrated source matches
	ErrMemberNotFound = errors.New("member not found")
)
