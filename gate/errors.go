package gate

import "errors"

var (
	// ErrUnauthenticated is returned when the subject is the zero value.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is returned when the subject lacks the permission or a
	// resource policy rejects it.
	ErrForbidden = errors.New("forbidden")
)
