package workflow

import (
	"errors"
)

var (
	// ErrUnknownDocument is returned for operations on a document id the
	// session does not hold (never submitted, or already removed).
	ErrUnknownDocument = errors.New("unknown document")

	// ErrInvalidTransition is returned when an operation is not legal for
	// the document's current status.
	ErrInvalidTransition = errors.New("invalid document status transition")
)
