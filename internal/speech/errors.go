package speech

import (
	"errors"
	"fmt"
)

// Kind classifies vendor failures for the HTTP boundary.
type Kind int

const (
	// KindTransport covers network failures and unexpected vendor responses.
	KindTransport Kind = iota
	// KindValidation means the vendor rejected the request; Message is safe to show.
	KindValidation
	// KindAuth means the vendor credential is missing or rejected.
	KindAuth
	// KindRateLimit means the vendor quota is exhausted for now.
	KindRateLimit
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindRateLimit:
		return "rate_limit"
	default:
		return "transport"
	}
}

// Error is a classified vendor failure.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// ErrMissingCredential is returned when no vendor API key is configured.
var ErrMissingCredential = &Error{Kind: KindAuth, Message: "TTS API key is not configured"}

// ErrNoText is returned when there is nothing left to synthesize.
var ErrNoText = errors.New("no text to synthesize")

// KindOf reports the classification of err, defaulting to KindTransport.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindTransport
}

// Validation builds a KindValidation error.
func Validation(status int, msg string) *Error {
	return &Error{Kind: KindValidation, Status: status, Message: msg}
}
