package application

import (
	"errors"
	"fmt"
)

// Kind classifies failures so the transport can map them without inspecting messages.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuth
	KindAuthz
	KindConflict
	KindNotFound
	KindStorage
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindAuthz:
		return "authz"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindStorage:
		return "storage"
	case KindInternal:
		return "internal"
	}
	return "unknown"
}

// Error is returned by every service operation that fails. Message is safe to
// show to callers; Err keeps the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func validationErr(msg string, details map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Details: details}
}

func authErr(msg string) *Error { return &Error{Kind: KindAuth, Message: msg} }

func authzErr(msg string) *Error { return &Error{Kind: KindAuthz, Message: msg} }

func conflictErr(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }

func notFoundErr(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

func storageErr(err error) *Error {
	return &Error{Kind: KindStorage, Message: "failed to store media", Err: err}
}

func internalErr(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}
