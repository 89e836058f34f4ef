package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies where in a run an error happened
type Kind string

const (
	KindConfig  Kind = "config"
	KindAuth    Kind = "auth"
	KindFetch   Kind = "fetch"
	KindForward Kind = "forward"
	KindUnsave  Kind = "unsave"
)

// Error is the error type returned by the Reddit and Instapaper clients and the processor
type Error struct {
	Kind    Kind
	Op      string // e.g. "reddit.token", "instapaper.add"
	ItemID  string // saved item the error belongs to, if any
	Code    int    // HTTP status code, 0 for transport errors
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}

	switch {
	case e.ItemID != "" && e.Code != 0:
		return fmt.Sprintf("%s error in %s (item %s, code %d): %s", e.Kind, e.Op, e.ItemID, e.Code, msg)
	case e.ItemID != "":
		return fmt.Sprintf("%s error in %s (item %s): %s", e.Kind, e.Op, e.ItemID, msg)
	case e.Code != 0:
		return fmt.Sprintf("%s error in %s (code %d): %s", e.Kind, e.Op, e.Code, msg)
	default:
		return fmt.Sprintf("%s error in %s: %s", e.Kind, e.Op, msg)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an *Error without an item
func New(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// WithItem returns a copy of e tagged with the item id
func (e *Error) WithItem(id string) *Error {
	cp := *e
	cp.ItemID = id
	return &cp
}

// KindOf returns the Kind of err, or "" if err is not an *Error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsAuthStatus reports whether an HTTP status code means the credentials were rejected
func IsAuthStatus(statusCode int) bool {
	return statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden
}

// FromStatus maps a non-2xx response to an *Error. Auth failures on any
// endpoint are reported as KindAuth; everything else keeps the caller's kind.
func FromStatus(kind Kind, op string, statusCode int, body string) *Error {
	msg := http.StatusText(statusCode)
	if msg == "" {
		msg = "unexpected status"
	}
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	if body != "" {
		msg = msg + ": " + body
	}
	if IsAuthStatus(statusCode) && kind != KindForward && kind != KindUnsave {
		kind = KindAuth
	}
	return &Error{Kind: kind, Op: op, Code: statusCode, Message: msg}
}

// Is is errors.Is
func Is(err, target error) bool {
	return errors.Is(err, target)
}
