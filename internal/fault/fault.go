// oreon/lumen · watchthelight <wtl>

// Package fault classifies errors so callers can apply a uniform
// absorb-or-surface policy instead of a catch-all handler.
package fault

import (
	"errors"
	"fmt"
)

// Kind identifies a failure class. Only Apply and Usage are surfaced to the
// user; every other kind degrades to a cache or default value and is logged.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfig       // missing or invalid API key
	KindNetwork      // timeout or HTTP failure on a provider fetch
	KindCache        // unreadable or corrupt cache file
	KindState        // unreadable or corrupt state file
	KindApply        // display utility missing or failed to launch
	KindUsage        // bad CLI input
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindNetwork:
		return "network"
	case KindCache:
		return "cache"
	case KindState:
		return "state"
	case KindApply:
		return "apply"
	case KindUsage:
		return "usage"
	default:
		return "unknown"
	}
}

// Error wraps an underlying error with a Kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New wraps err with the given kind. Returns nil when err is nil.
func New(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

// Newf is New with fmt.Errorf formatting.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the Kind of err, or KindUnknown when it carries none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// Surfaced reports whether err must be shown to the user rather than
// absorbed with a fallback.
func Surfaced(err error) bool {
	switch KindOf(err) {
	case KindApply, KindUsage:
		return true
	default:
		return false
	}
}
