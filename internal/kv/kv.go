// Package kv is the durable key-value adapter used by the recent and
// favorite lists. A Store is synchronous, string-keyed, and bounded: writes
// may fail once the medium's capacity is exhausted or when it is disabled.
package kv

import (
	"context"
	"errors"
	"fmt"
)

// Store is the contract over a persistent string-keyed medium.
type Store interface {
	// Get returns the value stored under key. ok is false when the key is
	// absent. A non-nil error means the medium could not be read.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key. Failures are reported as *WriteError.
	Set(ctx context.Context, key, value string) error

	Close() error
}

// Kind distinguishes why a write was rejected.
type Kind int

const (
	// KindUnavailable means the medium is disabled or unreachable.
	KindUnavailable Kind = iota
	// KindQuotaExceeded means the medium is full.
	KindQuotaExceeded
)

func (k Kind) String() string {
	switch k {
	case KindQuotaExceeded:
		return "quota-exceeded"
	default:
		return "store-unavailable"
	}
}

var (
	ErrQuotaExceeded = errors.New("kv: quota exceeded")
	ErrUnavailable   = errors.New("kv: store unavailable")
)

// WriteError reports a rejected Set.
type WriteError struct {
	Key  string
	Kind Kind
	Err  error // underlying backend error, may be nil
}

func (e *WriteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("kv: write %q: %s: %v", e.Key, e.Kind, e.Err)
	}
	return fmt.Sprintf("kv: write %q: %s", e.Key, e.Kind)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrQuotaExceeded) and errors.Is(err, ErrUnavailable)
// match on Kind.
func (e *WriteError) Is(target error) bool {
	switch target {
	case ErrQuotaExceeded:
		return e.Kind == KindQuotaExceeded
	case ErrUnavailable:
		return e.Kind == KindUnavailable
	}
	return false
}

// KindOf extracts the write failure kind from err.
func KindOf(err error) (Kind, bool) {
	var we *WriteError
	if errors.As(err, &we) {
		return we.Kind, true
	}
	return 0, false
}

func quotaError(key string, err error) error {
	return &WriteError{Key: key, Kind: KindQuotaExceeded, Err: err}
}

func unavailableError(key string, err error) error {
	return &WriteError{Key: key, Kind: KindUnavailable, Err: err}
}
