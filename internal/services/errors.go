package services

import (
	"errors"
	"fmt"
)

// FetchErrorKind classifies marketplace fetch failures.
type FetchErrorKind string

const (
	// FetchTransient covers network errors, timeouts and 5xx responses.
	// Retried with bounded exponential backoff inside the adapter.
	FetchTransient FetchErrorKind = "transient"
	// FetchBlocked covers anti-automation responses and unparseable result
	// pages. Never retried within the same cycle; the card simply gets no
	// data for that query kind.
	FetchBlocked FetchErrorKind = "blocked"
)

// FetchError is a typed marketplace failure.
type FetchError struct {
	Kind FetchErrorKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("marketplace fetch %s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsBlocked reports whether err is a blocked-kind fetch failure.
func IsBlocked(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == FetchBlocked
}

// IsTransient reports whether err is a transient-kind fetch failure.
func IsTransient(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Kind == FetchTransient
}

// ErrRefreshRunning is returned by TriggerRefresh while a run is in progress.
var ErrRefreshRunning = errors.New("price refresh already running")

// ErrStorageUnavailable marks a run-level storage failure. It transitions the
// refresh job to the failed state; valuations written before the failure stay
// persisted.
var ErrStorageUnavailable = errors.New("storage unavailable")
