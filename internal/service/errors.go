package service

import "errors"

var (
	// ErrGraphUnavailable is returned when the catalog does not build a graph
	ErrGraphUnavailable = errors.New("graph unavailable")
	// ErrSessionNotFound is returned for an unknown session id
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionClosed is returned for requests to a session that has shut down
	ErrSessionClosed = errors.New("session closed")
	// ErrTooManySessions is returned when the session limit is reached
	ErrTooManySessions = errors.New("too many sessions")
)
