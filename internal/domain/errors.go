package domain

import "errors"

var (
	// ErrNotFound is returned when a node id does not resolve
	ErrNotFound = errors.New("not found")
	// ErrInvalidEdge is returned when an edge references a missing node
	ErrInvalidEdge = errors.New("invalid edge")
	// ErrInvalidNode is returned for empty or duplicate node ids
	ErrInvalidNode = errors.New("invalid node")
)
