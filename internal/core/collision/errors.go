package collision

import "errors"

var (
	// Solver errors

	ErrInvalidOperation = errors.New("invalid operation")
	ErrDisposed         = errors.New("collider is disposed")

	// World errors

	ErrUnknownCollider = errors.New("collider not found")
	ErrWorldClosed     = errors.New("world is closed")
	ErrInvalidConfig   = errors.New("invalid config")
)
