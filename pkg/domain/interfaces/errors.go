package interfaces

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors shared by all repository backends
var (
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = goerr.New("not found")

	// ErrPairingQueueFull is returned when the pending queue is at capacity
	ErrPairingQueueFull = goerr.New("pairing queue is full")

	// ErrCodeNotFound is returned when no pending request matches the code
	ErrCodeNotFound = goerr.New("no pending request matches the code")

	// ErrCodeExpired is returned when the pairing code outlived its TTL
	ErrCodeExpired = goerr.New("pairing code is expired")

	// ErrCodeCollision is returned when a generated code is already in use
	ErrCodeCollision = goerr.New("pairing code already in use")
)
