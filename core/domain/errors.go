package domain

import "errors"

var (
	// Registry errors
	ErrUnknownConnection   = errors.New("unknown connection")
	ErrDuplicateConnection = errors.New("duplicate connection")
	ErrStaleEvent          = errors.New("pointer event is not newer than the last accepted one")

	// Synchronization errors
	ErrDuplicateWait = errors.New("wait already armed for this connection")
	ErrWaitTimeout   = errors.New("wait timed out")
	ErrServerStopped = errors.New("server stopped")

	// Channel errors
	ErrChannelFull   = errors.New("channel send queue is full")
	ErrChannelClosed = errors.New("channel is closed")
)
