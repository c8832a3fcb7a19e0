package server

import "errors"

var (
	ErrMissingAddress       = errors.New("server address is required")
	ErrServerAlreadyRunning = errors.New("server is already running")
	ErrServerNotListening   = errors.New("server is not listening")
	ErrFailedLoadCert       = errors.New("failed to load certificate")
)
