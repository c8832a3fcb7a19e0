package realtime

import "errors"

var (
	ErrNotStarted     = errors.New("stop called before the server started")
	ErrAlreadyStarted = errors.New("server already started")
)
