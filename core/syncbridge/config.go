package syncbridge

import "time"

// Config holds wait limits with environment variable support.
type Config struct {
	// PointerWaitTimeout bounds WaitForPointerUpdate.
	PointerWaitTimeout time.Duration `env:"SYNC_POINTER_WAIT_TIMEOUT" envDefault:"5s"`

	// DisconnectWaitTimeout bounds WaitForDisconnect. Zero waits until the
	// connection goes away, the caller gives up or the bridge is closed.
	DisconnectWaitTimeout time.Duration `env:"SYNC_DISCONNECT_WAIT_TIMEOUT" envDefault:"0s"`
}

// DefaultPointerWaitTimeout is used when no positive timeout is configured.
const DefaultPointerWaitTimeout = 5 * time.Second

// DefaultConfig returns a Config with the default limits.
func DefaultConfig() Config {
	return Config{PointerWaitTimeout: DefaultPointerWaitTimeout}
}
