package transport

import "time"

// Config holds WebSocket settings with environment variable support.
type Config struct {
	ReadBufferSize  int           `env:"WS_READ_BUFFER" envDefault:"1024"`
	WriteBufferSize int           `env:"WS_WRITE_BUFFER" envDefault:"1024"`
	SendQueueSize   int           `env:"WS_SEND_QUEUE" envDefault:"256"`
	MaxMessageSize  int64         `env:"WS_MAX_MESSAGE_SIZE" envDefault:"4096"`
	WriteWait       time.Duration `env:"WS_WRITE_WAIT" envDefault:"10s"`
	PongWait        time.Duration `env:"WS_PONG_WAIT" envDefault:"60s"`
	AllowAnyOrigin  bool          `env:"WS_ALLOW_ANY_ORIGIN" envDefault:"false"`
}

// DefaultConfig returns a Config matching the env defaults.
func DefaultConfig() Config {
	return Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendQueueSize:   256,
		MaxMessageSize:  4096,
		WriteWait:       10 * time.Second,
		PongWait:        60 * time.Second,
	}
}

// PingPeriod is how often the write pump pings the peer. Must be less than PongWait.
func (c Config) PingPeriod() time.Duration {
	return (c.PongWait * 9) / 10
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.ReadBufferSize <= 0 {
		c.ReadBufferSize = def.ReadBufferSize
	}
	if c.WriteBufferSize <= 0 {
		c.WriteBufferSize = def.WriteBufferSize
	}
	if c.SendQueueSize <= 0 {
		c.SendQueueSize = def.SendQueueSize
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = def.MaxMessageSize
	}
	if c.WriteWait <= 0 {
		c.WriteWait = def.WriteWait
	}
	if c.PongWait <= 0 {
		c.PongWait = def.PongWait
	}
	return c
}
