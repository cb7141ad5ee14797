package config

import (
	"time"
)

type (
	StreamBuffer struct {
		// Default is the initial size of the buffer a stream accumulates data in.
		Default int
		// Maximal limits the size of a single message. A message that doesn't fit into
		// the buffer of this size results in errors.ErrTooLarge.
		Maximal int
	}

	Stream struct {
		// ReadBufferSize is the size of the buffer in bytes, which is used to read from the
		// source at once.
		ReadBufferSize int
		Buffer         StreamBuffer
	}

	Headers struct {
		// Prealloc is the initial capacity of the headers slice of every message.
		Prealloc int
	}

	NET struct {
		// ReadTimeout controls the maximal lifetime of IDLE connections. If no data was
		// received in this period of time, it'll be closed.
		ReadTimeout time.Duration
	}
)

// Config holds limits and pre-allocations used across the streams.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because zero limits make no sense for any of the fields.
type Config struct {
	Stream  Stream
	Headers Headers
	NET     NET
}

// Default returns default config.
func Default() *Config {
	return &Config{
		Stream: Stream{
			ReadBufferSize: 4 * 1024,
			Buffer: StreamBuffer{
				Default: 8 * 1024,
				// request heads are rarely bigger than 8kb, however long cookies might
				// push them further.
				Maximal: 64 * 1024,
			},
		},
		Headers: Headers{
			Prealloc: 10,
		},
		NET: NET{
			ReadTimeout: 90 * time.Second,
		},
	}
}
