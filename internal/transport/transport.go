package transport

import (
	"github.com/indigo-web/reqscan/http"
)

type Parser interface {
	// Parse tries to parse a single message from the beginning of data. eof tells
	// whether data holds everything that will ever be received.
	Parse(data []byte, eof bool) (state State, msg http.Message, n int, err error)
}

// State represents the outcome of a single parse attempt
type State uint8

const (
	// Completed means a whole message was parsed
	Completed State = iota + 1
	// Retry means the data ended in the middle of a message. The caller must extend the
	// data and parse the same message from its very beginning again
	Retry
	// EndOfInput means there's no data left at a message boundary and there won't be more
	EndOfInput
	// Error means the data violates the grammar
	Error
)

func (s State) String() string {
	switch s {
	case Completed:
		return "completed"
	case Retry:
		return "retry"
	case EndOfInput:
		return "end of input"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}
