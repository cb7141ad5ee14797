package errors

import (
	"errors"
	"fmt"

	"github.com/indigo-web/reqscan/internal/lexical"
)

var (
	// ErrIncomplete is returned by grammar rules when they ran off the end of a buffer
	// which may still be extended. It never leaves the transport layer.
	ErrIncomplete = errors.New("incomplete input")

	ErrRetry      = errors.New("not enough data buffered, retry")
	ErrEndOfInput = errors.New("end of input")
	ErrTruncated  = errors.New("input ended in the middle of a message")
	ErrTooLarge   = errors.New("message exceeds the maximal buffer size")

	ErrShutdown = errors.New("graceful shutdown")
)

// GrammarError reports a byte sequence that doesn't match the expected grammar. Pos is
// relative to the beginning of the message being parsed.
type GrammarError struct {
	Rule     string
	Expected string
	Pos      int
	Found    byte
	// EOF is set when the input is final and the rule ran out of bytes. Found is
	// meaningless in this case.
	EOF bool
}

func (g *GrammarError) Error() string {
	found := "end of input"
	if !g.EOF {
		found = lexical.Printable(g.Found)
	}

	return fmt.Sprintf("%s: expected %s at %d, found %s", g.Rule, g.Expected, g.Pos, found)
}

// Is makes a grammar error caused by the end of the input match ErrTruncated.
func (g *GrammarError) Is(target error) bool {
	return g.EOF && target == ErrTruncated
}

// MessageError binds an error to the message it happened in. Seq is the zero-based
// sequence number of the message within the stream, Offset is the absolute stream
// offset the message begins at.
type MessageError struct {
	Err    error
	Offset int64
	Seq    int
}

func (m *MessageError) Error() string {
	return fmt.Sprintf("message %d (offset %d): %s", m.Seq, m.Offset, m.Err)
}

func (m *MessageError) Unwrap() error {
	return m.Err
}

// Is and As are re-exported, so importing this package under its usual name doesn't
// shadow the standard library ones.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}
