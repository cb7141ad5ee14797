// Package stream drives the request parser over a byte source. The source is read into
// a growable buffer, and the parser is re-run from the beginning of the current message
// each time it reports the buffered data isn't enough.
//
// A typical loop looks like this:
//
//	for {
//		msg, err := s.Next()
//		switch {
//		case err == nil:
//			// use msg
//		case errors.Is(err, errors.ErrRetry):
//		case errors.Is(err, errors.ErrEndOfInput):
//			return nil
//		default:
//			return err
//		}
//	}
//
// which is exactly what Each does.
package stream

import (
	"context"
	"io"

	"github.com/indigo-web/reqscan/config"
	"github.com/indigo-web/reqscan/errors"
	"github.com/indigo-web/reqscan/http"
	"github.com/indigo-web/reqscan/internal/buffer"
	"github.com/indigo-web/reqscan/internal/source"
	"github.com/indigo-web/reqscan/internal/transport"
	"github.com/indigo-web/reqscan/internal/transport/http1"
	pkgerrors "github.com/pkg/errors"
)

type Stream struct {
	client source.Client
	parser transport.Parser
	window *buffer.Window
	offset int64
	seq    int
	eof    bool
	// deferred is a read error that came along with data not fitting into the buffer
	deferred error
}

func New(client source.Client, cfg *config.Config) *Stream {
	return &Stream{
		client: client,
		parser: http1.NewParser(cfg),
		window: buffer.NewWindow(cfg.Stream.Buffer.Default, cfg.Stream.Buffer.Maximal),
	}
}

// Next parses the next message. The spans of the returned message are borrowed from the
// stream's buffer and stay valid only until the next call, use http.Message.Detach to
// keep them longer.
//
// Returned errors are:
//   - errors.ErrRetry, if more data was needed. It was already read, so just call Next again;
//   - errors.ErrEndOfInput, if the source is exhausted and there's no data left;
//   - *errors.MessageError, wrapping either *errors.GrammarError or errors.ErrTooLarge;
//   - an error returned by the source, other than io.EOF.
func (s *Stream) Next() (http.Message, error) {
	if s.window.Len() == 0 && !s.eof {
		if err := s.fill(); err != nil {
			return http.Message{}, err
		}
	}

	state, msg, n, err := s.parser.Parse(s.window.Bytes(), s.eof)
	switch state {
	case transport.Completed:
		s.window.Consume(n)
		s.offset += int64(n)
		s.seq++

		return msg, nil
	case transport.Retry:
		if s.eof {
			return http.Message{}, s.fail(errors.ErrTruncated)
		}

		if err = s.fill(); err != nil {
			return http.Message{}, err
		}

		return http.Message{}, errors.ErrRetry
	case transport.EndOfInput:
		return http.Message{}, errors.ErrEndOfInput
	default:
		return http.Message{}, s.fail(err)
	}
}

// Each calls fn for every message in the stream, until the end of input or an error. A
// non-nil error returned by fn stops the iteration and is returned as is. The number
// of successfully parsed messages is returned. The context is checked between the parse
// attempts.
func (s *Stream) Each(ctx context.Context, fn func(seq int, msg http.Message) error) (n int, err error) {
	for {
		if err = ctx.Err(); err != nil {
			return n, err
		}

		seq := s.seq
		var msg http.Message
		msg, err = s.Next()
		switch {
		case err == nil:
			n++
			if fn != nil {
				if err = fn(seq, msg); err != nil {
					return n, err
				}
			}
		case errors.Is(err, errors.ErrRetry):
		case errors.Is(err, errors.ErrEndOfInput):
			return n, nil
		default:
			return n, err
		}
	}
}

// Count consumes the whole stream, returning the number of messages in it.
func (s *Stream) Count(ctx context.Context) (int, error) {
	return s.Each(ctx, nil)
}

// Seq returns the sequence number of the message to be parsed next.
func (s *Stream) Seq() int {
	return s.seq
}

// Offset returns the absolute offset of the message to be parsed next.
func (s *Stream) Offset() int64 {
	return s.offset
}

func (s *Stream) Close() error {
	return s.client.Close()
}

// fill reads once from the source. Whatever doesn't fit into the buffer is given back
// to the source, and the error returned along with it is held until that's read again.
func (s *Stream) fill() error {
	if s.window.Full() {
		return s.fail(errors.ErrTooLarge)
	}

	data, err := s.client.Read()
	if err == nil {
		err, s.deferred = s.deferred, nil
	}

	n := s.window.Append(data)
	if n < len(data) {
		s.client.Unread(data[n:])
		// reported once the rest is consumed
		s.deferred = err
		return nil
	}

	switch {
	case err == nil:
	case errors.Is(err, io.EOF):
		s.eof = true
	default:
		return pkgerrors.Wrapf(err, "read message %d", s.seq)
	}

	return nil
}

func (s *Stream) fail(err error) error {
	return &errors.MessageError{
		Err:    err,
		Offset: s.offset,
		Seq:    s.seq,
	}
}
