package stream

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/reqscan/config"
	"github.com/indigo-web/reqscan/errors"
	"github.com/indigo-web/reqscan/http"
	"github.com/indigo-web/reqscan/internal/source"
	"github.com/indigo-web/reqscan/internal/source/dummy"
	"github.com/indigo-web/utils/unreader"
	"github.com/stretchr/testify/require"
)

const pipelined = "GET /robot.txt HTTP/1.1\r\n" +
	"Host: localhost\r\n" +
	"Accept: text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8\r\n\r\n" +
	"POST /upload HTTP/1.0\n" +
	"Content-Type: text/plain\n" +
	" folded\n\n" +
	"HEAD / HTTP/1.1\r\n\r\n"

type wantedMessage struct {
	Method, URI, Version string
	Headers              map[string][]string
}

var pipelinedMessages = []wantedMessage{
	{
		Method: "GET", URI: "/robot.txt", Version: "1.1",
		Headers: map[string][]string{
			"host":   {"localhost"},
			"accept": {"text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"},
		},
	},
	{
		Method: "POST", URI: "/upload", Version: "1.0",
		Headers: map[string][]string{
			"content-type": {"text/plain", "folded"},
		},
	},
	{Method: "HEAD", URI: "/", Version: "1.1"},
}

func compareMessage(t *testing.T, wanted wantedMessage, msg http.Message) {
	require.Equal(t, wanted.Method, msg.Request.Method.String())
	require.Equal(t, wanted.URI, msg.Request.URI.String())
	require.Equal(t, wanted.Version, msg.Request.Version.String())
	require.Equal(t, len(wanted.Headers), len(msg.Headers))

	for name, values := range wanted.Headers {
		actual := msg.Values(name)
		require.Equal(t, len(values), len(actual), name)

		for i, value := range values {
			require.Equal(t, value, actual[i].String(), name)
		}
	}
}

func collect(t *testing.T, s *Stream) []http.Message {
	var messages []http.Message
	n, err := s.Each(context.Background(), func(seq int, msg http.Message) error {
		require.Equal(t, len(messages), seq)
		messages = append(messages, msg.Detach())
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, len(messages), n)

	return messages
}

func TestStream_Each(t *testing.T) {
	t.Run("whole", func(t *testing.T) {
		s := New(dummy.NewChunkedClient([]byte(pipelined)), config.Default())
		messages := collect(t, s)
		require.Len(t, messages, len(pipelinedMessages))

		for i, msg := range messages {
			compareMessage(t, pipelinedMessages[i], msg)
		}

		require.Equal(t, 3, s.Seq())
		require.Equal(t, int64(len(pipelined)), s.Offset())
	})

	t.Run("fuzz", func(t *testing.T) {
		for n := 1; n <= len(pipelined); n++ {
			s := New(dummy.NewSplitClient([]byte(pipelined), n), config.Default())
			messages := collect(t, s)
			require.Len(t, messages, len(pipelinedMessages), n)

			for i, msg := range messages {
				compareMessage(t, pipelinedMessages[i], msg)
			}
		}
	})

	t.Run("tiny buffer", func(t *testing.T) {
		cfg := config.Default()
		cfg.Stream.Buffer.Default = 1
		s := New(dummy.NewSplitClient([]byte(pipelined), 3), cfg)
		require.Len(t, collect(t, s), len(pipelinedMessages))
	})

	t.Run("file-like source", func(t *testing.T) {
		raw := strings.Repeat(pipelined, 100)
		s := New(source.NewReader(strings.NewReader(raw), make([]byte, 1000)), config.Default())
		n, err := s.Count(context.Background())
		require.NoError(t, err)
		require.Equal(t, 300, n)
	})

	t.Run("empty source", func(t *testing.T) {
		s := New(dummy.NewChunkedClient(), config.Default())
		n, err := s.Count(context.Background())
		require.NoError(t, err)
		require.Zero(t, n)
	})

	t.Run("callback error", func(t *testing.T) {
		stop := fmt.Errorf("stop")
		s := New(dummy.NewChunkedClient([]byte(pipelined)), config.Default())
		n, err := s.Each(context.Background(), func(int, http.Message) error {
			return stop
		})
		require.ErrorIs(t, err, stop)
		require.Equal(t, 1, n)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s := New(dummy.NewChunkedClient([]byte(pipelined)), config.Default())
		n, err := s.Count(ctx)
		require.ErrorIs(t, err, context.Canceled)
		require.Zero(t, n)
	})
}

func TestStream_Next(t *testing.T) {
	t.Run("retry until complete", func(t *testing.T) {
		client := dummy.NewChunkedClient(
			[]byte("GET / HTTP/1.1\r\nHost: loc"), []byte("alhost\r\n\r\n"),
		)
		s := New(client, config.Default())

		_, err := s.Next()
		require.ErrorIs(t, err, errors.ErrRetry)

		msg, err := s.Next()
		require.NoError(t, err)
		compareMessage(t, wantedMessage{
			Method: "GET", URI: "/", Version: "1.1",
			Headers: map[string][]string{"host": {"localhost"}},
		}, msg)

		_, err = s.Next()
		require.ErrorIs(t, err, errors.ErrEndOfInput)
		_, err = s.Next()
		require.ErrorIs(t, err, errors.ErrEndOfInput)
		require.NoError(t, s.Close())
	})

	t.Run("truncated", func(t *testing.T) {
		s := New(dummy.NewChunkedClient([]byte("GET / HTTP/1.1\r\n\r\nGET / HTTP/1.1\r\nHost: loc")), config.Default())
		n, err := s.Count(context.Background())
		require.Equal(t, 1, n)
		require.ErrorIs(t, err, errors.ErrTruncated)

		var merr *errors.MessageError
		require.True(t, errors.As(err, &merr))
		require.Equal(t, 1, merr.Seq)
		require.Equal(t, int64(18), merr.Offset)
	})

	t.Run("grammar error", func(t *testing.T) {
		raw := "GET / HTTP/1.1\r\n\r\nGET / HTTP/1.1\r\nHost localhost\r\n\r\n"
		s := New(dummy.NewSplitClient([]byte(raw), 4), config.Default())
		n, err := s.Count(context.Background())
		require.Equal(t, 1, n)

		var merr *errors.MessageError
		require.True(t, errors.As(err, &merr))
		require.Equal(t, 1, merr.Seq)
		require.Equal(t, int64(18), merr.Offset)

		var gerr *errors.GrammarError
		require.True(t, errors.As(err, &gerr))
		require.Equal(t, "header", gerr.Rule)
		require.False(t, gerr.EOF)
		require.Equal(t, 20, gerr.Pos)
	})

	t.Run("too large", func(t *testing.T) {
		cfg := config.Default()
		cfg.Stream.Buffer.Default = 16
		cfg.Stream.Buffer.Maximal = 64
		raw := "GET / HTTP/1.1\r\nCookie: " + uniuri.NewLen(100) + "\r\n\r\n"
		s := New(dummy.NewSplitClient([]byte(raw), 10), cfg)
		_, err := s.Count(context.Background())
		require.ErrorIs(t, err, errors.ErrTooLarge)
	})

	t.Run("exactly at the limit", func(t *testing.T) {
		raw := "GET / HTTP/1.1\r\nCookie: " + uniuri.NewLen(100) + "\r\n\r\n"
		cfg := config.Default()
		cfg.Stream.Buffer.Default = 16
		cfg.Stream.Buffer.Maximal = len(raw)
		s := New(dummy.NewChunkedClient([]byte(raw+raw)), cfg)
		n, err := s.Count(context.Background())
		require.NoError(t, err)
		require.Equal(t, 2, n)
	})

	t.Run("read error along with an oversized chunk", func(t *testing.T) {
		boom := fmt.Errorf("connection reset")
		cfg := config.Default()
		cfg.Stream.Buffer.Default = 16
		cfg.Stream.Buffer.Maximal = 64
		client := &lastChunkClient{
			unreader: new(unreader.Unreader),
			data:     []byte(strings.Repeat("GET / HTTP/1.1\r\n\r\n", 5)),
			err:      boom,
		}

		n, err := New(client, cfg).Count(context.Background())
		require.ErrorIs(t, err, boom)
		require.Equal(t, 3, n)
	})

	t.Run("EOF along with an oversized chunk", func(t *testing.T) {
		cfg := config.Default()
		cfg.Stream.Buffer.Default = 16
		cfg.Stream.Buffer.Maximal = 64
		client := &lastChunkClient{
			unreader: new(unreader.Unreader),
			data:     []byte(strings.Repeat("GET / HTTP/1.1\r\n\r\n", 5)),
			err:      io.EOF,
		}

		n, err := New(client, cfg).Count(context.Background())
		require.NoError(t, err)
		require.Equal(t, 5, n)
	})

	t.Run("read error", func(t *testing.T) {
		boom := fmt.Errorf("boom")
		s := New(failingClient{err: boom}, config.Default())
		_, err := s.Count(context.Background())
		require.ErrorIs(t, err, boom)
		require.Contains(t, err.Error(), "read message 0")
	})
}

func TestStream_Detach(t *testing.T) {
	s := New(dummy.NewSplitClient([]byte(pipelined), 5), config.Default())
	var borrowed, detached []http.Message
	_, err := s.Each(context.Background(), func(_ int, msg http.Message) error {
		borrowed = append(borrowed, msg)
		detached = append(detached, msg.Detach())
		return nil
	})
	require.NoError(t, err)

	for i, msg := range detached {
		require.False(t, borrowed[i].Request.Method.Owned())
		require.True(t, msg.Request.Method.Owned())
		compareMessage(t, pipelinedMessages[i], msg)
	}
}

// lastChunkClient returns its data in a single read along with err, and io.EOF after.
type lastChunkClient struct {
	unreader *unreader.Unreader
	data     []byte
	err      error
}

func (l *lastChunkClient) Read() ([]byte, error) {
	return l.unreader.PendingOr(func() ([]byte, error) {
		if l.data == nil {
			return nil, io.EOF
		}

		data := l.data
		l.data = nil

		return data, l.err
	})
}

func (l *lastChunkClient) Unread(b []byte) {
	l.unreader.Unread(b)
}

func (*lastChunkClient) Close() error {
	return nil
}

type failingClient struct {
	err error
}

func (f failingClient) Read() ([]byte, error) {
	return nil, f.err
}

func (failingClient) Unread([]byte) {}

func (failingClient) Close() error {
	return nil
}

func BenchmarkStream(b *testing.B) {
	raw := []byte(pipelined)
	s := New(dummy.NewCircularClient(raw), config.Default())

	b.SetBytes(int64(len(raw)) / 3)
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; {
		if _, err := s.Next(); err == nil {
			i++
		}
	}
}
