package dummy

import (
	"io"

	"github.com/indigo-web/utils/unreader"
)

// ChunkedClient returns the data it was initialised with piece by piece, and io.EOF
// after the last one. It's used to emulate data arriving in arbitrary portions.
type ChunkedClient struct {
	unreader *unreader.Unreader
	data     [][]byte
	pointer  int
	closed   bool
	// Reads counts calls to Read, takebacks included
	Reads int
}

func NewChunkedClient(data ...[]byte) *ChunkedClient {
	return &ChunkedClient{
		unreader: new(unreader.Unreader),
		data:     data,
	}
}

// NewSplitClient splits the data into n-byte pieces.
func NewSplitClient(data []byte, n int) *ChunkedClient {
	var parts [][]byte
	for i := 0; i < len(data); i += n {
		end := i + n
		if end > len(data) {
			end = len(data)
		}

		parts = append(parts, data[i:end])
	}

	return NewChunkedClient(parts...)
}

func (c *ChunkedClient) Read() ([]byte, error) {
	c.Reads++

	if c.closed {
		return nil, io.EOF
	}

	return c.unreader.PendingOr(func() ([]byte, error) {
		if c.pointer >= len(c.data) {
			return nil, io.EOF
		}

		piece := c.data[c.pointer]
		c.pointer++

		return piece, nil
	})
}

func (c *ChunkedClient) Unread(takeback []byte) {
	c.unreader.Unread(takeback)
}

func (c *ChunkedClient) Close() error {
	c.closed = true
	return nil
}

// CircularClient is a client that on every read-operation returns the same data as it
// was initialised with. This is used mainly for benchmarking
type CircularClient struct {
	unreader *unreader.Unreader
	data     [][]byte
	pointer  int
}

func NewCircularClient(data ...[]byte) *CircularClient {
	return &CircularClient{
		unreader: new(unreader.Unreader),
		data:     data,
		pointer:  -1,
	}
}

func (c *CircularClient) Read() ([]byte, error) {
	return c.unreader.PendingOr(func() ([]byte, error) {
		c.pointer++

		if c.pointer == len(c.data) {
			c.pointer = 0
		}

		return c.data[c.pointer], nil
	})
}

func (c *CircularClient) Unread(takeback []byte) {
	c.unreader.Unread(takeback)
}

func (*CircularClient) Close() error {
	return nil
}
