package source

import (
	"io"
	"net"
	"time"

	"github.com/indigo-web/utils/unreader"
)

// Client is a source of bytes. Read returns a chunk of data, which stays valid only until
// the next call. A chunk, or its part, may be given back with Unread, so the next Read
// returns it instead of reading anew.
type Client interface {
	Read() ([]byte, error)
	Unread([]byte)
	Close() error
}

type client struct {
	unreader *unreader.Unreader
	buff     []byte
	conn     net.Conn
	timeout  time.Duration
}

// NewClient returns a client reading from the connection. Every read must complete
// within the timeout.
func NewClient(conn net.Conn, timeout time.Duration, buff []byte) Client {
	return &client{
		unreader: new(unreader.Unreader),
		buff:     buff,
		conn:     conn,
		timeout:  timeout,
	}
}

func (c *client) Read() ([]byte, error) {
	return c.unreader.PendingOr(func() ([]byte, error) {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
			return nil, err
		}

		n, err := c.conn.Read(c.buff)

		return c.buff[:n], err
	})
}

func (c *client) Unread(b []byte) {
	c.unreader.Unread(b)
}

func (c *client) Close() error {
	return c.conn.Close()
}

type reader struct {
	unreader *unreader.Unreader
	buff     []byte
	r        io.Reader
}

// NewReader returns a client reading from an arbitrary reader, e.g. a file. If the
// reader is also an io.Closer, closing the client closes it too.
func NewReader(r io.Reader, buff []byte) Client {
	return &reader{
		unreader: new(unreader.Unreader),
		buff:     buff,
		r:        r,
	}
}

func (r *reader) Read() ([]byte, error) {
	return r.unreader.PendingOr(func() ([]byte, error) {
		n, err := r.r.Read(r.buff)

		return r.buff[:n], err
	})
}

func (r *reader) Unread(b []byte) {
	r.unreader.Unread(b)
}

func (r *reader) Close() error {
	if closer, ok := r.r.(io.Closer); ok {
		return closer.Close()
	}

	return nil
}
