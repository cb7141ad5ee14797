package http

import (
	"github.com/indigo-web/utils/uf"
)

// Span is a contiguous range of bytes matched by the parser, exactly as it was on the
// wire. A borrowed span points right into the stream's buffer and is valid only until
// the stream is advanced again, an owned span holds a private copy.
type Span struct {
	data  []byte
	owned bool
}

// Borrow wraps b without copying it.
func Borrow(b []byte) Span {
	return Span{data: b}
}

// Own copies b.
func Own(b []byte) Span {
	data := make([]byte, len(b))
	copy(data, b)

	return Span{data: data, owned: true}
}

func (s Span) Bytes() []byte {
	return s.data
}

// String returns the span's content as a string. Owned spans are never modified, so no
// copy is made for them.
func (s Span) String() string {
	if s.owned {
		return uf.B2S(s.data)
	}

	return string(s.data)
}

// Equal compares the span's content with str without allocating.
func (s Span) Equal(str string) bool {
	return uf.B2S(s.data) == str
}

func (s Span) Len() int {
	return len(s.data)
}

func (s Span) Owned() bool {
	return s.owned
}

// Clone returns an owned copy of the span.
func (s Span) Clone() Span {
	return Own(s.data)
}
