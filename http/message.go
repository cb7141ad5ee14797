package http

import (
	"github.com/indigo-web/iter"
	"github.com/indigo-web/reqscan/internal/buffer"
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
)

// Request is the request line.
type Request struct {
	Method Span
	URI    Span
	// Version is what follows the HTTP/ prefix, e.g. 1.1
	Version Span
}

// Header is a single logical header. Every physical line of a folded value is kept
// separately, in the order of appearance. Value is never empty.
type Header struct {
	Name  Span
	Value []Span
}

// Message is a request head. Headers are kept in the wire order, repeated names are
// never merged.
type Message struct {
	Request Request
	Headers []Header
}

// Values returns value lines of all the headers named so, compared case-insensitively.
// Returns nil if there are no such headers.
func (m Message) Values(name string) (values []Span) {
	for _, header := range m.Headers {
		if strcomp.EqualFold(uf.B2S(header.Name.data), name) {
			values = append(values, header.Value...)
		}
	}

	return values
}

// Iter returns an iterator over the headers, in the wire order
func (m Message) Iter() iter.Iterator[Header] {
	return iter.Slice(m.Headers)
}

// Has tells whether there's at least one header named so.
func (m Message) Has(name string) bool {
	for _, header := range m.Headers {
		if strcomp.EqualFold(uf.B2S(header.Name.data), name) {
			return true
		}
	}

	return false
}

// Size returns the total length of all the spans in the message.
func (m Message) Size() (size int) {
	size = m.Request.Method.Len() + m.Request.URI.Len() + m.Request.Version.Len()
	for _, header := range m.Headers {
		size += header.Name.Len()
		for _, line := range header.Value {
			size += line.Len()
		}
	}

	return size
}

// Detach returns a copy of the message, which owns all of its spans. All the data is
// copied into a single allocation.
func (m Message) Detach() Message {
	size := m.Size()
	arena := buffer.NewArena(size, size)
	own := func(s Span) Span {
		data, ok := arena.Copy(s.data)
		if !ok {
			panic("BUG: message size doesn't match its spans")
		}

		return Span{data: data, owned: true}
	}

	detached := Message{
		Request: Request{
			Method:  own(m.Request.Method),
			URI:     own(m.Request.URI),
			Version: own(m.Request.Version),
		},
		Headers: make([]Header, len(m.Headers)),
	}

	for i, header := range m.Headers {
		value := make([]Span, len(header.Value))
		for j, line := range header.Value {
			value[j] = own(line)
		}

		detached.Headers[i] = Header{Name: own(header.Name), Value: value}
	}

	return detached
}
