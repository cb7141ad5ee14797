// Package dump renders parsed messages back, either in the wire form or as JSON lines.
package dump

import (
	"io"

	"github.com/indigo-web/reqscan/http"
	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"
)

// Request renders the message in the wire form. Every header line is terminated by CRLF,
// continuation lines are indented by a single space. Parsing the result yields the same
// message.
func Request(msg http.Message) []byte {
	buff := make([]byte, 0, msg.Size()+64)

	buff = append(buff, msg.Request.Method.Bytes()...)
	buff = space(buff)
	buff = append(buff, msg.Request.URI.Bytes()...)
	buff = space(buff)
	buff = append(buff, "HTTP/"...)
	buff = append(buff, msg.Request.Version.Bytes()...)
	buff = crlf(buff)

	headers := msg.Iter()
	for h, cont := headers.Next(); cont; h, cont = headers.Next() {
		buff = header(buff, h)
	}

	return crlf(buff)
}

func header(b []byte, h http.Header) []byte {
	b = append(b, h.Name.Bytes()...)
	b = append(b, ':')

	for _, line := range h.Value {
		b = space(b)
		b = append(b, line.Bytes()...)
		b = crlf(b)
	}

	return b
}

func space(b []byte) []byte {
	return append(b, ' ')
}

func crlf(b []byte) []byte {
	return append(b, '\r', '\n')
}

// JSON writes the message as a single-line JSON object, followed by a newline.
func JSON(w io.Writer, seq int, msg http.Message) error {
	stream := json.ConfigDefault.BorrowStream(w)
	defer json.ConfigDefault.ReturnStream(stream)

	stream.WriteObjectStart()
	stream.WriteObjectField("seq")
	stream.WriteInt(seq)
	stream.WriteMore()
	field(stream, "method", msg.Request.Method)
	stream.WriteMore()
	field(stream, "uri", msg.Request.URI)
	stream.WriteMore()
	field(stream, "version", msg.Request.Version)
	stream.WriteMore()
	stream.WriteObjectField("headers")
	stream.WriteArrayStart()

	headers := msg.Iter()
	for h, cont := headers.Next(); cont; {
		stream.WriteObjectStart()
		field(stream, "name", h.Name)
		stream.WriteMore()
		stream.WriteObjectField("value")
		stream.WriteArrayStart()

		for j, line := range h.Value {
			if j > 0 {
				stream.WriteMore()
			}

			stream.WriteString(uf.B2S(line.Bytes()))
		}

		stream.WriteArrayEnd()
		stream.WriteObjectEnd()

		if h, cont = headers.Next(); cont {
			stream.WriteMore()
		}
	}

	stream.WriteArrayEnd()
	stream.WriteObjectEnd()
	stream.WriteRaw("\n")

	if stream.Error != nil {
		return stream.Error
	}

	return stream.Flush()
}

func field(stream *json.Stream, name string, value http.Span) {
	stream.WriteObjectField(name)
	stream.WriteString(uf.B2S(value.Bytes()))
}
