package http1

import (
	"github.com/indigo-web/reqscan/config"
	"github.com/indigo-web/reqscan/errors"
	"github.com/indigo-web/reqscan/http"
	"github.com/indigo-web/reqscan/internal/grammar"
	"github.com/indigo-web/reqscan/internal/lexical"
	"github.com/indigo-web/reqscan/internal/transport"
)

// Parser parses request heads, one per call. It doesn't keep any state between calls,
// so an incomplete message is simply parsed from its beginning again once more data is
// available. All the spans of the resulting message point into the data passed in.
type Parser struct {
	headers grammar.Rule[[]http.Header]
}

func NewParser(cfg *config.Config) *Parser {
	return &Parser{
		// a header may be only started by a token byte, anything else must be the
		// blank line terminating the headers block
		headers: grammar.ManyWhile(lexical.IsToken, Header, cfg.Headers.Prealloc),
	}
}

// Request matches the request line, its terminator, headers and the blank line.
func (p *Parser) Request(in grammar.Input) (grammar.Input, http.Message, error) {
	next, request, err := RequestLine(in)
	if err != nil {
		return in, http.Message{}, err
	}

	if next, _, err = EndOfLine(next); err != nil {
		return in, http.Message{}, err
	}

	next, headers, err := p.headers(next)
	if err != nil {
		return in, http.Message{}, err
	}

	if next, _, err = EndOfLine(next); err != nil {
		return in, http.Message{}, err
	}

	return next, http.Message{Request: request, Headers: headers}, nil
}

// Parse tries to parse a message at the beginning of data. On success, the number of
// bytes the message took is returned. An error is returned only along with the
// transport.Error state and is always *errors.GrammarError.
func (p *Parser) Parse(data []byte, eof bool) (transport.State, http.Message, int, error) {
	if len(data) == 0 && eof {
		return transport.EndOfInput, http.Message{}, 0, nil
	}

	next, msg, err := p.Request(grammar.NewInput(data, eof))
	switch {
	case err == nil:
		return transport.Completed, msg, next.Pos(), nil
	case errors.Is(err, errors.ErrIncomplete):
		return transport.Retry, http.Message{}, 0, nil
	default:
		return transport.Error, http.Message{}, 0, err
	}
}
