package http1

import (
	"github.com/indigo-web/reqscan/http"
	"github.com/indigo-web/reqscan/internal/grammar"
	"github.com/indigo-web/reqscan/internal/lexical"
)

const (
	ruleEOL         = "end-of-line"
	ruleVersion     = "http-version"
	ruleRequestLine = "request-line"
	ruleHeaderLine  = "header-line"
	ruleHeader      = "header"
)

var (
	carriageReturn = grammar.Optional(grammar.Byte(ruleEOL, '\r'))
	lineFeed       = grammar.Byte(ruleEOL, '\n')

	versionPrefix = grammar.Literal(ruleVersion, "HTTP/")
	versionNumber = grammar.TakeWhile1(ruleVersion, "version digit", lexical.IsHTTPVersion)

	method    = grammar.TakeWhile1(ruleRequestLine, "method token", lexical.IsToken)
	separator = grammar.TakeWhile1(ruleRequestLine, "space", lexical.IsSpace)
	uri       = grammar.TakeWhile1(ruleRequestLine, "request URI", lexical.IsNotSpace)

	indent      = grammar.TakeWhile1(ruleHeaderLine, "leading whitespace", lexical.IsHorizontalSpace)
	lineContent = grammar.TakeTill(lexical.IsEndOfLine)

	headerName  = grammar.TakeWhile1(ruleHeader, "header name token", lexical.IsToken)
	headerColon = grammar.Byte(ruleHeader, ':')
	headerLines = grammar.Many1(HeaderLine)
)

// EndOfLine matches CR LF, or a bare LF. CR is accepted only right before the LF.
func EndOfLine(in grammar.Input) (grammar.Input, byte, error) {
	next, _, err := carriageReturn(in)
	if err != nil {
		return in, 0, err
	}

	return lineFeed(next)
}

// HTTPVersion matches HTTP/ followed by digits and dots, returning only the latter.
func HTTPVersion(in grammar.Input) (grammar.Input, []byte, error) {
	next, _, err := versionPrefix(in)
	if err != nil {
		return in, nil, err
	}

	return versionNumber(next)
}

// RequestLine matches method, URI and protocol version, separated by spaces. Tabs aren't
// allowed as separators. The line terminator isn't consumed.
func RequestLine(in grammar.Input) (next grammar.Input, request http.Request, err error) {
	next, methodValue, err := method(in)
	if err != nil {
		return in, request, err
	}

	if next, _, err = separator(next); err != nil {
		return in, request, err
	}

	next, uriValue, err := uri(next)
	if err != nil {
		return in, request, err
	}

	if next, _, err = separator(next); err != nil {
		return in, request, err
	}

	next, version, err := HTTPVersion(next)
	if err != nil {
		return in, request, err
	}

	return next, http.Request{
		Method:  http.Borrow(methodValue),
		URI:     http.Borrow(uriValue),
		Version: http.Borrow(version),
	}, nil
}

// HeaderLine matches a single physical line of a header value. The line must begin with
// whitespace, which is true for both the first line (right after the colon) and
// continuation lines. Neither the indent nor the terminator are part of the result.
func HeaderLine(in grammar.Input) (grammar.Input, http.Span, error) {
	next, _, err := indent(in)
	if err != nil {
		return in, http.Span{}, err
	}

	next, line, err := lineContent(next)
	if err != nil {
		return in, http.Span{}, err
	}

	if next, _, err = EndOfLine(next); err != nil {
		return in, http.Span{}, err
	}

	return next, http.Borrow(line), nil
}

// Header matches a header name, a colon and one or more value lines.
func Header(in grammar.Input) (grammar.Input, http.Header, error) {
	next, name, err := headerName(in)
	if err != nil {
		return in, http.Header{}, err
	}

	if next, _, err = headerColon(next); err != nil {
		return in, http.Header{}, err
	}

	next, lines, err := headerLines(next)
	if err != nil {
		return in, http.Header{}, err
	}

	return next, http.Header{Name: http.Borrow(name), Value: lines}, nil
}
