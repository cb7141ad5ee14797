// Package lexical classifies single bytes the way the HTTP/1.x request grammar needs
// it. Every predicate is total over the whole byte range and has no side effects.
package lexical

import (
	"fmt"
	"strconv"
)

const (
	classToken uint8 = 1 << iota
	classHorizontalSpace
	classEndOfLine
	classVersion
)

var classes [256]uint8

func init() {
	for c := 0x21; c < 0x80; c++ {
		classes[c] |= classToken
	}

	for _, c := range []byte(`()<>@,;:\"/[]?={}`) {
		classes[c] &^= classToken
	}

	classes[' '] |= classHorizontalSpace
	classes['\t'] |= classHorizontalSpace
	classes['\r'] |= classEndOfLine
	classes['\n'] |= classEndOfLine
	classes['.'] |= classVersion

	for c := '0'; c <= '9'; c++ {
		classes[c] |= classVersion
	}
}

// IsToken reports whether c may appear in an HTTP token, e.g. a method or a header name.
// Control characters, non-ASCII bytes, space and separators are rejected. DEL (0x7f)
// is accepted.
func IsToken(c byte) bool {
	return classes[c]&classToken != 0
}

func IsHorizontalSpace(c byte) bool {
	return classes[c]&classHorizontalSpace != 0
}

func IsSpace(c byte) bool {
	return c == ' '
}

func IsNotSpace(c byte) bool {
	return c != ' '
}

// IsEndOfLine matches either of CR and LF, not the pair.
func IsEndOfLine(c byte) bool {
	return classes[c]&classEndOfLine != 0
}

func IsHTTPVersion(c byte) bool {
	return classes[c]&classVersion != 0
}

// Printable renders a byte for diagnostics: quoted if it's visible ASCII, hex otherwise.
func Printable(c byte) string {
	if c >= 0x20 && c < 0x7f {
		return strconv.QuoteRune(rune(c))
	}

	return fmt.Sprintf("0x%02x", c)
}
