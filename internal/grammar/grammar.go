// Package grammar is a tiny toolkit of composable byte-level rules. A rule is a pure
// function of an immutable cursor: it either returns the advanced cursor together with
// the matched value, or one of the two errors a rule is allowed to produce:
//
//   - errors.ErrIncomplete, when the rule ran off the end of a buffer that may still
//     grow. The caller is expected to retry the whole parse once more data is buffered;
//   - *errors.GrammarError, when the buffered bytes don't match, or the rule ran off the
//     end of a buffer that is known to be final.
//
// Rules never recover from errors of the rules they're built from.
package grammar

import (
	"github.com/indigo-web/reqscan/errors"
)

// Input is a read-only cursor over a buffer. Copying it is cheap, advancing it returns
// a new cursor and leaves the original intact, which is what makes backtracking free.
type Input struct {
	buf []byte
	pos int
	eof bool
}

// NewInput returns a cursor at the beginning of buf. eof tells whether buf holds all
// the data that will ever be available.
func NewInput(buf []byte, eof bool) Input {
	return Input{buf: buf, eof: eof}
}

func (i Input) Pos() int {
	return i.pos
}

func (i Input) Rest() []byte {
	return i.buf[i.pos:]
}

func (i Input) Len() int {
	return len(i.buf) - i.pos
}

func (i Input) AtEOF() bool {
	return i.eof
}

func (i Input) Advance(n int) Input {
	i.pos += n
	return i
}

// Rule matches a prefix of the input.
type Rule[T any] func(in Input) (Input, T, error)

// Fail builds the error to be returned by a rule that expected something at in and
// didn't get it.
func Fail(in Input, rule, expected string) error {
	if in.Len() == 0 {
		if !in.eof {
			return errors.ErrIncomplete
		}

		return &errors.GrammarError{Rule: rule, Expected: expected, Pos: in.pos, EOF: true}
	}

	return &errors.GrammarError{Rule: rule, Expected: expected, Pos: in.pos, Found: in.buf[in.pos]}
}

// TakeWhile1 matches the longest non-empty run of bytes satisfying pred. A run reaching
// the end of a non-final buffer is incomplete, as it's unknown where it actually ends.
func TakeWhile1(rule, expected string, pred func(byte) bool) Rule[[]byte] {
	return func(in Input) (Input, []byte, error) {
		rest := in.Rest()
		n := 0
		for n < len(rest) && pred(rest[n]) {
			n++
		}

		switch {
		case n == len(rest) && !in.eof:
			return in, nil, errors.ErrIncomplete
		case n == 0:
			return in, nil, Fail(in, rule, expected)
		}

		return in.Advance(n), rest[:n:n], nil
	}
}

// TakeTill matches all the bytes up to, but not including, the first one satisfying
// pred. The match may be empty. The terminating byte must be buffered, unless the input
// is final; in that case everything left is matched.
func TakeTill(pred func(byte) bool) Rule[[]byte] {
	return func(in Input) (Input, []byte, error) {
		rest := in.Rest()
		for i, c := range rest {
			if pred(c) {
				return in.Advance(i), rest[:i:i], nil
			}
		}

		if !in.eof {
			return in, nil, errors.ErrIncomplete
		}

		return in.Advance(len(rest)), rest[:len(rest):len(rest)], nil
	}
}

// Byte matches exactly c.
func Byte(rule string, c byte) Rule[byte] {
	expected := describe(c)

	return func(in Input) (Input, byte, error) {
		if in.Len() == 0 || in.buf[in.pos] != c {
			return in, 0, Fail(in, rule, expected)
		}

		return in.Advance(1), c, nil
	}
}

// Literal matches exactly the string s. A mismatch is reported at the first differing
// byte.
func Literal(rule, s string) Rule[[]byte] {
	expected := `"` + s + `"`

	return func(in Input) (Input, []byte, error) {
		for i := 0; i < len(s); i++ {
			at := in.Advance(i)
			if at.Len() == 0 || at.buf[at.pos] != s[i] {
				return in, nil, Fail(at, rule, expected)
			}
		}

		return in.Advance(len(s)), in.Rest()[:len(s):len(s)], nil
	}
}

// Optional tries r and yields the zero value without consuming anything if r didn't
// match. Incomplete input still propagates: it's unknown whether r would've matched.
func Optional[T any](r Rule[T]) Rule[T] {
	return func(in Input) (Input, T, error) {
		next, value, err := r(in)
		if err != nil {
			var zero T
			if errors.Is(err, errors.ErrIncomplete) {
				return in, zero, err
			}

			return in, zero, nil
		}

		return next, value, nil
	}
}

// Many applies r as many times as it matches. The first grammar error stops the
// repetition, leaving the cursor right after the last successful match.
func Many[T any](r Rule[T]) Rule[[]T] {
	return func(in Input) (Input, []T, error) {
		return many(r, in, nil)
	}
}

// Many1 is Many, that requires at least one match. If there's none, the error of the
// first attempt is returned.
func Many1[T any](r Rule[T]) Rule[[]T] {
	return func(in Input) (Input, []T, error) {
		next, first, err := r(in)
		if err != nil {
			return in, nil, err
		}

		return many(r, next, []T{first})
	}
}

// ManyWhile applies r for as long as the next byte satisfies pred. Unlike Many, an error
// of r is never swallowed: once the lookahead byte committed to another repetition, it
// must succeed. prealloc is the initial capacity of the resulting slice.
func ManyWhile[T any](pred func(byte) bool, r Rule[T], prealloc int) Rule[[]T] {
	return func(in Input) (Input, []T, error) {
		items := make([]T, 0, prealloc)

		for {
			if in.Len() == 0 {
				if !in.eof {
					return in, nil, errors.ErrIncomplete
				}

				return in, items, nil
			}

			if !pred(in.buf[in.pos]) {
				return in, items, nil
			}

			next, item, err := r(in)
			if err != nil {
				return in, nil, err
			}

			items = append(items, item)
			in = next
		}
	}
}

func many[T any](r Rule[T], in Input, items []T) (Input, []T, error) {
	for {
		next, item, err := r(in)
		if err != nil {
			if errors.Is(err, errors.ErrIncomplete) {
				return in, nil, err
			}

			return in, items, nil
		}

		if next.pos == in.pos {
			// zero-width match, repeating it would never end
			return in, items, nil
		}

		items = append(items, item)
		in = next
	}
}

func describe(c byte) string {
	switch c {
	case ' ':
		return "space"
	case '\r':
		return "CR"
	case '\n':
		return "LF"
	default:
		return `"` + string(rune(c)) + `"`
	}
}
