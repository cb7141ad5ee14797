package buffer

// Arena hosts non-interrelated byte sequences in a single place. Sequences are written
// segment by segment, every finished segment stays intact no matter what's written
// afterwards.
type Arena struct {
	memory  []byte
	begin   int
	maxSize int
}

func NewArena(initialSize, maxSize int) *Arena {
	return &Arena{
		memory:  make([]byte, 0, initialSize),
		maxSize: maxSize,
	}
}

// Append writes data into the current segment. If the limit would be exceeded, nothing
// is written and false is returned.
func (a *Arena) Append(elements []byte) (ok bool) {
	if len(a.memory)+len(elements) > a.maxSize {
		return false
	}

	a.memory = append(a.memory, elements...)
	return true
}

// SegmentLength returns a number of bytes taken by the current segment.
func (a *Arena) SegmentLength() int {
	return len(a.memory) - a.begin
}

// Finish completes the current segment, returning its value.
func (a *Arena) Finish() []byte {
	segment := a.memory[a.begin:len(a.memory):len(a.memory)]
	a.begin = len(a.memory)

	return segment
}

// Copy is a shorthand for appending elements as a whole new segment. The current
// segment must be empty.
func (a *Arena) Copy(elements []byte) (segment []byte, ok bool) {
	if !a.Append(elements) {
		return nil, false
	}

	return a.Finish(), true
}

// Clear just resets the pointers, so old values may be overridden by new ones.
func (a *Arena) Clear() {
	a.begin = 0
	a.memory = a.memory[:0]
}
