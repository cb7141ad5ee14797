package buffer

// Window is a growable read buffer. Unconsumed data always lives in a single contiguous
// region, so a parser may re-scan it from the beginning as many times as needed. Appending
// may move the data: slices obtained from Bytes() before must be considered invalid.
type Window struct {
	memory     []byte
	begin, end int
	maximal    int
}

func NewWindow(initialSize, maximalSize int) *Window {
	if initialSize > maximalSize {
		initialSize = maximalSize
	}

	return &Window{
		memory:  make([]byte, initialSize),
		maximal: maximalSize,
	}
}

// Bytes returns the unconsumed data.
func (w *Window) Bytes() []byte {
	return w.memory[w.begin:w.end]
}

func (w *Window) Len() int {
	return w.end - w.begin
}

// Cap returns the current size of the underlying memory.
func (w *Window) Cap() int {
	return len(w.memory)
}

// Consume marks first n bytes of the unconsumed data as consumed.
func (w *Window) Consume(n int) {
	if n > w.Len() {
		n = w.Len()
	}

	w.begin += n
	if w.begin == w.end {
		w.begin, w.end = 0, 0
	}
}

// Full reports whether the window holds the maximal amount of unconsumed data.
func (w *Window) Full() bool {
	return w.Len() >= w.maximal
}

// Append copies as much of p as fits into the window, compacting and growing it first if
// needed. Returns the number of bytes copied, which is less than len(p) only if the window
// has hit its maximal size.
func (w *Window) Append(p []byte) int {
	if len(p) > len(w.memory)-w.end {
		w.compact()
	}

	if len(p) > len(w.memory)-w.end {
		w.grow(w.Len() + len(p))
	}

	n := copy(w.memory[w.end:], p)
	w.end += n

	return n
}

// Clear drops all the data, keeping the memory.
func (w *Window) Clear() {
	w.begin, w.end = 0, 0
}

func (w *Window) compact() {
	if w.begin == 0 {
		return
	}

	copy(w.memory, w.memory[w.begin:w.end])
	w.end -= w.begin
	w.begin = 0
}

func (w *Window) grow(want int) {
	size := len(w.memory)
	if size == 0 {
		size = 1
	}

	for size < want && size < w.maximal {
		size *= 2
	}

	if size > w.maximal {
		size = w.maximal
	}

	if size <= len(w.memory) {
		return
	}

	memory := make([]byte, size)
	copy(memory, w.memory[w.begin:w.end])
	w.end -= w.begin
	w.begin = 0
	w.memory = memory
}
