package sim

// Window keeps the most recent values pushed into it in a fixed ring.
type Window[E any] struct {
	buf  []E
	next int
	full bool
}

// NewWindow returns a ring holding size values; size <= 0 keeps nothing.
func NewWindow[E any](size int) *Window[E] {
	if size < 0 {
		size = 0
	}
	return &Window[E]{buf: make([]E, size)}
}

func (w *Window[E]) Push(v E) {
	if len(w.buf) == 0 {
		return
	}
	w.buf[w.next] = v
	w.next++
	if w.next == len(w.buf) {
		w.next = 0
		w.full = true
	}
}

func (w *Window[E]) Len() int {
	if w.full {
		return len(w.buf)
	}
	return w.next
}

// Values returns a copy of the retained values, oldest first.
func (w *Window[E]) Values() []E {
	out := make([]E, 0, w.Len())
	if w.full {
		out = append(out, w.buf[w.next:]...)
	}
	return append(out, w.buf[:w.next]...)
}
