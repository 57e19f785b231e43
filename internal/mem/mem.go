// Package mem provides buffer helpers shared across the module.
package mem

// Wipe overwrites b with zeros. It is a best-effort scrub for buffers which held secret material; the
// compiler and runtime may retain copies elsewhere.
func Wipe(b []byte) {
	clear(b)
}

// SliceForAppend extends in by n bytes, returning both the extended slice and the newly appended
// portion. If in has sufficient capacity, no allocation is performed.
func SliceForAppend(in []byte, n int) (head, tail []byte) {
	if total := len(in) + n; cap(in) >= total {
		head = in[:total]
	} else {
		head = make([]byte, total)
		copy(head, in)
	}
	tail = head[len(in):]
	return
}
