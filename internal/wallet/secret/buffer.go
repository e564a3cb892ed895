// Package secret provides a zeroizing buffer for seed and key material.
// The engine never passes raw secret bytes around as plain slices with
// indeterminate lifetime: secrets live in a Buffer owned by exactly one
// operation and are actively overwritten on every exit path.
package secret

import (
	"runtime"
	"sync"
)

// Buffer holds sensitive bytes and guarantees they are overwritten, not
// merely dereferenced, when the owning operation finishes.
type Buffer struct {
	mu   sync.Mutex
	data []byte
}

// FromBytes copies data into a new Buffer. The caller remains responsible
// for wiping its own copy.
func FromBytes(data []byte) *Buffer {
	b := &Buffer{data: make([]byte, len(data))}
	copy(b.data, data)

	// Backstop only: owners must call Wipe explicitly. The finalizer covers
	// buffers that escape through a panic in a caller we do not control.
	runtime.SetFinalizer(b, func(buf *Buffer) {
		buf.Wipe()
	})

	return b
}

// Bytes returns the underlying bytes, or nil after Wipe. The slice aliases
// the buffer; callers must not retain it past the current operation.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data
}

// Len returns the number of bytes held, 0 after Wipe.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Wipe overwrites the held bytes with zeros and releases them. Safe to call
// multiple times and from deferred finalizers on any exit path.
func (b *Buffer) Wipe() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.data == nil {
		return
	}

	for i := range b.data {
		b.data[i] = 0
	}
	b.data = nil

	runtime.SetFinalizer(b, nil)
}

// Zeroize overwrites a raw slice in place. Used for intermediates (derived
// private keys, decrypted mnemonics) that never get promoted to a Buffer.
func Zeroize(data []byte) {
	for i := range data {
		data[i] = 0
	}
}
