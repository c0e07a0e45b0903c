// Package ram implements the Hack computer's shared memory: a fixed-size
// array of signed 16-bit words guarded by a single mutex.
//
// Exactly one RAM instance is ever shared across threads (the CPU thread and
// the host's main thread, which snapshots video memory for presentation).
// Every read, write, and bulk copy acquires the lock for its duration, so
// individual words are never torn; the lock offers no ordering guarantee
// beyond standard acquire/release semantics.
package ram

import (
	"sync"

	"github.com/pkg/errors"
)

// Size is the addressable range of the Hack computer's memory, 32K words.
const Size = 32768

// RAM is a mutex-protected array of signed 16-bit memory cells.
type RAM struct {
	mu     sync.Mutex
	memory []int16
}

// New allocates a zeroed RAM of Size words.
func New() *RAM {
	return &RAM{memory: make([]int16, Size)}
}

// Read returns the word stored at address.
func (r *RAM) Read(address uint16) int16 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.memory[address]
}

// Write stores value at address.
func (r *RAM) Write(address uint16, value int16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.memory[address] = value
}

// CopySlice copies len(dst) words starting at address into dst, under a
// single lock acquisition, so the caller observes a consistent region
// rather than a word-by-word interleaving with concurrent writers.
func (r *RAM) CopySlice(address uint16, dst []int16) error {
	start := int(address)
	if start+len(dst) > Size {
		return errors.Errorf("ram: out of bounds read starting at %d, len %d", address, len(dst))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	copy(dst, r.memory[start:start+len(dst)])
	return nil
}

// ROM is the program store loaded from a .hack file. It is immutable after
// load and therefore requires no locking.
type ROM []uint16
