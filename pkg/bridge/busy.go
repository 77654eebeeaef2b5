package bridge

import "sync"

// Busy counts outstanding foreground requests
type Busy struct {
	mu       sync.Mutex
	n        int
	onChange func(busy bool)
}

// NewBusy creates a counter. onChange, if set, is called on every
// idle/busy transition while the counter lock is held, so it must not call
// back into Busy.
func NewBusy(onChange func(busy bool)) *Busy {
	return &Busy{onChange: onChange}
}

func (b *Busy) acquire() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.n++
	if b.n == 1 && b.onChange != nil {
		b.onChange(true)
	}
}

func (b *Busy) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.n == 0 {
		return
	}
	b.n--
	if b.n == 0 && b.onChange != nil {
		b.onChange(false)
	}
}

// IsBusy reports whether any foreground request is outstanding
func (b *Busy) IsBusy() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.n > 0
}

// Outstanding returns the number of foreground requests in flight
func (b *Busy) Outstanding() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.n
}
