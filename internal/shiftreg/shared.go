package shiftreg

import "sync"

// Shared hands one chain to many pin handles. Any number of shared borrows
// may be active at once; an exclusive borrow excludes everything else.
// A conflicting borrow panics with a *BorrowConflictError instead of
// waiting, so misuse shows up at the call that caused it.
//
// Bit reads need a shared borrow. Bit writes and Update need an exclusive
// one.
type Shared[C any] struct {
	mu      sync.Mutex
	readers int
	writer  bool
	value   C
}

// Share wraps chain for use by pin handles.
func Share[C any](chain C) *Shared[C] {
	return &Shared[C]{value: chain}
}

// Borrow calls fn with the chain under a shared borrow.
func (s *Shared[C]) Borrow(fn func(C)) {
	s.acquire(false)
	defer s.release(false)
	fn(s.value)
}

// BorrowMut calls fn with the chain under an exclusive borrow and returns
// its error.
func (s *Shared[C]) BorrowMut(fn func(C) error) error {
	s.acquire(true)
	defer s.release(true)
	return fn(s.value)
}

func (s *Shared[C]) acquire(exclusive bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writer || (exclusive && s.readers > 0) {
		op := "borrow"
		if exclusive {
			op = "borrow mut"
		}
		panic(&BorrowConflictError{Op: op, Readers: s.readers, Writer: s.writer})
	}
	if exclusive {
		s.writer = true
	} else {
		s.readers++
	}
}

func (s *Shared[C]) release(exclusive bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if exclusive {
		s.writer = false
	} else {
		s.readers--
	}
}

// Update runs the chain's transfer under an exclusive borrow.
func Update[C Updater](s *Shared[C]) error {
	return s.BorrowMut(func(c C) error {
		return c.Update()
	})
}
