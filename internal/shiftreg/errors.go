package shiftreg

import (
	"errors"
	"fmt"
)

var (
	// ErrIndexOutOfRange is returned when a pin index is outside [0, chips*8).
	ErrIndexOutOfRange = errors.New("shiftreg: pin index out of range")

	// ErrInvalidLength is returned for a negative chain length.
	ErrInvalidLength = errors.New("shiftreg: invalid chain length")

	// ErrNilLine is returned when a required control line is missing.
	ErrNilLine = errors.New("shiftreg: nil control line")

	// ErrBorrowConflict is wrapped by the panic value raised on a borrow
	// violation.
	ErrBorrowConflict = errors.New("shiftreg: borrow conflict")
)

// BorrowConflictError is the panic value raised by Shared when a borrow
// would overlap an exclusive one.
type BorrowConflictError struct {
	// Op is the borrow that was refused: "borrow" or "borrow mut".
	Op string
	// Readers is the number of shared borrows active at the time.
	Readers int
	// Writer reports whether an exclusive borrow was active.
	Writer bool
}

func (e *BorrowConflictError) Error() string {
	held := "mutably borrowed"
	if !e.Writer {
		held = fmt.Sprintf("borrowed by %d reader(s)", e.Readers)
	}
	return fmt.Sprintf("%v: %s refused, chain already %s", ErrBorrowConflict, e.Op, held)
}

func (e *BorrowConflictError) Unwrap() error {
	return ErrBorrowConflict
}

func checkIndex(index, bits int) error {
	if index < 0 || index >= bits {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, bits)
	}
	return nil
}
