// Package shiftreg drives cascades of 8-bit shift registers with three
// control lines: clock, latch and one data line per direction.
//
// An output chain (SIPO, 74HC595 class) shifts a buffered bit-vector out and
// latches it onto the parallel outputs. An input chain (PISO, 74HC165 class)
// latches the parallel inputs and shifts them into a buffer. A dual chain
// does both over shared clock and latch lines.
//
// Logical pin i of a chain of N chips is bit i of its buffer, 0 <= i < N*8.
// Bit 0 is the first output (or input) of the chip closest to the
// controller.
//
// Nothing touches the wire except Update. Pin writes only change the buffer
// and pin reads only see what the last Update captured.
//
// # Line convention
//
// Clock and latch idle low and are pulsed by driving them high then low.
// The output data level is set before the clock rises. Parts whose latch
// input is active low (the 74HC165 PL pin) are wired through a line that
// inverts, for example a gpiocdev line requested with AsActiveLow.
//
// # Sharing a chain
//
// Many pin handles refer to one chain through a Shared cell. Reads take a
// shared borrow, writes and Update take an exclusive one. Overlapping an
// exclusive borrow with any other borrow panics with a *BorrowConflictError.
// The cell is not a lock: callers on several goroutines must serialise
// access to the whole chain themselves.
package shiftreg
