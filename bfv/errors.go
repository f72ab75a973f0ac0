package bfv

import "fmt"

// Error is the single error type produced by this package, mirroring
// ring.Error: every invariant violation aborts the operation (spec.md §4.7).
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

func newLengthMismatchError(got, want int) *Error {
	return &Error{msg: fmt.Sprintf("bfv: length mismatch: got %d, want %d", got, want)}
}

func newLevelOutOfRangeError(level, maxLevel int) *Error {
	return &Error{msg: fmt.Sprintf("bfv: level %d out of range [0, %d]", level, maxLevel)}
}

func newPlaintextModulusError(t uint64, N uint64) *Error {
	return &Error{msg: fmt.Sprintf("bfv: plaintext modulus %d is not NTT-friendly for N=%d", t, N)}
}
