package rlwe

import "fmt"

// Error is the single error type produced by this package (spec.md §4.7).
type Error struct {
	msg string
}

func (e *Error) Error() string { return e.msg }

func newContextMismatchError() *Error {
	return &Error{msg: "rlwe: operands do not share a context"}
}

func newRepresentationMismatchError() *Error {
	return &Error{msg: "rlwe: operand is not in the expected representation"}
}

func newLevelOutOfRangeError(level, maxLevel int) *Error {
	return &Error{msg: fmt.Sprintf("rlwe: level %d out of range [0, %d]", level, maxLevel)}
}
