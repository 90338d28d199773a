package chip8

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by Step when the host closed its input while the
	// machine was waiting for a key. It ends a run without being a failure.
	ErrClosed = errors.New("input closed")
	// ErrNoInput is returned when a key wait starts on a console without an input source.
	ErrNoInput = errors.New("no input source connected")

	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack underflow")
)

// Address spaces reported by AddressOutOfRangeError.
const (
	SpaceMemory  = "memory"
	SpaceDisplay = "display"
)

// AddressOutOfRangeError reports an access past the end of memory or the framebuffer.
type AddressOutOfRangeError struct {
	Space   string
	Address int
}

func (e *AddressOutOfRangeError) Error() string {
	return fmt.Sprintf("%s address out of range: 0x%04x", e.Space, e.Address)
}

// UnsupportedInstructionError reports an opcode the engine has no behavior for.
type UnsupportedInstructionError struct {
	Opcode  uint16
	Address uint16
}

func (e *UnsupportedInstructionError) Error() string {
	return fmt.Sprintf("Tried to execute unsupported instruction: opcode=0x%04x, address=0x%03x", e.Opcode, e.Address)
}

// ImageTooLargeError reports a program image that does not fit in program space.
type ImageTooLargeError struct {
	Size     int
	Capacity int
}

func (e *ImageTooLargeError) Error() string {
	return fmt.Sprintf("program image too large: %d bytes, capacity %d bytes", e.Size, e.Capacity)
}
