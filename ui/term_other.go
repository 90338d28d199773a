//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package ui

import (
	"errors"

	"github.com/jyane/jchip8/chip8"
)

// StartTerminal is only available on unix terminals.
func StartTerminal(console chip8.Console, opts Options) error {
	return errors.New("terminal frontend is not supported on this platform")
}
