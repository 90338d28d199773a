package chip8

import (
	"fmt"
	"image"

	"github.com/golang/glog"
)

// Console is what a host drives: it steps the machine, shows frames and feeds keys.
type Console interface {
	// Step executes and returns the number of executed cycles.
	Step() (int, error)
	// Frame returns the display and whether it changed since the last call.
	Frame() (*image.RGBA, bool)
	// SetKeys replaces the held key state.
	SetKeys(keys [KeyCount]bool)
	// SetInput connects the source sampled while waiting for a key.
	SetInput(input Input)
	// SoundActive reports whether the buzzer should sound.
	SoundActive() bool
}

// VMConsole wires a CPU to its memory, display and keypad.
type VMConsole struct {
	cpu     *CPU
	memory  *Memory
	display *Display
	keypad  *Keypad
	program []byte
}

// NewConsole creates a console with the program image loaded, a DebugConsole if debug is set.
func NewConsole(program []byte, debug bool) (Console, error) {
	c, err := NewVMConsole(program)
	if err != nil {
		return nil, err
	}
	if debug {
		return NewDebugConsole(c), nil
	}
	return c, nil
}

// NewVMConsole creates a console with the program image loaded at 0x200.
func NewVMConsole(program []byte) (*VMConsole, error) {
	memory := NewMemory()
	display := NewDisplay()
	keypad := NewKeypad()
	c := &VMConsole{
		cpu:     NewCPU(memory, display, keypad),
		memory:  memory,
		display: display,
		keypad:  keypad,
		program: program,
	}
	if err := c.Reset(); err != nil {
		return nil, err
	}
	glog.Infof("Loaded %d bytes at 0x%03x", len(program), programStart)
	return c, nil
}

// Reset restores the power-on state and reloads the program image.
func (c *VMConsole) Reset() error {
	c.memory.reset()
	if err := c.memory.load(c.program); err != nil {
		return fmt.Errorf("failed to load program: %w", err)
	}
	c.display.Reset()
	c.keypad.Set([KeyCount]bool{})
	c.cpu.Reset()
	return nil
}

func (c *VMConsole) Step() (int, error) {
	if err := c.cpu.Step(); err != nil {
		return 0, err
	}
	return 1, nil
}

func (c *VMConsole) Frame() (*image.RGBA, bool) {
	return c.display.Frame()
}

func (c *VMConsole) SetKeys(keys [KeyCount]bool) {
	c.keypad.Set(keys)
}

func (c *VMConsole) SetInput(input Input) {
	c.cpu.SetInput(input)
}

func (c *VMConsole) SoundActive() bool {
	return c.cpu.SoundActive()
}

// Display returns the framebuffer.
func (c *VMConsole) Display() *Display {
	return c.display
}
