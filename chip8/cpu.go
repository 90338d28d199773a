package chip8

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/golang/glog"
)

const (
	registerCount = 16
	stackDepth    = 16
	vf            = 0xF // VF, carry and collision flag
)

// Input is the host's keyboard, sampled while the machine waits for a key.
type Input interface {
	// PollKeys returns the current logical keys and false once the host is closed.
	PollKeys() (keys [KeyCount]bool, open bool)
}

// CPU is the instruction engine of the machine. It exclusively owns the
// register file, the stack and the timers, and drives memory, display and
// keypad while executing.
//
// References:
//	http://devernay.free.fr/hacks/chip8/C8TECH10.HTM
//	https://en.wikipedia.org/wiki/CHIP-8
type CPU struct {
	v             [registerCount]byte // General purpose registers V0-VF
	i             uint16              // Index register
	pc            uint16              // Program counter
	stack         [stackDepth]uint16  // Return addresses
	sp            byte                // Stack pointer, number of entries in use
	timers        timers
	memory        *Memory
	display       *Display
	keypad        *Keypad
	input         Input
	random        func() byte
	lastExecution string // For debug
}

// NewCPU creates a new CPU.
func NewCPU(memory *Memory, display *Display, keypad *Keypad) *CPU {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	c := &CPU{
		memory:  memory,
		display: display,
		keypad:  keypad,
		random:  func() byte { return byte(r.Intn(256)) },
	}
	c.Reset()
	return c
}

// Reset clears registers, stack and timers and points the program counter at program start.
func (c *CPU) Reset() {
	c.v = [registerCount]byte{}
	c.i = 0
	c.pc = programStart
	c.stack = [stackDepth]uint16{}
	c.sp = 0
	c.timers = timers{}
	c.lastExecution = ""
}

// SetInput connects the source sampled by the key wait instruction.
func (c *CPU) SetInput(input Input) {
	c.input = input
}

// SoundActive reports whether the sound timer is running.
func (c *CPU) SoundActive() bool {
	return c.timers.sound > 0
}

// push pushes a return address.
func (c *CPU) push(address uint16) error {
	if int(c.sp) >= stackDepth {
		return fmt.Errorf("push 0x%03x: %w", address, ErrStackOverflow)
	}
	c.stack[c.sp] = address
	c.sp++
	return nil
}

// pop pops a return address.
func (c *CPU) pop() (uint16, error) {
	if c.sp == 0 {
		return 0, ErrStackUnderflow
	}
	c.sp--
	return c.stack[c.sp], nil
}

// skipIf skips the next instruction when cond holds.
func (c *CPU) skipIf(cond bool) {
	if cond {
		c.pc += 2
	}
}

// JP - Jump to nnn.
func (c *CPU) jp(ins instruction) error {
	c.pc = ins.nnn
	return nil
}

// ADD Vx, Vy - Add with carry into VF.
func (c *CPU) addCarry(ins instruction) error {
	sum := uint16(c.v[ins.x]) + uint16(c.v[ins.y])
	c.v[ins.x] = byte(sum)
	if sum > 0xFF {
		c.v[vf] = 1
	} else {
		c.v[vf] = 0
	}
	return nil
}

// DRW - Draw n rows of the sprite at I to (Vx, Vy), VF set on collision.
func (c *CPU) drw(ins instruction) error {
	sprite, err := c.memory.span(c.i, int(ins.n))
	if err != nil {
		return err
	}
	collision, err := c.display.draw(c.v[ins.x], c.v[ins.y], sprite)
	if err != nil {
		return err
	}
	if collision {
		c.v[vf] = 1
	} else {
		c.v[vf] = 0
	}
	return nil
}

// LD Vx, K - Block until a key is newly pressed and store it in Vx.
// The host is sampled repeatedly, nothing else executes meanwhile.
func (c *CPU) waitKey(ins instruction) error {
	if c.input == nil {
		return ErrNoInput
	}
	prev := c.keypad.State()
	for {
		keys, open := c.input.PollKeys()
		if !open {
			return ErrClosed
		}
		c.keypad.Set(keys)
		if key, ok := c.keypad.newlyPressed(prev); ok {
			c.v[ins.x] = key
			return nil
		}
		prev = keys
	}
}

// LD B, Vx - Store the decimal digits of Vx at I, I+1 and I+2.
func (c *CPU) storeBCD(ins instruction) error {
	digits, err := c.memory.span(c.i, 3)
	if err != nil {
		return err
	}
	x := c.v[ins.x]
	digits[0] = x / 100
	digits[1] = x % 100 / 10
	digits[2] = x % 10
	return nil
}

// LD Vx, [I] - Read V0 through Vx from memory starting at I. I is unchanged.
func (c *CPU) loadRegisters(ins instruction) error {
	data, err := c.memory.span(c.i, int(ins.x)+1)
	if err != nil {
		return err
	}
	copy(c.v[:], data)
	return nil
}

// execute runs a decoded instruction. The program counter already points at the next instruction.
func (c *CPU) execute(ins instruction) error {
	switch ins.kind {
	case jump:
		return c.jp(ins)
	case skipEqual:
		c.skipIf(c.v[ins.x] == ins.nn)
	case skipNotEqual:
		c.skipIf(c.v[ins.x] != ins.nn)
	case load:
		c.v[ins.x] = ins.nn
	case add:
		c.v[ins.x] += ins.nn
	case and:
		c.v[ins.x] &= c.v[ins.y]
	case addCarry:
		return c.addCarry(ins)
	case loadIndex:
		c.i = ins.nnn
	case random:
		c.v[ins.x] = c.random() & ins.nn
	case draw:
		return c.drw(ins)
	case skipKeyPressed:
		c.skipIf(c.keypad.pressed(c.v[ins.x]))
	case skipKeyNotPressed:
		c.skipIf(!c.keypad.pressed(c.v[ins.x]))
	case waitKey:
		return c.waitKey(ins)
	case loadSoundTimer:
		c.timers.sound = c.v[ins.x]
	case loadGlyph:
		c.i = uint16(c.v[ins.x]) * glyphSize
	case storeBCD:
		return c.storeBCD(ins)
	case loadRegisters:
		return c.loadRegisters(ins)
	default:
		return &UnsupportedInstructionError{Opcode: ins.opcode, Address: c.pc - 2}
	}
	return nil
}

// Step performs one cycle - fetch, decode, execute, then ticks the timers.
// A failed cycle leaves the program counter on the failing instruction and does not tick.
func (c *CPU) Step() error {
	address := c.pc
	opcode, err := c.memory.read16(address)
	if err != nil {
		return fmt.Errorf("fetch at 0x%03x: %w", address, err)
	}
	ins, ok := decode(opcode)
	if !ok {
		return &UnsupportedInstructionError{Opcode: opcode, Address: address}
	}
	c.pc += 2
	// Save debug string.
	c.lastExecution = fmt.Sprintf("PC=0x%03x, I=0x%03x, opcode=0x%04x, %s", address, c.i, opcode, ins)
	if glog.V(2) {
		glog.Info(c.lastExecution)
	}
	if err := c.execute(ins); err != nil {
		c.pc = address
		return err
	}
	if c.timers.tick() {
		glog.V(1).Infof("Sound timer expired at PC=0x%03x", address)
	}
	return nil
}
