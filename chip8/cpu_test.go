package chip8

import (
	"errors"
	"testing"
)

// mockInput replays key samples, then reports the host as closed.
type mockInput struct {
	samples [][KeyCount]bool
	polls   int
}

func (in *mockInput) PollKeys() ([KeyCount]bool, bool) {
	if in.polls >= len(in.samples) {
		return [KeyCount]bool{}, false
	}
	s := in.samples[in.polls]
	in.polls++
	return s, true
}

func keys(held ...int) [KeyCount]bool {
	var k [KeyCount]bool
	for _, h := range held {
		k[h] = true
	}
	return k
}

func assemble(program ...uint16) []byte {
	b := make([]byte, 0, len(program)*2)
	for _, op := range program {
		b = append(b, byte(op>>8), byte(op))
	}
	return b
}

func newTestCPU(t *testing.T, program ...uint16) *CPU {
	t.Helper()
	m := NewMemory()
	if err := m.load(assemble(program...)); err != nil {
		t.Fatalf("load: %v", err)
	}
	c := NewCPU(m, NewDisplay(), NewKeypad())
	c.random = func() byte { return 0xFF }
	return c
}

func step(t *testing.T, c *CPU) {
	t.Helper()
	if err := c.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
}

func TestAddWithCarryAllOperands(t *testing.T) {
	c := newTestCPU(t, 0x8124)
	for a := 0; a < 256; a++ {
		for b := 0; b < 256; b++ {
			c.pc = programStart
			c.v[1] = byte(a)
			c.v[2] = byte(b)
			step(t, c)
			if want := byte((a + b) % 256); c.v[1] != want {
				t.Fatalf("%d+%d: V1 got=0x%02x, want=0x%02x", a, b, c.v[1], want)
			}
			var wantF byte
			if a+b > 255 {
				wantF = 1
			}
			if c.v[vf] != wantF {
				t.Fatalf("%d+%d: VF got=%d, want=%d", a, b, c.v[vf], wantF)
			}
		}
	}
}

func TestInstructions(t *testing.T) {
	for _, test := range []struct {
		name    string
		program []uint16
		setup   func(c *CPU)
		check   func(t *testing.T, c *CPU)
		wantPC  uint16
	}{
		{
			name:    "JP",
			program: []uint16{0x1234},
			wantPC:  0x234,
		},
		{
			name:    "SE Vx, nn skips when equal",
			program: []uint16{0x3342},
			setup:   func(c *CPU) { c.v[3] = 0x42 },
			wantPC:  0x204,
		},
		{
			name:    "SE Vx, nn does not skip when different",
			program: []uint16{0x3342},
			setup:   func(c *CPU) { c.v[3] = 0x41 },
			wantPC:  0x202,
		},
		{
			name:    "SNE Vx, nn skips when different",
			program: []uint16{0x4342},
			setup:   func(c *CPU) { c.v[3] = 0x41 },
			wantPC:  0x204,
		},
		{
			name:    "SNE Vx, nn does not skip when equal",
			program: []uint16{0x4342},
			setup:   func(c *CPU) { c.v[3] = 0x42 },
			wantPC:  0x202,
		},
		{
			name:    "LD Vx, nn",
			program: []uint16{0x6A7F},
			check: func(t *testing.T, c *CPU) {
				if c.v[0xA] != 0x7F {
					t.Errorf("VA: got=0x%02x, want=0x7f", c.v[0xA])
				}
			},
			wantPC: 0x202,
		},
		{
			name:    "ADD Vx, nn wraps and leaves VF",
			program: []uint16{0x730A},
			setup: func(c *CPU) {
				c.v[3] = 250
				c.v[vf] = 0xAB
			},
			check: func(t *testing.T, c *CPU) {
				if c.v[3] != 4 {
					t.Errorf("V3: got=%d, want=4", c.v[3])
				}
				if c.v[vf] != 0xAB {
					t.Errorf("VF: got=0x%02x, want=0xab", c.v[vf])
				}
			},
			wantPC: 0x202,
		},
		{
			name:    "AND Vx, Vy",
			program: []uint16{0x8452},
			setup: func(c *CPU) {
				c.v[4] = 0b1100_1010
				c.v[5] = 0b1010_0110
			},
			check: func(t *testing.T, c *CPU) {
				if c.v[4] != 0b1000_0010 {
					t.Errorf("V4: got=0b%08b, want=0b10000010", c.v[4])
				}
				if c.v[5] != 0b1010_0110 {
					t.Errorf("V5 changed: got=0b%08b", c.v[5])
				}
			},
			wantPC: 0x202,
		},
		{
			name:    "ADD VF, Vy keeps the carry in VF",
			program: []uint16{0x8F14},
			setup: func(c *CPU) {
				c.v[vf] = 0xFF
				c.v[1] = 0x02
			},
			check: func(t *testing.T, c *CPU) {
				if c.v[vf] != 1 {
					t.Errorf("VF: got=%d, want=1", c.v[vf])
				}
			},
			wantPC: 0x202,
		},
		{
			name:    "LD I, nnn",
			program: []uint16{0xA123},
			check: func(t *testing.T, c *CPU) {
				if c.i != 0x123 {
					t.Errorf("I: got=0x%03x, want=0x123", c.i)
				}
			},
			wantPC: 0x202,
		},
		{
			name:    "RND Vx, nn masks the random byte",
			program: []uint16{0xC33C},
			setup:   func(c *CPU) { c.random = func() byte { return 0xA5 } },
			check: func(t *testing.T, c *CPU) {
				if c.v[3] != 0x24 {
					t.Errorf("V3: got=0x%02x, want=0x24", c.v[3])
				}
			},
			wantPC: 0x202,
		},
		{
			name:    "SKP Vx skips when held",
			program: []uint16{0xE19E},
			setup: func(c *CPU) {
				c.v[1] = 0xC
				c.keypad.Set(keys(0xC))
			},
			wantPC: 0x204,
		},
		{
			name:    "SKP Vx does not skip when up",
			program: []uint16{0xE19E},
			setup: func(c *CPU) {
				c.v[1] = 0xC
				c.keypad.Set(keys(0xB))
			},
			wantPC: 0x202,
		},
		{
			name:    "SKP Vx never skips for values above 0xF",
			program: []uint16{0xE19E},
			setup: func(c *CPU) {
				c.v[1] = 0x10
				c.keypad.Set(keys(0x0))
			},
			wantPC: 0x202,
		},
		{
			name:    "SKNP Vx skips when up",
			program: []uint16{0xE1A1},
			setup:   func(c *CPU) { c.v[1] = 0x3 },
			wantPC:  0x204,
		},
		{
			name:    "SKNP Vx does not skip when held",
			program: []uint16{0xE1A1},
			setup: func(c *CPU) {
				c.v[1] = 0x3
				c.keypad.Set(keys(0x3))
			},
			wantPC: 0x202,
		},
		{
			name:    "SKNP Vx always skips for values above 0xF",
			program: []uint16{0xE1A1},
			setup: func(c *CPU) {
				c.v[1] = 0x10
				c.keypad.Set(keys(0x0, 0x1, 0x2, 0x3, 0x4, 0x5, 0x6, 0x7, 0x8, 0x9, 0xA, 0xB, 0xC, 0xD, 0xE, 0xF))
			},
			wantPC: 0x204,
		},
		{
			name:    "LD ST, Vx then one tick",
			program: []uint16{0xF518},
			setup:   func(c *CPU) { c.v[5] = 10 },
			check: func(t *testing.T, c *CPU) {
				if c.timers.sound != 9 {
					t.Errorf("sound timer: got=%d, want=9", c.timers.sound)
				}
				if !c.SoundActive() {
					t.Errorf("SoundActive: got=false, want=true")
				}
			},
			wantPC: 0x202,
		},
		{
			name:    "LD F, Vx",
			program: []uint16{0xF229},
			setup:   func(c *CPU) { c.v[2] = 0xA },
			check: func(t *testing.T, c *CPU) {
				if c.i != 50 {
					t.Errorf("I: got=%d, want=50", c.i)
				}
			},
			wantPC: 0x202,
		},
		{
			name:    "LD B, Vx",
			program: []uint16{0xF533},
			setup: func(c *CPU) {
				c.v[5] = 234
				c.i = 0x300
			},
			check: func(t *testing.T, c *CPU) {
				got := c.memory.data[0x300:0x303]
				if got[0] != 2 || got[1] != 3 || got[2] != 4 {
					t.Errorf("BCD: got=%v, want=[2 3 4]", got)
				}
				if c.i != 0x300 {
					t.Errorf("I: got=0x%03x, want=0x300", c.i)
				}
			},
			wantPC: 0x202,
		},
		{
			name:    "LD Vx, [I]",
			program: []uint16{0xF265},
			setup: func(c *CPU) {
				c.i = 0x400
				copy(c.memory.data[0x400:], []byte{9, 8, 7, 6})
				c.v[3] = 0x33
			},
			check: func(t *testing.T, c *CPU) {
				if c.v[0] != 9 || c.v[1] != 8 || c.v[2] != 7 {
					t.Errorf("V0-V2: got=%v, want=[9 8 7]", c.v[:3])
				}
				if c.v[3] != 0x33 {
					t.Errorf("V3: got=0x%02x, want=0x33", c.v[3])
				}
				if c.i != 0x400 {
					t.Errorf("I: got=0x%03x, want=0x400", c.i)
				}
			},
			wantPC: 0x202,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			c := newTestCPU(t, test.program...)
			if test.setup != nil {
				test.setup(c)
			}
			step(t, c)
			if c.pc != test.wantPC {
				t.Errorf("pc: got=0x%03x, want=0x%03x", c.pc, test.wantPC)
			}
			if test.check != nil {
				test.check(t, c)
			}
		})
	}
}

func TestUnsupportedInstructions(t *testing.T) {
	for _, opcode := range []uint16{
		0x0000, 0x00E0, 0x00EE, 0x0123,
		0x2345,
		0x5120,
		0x8120, 0x8121, 0x8123, 0x8125, 0x8126, 0x8127, 0x812E, 0x8128,
		0x9120,
		0xB123,
		0xE100, 0xE19F,
		0xF115, 0xF11E, 0xF155, 0xF107, 0xF100,
	} {
		c := newTestCPU(t, opcode)
		c.timers = timers{delay: 5, sound: 5}
		err := c.Step()
		var unsupported *UnsupportedInstructionError
		if !errors.As(err, &unsupported) {
			t.Fatalf("0x%04x: got err=%v, want UnsupportedInstructionError", opcode, err)
		}
		if unsupported.Opcode != opcode || unsupported.Address != programStart {
			t.Errorf("0x%04x: got opcode=0x%04x address=0x%03x", opcode, unsupported.Opcode, unsupported.Address)
		}
		if c.pc != programStart {
			t.Errorf("0x%04x: pc got=0x%03x, want=0x200", opcode, c.pc)
		}
		if c.timers.delay != 5 || c.timers.sound != 5 {
			t.Errorf("0x%04x: timers ticked: %+v", opcode, c.timers)
		}
	}
}

func TestAddressOutOfRange(t *testing.T) {
	for _, test := range []struct {
		name    string
		program []uint16
		setup   func(c *CPU)
		want    int
	}{
		{
			name:    "fetch at the last byte",
			program: []uint16{0x1FFF},
			want:    0x1000,
		},
		{
			name:    "LD B, Vx past the end",
			program: []uint16{0xF033},
			setup:   func(c *CPU) { c.i = 0xFFE },
			want:    0x1000,
		},
		{
			name:    "LD Vx, [I] past the end",
			program: []uint16{0xF265},
			setup:   func(c *CPU) { c.i = 0xFFF },
			want:    0x1000,
		},
		{
			name:    "DRW reading sprite rows past the end",
			program: []uint16{0xD015},
			setup:   func(c *CPU) { c.i = 0xFFE },
			want:    0x1000,
		},
		{
			name:    "LD B, Vx with I beyond memory",
			program: []uint16{0xF033},
			setup:   func(c *CPU) { c.i = 0x1FFF },
			want:    0x1FFF,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			c := newTestCPU(t, test.program...)
			if test.setup != nil {
				test.setup(c)
			}
			var err error
			for i := 0; i < 2 && err == nil; i++ {
				err = c.Step()
			}
			var oor *AddressOutOfRangeError
			if !errors.As(err, &oor) {
				t.Fatalf("got err=%v, want AddressOutOfRangeError", err)
			}
			if oor.Space != SpaceMemory || oor.Address != test.want {
				t.Errorf("got %s 0x%04x, want memory 0x%04x", oor.Space, oor.Address, test.want)
			}
		})
	}
}

func TestFetchLastInstruction(t *testing.T) {
	c := newTestCPU(t, 0x1FFE)
	c.memory.data[0xFFE] = 0x1F
	c.memory.data[0xFFF] = 0xFE
	step(t, c)
	step(t, c)
	if c.pc != 0xFFE {
		t.Errorf("pc: got=0x%03x, want=0xffe", c.pc)
	}
}

func TestDrawGlyph(t *testing.T) {
	// I = glyph 0, draw 5 rows at (V0, V1) = (0, 0), twice.
	c := newTestCPU(t, 0xA000, 0xD015, 0xD015)
	step(t, c)
	step(t, c)
	if c.v[vf] != 0 {
		t.Errorf("VF after first draw: got=%d, want=0", c.v[vf])
	}
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			want := y < glyphSize && x < 8 && glyphs[0][y]&(0x80>>x) != 0
			if got := c.display.Pixel(x, y); got != want {
				t.Fatalf("pixel (%d, %d): got=%v, want=%v", x, y, got, want)
			}
		}
	}
	step(t, c)
	if c.v[vf] != 1 {
		t.Errorf("VF after second draw: got=%d, want=1", c.v[vf])
	}
	for i, on := range c.display.pixels {
		if on {
			t.Fatalf("pixel %d still set after redraw", i)
		}
	}
	if c.i != 0 {
		t.Errorf("I: got=0x%03x, want=0", c.i)
	}
}

func TestDrawOutsideDisplay(t *testing.T) {
	c := newTestCPU(t, 0xA000, 0xD015)
	c.v[0] = 60
	c.v[1] = 31
	c.v[vf] = 0x55
	step(t, c)
	err := c.Step()
	var oor *AddressOutOfRangeError
	if !errors.As(err, &oor) || oor.Space != SpaceDisplay {
		t.Fatalf("got err=%v, want display AddressOutOfRangeError", err)
	}
	if oor.Address != 60+32*Width {
		t.Errorf("address: got=%d, want=%d", oor.Address, 60+32*Width)
	}
	for i, on := range c.display.pixels {
		if on {
			t.Fatalf("pixel %d set by a failed draw", i)
		}
	}
	if c.v[vf] != 0x55 {
		t.Errorf("VF: got=0x%02x, want=0x55", c.v[vf])
	}
	if c.pc != 0x202 {
		t.Errorf("pc: got=0x%03x, want=0x202", c.pc)
	}
}

func TestWaitKey(t *testing.T) {
	c := newTestCPU(t, 0xF30A)
	c.keypad.Set(keys(0x2))
	c.timers.delay = 10
	in := &mockInput{samples: [][KeyCount]bool{
		keys(0x2),
		keys(),
		keys(0x2, 0x7),
	}}
	c.SetInput(in)
	step(t, c)
	// Key 2 was held when the wait began, it only counts once released and pressed again.
	if c.v[3] != 0x2 {
		t.Errorf("V3: got=0x%x, want=0x2", c.v[3])
	}
	if in.polls != 3 {
		t.Errorf("polls: got=%d, want=3", in.polls)
	}
	if c.timers.delay != 9 {
		t.Errorf("delay timer: got=%d, want=9", c.timers.delay)
	}
	if c.pc != 0x202 {
		t.Errorf("pc: got=0x%03x, want=0x202", c.pc)
	}
	if got := c.keypad.State(); got != keys(0x2, 0x7) {
		t.Errorf("keypad: got=%v, want keys 2 and 7", got)
	}
}

func TestWaitKeyLowestNewKey(t *testing.T) {
	c := newTestCPU(t, 0xF00A)
	c.SetInput(&mockInput{samples: [][KeyCount]bool{keys(0xE, 0x5, 0x9)}})
	step(t, c)
	if c.v[0] != 0x5 {
		t.Errorf("V0: got=0x%x, want=0x5", c.v[0])
	}
}

func TestWaitKeyClosed(t *testing.T) {
	c := newTestCPU(t, 0xF30A)
	c.timers.sound = 4
	c.SetInput(&mockInput{samples: [][KeyCount]bool{keys(), keys()}})
	if err := c.Step(); !errors.Is(err, ErrClosed) {
		t.Fatalf("got err=%v, want ErrClosed", err)
	}
	if c.pc != programStart {
		t.Errorf("pc: got=0x%03x, want=0x200", c.pc)
	}
	if c.timers.sound != 4 {
		t.Errorf("sound timer: got=%d, want=4", c.timers.sound)
	}
}

func TestWaitKeyWithoutInput(t *testing.T) {
	c := newTestCPU(t, 0xF30A)
	if err := c.Step(); !errors.Is(err, ErrNoInput) {
		t.Fatalf("got err=%v, want ErrNoInput", err)
	}
}

func TestTimersTickPerCycle(t *testing.T) {
	c := newTestCPU(t, 0x1200)
	c.timers = timers{delay: 2, sound: 1}
	step(t, c)
	if c.timers != (timers{delay: 1, sound: 0}) {
		t.Fatalf("after 1 cycle: got=%+v", c.timers)
	}
	if c.SoundActive() {
		t.Errorf("SoundActive: got=true, want=false")
	}
	step(t, c)
	step(t, c)
	if c.timers != (timers{}) {
		t.Fatalf("after 3 cycles: got=%+v, want zero", c.timers)
	}
}

func TestTimerTickReportsExpiry(t *testing.T) {
	tm := timers{sound: 2}
	if tm.tick() {
		t.Errorf("2 -> 1 reported expiry")
	}
	if !tm.tick() {
		t.Errorf("1 -> 0 did not report expiry")
	}
	if tm.tick() {
		t.Errorf("0 -> 0 reported expiry")
	}
}

func TestStack(t *testing.T) {
	c := newTestCPU(t)
	if _, err := c.pop(); !errors.Is(err, ErrStackUnderflow) {
		t.Fatalf("pop on empty: got err=%v, want ErrStackUnderflow", err)
	}
	for i := 0; i < stackDepth; i++ {
		if err := c.push(uint16(0x200 + 2*i)); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if err := c.push(0x300); !errors.Is(err, ErrStackOverflow) {
		t.Fatalf("push on full: got err=%v, want ErrStackOverflow", err)
	}
	for i := stackDepth - 1; i >= 0; i-- {
		got, err := c.pop()
		if err != nil {
			t.Fatalf("pop %d: %v", i, err)
		}
		if want := uint16(0x200 + 2*i); got != want {
			t.Fatalf("pop %d: got=0x%03x, want=0x%03x", i, got, want)
		}
	}
}
