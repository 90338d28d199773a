package chip8

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var stepArgRe = regexp.MustCompile("^([0-9]+)(d?)$")

// DebugConsole a console for debugging, you can execute some commands through stdio.
// commands:
//	s [N|Nd]:
//	  execute N step(s), Nd prints the machine after each step.
//	p [cpu|mem ADDR|display|keys|stack]:
//	  print.
//	br ADDR:
//	  set a break point.
//	r:
//	  reset.
//	q:
//	  quit.
type DebugConsole struct {
	*VMConsole
	in          *bufio.Reader
	out         io.Writer
	cycles      uint64
	breakpoints []uint16
}

// NewDebugConsole wraps a console with a command prompt on stdin and stdout.
func NewDebugConsole(c *VMConsole) *DebugConsole {
	return newDebugConsole(c, os.Stdin, os.Stdout)
}

func newDebugConsole(c *VMConsole, in io.Reader, out io.Writer) *DebugConsole {
	return &DebugConsole{
		VMConsole: c,
		in:        bufio.NewReader(in),
		out:       out,
	}
}

func (c *DebugConsole) Reset() error {
	c.cycles = 0
	return c.VMConsole.Reset()
}

func (c *DebugConsole) step() error {
	if _, err := c.VMConsole.Step(); err != nil {
		return err
	}
	c.cycles++
	return nil
}

func (c *DebugConsole) basePrint() {
	cpu := c.cpu
	fmt.Fprintln(c.out, "--------------------------------------------------")
	fmt.Fprintf(c.out, "Executed cycles: %d\n", c.cycles)
	fmt.Fprintln(c.out, "Last: "+cpu.lastExecution)
	fmt.Fprintf(c.out, "CPU: PC=0x%03x, I=0x%03x, SP=%d, DT=%d, ST=%d\n",
		cpu.pc, cpu.i, cpu.sp, cpu.timers.delay, cpu.timers.sound)
	for i, v := range cpu.v {
		fmt.Fprintf(c.out, "V%X=0x%02x ", i, v)
		if i%8 == 7 {
			fmt.Fprintln(c.out)
		}
	}
	if opcode, err := c.memory.read16(cpu.pc); err == nil {
		if s, ok := Disassemble(opcode); ok {
			fmt.Fprintf(c.out, "Next: 0x%04x %s\n", opcode, s)
		} else {
			fmt.Fprintf(c.out, "Next: 0x%04x (unsupported)\n", opcode)
		}
	}
}

func (c *DebugConsole) printMemory(args []string) {
	var address int
	if len(args) > 2 {
		if _, err := fmt.Sscanf(args[2], "0x%x", &address); err != nil || address < 0 || address >= memorySize {
			fmt.Fprintf(c.out, "Bad address %q\n", args[2])
			return
		}
	}
	for row := 0; row < 4; row++ {
		start := address + row*16
		if start >= memorySize {
			return
		}
		fmt.Fprintf(c.out, "0x%03x:", start)
		for i := start; i < start+16 && i < memorySize; i++ {
			fmt.Fprintf(c.out, " %02x", c.memory.data[i])
		}
		fmt.Fprintln(c.out)
	}
}

func (c *DebugConsole) printDisplay() {
	var b strings.Builder
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			if c.display.Pixel(x, y) {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	fmt.Fprint(c.out, b.String())
}

func (c *DebugConsole) printStack() {
	for i := 0; i < int(c.cpu.sp); i++ {
		fmt.Fprintf(c.out, "%2d: 0x%03x\n", i, c.cpu.stack[i])
	}
	fmt.Fprintf(c.out, "SP=%d\n", c.cpu.sp)
}

func (c *DebugConsole) printCommand(args []string) {
	if len(args) < 2 {
		c.basePrint()
		return
	}
	switch args[1] {
	case "c", "cpu":
		c.basePrint()
	case "m", "mem":
		c.printMemory(args)
	case "d", "display":
		c.printDisplay()
	case "k", "keys":
		fmt.Fprintf(c.out, "%v\n", c.keypad.State())
	case "st", "stack":
		c.printStack()
	default:
		fmt.Fprintf(c.out, "Unknown print target %s\n", args[1])
	}
}

func (c *DebugConsole) checkBreak() bool {
	for _, b := range c.breakpoints {
		if b == c.cpu.pc {
			fmt.Fprintf(c.out, "Break at: 0x%03x\n", b)
			return true
		}
	}
	return false
}

func (c *DebugConsole) stepCommand(args []string) (int, error) {
	num, verbose := 1, false
	if len(args) > 1 {
		m := stepArgRe.FindStringSubmatch(args[1])
		if m == nil {
			fmt.Fprintf(c.out, "Bad step count %q\n", args[1])
			return 0, nil
		}
		num, _ = strconv.Atoi(m[1])
		verbose = m[2] == "d"
	}
	cycles := 0
	for i := 0; i < num; i++ {
		err := c.step()
		if verbose {
			c.basePrint()
		}
		if err != nil {
			return cycles, err
		}
		cycles++
		if c.checkBreak() {
			break
		}
	}
	return cycles, nil
}

func (c *DebugConsole) breakPointCommand(args []string) {
	if len(args) < 2 {
		fmt.Fprintf(c.out, "Breakpoints: %x\n", c.breakpoints)
		return
	}
	var address uint16
	if _, err := fmt.Sscanf(args[1], "0x%x", &address); err != nil {
		fmt.Fprintf(c.out, "Bad address %q\n", args[1])
		return
	}
	c.breakpoints = append(c.breakpoints, address)
}

// Step reads a command and runs it. Quitting or closing stdin returns ErrClosed.
func (c *DebugConsole) Step() (int, error) {
	fmt.Fprintf(c.out, "Debugger mode, 'q' to quit \n>> ")
	line, err := c.in.ReadString('\n')
	if errors.Is(err, io.EOF) && line == "" {
		return 0, ErrClosed
	} else if err != nil && !errors.Is(err, io.EOF) {
		return 0, err
	}
	args := strings.Fields(line)
	if len(args) == 0 {
		args = []string{"s"}
	}
	switch args[0] {
	case "p", "print":
		c.printCommand(args)
	case "s", "step":
		cycles, err := c.stepCommand(args)
		c.basePrint() // Print data before it die.
		if err != nil {
			return cycles, err
		}
		fmt.Fprintf(c.out, "Executed %d cycles.\n", cycles)
		return cycles, nil
	case "br", "breakpoint":
		c.breakPointCommand(args)
	case "r", "reset":
		if err := c.Reset(); err != nil {
			return 0, err
		}
	case "q", "quit":
		fmt.Fprintln(c.out, "Quitting.")
		return 0, ErrClosed
	default:
		fmt.Fprintf(c.out, "Unknown command %s\n", args[0])
	}
	// step command was not executed.
	return 0, nil
}
