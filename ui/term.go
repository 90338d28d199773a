//go:build linux || darwin || freebsd || netbsd || openbsd

package ui

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/golang/glog"
	"golang.org/x/sys/unix"

	"github.com/jyane/jchip8/chip8"
)

// Terminals only report key presses, so a key counts as held for a few
// frames after its last character arrives. Auto-repeat keeps it held.
const holdFrames = 6

const escape = 0x1B

// terminal renders the display with half block characters on a raw mode
// terminal and reads keys from stdin.
type terminal struct {
	fd      int
	restore unix.Termios
	out     *bufio.Writer
	input   chan byte
	signals chan os.Signal
	held    [chip8.KeyCount]int
	closed  bool
	console chip8.Console
	frame   time.Duration
}

func enterRawTerm(fd int) (*unix.Termios, error) {
	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, err
	}
	restore := *termios
	termstate := *termios

	termstate.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.INLCR | unix.IXON
	termstate.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN
	termstate.Cflag &^= unix.CSIZE | unix.PARENB
	termstate.Cflag |= unix.CS8

	// Reads block until one byte arrives, the reader goroutine does the waiting.
	termstate.Cc[unix.VMIN] = 1
	termstate.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &termstate); err != nil {
		return nil, err
	}
	return &restore, nil
}

func newTerminal(console chip8.Console) (*terminal, error) {
	fd := int(os.Stdin.Fd())
	restore, err := enterRawTerm(fd)
	if err != nil {
		return nil, fmt.Errorf("Failed to enter raw mode: %w", err)
	}
	t := &terminal{
		fd:      fd,
		restore: *restore,
		out:     bufio.NewWriter(os.Stdout),
		input:   make(chan byte, 64),
		signals: make(chan os.Signal, 1),
		console: console,
		frame:   time.Second / frameRate,
	}
	signal.Notify(t.signals, os.Interrupt)
	go t.read()
	// Clear the screen, hide the cursor.
	t.out.WriteString("\x1b[2J\x1b[?25l")
	return t, nil
}

// read forwards stdin to the input channel until stdin fails.
func (t *terminal) read() {
	r := bufio.NewReader(os.Stdin)
	for {
		b, err := r.ReadByte()
		if err != nil {
			close(t.input)
			return
		}
		t.input <- b
	}
}

func (t *terminal) close() {
	signal.Stop(t.signals)
	t.out.WriteString("\x1b[?25h\r\n")
	t.out.Flush()
	if err := unix.IoctlSetTermios(t.fd, ioctlSetTermios, &t.restore); err != nil {
		glog.Errorf("Failed to restore the terminal: %v", err)
	}
}

// pump ages held keys and applies everything typed since the last frame.
func (t *terminal) pump() {
	for i := range t.held {
		if t.held[i] > 0 {
			t.held[i]--
		}
	}
	for {
		select {
		case <-t.signals:
			t.closed = true
		case b, ok := <-t.input:
			if !ok || b == escape {
				t.closed = true
			} else if k, ok := keyFromChar(b); ok {
				t.held[k] = holdFrames
			}
		default:
			return
		}
		if t.closed {
			return
		}
	}
}

func (t *terminal) keys() [chip8.KeyCount]bool {
	var keys [chip8.KeyCount]bool
	for i, n := range t.held {
		keys[i] = n > 0
	}
	return keys
}

// present draws two pixel rows per text line when the frame changed.
func (t *terminal) present() {
	img, ok := t.console.Frame()
	if !ok {
		return
	}
	on := func(x, y int) bool {
		return img.RGBAAt(x, y).R != 0
	}
	t.out.WriteString("\x1b[H")
	for y := 0; y < chip8.Height; y += 2 {
		for x := 0; x < chip8.Width; x++ {
			top, bottom := on(x, y), on(x, y+1)
			switch {
			case top && bottom:
				t.out.WriteString("█")
			case top:
				t.out.WriteString("▀")
			case bottom:
				t.out.WriteString("▄")
			default:
				t.out.WriteByte(' ')
			}
		}
		t.out.WriteString("\r\n")
	}
	t.out.WriteString("Esc to quit\r\n")
	t.out.Flush()
}

// PollKeys is called while the machine waits for a key, one frame per call.
func (t *terminal) PollKeys() ([chip8.KeyCount]bool, bool) {
	time.Sleep(t.frame)
	t.pump()
	t.present()
	return t.keys(), !t.closed
}

// StartTerminal runs the console on the terminal until Esc or Ctrl-C.
func StartTerminal(console chip8.Console, opts Options) error {
	t, err := newTerminal(console)
	if err != nil {
		return err
	}
	defer t.close()
	console.SetInput(t)
	n := cyclesPerFrame(opts.Hz)
	ticker := time.NewTicker(t.frame)
	defer ticker.Stop()
	for !t.closed {
		for i := 0; i < n; i++ {
			console.SetKeys(t.keys())
			if _, err := console.Step(); err != nil {
				if errors.Is(err, chip8.ErrClosed) {
					return nil
				}
				return err
			}
		}
		t.pump()
		t.present()
		if opts.Hz > 0 {
			<-ticker.C
		}
	}
	return nil
}
