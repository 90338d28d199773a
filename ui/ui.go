package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/golang/glog"

	"github.com/jyane/jchip8/chip8"
)

const frameRate = 60

// Options configures a frontend.
type Options struct {
	Width  int
	Height int
	// Hz is the number of cycles executed per second, 0 or less runs unthrottled.
	Hz   int
	Mute bool
}

// host is the window side of the machine: it presents frames and samples the keyboard.
type host struct {
	window  *glfw.Window
	screen  *screen
	console chip8.Console
	audio   *audio
}

// present uploads the frame if it changed, redraws and swaps buffers.
func (h *host) present() {
	if img, ok := h.console.Frame(); ok {
		h.screen.updateTexture(img)
	}
	w, ht := h.window.GetFramebufferSize()
	gl.Viewport(0, 0, int32(w), int32(ht))
	h.screen.draw()
	h.window.SwapBuffers()
	if h.audio != nil {
		h.audio.set(h.console.SoundActive())
	}
}

// PollKeys is called while the machine waits for a key. It keeps the window
// alive at frame rate until the keyboard changes or the window closes.
func (h *host) PollKeys() ([chip8.KeyCount]bool, bool) {
	glfw.WaitEventsTimeout(1.0 / frameRate)
	h.present()
	return getKeys(h.window), !h.window.ShouldClose()
}

func (h *host) mainLoop(hz int) error {
	n := cyclesPerFrame(hz)
	ticker := time.NewTicker(time.Second / frameRate)
	defer ticker.Stop()
	for !h.window.ShouldClose() {
		for i := 0; i < n; i++ {
			h.console.SetKeys(getKeys(h.window))
			if _, err := h.console.Step(); err != nil {
				return err
			}
		}
		h.present()
		glfw.PollEvents()
		if hz > 0 {
			<-ticker.C
		}
	}
	return nil
}

// Start opens a window and runs the console until the window is closed.
func Start(console chip8.Console, opts Options) error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("Failed to initialize GLFW: %w", err)
	}
	defer glfw.Terminate()
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	window, err := glfw.CreateWindow(opts.Width, opts.Height, "JCHIP8", nil, nil)
	if err != nil {
		return fmt.Errorf("Failed to create a window: %w", err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		return fmt.Errorf("Failed to initialize OpenGL: %w", err)
	}
	glog.Infof("OpenGL version %s", gl.GoStr(gl.GetString(gl.VERSION)))
	screen, err := newScreen(chip8.Width, chip8.Height)
	if err != nil {
		return err
	}
	h := &host{window: window, screen: screen, console: console}
	if !opts.Mute {
		a := newAudio()
		if err := a.start(); err != nil {
			glog.Warningf("Running without sound: %v", err)
		} else {
			h.audio = a
			defer a.terminate()
		}
	}
	console.SetInput(h)
	if err := h.mainLoop(opts.Hz); err != nil && !errors.Is(err, chip8.ErrClosed) {
		return err
	}
	glog.Infoln("Window closed.")
	return nil
}
