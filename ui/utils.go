package ui

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/jyane/jchip8/chip8"
)

// keymap places the 4x4 keypad on the left side of a QWERTY keyboard.
//
//	1 2 3 4      1 2 3 C
//	Q W E R  ->  4 5 6 D
//	A S D F      7 8 9 E
//	Z X C V      A 0 B F
var keymap = [chip8.KeyCount]struct {
	key  glfw.Key
	char byte
	code byte
}{
	{glfw.Key1, '1', 0x1}, {glfw.Key2, '2', 0x2}, {glfw.Key3, '3', 0x3}, {glfw.Key4, '4', 0xC},
	{glfw.KeyQ, 'q', 0x4}, {glfw.KeyW, 'w', 0x5}, {glfw.KeyE, 'e', 0x6}, {glfw.KeyR, 'r', 0xD},
	{glfw.KeyA, 'a', 0x7}, {glfw.KeyS, 's', 0x8}, {glfw.KeyD, 'd', 0x9}, {glfw.KeyF, 'f', 0xE},
	{glfw.KeyZ, 'z', 0xA}, {glfw.KeyX, 'x', 0x0}, {glfw.KeyC, 'c', 0xB}, {glfw.KeyV, 'v', 0xF},
}

// getKeys gets the state of keyboard as logical keys.
func getKeys(window *glfw.Window) [chip8.KeyCount]bool {
	var keys [chip8.KeyCount]bool
	for _, m := range keymap {
		keys[m.code] = window.GetKey(m.key) == glfw.Press
	}
	return keys
}

// keyFromChar maps a typed character to a logical key, ignoring case.
func keyFromChar(c byte) (byte, bool) {
	if 'A' <= c && c <= 'Z' {
		c += 'a' - 'A'
	}
	for _, m := range keymap {
		if m.char == c {
			return m.code, true
		}
	}
	return 0, false
}

// cyclesPerFrame converts a cycle rate to cycles per 60Hz frame, at least one.
func cyclesPerFrame(hz int) int {
	if n := hz / 60; n > 1 {
		return n
	}
	return 1
}
