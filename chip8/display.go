package chip8

import (
	"image"
	"image/color"
)

// The display is 64x32 monochrome pixels.
const (
	Width  = 64
	Height = 32
)

var (
	colorOff = color.RGBA{0x00, 0x00, 0x00, 0xFF}
	colorOn  = color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
)

// Display is a 1-bit framebuffer addressed as x + y*Width, origin top-left.
// It is only mutated by sprite drawing.
type Display struct {
	pixels [Width * Height]bool
	// dirty is set by a draw and cleared when the frame is handed to the host.
	dirty bool
	frame *image.RGBA
}

// NewDisplay creates a blank display.
func NewDisplay() *Display {
	d := &Display{
		frame: image.NewRGBA(image.Rect(0, 0, Width, Height)),
	}
	d.Reset()
	return d
}

// Reset clears all pixels.
func (d *Display) Reset() {
	d.pixels = [Width * Height]bool{}
	d.dirty = true
}

// Pixel reports whether the pixel at (x, y) is set.
func (d *Display) Pixel(x, y int) bool {
	if x < 0 || Width <= x || y < 0 || Height <= y {
		return false
	}
	return d.pixels[x+y*Width]
}

// draw XORs an 8-pixel wide sprite onto the display at (x, y), one byte per row,
// most significant bit leftmost. It reports whether any set pixel was flipped off.
//
// Coordinates are not wrapped: a row running past the right edge continues on
// the next line, and a set bit landing past the last pixel is an error. Every
// target is checked before any pixel changes.
func (d *Display) draw(x, y byte, sprite []byte) (bool, error) {
	for row, bits := range sprite {
		for col := 0; col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}
			if i := pixelIndex(x, y, row, col); i >= len(d.pixels) {
				return false, &AddressOutOfRangeError{SpaceDisplay, i}
			}
		}
	}
	collision := false
	for row, bits := range sprite {
		for col := 0; col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}
			i := pixelIndex(x, y, row, col)
			if d.pixels[i] {
				collision = true
			}
			d.pixels[i] = !d.pixels[i]
		}
	}
	d.dirty = true
	return collision, nil
}

func pixelIndex(x, y byte, row, col int) int {
	return int(x) + col + (int(y)+row)*Width
}

// Frame returns the display as an image and whether it changed since the last call.
func (d *Display) Frame() (*image.RGBA, bool) {
	if !d.dirty {
		return d.frame, false
	}
	for i, on := range d.pixels {
		c := colorOff
		if on {
			c = colorOn
		}
		d.frame.SetRGBA(i%Width, i/Width, c)
	}
	d.dirty = false
	return d.frame, true
}
