package chip8

import (
	"image/color"
	"testing"
)

func TestDrawRunsIntoNextLine(t *testing.T) {
	d := NewDisplay()
	collision, err := d.draw(62, 0, []byte{0xF0})
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if collision {
		t.Errorf("collision on blank display")
	}
	for _, p := range []struct{ x, y int }{{62, 0}, {63, 0}, {0, 1}, {1, 1}} {
		if !d.Pixel(p.x, p.y) {
			t.Errorf("pixel (%d, %d) not set", p.x, p.y)
		}
	}
	if d.Pixel(2, 1) || d.Pixel(0, 0) {
		t.Errorf("unexpected pixel set")
	}
}

func TestDrawCollisionOnlyOnOverlap(t *testing.T) {
	d := NewDisplay()
	if _, err := d.draw(0, 0, []byte{0xF0}); err != nil {
		t.Fatalf("draw: %v", err)
	}
	collision, err := d.draw(4, 0, []byte{0xF0})
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if collision {
		t.Errorf("adjacent sprites reported a collision")
	}
	collision, err = d.draw(3, 0, []byte{0x80})
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if !collision {
		t.Errorf("overlapping pixel did not report a collision")
	}
	if d.Pixel(3, 0) {
		t.Errorf("pixel (3, 0) not toggled off")
	}
}

func TestDrawClearBitsNeverChecked(t *testing.T) {
	d := NewDisplay()
	// Only the leftmost bit is set, the cleared bits past the last pixel are ignored.
	if _, err := d.draw(63, 31, []byte{0x80}); err != nil {
		t.Fatalf("draw: %v", err)
	}
	if !d.Pixel(63, 31) {
		t.Errorf("last pixel not set")
	}
}

func TestFrame(t *testing.T) {
	d := NewDisplay()
	if _, changed := d.Frame(); !changed {
		t.Errorf("first frame not reported as changed")
	}
	if _, changed := d.Frame(); changed {
		t.Errorf("frame changed without a draw")
	}
	if _, err := d.draw(1, 2, []byte{0x80}); err != nil {
		t.Fatalf("draw: %v", err)
	}
	img, changed := d.Frame()
	if !changed {
		t.Fatalf("frame not changed after a draw")
	}
	if got := img.RGBAAt(1, 2); got != (color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}) {
		t.Errorf("(1, 2): got=%v, want white", got)
	}
	if got := img.RGBAAt(0, 0); got != (color.RGBA{0x00, 0x00, 0x00, 0xFF}) {
		t.Errorf("(0, 0): got=%v, want black", got)
	}
	if b := img.Bounds(); b.Dx() != Width || b.Dy() != Height {
		t.Errorf("bounds: got=%v", b)
	}
}
