package chip8

// timers are the delay and sound countdowns. They tick once per executed
// instruction, not at a fixed wall-clock rate.
type timers struct {
	delay byte
	sound byte
}

// tick decrements both timers towards zero.
// It reports whether the sound timer just went from 1 to 0, the point where the beep fires.
func (t *timers) tick() bool {
	if t.delay > 0 {
		t.delay--
	}
	if t.sound > 0 {
		t.sound--
		return t.sound == 0
	}
	return false
}
