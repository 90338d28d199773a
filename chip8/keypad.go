package chip8

// Keypad layout, hexadecimal keys.
//
//	1 2 3 C
//	4 5 6 D
//	7 8 9 E
//	A 0 B F
const KeyCount = 16

// Keypad holds which logical keys are currently down, true means held.
type Keypad struct {
	keys [KeyCount]bool
}

// NewKeypad creates a keypad with no key held.
func NewKeypad() *Keypad {
	return &Keypad{}
}

// Set replaces the whole key state.
func (k *Keypad) Set(keys [KeyCount]bool) {
	k.keys = keys
}

// State returns the current key state.
func (k *Keypad) State() [KeyCount]bool {
	return k.keys
}

// pressed reports whether key is held. Values above 0xF name no key and are never held.
func (k *Keypad) pressed(key byte) bool {
	return int(key) < KeyCount && k.keys[key]
}

// newlyPressed returns the lowest key that is held now but was not in prev.
func (k *Keypad) newlyPressed(prev [KeyCount]bool) (byte, bool) {
	for i := 0; i < KeyCount; i++ {
		if k.keys[i] && !prev[i] {
			return byte(i), true
		}
	}
	return 0, false
}
