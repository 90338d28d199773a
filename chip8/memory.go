package chip8

// Memory map
// 0x000 - 0x04F	Glyph sprites for 0-F, 5 bytes each
// 0x050 - 0x1FF	Unused (interpreter area)
// 0x200 - 0xFFF	Program and data
const (
	memorySize   = 0x1000
	programStart = 0x200
	glyphSize    = 5
	// ProgramCapacity is the largest program image that fits in memory.
	ProgramCapacity = memorySize - programStart
)

// glyphs are the built-in hexadecimal digit sprites, 4 pixels wide.
var glyphs = [16][glyphSize]byte{
	{0xF0, 0x90, 0x90, 0x90, 0xF0}, // 0
	{0x20, 0x60, 0x20, 0x20, 0x70}, // 1
	{0xF0, 0x10, 0xF0, 0x80, 0xF0}, // 2
	{0xF0, 0x10, 0xF0, 0x10, 0xF0}, // 3
	{0x90, 0x90, 0xF0, 0x10, 0x10}, // 4
	{0xF0, 0x80, 0xF0, 0x10, 0xF0}, // 5
	{0xF0, 0x80, 0xF0, 0x90, 0xF0}, // 6
	{0xF0, 0x10, 0x20, 0x40, 0x40}, // 7
	{0xF0, 0x90, 0xF0, 0x90, 0xF0}, // 8
	{0xF0, 0x90, 0xF0, 0x10, 0xF0}, // 9
	{0xF0, 0x90, 0xF0, 0x90, 0x90}, // A
	{0xE0, 0x90, 0xE0, 0x90, 0xE0}, // B
	{0xF0, 0x80, 0x80, 0x80, 0xF0}, // C
	{0xE0, 0x90, 0x90, 0x90, 0xE0}, // D
	{0xF0, 0x80, 0xF0, 0x80, 0xF0}, // E
	{0xF0, 0x80, 0xF0, 0x80, 0x80}, // F
}

// Memory is the 4KB address space of the machine.
type Memory struct {
	data [memorySize]byte
}

// NewMemory creates a memory with the glyph sprites in place.
func NewMemory() *Memory {
	m := &Memory{}
	m.reset()
	return m
}

// reset clears memory and writes the glyph sprites.
func (m *Memory) reset() {
	m.data = [memorySize]byte{}
	for i, g := range glyphs {
		copy(m.data[i*glyphSize:], g[:])
	}
}

// read reads a byte.
func (m *Memory) read(address uint16) (byte, error) {
	if int(address) >= memorySize {
		return 0, &AddressOutOfRangeError{SpaceMemory, int(address)}
	}
	return m.data[address], nil
}

// read16 reads 2 bytes, high byte first.
func (m *Memory) read16(address uint16) (uint16, error) {
	h, err := m.read(address)
	if err != nil {
		return 0, err
	}
	l, err := m.read(address + 1)
	if err != nil {
		return 0, &AddressOutOfRangeError{SpaceMemory, int(address) + 1}
	}
	return uint16(h)<<8 | uint16(l), nil
}

// write writes a byte.
func (m *Memory) write(address uint16, x byte) error {
	if int(address) >= memorySize {
		return &AddressOutOfRangeError{SpaceMemory, int(address)}
	}
	m.data[address] = x
	return nil
}

// span returns n bytes starting at address, failing if any of them lies past the end.
func (m *Memory) span(address uint16, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if int(address)+n > memorySize {
		first := memorySize
		if int(address) > first {
			first = int(address)
		}
		return nil, &AddressOutOfRangeError{SpaceMemory, first}
	}
	return m.data[address : int(address)+n], nil
}

// load copies a program image to the start of program space.
func (m *Memory) load(image []byte) error {
	if len(image) > ProgramCapacity {
		return &ImageTooLargeError{Size: len(image), Capacity: ProgramCapacity}
	}
	copy(m.data[programStart:], image)
	return nil
}
