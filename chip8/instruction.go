package chip8

import (
	"fmt"
	"strings"

	isa "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Opcode layout, 16 bits fetched big-endian:
//
//	1111 2222 3333 4444
//	     x    y    n
//	          nn (low byte)
//	     nnn (low 12 bits)
//
// References:
//	http://devernay.free.fr/hacks/chip8/C8TECH10.HTM
//	https://tobiasvl.github.io/blog/write-a-chip-8-emulator/

type kind int

const (
	jump              kind = iota // 1nnn
	skipEqual                     // 3xnn
	skipNotEqual                  // 4xnn
	load                          // 6xnn
	add                           // 7xnn
	and                           // 8xy2
	addCarry                      // 8xy4
	loadIndex                     // Annn
	random                        // Cxnn
	draw                          // Dxyn
	skipKeyPressed                // Ex9E
	skipKeyNotPressed             // ExA1
	waitKey                       // Fx0A
	loadSoundTimer                // Fx18
	loadGlyph                     // Fx29
	storeBCD                      // Fx33
	loadRegisters                 // Fx65
)

// mnemonics maps each kind to its entry in the CHIP-8 instruction set.
var mnemonics = [...]*isa.Instruction{
	jump:              isa.JpInst,
	skipEqual:         isa.SeInst,
	skipNotEqual:      isa.SneInst,
	load:              isa.LdInst,
	add:               isa.AddInst,
	and:               isa.AndInst,
	addCarry:          isa.AddInst,
	loadIndex:         isa.LdInst,
	random:            isa.RndInst,
	draw:              isa.DrwInst,
	skipKeyPressed:    isa.SkpInst,
	skipKeyNotPressed: isa.SknpInst,
	waitKey:           isa.LdInst,
	loadSoundTimer:    isa.LdInst,
	loadGlyph:         isa.LdInst,
	storeBCD:          isa.LdInst,
	loadRegisters:     isa.LdInst,
}

// instruction is a decoded opcode. Only the fields its kind uses are meaningful.
type instruction struct {
	kind   kind
	opcode uint16
	x      byte
	y      byte
	n      byte
	nn     byte
	nnn    uint16
}

// decode decodes an opcode, returns false if the engine has no behavior for it.
func decode(opcode uint16) (instruction, bool) {
	ins := instruction{
		opcode: opcode,
		x:      byte(opcode>>8) & 0xF,
		y:      byte(opcode>>4) & 0xF,
		n:      byte(opcode) & 0xF,
		nn:     byte(opcode),
		nnn:    opcode & 0x0FFF,
	}
	switch opcode & 0xF000 {
	case 0x1000:
		ins.kind = jump
	case 0x3000:
		ins.kind = skipEqual
	case 0x4000:
		ins.kind = skipNotEqual
	case 0x6000:
		ins.kind = load
	case 0x7000:
		ins.kind = add
	case 0x8000:
		switch ins.n {
		case 0x2:
			ins.kind = and
		case 0x4:
			ins.kind = addCarry
		default:
			return instruction{}, false
		}
	case 0xA000:
		ins.kind = loadIndex
	case 0xC000:
		ins.kind = random
	case 0xD000:
		ins.kind = draw
	case 0xE000:
		switch ins.nn {
		case 0x9E:
			ins.kind = skipKeyPressed
		case 0xA1:
			ins.kind = skipKeyNotPressed
		default:
			return instruction{}, false
		}
	case 0xF000:
		switch ins.nn {
		case 0x0A:
			ins.kind = waitKey
		case 0x18:
			ins.kind = loadSoundTimer
		case 0x29:
			ins.kind = loadGlyph
		case 0x33:
			ins.kind = storeBCD
		case 0x65:
			ins.kind = loadRegisters
		default:
			return instruction{}, false
		}
	default:
		return instruction{}, false
	}
	return ins, true
}

func (ins instruction) mnemonic() string {
	return strings.ToUpper(mnemonics[ins.kind].Name)
}

// String disassembles the instruction, e.g. "DRW V0, V1, 5".
func (ins instruction) String() string {
	var operands string
	switch ins.kind {
	case jump:
		operands = fmt.Sprintf("0x%03x", ins.nnn)
	case skipEqual, skipNotEqual, load, add, random:
		operands = fmt.Sprintf("V%X, 0x%02x", ins.x, ins.nn)
	case and, addCarry:
		operands = fmt.Sprintf("V%X, V%X", ins.x, ins.y)
	case loadIndex:
		operands = fmt.Sprintf("I, 0x%03x", ins.nnn)
	case draw:
		operands = fmt.Sprintf("V%X, V%X, %d", ins.x, ins.y, ins.n)
	case skipKeyPressed, skipKeyNotPressed:
		operands = fmt.Sprintf("V%X", ins.x)
	case waitKey:
		operands = fmt.Sprintf("V%X, K", ins.x)
	case loadSoundTimer:
		operands = fmt.Sprintf("ST, V%X", ins.x)
	case loadGlyph:
		operands = fmt.Sprintf("F, V%X", ins.x)
	case storeBCD:
		operands = fmt.Sprintf("B, V%X", ins.x)
	case loadRegisters:
		operands = fmt.Sprintf("V%X, [I]", ins.x)
	}
	return ins.mnemonic() + " " + operands
}

// Disassemble returns the mnemonic form of an opcode, or false if it is unsupported.
func Disassemble(opcode uint16) (string, bool) {
	ins, ok := decode(opcode)
	if !ok {
		return "", false
	}
	return ins.String(), true
}
