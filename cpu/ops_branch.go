package cpu

// IFx opcodes (o field); secondary only in the sense that none of them
// write their destination — they only gate whether the next instruction
// executes.
const (
	opIFB = 0x10
	opIFC = 0x11
	opIFE = 0x12
	opIFN = 0x13
	opIFG = 0x14
	opIFA = 0x15
	opIFL = 0x16
	opIFU = 0x17
)

// evaluateCondition reports whether the IFx predicate holds given
// destination value b and source value a (the same operand order as the
// basic opcodes, even though IFx never writes to b).
func (c *CPU) evaluateCondition(opcode uint16, b, a uint16) bool {
	switch opcode {
	case opIFB:
		return (b & a) != 0
	case opIFC:
		return (b & a) == 0
	case opIFE:
		return b == a
	case opIFN:
		return b != a
	case opIFG:
		return b > a
	case opIFA:
		return int16(b) > int16(a)
	case opIFL:
		return b < a
	case opIFU:
		return int16(b) < int16(a)
	default:
		return true
	}
}
