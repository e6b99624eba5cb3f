package cpu

// Basic opcodes, excluding IFx (ops_branch.go) and special instructions
// (ops_special.go).
const (
	opSET = 0x01
	opADD = 0x02
	opSUB = 0x03
	opMUL = 0x04
	opMLI = 0x05
	opDIV = 0x06
	opDVI = 0x07
	opMOD = 0x08
	opMDI = 0x09
	opAND = 0x0a
	opBOR = 0x0b
	opXOR = 0x0c
	opSHR = 0x0d
	opASR = 0x0e
	opSHL = 0x0f
	opADX = 0x1a
	opSBX = 0x1b
	opSTI = 0x1e
	opSTD = 0x1f
)

// executeBasic performs the effect of a decoded basic instruction (b is
// the destination; for a literal destination it points at a scratch slot,
// so the store is discarded) and updates EX where the opcode specifies it.
func (c *CPU) executeBasic(opcode uint16, b *uint16, a uint16) {
	switch opcode {
	case opSET:
		*b = a
	case opADD:
		v := uint32(*b) + uint32(a)
		if v > 0xffff {
			c.EX = 1
		} else {
			c.EX = 0
		}
		*b = uint16(v)
	case opSUB:
		v := int32(*b) - int32(a)
		if v < 0 {
			c.EX = 0xffff
		} else {
			c.EX = 0
		}
		*b = uint16(v)
	case opMUL:
		v := uint32(*b) * uint32(a)
		c.EX = uint16(v >> 16)
		*b = uint16(v)
	case opMLI:
		v := int32(int16(*b)) * int32(int16(a))
		c.EX = uint16(uint32(v) >> 16)
		*b = uint16(v)
	case opDIV:
		if a == 0 {
			*b = 0
			c.EX = 0
		} else {
			c.EX = uint16((uint32(*b) << 16) / uint32(a))
			*b = *b / a
		}
	case opDVI:
		if a == 0 {
			*b = 0
			c.EX = 0
		} else {
			sb, sa := int16(*b), int16(a)
			c.EX = uint16((int32(sb) << 16) / int32(sa))
			*b = uint16(sb / sa)
		}
	case opMOD:
		if a == 0 {
			*b = 0
		} else {
			*b = *b % a
		}
	case opMDI:
		if a == 0 {
			*b = 0
		} else {
			*b = uint16(int16(*b) % int16(a))
		}
	case opADX:
		v := uint32(*b) + uint32(a) + uint32(c.EX)
		if v > 0xffff {
			c.EX = 1
		} else {
			c.EX = 0
		}
		*b = uint16(v)
	case opSBX:
		v := int32(*b) - int32(a) + int32(c.EX)
		if v < 0 {
			c.EX = 0xffff
		} else {
			c.EX = 0
		}
		*b = uint16(v)
	case opSTI:
		*b = a
		c.Reg[I]++
		c.Reg[J]++
	case opSTD:
		*b = a
		c.Reg[I]--
		c.Reg[J]--
	default:
		c.executeLogic(opcode, b, a)
	}
}
