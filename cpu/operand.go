package cpu

// resolveOperand returns a host pointer to the storage location named by
// a 6-bit operand code: a register, a memory cell, a stack slot, a
// pseudo-register (SP/PC/EX), or literalSlot itself for the two literal
// forms. Mirrors the reference implementation's get_pointer/get_value
// split by always returning an addressable location — callers compare
// the result against literalSlot to detect (and silently discard) writes
// to a literal destination.
//
// isB selects which of operand 0x18's two meanings applies: POP when
// resolved as operand a, PUSH when resolved as operand b. Any next-word
// operand consumes that word from memory via nextWord, which is why
// operand a must always be resolved before operand b (spec §4.1).
func (c *CPU) resolveOperand(code uint16, isB bool, literalSlot *uint16) *uint16 {
	code &= 0x3f
	switch {
	case code <= 0x07: // register
		return &c.Reg[code]
	case code <= 0x0f: // [register]
		return &c.Mem[c.Reg[code-0x08]]
	case code <= 0x17: // [register + next word]
		return &c.Mem[c.nextWord()+c.Reg[code-0x10]]
	case code == 0x18: // PUSH / POP
		if isB {
			c.SP--
			return &c.Mem[c.SP]
		}
		addr := c.SP
		c.SP++
		return &c.Mem[addr]
	case code == 0x19: // PEEK, [SP]
		return &c.Mem[c.SP]
	case code == 0x1a: // PICK n, [SP + next word]
		return &c.Mem[c.nextWord()+c.SP]
	case code == 0x1b: // SP
		return &c.SP
	case code == 0x1c: // PC
		return &c.PC
	case code == 0x1d: // EX
		return &c.EX
	case code == 0x1e: // [next word]
		return &c.Mem[c.nextWord()]
	case code == 0x1f: // next word, literal
		*literalSlot = c.nextWord()
		return literalSlot
	default: // 0x20-0x3f: packed literal -1..30
		*literalSlot = code - 0x21
		return literalSlot
	}
}
