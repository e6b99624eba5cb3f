package cpu

// splitWord breaks an instruction word into its opcode (bits 0-4),
// destination operand b (bits 5-9), and source operand a (bits 10-15).
// opcode == 0 marks a special instruction, in which case b carries the
// secondary opcode rather than an operand code.
func splitWord(word uint16) (opcode, b, a uint16) {
	opcode = word & 0x1f
	b = (word >> 5) & 0x1f
	a = (word >> 10) & 0x3f
	return
}

// needsNextWord reports whether resolving the given 6-bit operand code
// consumes one additional memory word, per spec §4.1's operand table:
// [register + next_word] (0x10-0x17), [SP + next_word] (0x1a, PICK),
// [next_word] (0x1e), and next_word-as-literal (0x1f). PUSH/POP (0x18)
// and PEEK (0x19) consume no extra word.
func needsNextWord(code uint16) bool {
	switch {
	case code >= 0x10 && code <= 0x17:
		return true
	case code == 0x1a, code == 0x1e, code == 0x1f:
		return true
	default:
		return false
	}
}

// instructionLength returns the total word count (opcode word plus any
// operand next-words) of the instruction encoded by word. Used by the
// IFx skip-chain to advance PC over an un-taken instruction without
// decoding it. Applied uniformly to the raw b/a fields per spec §4.1's
// literal length formula, even for special instructions where b encodes
// a secondary opcode rather than an operand — this mirrors the reference
// implementation's own instruction-length helper exactly.
func instructionLength(word uint16) uint16 {
	_, b, a := splitWord(word)
	length := uint16(1)
	if needsNextWord(b) {
		length++
	}
	if needsNextWord(a) {
		length++
	}
	return length
}

// execute fetches, decodes, and fully performs one instruction, returning
// its total cycle cost (instruction + operand costs, plus any branch-skip
// cost). Operand a is always resolved before operand b, consuming any
// trailing next_word in that order, per spec §4.1.
func (c *CPU) execute() uint32 {
	word := c.nextWord()
	opcode, bCode, aCode := splitWord(word)

	var literalA, literalB uint16
	aPtr := c.resolveOperand(aCode, false, &literalA)

	if opcode == 0 {
		cost := specialCost[bCode] + operandCost(aCode)
		c.executeSpecial(bCode, aCode, aPtr, &literalA)
		return cost
	}

	if isIfOpcode(opcode) {
		bPtr := c.resolveOperand(bCode, true, &literalB)
		cost := uint32(2) + operandCost(aCode) + operandCost(bCode)
		if !c.evaluateCondition(opcode, *bPtr, *aPtr) {
			cost += c.skipChain()
		}
		return cost
	}

	bPtr := c.resolveOperand(bCode, true, &literalB)
	cost := baseCost[opcode] + operandCost(aCode) + operandCost(bCode)
	// executeBasic always runs, even when bPtr points at the disposable
	// literalB local: EX (and, for STI/STD, I/J) update unconditionally
	// on the destination's writability, only the value write itself is
	// silently discarded when the destination is a literal.
	c.executeBasic(opcode, bPtr, *aPtr)
	return cost
}

// skipChain advances PC past a run of consecutive IFx instructions
// (a false predicate already established by the caller) plus the one
// non-IFx instruction that ends the chain, charging 1 cycle per
// instruction skipped without evaluating any of them.
func (c *CPU) skipChain() uint32 {
	var cost uint32
	for {
		word := c.Mem[c.PC]
		opcode, _, _ := splitWord(word)
		c.PC += instructionLength(word)
		cost++
		if !isIfOpcode(opcode) {
			return cost
		}
	}
}
