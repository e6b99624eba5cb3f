// Package disasm renders DCPU-16 1.7 machine words as assembly text, one
// instruction per line, for debugging and tests.
package disasm

import (
	"fmt"
	"io"
)

var registers = []string{"A", "B", "C", "X", "Y", "Z", "I", "J"}

var basicOps = map[uint16]string{
	0x01: "SET", 0x02: "ADD", 0x03: "SUB", 0x04: "MUL", 0x05: "MLI",
	0x06: "DIV", 0x07: "DVI", 0x08: "MOD", 0x09: "MDI", 0x0a: "AND",
	0x0b: "BOR", 0x0c: "XOR", 0x0d: "SHR", 0x0e: "ASR", 0x0f: "SHL",
	0x10: "IFB", 0x11: "IFC", 0x12: "IFE", 0x13: "IFN", 0x14: "IFG",
	0x15: "IFA", 0x16: "IFL", 0x17: "IFU", 0x1a: "ADX", 0x1b: "SBX",
	0x1e: "STI", 0x1f: "STD",
}

var specialOps = map[uint16]string{
	0x01: "JSR", 0x08: "INT", 0x09: "IAG", 0x0a: "IAS", 0x0b: "RFI",
	0x0c: "IAQ", 0x10: "HWN", 0x11: "HWQ", 0x12: "HWI",
}

// WordReader yields successive 16-bit words, returning io.EOF once
// exhausted — the abstraction a disassembler needs over either a live
// memory image or a program image file.
type WordReader interface {
	ReadWord() (w uint16, err error)
}

type wordReader struct {
	words []uint16
	pos   int
}

// NewWordReader returns a WordReader over an in-memory word slice.
func NewWordReader(words []uint16) WordReader { return &wordReader{words: words} }

func (r *wordReader) ReadWord() (uint16, error) {
	if r.pos >= len(r.words) {
		return 0, io.EOF
	}
	w := r.words[r.pos]
	r.pos++
	return w, nil
}

// Disassemble writes one line per decoded instruction starting at addr,
// reading from r until it returns io.EOF.
func Disassemble(addr uint16, r WordReader, w io.Writer) {
	for {
		startAddr := addr
		word, err := r.ReadWord()
		if err != nil {
			return
		}
		addr++

		opcode := word & 0x1f
		bCode := (word >> 5) & 0x1f
		aCode := (word >> 10) & 0x3f

		if opcode == 0 {
			name, ok := specialOps[bCode]
			if !ok {
				fmt.Fprintf(w, "0x%04x:\tDAT 0x%04x\n", startAddr, word)
				continue
			}
			a, next, err := operand(aCode, false, addr, r)
			if err != nil {
				return
			}
			addr = next
			fmt.Fprintf(w, "0x%04x:\t\t%s %s\n", startAddr, name, a)
			continue
		}

		name, ok := basicOps[opcode]
		if !ok {
			fmt.Fprintf(w, "0x%04x:\tDAT 0x%04x\n", startAddr, word)
			continue
		}

		// a's trailing next-word, if any, is read before b's: the CPU
		// resolves operand a first (spec §4.1), so it occupies the
		// earlier memory address.
		a, next, err := operand(aCode, false, addr, r)
		if err != nil {
			return
		}
		addr = next
		b, next, err := operand(bCode, true, addr, r)
		if err != nil {
			return
		}
		addr = next
		fmt.Fprintf(w, "0x%04x:\t\t%s %s, %s\n", startAddr, name, b, a)
	}
}

func operand(code uint16, isB bool, addr uint16, r WordReader) (s string, next uint16, err error) {
	next = addr
	switch {
	case code <= 0x07:
		return registers[code], next, nil
	case code <= 0x0f:
		return fmt.Sprintf("[%s]", registers[code-0x08]), next, nil
	case code <= 0x17:
		v, err := r.ReadWord()
		if err != nil {
			return "", next, err
		}
		next++
		return fmt.Sprintf("[0x%x+%s]", v, registers[code-0x10]), next, nil
	case code == 0x18:
		if isB {
			return "PUSH", next, nil
		}
		return "POP", next, nil
	case code == 0x19:
		return "PEEK", next, nil
	case code == 0x1a:
		v, err := r.ReadWord()
		if err != nil {
			return "", next, err
		}
		next++
		return fmt.Sprintf("[SP+0x%x]", v), next, nil
	case code == 0x1b:
		return "SP", next, nil
	case code == 0x1c:
		return "PC", next, nil
	case code == 0x1d:
		return "EX", next, nil
	case code == 0x1e:
		v, err := r.ReadWord()
		if err != nil {
			return "", next, err
		}
		next++
		return fmt.Sprintf("[0x%x]", v), next, nil
	case code == 0x1f:
		v, err := r.ReadWord()
		if err != nil {
			return "", next, err
		}
		next++
		return fmt.Sprintf("0x%x", v), next, nil
	default:
		return fmt.Sprintf("%d", int(code)-0x21), next, nil
	}
}
