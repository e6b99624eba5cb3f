// Package cpu implements the DCPU-16 instruction-level core: decode,
// operand addressing, arithmetic/logical semantics, the stalling
// cycle-accumulator cost model, branch chaining, and the interrupt queue.
//
// The bit-level layout of a basic instruction word (MSB first) is
// aaaaaabbbbbooooo: o is the 5-bit opcode (0 selects a special
// instruction, whose secondary opcode lives in the b field), b is the
// 5-bit destination operand, a is the 6-bit source operand.
package cpu

import (
	"errors"
	"fmt"
)

// Register indices into Reg, in encoding order.
const (
	A = iota
	B
	C
	X
	Y
	Z
	I
	J
	numRegisters
)

const (
	// MemSize is the number of addressable 16-bit words.
	MemSize = 0x10000
	// MaxInterruptQueue is the largest number of pending interrupt
	// messages the queue will hold before overflow is fatal.
	MaxInterruptQueue = 256
)

// ErrInterruptQueueOverflow is the sentinel wrapped by FatalError when
// more than MaxInterruptQueue interrupts are queued without being drained.
var ErrInterruptQueueOverflow = errors.New("interrupt queue overflow: processor has caught fire")

// FatalError marks a condition the emulator cannot recover from.
type FatalError struct{ Err error }

func (e *FatalError) Error() string { return fmt.Sprintf("fatal: %s", e.Err) }
func (e *FatalError) Unwrap() error { return e.Err }

// HWRequestKind identifies the kind of hardware request a CPU has parked
// in its single-slot mailbox, awaiting service by a hardware.Bus.
type HWRequestKind int

const (
	// HWRequestNone means no request is pending; the CPU steps normally.
	HWRequestNone HWRequestKind = iota
	// HWRequestCount is set by HWN: Operand carries the raw encoding of
	// destination operand a. The destination itself is resolved when HWN
	// executes; the bus writes the count through WriteHWCount.
	HWRequestCount
	// HWRequestInfo is set by HWQ: Operand carries the hardware id to query.
	HWRequestInfo
	// HWRequestInterrupt is set by HWI: Operand carries the hardware id
	// to deliver an interrupt to.
	HWRequestInterrupt
)

// HWRequest is the CPU's single-slot hardware-request mailbox. While Kind
// is not HWRequestNone, Step is a no-op apart from advancing CycleCount.
type HWRequest struct {
	Kind    HWRequestKind
	Operand uint16
}

// CPU holds the full architectural state of a DCPU-16: registers, memory,
// the stalling cycle-accumulator, and the interrupt queue. Devices read
// and write Reg, Mem, and the interrupt queue (via QueueInterrupt) during
// their Interrupt/Step callbacks; see package hardware.
type CPU struct {
	Reg [numRegisters]uint16
	PC  uint16
	SP  uint16
	EX  uint16
	IA  uint16
	Mem [MemSize]uint16

	// CycleAccumulator is cycles still owed for the instruction in
	// flight; CycleCount is the monotonic total. CycleAccumulator is 0
	// at instruction boundaries except while stalling.
	CycleAccumulator uint32
	CycleCount       uint32

	// Queueing is true while incoming interrupts are buffered rather
	// than triggered (set by INT, cleared by RFI or IAQ 0).
	Queueing bool
	queue    []uint16

	// Request is the hardware-request mailbox; HWN/HWQ/HWI set it and
	// freeze the CPU until a hardware.Bus drains it.
	Request HWRequest

	// hwnTarget is the destination location HWN resolved for its own
	// operand a at decode time (nil if that operand was a literal). It
	// is cached here, rather than re-resolved from Request.Operand by
	// the bus, because resolving an operand is not idempotent — a
	// [register+next_word] or literal operand consumes a word from
	// memory at the current PC, which has already moved on by the time
	// the bus services the request.
	hwnTarget *uint16
}

// New returns a CPU with all state zeroed, ready to have a program image
// loaded at address 0.
func New() *CPU {
	return &CPU{}
}

// Step executes exactly one host tick: a stall decrement, a frozen tick
// while a hardware request is pending, or a full fetch-decode-execute of
// one instruction followed by the interrupt-drain check.
func (c *CPU) Step() {
	if c.CycleAccumulator > 0 {
		c.CycleAccumulator--
		c.CycleCount++
		return
	}

	if c.Request.Kind != HWRequestNone {
		c.CycleCount++
		return
	}

	cost := c.execute()
	c.CycleAccumulator += cost
	c.CycleAccumulator--
	c.CycleCount++

	c.drainInterrupt()
}

// nextWord returns memory[PC] and advances PC by one word (mod 2^16).
func (c *CPU) nextWord() uint16 {
	v := c.Mem[c.PC]
	c.PC++
	return v
}

// push decrements SP and stores val at the new top of stack.
func (c *CPU) push(val uint16) {
	c.SP--
	c.Mem[c.SP] = val
}

// pop loads the word at the top of stack and increments SP.
func (c *CPU) pop() uint16 {
	v := c.Mem[c.SP]
	c.SP++
	return v
}

// WriteHWCount writes count to the location named by the most recent
// HWN's destination operand. A literal destination is silently ignored.
// Called by hardware.Bus while servicing a HWRequestCount.
func (c *CPU) WriteHWCount(count uint16) {
	if c.hwnTarget != nil {
		*c.hwnTarget = count
	}
	c.hwnTarget = nil
}

// LoadImage copies words into memory starting at address 0, as loaded by
// package loader.
func (c *CPU) LoadImage(words []uint16) {
	copy(c.Mem[:], words)
}

// Snapshot is a point-in-time copy of CPU state. Taking one is not
// synchronized with Step; it is consistent only when taken from the
// goroutine that drives the CPU.
type Snapshot struct {
	Reg              [numRegisters]uint16
	PC, SP, EX, IA   uint16
	Mem              [MemSize]uint16
	CycleAccumulator uint32
	CycleCount       uint32
	Queueing         bool
}

// Snapshot copies the full architectural state.
func (c *CPU) Snapshot() Snapshot {
	return Snapshot{
		Reg:              c.Reg,
		PC:               c.PC,
		SP:               c.SP,
		EX:               c.EX,
		IA:               c.IA,
		Mem:              c.Mem,
		CycleAccumulator: c.CycleAccumulator,
		CycleCount:       c.CycleCount,
		Queueing:         c.Queueing,
	}
}
