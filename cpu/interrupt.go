package cpu

// QueueInterrupt appends a hardware-originated interrupt message to the
// CPU's FIFO. Devices call this from Interrupt/Step to signal the CPU
// (modem status changes, keyboard key-available). It is the only way the
// queue grows past MaxInterruptQueue entries, at which point it returns
// a *FatalError wrapping ErrInterruptQueueOverflow instead of appending.
func (c *CPU) QueueInterrupt(message uint16) error {
	if len(c.queue) >= MaxInterruptQueue {
		return &FatalError{Err: ErrInterruptQueueOverflow}
	}
	c.queue = append(c.queue, message)
	return nil
}

// QueueLen reports the number of interrupt messages currently pending.
func (c *CPU) QueueLen() int { return len(c.queue) }

// drainInterrupt pops at most one pending interrupt message and, if IA is
// set, triggers it exactly as INT would: push PC, push A, PC = IA,
// A = message, enable queueing. A message popped while IA == 0 is simply
// dropped (it was still "dequeued", per spec §4.1).
func (c *CPU) drainInterrupt() {
	if c.Queueing || len(c.queue) == 0 {
		return
	}
	message := c.queue[0]
	c.queue = c.queue[1:]
	if c.IA == 0 {
		return
	}
	c.Queueing = true
	c.push(c.PC)
	c.push(c.Reg[A])
	c.PC = c.IA
	c.Reg[A] = message
}
