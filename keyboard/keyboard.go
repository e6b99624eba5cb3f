// Package keyboard implements the generic DCPU-16 keyboard peripheral:
// a bounded keycode queue fed by an injectable host key source, with
// interrupt sub-commands to clear/pop the queue and arm a notification.
package keyboard

import (
	"time"

	"github.com/Jayshua/dcpu16-modem/cpu"
	"github.com/Jayshua/dcpu16-modem/hardware"
)

const (
	hwID           = 0x30cf7406
	hwVersion      = 0x0001
	hwManufacturer = 0x00000000

	maxQueue = 256
	pollHz   = 20
)

// Named key codes a KeyEvent's Key field may carry for non-printable
// keys; printable ASCII (0x20-0x7e) is carried as itself.
const (
	KeyBack    uint16 = 0x10
	KeyReturn  uint16 = 0x11
	KeyInsert  uint16 = 0x12
	KeyDelete  uint16 = 0x13
	KeyUp      uint16 = 0x80
	KeyDown    uint16 = 0x81
	KeyLeft    uint16 = 0x82
	KeyRight   uint16 = 0x83
	KeyShift   uint16 = 0x90
	KeyControl uint16 = 0x91
)

// KeyEvent is one host key press, already translated to a DCPU-16
// keycode by the EventSource.
type KeyEvent struct {
	Key uint16
}

// EventSource is the injectable host key-capture boundary. Poll returns
// any key events observed since the last call; ok is false if the
// source has nothing new to report. Keyboard.Step calls Poll at most
// pollHz times per second, per spec.
type EventSource interface {
	Poll() ([]KeyEvent, bool)
}

// Keyboard is a DCPU-16 keyboard device.
type Keyboard struct {
	source EventSource

	queue        []uint16
	interruptMsg uint16
	interruptSet bool
	lastPoll     time.Time
}

// New returns a Keyboard that polls source for host key events.
func New(source EventSource) *Keyboard {
	return &Keyboard{source: source}
}

// Info reports this keyboard's hardware identity.
func (k *Keyboard) Info() hardware.DeviceInfo {
	return hardware.DeviceInfo{ID: hwID, Version: hwVersion, Manufacturer: hwManufacturer}
}

// Interrupt dispatches on Reg[A] per the keyboard sub-command table.
// A=2 (is-pressed query) is an unimplemented open question; it is a
// no-op here.
func (k *Keyboard) Interrupt(c *cpu.CPU) error {
	switch c.Reg[cpu.A] {
	case 0:
		k.queue = k.queue[:0]
	case 1:
		if len(k.queue) > 0 {
			c.Reg[cpu.C] = k.queue[0]
			k.queue = k.queue[1:]
		} else {
			c.Reg[cpu.C] = 0
		}
	case 3:
		k.interruptMsg = c.Reg[cpu.B]
		k.interruptSet = k.interruptMsg != 0
	}
	return nil
}

// Step polls the host event source at most pollHz times per second,
// enqueueing the already-translated key codes and arming an interrupt when the
// queue transitions from empty to non-empty.
func (k *Keyboard) Step(c *cpu.CPU) error {
	const period = time.Second / pollHz
	now := time.Now()
	if now.Sub(k.lastPoll) < period {
		return nil
	}
	k.lastPoll = now

	events, ok := k.source.Poll()
	if !ok {
		return nil
	}

	wasEmpty := len(k.queue) == 0
	for _, ev := range events {
		if len(k.queue) >= maxQueue {
			break
		}
		k.queue = append(k.queue, ev.Key)
	}

	if wasEmpty && len(k.queue) > 0 && k.interruptSet {
		return c.QueueInterrupt(k.interruptMsg)
	}
	return nil
}
