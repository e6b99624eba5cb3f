// Package hardware implements the DCPU-16's hardware bus: an ordered
// device list, HWN/HWQ/HWI dispatch, and per-tick device stepping.
package hardware

import "github.com/Jayshua/dcpu16-modem/cpu"

// DeviceInfo is the identity a device reports to HWQ: a 32-bit hardware
// ID, a 16-bit version, and a 32-bit manufacturer ID.
type DeviceInfo struct {
	ID           uint32
	Version      uint16
	Manufacturer uint32
}

// Device is the fixed capability set every attached peripheral
// implements — a stable three-method interface rather than a
// polymorphic class hierarchy, per spec §9's design note.
type Device interface {
	// Interrupt services a HWI directed at this device; it reads A to
	// select a sub-command and may read/write other registers and
	// memory.
	Interrupt(c *cpu.CPU) error
	// Step runs once per host tick, after hardware-request dispatch.
	Step(c *cpu.CPU) error
	// Info reports this device's identity for HWQ.
	Info() DeviceInfo
}

// Bus owns an ordered list of attached devices. List position is a
// device's hardware id, the space HWQ/HWI index into.
type Bus struct {
	devices []Device
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{}
}

// Attach appends a device, assigning it the next hardware id.
func (bus *Bus) Attach(d Device) {
	bus.devices = append(bus.devices, d)
}

// Len reports the number of attached devices.
func (bus *Bus) Len() int { return len(bus.devices) }

// Dispatch services a pending hardware request from c, if any, then
// clears the mailbox so the CPU resumes stepping normally.
func (bus *Bus) Dispatch(c *cpu.CPU) error {
	req := c.Request
	if req.Kind == cpu.HWRequestNone {
		return nil
	}
	c.Request = cpu.HWRequest{}

	switch req.Kind {
	case cpu.HWRequestCount:
		c.WriteHWCount(uint16(len(bus.devices)))

	case cpu.HWRequestInfo:
		id := int(req.Operand)
		if id < 0 || id >= len(bus.devices) {
			return nil
		}
		info := bus.devices[id].Info()
		c.Reg[cpu.A] = uint16(info.ID)
		c.Reg[cpu.B] = uint16(info.ID >> 16)
		c.Reg[cpu.C] = info.Version
		c.Reg[cpu.X] = uint16(info.Manufacturer)
		c.Reg[cpu.Y] = uint16(info.Manufacturer >> 16)

	case cpu.HWRequestInterrupt:
		id := int(req.Operand)
		if id < 0 || id >= len(bus.devices) {
			return nil
		}
		return bus.devices[id].Interrupt(c)
	}
	return nil
}

// StepDevices runs Step on every attached device, in attachment order.
func (bus *Bus) StepDevices(c *cpu.CPU) error {
	for _, d := range bus.devices {
		if err := d.Step(c); err != nil {
			return err
		}
	}
	return nil
}
