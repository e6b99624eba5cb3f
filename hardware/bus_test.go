package hardware

import (
	"errors"
	"testing"

	"github.com/Jayshua/dcpu16-modem/cpu"
)

type fakeDevice struct {
	info        DeviceInfo
	interrupts  int
	steps       int
	interruptFn func(c *cpu.CPU) error
}

func (d *fakeDevice) Interrupt(c *cpu.CPU) error {
	d.interrupts++
	if d.interruptFn != nil {
		return d.interruptFn(c)
	}
	return nil
}

func (d *fakeDevice) Step(c *cpu.CPU) error {
	d.steps++
	return nil
}

func (d *fakeDevice) Info() DeviceInfo { return d.info }

func TestDispatchIgnoresIdleMailbox(t *testing.T) {
	bus := New()
	c := cpu.New()
	if err := bus.Dispatch(c); err != nil {
		t.Fatalf("Dispatch with no request: %v", err)
	}
}

func TestDispatchCountReportsAttachedDevices(t *testing.T) {
	bus := New()
	bus.Attach(&fakeDevice{})
	bus.Attach(&fakeDevice{})

	c := cpu.New()
	c.LoadImage([]uint16{0x0200}) // HWN A (op=special, b=0x10 HWN secondary, a=register A)
	c.Step()

	if err := bus.Dispatch(c); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if c.Reg[cpu.A] != 2 {
		t.Errorf("Reg[A] = %d, want 2 (device count)", c.Reg[cpu.A])
	}
	if c.Request.Kind != cpu.HWRequestNone {
		t.Errorf("Request.Kind = %v, want HWRequestNone after dispatch", c.Request.Kind)
	}
}

func TestDispatchInfoFillsIdentityRegisters(t *testing.T) {
	bus := New()
	bus.Attach(&fakeDevice{info: DeviceInfo{ID: 0xdeadbeef, Version: 0x0007, Manufacturer: 0xcafef00d}})

	c := cpu.New()
	c.Reg[cpu.A] = 0 // device 0
	c.Request = cpu.HWRequest{Kind: cpu.HWRequestInfo, Operand: 0}

	if err := bus.Dispatch(c); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if c.Reg[cpu.A] != uint16(0xdeadbeef&0xffff) {
		t.Errorf("Reg[A] = 0x%x, want low id word", c.Reg[cpu.A])
	}
	if c.Reg[cpu.B] != uint16(0xdeadbeef>>16) {
		t.Errorf("Reg[B] = 0x%x, want high id word", c.Reg[cpu.B])
	}
	if c.Reg[cpu.C] != 0x0007 {
		t.Errorf("Reg[C] = 0x%x, want version", c.Reg[cpu.C])
	}
}

func TestDispatchInterruptRoutesToTargetDevice(t *testing.T) {
	bus := New()
	first := &fakeDevice{}
	second := &fakeDevice{}
	bus.Attach(first)
	bus.Attach(second)

	c := cpu.New()
	c.Request = cpu.HWRequest{Kind: cpu.HWRequestInterrupt, Operand: 1}

	if err := bus.Dispatch(c); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if first.interrupts != 0 {
		t.Errorf("device 0 received %d interrupts, want 0", first.interrupts)
	}
	if second.interrupts != 1 {
		t.Errorf("device 1 received %d interrupts, want 1", second.interrupts)
	}
}

func TestDispatchOutOfRangeDeviceIDIsIgnored(t *testing.T) {
	bus := New()
	bus.Attach(&fakeDevice{})

	c := cpu.New()
	c.Request = cpu.HWRequest{Kind: cpu.HWRequestInterrupt, Operand: 5}

	if err := bus.Dispatch(c); err != nil {
		t.Fatalf("Dispatch with out-of-range id should be a no-op, got: %v", err)
	}
}

func TestDispatchPropagatesDeviceInterruptError(t *testing.T) {
	bus := New()
	wantErr := errors.New("boom")
	bus.Attach(&fakeDevice{interruptFn: func(c *cpu.CPU) error { return wantErr }})

	c := cpu.New()
	c.Request = cpu.HWRequest{Kind: cpu.HWRequestInterrupt, Operand: 0}

	if err := bus.Dispatch(c); !errors.Is(err, wantErr) {
		t.Errorf("Dispatch error = %v, want %v", err, wantErr)
	}
}

func TestStepDevicesStepsEveryAttachedDeviceOnce(t *testing.T) {
	bus := New()
	a := &fakeDevice{}
	b := &fakeDevice{}
	bus.Attach(a)
	bus.Attach(b)

	c := cpu.New()
	if err := bus.StepDevices(c); err != nil {
		t.Fatalf("StepDevices: %v", err)
	}
	if a.steps != 1 || b.steps != 1 {
		t.Errorf("steps = (%d, %d), want (1, 1)", a.steps, b.steps)
	}
}
