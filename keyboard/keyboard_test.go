package keyboard

import (
	"testing"
	"time"

	"github.com/Jayshua/dcpu16-modem/cpu"
)

type fakeSource struct {
	events []KeyEvent
	ok     bool
}

func (s *fakeSource) Poll() ([]KeyEvent, bool) { return s.events, s.ok }

func TestStepEnqueuesPolledEventsAndQueuesInterruptOnEmptyToNonEmpty(t *testing.T) {
	src := &fakeSource{events: []KeyEvent{{Key: 'a'}, {Key: 'b'}}, ok: true}
	k := New(src)

	c := cpu.New()
	c.Reg[cpu.A] = 3
	c.Reg[cpu.B] = 0x5000
	k.Interrupt(c) // SET_INT_MESSAGE

	if err := k.Step(c); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if len(k.queue) != 2 {
		t.Fatalf("len(queue) = %d, want 2", len(k.queue))
	}
	if c.QueueLen() != 1 {
		t.Errorf("QueueLen() = %d, want 1", c.QueueLen())
	}
}

func TestStepDoesNotReQueueInterruptWhenQueueAlreadyNonEmpty(t *testing.T) {
	src := &fakeSource{ok: true}
	k := New(src)
	c := cpu.New()
	c.Reg[cpu.A] = 3
	c.Reg[cpu.B] = 0x5000
	k.Interrupt(c)

	k.queue = []uint16{'x'}
	src.events = []KeyEvent{{Key: 'y'}}

	k.lastPoll = time.Time{} // force the poll-rate gate open
	if err := k.Step(c); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.QueueLen() != 0 {
		t.Errorf("QueueLen() = %d, want 0 (queue was already non-empty)", c.QueueLen())
	}
}

func TestStepRespectsPollRateGate(t *testing.T) {
	src := &fakeSource{events: []KeyEvent{{Key: 'a'}}, ok: true}
	k := New(src)
	c := cpu.New()

	k.lastPoll = time.Now()
	if err := k.Step(c); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if len(k.queue) != 0 {
		t.Errorf("len(queue) = %d, want 0 (poll should have been rate-gated)", len(k.queue))
	}
}

func TestInterruptClearClearsQueue(t *testing.T) {
	k := New(&fakeSource{})
	k.queue = []uint16{'a', 'b', 'c'}

	c := cpu.New()
	c.Reg[cpu.A] = 0 // CLEAR
	k.Interrupt(c)

	if len(k.queue) != 0 {
		t.Errorf("len(queue) = %d, want 0 after CLEAR", len(k.queue))
	}
}

func TestInterruptPopDequeuesOldestKeyIntoRegC(t *testing.T) {
	k := New(&fakeSource{})
	k.queue = []uint16{'a', 'b'}

	c := cpu.New()
	c.Reg[cpu.A] = 1 // POP
	k.Interrupt(c)

	if c.Reg[cpu.C] != 'a' {
		t.Errorf("Reg[C] = %q, want 'a'", c.Reg[cpu.C])
	}
	if len(k.queue) != 1 || k.queue[0] != 'b' {
		t.Errorf("queue = %v, want ['b']", k.queue)
	}
}

func TestInterruptPopOnEmptyQueueYieldsZero(t *testing.T) {
	k := New(&fakeSource{})
	c := cpu.New()
	c.Reg[cpu.A] = 1
	c.Reg[cpu.C] = 0x1234
	k.Interrupt(c)

	if c.Reg[cpu.C] != 0 {
		t.Errorf("Reg[C] = %d, want 0", c.Reg[cpu.C])
	}
}

func TestSetIntMessageZeroDisablesInterrupt(t *testing.T) {
	k := New(&fakeSource{events: []KeyEvent{{Key: 'a'}}, ok: true})
	c := cpu.New()
	c.Reg[cpu.A] = 3
	c.Reg[cpu.B] = 0
	k.Interrupt(c)

	k.lastPoll = time.Time{}
	if err := k.Step(c); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if c.QueueLen() != 0 {
		t.Errorf("QueueLen() = %d, want 0 (interrupt message 0 disables notification)", c.QueueLen())
	}
}

func TestQueueCapsAtMaxQueue(t *testing.T) {
	events := make([]KeyEvent, maxQueue+10)
	for i := range events {
		events[i] = KeyEvent{Key: uint16(i)}
	}
	k := New(&fakeSource{events: events, ok: true})
	c := cpu.New()

	k.lastPoll = time.Time{}
	if err := k.Step(c); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if len(k.queue) != maxQueue {
		t.Errorf("len(queue) = %d, want %d", len(k.queue), maxQueue)
	}
}
