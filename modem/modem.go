// Package modem implements a TCP-backed DCPU-16 modem peripheral: a
// single-connection state machine (Idle/Ringing/Dialing/Connected/
// Writing) driving non-blocking socket I/O, surfaced to the CPU through
// interrupt sub-commands and status codes.
package modem

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"net"
	"syscall"
	"time"

	"github.com/Jayshua/dcpu16-modem/cpu"
	"github.com/Jayshua/dcpu16-modem/hardware"
)

// Status codes, the values GET_STATUS reports in Reg[B] (last_event).
const (
	StatusNothing            uint16 = 0
	StatusNoTelephoneService uint16 = 1
	StatusLineBusy           uint16 = 2
	StatusNoModem            uint16 = 3
	StatusConnectionMade     uint16 = 4
	StatusRinging            uint16 = 5
	StatusConnectionLost     uint16 = 6
	StatusDataInBuffer       uint16 = 7
)

const (
	answerByte byte = 0xaa
	busyByte   byte = 0xbb
)

const (
	hwID           = 0x42babf3c
	hwVersion      = 0x0001
	hwManufacturer = 0x1eb37e91
)

// stateKind is the modem's state-machine tag; its numeric value is also
// what GET_STATUS reports in Reg[A].
type stateKind uint16

const (
	stateIdle stateKind = iota
	stateRinging
	stateDialing
	stateConnected
	stateWriting
)

// Modem is a single-connection TCP modem device.
type Modem struct {
	listener *net.TCPListener
	dialPort int

	kind   stateKind
	conn   net.Conn
	cursor uint16 // Writing: next word index to send
	end    uint16 // Writing: one past the last word index to send

	rxBuffer []uint16

	interruptAddr uint16 // 0 disables
	lastEvent     uint16
}

// New binds the inbound listener to listenPort (spec default 6483) and
// prepares outbound DIAL to target dialPort (spec default 6482) on
// whatever address DIAL's B/C registers encode.
func New(listenPort, dialPort int) (*Modem, error) {
	ln, err := net.ListenTCP("tcp", &net.TCPAddr{Port: listenPort})
	if err != nil {
		return nil, fmt.Errorf("modem: listen on port %d: %w", listenPort, err)
	}
	return &Modem{listener: ln, dialPort: dialPort}, nil
}

// Close releases the inbound listener and any active connection.
func (m *Modem) Close() error {
	m.closeConn()
	return m.listener.Close()
}

// Info reports this modem's hardware identity.
func (m *Modem) Info() hardware.DeviceInfo {
	return hardware.DeviceInfo{ID: hwID, Version: hwVersion, Manufacturer: hwManufacturer}
}

// Interrupt dispatches on Reg[A] per the modem's sub-command table.
func (m *Modem) Interrupt(c *cpu.CPU) error {
	switch c.Reg[cpu.A] {
	case 0:
		m.setInterrupt(c)
	case 1:
		m.getStatus(c)
	case 2:
		m.answer()
	case 3:
		return m.dial(c)
	case 4:
		m.hangUp()
	case 5:
		m.send(c)
	}
	return nil
}

func (m *Modem) setInterrupt(c *cpu.CPU) { m.interruptAddr = c.Reg[cpu.B] }

func (m *Modem) getStatus(c *cpu.CPU) {
	c.Reg[cpu.A] = uint16(m.kind)
	c.Reg[cpu.B] = m.lastEvent
	c.Reg[cpu.C] = uint16(len(m.rxBuffer))
}

func (m *Modem) answer() {
	if m.kind != stateRinging {
		return
	}
	m.conn.SetWriteDeadline(time.Now().Add(time.Second))
	if _, err := m.conn.Write([]byte{answerByte}); err != nil {
		log.Printf("modem: answer write failed: %v", err)
	}
	m.kind = stateConnected
}

func (m *Modem) hangUp() {
	m.closeConn()
	m.kind = stateIdle
}

func (m *Modem) dial(c *cpu.CPU) error {
	m.closeConn()
	m.kind = stateIdle

	first := c.Reg[cpu.B]
	second := c.Reg[cpu.C]
	addr := net.JoinHostPort(
		net.IPv4(byte(first>>8), byte(first), byte(second>>8), byte(second)).String(),
		fmt.Sprint(m.dialPort),
	)

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		if errors.Is(err, syscall.ECONNREFUSED) {
			return m.interruptCPU(c, StatusNoModem)
		}
		log.Printf("modem: dial %s failed: %v", addr, err)
		return m.interruptCPU(c, StatusNoTelephoneService)
	}
	m.conn = conn
	m.kind = stateDialing
	return nil
}

// send begins an asynchronous write of Reg[C] words starting at Reg[B],
// handled incrementally by Step while in stateWriting.
func (m *Modem) send(c *cpu.CPU) {
	if m.kind != stateConnected {
		return
	}
	offset, size := c.Reg[cpu.B], c.Reg[cpu.C]
	if size == 0 {
		return
	}
	m.cursor = offset
	m.end = offset + size
	m.kind = stateWriting
}

// interruptCPU queues interruptAddr with lastEvent set to status, if an
// interrupt address is configured.
func (m *Modem) interruptCPU(c *cpu.CPU, status uint16) error {
	if m.interruptAddr == 0 {
		return nil
	}
	m.lastEvent = status
	return c.QueueInterrupt(m.interruptAddr)
}

func (m *Modem) closeConn() {
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
}

// refuseIncoming accepts and immediately rejects any inbound connection
// attempt while this modem is not Idle, per spec's "Any non-Idle" rule.
func (m *Modem) refuseIncoming() {
	m.listener.SetDeadline(time.Now().Add(time.Microsecond))
	conn, err := m.listener.Accept()
	if err != nil {
		return
	}
	conn.SetWriteDeadline(time.Now().Add(time.Second))
	conn.Write([]byte{busyByte})
	conn.Close()
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Step advances the modem state machine by one host tick.
func (m *Modem) Step(c *cpu.CPU) error {
	switch m.kind {
	case stateIdle:
		return m.stepIdle(c)
	case stateRinging:
		return m.stepRinging(c)
	case stateDialing:
		return m.stepDialing(c)
	case stateConnected:
		return m.stepConnected(c)
	case stateWriting:
		return m.stepWriting(c)
	}
	return nil
}

func (m *Modem) stepIdle(c *cpu.CPU) error {
	m.listener.SetDeadline(time.Now().Add(time.Microsecond))
	conn, err := m.listener.Accept()
	if err != nil {
		if !isTimeout(err) {
			log.Printf("modem: accept error: %v", err)
		}
		return nil
	}
	m.conn = conn
	m.kind = stateRinging
	return m.interruptCPU(c, StatusRinging)
}

func (m *Modem) stepRinging(c *cpu.CPU) error {
	m.refuseIncoming()

	// Discard anything the caller sends before the user answers.
	buf := make([]byte, 500)
	m.conn.SetReadDeadline(time.Now().Add(time.Microsecond))
	for {
		if _, err := m.conn.Read(buf); err != nil {
			break
		}
	}
	return nil
}

func (m *Modem) stepDialing(c *cpu.CPU) error {
	m.refuseIncoming()

	buf := make([]byte, 1)
	m.conn.SetReadDeadline(time.Now().Add(time.Microsecond))
	n, err := m.conn.Read(buf)
	if err != nil {
		if isTimeout(err) {
			return nil
		}
		m.closeConn()
		m.kind = stateIdle
		return m.interruptCPU(c, StatusConnectionLost)
	}
	if n == 0 {
		m.closeConn()
		m.kind = stateIdle
		return m.interruptCPU(c, StatusConnectionLost)
	}

	switch buf[0] {
	case answerByte:
		m.kind = stateConnected
		return m.interruptCPU(c, StatusConnectionMade)
	case busyByte:
		m.closeConn()
		m.kind = stateIdle
		return m.interruptCPU(c, StatusLineBusy)
	default:
		return nil
	}
}

func (m *Modem) stepConnected(c *cpu.CPU) error {
	m.refuseIncoming()

	buf := make([]byte, 1000)
	m.conn.SetReadDeadline(time.Now().Add(time.Microsecond))
	n, err := m.conn.Read(buf)
	if err != nil {
		if isTimeout(err) {
			return nil
		}
		m.closeConn()
		m.kind = stateIdle
		return m.interruptCPU(c, StatusConnectionLost)
	}
	if n == 0 {
		m.closeConn()
		m.kind = stateIdle
		return m.interruptCPU(c, StatusConnectionLost)
	}

	wasEmpty := len(m.rxBuffer) == 0
	m.rxBuffer = append(m.rxBuffer, packWords(buf[:n])...)
	if wasEmpty {
		return m.interruptCPU(c, StatusDataInBuffer)
	}
	return nil
}

func (m *Modem) stepWriting(c *cpu.CPU) error {
	m.refuseIncoming()

	var packet []byte
	for i := m.cursor; i < m.cursor+5 && i < m.end; i++ {
		word := c.Mem[i]
		packet = append(packet, byte(word>>8), byte(word))
	}

	m.conn.SetWriteDeadline(time.Now().Add(time.Microsecond))
	if _, err := m.conn.Write(packet); err != nil {
		if isTimeout(err) {
			return nil
		}
		log.Printf("modem: write error: %v", err)
		m.closeConn()
		m.kind = stateIdle
		return nil
	}

	if m.cursor+5 >= m.end {
		m.kind = stateConnected
	} else {
		m.cursor += 5
	}
	return nil
}

// PopWord removes and returns the oldest buffered received word, for a
// consumer (e.g. a future RECEIVE sub-command or test harness) that
// wants to drain rxBuffer directly; ok is false if the buffer is empty.
func (m *Modem) PopWord() (word uint16, ok bool) {
	if len(m.rxBuffer) == 0 {
		return 0, false
	}
	word = m.rxBuffer[0]
	m.rxBuffer = m.rxBuffer[1:]
	return word, true
}

// packWords groups bytes into big-endian words; a trailing odd byte
// becomes the low byte of a final word with high byte 0.
func packWords(b []byte) []uint16 {
	words := make([]uint16, 0, (len(b)+1)/2)
	for i := 0; i < len(b); i += 2 {
		if i+1 < len(b) {
			words = append(words, binary.BigEndian.Uint16(b[i:i+2]))
		} else {
			words = append(words, uint16(b[i]))
		}
	}
	return words
}
