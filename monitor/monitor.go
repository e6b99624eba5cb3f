// Package monitor implements the LEM-1802, a text-mode hardware monitor:
// programmable font and palette RAM, a memory-mapped 32x12 character grid
// with a border, and interrupt sub-commands to configure it.
package monitor

import (
	"github.com/Jayshua/dcpu16-modem/cpu"
	"github.com/Jayshua/dcpu16-modem/hardware"
)

const (
	hwID           = 0x7349f615
	hwVersion      = 0x1802
	hwManufacturer = 0x1c6c8b36 // NYA_ELEKTRISKA

	fontWords    = 256
	paletteWords = 16

	interiorWidth  = 32
	interiorHeight = 12
	// Width and Height are the full rendered grid dimensions, including
	// the one-cell border on every side.
	Width  = interiorWidth + 2
	Height = interiorHeight + 2
)

// Cell is one character position of a rendered Frame.
type Cell struct {
	Glyph byte
	FG    [3]float32
	BG    [3]float32
	Blink bool
}

// Frame is one rendered video frame: Width x Height cells, row-major.
type Frame struct {
	Cells [Height][Width]Cell
}

// Monitor is a LEM-1802 text-mode device.
type Monitor struct {
	fontRAM     [fontWords]uint16
	paletteRAM  [paletteWords]uint16
	videoBase   uint16
	borderColor uint16
}

// New returns a Monitor with the stock font and palette loaded and
// rendering disabled (videoBase == 0), matching the device's power-on
// state.
func New() *Monitor {
	m := &Monitor{borderColor: 7}
	m.fontRAM = defaultFont
	m.paletteRAM = defaultPalette
	return m
}

// Info reports the LEM-1802's hardware identity.
func (m *Monitor) Info() hardware.DeviceInfo {
	return hardware.DeviceInfo{ID: hwID, Version: hwVersion, Manufacturer: hwManufacturer}
}

// Interrupt dispatches on Reg[A] per the LEM-1802 sub-command table.
func (m *Monitor) Interrupt(c *cpu.CPU) error {
	switch c.Reg[cpu.A] {
	case 0:
		m.memMapScreen(c)
	case 1:
		m.memMapFont(c)
	case 2:
		m.memMapPalette(c)
	case 3:
		m.setBorderColor(c)
	case 4:
		m.memDumpFont(c)
	case 5:
		m.memDumpPalette(c)
	}
	return nil
}

func (m *Monitor) memMapScreen(c *cpu.CPU) { m.videoBase = c.Reg[cpu.B] }

func (m *Monitor) memMapFont(c *cpu.CPU) {
	base := c.Reg[cpu.B]
	for i := 0; i < fontWords; i++ {
		m.fontRAM[i] = c.Mem[base+uint16(i)]
	}
}

func (m *Monitor) memMapPalette(c *cpu.CPU) {
	base := c.Reg[cpu.B]
	for i := 0; i < paletteWords; i++ {
		m.paletteRAM[i] = c.Mem[base+uint16(i)]
	}
}

func (m *Monitor) setBorderColor(c *cpu.CPU) { m.borderColor = c.Reg[cpu.B] & 0xf }

func (m *Monitor) memDumpFont(c *cpu.CPU) {
	base := c.Reg[cpu.B]
	for i := 0; i < fontWords; i++ {
		c.Mem[base+uint16(i)] = m.fontRAM[i]
	}
}

func (m *Monitor) memDumpPalette(c *cpu.CPU) {
	base := c.Reg[cpu.B]
	for i := 0; i < paletteWords; i++ {
		c.Mem[base+uint16(i)] = m.paletteRAM[i]
	}
}

// Step is a no-op: the LEM-1802 renders on demand via Render, it does
// not need to do anything once per CPU tick on its own.
func (m *Monitor) Step(c *cpu.CPU) error { return nil }

// Render produces one video frame. If video_base is 0 (rendering
// disabled), it returns the zero Frame.
func (m *Monitor) Render(c *cpu.CPU) Frame {
	var f Frame
	if m.videoBase == 0 {
		return f
	}

	border := Cell{
		Glyph: 0,
		FG:    m.color(m.borderColor),
		BG:    m.color(m.borderColor),
	}
	for x := 0; x < Width; x++ {
		f.Cells[0][x] = border
		f.Cells[Height-1][x] = border
	}

	for y := 0; y < interiorHeight; y++ {
		f.Cells[y+1][0] = border
		f.Cells[y+1][Width-1] = border
		for x := 0; x < interiorWidth; x++ {
			addr := m.videoBase + uint16(x) + uint16(y)*interiorWidth
			word := c.Mem[addr]
			f.Cells[y+1][x+1] = Cell{
				Glyph: byte(word & 0x7f),
				FG:    m.color((word >> 12) & 0xf),
				BG:    m.color((word >> 8) & 0xf),
				Blink: (word>>7)&1 != 0,
			}
		}
	}
	return f
}

// color expands a 12-bit 0x0RGB palette entry into [0,1] floats.
func (m *Monitor) color(index uint16) [3]float32 {
	word := m.paletteRAM[index&0xf]
	r := float32((word>>8)&0xf) / 15
	g := float32((word>>4)&0xf) / 15
	b := float32(word&0xf) / 15
	return [3]float32{r, g, b}
}

// Glyph returns the two font words packed as a 32-bit bitmap for glyph
// index g (0-127), laid out as four 8-pixel-tall columns. Pixel (col,
// row) is bit (24 - 8*col) + row counted from the LSB.
func (m *Monitor) Glyph(g byte) uint32 {
	i := int(g&0x7f) * 2
	return uint32(m.fontRAM[i])<<16 | uint32(m.fontRAM[i+1])
}

// GlyphPixel reports whether the glyph bitmap bits (as returned by Glyph)
// has a foreground pixel at the given column (0-3) and row (0-7).
func GlyphPixel(bits uint32, col, row int) bool {
	shift := (24 - 8*col) + row
	return bits&(1<<uint(shift)) != 0
}
