// Package termsink renders monitor.Frame values to a terminal using
// termbox-go: a character-cell framebuffer sink standing in for the
// real windowed/shader rendering backend.
package termsink

import (
	"fmt"

	"github.com/nsf/termbox-go"

	"github.com/Jayshua/dcpu16-modem/monitor"
)

// FramebufferSink draws monitor.Frame values to the controlling
// terminal, one LEM-1802 character cell per terminal cell.
type FramebufferSink struct {
	started bool
}

// New returns a FramebufferSink; call Init before the first Draw.
func New() *FramebufferSink {
	return &FramebufferSink{}
}

// Init initializes termbox and switches it to 216-color output, the
// closest termbox output mode to the monitor's continuous RGB palette.
func (s *FramebufferSink) Init() error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("termsink: init termbox: %w", err)
	}
	termbox.SetOutputMode(termbox.Output216)
	s.started = true
	return nil
}

// Close tears down termbox. Safe to call even if Init was never called.
func (s *FramebufferSink) Close() {
	if s.started {
		termbox.Close()
	}
}

// Draw renders one frame and flushes it to the terminal.
func (s *FramebufferSink) Draw(f monitor.Frame) {
	termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
	for y := 0; y < monitor.Height; y++ {
		for x := 0; x < monitor.Width; x++ {
			cell := f.Cells[y][x]
			termbox.SetCell(x, y, glyphRune(cell.Glyph), colorAttr(cell.FG), colorAttr(cell.BG))
		}
	}
	termbox.Flush()
}

// glyphRune maps a LEM-1802 glyph index to a displayable rune. The
// default font's glyph table is laid out in ASCII order, so printable
// indices render as themselves; everything else renders blank.
func glyphRune(glyph byte) rune {
	if glyph >= 0x20 && glyph < 0x7f {
		return rune(glyph)
	}
	return ' '
}

// colorAttr maps a [0,1] RGB triple onto termbox's 6x6x6 color cube
// (Output216), the closest fixed-palette approximation termbox exposes
// to the monitor's continuous palette.
func colorAttr(rgb [3]float32) termbox.Attribute {
	return termbox.Attribute(1 + 36*cubeIndex(rgb[0]) + 6*cubeIndex(rgb[1]) + cubeIndex(rgb[2]))
}

func cubeIndex(c float32) int {
	v := int(c*5 + 0.5)
	switch {
	case v < 0:
		return 0
	case v > 5:
		return 5
	default:
		return v
	}
}
