// Command dcpu runs a DCPU-16 program image against a TCP modem and an
// optional LEM-1802 monitor and keyboard, rendering to a terminal.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/nsf/termbox-go"

	"github.com/Jayshua/dcpu16-modem/cpu"
	"github.com/Jayshua/dcpu16-modem/hardware"
	"github.com/Jayshua/dcpu16-modem/keyboard"
	"github.com/Jayshua/dcpu16-modem/loader"
	"github.com/Jayshua/dcpu16-modem/modem"
	"github.com/Jayshua/dcpu16-modem/monitor"
	"github.com/Jayshua/dcpu16-modem/termsink"
)

func main() {
	log.SetFlags(0)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "start":
		err = runStart(os.Args[2:])
	case "assemble":
		err = runAssemble(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Printf("dcpu: %v", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  dcpu start <image> [--lem1802] [--keyboard] [--listen-port N] [--dial-port N] [--hz N]")
	fmt.Fprintln(os.Stderr, "  dcpu assemble <file> [--output <outfile>]")
}

func runAssemble(args []string) error {
	fs := flag.NewFlagSet("assemble", flag.ContinueOnError)
	fs.String("output", "", "output file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	return errors.New("assemble: not implemented")
}

func runStart(args []string) error {
	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	useMonitor := fs.Bool("lem1802", false, "attach the LEM-1802 text monitor")
	useKeyboard := fs.Bool("keyboard", false, "attach the keyboard device")
	listenPort := fs.Int("listen-port", 6483, "modem inbound TCP port")
	dialPort := fs.Int("dial-port", 6482, "modem outbound TCP port")
	hz := fs.Int("hz", 100000, "CPU ticks per second")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		usage()
		return errors.New("missing <image> argument")
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	words, err := loader.Load(f)
	if err != nil {
		return err
	}

	c := cpu.New()
	c.LoadImage(words)

	bus := hardware.New()

	var mon *monitor.Monitor
	if *useMonitor {
		mon = monitor.New()
		bus.Attach(mon)
	}

	modemDev, err := modem.New(*listenPort, *dialPort)
	if err != nil {
		return fmt.Errorf("start modem: %w", err)
	}
	defer modemDev.Close()
	bus.Attach(modemDev)

	var keySource *termboxKeySource
	if *useKeyboard {
		keySource = newTermboxKeySource()
		defer keySource.Close()
		bus.Attach(keyboard.New(keySource))
	}

	var sink *termsink.FramebufferSink
	if *useMonitor {
		sink = termsink.New()
		if err := sink.Init(); err != nil {
			return err
		}
		defer sink.Close()
	}

	return runLoop(c, bus, mon, sink, *hz)
}

func runLoop(c *cpu.CPU, bus *hardware.Bus, mon *monitor.Monitor, sink *termsink.FramebufferSink, hz int) error {
	tickPeriod := time.Second / time.Duration(hz)
	frameEvery := time.Second / 60
	lastFrame := time.Now()

	for {
		start := time.Now()

		c.Step()
		if err := bus.Dispatch(c); err != nil {
			return err
		}
		if err := bus.StepDevices(c); err != nil {
			return err
		}

		if sink != nil && time.Since(lastFrame) >= frameEvery {
			sink.Draw(mon.Render(c))
			lastFrame = time.Now()
		}

		if elapsed := time.Since(start); elapsed < tickPeriod {
			time.Sleep(tickPeriod - elapsed)
		}
	}
}

// termboxKeySource bridges termbox's blocking PollEvent loop into
// keyboard.EventSource's non-blocking Poll contract: a background
// goroutine drains termbox events into a channel, Poll drains whatever
// is buffered without blocking.
type termboxKeySource struct {
	events chan keyboard.KeyEvent
	done   chan struct{}
}

func newTermboxKeySource() *termboxKeySource {
	s := &termboxKeySource{
		events: make(chan keyboard.KeyEvent, 256),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *termboxKeySource) run() {
	for {
		ev := termbox.PollEvent()
		select {
		case <-s.done:
			return
		default:
		}
		if ev.Type != termbox.EventKey {
			continue
		}
		key, ok := translateKey(ev)
		if !ok {
			continue
		}
		select {
		case s.events <- keyboard.KeyEvent{Key: key}:
		default:
		}
	}
}

func (s *termboxKeySource) Poll() ([]keyboard.KeyEvent, bool) {
	var out []keyboard.KeyEvent
	for {
		select {
		case ev := <-s.events:
			out = append(out, ev)
		default:
			return out, len(out) > 0
		}
	}
}

func (s *termboxKeySource) Close() { close(s.done) }

func translateKey(ev termbox.Event) (uint16, bool) {
	if ev.Ch != 0 && ev.Ch >= 0x20 && ev.Ch < 0x7f {
		return uint16(ev.Ch), true
	}
	switch ev.Key {
	case termbox.KeySpace:
		return uint16(' '), true
	case termbox.KeyBackspace, termbox.KeyBackspace2:
		return keyboard.KeyBack, true
	case termbox.KeyEnter:
		return keyboard.KeyReturn, true
	case termbox.KeyInsert:
		return keyboard.KeyInsert, true
	case termbox.KeyDelete:
		return keyboard.KeyDelete, true
	case termbox.KeyArrowUp:
		return keyboard.KeyUp, true
	case termbox.KeyArrowDown:
		return keyboard.KeyDown, true
	case termbox.KeyArrowLeft:
		return keyboard.KeyLeft, true
	case termbox.KeyArrowRight:
		return keyboard.KeyRight, true
	default:
		return 0, false
	}
}
