// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// lcdecho shows NUL terminated messages received on a serial port on an
// HD44780 character LCD wired to GPIO pins.
//
// With -backend sim the display is simulated and printed to the terminal,
// which is handy to try a sender without hardware:
//
//	printf 'Hello\nWorld\0' | lcdecho -backend sim -port -
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/tarm/serial"

	"github.com/GermanBionicSystems/liquidcrystal/gpiobus"
	"github.com/GermanBionicSystems/liquidcrystal/hd44780"
	"github.com/GermanBionicSystems/liquidcrystal/hd44780/hd44780test"
	"github.com/GermanBionicSystems/liquidcrystal/rpiobus"
	"github.com/GermanBionicSystems/liquidcrystal/screen"
	"github.com/GermanBionicSystems/liquidcrystal/serialecho"
)

type config struct {
	backend string
	port    string
	baud    int
	pins    hd44780.Pins
	opts    hd44780.Opts
	png     string
	verbose bool
}

func parsePins(s string) ([]hd44780.PinID, error) {
	var out []hd44780.PinID
	for _, f := range strings.Split(s, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(f), 10, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid pin %q", f)
		}
		out = append(out, hd44780.PinID(n))
	}
	return out, nil
}

func parseFlags(args []string) (*config, error) {
	fs := flag.NewFlagSet("lcdecho", flag.ContinueOnError)
	backend := fs.String("backend", "gpio", "pin driver: gpio (periph), rpio (go-rpio) or sim")
	port := fs.String("port", "/dev/ttyACM0", "serial port to read messages from, - for stdin")
	baud := fs.Int("baud", 57600, "serial port speed")
	rs := fs.Uint("rs", 12, "register select GPIO")
	rw := fs.Int("rw", -1, "read/write GPIO, -1 when tied to ground")
	e := fs.Uint("e", 11, "enable GPIO")
	data := fs.String("data", "5,4,3,2", "data GPIOs, D4-D7 or D0-D7")
	cols := fs.Int("cols", hd44780.DefaultOpts.Cols, "display columns")
	lines := fs.Int("lines", hd44780.DefaultOpts.Lines, "display lines: 1, 2 or 4")
	tall := fs.Bool("5x10", false, "use the 5x10 font (1 line displays only)")
	png := fs.String("png", "", "with -backend sim, write a snapshot to this file on exit")
	verbose := fs.Bool("v", false, "log every pin change (sim only)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, errors.New("unexpected arguments")
	}
	d, err := parsePins(*data)
	if err != nil {
		return nil, err
	}
	c := &config{
		backend: *backend,
		port:    *port,
		baud:    *baud,
		pins:    hd44780.Pins{RS: hd44780.PinID(*rs), Enable: hd44780.PinID(*e), Data: d},
		opts:    hd44780.Opts{Cols: *cols, Lines: *lines},
		png:     *png,
		verbose: *verbose,
	}
	if *rw >= 0 {
		c.pins.RW = hd44780.Wired(hd44780.PinID(*rw))
	}
	if *tall {
		c.opts.Font = hd44780.Font5x10
	}
	return c, nil
}

// simDisplay redraws the simulated panel after each change.
type simDisplay struct {
	*hd44780.Dev
	ctrl    *hd44780test.Controller
	console *screen.Console
}

func (s *simDisplay) Write(p []byte) (int, error) {
	n, err := s.Dev.Write(p)
	if err != nil {
		return n, err
	}
	return n, s.console.Render(s.ctrl)
}

// openBus returns the bus for the selected backend and a function releasing
// it. The simulated bus is returned a second time as sim.
func openBus(c *config) (bus hd44780.Bus, delay hd44780.Delayer, sim *hd44780test.Bus, release func() error, err error) {
	switch c.backend {
	case "gpio":
		if err := gpiobus.Init(); err != nil {
			return nil, nil, nil, nil, err
		}
		ids := append([]hd44780.PinID{c.pins.RS, c.pins.Enable}, c.pins.Data...)
		if c.pins.RW != nil {
			ids = append(ids, *c.pins.RW)
		}
		b, err := gpiobus.ByNumber(ids...)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		return b, gpiobus.Spin{}, nil, b.Halt, nil
	case "rpio":
		b, err := rpiobus.Open()
		if err != nil {
			return nil, nil, nil, nil, err
		}
		return b, gpiobus.Spin{}, nil, b.Close, nil
	case "sim":
		b := hd44780test.NewBus(c.pins)
		if c.verbose {
			b.Log = log.New(os.Stderr, "sim: ", 0)
		}
		return b, b, b, func() error { return nil }, nil
	default:
		return nil, nil, nil, nil, fmt.Errorf("unknown backend %q", c.backend)
	}
}

func openInput(c *config) (io.ReadCloser, error) {
	if c.port == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return serial.OpenPort(&serial.Config{Name: c.port, Baud: c.baud, ReadTimeout: 100 * time.Millisecond})
}

func writeSnapshot(c *config, dev *hd44780.Dev, ctrl *hd44780test.Controller) error {
	offsets := dev.RowOffsets()
	s, err := screen.NewSnapshot(dev.Cols(), offsets[:dev.Lines()], 4)
	if err != nil {
		return err
	}
	f, err := os.Create(c.png)
	if err != nil {
		return err
	}
	if err := s.WritePNG(f, ctrl); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func mainImpl() error {
	c, err := parseFlags(os.Args[1:])
	if err != nil {
		return err
	}
	ok := color.New(color.FgGreen).SprintFunc()

	bus, delay, sim, release, err := openBus(c)
	if err != nil {
		return err
	}
	defer func() {
		if err := release(); err != nil {
			log.Printf("release %s: %v", c.backend, err)
		}
	}()
	dev, err := hd44780.New(bus, delay, c.pins)
	if err != nil {
		return err
	}
	if err := dev.Init(&c.opts); err != nil {
		return err
	}
	// Start with the cursor hidden at the first position.
	if err := dev.Cursor(false); err != nil {
		return err
	}
	if err := dev.Blink(false); err != nil {
		return err
	}
	if err := dev.SetCursor(0, 0); err != nil {
		return err
	}
	log.Printf("%s %s", ok("ready"), dev)

	var d serialecho.Display = dev
	if sim != nil {
		offsets := dev.RowOffsets()
		console := screen.NewConsole(&screen.Opts{Cols: dev.Cols(), RowOffsets: offsets[:dev.Lines()]})
		defer func() { _ = console.Halt() }()
		d = &simDisplay{Dev: dev, ctrl: sim.Controller, console: console}
	}

	in, err := openInput(c)
	if err != nil {
		return err
	}
	defer in.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	opts := serialecho.DefaultOpts
	opts.ExitOnEOF = c.port == "-"
	e := serialecho.New(in, d, &opts)
	err = e.Run(ctx)
	log.Printf("%s %d messages", ok("done"), e.Messages)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	if sim != nil && c.png != "" {
		if err2 := writeSnapshot(c, dev, sim.Controller); err2 != nil && err == nil {
			err = err2
		}
	}
	return err
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "lcdecho: %s.\n", color.RedString(err.Error()))
		os.Exit(1)
	}
}
