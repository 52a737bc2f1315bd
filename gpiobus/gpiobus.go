// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gpiobus drives an HD44780 through periph.io GPIO pins.
//
// Any gpio.PinIO works: host GPIOs found through gpioreg, the pins of an I/O
// expander, or gpiotest fakes.
package gpiobus

import (
	"fmt"
	"sort"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/GermanBionicSystems/liquidcrystal/hd44780"
)

// Init initializes the periph host drivers. It must be called before ByName
// can find host pins.
func Init() error {
	_, err := host.Init()
	return err
}

// Bus implements hd44780.Bus on top of gpio.PinIO.
type Bus struct {
	pins map[hd44780.PinID]gpio.PinIO
}

// New returns a Bus using the given pins.
func New(pins map[hd44780.PinID]gpio.PinIO) *Bus {
	b := &Bus{pins: make(map[hd44780.PinID]gpio.PinIO, len(pins))}
	for id, p := range pins {
		b.pins[id] = p
	}
	return b
}

// ByName looks up each pin in gpioreg. The names are anything gpioreg
// accepts: "GPIO17", "17", "P1_11".
func ByName(names map[hd44780.PinID]string) (*Bus, error) {
	pins := make(map[hd44780.PinID]gpio.PinIO, len(names))
	for id, name := range names {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("gpiobus: no pin named %q", name)
		}
		pins[id] = p
	}
	return New(pins), nil
}

// ByNumber looks up each GPIO number in gpioreg and uses it as the PinID.
func ByNumber(numbers ...hd44780.PinID) (*Bus, error) {
	names := make(map[hd44780.PinID]string, len(numbers))
	for _, n := range numbers {
		names[n] = fmt.Sprintf("GPIO%d", n)
	}
	return ByName(names)
}

// Pin returns the pin registered for id, or nil.
func (b *Bus) Pin(id hd44780.PinID) gpio.PinIO {
	return b.pins[id]
}

// SetMode implements hd44780.Bus.
func (b *Bus) SetMode(id hd44780.PinID, m hd44780.PinMode) error {
	p, err := b.lookup(id)
	if err != nil {
		return err
	}
	switch m {
	case hd44780.Output:
		// periph switches a pin to output on the first Out call.
		return p.Out(gpio.Low)
	case hd44780.Input:
		return p.In(gpio.Float, gpio.NoEdge)
	case hd44780.InputPullUp:
		return p.In(gpio.PullUp, gpio.NoEdge)
	default:
		return fmt.Errorf("gpiobus: unknown mode %s", m)
	}
}

// Out implements hd44780.Bus.
func (b *Bus) Out(id hd44780.PinID, l gpio.Level) error {
	p, err := b.lookup(id)
	if err != nil {
		return err
	}
	return p.Out(l)
}

// Halt halts every pin.
func (b *Bus) Halt() error {
	var first error
	for _, p := range b.pins {
		if err := p.Halt(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (b *Bus) String() string {
	ids := make([]int, 0, len(b.pins))
	for id := range b.pins {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	s := "gpiobus{"
	for i, id := range ids {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%d:%s", id, b.pins[hd44780.PinID(id)])
	}
	return s + "}"
}

func (b *Bus) lookup(id hd44780.PinID) (gpio.PinIO, error) {
	p, ok := b.pins[id]
	if !ok {
		return nil, fmt.Errorf("gpiobus: pin %d not configured", id)
	}
	return p, nil
}

// Spin is a hd44780.Delayer that busy-waits on the monotonic clock.
//
// time.Sleep is not used: the scheduler may oversleep by milliseconds, which
// only slows the display down, but also lets other goroutines run in the
// middle of an enable pulse.
type Spin struct{}

// DelayMicroseconds implements hd44780.Delayer.
func (Spin) DelayMicroseconds(us uint32) {
	if us == 0 {
		return
	}
	deadline := time.Now().Add(time.Duration(us) * time.Microsecond)
	for time.Now().Before(deadline) {
	}
}

var _ hd44780.Bus = &Bus{}
var _ hd44780.Delayer = Spin{}
