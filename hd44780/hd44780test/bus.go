// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hd44780test is meant to be used to test code driving an HD44780
// without hardware.
//
// Bus is a fake hd44780.Bus and hd44780.Delayer backed by gpiotest pins and
// a simulated microsecond clock. Every falling edge of the enable line is
// decoded into a Latch and fed to a Controller, a model of the HD44780
// instruction set that keeps DDRAM and CGRAM contents.
package hd44780test

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"

	"github.com/GermanBionicSystems/liquidcrystal/hd44780"
)

// Minimum enable high time, in microseconds. The datasheet asks for 450ns.
const minEnableHigh = 1

// Latch is the state of the bus sampled on a falling edge of enable.
type Latch struct {
	// At is the simulated time in microseconds since power on.
	At uint64
	RS gpio.Level
	// Value has the first data pin in bit 0. On a 4 bit bus that is D4.
	Value byte
}

// Bus implements hd44780.Bus and hd44780.Delayer.
//
// Modify Err to simulate I/O failures.
type Bus struct {
	Pins   map[hd44780.PinID]*gpiotest.Pin
	Modes  map[hd44780.PinID]hd44780.PinMode
	Writes map[hd44780.PinID]int

	// Now is the simulated time in microseconds. Only DelayMicroseconds
	// advances it.
	Now     uint64
	Delays  []uint32
	Latches []Latch
	// Violations lists enable pulses shorter than the datasheet minimum.
	Violations []string

	// Controller receives every latch. It can be nil.
	Controller *Controller
	// Log, when set, gets a line per pin change like gpiotest.LogPinIO.
	Log *log.Logger
	// Err is returned by SetMode and Out when not nil.
	Err error

	wiring   hd44780.Pins
	risingAt uint64
}

// NewBus returns a Bus for the given wiring, with a Controller attached.
func NewBus(wiring hd44780.Pins) *Bus {
	b := &Bus{
		Pins:       map[hd44780.PinID]*gpiotest.Pin{},
		Modes:      map[hd44780.PinID]hd44780.PinMode{},
		Writes:     map[hd44780.PinID]int{},
		Controller: NewController(len(wiring.Data)),
		wiring:     wiring,
	}
	b.pin(wiring.RS, "RS")
	b.pin(wiring.Enable, "E")
	if wiring.RW != nil {
		b.pin(*wiring.RW, "RW")
	}
	first := 0
	if len(wiring.Data) == 4 {
		first = 4
	}
	for i, d := range wiring.Data {
		b.pin(d, fmt.Sprintf("D%d", first+i))
	}
	return b
}

// Level returns the current level of p.
func (b *Bus) Level(p hd44780.PinID) gpio.Level {
	return b.pin(p, "").Read()
}

// SetMode implements hd44780.Bus.
func (b *Bus) SetMode(p hd44780.PinID, m hd44780.PinMode) error {
	if b.Err != nil {
		return b.Err
	}
	pin := b.pin(p, "")
	b.Modes[p] = m
	if b.Log != nil {
		b.Log.Printf("%s.SetMode(%s)", pin, m)
	}
	switch m {
	case hd44780.Input:
		return pin.In(gpio.Float, gpio.NoEdge)
	case hd44780.InputPullUp:
		return pin.In(gpio.PullUp, gpio.NoEdge)
	}
	return nil
}

// Out implements hd44780.Bus.
func (b *Bus) Out(p hd44780.PinID, l gpio.Level) error {
	if b.Err != nil {
		return b.Err
	}
	pin := b.pin(p, "")
	if m, ok := b.Modes[p]; !ok || m != hd44780.Output {
		return fmt.Errorf("hd44780test: %s is not an output", pin)
	}
	prev := pin.Read()
	if err := pin.Out(l); err != nil {
		return err
	}
	b.Writes[p]++
	if b.Log != nil {
		b.Log.Printf("%s.Out(%s) @%dus", pin, l, b.Now)
	}
	if p != b.wiring.Enable || prev == l {
		return nil
	}
	if l == gpio.High {
		b.risingAt = b.Now
		return nil
	}
	if b.Now-b.risingAt < minEnableHigh {
		b.Violations = append(b.Violations, fmt.Sprintf("enable high for %dus at %dus", b.Now-b.risingAt, b.Now))
	}
	b.latch()
	return nil
}

// DelayMicroseconds implements hd44780.Delayer.
func (b *Bus) DelayMicroseconds(us uint32) {
	b.Delays = append(b.Delays, us)
	b.Now += uint64(us)
}

func (b *Bus) latch() {
	l := Latch{At: b.Now, RS: b.Level(b.wiring.RS)}
	for i, d := range b.wiring.Data {
		if b.Level(d) {
			l.Value |= 1 << i
		}
	}
	b.Latches = append(b.Latches, l)
	if b.Controller != nil {
		b.Controller.Latch(l)
	}
}

func (b *Bus) pin(p hd44780.PinID, name string) *gpiotest.Pin {
	if pin, ok := b.Pins[p]; ok {
		return pin
	}
	if name == "" {
		name = fmt.Sprintf("GPIO%d", p)
	}
	pin := &gpiotest.Pin{N: name, Num: int(p), Fn: "GPIO"}
	b.Pins[p] = pin
	return pin
}

var _ hd44780.Bus = &Bus{}
var _ hd44780.Delayer = &Bus{}
