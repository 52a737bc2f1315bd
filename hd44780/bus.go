// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"
	"strings"

	"periph.io/x/conn/v3/gpio"
)

// PinID identifies a pin on a Bus. Its meaning is up to the Bus
// implementation, typically a GPIO number.
type PinID uint8

// PinMode is the direction of a pin.
type PinMode int

const (
	Input PinMode = iota
	Output
	InputPullUp
)

func (m PinMode) String() string {
	switch m {
	case Input:
		return "Input"
	case Output:
		return "Output"
	case InputPullUp:
		return "InputPullUp"
	default:
		return fmt.Sprintf("PinMode(%d)", int(m))
	}
}

// Bus sets pin directions and drives pin levels.
//
// The Dev assumes it has exclusive use of the pins it was given.
type Bus interface {
	SetMode(p PinID, m PinMode) error
	Out(p PinID, l gpio.Level) error
}

// Delayer blocks for at least the requested number of microseconds.
//
// Implementations must busy-wait. Yielding to a scheduler makes the actual
// delay unbounded, and the controller only tolerates minimums being met.
type Delayer interface {
	DelayMicroseconds(us uint32)
}

// Pins describes how the display is wired.
type Pins struct {
	// RS is register select. Low selects instructions, high selects data.
	RS PinID
	// RW is read/write. nil means the line is tied low on the board.
	RW *PinID
	// Enable latches the data lines on its falling edge.
	Enable PinID
	// Data is D4..D7 for a 4 bit bus or D0..D7 for an 8 bit bus.
	Data []PinID
}

// Wired returns a pointer to p, for use as Pins.RW.
func Wired(p PinID) *PinID {
	return &p
}

func (p *Pins) validate() error {
	if len(p.Data) != 4 && len(p.Data) != 8 {
		return fmt.Errorf("%w: got %d data pins, need 4 or 8", ErrInvalidPins, len(p.Data))
	}
	seen := map[PinID]bool{p.RS: true}
	if seen[p.Enable] {
		return fmt.Errorf("%w: enable pin %d reused", ErrInvalidPins, p.Enable)
	}
	seen[p.Enable] = true
	if p.RW != nil {
		if seen[*p.RW] {
			return fmt.Errorf("%w: read/write pin %d reused", ErrInvalidPins, *p.RW)
		}
		seen[*p.RW] = true
	}
	for _, d := range p.Data {
		if seen[d] {
			return fmt.Errorf("%w: data pin %d reused", ErrInvalidPins, d)
		}
		seen[d] = true
	}
	return nil
}

func (p *Pins) String() string {
	data := make([]string, len(p.Data))
	for i, d := range p.Data {
		data[i] = fmt.Sprint(d)
	}
	rw := "GND"
	if p.RW != nil {
		rw = fmt.Sprint(*p.RW)
	}
	return fmt.Sprintf("RS=%d RW=%s E=%d D=[%s]", p.RS, rw, p.Enable, strings.Join(data, " "))
}
