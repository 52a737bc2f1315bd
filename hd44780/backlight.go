// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
)

// BusBacklight is a monochrome backlight switched by a single pin on the
// same Bus as the display.
type BusBacklight struct {
	bus Bus
	pin PinID
}

// NewBacklight returns a backlight driven by pin. The pin is switched to
// output mode.
func NewBacklight(bus Bus, pin PinID) (*BusBacklight, error) {
	if err := bus.SetMode(pin, Output); err != nil {
		return nil, wrap(err)
	}
	return &BusBacklight{bus: bus, pin: pin}, nil
}

// Backlight turns the backlight off for 0 and on for any other intensity.
func (bl *BusBacklight) Backlight(intensity display.Intensity) error {
	return wrap(bl.bus.Out(bl.pin, gpio.Level(intensity != 0)))
}

var _ display.DisplayBacklight = &BusBacklight{}
