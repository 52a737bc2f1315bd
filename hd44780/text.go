// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

import (
	"fmt"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/display"
)

// TextDisplay adapts an initialized Dev to display.TextDisplay, which uses 1
// based coordinates.
type TextDisplay struct {
	dev       *Dev
	backlight display.DisplayBacklight
}

// NewTextDisplay wraps dev. backlight may be nil if the backlight is hard
// wired.
func NewTextDisplay(dev *Dev, backlight display.DisplayBacklight) *TextDisplay {
	return &TextDisplay{dev: dev, backlight: backlight}
}

// Dev returns the wrapped device.
func (t *TextDisplay) Dev() *Dev {
	return t.dev
}

// Enable/Disable auto scroll
func (t *TextDisplay) AutoScroll(enabled bool) error {
	return t.dev.SetAutoscroll(enabled)
}

// Return the number of columns the display supports
func (t *TextDisplay) Cols() int {
	return t.dev.Cols()
}

// Clears the screen and moves the cursor to the first position.
func (t *TextDisplay) Clear() error {
	return t.dev.Clear()
}

// Set the cursor mode. You can pass multiple arguments.
// Cursor(CursorOff, CursorUnderline)
//
// The controller has an underline cursor and a blinking block; CursorBlock
// and CursorBlink both select the blinking block.
func (t *TextDisplay) Cursor(modes ...display.CursorMode) error {
	c := t.dev.Control()
	for _, mode := range modes {
		switch mode {
		case display.CursorOff:
			c.Cursor = false
			c.Blink = false
		case display.CursorUnderline:
			c.Cursor = true
		case display.CursorBlock, display.CursorBlink:
			c.Blink = true
		default:
			return fmt.Errorf("%s: unexpected cursor: %d", packageName, mode)
		}
	}
	return t.dev.applyControl(c)
}

// Move the cursor home (MinRow(),MinCol())
func (t *TextDisplay) Home() error {
	return t.dev.Home()
}

// Return the min column position.
func (t *TextDisplay) MinCol() int {
	return 1
}

// Return the min row position.
func (t *TextDisplay) MinRow() int {
	return 1
}

// Move the cursor forward or backward.
func (t *TextDisplay) Move(dir display.CursorDirection) error {
	switch dir {
	case display.Forward:
		return t.dev.MoveCursor(Right)
	case display.Backward:
		return t.dev.MoveCursor(Left)
	case display.Up, display.Down:
		return fmt.Errorf("%s: %w", packageName, display.ErrNotImplemented)
	default:
		return fmt.Errorf("%s: unexpected direction: %d", packageName, dir)
	}
}

// Move the cursor to arbitrary position.
func (t *TextDisplay) MoveTo(row, col int) error {
	if row < t.MinRow() || row > t.Rows() || col < t.MinCol() || col > t.Cols() {
		return fmt.Errorf("%w: MoveTo(%d,%d)", ErrInvalidPosition, row, col)
	}
	return t.dev.SetCursor(col-1, row-1)
}

// Return the number of rows the display supports.
func (t *TextDisplay) Rows() int {
	return t.dev.Lines()
}

// Return info about the display.
func (t *TextDisplay) String() string {
	return t.dev.String()
}

// Turn the display on / off
func (t *TextDisplay) Display(on bool) error {
	return t.dev.Display(on)
}

// Write a set of bytes to the display.
func (t *TextDisplay) Write(p []byte) (int, error) {
	return t.dev.Write(p)
}

// Write a string output to the display.
func (t *TextDisplay) WriteString(text string) (int, error) {
	return t.dev.WriteString(text)
}

// Turn the display's backlight on or off. The display itself is switched
// with the backlight, since an unlit LCD is unreadable anyway.
func (t *TextDisplay) Backlight(intensity display.Intensity) error {
	if err := t.dev.Display(intensity > 0); err != nil {
		return err
	}
	if t.backlight != nil {
		return t.backlight.Backlight(intensity)
	}
	return nil
}

// Halt clears the display, turns the backlight off, and turns the display off.
func (t *TextDisplay) Halt() error {
	if err := t.dev.Clear(); err != nil {
		return err
	}
	return t.Backlight(0)
}

var _ display.TextDisplay = &TextDisplay{}
var _ display.DisplayBacklight = &TextDisplay{}
var _ conn.Resource = &TextDisplay{}
