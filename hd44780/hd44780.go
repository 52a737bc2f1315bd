// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package hd44780 controls the Hitachi LCD display chipset HD-44780 over a
// parallel 4 or 8 bit bus.
//
// The driver never reads the busy flag. Every instruction is followed by a
// delay long enough for the slowest controllers, so R/W can be tied low.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/HD44780.pdf
package hd44780

import (
	"errors"
	"fmt"
	"strings"

	"periph.io/x/conn/v3/gpio"
)

const packageName = "hd44780"

var (
	ErrInvalidPins     = errors.New(packageName + ": invalid pin assignment")
	ErrInvalidGeometry = errors.New(packageName + ": invalid display geometry")
	ErrNotInitialized  = errors.New(packageName + ": display not initialized")
	ErrInvalidSlot     = errors.New(packageName + ": custom character slot out of range")
	ErrInvalidPosition = errors.New(packageName + ": position out of range")
)

// Delays, in microseconds.
const (
	delayPowerOn      = 50000
	delayFunctionSet1 = 4500
	delayFunctionSet2 = 150
	delayEnableHigh   = 1
	delayEnableSettle = 450
	delayCommand      = 37
	delayClearHome    = 1520
)

// MaxCols is the widest line the controller can address.
const MaxCols = 40

type writeMode bool

const (
	modeCommand writeMode = false
	modeData    writeMode = true
)

// Opts is the display geometry passed to Init.
type Opts struct {
	Cols  int
	Lines int
	// Font is only honored on 1 line displays.
	Font Font
}

// DefaultOpts is a 16x2 display with the 5x8 font.
var DefaultOpts = Opts{Cols: 16, Lines: 2, Font: Font5x8}

func (o *Opts) validate() error {
	if o.Lines != 1 && o.Lines != 2 && o.Lines != 4 {
		return fmt.Errorf("%w: %d lines", ErrInvalidGeometry, o.Lines)
	}
	if o.Cols < 1 || o.Cols > MaxCols {
		return fmt.Errorf("%w: %d columns", ErrInvalidGeometry, o.Cols)
	}
	if o.Font != Font5x8 && o.Font != Font5x10 {
		return fmt.Errorf("%w: font %d", ErrInvalidGeometry, o.Font)
	}
	return nil
}

// Dev is an HD44780 LCD wired to a Bus.
//
// It is not safe for concurrent use.
type Dev struct {
	bus   Bus
	delay Delayer
	pins  Pins

	function    Function
	control     Control
	entry       Entry
	cols        int
	lines       int
	rowOffsets  [4]byte
	initialized bool
}

func wrap(err error) error {
	if err == nil || strings.HasPrefix(err.Error(), packageName) {
		return err
	}
	return fmt.Errorf("%s: %w", packageName, err)
}

// New returns a Dev for the given wiring. It does not touch the hardware;
// call Init before anything else.
//
// A 4 pin data bus selects 4 bit mode, 8 pins select 8 bit mode.
func New(bus Bus, delay Delayer, pins Pins) (*Dev, error) {
	if err := pins.validate(); err != nil {
		return nil, err
	}
	pins.Data = append([]PinID(nil), pins.Data...)
	if pins.RW != nil {
		pins.RW = Wired(*pins.RW)
	}
	return &Dev{
		bus:      bus,
		delay:    delay,
		pins:     pins,
		function: Function{EightBit: len(pins.Data) == 8},
	}, nil
}

// Init runs the power-on sequence from the datasheet (figures 23 and 24).
//
// A reset of the host does not reset the LCD, so the controller may be in
// any state, including half way through a 4 bit transfer. The repeated
// function set instructions force it back into 8 bit mode before the real
// configuration is sent.
func (d *Dev) Init(opts *Opts) error {
	if opts == nil {
		opts = &DefaultOpts
	}
	if err := opts.validate(); err != nil {
		return err
	}
	d.initialized = false
	d.cols = opts.Cols
	d.lines = opts.Lines
	d.function.TwoLine = opts.Lines > 1
	d.function.Font = Font5x8
	if opts.Font == Font5x10 && opts.Lines == 1 {
		d.function.Font = Font5x10
	}
	d.SetRowOffsets(0x00, 0x40, byte(opts.Cols), 0x40+byte(opts.Cols))

	if err := d.setupPins(); err != nil {
		return wrap(err)
	}
	// At least 40ms after Vcc rises above 2.7V.
	d.delay.DelayMicroseconds(delayPowerOn)

	if err := d.bus.Out(d.pins.RS, gpio.Low); err != nil {
		return wrap(err)
	}
	if err := d.bus.Out(d.pins.Enable, gpio.Low); err != nil {
		return wrap(err)
	}
	if d.pins.RW != nil {
		if err := d.bus.Out(*d.pins.RW, gpio.Low); err != nil {
			return wrap(err)
		}
	}

	if d.function.EightBit {
		op := d.function.Opcode()
		for _, wait := range []uint32{delayFunctionSet1, delayFunctionSet2, 0} {
			if err := d.command(op); err != nil {
				return wrap(err)
			}
			if wait > 0 {
				d.delay.DelayMicroseconds(wait)
			}
		}
	} else {
		for _, step := range []struct {
			nibble byte
			wait   uint32
		}{
			{0x03, delayFunctionSet1},
			{0x03, delayFunctionSet1},
			{0x03, delayFunctionSet2},
			{0x02, 0},
		} {
			if err := d.writeBits(step.nibble, 4); err != nil {
				return wrap(err)
			}
			if step.wait > 0 {
				d.delay.DelayMicroseconds(step.wait)
			}
		}
	}

	// The negotiation above only settled the bus width.
	if err := d.command(d.function.Opcode()); err != nil {
		return wrap(err)
	}
	d.control = Control{Display: true}
	if err := d.command(d.control.Opcode()); err != nil {
		return wrap(err)
	}
	if err := d.longCommand(CmdClear); err != nil {
		return wrap(err)
	}
	d.entry = Entry{Direction: LeftToRight}
	if err := d.command(d.entry.Opcode()); err != nil {
		return wrap(err)
	}
	d.initialized = true
	return nil
}

// Command sends an instruction byte and waits for it to execute.
//
// Clear and Home need a longer execution time; use the methods of the same
// name instead of sending those opcodes here.
func (d *Dev) Command(op byte) error {
	if !d.initialized {
		return ErrNotInitialized
	}
	if op == CmdClear || op&^0x01 == CmdHome {
		return wrap(d.longCommand(op))
	}
	return wrap(d.command(op))
}

// WriteChar writes one character code at the current address. It returns 1
// once the byte has been sent.
func (d *Dev) WriteChar(b byte) (int, error) {
	if !d.initialized {
		return 0, ErrNotInitialized
	}
	if err := d.send(b, modeData); err != nil {
		return 0, wrap(err)
	}
	d.delay.DelayMicroseconds(delayCommand)
	return 1, nil
}

// Write sends every byte of p as a character code.
func (d *Dev) Write(p []byte) (n int, err error) {
	for _, b := range p {
		c, err := d.WriteChar(b)
		n += c
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// WriteString writes text as character codes. No character set translation
// is done.
func (d *Dev) WriteString(text string) (int, error) {
	return d.Write([]byte(text))
}

// Clear blanks the display and moves the cursor to the first position.
func (d *Dev) Clear() error {
	if !d.initialized {
		return ErrNotInitialized
	}
	return wrap(d.longCommand(CmdClear))
}

// Home moves the cursor to the first position and undoes any display shift.
func (d *Dev) Home() error {
	if !d.initialized {
		return ErrNotInitialized
	}
	return wrap(d.longCommand(CmdHome))
}

// Display turns the display on or off. DDRAM contents are kept.
func (d *Dev) Display(on bool) error {
	c := d.control
	c.Display = on
	return d.applyControl(c)
}

// Cursor shows or hides the underline cursor.
func (d *Dev) Cursor(on bool) error {
	c := d.control
	c.Cursor = on
	return d.applyControl(c)
}

// Blink turns the blinking block cursor on or off.
func (d *Dev) Blink(on bool) error {
	c := d.control
	c.Blink = on
	return d.applyControl(c)
}

func (d *Dev) applyControl(c Control) error {
	if !d.initialized {
		return ErrNotInitialized
	}
	if err := d.command(c.Opcode()); err != nil {
		return wrap(err)
	}
	d.control = c
	return nil
}

// Scroll shifts the whole display one position without changing DDRAM.
func (d *Dev) Scroll(dir Direction) error {
	if !d.initialized {
		return ErrNotInitialized
	}
	return wrap(d.command(shiftOpcode(true, dir)))
}

// MoveCursor moves the cursor one position without writing.
func (d *Dev) MoveCursor(dir Direction) error {
	if !d.initialized {
		return ErrNotInitialized
	}
	return wrap(d.command(shiftOpcode(false, dir)))
}

// SetTextDirection sets whether the cursor advances right or left after a
// write.
func (d *Dev) SetTextDirection(dir Direction) error {
	e := d.entry
	e.Direction = dir
	return d.applyEntry(e)
}

// SetAutoscroll makes every write shift the display instead of the cursor,
// so text appears to flow from the cursor position.
func (d *Dev) SetAutoscroll(on bool) error {
	e := d.entry
	e.Autoscroll = on
	return d.applyEntry(e)
}

func (d *Dev) applyEntry(e Entry) error {
	if !d.initialized {
		return ErrNotInitialized
	}
	if err := d.command(e.Opcode()); err != nil {
		return wrap(err)
	}
	d.entry = e
	return nil
}

// SetRowOffsets sets the DDRAM address of the first column of each row.
//
// Init sets the usual layout; call this afterwards for displays with an
// unusual mapping.
func (d *Dev) SetRowOffsets(r0, r1, r2, r3 byte) {
	d.rowOffsets = [4]byte{r0, r1, r2, r3}
}

// SetCursor moves the cursor to col, row (both from 0). Rows past the last
// line are clamped to the last line. A position past the end of DDRAM is
// rejected.
func (d *Dev) SetCursor(col, row int) error {
	if !d.initialized {
		return ErrNotInitialized
	}
	if col < 0 || col >= MaxCols*2 {
		return fmt.Errorf("%w: column %d", ErrInvalidPosition, col)
	}
	if row < 0 {
		row = 0
	}
	if row >= len(d.rowOffsets) {
		row = len(d.rowOffsets) - 1
	}
	if row >= d.lines {
		row = d.lines - 1
	}
	addr := int(d.rowOffsets[row]) + col
	if addr > 0x7f {
		return fmt.Errorf("%w: address 0x%x", ErrInvalidPosition, addr)
	}
	return wrap(d.command(CmdSetDDRAMAddr | byte(addr)))
}

// CreateChar stores a 5x8 glyph in one of the 8 CGRAM slots. Only the low
// 5 bits of each row are used. Writing character code slot afterwards
// displays it.
//
// This leaves the address counter in CGRAM: call SetCursor, Clear or Home
// before writing text.
func (d *Dev) CreateChar(slot int, bitmap [8]byte) error {
	if slot < 0 || slot > 7 {
		return fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	if !d.initialized {
		return ErrNotInitialized
	}
	if err := d.command(CmdSetCGRAMAddr | byte(slot)<<3); err != nil {
		return wrap(err)
	}
	for _, row := range bitmap {
		if _, err := d.WriteChar(row); err != nil {
			return err
		}
	}
	return nil
}

// Function returns the function set state.
func (d *Dev) Function() Function {
	return d.function
}

// Control returns the display control state.
func (d *Dev) Control() Control {
	return d.control
}

// Entry returns the entry mode state.
func (d *Dev) Entry() Entry {
	return d.entry
}

// RowOffsets returns the DDRAM address of the first column of each row.
func (d *Dev) RowOffsets() [4]byte {
	return d.rowOffsets
}

// Cols returns the number of columns passed to Init.
func (d *Dev) Cols() int {
	return d.cols
}

// Lines returns the number of lines passed to Init.
func (d *Dev) Lines() int {
	return d.lines
}

// Initialized reports whether Init completed.
func (d *Dev) Initialized() bool {
	return d.initialized
}

func (d *Dev) String() string {
	bits := 4
	if d.function.EightBit {
		bits = 8
	}
	return fmt.Sprintf("HD44780{%d bit, %s, %dx%d}", bits, &d.pins, d.cols, d.lines)
}

func (d *Dev) setupPins() error {
	pins := []PinID{d.pins.RS, d.pins.Enable}
	if d.pins.RW != nil {
		pins = append(pins, *d.pins.RW)
	}
	pins = append(pins, d.pins.Data...)
	for _, p := range pins {
		if err := d.bus.SetMode(p, Output); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dev) command(op byte) error {
	if err := d.send(op, modeCommand); err != nil {
		return err
	}
	d.delay.DelayMicroseconds(delayCommand)
	return nil
}

func (d *Dev) longCommand(op byte) error {
	if err := d.send(op, modeCommand); err != nil {
		return err
	}
	d.delay.DelayMicroseconds(delayClearHome)
	return nil
}

// send is the only path to the data lines after Init.
func (d *Dev) send(value byte, mode writeMode) error {
	if err := d.bus.Out(d.pins.RS, gpio.Level(mode)); err != nil {
		return err
	}
	if d.pins.RW != nil {
		if err := d.bus.Out(*d.pins.RW, gpio.Low); err != nil {
			return err
		}
	}
	if d.function.EightBit {
		return d.writeBits(value, 8)
	}
	if err := d.writeBits(value>>4, 4); err != nil {
		return err
	}
	return d.writeBits(value&0x0f, 4)
}

// writeBits puts the low n bits of value on the first n data pins and
// latches them.
func (d *Dev) writeBits(value byte, n int) error {
	for i := range n {
		if err := d.bus.Out(d.pins.Data[i], gpio.Level(value>>i&1 == 1)); err != nil {
			return err
		}
	}
	return d.pulseEnable()
}

func (d *Dev) pulseEnable() error {
	if err := d.bus.Out(d.pins.Enable, gpio.Low); err != nil {
		return err
	}
	d.delay.DelayMicroseconds(delayEnableHigh)
	if err := d.bus.Out(d.pins.Enable, gpio.High); err != nil {
		return err
	}
	d.delay.DelayMicroseconds(delayEnableHigh)
	if err := d.bus.Out(d.pins.Enable, gpio.Low); err != nil {
		return err
	}
	d.delay.DelayMicroseconds(delayEnableSettle)
	return nil
}
