// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780test

import (
	"fmt"

	"github.com/GermanBionicSystems/liquidcrystal/hd44780"
)

// Execution times in microseconds, from the datasheet at 270kHz.
const (
	execDefault   = 37
	execClearHome = 1520
	powerOnDelay  = 40000
)

// Instruction is a complete byte received by the Controller.
type Instruction struct {
	At    uint64
	Data  bool
	Value byte
}

func (i Instruction) String() string {
	if i.Data {
		return fmt.Sprintf("data(0x%02x)", i.Value)
	}
	return fmt.Sprintf("cmd(0x%02x)", i.Value)
}

// Controller models an HD44780 from the bus side. It starts in the state the
// datasheet gives for an internal reset: 8 bit interface, 1 line, display off
// and DDRAM blank.
type Controller struct {
	EightBit bool
	TwoLine  bool
	Font     hd44780.Font
	Control  hd44780.Control
	Entry    hd44780.Entry

	DDRAM [128]byte
	CGRAM [64]byte
	// AC is the address counter. It points into CGRAM when InCGRAM is set.
	AC      byte
	InCGRAM bool
	// Shift is how many positions the display window has moved left.
	Shift int

	Instructions []Instruction
	// Violations lists instructions received while the controller was still
	// busy with the previous one.
	Violations []string

	wires     int
	busyUntil uint64
	pending   bool
	high      byte
}

// NewController returns a Controller connected by wires data lines, 4 or 8.
func NewController(wires int) *Controller {
	c := &Controller{
		EightBit:  true,
		Entry:     hd44780.Entry{Direction: hd44780.LeftToRight},
		wires:     wires,
		busyUntil: powerOnDelay,
	}
	c.clearDDRAM()
	return c
}

// Latch receives one enable pulse.
func (c *Controller) Latch(l Latch) {
	rs := bool(l.RS)
	if c.EightBit {
		v := l.Value
		if c.wires == 4 {
			// D0-D3 are not connected and read as 0.
			v <<= 4
		}
		c.checkBusy(l.At, rs, v)
		c.execute(l.At, rs, v)
		return
	}
	nibble := l.Value & 0x0f
	if c.wires == 8 {
		nibble = l.Value >> 4
	}
	if !c.pending {
		c.checkBusy(l.At, rs, nibble<<4)
		c.high = nibble
		c.pending = true
		return
	}
	c.pending = false
	c.execute(l.At, rs, c.high<<4|nibble)
}

// Commands returns the instruction bytes received, in order.
func (c *Controller) Commands() []byte {
	var out []byte
	for _, i := range c.Instructions {
		if !i.Data {
			out = append(out, i.Value)
		}
	}
	return out
}

// Text returns the characters visible on each row for a display with the
// given number of columns and row start addresses.
func (c *Controller) Text(cols int, rowOffsets []byte) []string {
	rows := make([]string, len(rowOffsets))
	for r, base := range rowOffsets {
		line := make([]byte, cols)
		for col := range cols {
			line[col] = c.DDRAM[c.visibleAddr(base, col)]
		}
		rows[r] = string(line)
	}
	return rows
}

// Glyph returns the CGRAM bitmap used for character code, and false if
// code is in the ROM range.
func (c *Controller) Glyph(code byte) ([8]byte, bool) {
	var g [8]byte
	if code >= 16 {
		return g, false
	}
	base := int(code&0x07) << 3
	copy(g[:], c.CGRAM[base:base+8])
	return g, true
}

func (c *Controller) visibleAddr(base byte, col int) byte {
	if !c.TwoLine {
		return byte(mod(int(base)+col+c.Shift, 80))
	}
	start := base & 0x40
	return start + byte(mod(int(base-start)+col+c.Shift, 40))
}

func (c *Controller) checkBusy(at uint64, rs bool, v byte) {
	if at < c.busyUntil {
		kind := "instruction"
		if rs {
			kind = "data"
		}
		c.Violations = append(c.Violations, fmt.Sprintf("%s 0x%02x at %dus, busy until %dus", kind, v, at, c.busyUntil))
	}
}

func (c *Controller) execute(at uint64, rs bool, v byte) {
	c.Instructions = append(c.Instructions, Instruction{At: at, Data: rs, Value: v})
	c.busyUntil = at + execDefault
	if rs {
		c.writeData(v)
		return
	}
	switch {
	case v&hd44780.CmdSetDDRAMAddr != 0:
		c.AC = v & 0x7f
		c.InCGRAM = false
	case v&hd44780.CmdSetCGRAMAddr != 0:
		c.AC = v & 0x3f
		c.InCGRAM = true
	case v&hd44780.CmdFunctionSet != 0:
		c.EightBit = v&0x10 != 0
		c.TwoLine = v&0x08 != 0
		c.Font = hd44780.Font5x8
		if v&0x04 != 0 {
			c.Font = hd44780.Font5x10
		}
		c.pending = false
	case v&hd44780.CmdCursorShift != 0:
		step := 1
		if v&0x04 == 0 {
			step = -1
		}
		if v&0x08 != 0 {
			c.Shift -= step
		} else {
			c.AC = c.advance(c.AC, step)
		}
	case v&hd44780.CmdDisplayCtrl != 0:
		c.Control = hd44780.Control{Display: v&0x04 != 0, Cursor: v&0x02 != 0, Blink: v&0x01 != 0}
	case v&hd44780.CmdEntryModeSet != 0:
		c.Entry = hd44780.Entry{Direction: hd44780.RightToLeft, Autoscroll: v&0x01 != 0}
		if v&0x02 != 0 {
			c.Entry.Direction = hd44780.LeftToRight
		}
	case v&hd44780.CmdHome != 0:
		c.AC = 0
		c.InCGRAM = false
		c.Shift = 0
		c.busyUntil = at + execClearHome
	case v&hd44780.CmdClear != 0:
		c.clearDDRAM()
		c.AC = 0
		c.InCGRAM = false
		c.Shift = 0
		c.Entry.Direction = hd44780.LeftToRight
		c.busyUntil = at + execClearHome
	}
}

func (c *Controller) writeData(v byte) {
	step := 1
	if c.Entry.Direction == hd44780.RightToLeft {
		step = -1
	}
	if c.InCGRAM {
		c.CGRAM[c.AC&0x3f] = v & 0x1f
		c.AC = byte(mod(int(c.AC)+step, 64))
		return
	}
	c.DDRAM[c.AC] = v
	c.AC = c.advance(c.AC, step)
	if c.Entry.Autoscroll {
		c.Shift += step
	}
}

// advance moves a DDRAM address, wrapping the way the address counter does.
func (c *Controller) advance(addr byte, step int) byte {
	if c.InCGRAM {
		return byte(mod(int(addr)+step, 64))
	}
	if !c.TwoLine {
		return byte(mod(int(addr)+step, 80))
	}
	// 0x00-0x27 then 0x40-0x67, as one 80 position ring.
	pos := int(addr & 0x3f)
	if addr&0x40 != 0 {
		pos += 40
	}
	pos = mod(pos+step, 80)
	if pos >= 40 {
		return 0x40 + byte(pos-40)
	}
	return byte(pos)
}

func (c *Controller) clearDDRAM() {
	for i := range c.DDRAM {
		c.DDRAM[i] = ' '
	}
}

func mod(a, m int) int {
	a %= m
	if a < 0 {
		a += m
	}
	return a
}
