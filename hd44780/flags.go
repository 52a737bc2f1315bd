// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780

// HD44780 instruction opcodes. These are fixed by the controller.
const (
	CmdClear         byte = 0x01
	CmdHome          byte = 0x02
	CmdEntryModeSet  byte = 0x04
	CmdDisplayCtrl   byte = 0x08
	CmdCursorShift   byte = 0x10
	CmdFunctionSet   byte = 0x20
	CmdSetCGRAMAddr  byte = 0x40
	CmdSetDDRAMAddr  byte = 0x80
	entryLeft        byte = 0x02
	entryShiftInc    byte = 0x01
	controlDisplayOn byte = 0x04
	controlCursorOn  byte = 0x02
	controlBlinkOn   byte = 0x01
	shiftDisplayMove byte = 0x08
	shiftMoveRight   byte = 0x04
	function8Bit     byte = 0x10
	function2Line    byte = 0x08
	function5x10     byte = 0x04
)

// Font selects the character cell height.
type Font int

const (
	Font5x8 Font = iota
	Font5x10
)

func (f Font) String() string {
	if f == Font5x10 {
		return "5x10"
	}
	return "5x8"
}

// Direction is used both for text entry direction and for shifting the
// cursor or the display.
type Direction int

const (
	LeftToRight Direction = iota
	RightToLeft
)

// Left and Right alias the directions for shift operations.
const (
	Right = LeftToRight
	Left  = RightToLeft
)

func (d Direction) String() string {
	if d == RightToLeft {
		return "RightToLeft"
	}
	return "LeftToRight"
}

// Function is the function set configuration: bus width, line count and font.
type Function struct {
	EightBit bool
	TwoLine  bool
	Font     Font
}

func (f Function) bits() byte {
	var b byte
	if f.EightBit {
		b |= function8Bit
	}
	if f.TwoLine {
		b |= function2Line
	}
	if f.Font == Font5x10 {
		b |= function5x10
	}
	return b
}

// Opcode returns the function set instruction for f.
func (f Function) Opcode() byte {
	return CmdFunctionSet | f.bits()
}

// Control is the display on/off control state.
type Control struct {
	Display bool
	Cursor  bool
	Blink   bool
}

func (c Control) bits() byte {
	var b byte
	if c.Display {
		b |= controlDisplayOn
	}
	if c.Cursor {
		b |= controlCursorOn
	}
	if c.Blink {
		b |= controlBlinkOn
	}
	return b
}

// Opcode returns the display control instruction for c.
func (c Control) Opcode() byte {
	return CmdDisplayCtrl | c.bits()
}

// Entry is the entry mode state.
//
// Autoscroll set means the display shifts on every write (the datasheet's
// S bit, "shift increment" in most LiquidCrystal libraries).
type Entry struct {
	Direction  Direction
	Autoscroll bool
}

func (e Entry) bits() byte {
	var b byte
	if e.Direction == LeftToRight {
		b |= entryLeft
	}
	if e.Autoscroll {
		b |= entryShiftInc
	}
	return b
}

// Opcode returns the entry mode set instruction for e.
func (e Entry) Opcode() byte {
	return CmdEntryModeSet | e.bits()
}

func shiftOpcode(display bool, dir Direction) byte {
	op := CmdCursorShift
	if display {
		op |= shiftDisplayMove
	}
	if dir == Right {
		op |= shiftMoveRight
	}
	return op
}
