// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package hd44780_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"periph.io/x/conn/v3/gpio"

	"github.com/GermanBionicSystems/liquidcrystal/hd44780"
	"github.com/GermanBionicSystems/liquidcrystal/hd44780/hd44780test"
)

const rwPin hd44780.PinID = 7

func pins4(rw bool) hd44780.Pins {
	p := hd44780.Pins{RS: 1, Enable: 2, Data: []hd44780.PinID{3, 4, 5, 6}}
	if rw {
		p.RW = hd44780.Wired(rwPin)
	}
	return p
}

func pins8() hd44780.Pins {
	return hd44780.Pins{RS: 1, Enable: 2, Data: []hd44780.PinID{10, 11, 12, 13, 14, 15, 16, 17}}
}

func newDev(t *testing.T, pins hd44780.Pins) (*hd44780.Dev, *hd44780test.Bus) {
	t.Helper()
	bus := hd44780test.NewBus(pins)
	dev, err := hd44780.New(bus, bus, pins)
	if err != nil {
		t.Fatal(err)
	}
	return dev, bus
}

func initDev(t *testing.T, pins hd44780.Pins, opts *hd44780.Opts) (*hd44780.Dev, *hd44780test.Bus) {
	t.Helper()
	dev, bus := newDev(t, pins)
	if err := dev.Init(opts); err != nil {
		t.Fatal(err)
	}
	checkTiming(t, bus)
	return dev, bus
}

func checkTiming(t *testing.T, bus *hd44780test.Bus) {
	t.Helper()
	for _, v := range bus.Violations {
		t.Errorf("bus: %s", v)
	}
	for _, v := range bus.Controller.Violations {
		t.Errorf("controller: %s", v)
	}
}

// sent returns the instructions received since mark.
func sent(bus *hd44780test.Bus, mark int) []hd44780test.Instruction {
	return bus.Controller.Instructions[mark:]
}

func TestNewInvalidPins(t *testing.T) {
	var tests = []struct {
		name string
		pins hd44780.Pins
	}{
		{"none", hd44780.Pins{RS: 1, Enable: 2}},
		{"three", hd44780.Pins{RS: 1, Enable: 2, Data: []hd44780.PinID{3, 4, 5}}},
		{"five", hd44780.Pins{RS: 1, Enable: 2, Data: []hd44780.PinID{3, 4, 5, 6, 7}}},
		{"nine", hd44780.Pins{RS: 1, Enable: 2, Data: []hd44780.PinID{3, 4, 5, 6, 7, 8, 9, 10, 11}}},
		{"shared enable", hd44780.Pins{RS: 1, Enable: 1, Data: []hd44780.PinID{3, 4, 5, 6}}},
		{"shared data", hd44780.Pins{RS: 1, Enable: 2, Data: []hd44780.PinID{3, 4, 4, 6}}},
		{"shared rw", hd44780.Pins{RS: 1, Enable: 2, RW: hd44780.Wired(3), Data: []hd44780.PinID{3, 4, 5, 6}}},
	}
	for _, test := range tests {
		bus := hd44780test.NewBus(hd44780.Pins{})
		dev, err := hd44780.New(bus, bus, test.pins)
		if !errors.Is(err, hd44780.ErrInvalidPins) {
			t.Errorf("%s: expected ErrInvalidPins, received %v", test.name, err)
		}
		if dev != nil {
			t.Errorf("%s: expected nil device", test.name)
		}
		if len(bus.Writes) != 0 || len(bus.Modes) != 0 {
			t.Errorf("%s: hardware was touched", test.name)
		}
	}
}

func TestNewLeavesFlagsZero(t *testing.T) {
	dev, bus := newDev(t, pins4(false))
	if dev.Initialized() {
		t.Error("Initialized() before Init")
	}
	if dev.Control() != (hd44780.Control{}) || dev.Entry() != (hd44780.Entry{}) {
		t.Errorf("flags not zero: %+v %+v", dev.Control(), dev.Entry())
	}
	if dev.Function().EightBit {
		t.Error("4 data pins selected 8 bit mode")
	}
	if len(bus.Modes) != 0 {
		t.Error("New touched the hardware")
	}
	dev8, _ := newDev(t, pins8())
	if !dev8.Function().EightBit {
		t.Error("8 data pins did not select 8 bit mode")
	}
}

func TestRejectedBeforeInit(t *testing.T) {
	dev, bus := newDev(t, pins4(true))
	ops := map[string]func() error{
		"Command":   func() error { return dev.Command(hd44780.CmdDisplayCtrl) },
		"WriteChar": func() error { _, err := dev.WriteChar('A'); return err },
		"Write":     func() error { _, err := dev.WriteString("AB"); return err },
		"Clear":     dev.Clear,
		"Home":      dev.Home,
		"Display":   func() error { return dev.Display(true) },
		"Cursor":    func() error { return dev.Cursor(true) },
		"Blink":     func() error { return dev.Blink(true) },
		"Scroll":    func() error { return dev.Scroll(hd44780.Left) },
		"Move":      func() error { return dev.MoveCursor(hd44780.Right) },
		"Direction": func() error { return dev.SetTextDirection(hd44780.RightToLeft) },
		"Auto":      func() error { return dev.SetAutoscroll(true) },
		"SetCursor": func() error { return dev.SetCursor(0, 0) },
		"Create":    func() error { return dev.CreateChar(0, [8]byte{}) },
	}
	for name, op := range ops {
		if err := op(); !errors.Is(err, hd44780.ErrNotInitialized) {
			t.Errorf("%s: expected ErrNotInitialized, received %v", name, err)
		}
	}
	if len(bus.Writes) != 0 || len(bus.Latches) != 0 {
		t.Errorf("rejected operations touched the bus: %v", bus.Writes)
	}
	if dev.Control() != (hd44780.Control{}) || dev.Entry() != (hd44780.Entry{}) {
		t.Error("rejected operations changed the flags")
	}
}

func TestInit4Bit(t *testing.T) {
	pins := pins4(false)
	dev, bus := initDev(t, pins, &hd44780.DefaultOpts)

	for _, p := range append([]hd44780.PinID{pins.RS, pins.Enable}, pins.Data...) {
		if bus.Modes[p] != hd44780.Output {
			t.Errorf("pin %d mode %s", p, bus.Modes[p])
		}
	}
	if bus.Delays[0] < 50000 {
		t.Errorf("power on delay %dus", bus.Delays[0])
	}

	// The bus width negotiation is sent as single nibbles.
	wantNibbles := []byte{0x03, 0x03, 0x03, 0x02}
	wantGaps := []uint64{4500, 4500, 150}
	for i, want := range wantNibbles {
		l := bus.Latches[i]
		if l.Value != want || l.RS != gpio.Low {
			t.Errorf("latch %d: %#v, expected nibble 0x%x", i, l, want)
		}
		if i < len(wantGaps) {
			if gap := bus.Latches[i+1].At - l.At; gap < wantGaps[i] {
				t.Errorf("latch %d: gap %dus, expected at least %dus", i, gap, wantGaps[i])
			}
		}
	}
	if bus.Latches[0].At < 50000 {
		t.Errorf("first latch at %dus", bus.Latches[0].At)
	}

	want := []byte{0x30, 0x30, 0x30, 0x20, 0x28, 0x0c, 0x01, 0x06}
	if got := bus.Controller.Commands(); !bytes.Equal(got, want) {
		t.Errorf("commands %x, expected %x", got, want)
	}
	c := bus.Controller
	if c.EightBit || !c.TwoLine || !c.Control.Display || c.Control.Cursor || c.Control.Blink {
		t.Errorf("controller state %+v", c)
	}
	if !dev.Initialized() {
		t.Error("not initialized")
	}
	if dev.Control() != (hd44780.Control{Display: true}) {
		t.Errorf("control %+v", dev.Control())
	}
	if dev.Entry() != (hd44780.Entry{Direction: hd44780.LeftToRight}) {
		t.Errorf("entry %+v", dev.Entry())
	}
	if dev.Control().Opcode() != 0x0c || dev.Entry().Opcode() != 0x06 {
		t.Errorf("opcodes 0x%02x 0x%02x", dev.Control().Opcode(), dev.Entry().Opcode())
	}
}

func TestInit8Bit(t *testing.T) {
	dev, bus := initDev(t, pins8(), &hd44780.DefaultOpts)
	want := []byte{0x38, 0x38, 0x38, 0x38, 0x0c, 0x01, 0x06}
	if got := bus.Controller.Commands(); !bytes.Equal(got, want) {
		t.Errorf("commands %x, expected %x", got, want)
	}
	if gap := bus.Latches[1].At - bus.Latches[0].At; gap < 4500 {
		t.Errorf("first gap %dus", gap)
	}
	if gap := bus.Latches[2].At - bus.Latches[1].At; gap < 150 {
		t.Errorf("second gap %dus", gap)
	}
	if len(bus.Latches) != len(want) {
		t.Errorf("%d latches for %d bytes in 8 bit mode", len(bus.Latches), len(want))
	}
	if !bus.Controller.EightBit || !dev.Function().EightBit {
		t.Error("not in 8 bit mode")
	}
}

func TestInitFromUnknownState(t *testing.T) {
	var tests = []struct {
		name  string
		setup func(c *hd44780test.Controller)
	}{
		{"power on", func(c *hd44780test.Controller) {}},
		{"4 bit", func(c *hd44780test.Controller) { c.EightBit = false }},
		{"4 bit half way", func(c *hd44780test.Controller) {
			c.EightBit = false
			c.Latch(hd44780test.Latch{At: 0, Value: 0x02})
		}},
		{"display configured", func(c *hd44780test.Controller) {
			c.Control = hd44780.Control{Cursor: true, Blink: true}
			c.Entry = hd44780.Entry{Direction: hd44780.RightToLeft, Autoscroll: true}
			c.Shift = 3
		}},
	}
	for _, test := range tests {
		dev, bus := newDev(t, pins4(false))
		test.setup(bus.Controller)
		if err := dev.Init(&hd44780.DefaultOpts); err != nil {
			t.Fatal(err)
		}
		c := bus.Controller
		if c.EightBit || !c.TwoLine {
			t.Errorf("%s: function state 8bit=%t 2line=%t", test.name, c.EightBit, c.TwoLine)
		}
		if c.Control != (hd44780.Control{Display: true}) {
			t.Errorf("%s: control %+v", test.name, c.Control)
		}
		if c.Entry != (hd44780.Entry{Direction: hd44780.LeftToRight}) {
			t.Errorf("%s: entry %+v", test.name, c.Entry)
		}
		if _, err := dev.WriteString("ok"); err != nil {
			t.Fatal(err)
		}
		if got := c.Text(2, []byte{0}); got[0] != "ok" {
			t.Errorf("%s: display shows %q", test.name, got[0])
		}
	}
}

func TestInitInvalidGeometry(t *testing.T) {
	var tests = []hd44780.Opts{
		{Cols: 16, Lines: 0},
		{Cols: 16, Lines: 3},
		{Cols: 0, Lines: 2},
		{Cols: 41, Lines: 2},
		{Cols: 16, Lines: 2, Font: 7},
	}
	for _, opts := range tests {
		dev, bus := newDev(t, pins4(false))
		if err := dev.Init(&opts); !errors.Is(err, hd44780.ErrInvalidGeometry) {
			t.Errorf("%+v: expected ErrInvalidGeometry, received %v", opts, err)
		}
		if len(bus.Modes) != 0 || len(bus.Writes) != 0 {
			t.Errorf("%+v: hardware was touched", opts)
		}
		if dev.Initialized() {
			t.Errorf("%+v: initialized", opts)
		}
	}
}

func TestInitFont(t *testing.T) {
	var tests = []struct {
		lines int
		font  hd44780.Font
		want  byte
	}{
		{1, hd44780.Font5x8, 0x20},
		{1, hd44780.Font5x10, 0x24},
		{2, hd44780.Font5x10, 0x28},
		{4, hd44780.Font5x8, 0x28},
	}
	for _, test := range tests {
		dev, bus := initDev(t, pins4(false), &hd44780.Opts{Cols: 20, Lines: test.lines, Font: test.font})
		if got := dev.Function().Opcode(); got != test.want {
			t.Errorf("%d lines %s: function set 0x%02x, expected 0x%02x", test.lines, test.font, got, test.want)
		}
		if got := bus.Controller.Commands()[4]; got != test.want {
			t.Errorf("%d lines %s: sent 0x%02x, expected 0x%02x", test.lines, test.font, got, test.want)
		}
	}
}

func TestRowOffsets(t *testing.T) {
	for _, lines := range []int{1, 2, 4} {
		for _, cols := range []int{8, 16, 20, 40} {
			dev, _ := initDev(t, pins4(false), &hd44780.Opts{Cols: cols, Lines: lines})
			want := [4]byte{0x00, 0x40, byte(cols), 0x40 + byte(cols)}
			if got := dev.RowOffsets(); got != want {
				t.Errorf("%dx%d: offsets %x, expected %x", cols, lines, got, want)
			}
		}
	}
	dev, _ := newDev(t, pins4(false))
	dev.SetRowOffsets(0x00, 0x20, 0x40, 0x60)
	if got := dev.RowOffsets(); got != [4]byte{0x00, 0x20, 0x40, 0x60} {
		t.Errorf("SetRowOffsets: %x", got)
	}
}

func TestTransferNibbles(t *testing.T) {
	d, bus := initDev(t, pins4(false), nil)
	mark := len(bus.Latches)
	if n, err := d.WriteChar(0xa5); n != 1 || err != nil {
		t.Fatalf("WriteChar() = %d, %v", n, err)
	}
	got := bus.Latches[mark:]
	if len(got) != 2 {
		t.Fatalf("%d enable pulses, expected 2", len(got))
	}
	if got[0].Value != 0x0a || got[1].Value != 0x05 {
		t.Errorf("nibbles 0x%x 0x%x, expected 0xa 0x5", got[0].Value, got[1].Value)
	}
	if got[0].RS != gpio.High || got[1].RS != gpio.High {
		t.Error("character not sent in data mode")
	}

	dev8, bus8 := initDev(t, pins8(), nil)
	mark = len(bus8.Latches)
	if _, err := dev8.WriteChar(0xa5); err != nil {
		t.Fatal(err)
	}
	if got := bus8.Latches[mark:]; len(got) != 1 || got[0].Value != 0xa5 {
		t.Errorf("8 bit latches %#v", got)
	}
}

func TestCommandWaits(t *testing.T) {
	dev, bus := initDev(t, pins4(false), nil)

	var tests = []struct {
		name string
		op   func() error
		min  uint64
	}{
		{"Clear", dev.Clear, 1520},
		{"Home", dev.Home, 1520},
		{"Command(clear)", func() error { return dev.Command(hd44780.CmdClear) }, 1520},
		{"Command(home)", func() error { return dev.Command(hd44780.CmdHome) }, 1520},
		{"Cursor", func() error { return dev.Cursor(true) }, 37},
		{"Command", func() error { return dev.Command(0x0c) }, 37},
	}
	for _, test := range tests {
		if err := test.op(); err != nil {
			t.Fatal(err)
		}
		last := bus.Latches[len(bus.Latches)-1].At
		if err := dev.Blink(false); err != nil {
			t.Fatal(err)
		}
		next := bus.Latches[len(bus.Latches)-2].At
		if next-last < test.min {
			t.Errorf("%s: next instruction after %dus, expected at least %dus", test.name, next-last, test.min)
		}
	}
	checkTiming(t, bus)
}

func TestEnablePulse(t *testing.T) {
	dev, bus := initDev(t, pins4(false), nil)
	mark := len(bus.Latches)
	if _, err := dev.WriteString("pulse"); err != nil {
		t.Fatal(err)
	}
	if got := len(bus.Latches) - mark; got != 10 {
		t.Errorf("%d enable pulses for 5 characters, expected 10", got)
	}
	if bus.Level(2) != gpio.Low {
		t.Error("enable left high")
	}
	checkTiming(t, bus)
}

func TestCreateChar(t *testing.T) {
	dev, bus := initDev(t, pins4(false), nil)
	bitmap := [8]byte{0x00, 0x0a, 0x1f, 0x1f, 0x0e, 0x04, 0x00, 0xe0}
	mark := len(bus.Controller.Instructions)
	if err := dev.CreateChar(3, bitmap); err != nil {
		t.Fatal(err)
	}
	got := sent(bus, mark)
	if len(got) != 9 {
		t.Fatalf("%d instructions, expected 9: %v", len(got), got)
	}
	if got[0].Data || got[0].Value != hd44780.CmdSetCGRAMAddr|3<<3 {
		t.Errorf("first instruction %s, expected cmd(0x58)", got[0])
	}
	for i, in := range got[1:] {
		if !in.Data || in.Value != bitmap[i] {
			t.Errorf("row %d: %s", i, in)
		}
	}

	mark = len(bus.Controller.Instructions)
	if err := dev.SetCursor(0, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := dev.WriteChar(3); err != nil {
		t.Fatal(err)
	}
	got = sent(bus, mark)
	if got[0].Data || got[0].Value != hd44780.CmdSetDDRAMAddr|0x40 {
		t.Errorf("SetCursor sent %s, expected cmd(0xc0)", got[0])
	}
	c := bus.Controller
	if c.InCGRAM {
		t.Error("address counter still in CGRAM")
	}
	if row := c.Text(16, []byte{0x00, 0x40})[1]; row[0] != 3 {
		t.Errorf("row 1 starts with 0x%02x", row[0])
	}
	glyph, ok := c.Glyph(3)
	if !ok {
		t.Fatal("code 3 is not a CGRAM glyph")
	}
	for i := range bitmap {
		if glyph[i] != bitmap[i]&0x1f {
			t.Errorf("glyph row %d: 0x%02x", i, glyph[i])
		}
	}
	checkTiming(t, bus)
}

func TestCreateCharInvalidSlot(t *testing.T) {
	dev, bus := initDev(t, pins4(false), nil)
	mark := len(bus.Latches)
	for _, slot := range []int{-1, 8, 255} {
		if err := dev.CreateChar(slot, [8]byte{}); !errors.Is(err, hd44780.ErrInvalidSlot) {
			t.Errorf("slot %d: expected ErrInvalidSlot, received %v", slot, err)
		}
	}
	if len(bus.Latches) != mark {
		t.Error("invalid slot reached the bus")
	}
}

func TestControlFlagsAdditive(t *testing.T) {
	dev, bus := initDev(t, pins4(false), nil)
	var tests = []struct {
		op   func() error
		want byte
	}{
		{func() error { return dev.Blink(true) }, 0x0d},
		{func() error { return dev.Cursor(true) }, 0x0f},
		{func() error { return dev.Display(false) }, 0x0b},
		{func() error { return dev.Display(true) }, 0x0f},
		{func() error { return dev.Cursor(false) }, 0x0d},
		{func() error { return dev.Blink(false) }, 0x0c},
	}
	for i, test := range tests {
		if err := test.op(); err != nil {
			t.Fatal(err)
		}
		cmds := bus.Controller.Commands()
		if got := cmds[len(cmds)-1]; got != test.want {
			t.Errorf("step %d: sent 0x%02x, expected 0x%02x", i, got, test.want)
		}
		if got := dev.Control().Opcode(); got != test.want {
			t.Errorf("step %d: state 0x%02x, expected 0x%02x", i, got, test.want)
		}
	}
}

func TestEntryAndShift(t *testing.T) {
	dev, bus := initDev(t, pins4(false), nil)
	var tests = []struct {
		op   func() error
		want byte
	}{
		{func() error { return dev.SetTextDirection(hd44780.RightToLeft) }, 0x04},
		{func() error { return dev.SetAutoscroll(true) }, 0x05},
		{func() error { return dev.SetTextDirection(hd44780.LeftToRight) }, 0x07},
		{func() error { return dev.SetAutoscroll(false) }, 0x06},
		{func() error { return dev.Scroll(hd44780.Left) }, 0x18},
		{func() error { return dev.Scroll(hd44780.Right) }, 0x1c},
		{func() error { return dev.MoveCursor(hd44780.Left) }, 0x10},
		{func() error { return dev.MoveCursor(hd44780.Right) }, 0x14},
	}
	for i, test := range tests {
		if err := test.op(); err != nil {
			t.Fatal(err)
		}
		cmds := bus.Controller.Commands()
		if got := cmds[len(cmds)-1]; got != test.want {
			t.Errorf("step %d: sent 0x%02x, expected 0x%02x", i, got, test.want)
		}
	}
}

func TestScrollDisplay(t *testing.T) {
	dev, bus := initDev(t, pins4(false), &hd44780.Opts{Cols: 4, Lines: 2})
	if _, err := dev.WriteString("abcdef"); err != nil {
		t.Fatal(err)
	}
	if err := dev.Scroll(hd44780.Left); err != nil {
		t.Fatal(err)
	}
	offsets := dev.RowOffsets()
	if got := bus.Controller.Text(4, offsets[:1])[0]; got != "bcde" {
		t.Errorf("after scroll left %q", got)
	}
	if err := dev.Home(); err != nil {
		t.Fatal(err)
	}
	if got := bus.Controller.Text(4, offsets[:1])[0]; got != "abcd" {
		t.Errorf("after home %q", got)
	}
}

func TestSetCursor(t *testing.T) {
	dev, bus := initDev(t, pins4(false), &hd44780.Opts{Cols: 20, Lines: 4})
	var tests = []struct {
		col, row int
		want     byte
	}{
		{0, 0, 0x80},
		{5, 1, 0xc5},
		{0, 2, 0x80 | 20},
		{19, 3, 0x80 | (0x40 + 20 + 19)},
		{3, 9, 0x80 | (0x40 + 20 + 3)},
		{3, -1, 0x83},
	}
	for _, test := range tests {
		if err := dev.SetCursor(test.col, test.row); err != nil {
			t.Fatal(err)
		}
		cmds := bus.Controller.Commands()
		if got := cmds[len(cmds)-1]; got != test.want {
			t.Errorf("SetCursor(%d, %d) sent 0x%02x, expected 0x%02x", test.col, test.row, got, test.want)
		}
	}
	if err := dev.SetCursor(-1, 0); !errors.Is(err, hd44780.ErrInvalidPosition) {
		t.Errorf("expected ErrInvalidPosition, received %v", err)
	}

	dev.SetRowOffsets(0x00, 0x40, 0x60, 0x70)
	mark := len(bus.Latches)
	for _, pos := range [][2]int{{16, 3}, {79, 1}, {0x20, 2}} {
		if err := dev.SetCursor(pos[0], pos[1]); !errors.Is(err, hd44780.ErrInvalidPosition) {
			t.Errorf("SetCursor(%d, %d) = %v, expected ErrInvalidPosition", pos[0], pos[1], err)
		}
	}
	if len(bus.Latches) != mark {
		t.Error("out of range address reached the bus")
	}
	if err := dev.SetCursor(15, 3); err != nil {
		t.Errorf("SetCursor(15, 3) = %v", err)
	}

	two, bus2 := initDev(t, pins4(false), &hd44780.DefaultOpts)
	if err := two.SetCursor(1, 3); err != nil {
		t.Fatal(err)
	}
	cmds := bus2.Controller.Commands()
	if got := cmds[len(cmds)-1]; got != 0xc1 {
		t.Errorf("row clamped to 0x%02x, expected 0xc1", got)
	}
}

func TestWriteText(t *testing.T) {
	dev, bus := initDev(t, pins4(true), &hd44780.DefaultOpts)
	if _, err := dev.WriteString("Hello"); err != nil {
		t.Fatal(err)
	}
	if err := dev.SetCursor(0, 1); err != nil {
		t.Fatal(err)
	}
	n, err := dev.Write([]byte("World"))
	if n != 5 || err != nil {
		t.Fatalf("Write() = %d, %v", n, err)
	}
	offsets := dev.RowOffsets()
	got := bus.Controller.Text(16, offsets[:2])
	want := []string{"Hello" + strings.Repeat(" ", 11), "World" + strings.Repeat(" ", 11)}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: %q, expected %q", i, got[i], want[i])
		}
	}
	checkTiming(t, bus)
}

func TestReadWritePin(t *testing.T) {
	_, bus := initDev(t, pins4(false), nil)
	if _, ok := bus.Modes[rwPin]; ok {
		t.Error("unwired R/W pin was configured")
	}
	if bus.Writes[rwPin] != 0 {
		t.Error("unwired R/W pin was driven")
	}

	dev, bus := initDev(t, pins4(true), nil)
	if _, err := dev.WriteString("rw"); err != nil {
		t.Fatal(err)
	}
	if bus.Modes[rwPin] != hd44780.Output {
		t.Error("R/W pin not an output")
	}
	if bus.Writes[rwPin] == 0 {
		t.Error("R/W pin never driven")
	}
	if bus.Level(rwPin) != gpio.Low {
		t.Error("R/W pin not low")
	}
}

func TestBusError(t *testing.T) {
	boom := errors.New("boom")
	dev, bus := newDev(t, pins4(false))
	bus.Err = boom
	err := dev.Init(nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, received %v", err)
	}
	if !strings.HasPrefix(err.Error(), "hd44780: ") {
		t.Errorf("error not prefixed: %q", err)
	}
	if dev.Initialized() {
		t.Error("initialized after a bus error")
	}

	bus.Err = nil
	if err := dev.Init(nil); err != nil {
		t.Fatal(err)
	}
	bus.Err = boom
	if n, err := dev.WriteChar('x'); n != 0 || !errors.Is(err, boom) {
		t.Errorf("WriteChar() = %d, %v", n, err)
	}
	if err := dev.Cursor(true); !errors.Is(err, boom) {
		t.Errorf("Cursor() = %v", err)
	}
	if dev.Control().Cursor {
		t.Error("control state changed although the command failed")
	}
}

func TestString(t *testing.T) {
	dev, _ := initDev(t, pins4(true), &hd44780.Opts{Cols: 20, Lines: 4})
	want := "HD44780{4 bit, RS=1 RW=7 E=2 D=[3 4 5 6], 20x4}"
	if got := dev.String(); got != want {
		t.Errorf("String() = %q, expected %q", got, want)
	}
}
