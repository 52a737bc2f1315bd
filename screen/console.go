// Copyright 2017 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package screen shows the state of a simulated HD44780 on a terminal, using
// ANSI color codes, or as a PNG image.
//
// Useful while you are waiting for your LCD to come by mail.
package screen

import (
	"bytes"
	"fmt"
	"image/color"
	"io"
	"strings"

	fcolor "github.com/fatih/color"
	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"

	"github.com/GermanBionicSystems/liquidcrystal/hd44780/hd44780test"
)

// Default pixel colors of a yellow-green STN panel.
var (
	DefaultOn  = color.NRGBA{0x20, 0x30, 0x10, 0xff}
	DefaultOff = color.NRGBA{0x9a, 0xc0, 0x30, 0xff}
)

// Opts represents the options available for the console.
type Opts struct {
	// Cols and RowOffsets describe the display geometry. RowOffsets has one
	// entry per visible row.
	Cols       int
	RowOffsets []byte
	Palette    *ansi256.Palette
	// W defaults to stdout.
	W io.Writer

	_ struct{}
}

// Console prints the visible DDRAM contents of a Controller inside a frame.
type Console struct {
	w       io.Writer
	cols    int
	offsets []byte
	palette ansi256.Palette
	frame   *fcolor.Color
	text    *fcolor.Color

	buf bytes.Buffer
}

// NewConsole returns a Console.
func NewConsole(opts *Opts) *Console {
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	w := opts.W
	if w == nil {
		w = colorable.NewColorableStdout()
	}
	return &Console{
		w:       w,
		cols:    opts.Cols,
		offsets: append([]byte(nil), opts.RowOffsets...),
		palette: *p,
		frame:   fcolor.New(fcolor.FgHiBlack),
		text:    fcolor.New(fcolor.FgHiGreen, fcolor.Bold),
	}
}

func (c *Console) String() string {
	return fmt.Sprintf("Console{%dx%d}", c.cols, len(c.offsets))
}

// Halt implements conn.Resource. It resets the terminal attributes.
func (c *Console) Halt() error {
	_, err := c.w.Write([]byte("\033[0m\n"))
	return err
}

// Render prints the display. CGRAM characters are shown as a solid block.
func (c *Console) Render(ctrl *hd44780test.Controller) error {
	c.buf.Reset()
	border := "+" + strings.Repeat("-", c.cols) + "+\n"
	_, _ = c.frame.Fprint(&c.buf, border)
	for _, row := range ctrl.Text(c.cols, c.offsets) {
		_, _ = c.frame.Fprint(&c.buf, "|")
		for i := 0; i < len(row); i++ {
			ch := row[i]
			switch {
			case !ctrl.Control.Display:
				_ = c.buf.WriteByte(' ')
			case ch < 16:
				_, _ = io.WriteString(&c.buf, c.palette.Block(DefaultOn))
				_, _ = c.buf.WriteString("\033[0m")
			case ch < 0x20 || ch > 0x7e:
				_, _ = c.text.Fprint(&c.buf, "?")
			default:
				_, _ = c.text.Fprint(&c.buf, string(ch))
			}
		}
		_, _ = c.frame.Fprint(&c.buf, "|\n")
	}
	_, _ = c.frame.Fprint(&c.buf, border)
	_, err := c.buf.WriteTo(c.w)
	return err
}

// RenderGlyphs prints the 8 CGRAM glyphs side by side, one terminal cell per
// dot.
func (c *Console) RenderGlyphs(ctrl *hd44780test.Controller) error {
	c.buf.Reset()
	var glyphs [8][8]byte
	for slot := range glyphs {
		glyphs[slot], _ = ctrl.Glyph(byte(slot))
	}
	for row := range 8 {
		for slot := range glyphs {
			for bit := 4; bit >= 0; bit-- {
				px := DefaultOff
				if glyphs[slot][row]>>bit&1 == 1 {
					px = DefaultOn
				}
				_, _ = io.WriteString(&c.buf, c.palette.Block(px))
			}
			_, _ = c.buf.WriteString("\033[0m ")
		}
		_ = c.buf.WriteByte('\n')
	}
	_, err := c.buf.WriteTo(c.w)
	return err
}
