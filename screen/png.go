// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package screen

import (
	"image"
	"io"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/GermanBionicSystems/liquidcrystal/hd44780/hd44780test"
)

// A character cell is 5x8 dots plus one dot of spacing on each axis.
const (
	cellW = 6
	cellH = 9
)

// Snapshot draws a Controller the way the panel would look.
//
// CGRAM characters are drawn dot by dot. ROM characters are drawn with Go
// Mono rather than the controller's font.
type Snapshot struct {
	cols    int
	offsets []byte
	scale   float64
	face    font.Face
}

// NewSnapshot returns a Snapshot for the given geometry. scale is the size
// of one dot in pixels.
func NewSnapshot(cols int, rowOffsets []byte, scale float64) (*Snapshot, error) {
	f, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, err
	}
	if scale <= 0 {
		scale = 4
	}
	return &Snapshot{
		cols:    cols,
		offsets: append([]byte(nil), rowOffsets...),
		scale:   scale,
		face:    truetype.NewFace(f, &truetype.Options{Size: 7 * scale, DPI: 72}),
	}, nil
}

// Bounds returns the size of the images produced.
func (s *Snapshot) Bounds() image.Rectangle {
	w := int(float64((s.cols*cellW)+1) * s.scale)
	h := int(float64((len(s.offsets)*cellH)+1) * s.scale)
	return image.Rect(0, 0, w, h)
}

// Draw renders the visible part of DDRAM.
func (s *Snapshot) Draw(ctrl *hd44780test.Controller) image.Image {
	b := s.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.SetColor(DefaultOff)
	dc.Clear()
	if !ctrl.Control.Display {
		return dc.Image()
	}
	dc.SetFontFace(s.face)
	for r, row := range ctrl.Text(s.cols, s.offsets) {
		for col := 0; col < len(row); col++ {
			x := float64(col*cellW+1) * s.scale
			y := float64(r*cellH+1) * s.scale
			if glyph, ok := ctrl.Glyph(row[col]); ok {
				s.drawGlyph(dc, x, y, glyph)
				continue
			}
			if row[col] == ' ' {
				continue
			}
			dc.SetColor(DefaultOn)
			dc.DrawStringAnchored(string(rune(row[col])), x+2.5*s.scale, y+4*s.scale, 0.5, 0.5)
		}
	}
	return dc.Image()
}

// WritePNG encodes Draw's output to w.
func (s *Snapshot) WritePNG(w io.Writer, ctrl *hd44780test.Controller) error {
	img := s.Draw(ctrl)
	dc := gg.NewContextForImage(img)
	return dc.EncodePNG(w)
}

func (s *Snapshot) drawGlyph(dc *gg.Context, x, y float64, glyph [8]byte) {
	dc.SetColor(DefaultOn)
	for row, bits := range glyph {
		for dot := range 5 {
			if bits>>(4-dot)&1 == 0 {
				continue
			}
			dc.DrawRectangle(x+float64(dot)*s.scale, y+float64(row)*s.scale, s.scale, s.scale)
		}
	}
	dc.Fill()
}
