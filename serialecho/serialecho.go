// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package serialecho shows messages received on a byte stream, typically a
// serial port, on a character display.
//
// Messages are terminated by a NUL byte. A newline inside a message moves to
// the start of the next row.
package serialecho

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/GermanBionicSystems/liquidcrystal/hd44780"
)

// Display is the part of hd44780.Dev used here.
type Display interface {
	Clear() error
	SetCursor(col, row int) error
	Write(p []byte) (int, error)
}

// Opts represents the options available for an Echo.
type Opts struct {
	// BufferSize bounds a message. A full buffer is shown as if it was
	// terminated, and a terminator received right after it is dropped.
	BufferSize int
	Terminator byte
	// ClearOnMessage clears the display before showing each message.
	ClearOnMessage bool
	// ExitOnEOF makes Run return at the end of the stream. Leave it unset
	// for serial ports, which report a read timeout as io.EOF.
	ExitOnEOF bool
	// Poll is how long Run waits after a read returned nothing.
	Poll time.Duration
}

// DefaultOpts matches the usual sender: NUL terminated messages of up to 128
// bytes, polled every 10ms.
var DefaultOpts = Opts{
	BufferSize:     128,
	ClearOnMessage: true,
	Poll:           10 * time.Millisecond,
}

// ReadChunk reads from r into buf starting at offset, one byte at a time,
// until the terminator, a read that returns no data, or a full buffer. It
// returns the new offset and whether a message is complete. The terminator
// is not stored.
func ReadChunk(r io.Reader, buf []byte, offset int, term byte) (int, bool, error) {
	var b [1]byte
	for offset < len(buf) {
		n, err := r.Read(b[:])
		if n == 1 {
			if b[0] == term {
				return offset, true, nil
			}
			buf[offset] = b[0]
			offset++
			continue
		}
		return offset, false, err
	}
	return offset, true, nil
}

// Echo copies messages from a reader to a Display.
type Echo struct {
	r    io.Reader
	d    Display
	opts Opts
	buf  []byte
	n    int
	// full is set when the last message was cut at BufferSize, so the
	// terminator that follows it does not start an empty message.
	full bool

	// Messages counts the messages shown.
	Messages int
}

// New returns an Echo. opts may be nil for DefaultOpts.
func New(r io.Reader, d Display, opts *Opts) *Echo {
	if opts == nil {
		opts = &DefaultOpts
	}
	o := *opts
	if o.BufferSize <= 0 {
		o.BufferSize = DefaultOpts.BufferSize
	}
	return &Echo{r: r, d: d, opts: o, buf: make([]byte, o.BufferSize)}
}

// Step does one read pass and shows the message if it completed. It returns
// the reader's error, if any.
func (e *Echo) Step() error {
	n, done, err := ReadChunk(e.r, e.buf, e.n, e.opts.Terminator)
	if e.full && (n > 0 || done) {
		e.full = false
		if done && n == 0 {
			return err
		}
	}
	e.n = n
	if done {
		e.full = n == len(e.buf)
		if showErr := e.Flush(); showErr != nil {
			return showErr
		}
	}
	return err
}

// Flush shows whatever has been received so far as a message.
func (e *Echo) Flush() error {
	msg := e.buf[:e.n]
	e.n = 0
	if e.opts.ClearOnMessage {
		if err := e.d.Clear(); err != nil {
			return err
		}
	}
	for row, line := range bytes.Split(msg, []byte{'\n'}) {
		if row > 0 {
			if err := e.d.SetCursor(0, row); err != nil {
				return err
			}
		}
		if _, err := e.d.Write(line); err != nil {
			return err
		}
	}
	e.Messages++
	return nil
}

// Run calls Step until ctx is canceled, the display fails, or the stream
// ends with ExitOnEOF set. A partial message pending at the end of the
// stream is shown.
func (e *Echo) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		pending, shown := e.n, e.Messages
		err := e.Step()
		switch {
		case errors.Is(err, io.EOF):
			if e.opts.ExitOnEOF {
				if e.n > 0 {
					return e.Flush()
				}
				return nil
			}
		case err != nil:
			return err
		}
		if e.n == pending && e.Messages == shown {
			e.idle(ctx)
		}
	}
}

func (e *Echo) idle(ctx context.Context) {
	if e.opts.Poll <= 0 {
		return
	}
	t := time.NewTimer(e.opts.Poll)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

var _ Display = &hd44780.Dev{}
