// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package liquidcrystal drives HD44780 compatible character LCDs over a
// parallel bus of GPIO lines.
//
// The controller driver lives in hd44780 and talks to the hardware through
// two small interfaces, hd44780.Bus and hd44780.Delayer. gpiobus implements
// them on top of periph.io host pins, rpiobus on top of memory mapped
// Raspberry Pi registers, and hd44780/hd44780test with a simulated
// controller for tests. screen renders the simulated controller to a
// terminal or a PNG, and serialecho copies bytes from a serial port to the
// display; cmd/lcdecho puts it all together.
package liquidcrystal
