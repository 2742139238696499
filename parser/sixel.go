// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: parser/sixel.go
// Summary: Sixel image decoding as an explicit background task.
// Usage: The ANSI DCS handler starts a task; consumers call Join once at
//        a safe point before rendering.
// Notes: The task owns its input copy; no state is shared with the parser.

package parser

import "fmt"

// SixelImage is a decoded Sixel graphic in RGBA order, 4 bytes per pixel.
type SixelImage struct {
	Width, Height int
	VerticalScale int
	Pixels        []byte
}

type sixelResult struct {
	img *SixelImage
	err error
}

// SixelTask is the handle for one background decode. Exactly one
// goroutine runs per task and terminates on its own; Join may be called
// any number of times but blocks only until the first result.
type SixelTask struct {
	result chan sixelResult
	img    *SixelImage
	err    error
	done   bool
}

// StartSixelDecode copies nothing: the caller hands over ownership of
// data and must not modify it afterwards.
func StartSixelDecode(verticalScale int, data []byte) *SixelTask {
	t := &SixelTask{result: make(chan sixelResult, 1)}
	go func() {
		img, err := decodeSixel(verticalScale, data)
		t.result <- sixelResult{img: img, err: err}
	}()
	return t
}

// Join waits for the decode to finish and returns the image.
func (t *SixelTask) Join() (*SixelImage, error) {
	if !t.done {
		r := <-t.result
		t.img, t.err = r.img, r.err
		t.done = true
	}
	return t.img, t.err
}

// Ready reports whether Join would return without blocking.
func (t *SixelTask) Ready() bool {
	if t.done {
		return true
	}
	select {
	case r := <-t.result:
		t.img, t.err = r.img, r.err
		t.done = true
		return true
	default:
		return false
	}
}

// defaultSixelPalette holds the VT340 default color registers 0-15,
// scaled to 8-bit channels.
var defaultSixelPalette = [16][3]uint8{
	{0, 0, 0}, {51, 51, 204}, {204, 33, 33}, {51, 204, 51},
	{204, 51, 204}, {51, 204, 204}, {204, 204, 51}, {135, 135, 135},
	{66, 66, 66}, {84, 84, 153}, {153, 66, 66}, {84, 153, 84},
	{153, 84, 153}, {84, 153, 153}, {153, 153, 84}, {204, 204, 204},
}

type sixelCanvas struct {
	width, height int
	pixels        []uint16 // palette index + 1; 0 = transparent
}

func (c *sixelCanvas) set(x, y int, color uint16) {
	if x >= c.width || y >= c.height {
		c.grow(maxInt(x+1, c.width), maxInt(y+1, c.height))
	}
	c.pixels[y*c.width+x] = color + 1
}

func (c *sixelCanvas) grow(w, h int) {
	next := make([]uint16, w*h)
	for y := 0; y < c.height; y++ {
		copy(next[y*w:y*w+c.width], c.pixels[y*c.width:(y+1)*c.width])
	}
	c.width, c.height, c.pixels = w, h, next
}

// decodeSixel runs on the task goroutine. Color registers beyond the
// default 16 are allocated on demand.
func decodeSixel(verticalScale int, data []byte) (*SixelImage, error) {
	palette := make(map[int][3]uint8, 16)
	for idx, rgb := range defaultSixelPalette {
		palette[idx] = rgb
	}

	canvas := &sixelCanvas{}
	x, y := 0, 0
	color := 0
	i := 0

	readNumber := func() int {
		n := 0
		for i < len(data) && data[i] >= '0' && data[i] <= '9' {
			n = n*10 + int(data[i]-'0')
			i++
		}
		return n
	}

	drawColumn := func(bits byte, repeat int) {
		for r := 0; r < repeat; r++ {
			for bit := 0; bit < 6; bit++ {
				if bits&(1<<bit) != 0 {
					canvas.set(x, y+bit, uint16(color))
				}
			}
			x++
		}
	}

	for i < len(data) {
		b := data[i]
		switch {
		case b == '"':
			// Raster attributes: Pan;Pad;Ph;Pv. Aspect handling is the
			// caller's verticalScale; the size hint just pre-grows.
			i++
			readNumber()
			if i < len(data) && data[i] == ';' {
				i++
				readNumber()
			}
			w, h := 0, 0
			if i < len(data) && data[i] == ';' {
				i++
				w = readNumber()
			}
			if i < len(data) && data[i] == ';' {
				i++
				h = readNumber()
			}
			if w > 0 && h > 0 {
				canvas.grow(maxInt(w, canvas.width), maxInt(h, canvas.height))
			}
		case b == '#':
			i++
			reg := readNumber()
			if i < len(data) && data[i] == ';' {
				// Color definition: #Pc;Pu;Px;Py;Pz
				i++
				system := readNumber()
				var p [3]int
				for c := 0; c < 3; c++ {
					if i < len(data) && data[i] == ';' {
						i++
						p[c] = readNumber()
					}
				}
				switch system {
				case 2:
					palette[reg] = [3]uint8{
						uint8(p[0] * 255 / 100),
						uint8(p[1] * 255 / 100),
						uint8(p[2] * 255 / 100),
					}
				case 1:
					palette[reg] = hlsToRGB(p[0], p[1], p[2])
				default:
					return nil, fmt.Errorf("sixel: unknown color system %d", system)
				}
			}
			color = reg
		case b == '!':
			i++
			repeat := readNumber()
			if repeat < 1 {
				repeat = 1
			}
			if i < len(data) && data[i] >= 0x3F && data[i] <= 0x7E {
				drawColumn(data[i]-0x3F, repeat)
				i++
			}
		case b == '$':
			x = 0
			i++
		case b == '-':
			x = 0
			y += 6
			i++
		case b >= 0x3F && b <= 0x7E:
			drawColumn(b-0x3F, 1)
			i++
		default:
			// Parameter leftovers and whitespace are skipped.
			i++
		}
	}

	img := &SixelImage{
		Width:         canvas.width,
		Height:        canvas.height,
		VerticalScale: verticalScale,
		Pixels:        make([]byte, canvas.width*canvas.height*4),
	}
	for p, idx := range canvas.pixels {
		if idx == 0 {
			continue
		}
		rgb := palette[int(idx-1)]
		img.Pixels[p*4+0] = rgb[0]
		img.Pixels[p*4+1] = rgb[1]
		img.Pixels[p*4+2] = rgb[2]
		img.Pixels[p*4+3] = 0xFF
	}
	return img, nil
}

// hlsToRGB converts the Sixel HLS color system (H 0-360, L 0-100,
// S 0-100) to 8-bit RGB.
func hlsToRGB(h, l, s int) [3]uint8 {
	hf := float64((h+240)%360) / 360.0
	lf := float64(l) / 100.0
	sf := float64(s) / 100.0

	var q float64
	if lf < 0.5 {
		q = lf * (1 + sf)
	} else {
		q = lf + sf - lf*sf
	}
	p := 2*lf - q

	conv := func(t float64) uint8 {
		if t < 0 {
			t++
		}
		if t > 1 {
			t--
		}
		var v float64
		switch {
		case t < 1.0/6.0:
			v = p + (q-p)*6*t
		case t < 1.0/2.0:
			v = q
		case t < 2.0/3.0:
			v = p + (q-p)*(2.0/3.0-t)*6
		default:
			v = p
		}
		return uint8(v*255 + 0.5)
	}
	return [3]uint8{conv(hf + 1.0/3.0), conv(hf), conv(hf - 1.0/3.0)}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
