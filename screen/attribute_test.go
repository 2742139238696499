// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/attribute_test.go
// Summary: Attribute codec tests.

package screen

import "testing"

func TestAttributeFromU8BlinkMode(t *testing.T) {
	a := AttributeFromU8(0x9F, IceBlink)
	if a.Foreground != PaletteColor(15) {
		t.Fatalf("fg = %+v", a.Foreground)
	}
	if a.Background != PaletteColor(1) {
		t.Fatalf("bg = %+v", a.Background)
	}
	if !a.Has(FlagBlink) {
		t.Fatal("high bit should decode as blink")
	}
}

func TestAttributeFromU8IceMode(t *testing.T) {
	a := AttributeFromU8(0x9F, IceColors)
	if a.Background != PaletteColor(9) {
		t.Fatalf("bg = %+v, want bright background", a.Background)
	}
	if a.Has(FlagBlink) {
		t.Fatal("ice mode must not set blink")
	}
}

func TestAttributeAsU8RoundTrip(t *testing.T) {
	for _, b := range []uint8{0x00, 0x07, 0x1E, 0x70, 0x8F, 0xFF} {
		if got := AttributeFromU8(b, IceBlink).AsU8(IceBlink); got != b {
			t.Errorf("blink round trip %#02x -> %#02x", b, got)
		}
		if got := AttributeFromU8(b, IceColors).AsU8(IceColors); got != b {
			t.Errorf("ice round trip %#02x -> %#02x", b, got)
		}
	}
}

func TestAttributeAsU8BoldFoldsIntoIntensity(t *testing.T) {
	a := DefaultAttribute()
	a.Set(FlagBold, true)
	if got := a.AsU8(IceBlink); got != 0x0F {
		t.Fatalf("AsU8 = %#02x, want 0x0F", got)
	}
}

func TestAttributeAsU8RgbDegrades(t *testing.T) {
	a := TextAttribute{Foreground: RGBColor(200, 10, 10), Background: RGBColor(0, 0, 80)}
	if got := a.AsU8(IceBlink); got != 0x07 {
		t.Fatalf("AsU8 = %#02x, want RGB planes to degrade to 7 on 0", got)
	}
}

func TestColorU32RoundTrip(t *testing.T) {
	colors := []AttributeColor{
		PaletteColor(0),
		PaletteColor(15),
		ExtendedColor(123),
		RGBColor(1, 2, 3),
		RGBColor(255, 128, 0),
		TransparentColor(),
	}
	for _, c := range colors {
		if got := ColorFromU32(c.ToU32()); got != c {
			t.Errorf("round trip %+v -> %+v", c, got)
		}
	}
}
