// Copyright © 2025 Retroterm contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: screen/sink.go
// Summary: CommandSink implementation that applies parsed commands to a TextScreen.
// Notes: This is the principal consumer of every dialect parser. Vector
//        graphics commands are forwarded to an optional GraphicsHandler;
//        without one they are dropped after their screen side effects.

package screen

import (
	"math/rand"

	"github.com/framegrace/retroterm/parser"
)

// GraphicsHandler receives vector drawing commands the text grid cannot
// represent. Implementations render them on a pixel surface.
type GraphicsHandler interface {
	HandleRip(cmd parser.RipCommand)
	HandleIgs(cmd parser.IgsCommand)
	HandleSkypix(cmd parser.SkypixCommand)
}

// ParseWarning is one recorded diagnostic.
type ParseWarning struct {
	Err   parser.ParseError
	Level parser.ErrorLevel
}

// ScreenSink applies decoded commands to a screen. It records requests
// and diagnostics for the embedding application to drain.
type ScreenSink struct {
	Screen   *TextScreen
	Graphics GraphicsHandler

	// Pending holds requests awaiting an answer to the remote peer.
	Pending []parser.TerminalRequest

	Warnings []ParseWarning

	igsBounds parser.ParameterBounds
	rng       *rand.Rand

	sixelTasks []*parser.SixelTask
	macros     map[int][]byte

	inverse bool
}

// NewScreenSink wraps a screen. The random source drives IGS loop
// parameters; a deterministic one makes replays reproducible.
func NewScreenSink(screen *TextScreen, rng *rand.Rand) *ScreenSink {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &ScreenSink{
		Screen:    screen,
		igsBounds: parser.DefaultParameterBounds(),
		rng:       rng,
		macros:    make(map[int][]byte),
	}
}

// Print maps code page 437 bytes to glyphs and prints them.
func (s *ScreenSink) Print(data []byte) {
	for _, b := range data {
		s.Screen.PrintRune(CP437ToRune(b))
	}
}

// rect converts a 1-indexed inclusive wire rectangle to absolute
// buffer coordinates.
func (s *ScreenSink) rect(r parser.Rect) Rectangle {
	first := s.Screen.Buffer.FirstVisibleLine()
	return RectFromCorners(
		Position{X: r.Left - 1, Y: first + r.Top - 1},
		Position{X: r.Right - 1, Y: first + r.Bottom - 1},
	)
}

// Emit applies one generic terminal command.
func (s *ScreenSink) Emit(c parser.TerminalCommand) {
	scr := s.Screen
	switch c.Op {
	case parser.OpBell:
		// No audio path in the core.
	case parser.OpBackspace:
		scr.Backspace()
	case parser.OpTab:
		scr.TabForward(1)
	case parser.OpLineFeed:
		scr.LineFeed()
	case parser.OpCarriageReturn:
		scr.CarriageReturn()
	case parser.OpFormFeed:
		scr.FormFeed()

	case parser.OpCursorUp:
		scr.MoveUp(c.N)
	case parser.OpCursorDown:
		scr.MoveDown(c.N)
	case parser.OpCursorLeft:
		scr.MoveLeft(c.N)
	case parser.OpCursorRight:
		scr.MoveRight(c.N)
	case parser.OpCursorNextLine:
		scr.MoveDown(c.N)
		scr.Caret.Pos.X = 0
	case parser.OpCursorPrevLine:
		scr.MoveUp(c.N)
		scr.Caret.Pos.X = 0
	case parser.OpCursorPosition:
		origin := scr.UpperLeft()
		scr.SetCaretPosition(Position{X: origin.X + c.X - 1, Y: origin.Y + c.Y - 1})
	case parser.OpCursorColumn:
		scr.SetCaretPosition(Position{X: c.N - 1, Y: scr.Caret.Pos.Y})
	case parser.OpCursorRow:
		origin := scr.UpperLeft()
		scr.SetCaretPosition(Position{X: scr.Caret.Pos.X, Y: origin.Y + c.N - 1})
	case parser.OpIndex:
		scr.Index()
	case parser.OpReverseIndex:
		scr.ReverseIndex()
	case parser.OpNextLine:
		scr.NextLine()

	case parser.OpEraseDisplay:
		scr.EraseDisplay(c.N)
	case parser.OpEraseLine:
		scr.EraseLine(c.N)
	case parser.OpSelectiveEraseDisplay:
		scr.SelectiveEraseDisplay(c.N)
	case parser.OpSelectiveEraseLine:
		scr.SelectiveEraseLine(c.N)
	case parser.OpSetProtectedAttribute:
		scr.Caret.Attr.Protected = c.N != 0

	case parser.OpInsertLine:
		scr.InsertTerminalLine(c.N)
	case parser.OpDeleteLine:
		scr.RemoveTerminalLine(c.N)
	case parser.OpInsertChar:
		scr.InsertChar(c.N)
	case parser.OpDeleteChar:
		scr.DeleteChar(c.N)
	case parser.OpEraseChar:
		scr.EraseChar(c.N)
	case parser.OpRepeatLastChar:
		scr.RepeatLastChar(c.N)

	case parser.OpScrollUp:
		for i := 0; i < c.N; i++ {
			scr.ScrollRegionUp()
		}
	case parser.OpScrollDown:
		for i := 0; i < c.N; i++ {
			scr.ScrollRegionDown()
		}
	case parser.OpScrollLeft:
		scr.ScrollLeft(c.N)
	case parser.OpScrollRight:
		scr.ScrollRight(c.N)

	case parser.OpFillRect:
		ch := AttributedChar{Ch: CP437ToRune(byte(c.N)), Attr: scr.Caret.Attr}
		scr.FillRect(s.rect(c.Rect), ch)
	case parser.OpEraseRect:
		scr.EraseRect(s.rect(c.Rect))
	case parser.OpSelectiveEraseRect:
		scr.SelectiveEraseRect(s.rect(c.Rect))

	case parser.OpSetTopBottomMargins:
		top, bottom := c.X, c.Y
		if top <= 0 {
			top = 1
		}
		if bottom <= 0 {
			bottom = scr.Buffer.Terminal.Height()
		}
		scr.SetTopBottomMargins(top-1, bottom-1)
	case parser.OpSetLeftRightMargins:
		left, right := c.X, c.Y
		if left <= 0 {
			left = 1
		}
		if right <= 0 {
			right = scr.Buffer.Terminal.Width()
		}
		scr.SetLeftRightMargins(left-1, right-1)
	case parser.OpResetMargins:
		scr.Buffer.Terminal.ResetMargins()
		scr.Caret.Pos = scr.UpperLeft()

	case parser.OpTabSet:
		scr.Buffer.Terminal.SetTabStop(scr.Caret.Pos.X)
	case parser.OpTabClear:
		scr.Buffer.Terminal.ClearTabStop(scr.Caret.Pos.X)
	case parser.OpTabClearAll:
		scr.Buffer.Terminal.ClearAllTabStops()
	case parser.OpForwardTab:
		scr.TabForward(c.N)
	case parser.OpBackwardTab:
		scr.TabBackward(c.N)

	case parser.OpSaveCaret:
		scr.SaveCaret()
	case parser.OpRestoreCaret:
		scr.RestoreCaret()

	case parser.OpSetMode:
		s.applyMode(c.Mode, true)
	case parser.OpResetMode:
		s.applyMode(c.Mode, false)

	case parser.OpResize:
		scr.Resize(Size{Width: c.X, Height: c.Y})

	case parser.OpAttribute:
		s.applyAttr(c)

	case parser.OpCaretStyle:
		scr.Caret.Style = CaretStyle(c.N)

	case parser.OpResetTerminal:
		scr.ResetTerminal()
		s.inverse = false

	case parser.OpSelectCommunicationSpeed:
		scr.Buffer.Terminal.BaudRate = baudRate(c.Y)
	}
}

// baudTable maps DECSCS speed selectors to emulated baud rates; zero
// disables emulation.
var baudTable = []int{0, 300, 600, 1200, 2400, 4800, 9600, 19200, 38400, 57600, 76800, 115200}

func baudRate(selector int) int {
	if selector < 0 || selector >= len(baudTable) {
		return 0
	}
	return baudTable[selector]
}

func (s *ScreenSink) applyMode(m parser.TerminalMode, on bool) {
	scr := s.Screen
	switch m {
	case parser.ModeInsert:
		scr.Caret.InsertMode = on
	case parser.ModeOrigin:
		scr.Buffer.Terminal.OriginWithinMargins = on
		scr.Caret.Pos = scr.UpperLeft()
	case parser.ModeAutoWrap:
		scr.Buffer.Terminal.AutoWrap = on
	case parser.ModeCaretVisible:
		scr.Caret.Visible = on
	case parser.ModeIceColors:
		scr.Buffer.Terminal.IceColors = on
		if on {
			scr.Buffer.IceMode = IceColors
		} else {
			scr.Buffer.IceMode = IceBlink
		}
	case parser.ModeInverseVideo:
		scr.Buffer.Terminal.InverseVideo = on
	case parser.ModeAlternateFont:
		if on {
			scr.Caret.Attr.FontPage = 1
		} else {
			scr.Caret.Attr.FontPage = 0
		}
	case parser.ModeLeftRightMargin:
		if !on {
			scr.Buffer.Terminal.LeftRight = Margins{}
		}
	case parser.ModeSmoothScroll:
		scr.Buffer.Terminal.SmoothScroll = on
	}
}

func colorFromWire(c parser.Color) AttributeColor {
	switch c.Kind {
	case parser.ColorExtended:
		return ExtendedColor(c.Index)
	case parser.ColorRGB:
		return RGBColor(c.R, c.G, c.B)
	default:
		return PaletteColor(c.Index)
	}
}

func (s *ScreenSink) applyAttr(c parser.TerminalCommand) {
	attr := &s.Screen.Caret.Attr
	switch c.Attr.Op {
	case parser.AttrReset:
		page := attr.FontPage
		*attr = DefaultAttribute()
		attr.FontPage = page
		s.inverse = false
	case parser.AttrBold:
		attr.Set(FlagBold, true)
	case parser.AttrFaint:
		attr.Set(FlagFaint, true)
	case parser.AttrItalic:
		attr.Set(FlagItalic, true)
	case parser.AttrUnderline:
		attr.Set(FlagUnderline, true)
	case parser.AttrDoubleUnderline:
		attr.Set(FlagDoubleUnderline, true)
	case parser.AttrBlink:
		attr.Set(FlagBlink, true)
	case parser.AttrConceal:
		attr.Set(FlagConceal, true)
	case parser.AttrCrossedOut:
		attr.Set(FlagCrossedOut, true)
	case parser.AttrOverline:
		attr.Set(FlagOverline, true)
	case parser.AttrNormalIntensity:
		attr.Set(FlagBold, false)
		attr.Set(FlagFaint, false)
	case parser.AttrNoItalic:
		attr.Set(FlagItalic, false)
	case parser.AttrNoUnderline:
		attr.Set(FlagUnderline, false)
		attr.Set(FlagDoubleUnderline, false)
	case parser.AttrNoBlink:
		attr.Set(FlagBlink, false)
	case parser.AttrReveal:
		attr.Set(FlagConceal, false)
	case parser.AttrNotCrossedOut:
		attr.Set(FlagCrossedOut, false)
	case parser.AttrNoOverline:
		attr.Set(FlagOverline, false)
	case parser.AttrInverse:
		if !s.inverse {
			attr.Foreground, attr.Background = attr.Background, attr.Foreground
			s.inverse = true
		}
	case parser.AttrNoInverse:
		if s.inverse {
			attr.Foreground, attr.Background = attr.Background, attr.Foreground
			s.inverse = false
		}
	case parser.AttrForeground:
		attr.Foreground = colorFromWire(c.Attr.Color)
	case parser.AttrBackground:
		attr.Background = colorFromWire(c.Attr.Color)
	case parser.AttrDefaultForeground:
		attr.Foreground = PaletteColor(7)
	case parser.AttrDefaultBackground:
		attr.Background = PaletteColor(0)
	case parser.AttrFont:
		attr.FontPage = uint8(c.N)
	}
}

// EmitRip forwards RIP drawing to the graphics handler.
func (s *ScreenSink) EmitRip(cmd parser.RipCommand) {
	if s.Graphics != nil {
		s.Graphics.HandleRip(cmd)
	}
}

// EmitSkypix forwards SkyPix drawing to the graphics handler.
func (s *ScreenSink) EmitSkypix(cmd parser.SkypixCommand) {
	if s.Graphics != nil {
		s.Graphics.HandleSkypix(cmd)
	}
}

// EmitIgs applies the IGS commands with text-grid meaning and forwards
// the rest. Loops expand here so every iteration passes back through
// this sink.
func (s *ScreenSink) EmitIgs(cmd parser.IgsCommand) {
	scr := s.Screen
	switch cmd.Op {
	case parser.IgsLoopOp:
		if cmd.Loop != nil {
			cmd.Loop.Run(s, s.igsBounds, s.rng)
		}
		return
	case parser.IgsSetRandomRange:
		if len(cmd.Args) >= 3 {
			s.igsBounds.BigMin, s.igsBounds.BigMax = cmd.Args[1], cmd.Args[2]
		} else if len(cmd.Args) == 2 {
			s.igsBounds.Min, s.igsBounds.Max = cmd.Args[0], cmd.Args[1]
		}
		return
	case parser.IgsInitialize:
		scr.ResetTerminal()
		s.igsBounds = parser.DefaultParameterBounds()
	case parser.IgsScreenClear:
		scr.ClearScreen()
	case parser.IgsCursor:
		scr.Caret.Visible = len(cmd.Args) > 0 && cmd.Args[0] != 0
	case parser.IgsPositionCursor:
		if len(cmd.Args) >= 2 {
			origin := scr.UpperLeft()
			scr.SetCaretPosition(Position{X: origin.X + cmd.Args[0], Y: origin.Y + cmd.Args[1]})
		}
	case parser.IgsInverseVideo:
		scr.Buffer.Terminal.InverseVideo = len(cmd.Args) > 0 && cmd.Args[0] != 0
	case parser.IgsLineWrap:
		scr.Buffer.Terminal.AutoWrap = len(cmd.Args) > 0 && cmd.Args[0] != 0
	case parser.IgsDeleteLine:
		n := 1
		if len(cmd.Args) > 0 && cmd.Args[0] > 0 {
			n = cmd.Args[0]
		}
		scr.RemoveTerminalLine(n)
	case parser.IgsInsertLine:
		n := 1
		if len(cmd.Args) > 1 && cmd.Args[1] > 0 {
			n = cmd.Args[1]
		}
		scr.InsertTerminalLine(n)
	case parser.IgsClearLine:
		mode := 2
		if len(cmd.Args) > 0 {
			mode = cmd.Args[0]
		}
		scr.EraseLine(mode)
	case parser.IgsSetForeground:
		if len(cmd.Args) > 0 {
			scr.Caret.Attr.Foreground = PaletteColor(uint8(cmd.Args[0] & 0x0F))
		}
	case parser.IgsSetBackground:
		if len(cmd.Args) > 0 {
			scr.Caret.Attr.Background = PaletteColor(uint8(cmd.Args[0] & 0x0F))
		}
	case parser.IgsRememberCursor:
		if len(cmd.Args) > 0 && cmd.Args[0] != 0 {
			scr.RestoreCaret()
		} else {
			scr.SaveCaret()
		}
	case parser.IgsWriteText:
		if len(cmd.Args) >= 2 {
			origin := scr.UpperLeft()
			scr.SetCaretPosition(Position{X: origin.X + cmd.Args[0], Y: origin.Y + cmd.Args[1]})
		}
		for _, r := range cmd.Text {
			scr.PrintRune(r)
		}
	}
	if s.Graphics != nil {
		s.Graphics.HandleIgs(cmd)
	}
}

// viewdata dimensions.
const (
	vdWidth  = 40
	vdHeight = 24
)

// EmitViewData applies one Viewdata command on the 40x24 page and
// reports whether the caret wrapped onto a new row.
func (s *ScreenSink) EmitViewData(cmd parser.ViewDataCommand) bool {
	scr := s.Screen
	switch cmd.Op {
	case parser.VdSetChar:
		pos := scr.Caret.Pos
		scr.SetChar(pos, AttributedChar{Ch: rune(cmd.Ch), Attr: scr.Caret.Attr})
		return false
	case parser.VdMoveCaret:
		return s.vdMove(cmd.Dir)
	case parser.VdFillToEol:
		pos := scr.Caret.Pos
		for x := pos.X; x < vdWidth; x++ {
			p := Position{X: x, Y: pos.Y}
			cell := scr.CharAt(p)
			cell.Attr = scr.Caret.Attr
			if !cell.IsVisible() {
				cell = AttributedChar{Ch: ' ', Attr: scr.Caret.Attr}
			}
			scr.SetChar(p, cell)
		}
		return false
	case parser.VdSetBgToFg:
		scr.Caret.Attr.Background = scr.Caret.Attr.Foreground
		return false
	case parser.VdDoubleHeight:
		scr.Caret.Attr.Set(FlagDoubleHeight, cmd.Enabled)
		return false
	case parser.VdClearScreen:
		scr.ClearScreen()
		scr.Caret.Attr = DefaultAttribute()
		return true
	}
	return false
}

// vdMove steps the caret one cell, wrapping at the page edges. A row
// change resets the serial attributes to white on black.
func (s *ScreenSink) vdMove(dir parser.VdDirection) bool {
	pos := &s.Screen.Caret.Pos
	row := pos.Y
	switch dir {
	case parser.VdUp:
		pos.Y--
		if pos.Y < 0 {
			pos.Y = vdHeight - 1
		}
	case parser.VdDown:
		pos.Y++
		if pos.Y >= vdHeight {
			pos.Y = 0
		}
	case parser.VdLeft:
		pos.X--
		if pos.X < 0 {
			pos.X = vdWidth - 1
			pos.Y--
			if pos.Y < 0 {
				pos.Y = vdHeight - 1
			}
		}
	case parser.VdRight:
		pos.X++
		if pos.X >= vdWidth {
			pos.X = 0
			pos.Y++
			if pos.Y >= vdHeight {
				pos.Y = 0
			}
		}
	}
	if pos.Y != row {
		s.Screen.Caret.Attr.Foreground = PaletteColor(7)
		s.Screen.Caret.Attr.Background = PaletteColor(0)
		return true
	}
	return false
}

// DeviceControl records Sixel tasks and macro definitions and loads
// fonts.
func (s *ScreenSink) DeviceControl(dcs parser.DeviceControlString) {
	switch dcs.Kind {
	case parser.DCSSixel:
		if dcs.Sixel != nil {
			s.sixelTasks = append(s.sixelTasks, dcs.Sixel)
		}
	case parser.DCSMacroDefinition:
		s.macros[dcs.MacroID] = dcs.MacroBody
	case parser.DCSFontSelection:
		s.Screen.Buffer.SetFont(uint8(dcs.FontSlot), BitFont{
			Name: "custom",
			Size: Size{Width: 8, Height: len(dcs.FontData) / 256},
			Data: dcs.FontData,
		})
	}
}

// SixelImages joins every pending decode, dropping failed ones with a
// warning.
func (s *ScreenSink) SixelImages() []*parser.SixelImage {
	var imgs []*parser.SixelImage
	for _, t := range s.sixelTasks {
		img, err := t.Join()
		if err != nil {
			s.Warnings = append(s.Warnings, ParseWarning{
				Err: parser.ParseError{
					Kind:        parser.ErrMalformedSequence,
					Description: "sixel decode failed",
					Context:     err.Error(),
				},
				Level: parser.LevelWarning,
			})
			continue
		}
		imgs = append(imgs, img)
	}
	s.sixelTasks = nil
	return imgs
}

// Macro returns a recorded macro body.
func (s *ScreenSink) Macro(id int) ([]byte, bool) {
	body, ok := s.macros[id]
	return body, ok
}

// OperatingSystemCommand stores the window title (OSC 0/2).
func (s *ScreenSink) OperatingSystemCommand(data string) {
	if len(data) > 2 && (data[0] == '0' || data[0] == '2') && data[1] == ';' {
		s.Screen.Buffer.Meta.Title = data[2:]
	}
}

// Aps ignores application program strings.
func (s *ScreenSink) Aps(data []byte) {}

// Request queues a report for the embedding application.
func (s *ScreenSink) Request(req parser.TerminalRequest) {
	s.Pending = append(s.Pending, req)
}

// DrainRequests hands back and clears the pending reports.
func (s *ScreenSink) DrainRequests() []parser.TerminalRequest {
	reqs := s.Pending
	s.Pending = nil
	return reqs
}

// ReportError records a diagnostic.
func (s *ScreenSink) ReportError(err parser.ParseError, level parser.ErrorLevel) {
	s.Warnings = append(s.Warnings, ParseWarning{Err: err, Level: level})
}
