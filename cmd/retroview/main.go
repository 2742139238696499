package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
	"golang.org/x/term"

	"github.com/framegrace/retroterm/parser"
	"github.com/framegrace/retroterm/screen"
)

var (
	dialect  = flag.String("dialect", "", "force dialect (ansi, vt52, atascii, avatar, ctrla, pcboard, rip, skypix, igs, viewdata, ascii)")
	width    = flag.Int("width", 80, "terminal width in cells")
	height   = flag.Int("height", 25, "terminal height in cells")
	dump     = flag.Bool("dump", false, "print the final screen as plain text and exit")
	warnings = flag.Bool("warnings", false, "print parse warnings to stderr")
)

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: retroview [flags] FILE\n")
		flag.PrintDefaults()
		os.Exit(2)
	}
	path := flag.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("retroview: %v", err)
	}

	name := *dialect
	if name == "" {
		name = dialectForFile(path)
	}
	p, err := newParser(name)
	if err != nil {
		log.Fatalf("retroview: %v", err)
	}

	size := screen.Size{Width: *width, Height: *height}
	if name == "viewdata" {
		size = screen.Size{Width: 40, Height: 24}
	}
	scr := screen.NewTextScreen(size)
	sink := screen.NewScreenSink(scr, nil)
	p.Parse(data, sink)

	if *warnings {
		for _, w := range sink.Warnings {
			fmt.Fprintf(os.Stderr, "%s: %s\n", w.Level, w.Err)
		}
	}

	if *dump {
		dumpScreen(scr)
		return
	}
	if err := view(scr, name); err != nil {
		log.Fatalf("retroview: %v", err)
	}
}

// dialectForFile guesses the dialect from the file extension, falling
// back to ANSI, the format the bulk of surviving art uses.
func dialectForFile(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".asc", ".txt", ".nfo":
		return "ascii"
	case ".vt", ".vt52":
		return "vt52"
	case ".ata", ".atascii":
		return "atascii"
	case ".avt":
		return "avatar"
	case ".msg":
		return "ctrla"
	case ".pcb", ".ppe":
		return "pcboard"
	case ".rip":
		return "rip"
	case ".ssm", ".skypix":
		return "skypix"
	case ".ig", ".igs":
		return "igs"
	case ".vd", ".bin":
		return "viewdata"
	default:
		return "ansi"
	}
}

func newParser(name string) (parser.CommandParser, error) {
	switch name {
	case "ascii":
		return parser.NewAsciiParser(), nil
	case "ansi":
		return parser.NewAnsiParser(), nil
	case "vt52":
		return parser.NewVt52Parser(parser.Vt52Mixed), nil
	case "atascii":
		return parser.NewAtasciiParser(), nil
	case "avatar":
		return parser.NewAvatarParser(), nil
	case "ctrla":
		return parser.NewCtrlAParser(), nil
	case "pcboard":
		return parser.NewPcBoardParser(), nil
	case "rip":
		return parser.NewRipParser(), nil
	case "skypix":
		return parser.NewSkypixParser(), nil
	case "igs":
		return parser.NewIgsParser(), nil
	case "viewdata":
		return parser.NewViewdataParser(), nil
	default:
		return nil, fmt.Errorf("unknown dialect %q", name)
	}
}

// dumpScreen prints the buffer as plain text, soft-wrapping at grapheme
// boundaries when stdout is a narrower terminal.
func dumpScreen(scr *screen.TextScreen) {
	outWidth := 0
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			outWidth = w
		}
	}
	for y := 0; y <= scr.Buffer.LastVisibleLine(); y++ {
		var sb strings.Builder
		for x := 0; x < scr.Buffer.Width(); x++ {
			cell := scr.CharAt(screen.Position{X: x, Y: y})
			if !cell.IsVisible() || cell.Ch == 0 {
				sb.WriteByte(' ')
				continue
			}
			sb.WriteRune(cell.Ch)
		}
		line := strings.TrimRight(sb.String(), " ")
		if outWidth > 0 {
			for _, part := range wrapGraphemes(line, outWidth) {
				fmt.Println(part)
			}
		} else {
			fmt.Println(line)
		}
	}
}

// wrapGraphemes splits s into chunks that each fit the given cell
// width, never breaking inside a grapheme cluster.
func wrapGraphemes(s string, width int) []string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return []string{s}
	}
	var parts []string
	var sb strings.Builder
	w := 0
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		cw := runewidth.StringWidth(cluster)
		if w+cw > width && sb.Len() > 0 {
			parts = append(parts, sb.String())
			sb.Reset()
			w = 0
		}
		sb.WriteString(cluster)
		w += cw
	}
	if sb.Len() > 0 {
		parts = append(parts, sb.String())
	}
	return parts
}

// view shows the buffer on a tcell screen with scrollback navigation.
func view(scr *screen.TextScreen, dialect string) error {
	disp, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := disp.Init(); err != nil {
		return err
	}
	defer disp.Fini()

	top := scr.Buffer.FirstVisibleLine()
	for {
		render(disp, scr, top, dialect)
		switch ev := disp.PollEvent().(type) {
		case *tcell.EventResize:
			disp.Sync()
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEsc || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q':
				return nil
			case ev.Key() == tcell.KeyUp || ev.Rune() == 'k':
				top--
			case ev.Key() == tcell.KeyDown || ev.Rune() == 'j':
				top++
			case ev.Key() == tcell.KeyPgUp:
				_, h := disp.Size()
				top -= h - 1
			case ev.Key() == tcell.KeyPgDn:
				_, h := disp.Size()
				top += h - 1
			case ev.Key() == tcell.KeyHome || ev.Rune() == 'g':
				top = 0
			case ev.Key() == tcell.KeyEnd || ev.Rune() == 'G':
				top = scr.Buffer.FirstVisibleLine()
			}
			if max := scr.Buffer.LastVisibleLine(); top > max {
				top = max
			}
			if top < 0 {
				top = 0
			}
		}
	}
}

func render(disp tcell.Screen, scr *screen.TextScreen, top int, dialect string) {
	disp.Clear()
	w, h := disp.Size()
	statusRows := 1
	for row := 0; row < h-statusRows; row++ {
		y := top + row
		if y > scr.Buffer.LastVisibleLine() {
			break
		}
		x := 0
		for x < scr.Buffer.Width() && x < w {
			cell := scr.CharAt(screen.Position{X: x, Y: y})
			ch := cell.Ch
			if !cell.IsVisible() || ch == 0 {
				ch = ' '
			}
			disp.SetContent(x, row, ch, nil, cellStyle(scr, cell))
			adv := runewidth.RuneWidth(ch)
			if adv < 1 {
				adv = 1
			}
			x += adv
		}
	}
	status := fmt.Sprintf(" %s | %dx%d | line %d/%d | q quits ",
		dialect, scr.Buffer.Width(), scr.Buffer.Terminal.Height(), top+1, scr.Buffer.Height())
	statusStyle := tcell.StyleDefault.Reverse(true)
	for i, r := range status {
		if i >= w {
			break
		}
		disp.SetContent(i, h-1, r, nil, statusStyle)
	}
	disp.Show()
}

func cellStyle(scr *screen.TextScreen, cell screen.AttributedChar) tcell.Style {
	fg := scr.Buffer.Palette.Resolve(cell.Attr.Foreground, true)
	bg := scr.Buffer.Palette.Resolve(cell.Attr.Background, false)
	style := tcell.StyleDefault.
		Foreground(tcell.NewRGBColor(int32(fg.R), int32(fg.G), int32(fg.B))).
		Background(tcell.NewRGBColor(int32(bg.R), int32(bg.G), int32(bg.B)))
	if cell.Attr.Has(screen.FlagBold) {
		style = style.Bold(true)
	}
	if cell.Attr.Has(screen.FlagBlink) && scr.Buffer.IceMode == screen.IceBlink {
		style = style.Blink(true)
	}
	if cell.Attr.Has(screen.FlagUnderline) {
		style = style.Underline(true)
	}
	if cell.Attr.Has(screen.FlagItalic) {
		style = style.Italic(true)
	}
	if cell.Attr.Has(screen.FlagFaint) {
		style = style.Dim(true)
	}
	if cell.Attr.Has(screen.FlagCrossedOut) {
		style = style.StrikeThrough(true)
	}
	if cell.Attr.Has(screen.FlagConceal) {
		style = style.Foreground(tcell.NewRGBColor(int32(bg.R), int32(bg.G), int32(bg.B)))
	}
	return style
}
