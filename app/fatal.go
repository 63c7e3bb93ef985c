package app

import (
	"image/color"
	"strings"
	"unicode/utf8"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

var fatalFont = &proggy.TinySZ8pt7b

var (
	fatalBG = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	fatalFG = color.RGBA{A: 255}
)

// fatal reports err on the log and, once a panel is up, on screen.
func (r *runner) fatal(err error) {
	msg := "panic: " + err.Error()
	r.log(msg)

	p := r.panel
	if p == nil {
		return
	}
	w, h := p.Size()
	if w <= 0 || h <= 0 {
		return
	}

	lineHeight := int16(fatalFont.YAdvance)
	if lineHeight <= 0 {
		lineHeight = 10
	}
	_, adv := tinyfont.LineWidth(fatalFont, "0")
	cols := int16(1)
	if adv > 0 && int16(adv) < w {
		cols = w / int16(adv)
	}

	p.FillScreen(fatalBG)
	y := lineHeight
	line := msg
	for len(line) > 0 && y <= h {
		chunk, rest := takeRunes(line, cols)
		tinyfont.WriteLine(p, fatalFont, 0, y, chunk, fatalFG)
		y += lineHeight
		line = strings.TrimLeft(rest, " ")
	}
	_ = p.Display()
}

func takeRunes(s string, n int16) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	var i int
	for count := int16(0); i < len(s) && count < n; count++ {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return s[:i], s[i:]
}
