package term

import (
	"image"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Paragraph is a block of text. Lines are split on '\n'; with Wrap set, lines
// longer than the area are continued on the next row, otherwise they are cut.
type Paragraph struct {
	Text  string
	Style tcell.Style
	Wrap  bool
}

// NewParagraph returns a non-wrapping paragraph with the default style.
func NewParagraph(text string) Paragraph {
	return Paragraph{Text: text, Style: tcell.StyleDefault}
}

// Render implements Widget.
func (p Paragraph) Render(area image.Rectangle, buf *Buffer) {
	buf.SetStyle(area, p.Style)
	y := area.Min.Y
	for _, line := range strings.Split(p.Text, "\n") {
		for _, row := range p.rows(line, area.Dx()) {
			if y >= area.Max.Y {
				return
			}
			buf.putString(area.Min.X, y, area.Max.X, row, p.Style)
			y++
		}
	}
}

// rows splits line into the rows it occupies in an area width columns wide.
func (p Paragraph) rows(line string, width int) []string {
	if !p.Wrap || width <= 0 || runewidth.StringWidth(line) <= width {
		return []string{line}
	}
	var out []string
	var row strings.Builder
	used := 0
	for _, r := range line {
		w := runewidth.RuneWidth(r)
		if used+w > width && used > 0 {
			out = append(out, row.String())
			row.Reset()
			used = 0
		}
		row.WriteRune(r)
		used += w
	}
	return append(out, row.String())
}
