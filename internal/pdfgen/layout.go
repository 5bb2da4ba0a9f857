package pdfgen

import "strings"

// TextStyle describes one block of text: face, size, leading and indent.
type TextStyle struct {
	Font    Font
	Size    float64
	Leading float64
	Indent  float64
}

var (
	styleBody    = TextStyle{Font: FontRegular, Size: 10, Leading: 14}
	styleSmall   = TextStyle{Font: FontRegular, Size: 8.5, Leading: 11}
	styleLabel   = TextStyle{Font: FontBold, Size: 10, Leading: 14}
	styleHeading = TextStyle{Font: FontBold, Size: 11, Leading: 16}
	styleTitle   = TextStyle{Font: FontBold, Size: 14, Leading: 20}
	styleCompany = TextStyle{Font: FontBold, Size: 16, Leading: 20}
)

// WrapText splits text into lines no wider than maxWidth using a greedy
// algorithm. When the next word would overflow, the current line is flushed
// and the word starts a new line. A word wider than maxWidth sits alone on
// its own line.
func WrapText(text string, maxWidth float64, measure func(string) float64) []string {
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if line != "" {
			candidate = line + " " + word
		}
		if line != "" && measure(candidate) > maxWidth {
			lines = append(lines, strings.TrimSpace(line))
			line = word
			continue
		}
		line = candidate
	}
	if line != "" {
		lines = append(lines, strings.TrimSpace(line))
	}
	return lines
}

// Layout is a top-down cursor over a Canvas that creates pages as needed.
type Layout struct {
	canvas Canvas
	y      float64
	pages  int
}

func NewLayout(canvas Canvas) *Layout {
	l := &Layout{canvas: canvas}
	l.newPage()
	return l
}

func (l *Layout) newPage() {
	l.canvas.AddPage()
	l.y = TopMargin
	l.pages++
}

// Pages returns how many pages have been created so far.
func (l *Layout) Pages() int {
	return l.pages
}

// Y returns the current baseline position.
func (l *Layout) Y() float64 {
	return l.y
}

// ensure starts a new page when the cursor has crossed the bottom margin.
func (l *Layout) ensure() {
	if l.y < BottomMargin {
		l.newPage()
	}
}

// Paragraph wraps text to the usable width and draws it line by line.
// Explicit newlines start new paragraphs.
func (l *Layout) Paragraph(text string, style TextStyle) {
	width := LineWidth - style.Indent
	measure := func(s string) float64 {
		return l.canvas.TextWidth(s, style.Font, style.Size)
	}
	for _, para := range strings.Split(text, "\n") {
		for _, line := range WrapText(para, width, measure) {
			l.ensure()
			l.canvas.DrawText(LeftMargin+style.Indent, l.y, line, style.Font, style.Size)
			l.y -= style.Leading
		}
	}
}

// LabelValue draws "label value" with a bold label. Values that do not fit
// after the label wrap underneath it.
func (l *Layout) LabelValue(label, value string) {
	l.ensure()
	labelWidth := l.canvas.TextWidth(label+" ", styleLabel.Font, styleLabel.Size)
	l.canvas.DrawText(LeftMargin, l.y, label, styleLabel.Font, styleLabel.Size)
	measure := func(s string) float64 {
		return l.canvas.TextWidth(s, styleBody.Font, styleBody.Size)
	}
	lines := WrapText(value, LineWidth-labelWidth, measure)
	if len(lines) == 0 {
		l.y -= styleBody.Leading
		return
	}
	for _, line := range lines {
		l.ensure()
		l.canvas.DrawText(LeftMargin+labelWidth, l.y, line, styleBody.Font, styleBody.Size)
		l.y -= styleBody.Leading
	}
}

// StruckRow draws prefix, then struck with a horizontal line through it,
// then suffix. The prefix wraps like a paragraph; the struck value and the
// suffix follow its last line, or start a line of their own when they do not
// fit after it.
func (l *Layout) StruckRow(prefix, struck, suffix string, style TextStyle) {
	width := LineWidth - style.Indent
	measure := func(s string) float64 {
		return l.canvas.TextWidth(s, style.Font, style.Size)
	}
	struckWidth := measure(struck)
	tailWidth := struckWidth + measure(suffix)

	lines := WrapText(prefix, width, measure)
	last := ""
	if len(lines) > 0 {
		last = lines[len(lines)-1] + " "
		lines = lines[:len(lines)-1]
		if measure(last)+tailWidth > width {
			lines = append(lines, strings.TrimSpace(last))
			last = ""
		}
	}
	for _, line := range lines {
		l.ensure()
		l.canvas.DrawText(LeftMargin+style.Indent, l.y, line, style.Font, style.Size)
		l.y -= style.Leading
	}

	l.ensure()
	x := LeftMargin + style.Indent
	if last != "" {
		l.canvas.DrawText(x, l.y, last, style.Font, style.Size)
		x += measure(last)
	}

	l.canvas.DrawText(x, l.y, struck, style.Font, style.Size)
	strikeY := l.y + style.Size*0.3
	l.canvas.DrawLine(x, strikeY, x+struckWidth, strikeY, 0.8)
	x += struckWidth

	l.canvas.DrawText(x, l.y, suffix, style.Font, style.Size)
	l.y -= style.Leading
}

// Rule draws a full-width horizontal separator.
func (l *Layout) Rule() {
	l.Space(4)
	l.ensure()
	l.canvas.DrawLine(LeftMargin, l.y, LeftMargin+LineWidth, l.y, 0.5)
	l.y -= 14
}

func (l *Layout) Space(height float64) {
	l.y -= height
}
