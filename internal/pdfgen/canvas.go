// Package pdfgen lays out a contract as a paginated A4 PDF without going
// through an HTML template.
package pdfgen

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
)

// Page geometry in points. Y grows upwards from the bottom edge.
const (
	PageWidth    = 595.0
	PageHeight   = 842.0
	LeftMargin   = 60.0
	TopMargin    = 780.0
	LineWidth    = 475.0
	BottomMargin = 60.0
)

type Font int

const (
	FontRegular Font = iota
	FontBold
)

// Canvas is the drawing surface the layout engine writes to. Coordinates
// are in points with the origin at the bottom-left corner of the page.
type Canvas interface {
	AddPage()
	TextWidth(text string, font Font, size float64) float64
	DrawText(x, y float64, text string, font Font, size float64)
	DrawLine(x1, y1, x2, y2, width float64)
	Bytes() ([]byte, error)
}

// fpdfCanvas renders onto go-pdf/fpdf with the core Helvetica faces. Text is
// translated to cp1252 so accented French text and the euro sign render.
type fpdfCanvas struct {
	pdf       *fpdf.Fpdf
	translate func(string) string
}

func NewFPDFCanvas() Canvas {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: PageWidth, Ht: PageHeight},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("DR-SIGN", true)
	return &fpdfCanvas{
		pdf:       pdf,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func (c *fpdfCanvas) AddPage() {
	c.pdf.AddPage()
}

func (c *fpdfCanvas) setFont(font Font, size float64) {
	style := ""
	if font == FontBold {
		style = "B"
	}
	c.pdf.SetFont("Helvetica", style, size)
}

func (c *fpdfCanvas) TextWidth(text string, font Font, size float64) float64 {
	c.setFont(font, size)
	return c.pdf.GetStringWidth(c.translate(text))
}

func (c *fpdfCanvas) DrawText(x, y float64, text string, font Font, size float64) {
	c.setFont(font, size)
	c.pdf.Text(x, PageHeight-y, c.translate(text))
}

func (c *fpdfCanvas) DrawLine(x1, y1, x2, y2, width float64) {
	c.pdf.SetLineWidth(width)
	c.pdf.Line(x1, PageHeight-y1, x2, PageHeight-y2)
}

func (c *fpdfCanvas) Bytes() ([]byte, error) {
	if err := c.pdf.Error(); err != nil {
		return nil, fmt.Errorf("pdf layout: %w", err)
	}
	var buf bytes.Buffer
	if err := c.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}
