package renderer

import (
	"html"
	"strings"
	"time"
)

const defaultSpacerHeight = "24px"

const printStylesheet = `@page { size: A4; margin: 18mm 16mm; }
* { box-sizing: border-box; }
body { font-family: "Helvetica Neue", Helvetica, Arial, sans-serif; font-size: 11pt; color: #1f2933; margin: 0; }
.document { width: 100%; }
.section { margin-bottom: 14px; page-break-inside: avoid; }
.section-title { font-size: 12pt; font-weight: 700; text-transform: uppercase; border-bottom: 1px solid #cbd2d9; padding-bottom: 4px; margin: 0 0 8px; }
.header { margin-bottom: 20px; }
.header h1 { font-size: 18pt; margin: 0; }
.header p { font-size: 11pt; color: #52606d; margin: 4px 0 0; }
.align-left { text-align: left; } .align-center { text-align: center; } .align-right { text-align: right; }
.info-grid { display: grid; grid-template-columns: 1fr; gap: 4px 24px; }
.info-grid.cols-2 { grid-template-columns: 1fr 1fr; }
.info-row .label { font-weight: 600; color: #52606d; margin-right: 6px; }
table.data-table { width: 100%; border-collapse: collapse; }
table.data-table th, table.data-table td { border: 1px solid #cbd2d9; padding: 5px 7px; text-align: left; }
table.data-table th { background: #f5f7fa; font-weight: 600; }
.price-grid { display: flex; flex-wrap: wrap; gap: 10px; }
.price-card { flex: 1 1 140px; border: 1px solid #cbd2d9; border-radius: 6px; padding: 8px 10px; }
.price-card .price-label { font-size: 9pt; color: #52606d; }
.price-card .price-value { font-size: 13pt; font-weight: 700; }
.price-card--blue { border-color: #2680c2; background: #e6f6ff; }
.price-card--green { border-color: #3ebd93; background: #effcf6; }
.price-card--red { border-color: #e12d39; background: #ffeeee; }
.rich-text p { margin: 0 0 6px; text-align: justify; }
ul.item-list { margin: 0; padding-left: 18px; }`

// StructuredRenderer turns a Structure into a printable HTML document. It is
// stateless apart from the display timezone used by date formats.
type StructuredRenderer struct {
	loc *time.Location
}

func NewStructuredRenderer(loc *time.Location) *StructuredRenderer {
	if loc == nil {
		loc = time.UTC
	}
	return &StructuredRenderer{loc: loc}
}

// Render produces the full HTML document. Output depends only on its inputs.
func (r *StructuredRenderer) Render(s *Structure, data map[string]any) string {
	var b strings.Builder
	title := "Contrat"
	if s != nil && s.Metadata != nil && s.Metadata.Name != "" {
		title = s.Metadata.Name
	}

	b.WriteString("<!DOCTYPE html>\n<html lang=\"fr\">\n<head>\n<meta charset=\"UTF-8\">\n<title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>\n<style>\n")
	b.WriteString(printStylesheet)
	b.WriteString("\n</style>\n</head>\n<body>\n<div class=\"document\">\n")
	if s != nil {
		for _, section := range s.Sections {
			if !EvaluateCondition(section.ShowIf, data) {
				continue
			}
			b.WriteString(r.RenderSection(section, data))
		}
	}
	b.WriteString("</div>\n</body>\n</html>\n")
	return b.String()
}

// RenderSection renders one section regardless of its showIf.
func (r *StructuredRenderer) RenderSection(section Section, data map[string]any) string {
	switch section.Type {
	case SectionHeader:
		return r.renderHeader(section, data)
	case SectionInfoBlock:
		return r.renderInfoBlock(section, data)
	case SectionTable:
		return r.renderTable(section, data)
	case SectionPriceSummary:
		return r.renderPriceSummary(section, data)
	case SectionRichText:
		return r.renderRichText(section, data)
	case SectionList:
		return r.renderList(section, data)
	case SectionSpacer:
		return r.renderSpacer(section)
	default:
		return ""
	}
}

func (r *StructuredRenderer) renderHeader(section Section, data map[string]any) string {
	align := "center"
	if section.Style != nil && section.Style.Align != "" {
		align = section.Style.Align
	}
	var b strings.Builder
	b.WriteString(`<header class="section header align-` + html.EscapeString(align) + `">`)
	b.WriteString("<h1>" + Substitute(section.Title, data, false) + "</h1>")
	if section.Subtitle != "" {
		b.WriteString("<p>" + Substitute(section.Subtitle, data, false) + "</p>")
	}
	b.WriteString("</header>\n")
	return b.String()
}

func (r *StructuredRenderer) renderInfoBlock(section Section, data map[string]any) string {
	grid := "info-grid"
	if isTwoColumn(section.Layout) {
		grid += " cols-2"
	}
	var b strings.Builder
	b.WriteString(`<section class="section info-block">`)
	writeTitle(&b, section.Title, data)
	b.WriteString(`<div class="` + grid + `">`)
	for _, field := range section.Fields {
		b.WriteString(`<div class="info-row"><span class="label">`)
		b.WriteString(html.EscapeString(field.Label))
		b.WriteString(`</span><span class="value">`)
		b.WriteString(html.EscapeString(r.fieldValue(field.Value, field.Format, data)))
		b.WriteString("</span></div>")
	}
	b.WriteString("</div></section>\n")
	return b.String()
}

func (r *StructuredRenderer) renderTable(section Section, data map[string]any) string {
	items := dataSourceItems(section.DataSource, data)
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<section class="section table-block">`)
	writeTitle(&b, section.Title, data)
	b.WriteString(`<table class="data-table"><thead><tr>`)
	for _, col := range section.Columns {
		if col.Width != "" {
			b.WriteString(`<th style="width: ` + html.EscapeString(col.Width) + `">`)
		} else {
			b.WriteString("<th>")
		}
		b.WriteString(html.EscapeString(col.Header) + "</th>")
	}
	b.WriteString("</tr></thead><tbody>")
	for _, item := range items {
		scope := itemScope(item)
		b.WriteString("<tr>")
		for _, col := range section.Columns {
			v, ok := Resolve(col.Field, scope)
			cell := ""
			if ok && isScalar(v) {
				cell = FormatValue(v, col.Format, r.loc)
			}
			b.WriteString("<td>" + html.EscapeString(cell) + "</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</tbody></table></section>\n")
	return b.String()
}

func (r *StructuredRenderer) renderPriceSummary(section Section, data map[string]any) string {
	var b strings.Builder
	b.WriteString(`<section class="section price-summary">`)
	writeTitle(&b, section.Title, data)
	b.WriteString(`<div class="price-grid">`)
	for _, item := range section.PriceItems {
		class := "price-card"
		if item.Variant != "" {
			class += " price-card--" + html.EscapeString(item.Variant)
		}
		amount := "-"
		if v, ok := Resolve(item.Value, data); ok && isScalar(v) && Stringify(v) != "" {
			amount = FormatValue(v, FormatCurrency, r.loc)
		}
		b.WriteString(`<div class="` + class + `"><div class="price-label">`)
		b.WriteString(html.EscapeString(item.Label))
		b.WriteString(`</div><div class="price-value">`)
		b.WriteString(html.EscapeString(amount))
		b.WriteString("</div></div>")
	}
	b.WriteString("</div></section>\n")
	return b.String()
}

func (r *StructuredRenderer) renderRichText(section Section, data map[string]any) string {
	var b strings.Builder
	b.WriteString(`<section class="section rich-text">`)
	writeTitle(&b, section.Title, data)
	b.WriteString(Substitute(section.Content, data, false))
	b.WriteString("</section>\n")
	return b.String()
}

func (r *StructuredRenderer) renderList(section Section, data map[string]any) string {
	items := dataSourceItems(section.DataSource, data)
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(`<section class="section list-block">`)
	writeTitle(&b, section.Title, data)
	b.WriteString(`<ul class="item-list">`)
	for _, item := range items {
		text := ""
		if section.ItemTemplate != "" {
			text = Substitute(section.ItemTemplate, itemScope(item), true)
		} else if isScalar(item) {
			text = html.EscapeString(Stringify(item))
		}
		b.WriteString("<li>" + text + "</li>")
	}
	b.WriteString("</ul></section>\n")
	return b.String()
}

func (r *StructuredRenderer) renderSpacer(section Section) string {
	height := defaultSpacerHeight
	if section.Style != nil && section.Style.Height != "" {
		height = string(section.Style.Height)
	}
	return `<div class="spacer" style="height: ` + html.EscapeString(height) + `"></div>` + "\n"
}

func (r *StructuredRenderer) fieldValue(expr, format string, data map[string]any) string {
	v, ok := Resolve(expr, data)
	if !ok || !isScalar(v) {
		return ""
	}
	if format == FormatCurrency && Stringify(v) == "" {
		return ""
	}
	return FormatValue(v, format, r.loc)
}

func writeTitle(b *strings.Builder, title string, data map[string]any) {
	if title == "" {
		return
	}
	b.WriteString(`<h2 class="section-title">` + html.EscapeString(Substitute(title, data, false)) + "</h2>")
}

func dataSourceItems(path string, data map[string]any) []any {
	v, ok := ResolvePath(path, data)
	if !ok {
		return nil
	}
	items, _ := asSlice(v)
	return items
}

// itemScope exposes a data-source element to column and item templates.
// Scalar elements are reachable as "value".
func itemScope(item any) map[string]any {
	if m, ok := asMap(item); ok {
		return m
	}
	return map[string]any{"value": item}
}

func isTwoColumn(layout string) bool {
	switch strings.ToLower(strings.TrimSpace(layout)) {
	case "2", "two-column", "two-columns", "2-columns", "grid-2", "double":
		return true
	}
	return false
}
