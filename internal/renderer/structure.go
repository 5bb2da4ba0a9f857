package renderer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"DR-SIGN/internal/apperr"
)

// Section types.
const (
	SectionHeader       = "header"
	SectionInfoBlock    = "info_block"
	SectionTable        = "table"
	SectionPriceSummary = "price_summary"
	SectionRichText     = "rich_text"
	SectionList         = "list"
	SectionSpacer       = "spacer"
)

var knownSections = map[string]bool{
	SectionHeader:       true,
	SectionInfoBlock:    true,
	SectionTable:        true,
	SectionPriceSummary: true,
	SectionRichText:     true,
	SectionList:         true,
	SectionSpacer:       true,
}

// Structure is a section-based document definition stored as JSON on a
// contract template.
type Structure struct {
	Version  any       `json:"version,omitempty"`
	Metadata *Metadata `json:"metadata"`
	Sections []Section `json:"sections"`
}

type Metadata struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Author      string `json:"author,omitempty"`
}

type Section struct {
	ID           string      `json:"id,omitempty"`
	Type         string      `json:"type"`
	Title        string      `json:"title,omitempty"`
	Subtitle     string      `json:"subtitle,omitempty"`
	ShowIf       string      `json:"showIf,omitempty"`
	Layout       string      `json:"layout,omitempty"`
	Fields       []Field     `json:"fields,omitempty"`
	Columns      []Column    `json:"columns,omitempty"`
	PriceItems   []PriceItem `json:"priceItems,omitempty"`
	Content      string      `json:"content,omitempty"`
	DataSource   string      `json:"dataSource,omitempty"`
	ItemTemplate string      `json:"itemTemplate,omitempty"`
	Style        *Style      `json:"style,omitempty"`
}

type Field struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Format string `json:"format,omitempty"`
}

type Column struct {
	Header string `json:"header"`
	Field  string `json:"field"`
	Width  string `json:"width,omitempty"`
	Format string `json:"format,omitempty"`
}

type PriceItem struct {
	Label   string `json:"label"`
	Value   string `json:"value"`
	Variant string `json:"variant,omitempty"`
}

type Style struct {
	Align   string    `json:"align,omitempty"`
	Height  CSSLength `json:"height,omitempty"`
	Variant string    `json:"variant,omitempty"`
}

// CSSLength accepts either a JSON number (pixels) or a CSS length string.
type CSSLength string

func (l *CSSLength) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*l = CSSLength(strings.TrimSpace(s))
		return nil
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("invalid height %s", data)
	}
	*l = CSSLength(strconv.FormatFloat(n, 'f', -1, 64) + "px")
	return nil
}

// ParseStructure decodes and validates a template structure.
func ParseStructure(raw []byte) (*Structure, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, apperr.Validation("structure is empty")
	}
	var s Structure
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, apperr.Validationf("structure is not valid JSON: %v", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Structure) Validate() error {
	if s.Metadata == nil {
		return apperr.Validation("structure is missing metadata")
	}
	if s.Sections == nil {
		return apperr.Validation("structure is missing sections")
	}
	for i, section := range s.Sections {
		if !knownSections[section.Type] {
			return apperr.Validationf("section %d: unknown type %q", i, section.Type)
		}
		switch section.Type {
		case SectionTable:
			if section.DataSource == "" {
				return apperr.Validationf("section %d: table requires dataSource", i)
			}
			if len(section.Columns) == 0 {
				return apperr.Validationf("section %d: table requires columns", i)
			}
		case SectionList:
			if section.DataSource == "" {
				return apperr.Validationf("section %d: list requires dataSource", i)
			}
		}
	}
	return nil
}
