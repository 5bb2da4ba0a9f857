package renderer

import (
	"regexp"
	"strings"
	"time"

	"DR-SIGN/internal/contractdata"
)

// Value formats understood by info_block fields and table columns.
const (
	FormatPlain    = "plain"
	FormatCurrency = "currency"
	FormatDate     = "date"
	FormatDateTime = "datetime"
)

var (
	displayDateRE     = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	displayDateTimeRE = regexp.MustCompile(`^\d{2}/\d{2}/\d{4} \d{2}:\d{2}$`)
)

// Layouts tried, in order, when reading ISO-like input.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// FormatValue applies a field format to a resolved value. Unknown formats
// behave as plain.
func FormatValue(v any, format string, loc *time.Location) string {
	s := Stringify(v)
	switch format {
	case FormatCurrency:
		// The data preparer already localised the number.
		return s + " €"
	case FormatDate:
		return FormatDateString(s, loc)
	case FormatDateTime:
		return FormatDateTimeString(s, loc)
	default:
		return s
	}
}

// FormatDateString converts an ISO-like string to DD/MM/YYYY in loc. Values
// already in display form and unparsable values pass through unchanged.
func FormatDateString(s string, loc *time.Location) string {
	if s == "" || displayDateRE.MatchString(s) || displayDateTimeRE.MatchString(s) {
		return s
	}
	t, ok := parseISO(s, loc)
	if !ok {
		return s
	}
	return contractdata.FormatDate(t, loc)
}

// FormatDateTimeString converts an ISO-like string to DD/MM/YYYY HH:mm in loc
// with the same passthrough rules as FormatDateString.
func FormatDateTimeString(s string, loc *time.Location) string {
	if s == "" || displayDateRE.MatchString(s) || displayDateTimeRE.MatchString(s) {
		return s
	}
	t, ok := parseISO(s, loc)
	if !ok {
		return s
	}
	return contractdata.FormatDateTime(t, loc)
}

func parseISO(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		// Layouts without a zone are wall-clock times in the display zone.
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
