package contractdata

import (
	"strings"
	"time"
	_ "time/tzdata"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	LocaleFR = "fr"
	LocaleEN = "en"
)

// Display layouts shared by every renderer.
const (
	DateLayout     = "02/01/2006"
	DateTimeLayout = "02/01/2006 15:04"
)

var spaceReplacer = strings.NewReplacer("\u202f", " ", "\u00a0", " ")

// FormatAmount renders v with exactly two decimals and the locale's grouping
// and decimal separators ("1 250,00" for fr, "1,250.00" for en). Grouping
// spaces are plain ASCII spaces so the value survives WinAnsi PDF fonts.
func FormatAmount(v float64, locale string) string {
	p := message.NewPrinter(localeTag(locale))
	return spaceReplacer.Replace(p.Sprintf("%.2f", v))
}

// FormatCurrency is FormatAmount followed by the euro sign.
func FormatCurrency(v float64, locale string) string {
	return FormatAmount(v, locale) + " €"
}

func localeTag(locale string) language.Tag {
	switch strings.ToLower(locale) {
	case LocaleEN, "en-us", "en-gb":
		return language.English
	default:
		return language.French
	}
}

// LoadLocation resolves a display timezone, falling back to UTC.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FormatDate renders t in loc as DD/MM/YYYY; the zero time renders empty.
func FormatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(orUTC(loc)).Format(DateLayout)
}

// FormatDateTime renders t in loc as DD/MM/YYYY HH:mm; the zero time renders empty.
func FormatDateTime(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(orUTC(loc)).Format(DateTimeLayout)
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
