// Package locale renders amounts and dates the way the viewer's locale
// expects them.
package locale

import (
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// localeFormat pairs a supported tag with its short date convention
type localeFormat struct {
	tag        language.Tag
	dateLayout string
}

var formats = []localeFormat{
	{tag: language.AmericanEnglish, dateLayout: "1/2/2006"},
	{tag: language.BritishEnglish, dateLayout: "02/01/2006"},
	{tag: language.MustParse("en-SA"), dateLayout: "02/01/2006"},
	{tag: language.Arabic, dateLayout: "02/01/2006"},
	{tag: language.German, dateLayout: "2.1.2006"},
	{tag: language.French, dateLayout: "02/01/2006"},
}

var matcher = language.NewMatcher(supportedTags())

func supportedTags() []language.Tag {
	tags := make([]language.Tag, len(formats))
	for i, f := range formats {
		tags[i] = f.tag
	}
	return tags
}

var sar = currency.MustParseISO("SAR")

type Formatter struct {
	tag        language.Tag
	dateLayout string
	printer    *message.Printer
}

// New returns a formatter for the closest supported match of tag
func New(tag language.Tag) *Formatter {
	_, idx, _ := matcher.Match(tag)
	return at(idx)
}

func at(idx int) *Formatter {
	return &Formatter{
		tag:        formats[idx].tag,
		dateLayout: formats[idx].dateLayout,
		printer:    message.NewPrinter(formats[idx].tag),
	}
}

// Parse builds a formatter from a BCP 47 tag, falling back to en-US.
func Parse(s string) *Formatter {
	tag, err := language.Parse(s)
	if err != nil {
		tag = language.AmericanEnglish
	}
	return New(tag)
}

// FromAcceptLanguage picks the viewer locale from an Accept-Language header
func FromAcceptLanguage(header, fallback string) *Formatter {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return Parse(fallback)
	}
	_, idx, _ := matcher.Match(tags...)
	return at(idx)
}

func (f *Formatter) Tag() language.Tag {
	return f.tag
}

// Riyal formats amount as Saudi Riyal with the locale's grouping and
// decimal separators.
func (f *Formatter) Riyal(amount float64) string {
	scale, _ := currency.Standard.Rounding(sar)
	return f.printer.Sprintf("%s %v", sar, number.Decimal(amount, number.Scale(scale)))
}

func (f *Formatter) Date(t time.Time) string {
	return t.Format(f.dateLayout)
}
