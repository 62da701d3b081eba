package markdown

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	numberPattern   = regexp.MustCompile(`\d+(?:\.\d+)?|\.\d+`)
	currencySymbols = "$€£¥ "
)

// ParseCurrency extracts the first decimal number from a price cell such as
// "$2.50", "$1,000 / month" or "$0.006 / minute". Empty cells, "-", "n/a" and
// strings without a numeral report ok=false; they are absent, not zero.
func ParseCurrency(raw string) (value float64, ok bool) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" || strings.EqualFold(s, "n/a") {
		return 0, false
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimLeft(s, currencySymbols)
	m := numberPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// CurrencyPtr is ParseCurrency returning nil for absent prices.
func CurrencyPtr(raw string) *float64 {
	v, ok := ParseCurrency(raw)
	if !ok {
		return nil
	}
	return &v
}

// FormatCurrency renders v the way vendor docs do: a dollar sign and
// thousands separators, keeping every significant decimal.
func FormatCurrency(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	intPart, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	b.WriteByte('$')
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

var contextPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*([km])\b`)

// ParseTokenCount reads context-window cells like "128k", "1M" or "200,000".
func ParseTokenCount(raw string) *int {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if m := contextPattern.FindStringSubmatch(s); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return nil
		}
		mult := 1_000.0
		if strings.EqualFold(m[2], "m") {
			mult = 1_000_000
		}
		n := int(math.Round(v * mult))
		return &n
	}
	v, ok := ParseCurrency(s)
	if !ok {
		return nil
	}
	n := int(v)
	return &n
}
