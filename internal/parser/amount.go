package parser

import (
	"strings"

	"github.com/shopspring/decimal"
)

var currencyGlyphs = strings.NewReplacer(
	"£", "",
	"$", "",
	"€", "",
)

// NormalizeAmount converts an amount-shaped token such as "$1,234.56",
// "(500)" or "1.234,56" into a signed value. The boolean is false when the
// token does not hold a number; callers skip the token and carry on.
func NormalizeAmount(token string) (float64, bool) {
	s := currencyGlyphs.Replace(token)
	s = strings.Join(strings.Fields(s), "")

	// Parenthesized amounts are negative.
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + s[1:len(s)-1]
	}

	s = normalizeSeparators(s)
	if s == "" || s == "-" {
		return 0, false
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// normalizeSeparators rewrites s so that "." is the only decimal separator.
// When both "," and "." appear, whichever comes last is the decimal point and
// the other is a thousands separator. A lone "," is a decimal point.
func normalizeSeparators(s string) string {
	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")

	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.ReplaceAll(s, ",", ".")
		}
		return strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		return strings.ReplaceAll(s, ",", ".")
	}
	return s
}
