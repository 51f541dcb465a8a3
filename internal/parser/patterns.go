package parser

import (
	"regexp"
	"strings"
)

// Date shapes seen across statement exports. Order matters: the composite
// matcher prefers earlier alternatives at the same position.
var datePatterns = []string{
	`\d{2}\s+[A-Za-z]{3}\s+\d{2}`,  // DD MMM YY
	`\d{2}-[A-Za-z]{3}-\d{4}`,      // DD-MMM-YYYY
	`\d{2}/\d{2}/\d{4}`,            // DD/MM/YYYY
	`\d{2}-\d{2}-\d{4}`,            // DD-MM-YYYY
	`\d{2}\.\d{2}\.\d{4}`,          // DD.MM.YYYY
	`[A-Za-z]{3}\s+\d{2},\s*\d{4}`, // MMM DD, YYYY
	`\d{1,2}/\d{1,2}/\d{2,4}`,      // D/M/YY
	`\d{1,2}-\d{1,2}-\d{2,4}`,      // D-M-YY
}

// Amount shapes: plain, currency prefixed, parenthesized negatives and
// European grouping.
var amountPatterns = []string{
	`\(?\$?\s*[\d,]+\.?\d*\)?`,
	`\(?\s*[\d,]+\.?\d*\)?`,
	`\(?\s*[\d.]+,?\d*\)?`,
	`\(?\$\s*[\d,]+\.?\d*\)?`,
	`\(?€\s*[\d.]+,?\d*\)?`,
	`\(?£\s*[\d,]+\.?\d*\)?`,
	`\(?\d+(?:[.,]\d{2})?\)?`,
}

var (
	dateMatcher   = compileUnion(datePatterns)
	amountMatcher = compileUnion(amountPatterns)
)

func compileUnion(patterns []string) *regexp.Regexp {
	alts := make([]string, len(patterns))
	for i, p := range patterns {
		alts[i] = "(?:" + p + ")"
	}
	return regexp.MustCompile(strings.Join(alts, "|"))
}

// FindDate returns the leftmost date-shaped text in line, or "".
func FindDate(line string) string {
	return dateMatcher.FindString(line)
}

// FindAmounts returns every amount-shaped token in line, left to right.
// Date-shaped spans are blanked first so their digits are not read as
// amounts.
func FindAmounts(line string) []string {
	return amountMatcher.FindAllString(maskDates(line), -1)
}

func maskDates(line string) string {
	spans := dateMatcher.FindAllStringIndex(line, -1)
	if len(spans) == 0 {
		return line
	}
	b := []byte(line)
	for _, span := range spans {
		for i := span[0]; i < span[1]; i++ {
			b[i] = ' '
		}
	}
	return string(b)
}
