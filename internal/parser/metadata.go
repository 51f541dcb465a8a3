package parser

import (
	"regexp"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

var (
	// UK account numbers are 8 digits.
	accountNumberPattern = regexp.MustCompile(`\b(\d{8})\b`)
	// UK sort codes look like XX-XX-XX.
	sortCodePattern = regexp.MustCompile(`\b(\d{2}-\d{2}-\d{2})\b`)
)

// FindAccountInfo pulls the first account number and sort code out of the
// statement text. Missing values stay empty.
func FindAccountInfo(text string) models.AccountInfo {
	return models.AccountInfo{
		Number:   accountNumberPattern.FindString(text),
		SortCode: sortCodePattern.FindString(text),
	}
}
