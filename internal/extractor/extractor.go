// Package extractor turns uploaded statements into plain page text.
package extractor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PageSeparator delimits pages in client-extracted text.
const PageSeparator = "\n---PAGE_BREAK---\n"

var (
	ErrNoReadableText  = errors.New("no readable text could be extracted")
	ErrUnsupportedType = errors.New("unsupported file type: only .pdf and .txt statements are accepted")
)

// Supported reports whether a file name has an accepted extension.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".txt":
		return true
	}
	return false
}

// ExtractFile reads a statement from disk.
func ExtractFile(path string) ([]string, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("%w (got %q)", ErrUnsupportedType, filepath.Ext(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Extract(path, data)
}

// Extract returns the pages of an in-memory statement. The file name only
// selects the decoder.
func Extract(name string, data []byte) ([]string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return extractPDF(data)
	case ".txt":
		if !utf8.Valid(data) {
			return nil, fmt.Errorf("%w: text file is not valid UTF-8", ErrNoReadableText)
		}
		pages := SplitPages(string(data))
		if len(pages) == 0 {
			return nil, fmt.Errorf("%w: text file is empty", ErrNoReadableText)
		}
		return pages, nil
	default:
		return nil, fmt.Errorf("%w (got %q)", ErrUnsupportedType, filepath.Ext(name))
	}
}

// SplitPages splits text on PageSeparator and drops empty pages.
func SplitPages(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var pages []string
	for _, page := range strings.Split(text, PageSeparator) {
		if page = strings.TrimSpace(page); page != "" {
			pages = append(pages, page)
		}
	}
	return pages
}

// JoinPages concatenates pages into the single text the extractor consumes.
func JoinPages(pages []string) string {
	return strings.Join(pages, "\n")
}

// statementWords appear in nearly every bank statement; text containing none
// of them is most likely mis-decoded.
var statementWords = []string{
	"bank", "account", "balance", "date", "payment", "statement",
	"total", "amount", "credit", "debit", "transaction", "sort code",
	"deposit", "withdrawal", "transfer", "opening", "closing", "page", "period",
}

// isReadableText requires more than 50 characters, over 60% of them plain
// ASCII or currency glyphs, and at least one statement word.
func isReadableText(pages []string) bool {
	if totalTextLen(pages) <= 50 {
		return false
	}
	if textQuality(pages) <= 0.6 {
		return false
	}
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, w := range statementWords {
		if strings.Contains(combined, w) {
			return true
		}
	}
	return false
}

// textQuality is the share of readable characters. unicode.IsLetter is too
// broad here: identity-encoded fonts decode to accented garbage.
func textQuality(pages []string) float64 {
	total, readable := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || unicode.IsPunct(r)) {
				readable++
				continue
			}
			switch r {
			case '£', '€', '$', '+', '=', '%':
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

func totalTextLen(pages []string) int {
	n := 0
	for _, p := range pages {
		n += len(strings.TrimSpace(p))
	}
	return n
}
