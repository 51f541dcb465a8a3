package parser

import (
	"math"
	"strings"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// SkipReason says why a line produced no transaction.
type SkipReason string

const (
	SkipBlank    SkipReason = "blank"
	SkipNoDate   SkipReason = "no_date"
	SkipNoAmount SkipReason = "no_amount"
	SkipFault    SkipReason = "fault"
)

// categoryKeywords is scanned in order; the first category with a keyword
// contained in the upper-cased line wins.
var categoryKeywords = []struct {
	category models.Category
	keywords []string
}{
	{models.CategoryCashOut, []string{"ATM", "WITHDRAWAL", "WITHDRAW", "CASH OUT", "CASHOUT"}},
	{models.CategoryCashIn, []string{"DEPOSIT", "DEP", "CASH IN", "CASHIN", "CREDIT"}},
	{models.CategoryDebit, []string{"DEBIT", "POS", "PURCHASE", "PAYMENT TO", "PAID TO", "DR"}},
	{models.CategoryPayment, []string{"PAYMENT", "BILL PAY", "AUTOPAY", "PMT", "FEE", "DIRECT DEBIT"}},
	{models.CategoryTransfer, []string{"TRANSFER", "TRF", "XFER", "ACH", "IMPS", "NEFT", "UPI", "SWIFT", "CR"}},
}

// Provisional is a classified transaction line without balances.
type Provisional struct {
	Date     string
	Debit    *float64
	Credit   *float64
	Category models.Category
	Line     string

	// Anchor is the last amount-shaped token on the line, read as a running
	// balance column. Nil when that token did not normalize.
	Anchor *float64
}

// Amount is the transaction magnitude, preferring the debit side.
func (p *Provisional) Amount() float64 {
	if p.Debit != nil {
		return *p.Debit
	}
	return *p.Credit
}

// LineResult is either a provisional transaction or a skip reason.
type LineResult struct {
	Provisional *Provisional
	Skip        SkipReason
	HasDate     bool
	HasAmounts  bool
}

// ClassifyLine decides whether line is a transaction line and, if it is,
// which side and category it belongs to.
//
// Debit and credit markers are plain substring checks on the whole line, and
// when several amounts qualify for the same side the last one wins.
func ClassifyLine(line string) LineResult {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return LineResult{Skip: SkipBlank}
	}

	var res LineResult
	date := FindDate(line)
	res.HasDate = date != ""

	tokens := FindAmounts(line)
	res.HasAmounts = len(tokens) > 0

	if !res.HasDate {
		res.Skip = SkipNoDate
		return res
	}

	upper := strings.ToUpper(line)
	isDebit := strings.Contains(upper, "DR")

	var debit, credit *float64
	for _, tok := range tokens {
		v, ok := NormalizeAmount(tok)
		if !ok {
			continue
		}
		abs := math.Abs(v)
		if isDebit || strings.Contains(tok, "(") || v < 0 {
			debit = &abs
			continue
		}
		// An explicit CR marker, a positive value and an unmarked zero all
		// land on the credit side.
		credit = &abs
	}

	if debit == nil && credit == nil {
		res.Skip = SkipNoAmount
		return res
	}

	p := &Provisional{
		Date:     date,
		Debit:    debit,
		Credit:   credit,
		Category: categorize(upper, debit != nil),
		Line:     trimmed,
	}
	if v, ok := NormalizeAmount(tokens[len(tokens)-1]); ok {
		p.Anchor = &v
	}
	res.Provisional = p
	return res
}

func categorize(upperLine string, hasDebit bool) models.Category {
	for _, entry := range categoryKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(upperLine, kw) {
				return entry.category
			}
		}
	}
	if hasDebit {
		return models.CategoryDebit
	}
	return models.CategoryCashIn
}
