package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-analyzer/internal/metrics"
	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// ErrNoTransactions is returned when no line of a document yields a
// transaction. It is an expected outcome, not a fault.
var ErrNoTransactions = errors.New("no transactions could be extracted")

// Extractor turns statement text into an ordered transaction ledger.
// One Extract call owns its balance state; an Extractor holds no per-document
// state and may be shared.
type Extractor struct {
	logger   zerolog.Logger
	metrics  *metrics.Metrics
	classify func(string) LineResult
}

// NewExtractor creates an Extractor. m may be nil.
func NewExtractor(logger zerolog.Logger, m *metrics.Metrics) *Extractor {
	return &Extractor{
		logger:   logger.With().Str("component", "extractor").Logger(),
		metrics:  m,
		classify: ClassifyLine,
	}
}

// Extract processes every line of text in order. Lines that cannot be read
// are skipped and recorded in the debug trace. When nothing is extracted the
// returned error wraps ErrNoTransactions and the extraction still carries the
// counters and trace.
func (e *Extractor) Extract(text string) (*models.Extraction, error) {
	out := &models.Extraction{Transactions: []models.Transaction{}}

	if strings.TrimSpace(text) == "" {
		return out, fmt.Errorf("%w: input text is empty", ErrNoTransactions)
	}

	out.Account = FindAccountInfo(text)

	var state BalanceState
	for i, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		out.Stats.TotalLines++

		res, fault := e.classifySafely(line)
		if res.HasDate {
			out.Stats.LinesWithDates++
		}
		if res.HasAmounts {
			out.Stats.LinesWithAmounts++
		}

		debug := models.DebugLine{
			LineNum: i + 1,
			Text:    strings.TrimSpace(line),
			HasDate: res.HasDate,
		}

		if res.Provisional == nil {
			debug.Result = "skipped"
			debug.Reason = string(res.Skip)
			if fault != nil {
				out.Stats.Faults++
				debug.Reason = fmt.Sprintf("%s: %v", res.Skip, fault)
				e.logger.Warn().Err(fault).Int("line", i+1).Str("kind", string(res.Skip)).Msg("line processing failed, skipping")
			} else if res.Skip != SkipBlank {
				e.logger.Debug().Int("line", i+1).Str("reason", string(res.Skip)).Msg("line skipped")
			}
			if res.Skip != SkipBlank {
				out.DebugLines = append(out.DebugLines, debug)
			}
			e.metrics.ObserveLine(string(res.Skip))
			continue
		}

		var oldBalance, newBalance float64
		state, oldBalance, newBalance = state.Step(res.Provisional)
		out.Transactions = append(out.Transactions, buildTransaction(res.Provisional, oldBalance, newBalance))

		debug.Result = "parsed"
		out.DebugLines = append(out.DebugLines, debug)
		e.metrics.ObserveLine("parsed")
	}

	out.Stats.Extracted = len(out.Transactions)
	e.metrics.ObserveExtracted(out.Stats.Extracted)

	e.logger.Info().
		Int("total_lines", out.Stats.TotalLines).
		Int("lines_with_dates", out.Stats.LinesWithDates).
		Int("lines_with_amounts", out.Stats.LinesWithAmounts).
		Int("faults", out.Stats.Faults).
		Int("extracted", out.Stats.Extracted).
		Msg("extraction finished")

	if out.Stats.Extracted == 0 {
		return out, ErrNoTransactions
	}
	return out, nil
}

// classifySafely isolates a fault inside one line's processing so the rest
// of the document is still read.
func (e *Extractor) classifySafely(line string) (res LineResult, fault error) {
	defer func() {
		if r := recover(); r != nil {
			res = LineResult{Skip: SkipFault}
			fault = fmt.Errorf("panic: %v", r)
		}
	}()
	return e.classify(line), nil
}

func buildTransaction(p *Provisional, oldBalance, newBalance float64) models.Transaction {
	amount := p.Amount()
	return models.Transaction{
		Date:              p.Date,
		Description:       p.Line,
		Amount:            amount,
		OldBalance:        oldBalance,
		NewBalance:        newBalance,
		Category:          p.Category,
		IsLarge:           models.IsLargeAmount(amount),
		BalanceDifference: newBalance - oldBalance,
	}
}
