package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-analyzer/internal/metrics"
	"github.com/insightdelivered/statement-analyzer/internal/models"
	"github.com/insightdelivered/statement-analyzer/internal/parser"
)

// NoTransactionsMessage is the result error when a statement yields nothing.
const NoTransactionsMessage = "No transactions could be extracted from the statement"

// Options tune what a Result carries.
type Options struct {
	IncludeDebug bool
}

// Analyzer runs extraction and summarization for one statement at a time.
type Analyzer struct {
	extractor  *parser.Extractor
	summarizer *Summarizer
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// NewAnalyzer wires an Analyzer. classifier and m may be nil.
func NewAnalyzer(classifier Classifier, logger zerolog.Logger, m *metrics.Metrics) *Analyzer {
	return &Analyzer{
		extractor:  parser.NewExtractor(logger, m),
		summarizer: NewSummarizer(classifier, logger, m),
		logger:     logger.With().Str("component", "analyzer").Logger(),
		metrics:    m,
	}
}

// Analyze turns statement text into a Result. It never fails: a statement
// with nothing parseable comes back with Error set and no transactions.
func (a *Analyzer) Analyze(ctx context.Context, text string, opts Options) *models.Result {
	start := time.Now()
	id := uuid.NewString()
	log := a.logger.With().Str("analysis_id", id).Logger()

	extraction, err := a.extractor.Extract(text)
	if err != nil {
		outcome := "error"
		msg := err.Error()
		if errors.Is(err, parser.ErrNoTransactions) {
			outcome = "empty"
			msg = NoTransactionsMessage
		}
		log.Info().Str("outcome", outcome).Msg("statement produced no transactions")
		a.metrics.ObserveDocument(outcome, time.Since(start).Seconds())

		res := ErrorResult(msg)
		res.ID = id
		res.Stats = &extraction.Stats
		if opts.IncludeDebug {
			res.DebugLines = extraction.DebugLines
		}
		return res
	}

	summary, err := a.summarizer.Summarize(ctx, extraction.Transactions)
	if err != nil {
		a.metrics.ObserveDocument("error", time.Since(start).Seconds())
		res := ErrorResult(err.Error())
		res.ID = id
		return res
	}

	res := &models.Result{
		ID:           id,
		Transactions: extraction.Transactions,
		Summary:      summary,
		Stats:        &extraction.Stats,
	}
	if extraction.Account != (models.AccountInfo{}) {
		account := extraction.Account
		res.Account = &account
	}
	if opts.IncludeDebug {
		res.DebugLines = extraction.DebugLines
	}

	a.metrics.ObserveDocument("ok", time.Since(start).Seconds())
	log.Info().
		Int("transactions", len(res.Transactions)).
		Bool("fraud_analysis", summary.FraudAnalysis != nil).
		Dur("elapsed", time.Since(start)).
		Msg("statement analyzed")
	return res
}

// ErrorResult is the result shape for a statement that could not be analyzed,
// including statements whose text could not be acquired at all.
func ErrorResult(msg string) *models.Result {
	return &models.Result{
		Transactions: []models.Transaction{},
		Error:        msg,
	}
}
