package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/metrics"
	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// FraudThreshold is the class-1 probability above which a transaction is
// reported as fraudulent.
const FraudThreshold = 0.5

var (
	// ErrEmptyRecords is returned when Summarize is given no transactions.
	ErrEmptyRecords = errors.New("no transactions to summarize")
	// ErrMissingManifest is returned when the classifier has no column manifest.
	ErrMissingManifest = errors.New("classifier column manifest is missing")
	// ErrShapeMismatch is returned when predictions do not line up with rows.
	ErrShapeMismatch = errors.New("classifier output does not match input shape")
)

// Summarizer computes aggregate statistics and, when a classifier is usable,
// a risk sub-summary.
type Summarizer struct {
	classifier Classifier
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// NewSummarizer creates a Summarizer. classifier and m may be nil.
func NewSummarizer(classifier Classifier, logger zerolog.Logger, m *metrics.Metrics) *Summarizer {
	return &Summarizer{
		classifier: classifier,
		logger:     logger.With().Str("component", "summarizer").Logger(),
		metrics:    m,
	}
}

// Summarize aggregates txns, which must be in source order. When risk scoring
// succeeds each element of txns gets its IsFraudulent and FraudProbability
// fields set in place. A classifier failure never fails the summary; it only
// leaves FraudAnalysis nil.
func (s *Summarizer) Summarize(ctx context.Context, txns []models.Transaction) (*models.Summary, error) {
	if len(txns) == 0 {
		return nil, ErrEmptyRecords
	}

	summary := aggregate(txns)

	if s.classifier == nil {
		return summary, nil
	}

	start := time.Now()
	preds, err := s.score(ctx, txns)
	if err != nil {
		s.metrics.ObserveClassifier("failed", time.Since(start).Seconds())
		s.logger.Warn().Err(err).Int("transactions", len(txns)).Msg("risk scoring unavailable, returning summary without fraud analysis")
		return summary, nil
	}
	s.metrics.ObserveClassifier("ok", time.Since(start).Seconds())

	summary.FraudAnalysis = applyPredictions(txns, preds)
	return summary, nil
}

func aggregate(txns []models.Transaction) *models.Summary {
	summary := &models.Summary{
		TotalTransactions:    len(txns),
		MaxTransactionAmount: txns[0].Amount,
		MinTransactionAmount: txns[0].Amount,
		DateRange:            fmt.Sprintf("%s to %s", txns[0].Date, txns[len(txns)-1].Date),
	}

	total := decimal.Zero
	debits := decimal.Zero
	credits := decimal.Zero

	for _, t := range txns {
		switch t.Category {
		case models.CategoryCashOut:
			summary.TotalCashOut++
		case models.CategoryCashIn:
			summary.TotalCashIn++
		case models.CategoryTransfer:
			summary.TotalTransfers++
		case models.CategoryPayment:
			summary.TotalPayments++
		case models.CategoryDebit:
			summary.TotalDebits++
		}
		if t.IsLarge {
			summary.LargeTransactions++
		}

		amount := decimal.NewFromFloat(t.Amount)
		total = total.Add(amount)
		switch {
		case t.BalanceDifference < 0:
			debits = debits.Add(amount)
		case t.BalanceDifference > 0:
			credits = credits.Add(amount)
		}

		summary.MaxTransactionAmount = math.Max(summary.MaxTransactionAmount, t.Amount)
		summary.MinTransactionAmount = math.Min(summary.MinTransactionAmount, t.Amount)
	}

	summary.AvgTransactionAmount = total.Div(decimal.NewFromInt(int64(len(txns)))).Round(2).InexactFloat64()
	summary.TotalDebitAmount = debits.Round(2).InexactFloat64()
	summary.TotalCreditAmount = credits.Round(2).InexactFloat64()
	return summary
}

// score runs the batched classifier call and validates its output. A panic
// inside the classifier is reported as an error.
func (s *Summarizer) score(ctx context.Context, txns []models.Transaction) (preds []models.Prediction, err error) {
	defer func() {
		if r := recover(); r != nil {
			preds = nil
			err = fmt.Errorf("classifier panicked: %v", r)
		}
	}()

	columns, err := s.classifier.Columns(ctx)
	if err != nil {
		return nil, fmt.Errorf("load column manifest: %w", err)
	}
	if len(columns) == 0 {
		return nil, ErrMissingManifest
	}

	rows := Reindex(txns, columns)
	preds, err = s.classifier.Predict(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if len(preds) != len(rows) {
		return nil, fmt.Errorf("%w: %d predictions for %d rows", ErrShapeMismatch, len(preds), len(rows))
	}
	for i, p := range preds {
		prob := p.Probabilities[1]
		if math.IsNaN(prob) || prob < 0 || prob > 1 {
			return nil, fmt.Errorf("%w: row %d has probability %v", ErrShapeMismatch, i, prob)
		}
	}
	return preds, nil
}

func applyPredictions(txns []models.Transaction, preds []models.Prediction) *models.FraudAnalysis {
	var flagged int
	probSum := decimal.Zero

	for i := range txns {
		prob := preds[i].Probabilities[1]
		fraudulent := prob > FraudThreshold
		if fraudulent {
			flagged++
		}
		percent := round2(prob * 100)

		txns[i].IsFraudulent = &fraudulent
		txns[i].FraudProbability = &percent
		probSum = probSum.Add(decimal.NewFromFloat(prob))
	}

	n := decimal.NewFromInt(int64(len(txns)))
	hundred := decimal.NewFromInt(100)
	return &models.FraudAnalysis{
		TotalFraudulent:         flagged,
		FraudPercentage:         decimal.NewFromInt(int64(flagged)).Div(n).Mul(hundred).Round(2).InexactFloat64(),
		AverageFraudProbability: probSum.Div(n).Mul(hundred).Round(2).InexactFloat64(),
	}
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
