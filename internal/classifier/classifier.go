// Package classifier provides implementations of the risk model consumed by
// the summarizer.
package classifier

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/statement-analyzer/internal/analysis"
	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// ErrUnavailable is returned by a classifier that has no model behind it.
var ErrUnavailable = errors.New("risk classifier is not configured")

// Config selects and tunes a classifier.
type Config struct {
	ModelPath  string
	URL        string
	Timeout    time.Duration
	MaxRetries int
}

// New returns the classifier described by cfg. A local model file takes
// precedence over a remote URL; with neither, the Unavailable classifier is
// returned so that summaries degrade instead of failing.
func New(cfg Config, logger zerolog.Logger) (analysis.Classifier, error) {
	switch {
	case cfg.ModelPath != "":
		return LoadLinear(cfg.ModelPath)
	case cfg.URL != "":
		return NewHTTPClassifier(cfg.URL, cfg.Timeout, cfg.MaxRetries, logger), nil
	default:
		return Unavailable{}, nil
	}
}

// Unavailable always fails.
type Unavailable struct{}

func (Unavailable) Columns(context.Context) ([]string, error) {
	return nil, ErrUnavailable
}

func (Unavailable) Predict(context.Context, [][]float64) ([]models.Prediction, error) {
	return nil, ErrUnavailable
}
