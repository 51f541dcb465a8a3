package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// Linear is a logistic regression model read from a JSON file:
//
//	{"columns": ["amount", ...], "weights": {"amount": 0.0002}, "intercept": -4.1}
//
// Weights for columns not in the manifest are ignored; manifest columns
// without a weight contribute nothing.
type Linear struct {
	columns   []string
	weights   []float64
	intercept float64
}

type linearFile struct {
	Columns   []string           `json:"columns"`
	Weights   map[string]float64 `json:"weights"`
	Intercept float64            `json:"intercept"`
}

// LoadLinear reads a Linear model from path.
func LoadLinear(path string) (*Linear, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model %q: %w", path, err)
	}

	var f linearFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode model %q: %w", path, err)
	}
	return NewLinear(f.Columns, f.Weights, f.Intercept), nil
}

// NewLinear builds a Linear model from its parts.
func NewLinear(columns []string, weights map[string]float64, intercept float64) *Linear {
	w := make([]float64, len(columns))
	for i, col := range columns {
		w[i] = weights[col]
	}
	return &Linear{columns: columns, weights: w, intercept: intercept}
}

func (l *Linear) Columns(context.Context) ([]string, error) {
	return l.columns, nil
}

func (l *Linear) Predict(ctx context.Context, rows [][]float64) ([]models.Prediction, error) {
	preds := make([]models.Prediction, len(rows))
	for i, row := range rows {
		if len(row) != len(l.weights) {
			return nil, fmt.Errorf("row %d has %d values, model expects %d", i, len(row), len(l.weights))
		}
		z := l.intercept
		for j, v := range row {
			z += l.weights[j] * v
		}
		p := 1 / (1 + math.Exp(-z))

		label := 0
		if p > 0.5 {
			label = 1
		}
		preds[i] = models.Prediction{Label: label, Probabilities: [2]float64{1 - p, p}}
	}
	return preds, nil
}
