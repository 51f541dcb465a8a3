package analysis

import (
	"context"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// Classifier is the external risk model. It is called once per statement with
// the whole batch of feature rows.
type Classifier interface {
	// Columns returns the ordered feature manifest the model was trained on.
	Columns(ctx context.Context) ([]string, error)
	// Predict scores rows whose values follow the order of Columns.
	Predict(ctx context.Context, rows [][]float64) ([]models.Prediction, error)
}
