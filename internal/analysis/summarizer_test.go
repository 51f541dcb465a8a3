package analysis_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/insightdelivered/statement-analyzer/internal/analysis"
	"github.com/insightdelivered/statement-analyzer/internal/analysis/mocks"
	"github.com/insightdelivered/statement-analyzer/internal/logger"
	"github.com/insightdelivered/statement-analyzer/internal/models"
)

func sampleTransactions() []models.Transaction {
	return []models.Transaction{
		{Date: "01 Jan 23", Description: "01 Jan 23 ATM WITHDRAWAL 250.00", Amount: 250, OldBalance: 500, NewBalance: 250, Category: models.CategoryCashOut, BalanceDifference: -250},
		{Date: "02 Jan 23", Description: "02 Jan 23 DEPOSIT 300.00", Amount: 300, OldBalance: -50, NewBalance: 250, Category: models.CategoryCashIn, BalanceDifference: 300},
		{Date: "03 Jan 23", Description: "03 Jan 23 NEFT TRANSFER 6000.00", Amount: 6000, Category: models.CategoryTransfer, IsLarge: true},
	}
}

func assertBaseSummary(t *testing.T, s *models.Summary) {
	t.Helper()
	assert.Equal(t, 3, s.TotalTransactions)
	assert.Equal(t, 1, s.TotalCashOut)
	assert.Equal(t, 1, s.TotalCashIn)
	assert.Equal(t, 1, s.TotalTransfers)
	assert.Equal(t, 0, s.TotalPayments)
	assert.Equal(t, 0, s.TotalDebits)
	assert.Equal(t, 1, s.LargeTransactions)
	assert.Equal(t, 2183.33, s.AvgTransactionAmount)
	assert.Equal(t, 6000.0, s.MaxTransactionAmount)
	assert.Equal(t, 250.0, s.MinTransactionAmount)
	assert.Equal(t, "01 Jan 23 to 03 Jan 23", s.DateRange)
	assert.Equal(t, 250.0, s.TotalDebitAmount)
	assert.Equal(t, 300.0, s.TotalCreditAmount)
}

func TestSummarizeWithoutClassifier(t *testing.T) {
	s := analysis.NewSummarizer(nil, logger.Nop(), nil)

	summary, err := s.Summarize(context.Background(), sampleTransactions())
	require.NoError(t, err)
	assertBaseSummary(t, summary)
	assert.Nil(t, summary.FraudAnalysis)
}

func TestSummarizeEmpty(t *testing.T) {
	s := analysis.NewSummarizer(nil, logger.Nop(), nil)

	_, err := s.Summarize(context.Background(), nil)
	require.ErrorIs(t, err, analysis.ErrEmptyRecords)
}

func TestSummarizeWithRiskScores(t *testing.T) {
	ctrl := gomock.NewController(t)
	classifier := mocks.NewMockClassifier(ctrl)

	columns := []string{"type_CASH_OUT", "amount", "step"}
	classifier.EXPECT().Columns(gomock.Any()).Return(columns, nil)
	classifier.EXPECT().
		Predict(gomock.Any(), [][]float64{{1, 250, 0}, {0, 300, 0}, {0, 6000, 0}}).
		Return([]models.Prediction{
			{Label: 1, Probabilities: [2]float64{0.1, 0.9}},
			{Label: 0, Probabilities: [2]float64{0.9, 0.1}},
			{Label: 1, Probabilities: [2]float64{0.4, 0.6}},
		}, nil)

	txns := sampleTransactions()
	summary, err := analysis.NewSummarizer(classifier, logger.Nop(), nil).Summarize(context.Background(), txns)
	require.NoError(t, err)
	assertBaseSummary(t, summary)

	require.NotNil(t, summary.FraudAnalysis)
	assert.Equal(t, 2, summary.FraudAnalysis.TotalFraudulent)
	assert.Equal(t, 66.67, summary.FraudAnalysis.FraudPercentage)
	assert.Equal(t, 53.33, summary.FraudAnalysis.AverageFraudProbability)

	wantFlags := []bool{true, false, true}
	wantProbs := []float64{90, 10, 60}
	for i, txn := range txns {
		require.NotNil(t, txn.IsFraudulent)
		require.NotNil(t, txn.FraudProbability)
		assert.Equal(t, wantFlags[i], *txn.IsFraudulent)
		assert.Equal(t, wantProbs[i], *txn.FraudProbability)
	}
}

func TestSummarizeThresholdIsExclusive(t *testing.T) {
	ctrl := gomock.NewController(t)
	classifier := mocks.NewMockClassifier(ctrl)

	classifier.EXPECT().Columns(gomock.Any()).Return(analysis.FeatureColumns, nil)
	classifier.EXPECT().Predict(gomock.Any(), gomock.Any()).Return([]models.Prediction{
		{Probabilities: [2]float64{0.5, 0.5}},
	}, nil)

	txns := sampleTransactions()[:1]
	summary, err := analysis.NewSummarizer(classifier, logger.Nop(), nil).Summarize(context.Background(), txns)
	require.NoError(t, err)
	require.NotNil(t, summary.FraudAnalysis)
	assert.Equal(t, 0, summary.FraudAnalysis.TotalFraudulent)
	assert.False(t, *txns[0].IsFraudulent)
}

type panicClassifier struct{}

func (panicClassifier) Columns(context.Context) ([]string, error) {
	return analysis.FeatureColumns, nil
}

func (panicClassifier) Predict(context.Context, [][]float64) ([]models.Prediction, error) {
	panic("model file is corrupt")
}

func TestSummarizeDegradesOnClassifierFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(c *mocks.MockClassifier)
		raw   analysis.Classifier
	}{
		{
			name: "predict raises",
			setup: func(c *mocks.MockClassifier) {
				c.EXPECT().Columns(gomock.Any()).Return(analysis.FeatureColumns, nil)
				c.EXPECT().Predict(gomock.Any(), gomock.Any()).Return(nil, errors.New("model crashed"))
			},
		},
		{
			name: "manifest unavailable",
			setup: func(c *mocks.MockClassifier) {
				c.EXPECT().Columns(gomock.Any()).Return(nil, errors.New("column_names missing"))
			},
		},
		{
			name: "empty manifest",
			setup: func(c *mocks.MockClassifier) {
				c.EXPECT().Columns(gomock.Any()).Return([]string{}, nil)
			},
		},
		{
			name: "shape mismatch",
			setup: func(c *mocks.MockClassifier) {
				c.EXPECT().Columns(gomock.Any()).Return(analysis.FeatureColumns, nil)
				c.EXPECT().Predict(gomock.Any(), gomock.Any()).Return([]models.Prediction{{}}, nil)
			},
		},
		{
			name: "probability out of range",
			setup: func(c *mocks.MockClassifier) {
				c.EXPECT().Columns(gomock.Any()).Return(analysis.FeatureColumns, nil)
				c.EXPECT().Predict(gomock.Any(), gomock.Any()).Return([]models.Prediction{
					{Probabilities: [2]float64{0, 1}},
					{Probabilities: [2]float64{0, 7}},
					{Probabilities: [2]float64{1, 0}},
				}, nil)
			},
		},
		{
			name: "classifier panics",
			raw:  panicClassifier{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := tt.raw
			if tt.setup != nil {
				ctrl := gomock.NewController(t)
				m := mocks.NewMockClassifier(ctrl)
				tt.setup(m)
				classifier = m
			}

			txns := sampleTransactions()
			summary, err := analysis.NewSummarizer(classifier, logger.Nop(), nil).Summarize(context.Background(), txns)
			require.NoError(t, err)
			assertBaseSummary(t, summary)
			assert.Nil(t, summary.FraudAnalysis)

			for _, txn := range txns {
				assert.Nil(t, txn.IsFraudulent)
				assert.Nil(t, txn.FraudProbability)
			}

			raw, err := json.Marshal(summary)
			require.NoError(t, err)
			assert.NotContains(t, string(raw), "fraud_analysis")
		})
	}
}
