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

const twoLineStatement = "01 Jan 23 ATM WITHDRAWAL 250.00\n02 Jan 23 DEPOSIT 300.00"

func TestAnalyzeStatement(t *testing.T) {
	a := analysis.NewAnalyzer(nil, logger.Nop(), nil)

	res := a.Analyze(context.Background(), twoLineStatement, analysis.Options{})
	require.Empty(t, res.Error)
	require.NotEmpty(t, res.ID)
	require.Len(t, res.Transactions, 2)
	require.NotNil(t, res.Summary)

	assert.Equal(t, models.CategoryCashOut, res.Transactions[0].Category)
	assert.Equal(t, models.CategoryCashIn, res.Transactions[1].Category)
	assert.Equal(t, "01 Jan 23 to 02 Jan 23", res.Summary.DateRange)
	assert.Equal(t, 250.0, res.Summary.TotalDebitAmount)
	assert.Equal(t, 300.0, res.Summary.TotalCreditAmount)
	assert.Nil(t, res.DebugLines)
	require.NotNil(t, res.Stats)
	assert.Equal(t, 2, res.Stats.Extracted)
}

func TestAnalyzeEmptyStatement(t *testing.T) {
	a := analysis.NewAnalyzer(nil, logger.Nop(), nil)

	for _, text := range []string{"", "  \n\t "} {
		res := a.Analyze(context.Background(), text, analysis.Options{})
		assert.Equal(t, analysis.NoTransactionsMessage, res.Error)
		assert.Empty(t, res.Transactions)
		assert.Nil(t, res.Summary)

		raw, err := json.Marshal(res)
		require.NoError(t, err)
		assert.Contains(t, string(raw), `"transactions":[]`)
		assert.Contains(t, string(raw), `"summary":null`)
	}
}

func TestAnalyzeIncludesDebugTrace(t *testing.T) {
	a := analysis.NewAnalyzer(nil, logger.Nop(), nil)

	res := a.Analyze(context.Background(), "Statement header\n"+twoLineStatement, analysis.Options{IncludeDebug: true})
	require.Len(t, res.DebugLines, 3)
	assert.Equal(t, "skipped", res.DebugLines[0].Result)
	assert.Equal(t, "parsed", res.DebugLines[1].Result)
}

func TestAnalyzeClassifierFailureKeepsSummary(t *testing.T) {
	ctrl := gomock.NewController(t)
	classifier := mocks.NewMockClassifier(ctrl)
	classifier.EXPECT().Columns(gomock.Any()).Return(analysis.FeatureColumns, nil)
	classifier.EXPECT().Predict(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

	a := analysis.NewAnalyzer(classifier, logger.Nop(), nil)
	res := a.Analyze(context.Background(), twoLineStatement, analysis.Options{})

	require.Empty(t, res.Error)
	require.NotNil(t, res.Summary)
	assert.Equal(t, 2, res.Summary.TotalTransactions)
	assert.Nil(t, res.Summary.FraudAnalysis)

	raw, err := json.Marshal(res.Summary)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "fraud_analysis")
}

func TestAnalyzeAttachesRiskScores(t *testing.T) {
	ctrl := gomock.NewController(t)
	classifier := mocks.NewMockClassifier(ctrl)
	classifier.EXPECT().Columns(gomock.Any()).Return(analysis.FeatureColumns, nil)
	classifier.EXPECT().Predict(gomock.Any(), gomock.Len(2)).Return([]models.Prediction{
		{Label: 1, Probabilities: [2]float64{0.2, 0.8}},
		{Label: 0, Probabilities: [2]float64{0.7, 0.3}},
	}, nil)

	a := analysis.NewAnalyzer(classifier, logger.Nop(), nil)
	res := a.Analyze(context.Background(), twoLineStatement, analysis.Options{})

	require.NotNil(t, res.Summary.FraudAnalysis)
	assert.Equal(t, 1, res.Summary.FraudAnalysis.TotalFraudulent)
	assert.Equal(t, 50.0, res.Summary.FraudAnalysis.FraudPercentage)
	assert.Equal(t, 55.0, res.Summary.FraudAnalysis.AverageFraudProbability)
	assert.True(t, *res.Transactions[0].IsFraudulent)
	assert.Equal(t, 80.0, *res.Transactions[0].FraudProbability)
}

func TestErrorResult(t *testing.T) {
	res := analysis.ErrorResult("Error processing PDF: no readable text")
	assert.Equal(t, "Error processing PDF: no readable text", res.Error)
	assert.NotNil(t, res.Transactions)
	assert.Nil(t, res.Summary)
}
