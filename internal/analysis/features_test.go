package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

func TestFeatureRowCoversEveryColumn(t *testing.T) {
	row := FeatureRow(models.Transaction{
		Amount:            7500,
		OldBalance:        10000,
		NewBalance:        2500,
		Category:          models.CategoryPayment,
		IsLarge:           true,
		BalanceDifference: -7500,
	})

	assert.Len(t, row, len(FeatureColumns))
	for _, col := range FeatureColumns {
		assert.Contains(t, row, col)
	}
	assert.Equal(t, 1.0, row["type_PAYMENT"])
	assert.Equal(t, 0.0, row["type_DEBIT"])
	assert.Equal(t, 1.0, row["is_large_transaction"])
	assert.Equal(t, 0.0, row["oldbalanceDest"])
	assert.Equal(t, -7500.0, row["balance_difference"])
}

func TestReindexFillsMissingColumns(t *testing.T) {
	txns := []models.Transaction{
		{Amount: 10, Category: models.CategoryCashIn},
		{Amount: 20, Category: models.CategoryDebit},
	}

	rows := Reindex(txns, []string{"step", "type_DEBIT", "amount"})
	assert.Equal(t, [][]float64{{0, 0, 10}, {0, 1, 20}}, rows)
}
