package analysis

import (
	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// FeatureColumns is the fixed order in which a transaction is laid out for the
// risk model before it is reindexed to the model's own manifest.
var FeatureColumns = []string{
	"amount",
	"oldbalanceOrg",
	"newbalanceOrig",
	"oldbalanceDest",
	"newbalanceDest",
	"type_CASH_IN",
	"type_CASH_OUT",
	"type_DEBIT",
	"type_PAYMENT",
	"type_TRANSFER",
	"is_large_transaction",
	"balance_difference",
}

// FeatureRow lays t out as named model features. Destination balances are not
// visible on a statement and are always zero.
func FeatureRow(t models.Transaction) map[string]float64 {
	flags := t.Category.OneHot()
	large := 0.0
	if t.IsLarge {
		large = 1
	}
	return map[string]float64{
		"amount":               t.Amount,
		"oldbalanceOrg":        t.OldBalance,
		"newbalanceOrig":       t.NewBalance,
		"oldbalanceDest":       0,
		"newbalanceDest":       0,
		"type_CASH_IN":         float64(flags[0]),
		"type_CASH_OUT":        float64(flags[1]),
		"type_DEBIT":           float64(flags[2]),
		"type_PAYMENT":         float64(flags[3]),
		"type_TRANSFER":        float64(flags[4]),
		"is_large_transaction": large,
		"balance_difference":   t.BalanceDifference,
	}
}

// Reindex builds one row per transaction in the order given by columns.
// Columns the statement cannot supply are filled with zero.
func Reindex(txns []models.Transaction, columns []string) [][]float64 {
	rows := make([][]float64, len(txns))
	for i, t := range txns {
		features := FeatureRow(t)
		row := make([]float64, len(columns))
		for j, col := range columns {
			row[j] = features[col]
		}
		rows[i] = row
	}
	return rows
}
