package analysis

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// LargestCount is how many transactions Digest reports as the largest.
const LargestCount = 5

// Digest summarizes txns for upload responses: totals by magnitude and the
// largest transactions, biggest first. Ties keep source order.
func Digest(txns []models.Transaction) models.TransactionAnalysis {
	out := models.TransactionAnalysis{
		TotalTransactions:   len(txns),
		LargestTransactions: []models.Transaction{},
	}
	if len(txns) == 0 {
		return out
	}

	total := decimal.Zero
	for _, t := range txns {
		total = total.Add(decimal.NewFromFloat(t.Amount).Abs())
	}
	out.TotalAmount = total.Round(2).InexactFloat64()
	out.AverageTransaction = total.Div(decimal.NewFromInt(int64(len(txns)))).Round(2).InexactFloat64()

	sorted := make([]models.Transaction, len(txns))
	copy(sorted, txns)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Amount > sorted[j].Amount
	})
	if len(sorted) > LargestCount {
		sorted = sorted[:LargestCount]
	}
	out.LargestTransactions = sorted
	return out
}
