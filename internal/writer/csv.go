package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

// CSVWriter writes an analysis ledger to CSV.
type CSVWriter struct {
	IncludeHeader bool
}

var columns = []string{
	"Date", "Description", "Type", "Amount",
	"OldBalance", "NewBalance", "BalanceDifference", "Large",
	"HighRisk", "RiskProbability",
}

// WriteToFile writes the ledger to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, res *models.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	if err := w.Write(f, res); err != nil {
		return err
	}
	return f.Close()
}

// Write writes the ledger in CSV format to out. Risk columns are empty for
// transactions that were never scored.
func (w *CSVWriter) Write(out io.Writer, res *models.Result) error {
	cw := csv.NewWriter(out)

	if w.IncludeHeader {
		meta := [][]string{{"# Analysis", res.ID}}
		if res.Account != nil {
			if res.Account.Number != "" {
				meta = append(meta, []string{"# Account Number", res.Account.Number})
			}
			if res.Account.SortCode != "" {
				meta = append(meta, []string{"# Sort Code", res.Account.SortCode})
			}
		}
		if res.Summary != nil && res.Summary.DateRange != "" {
			meta = append(meta, []string{"# Period", res.Summary.DateRange})
		}
		if err := cw.WriteAll(meta); err != nil {
			return fmt.Errorf("failed to write CSV metadata: %w", err)
		}
	}

	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range res.Transactions {
		row := []string{
			txn.Date,
			txn.Description,
			string(txn.Category),
			formatAmount(txn.Amount),
			formatAmount(txn.OldBalance),
			formatAmount(txn.NewBalance),
			formatAmount(txn.BalanceDifference),
			strconv.FormatBool(txn.IsLarge),
			"",
			"",
		}
		if txn.IsFraudulent != nil {
			row[8] = strconv.FormatBool(*txn.IsFraudulent)
		}
		if txn.FraudProbability != nil {
			row[9] = formatAmount(*txn.FraudProbability)
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}
