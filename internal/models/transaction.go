package models

import "encoding/json"

// LargeTransactionThreshold is the amount at or above which a transaction is
// flagged as large. It is currency agnostic.
const LargeTransactionThreshold = 5000.0

// Category is the closed classification of a transaction.
type Category string

const (
	CategoryCashIn   Category = "CASH_IN"
	CategoryCashOut  Category = "CASH_OUT"
	CategoryDebit    Category = "DEBIT"
	CategoryPayment  Category = "PAYMENT"
	CategoryTransfer Category = "TRANSFER"
)

// Categories lists every category in the order the risk model's one-hot
// columns use.
var Categories = []Category{
	CategoryCashIn,
	CategoryCashOut,
	CategoryDebit,
	CategoryPayment,
	CategoryTransfer,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Transaction is one statement line reconstructed into a ledger entry.
type Transaction struct {
	Date              string   `json:"transaction_date"` // raw matched text, never normalized
	Description       string   `json:"description"`
	Amount            float64  `json:"amount"`
	OldBalance        float64  `json:"oldbalanceOrg"`
	NewBalance        float64  `json:"newbalanceOrig"`
	Category          Category `json:"type"`
	IsLarge           bool     `json:"is_large_transaction"`
	BalanceDifference float64  `json:"balance_difference"`

	// Set only after risk scoring.
	IsFraudulent     *bool    `json:"is_fraudulent,omitempty"`
	FraudProbability *float64 `json:"fraud_probability,omitempty"`
}

// IsLargeAmount reports whether amount meets the large-transaction threshold.
func IsLargeAmount(amount float64) bool {
	return amount >= LargeTransactionThreshold
}

// MarshalJSON adds the legacy one-hot type_* flags next to the category.
func (t Transaction) MarshalJSON() ([]byte, error) {
	type plain Transaction
	out := struct {
		plain
		TypeCashIn   int `json:"type_CASH_IN"`
		TypeCashOut  int `json:"type_CASH_OUT"`
		TypeDebit    int `json:"type_DEBIT"`
		TypePayment  int `json:"type_PAYMENT"`
		TypeTransfer int `json:"type_TRANSFER"`
	}{plain: plain(t)}

	flags := t.Category.OneHot()
	out.TypeCashIn = flags[0]
	out.TypeCashOut = flags[1]
	out.TypeDebit = flags[2]
	out.TypePayment = flags[3]
	out.TypeTransfer = flags[4]
	return json.Marshal(out)
}

// OneHot returns the category as flags ordered like Categories.
func (c Category) OneHot() [5]int {
	var flags [5]int
	for i, known := range Categories {
		if c == known {
			flags[i] = 1
		}
	}
	return flags
}

// AccountInfo holds account metadata found in the statement text.
type AccountInfo struct {
	Number   string `json:"number,omitempty"`
	SortCode string `json:"sortCode,omitempty"`
}

// DebugLine captures what the extractor did with each input line.
type DebugLine struct {
	LineNum int    `json:"lineNum"`
	Text    string `json:"text"`
	HasDate bool   `json:"hasDate"`
	Result  string `json:"result"` // "parsed" or "skipped"
	Reason  string `json:"reason,omitempty"`
}

// ExtractionStats are the per-document counters of one extraction pass.
type ExtractionStats struct {
	TotalLines       int `json:"totalLines"`
	LinesWithDates   int `json:"linesWithDates"`
	LinesWithAmounts int `json:"linesWithAmounts"`
	Extracted        int `json:"extracted"`
	Faults           int `json:"faults"`
}

// Extraction is the ordered output of one extraction pass.
type Extraction struct {
	Transactions []Transaction
	Account      AccountInfo
	Stats        ExtractionStats
	DebugLines   []DebugLine
}
