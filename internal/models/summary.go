package models

// FraudAnalysis is the risk sub-summary. It is absent from a Summary when the
// classifier could not be used.
type FraudAnalysis struct {
	TotalFraudulent         int     `json:"total_fraudulent"`
	FraudPercentage         float64 `json:"fraud_percentage"`
	AverageFraudProbability float64 `json:"average_fraud_probability"`
}

// Summary is the aggregate over a finished transaction sequence.
type Summary struct {
	TotalTransactions    int     `json:"total_transactions"`
	TotalCashOut         int     `json:"total_cash_out"`
	TotalCashIn          int     `json:"total_cash_in"`
	TotalTransfers       int     `json:"total_transfers"`
	TotalPayments        int     `json:"total_payments"`
	TotalDebits          int     `json:"total_debits"`
	LargeTransactions    int     `json:"large_transactions"`
	AvgTransactionAmount float64 `json:"avg_transaction_amount"`
	MaxTransactionAmount float64 `json:"max_transaction_amount"`
	MinTransactionAmount float64 `json:"min_transaction_amount"`
	DateRange            string  `json:"date_range"`
	TotalDebitAmount     float64 `json:"total_debit_amount"`
	TotalCreditAmount    float64 `json:"total_credit_amount"`

	FraudAnalysis *FraudAnalysis `json:"fraud_analysis,omitempty"`
}

// TransactionAnalysis is the upload-facing digest of a statement.
type TransactionAnalysis struct {
	TotalTransactions   int           `json:"total_transactions"`
	TotalAmount         float64       `json:"total_amount"`
	AverageTransaction  float64       `json:"average_transaction"`
	LargestTransactions []Transaction `json:"largest_transactions"`
}

// Result is what callers of the analysis pipeline always receive.
// Error is set and Transactions is empty when nothing could be extracted.
type Result struct {
	ID           string           `json:"id,omitempty"`
	Transactions []Transaction    `json:"transactions"`
	Summary      *Summary         `json:"summary"`
	Error        string           `json:"error,omitempty"`
	Account      *AccountInfo     `json:"account,omitempty"`
	Stats        *ExtractionStats `json:"stats,omitempty"`
	DebugLines   []DebugLine      `json:"debugLines,omitempty"`
}

// Prediction is the risk model's verdict for one feature row.
type Prediction struct {
	Label         int        `json:"label"`
	Probabilities [2]float64 `json:"probabilities"` // class 0, class 1
}
