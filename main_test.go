package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/insightdelivered/statement-analyzer/internal/models"
)

const statement = "ACME BANK statement\n01 Jan 23 ATM WITHDRAWAL 250.00\n02 Jan 23 DEPOSIT 300.00\n"

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("CLASSIFIER_MODEL_PATH", "")
	t.Setenv("CLASSIFIER_URL", "")

	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, _, err := run(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "statement-analyzer v"+version+"\n" {
		t.Fatalf("unexpected version output %q", out)
	}
}

func TestAnalyzeCmd(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jan.txt")
	if err := os.WriteFile(path, []byte(statement), 0o600); err != nil {
		t.Fatalf("write statement: %v", err)
	}

	out, _, err := run(t, "analyze", "--csv", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var res models.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not a result: %v\n%s", err, out)
	}
	if len(res.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(res.Transactions))
	}
	if res.Summary == nil || res.Summary.FraudAnalysis != nil {
		t.Fatalf("expected summary without fraud analysis, got %+v", res.Summary)
	}

	csv, err := os.ReadFile(filepath.Join(dir, "jan.csv"))
	if err != nil {
		t.Fatalf("expected CSV next to input: %v", err)
	}
	if !strings.Contains(string(csv), "CASH_OUT") {
		t.Fatalf("unexpected CSV:\n%s", csv)
	}
}

func TestAnalyzeCmdWithModel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jan.txt")
	model := filepath.Join(dir, "model.json")
	if err := os.WriteFile(path, []byte(statement), 0o600); err != nil {
		t.Fatalf("write statement: %v", err)
	}
	if err := os.WriteFile(model, []byte(`{"columns":["amount"],"weights":{"amount":0.01},"intercept":-2.75}`), 0o600); err != nil {
		t.Fatalf("write model: %v", err)
	}

	out, _, err := run(t, "analyze", "--classifier-model", model, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var res models.Result
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not a result: %v\n%s", err, out)
	}
	fa := res.Summary.FraudAnalysis
	if fa == nil {
		t.Fatal("expected fraud analysis")
	}
	// z = -0.25 for 250 and 0.25 for 300
	if fa.TotalFraudulent != 1 || fa.FraudPercentage != 50 {
		t.Fatalf("unexpected fraud analysis %+v", *fa)
	}
}

func TestAnalyzeCmdUnsupportedFile(t *testing.T) {
	_, _, err := run(t, "analyze", filepath.Join(t.TempDir(), "ledger.xlsx"))
	if err == nil {
		t.Fatal("expected error for unsupported file type")
	}
}

func TestAnalyzeCmdRequiresArgs(t *testing.T) {
	if _, _, err := run(t, "analyze"); err == nil {
		t.Fatal("expected error without arguments")
	}
}
