package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Contacts", "contacts"},
		{"Loan Applications!!", "loan_applications"},
		{"loan_applications", "loan_applications"},
		{"  --Borrower  Income--  ", "borrower_income"},
		{"APR (%)", "apr"},
		{"Q4 2024 Pipeline", "q4_2024_pipeline"},
		{"!!!", ""},
		{"camelCase", "camelcase"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Normalize(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Normalize(got), "normalize must be idempotent")
		})
	}
}

func TestFormatLabel(t *testing.T) {
	assert.Equal(t, "Loan Application", FormatLabel("LoanApplication"))
	assert.Equal(t, "Table Definition", FormatLabel("TableDefinition"))
	assert.Equal(t, "Loan amount", FormatLabel("loan_amount"))
	assert.Equal(t, "Email", FormatLabel("email"))
	assert.Equal(t, "ID", FormatLabel("ID"))
	assert.Equal(t, "", FormatLabel(""))
}
