package journals

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	acctshared "github.com/rielbooks/rielbooks/internal/accounting/shared"
	"github.com/rielbooks/rielbooks/internal/shared"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPageInputValidateBalanced(t *testing.T) {
	in := PageInput{
		Source: "manual",
		Entries: []EntryInput{
			{AccountNumber: "1000", Debit: dec("100.00")},
			{AccountNumber: "3000", Credit: dec("100.00")},
		},
	}
	require.NoError(t, in.Validate())
}

func TestPageInputValidateUnbalanced(t *testing.T) {
	in := PageInput{
		Source: "manual",
		Entries: []EntryInput{
			{AccountNumber: "1000", Debit: dec("100.00")},
			{AccountNumber: "3000", Credit: dec("90.00")},
		},
	}
	err := in.Validate()
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Contains(t, err.Error(), "not balanced")
}

func TestPageInputValidateWithinTolerance(t *testing.T) {
	in := PageInput{
		Source: "import",
		Entries: []EntryInput{
			{AccountNumber: "1000", Debit: dec("33.333")},
			{AccountNumber: "3000", Credit: dec("33.330")},
		},
	}
	require.NoError(t, in.Validate())
}

func TestPageInputValidateRejectsNoEntries(t *testing.T) {
	err := PageInput{Source: "manual"}.Validate()
	require.ErrorIs(t, err, acctshared.ErrNoEntries)
}

func TestPageInputValidateRejectsMissingSource(t *testing.T) {
	err := PageInput{Entries: []EntryInput{{AccountNumber: "1000"}}}.Validate()
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestPageInputValidateRejectsNegativeAmount(t *testing.T) {
	in := PageInput{
		Source: "manual",
		Entries: []EntryInput{
			{AccountNumber: "1000", Debit: dec("-5.00")},
			{AccountNumber: "3000", Credit: dec("-5.00")},
		},
	}
	require.ErrorIs(t, in.Validate(), acctshared.ErrNegativeAmount)
}

func TestPageInputValidateRejectsBothSides(t *testing.T) {
	in := PageInput{
		Source: "manual",
		Entries: []EntryInput{
			{AccountNumber: "1000", Debit: dec("10.00"), Credit: dec("10.00")},
		},
	}
	require.ErrorIs(t, in.Validate(), acctshared.ErrBothSides)
}

func TestPageInputValidateRejectsUnknownCurrency(t *testing.T) {
	in := PageInput{
		Source:   "manual",
		Currency: "EUR",
		Entries: []EntryInput{
			{AccountNumber: "1000", Debit: dec("10.00")},
			{AccountNumber: "3000", Credit: dec("10.00")},
		},
	}
	require.ErrorIs(t, in.Validate(), acctshared.ErrInvalidCurrency)
}

func TestPageInputValidateAllowsMemoLine(t *testing.T) {
	in := PageInput{
		Source: "manual",
		Entries: []EntryInput{
			{AccountNumber: "1000", Debit: dec("10.00")},
			{AccountNumber: "9999", Description: "memo"},
			{AccountNumber: "3000", Credit: dec("10.00")},
		},
	}
	require.NoError(t, in.Validate())
}

func TestPageInputTotals(t *testing.T) {
	in := PageInput{
		Entries: []EntryInput{
			{AccountNumber: "1000", Debit: dec("60.00")},
			{AccountNumber: "1200", Debit: dec("40.00")},
			{AccountNumber: "3000", Credit: dec("100.00")},
		},
	}
	debits, credits := in.Totals()
	require.True(t, debits.Equal(dec("100.00")))
	require.True(t, credits.Equal(dec("100.00")))
}
