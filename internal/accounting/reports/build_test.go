package reports

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/rielbooks/rielbooks/internal/accounting/accounts"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var (
	asOf = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	rate = dec("4150")
)

func TestBuildTrialBalanceSimplePage(t *testing.T) {
	balances := []AccountBalance{
		{Number: "1000", Name: "Cash", NormalBalance: accounts.NormalBalanceDebit, Currency: "USD",
			Class: accounts.ClassAsset, Category: "Assets", Debit: dec("100.00"), Credit: dec("0")},
		{Number: "3000", Name: "Owner Capital", NormalBalance: accounts.NormalBalanceCredit, Currency: "USD",
			Class: accounts.ClassEquity, Category: "Equity", Debit: dec("0"), Credit: dec("100.00")},
	}

	tb := BuildTrialBalance(asOf, "USD", rate, balances)
	require.True(t, tb.HasData)
	require.True(t, tb.IsBalanced)
	require.Len(t, tb.Lines, 2)
	require.Equal(t, "1000", tb.Lines[0].AccountNumber)
	require.True(t, tb.Lines[0].Debit.Equal(dec("100.00")))
	require.True(t, tb.Lines[0].Credit.IsZero())
	require.Equal(t, "3000", tb.Lines[1].AccountNumber)
	require.True(t, tb.Lines[1].Credit.Equal(dec("100.00")))
	require.True(t, tb.TotalDebit.Equal(tb.TotalCredit))
}

func TestBuildTrialBalanceNegativeNetFlipsColumn(t *testing.T) {
	// an asset account driven below zero shows up in the credit column
	balances := []AccountBalance{
		{Number: "1000", Name: "Cash", NormalBalance: accounts.NormalBalanceDebit, Currency: "USD",
			Class: accounts.ClassAsset, Category: "Assets", Debit: dec("50"), Credit: dec("80")},
	}
	tb := BuildTrialBalance(asOf, "USD", rate, balances)
	require.True(t, tb.Lines[0].Debit.IsZero())
	require.True(t, tb.Lines[0].Credit.Equal(dec("30")))
}

func TestBuildTrialBalanceCurrencyConversion(t *testing.T) {
	balances := []AccountBalance{
		{Number: "1000", Name: "Cash USD", NormalBalance: accounts.NormalBalanceDebit, Currency: "USD",
			Class: accounts.ClassAsset, Category: "Assets", Debit: dec("10"), Credit: dec("0")},
		{Number: "1010", Name: "Cash KHR", NormalBalance: accounts.NormalBalanceDebit, Currency: "KHR",
			Class: accounts.ClassAsset, Category: "Assets", Debit: dec("41500"), Credit: dec("0")},
	}
	tb := BuildTrialBalance(asOf, "USD", rate, balances)
	require.True(t, tb.Lines[0].Debit.Equal(dec("10")))
	require.True(t, tb.Lines[1].Debit.Equal(dec("10")), "41500 KHR at 4150 = 10 USD, got %s", tb.Lines[1].Debit)

	khr := BuildTrialBalance(asOf, "KHR", rate, balances)
	require.True(t, khr.Lines[0].Debit.Equal(dec("41500")))
	require.True(t, khr.Lines[1].Debit.Equal(dec("41500")))
}

func TestBuildTrialBalanceEmpty(t *testing.T) {
	tb := BuildTrialBalance(asOf, "USD", rate, nil)
	require.False(t, tb.HasData)
	require.True(t, tb.IsBalanced)
	require.Empty(t, tb.Lines)
}

func balancedLedger() []AccountBalance {
	// cash 500 = payable 100 + capital 300 + (income 200 - expense 100)
	return []AccountBalance{
		{Number: "1000", Name: "Cash", NormalBalance: accounts.NormalBalanceDebit, Currency: "USD",
			Class: accounts.ClassAsset, Category: "Current Assets", SubCategory: "Cash", Debit: dec("600"), Credit: dec("100")},
		{Number: "2100", Name: "Accounts Payable", NormalBalance: accounts.NormalBalanceCredit, Currency: "USD",
			Class: accounts.ClassLiability, Category: "Current Liabilities", Debit: dec("0"), Credit: dec("100")},
		{Number: "3000", Name: "Owner Capital", NormalBalance: accounts.NormalBalanceCredit, Currency: "USD",
			Class: accounts.ClassEquity, Category: "Equity", Debit: dec("0"), Credit: dec("300")},
		{Number: "4000", Name: "Sales", NormalBalance: accounts.NormalBalanceCredit, Currency: "USD",
			Class: accounts.ClassIncome, Category: "Revenue", Debit: dec("0"), Credit: dec("200")},
		{Number: "5000", Name: "Cost of Goods Sold", NormalBalance: accounts.NormalBalanceDebit, Currency: "USD",
			Class: accounts.ClassExpense, Category: "Expenses", Debit: dec("100"), Credit: dec("0")},
	}
}

func TestBuildBalanceSheetIdentity(t *testing.T) {
	bs := BuildBalanceSheet(asOf, "USD", rate, balancedLedger())
	require.True(t, bs.HasData)
	require.True(t, bs.TotalAssets.Equal(dec("500")))
	require.True(t, bs.TotalLiabilities.Equal(dec("100")))
	require.True(t, bs.NetProfitOrLoss.Equal(dec("100")))
	require.True(t, bs.TotalEquity.Equal(dec("400")), "equity 300 + profit 100")
	require.True(t, bs.TotalLiabilitiesAndEquity.Equal(dec("500")))
	require.True(t, bs.IsBalanced)
}

func TestBuildBalanceSheetGrouping(t *testing.T) {
	bs := BuildBalanceSheet(asOf, "USD", rate, balancedLedger())
	require.Len(t, bs.Assets, 1)
	require.Equal(t, "Current Assets", bs.Assets[0].Name)
	require.Len(t, bs.Assets[0].SubGroups, 1)
	require.Equal(t, "Cash", bs.Assets[0].SubGroups[0].Name)
	require.True(t, bs.Assets[0].SubGroups[0].Total.Equal(dec("500")))
}

func TestBuildBalanceSheetDetectsImbalance(t *testing.T) {
	// asset entry with no counterpart: the report flags, never errors
	balances := []AccountBalance{
		{Number: "1000", Name: "Cash", NormalBalance: accounts.NormalBalanceDebit, Currency: "USD",
			Class: accounts.ClassAsset, Category: "Assets", Debit: dec("100"), Credit: dec("0")},
	}
	bs := BuildBalanceSheet(asOf, "USD", rate, balances)
	require.True(t, bs.HasData)
	require.False(t, bs.IsBalanced)
}

func TestBuildBalanceSheetEmpty(t *testing.T) {
	bs := BuildBalanceSheet(asOf, "USD", rate, nil)
	require.False(t, bs.HasData)
	require.True(t, bs.IsBalanced)
	require.Empty(t, bs.Assets)
}

func TestBuildBalanceSheetIdentityHoldsAfterConversion(t *testing.T) {
	usd := BuildBalanceSheet(asOf, "USD", rate, balancedLedger())
	khr := BuildBalanceSheet(asOf, "KHR", rate, balancedLedger())
	require.True(t, usd.IsBalanced)
	require.True(t, khr.IsBalanced)
	require.True(t, khr.TotalAssets.Equal(usd.TotalAssets.Mul(rate)))
}

func TestFormatAmount(t *testing.T) {
	require.Equal(t, "$1,234.50", formatAmount("USD", dec("1234.5")))
	require.Equal(t, "5,122,250 KHR", formatAmount("KHR", dec("5122250")))
}
