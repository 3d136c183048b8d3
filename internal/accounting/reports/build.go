package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rielbooks/rielbooks/internal/accounting/accounts"
)

// IdentityTolerance bounds the residue accepted when checking the trial
// balance tie-out and the balance sheet equation after currency conversion.
var IdentityTolerance = decimal.RequireFromString("0.01")

// convert re-expresses an amount from the account's native currency into the
// reporting currency. The rate is KHR per USD.
func convert(amount decimal.Decimal, native, reporting string, rate decimal.Decimal) decimal.Decimal {
	if native == "" {
		native = "USD"
	}
	if native == reporting {
		return amount
	}
	if native == "USD" && reporting == "KHR" {
		return amount.Mul(rate)
	}
	return amount.DivRound(rate, 2)
}

// BuildTrialBalance nets every account per its normal balance and lays the
// result back out into a single debit or credit column per line. Totals tie
// out whenever every underlying page was balanced.
func BuildTrialBalance(asOf time.Time, currency string, rate decimal.Decimal, balances []AccountBalance) TrialBalance {
	tb := TrialBalance{
		AsOf:         asOf,
		Currency:     currency,
		ExchangeRate: rate,
		TotalDebit:   decimal.Zero,
		TotalCredit:  decimal.Zero,
	}
	if len(balances) == 0 {
		tb.IsBalanced = true
		return tb
	}
	tb.HasData = true

	sorted := make([]AccountBalance, len(balances))
	copy(sorted, balances)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	for _, b := range sorted {
		net := convert(b.Net(), b.Currency, currency, rate)
		line := TrialBalanceLine{
			AccountNumber: b.Number,
			AccountName:   b.Name,
			Debit:         decimal.Zero,
			Credit:        decimal.Zero,
		}
		onDebitSide := b.NormalBalance != accounts.NormalBalanceCredit
		if net.IsNegative() {
			onDebitSide = !onDebitSide
			net = net.Neg()
		}
		if onDebitSide {
			line.Debit = net
		} else {
			line.Credit = net
		}
		line.DebitDisplay = formatAmount(currency, line.Debit)
		line.CreditDisplay = formatAmount(currency, line.Credit)
		tb.Lines = append(tb.Lines, line)
		tb.TotalDebit = tb.TotalDebit.Add(line.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(line.Credit)
	}
	tb.IsBalanced = tb.TotalDebit.Sub(tb.TotalCredit).Abs().LessThanOrEqual(IdentityTolerance)
	return tb
}

// BuildBalanceSheet buckets accounts into the three statement sections by
// class, with category groups and sub-category subtotals, and folds the
// period's net profit or loss into equity before checking the equation.
func BuildBalanceSheet(asOf time.Time, currency string, rate decimal.Decimal, balances []AccountBalance) BalanceSheet {
	bs := BalanceSheet{
		AsOf:                      asOf,
		Currency:                  currency,
		ExchangeRate:              rate,
		TotalAssets:               decimal.Zero,
		TotalLiabilities:          decimal.Zero,
		TotalEquity:               decimal.Zero,
		NetProfitOrLoss:           decimal.Zero,
		TotalLiabilitiesAndEquity: decimal.Zero,
	}
	if len(balances) == 0 {
		bs.IsBalanced = true
		return bs
	}
	bs.HasData = true

	byClass := map[accounts.Class][]AccountBalance{}
	for _, b := range balances {
		byClass[b.Class] = append(byClass[b.Class], b)
	}

	totalIncome := sumClass(byClass[accounts.ClassIncome], currency, rate)
	totalExpense := sumClass(byClass[accounts.ClassExpense], currency, rate)
	bs.NetProfitOrLoss = totalIncome.Sub(totalExpense)

	bs.Assets, bs.TotalAssets = buildGroups(byClass[accounts.ClassAsset], currency, rate)
	bs.Liabilities, bs.TotalLiabilities = buildGroups(byClass[accounts.ClassLiability], currency, rate)
	bs.Equity, bs.TotalEquity = buildGroups(byClass[accounts.ClassEquity], currency, rate)

	bs.TotalEquity = bs.TotalEquity.Add(bs.NetProfitOrLoss)
	bs.TotalLiabilitiesAndEquity = bs.TotalLiabilities.Add(bs.TotalEquity)
	bs.IsBalanced = bs.TotalAssets.Sub(bs.TotalLiabilitiesAndEquity).Abs().LessThanOrEqual(IdentityTolerance)
	return bs
}

func sumClass(balances []AccountBalance, currency string, rate decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(convert(b.Net(), b.Currency, currency, rate))
	}
	return total
}

func buildGroups(balances []AccountBalance, currency string, rate decimal.Decimal) ([]BalanceSheetGroup, decimal.Decimal) {
	type subKey struct{ category, sub string }
	groupIdx := map[string]int{}
	var groups []BalanceSheetGroup
	subIdx := map[subKey]int{}

	sorted := make([]AccountBalance, len(balances))
	copy(sorted, balances)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Category != sorted[j].Category {
			return sorted[i].Category < sorted[j].Category
		}
		if sorted[i].SubCategory != sorted[j].SubCategory {
			return sorted[i].SubCategory < sorted[j].SubCategory
		}
		return sorted[i].Number < sorted[j].Number
	})

	total := decimal.Zero
	for _, b := range sorted {
		gi, ok := groupIdx[b.Category]
		if !ok {
			gi = len(groups)
			groupIdx[b.Category] = gi
			groups = append(groups, BalanceSheetGroup{Name: b.Category, Total: decimal.Zero})
		}
		sub := b.SubCategory
		if sub == "" {
			sub = "General"
		}
		key := subKey{b.Category, sub}
		si, ok := subIdx[key]
		if !ok {
			si = len(groups[gi].SubGroups)
			subIdx[key] = si
			groups[gi].SubGroups = append(groups[gi].SubGroups, BalanceSheetSubGroup{Name: sub, Total: decimal.Zero})
		}

		balance := convert(b.Net(), b.Currency, currency, rate)
		line := BalanceSheetLine{
			AccountNumber: b.Number,
			AccountName:   b.Name,
			Balance:       balance,
			Display:       formatAmount(currency, balance),
		}
		groups[gi].SubGroups[si].Lines = append(groups[gi].SubGroups[si].Lines, line)
		groups[gi].SubGroups[si].Total = groups[gi].SubGroups[si].Total.Add(balance)
		groups[gi].Total = groups[gi].Total.Add(balance)
		total = total.Add(balance)
	}
	return groups, total
}
