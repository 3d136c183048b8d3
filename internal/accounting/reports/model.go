package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rielbooks/rielbooks/internal/accounting/accounts"
)

// AccountBalance is the raw per-account aggregate the builders consume:
// lifetime debit and credit sums in the account's native currency, as of the
// report date, over posts of non-disabled pages only.
type AccountBalance struct {
	Number        string
	Name          string
	NormalBalance accounts.NormalBalance
	Currency      string
	Class         accounts.Class
	Category      string
	SubCategory   string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
}

// Net folds the two sides into one signed balance per the account's normal
// balance convention. A positive result sits on the account's natural side.
func (b AccountBalance) Net() decimal.Decimal {
	if b.NormalBalance == accounts.NormalBalanceCredit {
		return b.Credit.Sub(b.Debit)
	}
	return b.Debit.Sub(b.Credit)
}

// TrialBalanceLine re-expresses one account's net balance into a single
// debit or credit column, never both.
type TrialBalanceLine struct {
	AccountNumber string          `json:"account_number"`
	AccountName   string          `json:"account_name"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	DebitDisplay  string          `json:"debit_display"`
	CreditDisplay string          `json:"credit_display"`
}

// TrialBalance lists every account's net balance as of a date. The two
// totals must tie out when every underlying page is balanced.
type TrialBalance struct {
	AsOf         time.Time          `json:"as_of"`
	Currency     string             `json:"currency"`
	ExchangeRate decimal.Decimal    `json:"exchange_rate"`
	Lines        []TrialBalanceLine `json:"lines"`
	TotalDebit   decimal.Decimal    `json:"total_debit"`
	TotalCredit  decimal.Decimal    `json:"total_credit"`
	IsBalanced   bool               `json:"is_balanced"`
	HasData      bool               `json:"has_data"`
}

// BalanceSheetLine is one account inside a balance sheet group.
type BalanceSheetLine struct {
	AccountNumber string          `json:"account_number"`
	AccountName   string          `json:"account_name"`
	Balance       decimal.Decimal `json:"balance"`
	Display       string          `json:"display"`
}

// BalanceSheetSubGroup sums the accounts of one sub-category.
type BalanceSheetSubGroup struct {
	Name  string             `json:"name"`
	Lines []BalanceSheetLine `json:"lines"`
	Total decimal.Decimal    `json:"total"`
}

// BalanceSheetGroup buckets accounts of one class (per category) with
// sub-category subtotals.
type BalanceSheetGroup struct {
	Name      string                 `json:"name"`
	SubGroups []BalanceSheetSubGroup `json:"sub_groups"`
	Total     decimal.Decimal        `json:"total"`
}

// BalanceSheet states the accounting equation as of a date. Current-period
// profit or loss is folded into equity so the equation can hold without a
// closing entry.
type BalanceSheet struct {
	AsOf                      time.Time           `json:"as_of"`
	Currency                  string              `json:"currency"`
	ExchangeRate              decimal.Decimal     `json:"exchange_rate"`
	Assets                    []BalanceSheetGroup `json:"assets"`
	Liabilities               []BalanceSheetGroup `json:"liabilities"`
	Equity                    []BalanceSheetGroup `json:"equity"`
	TotalAssets               decimal.Decimal     `json:"total_assets"`
	TotalLiabilities          decimal.Decimal     `json:"total_liabilities"`
	TotalEquity               decimal.Decimal     `json:"total_equity"`
	NetProfitOrLoss           decimal.Decimal     `json:"net_profit_or_loss"`
	TotalLiabilitiesAndEquity decimal.Decimal     `json:"total_liabilities_and_equity"`
	IsBalanced                bool                `json:"is_balanced"`
	HasData                   bool                `json:"has_data"`
}
