package journals

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	acctshared "github.com/rielbooks/rielbooks/internal/accounting/shared"
	"github.com/rielbooks/rielbooks/internal/shared"
)

// BalanceTolerance is the largest accepted difference between a page's
// debit and credit totals, absorbing currency rounding residue.
var BalanceTolerance = decimal.RequireFromString("0.005")

// EntryInput describes one posting line of a page to be created.
type EntryInput struct {
	AccountNumber string
	Ref           string
	Description   string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
}

// PageInput groups the fields required to create a journal page.
type PageInput struct {
	Source      string
	Ref         string
	Description string
	Currency    string
	UserID      int64
	Entries     []EntryInput
}

// Validate enforces the balanced-entry rule and per-line constraints before
// anything touches storage. A line may leave both sides zero (memo line) but
// never carry both a debit and a credit.
func (in PageInput) Validate() error {
	if strings.TrimSpace(in.Source) == "" {
		return fmt.Errorf("%w: journal source is required", shared.ErrValidation)
	}
	if len(in.Entries) == 0 {
		return acctshared.ErrNoEntries
	}
	switch in.Currency {
	case "", "USD", "KHR":
	default:
		return acctshared.ErrInvalidCurrency
	}
	debits := decimal.Zero
	credits := decimal.Zero
	for idx, entry := range in.Entries {
		if strings.TrimSpace(entry.AccountNumber) == "" {
			return fmt.Errorf("%w: entry %d missing account number", shared.ErrValidation, idx)
		}
		if entry.Debit.IsNegative() || entry.Credit.IsNegative() {
			return fmt.Errorf("entry %d: %w", idx, acctshared.ErrNegativeAmount)
		}
		if entry.Debit.IsPositive() && entry.Credit.IsPositive() {
			return fmt.Errorf("entry %d: %w", idx, acctshared.ErrBothSides)
		}
		debits = debits.Add(entry.Debit)
		credits = credits.Add(entry.Credit)
	}
	if debits.Sub(credits).Abs().GreaterThan(BalanceTolerance) {
		return fmt.Errorf("%w: journal entries are not balanced: debits=%s credits=%s",
			shared.ErrValidation, debits.StringFixed(2), credits.StringFixed(2))
	}
	return nil
}

// Totals returns the summed debit and credit sides of the input.
func (in PageInput) Totals() (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, entry := range in.Entries {
		debits = debits.Add(entry.Debit)
		credits = credits.Add(entry.Credit)
	}
	return debits, credits
}
