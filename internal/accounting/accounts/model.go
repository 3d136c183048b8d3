package accounts

import "time"

// NormalBalance says on which side an account's natural positive balance accumulates.
type NormalBalance string

const (
	NormalBalanceDebit  NormalBalance = "DEBIT"
	NormalBalanceCredit NormalBalance = "CREDIT"
)

// Class buckets categories for balance sheet grouping.
type Class string

const (
	ClassAsset     Class = "ASSET"
	ClassLiability Class = "LIABILITY"
	ClassEquity    Class = "EQUITY"
	ClassIncome    Class = "INCOME"
	ClassExpense   Class = "EXPENSE"
)

// Account models a chart of accounts node. Number is the business key used
// by journal postings.
type Account struct {
	ID            int64         `json:"id"`
	Number        string        `json:"number"`
	Name          string        `json:"name"`
	CategoryID    int64         `json:"category_id"`
	SubCategoryID *int64        `json:"sub_category_id,omitempty"`
	NormalBalance NormalBalance `json:"normal_balance"`
	Currency      string        `json:"currency"`
	Disabled      bool          `json:"disabled"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Category classifies accounts for reporting.
type Category struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Class Class  `json:"class"`
}

// SubCategory refines a category, e.g. Assets -> Cash.
type SubCategory struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
}

// ListFilters narrows account listings.
type ListFilters struct {
	Search          string
	CategoryID      *int64
	IncludeDisabled bool
}
