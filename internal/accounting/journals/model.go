package journals

import (
	"time"

	"github.com/shopspring/decimal"
)

// Page is the atomic unit of journal entry: a balanced group of postings
// created in a single transaction and never mutated afterwards. Disabling a
// page excludes it from default report aggregation without destroying history.
type Page struct {
	ID          int64           `json:"id"`
	Source      string          `json:"source"`
	Ref         string          `json:"ref,omitempty"`
	Description string          `json:"description,omitempty"`
	Currency    string          `json:"currency,omitempty"`
	UserID      int64           `json:"user_id,omitempty"`
	Disabled    bool            `json:"disabled"`
	CreatedAt   time.Time       `json:"created_at"`
	Posts       []Post          `json:"posts,omitempty"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
}

// Post is a single debit or credit line against one account within a page.
// AccountNumber is the business key; AccountName is denormalized for display.
type Post struct {
	ID            int64           `json:"id"`
	PageID        int64           `json:"page_id"`
	AccountNumber string          `json:"account_number"`
	AccountName   string          `json:"account_name,omitempty"`
	Ref           string          `json:"ref,omitempty"`
	Description   string          `json:"description,omitempty"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
}

// ListFilter narrows page listings. Disabled pages are excluded unless
// IncludeDisabled is set.
type ListFilter struct {
	From                *time.Time
	To                  *time.Time
	RefContains         string
	SourceContains      string
	DescriptionContains string
	UserID              *int64
	IncludeDisabled     bool
	Page                int
	PageSize            int
}
