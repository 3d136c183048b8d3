package sales

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rielbooks/rielbooks/internal/shared"
)

var (
	ErrNoLines            = fmt.Errorf("%w: sale requires at least one line", shared.ErrValidation)
	ErrSaleNotFound       = fmt.Errorf("%w: sale not found", shared.ErrNotFound)
	ErrNonPositivePrice   = fmt.Errorf("%w: unit price must be positive", shared.ErrValidation)
	ErrNonPositiveLineQty = fmt.Errorf("%w: line quantity must be positive", shared.ErrValidation)
	ErrInsufficientStock  = fmt.Errorf("%w: insufficient stock", shared.ErrConflict)
)

// Sale is the document header. Ref doubles as the journal page and
// inventory log reference.
type Sale struct {
	ID            int64           `json:"id"`
	Ref           string          `json:"ref"`
	CustomerName  string          `json:"customer_name,omitempty"`
	Description   string          `json:"description,omitempty"`
	Total         decimal.Decimal `json:"total"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	JournalPageID int64           `json:"journal_page_id"`
	UserID        int64           `json:"user_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	Lines         []SaleLine      `json:"lines,omitempty"`
}

// SaleLine is one item sold in one packaging unit. UnitPrice is per
// transacted unit; CostOfGoods is the base-unit average cost times the base
// quantity, frozen at posting time.
type SaleLine struct {
	ID               int64           `json:"id"`
	SaleID           int64           `json:"sale_id"`
	ItemID           int64           `json:"item_id"`
	UnitID           int64           `json:"unit_id"`
	Qty              decimal.Decimal `json:"qty"`
	ConversionFactor int64           `json:"conversion_factor"`
	QtyBase          int64           `json:"qty_base"`
	UnitPrice        decimal.Decimal `json:"unit_price"`
	LineTotal        decimal.Decimal `json:"line_total"`
	CostOfGoods      decimal.Decimal `json:"cost_of_goods"`
}

// ListFilter narrows sale listings.
type ListFilter struct {
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
