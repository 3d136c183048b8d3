package procurement

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rielbooks/rielbooks/internal/shared"
)

// PaymentType selects the credit side of the purchase posting: cash
// purchases credit the cash account, credit purchases the payable account.
type PaymentType string

const (
	PaymentTypeCash   PaymentType = "CASH"
	PaymentTypeCredit PaymentType = "CREDIT"
)

var (
	ErrNoLines            = fmt.Errorf("%w: purchase requires at least one line", shared.ErrValidation)
	ErrInvalidPayment     = fmt.Errorf("%w: payment type must be CASH or CREDIT", shared.ErrValidation)
	ErrPurchaseNotFound   = fmt.Errorf("%w: purchase not found", shared.ErrNotFound)
	ErrNonPositiveCost    = fmt.Errorf("%w: unit cost must be positive", shared.ErrValidation)
	ErrNonPositiveLineQty = fmt.Errorf("%w: line quantity must be positive", shared.ErrValidation)
)

// Purchase is the document header. Ref doubles as the journal page and
// inventory log reference so the three records trace back to each other.
type Purchase struct {
	ID            int64           `json:"id"`
	Ref           string          `json:"ref"`
	SupplierName  string          `json:"supplier_name,omitempty"`
	PaymentType   PaymentType     `json:"payment_type"`
	Description   string          `json:"description,omitempty"`
	Total         decimal.Decimal `json:"total"`
	JournalPageID int64           `json:"journal_page_id"`
	UserID        int64           `json:"user_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	Lines         []PurchaseLine  `json:"lines,omitempty"`
}

// PurchaseLine is one item purchased in one packaging unit. The conversion
// factor and cost are frozen at posting time.
type PurchaseLine struct {
	ID               int64           `json:"id"`
	PurchaseID       int64           `json:"purchase_id"`
	ItemID           int64           `json:"item_id"`
	UnitID           int64           `json:"unit_id"`
	Qty              decimal.Decimal `json:"qty"`
	ConversionFactor int64           `json:"conversion_factor"`
	QtyBase          int64           `json:"qty_base"`
	UnitCost         decimal.Decimal `json:"unit_cost"`
	LineTotal        decimal.Decimal `json:"line_total"`
}

// ListFilter narrows purchase listings.
type ListFilter struct {
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
