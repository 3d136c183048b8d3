package inventory

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rielbooks/rielbooks/internal/shared"
)

// TransactionType enumerates supported inventory movements. Purchase and
// Sale are reserved for their document flows; manual recording accepts only
// the adjustment and opening types.
type TransactionType string

const (
	TransactionTypePurchase      TransactionType = "PURCHASE"
	TransactionTypeSale          TransactionType = "SALE"
	TransactionTypeAdjustmentIn  TransactionType = "ADJUSTMENT_IN"
	TransactionTypeAdjustmentOut TransactionType = "ADJUSTMENT_OUT"
	TransactionTypeOpening       TransactionType = "OPENING"
)

var (
	ErrUnknownType       = fmt.Errorf("%w: unknown inventory transaction type", shared.ErrValidation)
	ErrReservedType      = fmt.Errorf("%w: purchase and sale movements are created by their documents", shared.ErrValidation)
	ErrInvalidQuantity   = fmt.Errorf("%w: quantity must be positive", shared.ErrValidation)
	ErrInsufficientStock = fmt.Errorf("%w: insufficient stock", shared.ErrConflict)
	ErrLogNotFound       = fmt.Errorf("%w: inventory log entry not found", shared.ErrNotFound)
)

// Direction returns +1 for movements that add stock and -1 for movements
// that remove it.
func (t TransactionType) Direction() (int64, error) {
	switch t {
	case TransactionTypePurchase, TransactionTypeAdjustmentIn, TransactionTypeOpening:
		return 1, nil
	case TransactionTypeSale, TransactionTypeAdjustmentOut:
		return -1, nil
	default:
		return 0, ErrUnknownType
	}
}

// Reserved reports whether the type may only be written by a document flow.
func (t TransactionType) Reserved() bool {
	return t == TransactionTypePurchase || t == TransactionTypeSale
}

// Log is one append-only entry of the inventory ledger. Quantities are kept
// twice: QtyTransacted in the unit the user entered, QtyBase converted to the
// item's base unit with the conversion factor frozen at recording time. The
// base quantity carries the movement sign.
type Log struct {
	ID               int64            `json:"id"`
	ItemID           int64            `json:"item_id"`
	ItemName         string           `json:"item_name,omitempty"`
	DetailCode       string           `json:"detail_code,omitempty"`
	UnitID           int64            `json:"unit_id"`
	UnitName         string           `json:"unit_name,omitempty"`
	Type             TransactionType  `json:"type"`
	QtyTransacted    decimal.Decimal  `json:"qty_transacted"`
	ConversionFactor int64            `json:"conversion_factor"`
	QtyBase          int64            `json:"qty_base"`
	CostPerBaseUnit  *decimal.Decimal `json:"cost_per_base_unit,omitempty"`
	SalePricePerUnit *decimal.Decimal `json:"sale_price_per_unit,omitempty"`
	Ref              string           `json:"ref,omitempty"`
	Description      string           `json:"description,omitempty"`
	UserID           int64            `json:"user_id,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}

// PackagingQuantity is one line of a stock breakdown: how many of a
// packaging unit fit in the remaining base quantity.
type PackagingQuantity struct {
	UnitID           int64  `json:"unit_id"`
	UnitName         string `json:"unit_name"`
	ConversionFactor int64  `json:"conversion_factor"`
	Quantity         int64  `json:"quantity"`
}

// StockBreakdown expresses an item's base-unit stock in its packaging units,
// largest factor first, with the leftover in base units.
type StockBreakdown struct {
	ItemID    int64               `json:"item_id"`
	QtyBase   int64               `json:"qty_base"`
	Packaging []PackagingQuantity `json:"packaging"`
	Remainder int64               `json:"remainder"`
}

// ListFilter narrows log listings.
type ListFilter struct {
	ItemID   *int64
	Type     TransactionType
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
