package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rielbooks/rielbooks/internal/masterdata/items"
)

// EntryInput carries everything needed to build a ledger entry from a
// transacted quantity.
type EntryInput struct {
	ItemID           int64
	UnitID           int64
	DetailCode       string
	ConversionFactor int64
	Type             TransactionType
	Qty              decimal.Decimal
	CostPerBaseUnit  *decimal.Decimal
	SalePricePerUnit *decimal.Decimal
	Ref              string
	Description      string
	UserID           int64
}

// BuildEntry converts the transacted quantity to base units, applies the
// movement sign and freezes the conversion factor into the entry. The caller
// supplies the factor it resolved; this stays pure so document flows can
// reuse it inside their own transactions.
func BuildEntry(in EntryInput) (Log, error) {
	direction, err := in.Type.Direction()
	if err != nil {
		return Log{}, err
	}
	qtyBase, err := items.ToBaseQuantity(in.Qty, in.ConversionFactor)
	if err != nil {
		return Log{}, err
	}
	return Log{
		ItemID:           in.ItemID,
		UnitID:           in.UnitID,
		DetailCode:       in.DetailCode,
		Type:             in.Type,
		QtyTransacted:    in.Qty,
		ConversionFactor: in.ConversionFactor,
		QtyBase:          direction * qtyBase,
		CostPerBaseUnit:  in.CostPerBaseUnit,
		SalePricePerUnit: in.SalePricePerUnit,
		Ref:              in.Ref,
		Description:      in.Description,
		UserID:           in.UserID,
	}, nil
}

// BuildBreakdown expresses qtyBase in the given packaging factors, greedily
// from the largest factor down. Factors of 1 (the base unit itself) are
// skipped; whatever cannot fill a packaging unit remains in base units.
func BuildBreakdown(itemID, qtyBase int64, packagings []PackagingQuantity) StockBreakdown {
	breakdown := StockBreakdown{ItemID: itemID, QtyBase: qtyBase}

	sorted := make([]PackagingQuantity, 0, len(packagings))
	for _, p := range packagings {
		if p.ConversionFactor > 1 {
			sorted = append(sorted, p)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ConversionFactor > sorted[j].ConversionFactor
	})

	remaining := qtyBase
	if remaining < 0 {
		remaining = 0
	}
	for _, p := range sorted {
		p.Quantity = remaining / p.ConversionFactor
		remaining -= p.Quantity * p.ConversionFactor
		breakdown.Packaging = append(breakdown.Packaging, p)
	}
	breakdown.Remainder = remaining
	return breakdown
}
