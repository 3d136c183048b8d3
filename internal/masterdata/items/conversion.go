package items

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rielbooks/rielbooks/internal/shared"
)

var (
	// ErrBaseFactorNotOne indicates a base-unit packaging row with a factor other than 1.
	ErrBaseFactorNotOne = fmt.Errorf("%w: base unit packaging must have conversion factor 1", shared.ErrValidation)
	// ErrFactorTooSmall indicates a non-base packaging row with a factor below 2.
	// Factor 1 is reserved for the base unit row.
	ErrFactorTooSmall = fmt.Errorf("%w: packaging conversion factor must be greater than 1", shared.ErrValidation)
	// ErrNonPositiveQuantity indicates a quantity that is zero or negative.
	ErrNonPositiveQuantity = fmt.Errorf("%w: quantity must be positive", shared.ErrValidation)
	// ErrPackagingNotFound indicates no active packaging exists for an item/unit pair.
	ErrPackagingNotFound = fmt.Errorf("%w: no packaging for item and unit", shared.ErrNotFound)
	// ErrDuplicateDetail indicates a duplicate code or duplicate item-unit combination.
	ErrDuplicateDetail = fmt.Errorf("%w: duplicate code or duplicate item-unit combination", shared.ErrConflict)
	// ErrItemNotFound indicates a missing or disabled item.
	ErrItemNotFound = fmt.Errorf("%w: item", shared.ErrNotFound)
)

// ToBaseQuantity converts a transacted quantity into whole base units.
// Fractional results are rounded half away from zero, so base-unit stock is
// always an integer: 1.5 cases of 1000 kg becomes exactly 1500 kg, while
// 0.3 of a 3-pack rounds to 1.
func ToBaseQuantity(qty decimal.Decimal, factor int64) (int64, error) {
	if !qty.IsPositive() {
		return 0, ErrNonPositiveQuantity
	}
	if factor < 1 {
		return 0, ErrFactorTooSmall
	}
	return qty.Mul(decimal.NewFromInt(factor)).Round(0).IntPart(), nil
}

// ValidateFactor enforces the packaging factor rules for an item detail:
// the base-unit row must carry exactly 1, every other row more than 1.
func ValidateFactor(baseUnitID, unitID, factor int64) error {
	if unitID == baseUnitID {
		if factor != 1 {
			return ErrBaseFactorNotOne
		}
		return nil
	}
	if factor <= 1 {
		return ErrFactorTooSmall
	}
	return nil
}
