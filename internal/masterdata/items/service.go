package items

import (
	"context"
	"fmt"
	"strings"

	"github.com/rielbooks/rielbooks/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Item, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Item, error) {
	if id <= 0 {
		return Item{}, fmt.Errorf("%w: invalid item id", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, item Item) (Item, error) {
	if strings.TrimSpace(item.Name) == "" {
		return Item{}, fmt.Errorf("%w: item name is required", shared.ErrValidation)
	}
	if item.BaseUnitID <= 0 {
		return Item{}, fmt.Errorf("%w: base unit is required", shared.ErrValidation)
	}
	return s.repo.Create(ctx, item)
}

func (s *Service) Disable(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid item id", shared.ErrValidation)
	}
	return s.repo.Disable(ctx, id)
}

// CreateDetail registers a packaging variant. The factor rules of
// ValidateFactor apply; uniqueness of (item, unit) and code is enforced by
// the storage layer and surfaced as ErrDuplicateDetail.
func (s *Service) CreateDetail(ctx context.Context, detail ItemDetail) (ItemDetail, error) {
	if strings.TrimSpace(detail.Code) == "" {
		return ItemDetail{}, fmt.Errorf("%w: packaging code is required", shared.ErrValidation)
	}
	if detail.UnitID <= 0 {
		return ItemDetail{}, fmt.Errorf("%w: unit is required", shared.ErrValidation)
	}
	if detail.Price != nil && detail.Price.IsNegative() {
		return ItemDetail{}, fmt.Errorf("%w: price must not be negative", shared.ErrValidation)
	}
	item, err := s.repo.Get(ctx, detail.ItemID)
	if err != nil {
		return ItemDetail{}, err
	}
	if item.Disabled {
		return ItemDetail{}, ErrItemNotFound
	}
	if err := ValidateFactor(item.BaseUnitID, detail.UnitID, detail.ConversionFactor); err != nil {
		return ItemDetail{}, err
	}
	return s.repo.CreateDetail(ctx, detail)
}

func (s *Service) ListDetails(ctx context.Context, itemID int64, includeDisabled bool) ([]ItemDetail, error) {
	if itemID <= 0 {
		return nil, fmt.Errorf("%w: invalid item id", shared.ErrValidation)
	}
	return s.repo.ListDetails(ctx, itemID, includeDisabled)
}

func (s *Service) DisableDetail(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid packaging id", shared.ErrValidation)
	}
	return s.repo.DisableDetail(ctx, id)
}

func (s *Service) GetDetailByCode(ctx context.Context, code string) (ItemDetail, error) {
	if strings.TrimSpace(code) == "" {
		return ItemDetail{}, fmt.Errorf("%w: packaging code is required", shared.ErrValidation)
	}
	return s.repo.GetDetailByCode(ctx, code)
}

// ResolveFactor looks up the active packaging for (item, unit) and returns
// its conversion factor snapshot. Missing or disabled rows surface as
// ErrPackagingNotFound.
func (s *Service) ResolveFactor(ctx context.Context, itemID, unitID int64) (ItemDetail, error) {
	if itemID <= 0 || unitID <= 0 {
		return ItemDetail{}, fmt.Errorf("%w: item and unit are required", shared.ErrValidation)
	}
	return s.repo.ResolveActiveDetail(ctx, itemID, unitID)
}
