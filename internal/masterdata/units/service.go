package units

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

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Unit, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Unit, error) {
	if id <= 0 {
		return Unit{}, fmt.Errorf("%w: invalid unit id", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, unit Unit) (Unit, error) {
	if strings.TrimSpace(unit.Name) == "" {
		return Unit{}, fmt.Errorf("%w: unit name is required", shared.ErrValidation)
	}
	return s.repo.Create(ctx, unit)
}

// Disable soft-deletes a unit. A unit serving as any active item's base unit
// cannot be disabled, since all of that item's stock is stored in it.
func (s *Service) Disable(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid unit id", shared.ErrValidation)
	}
	inUse, err := s.repo.CountItemsUsingAsBase(ctx, id)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return fmt.Errorf("%w: unit is the base unit of %d item(s)", shared.ErrConflict, inUse)
	}
	return s.repo.Disable(ctx, id)
}
