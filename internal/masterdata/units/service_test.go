package units

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rielbooks/rielbooks/internal/shared"
)

type memoryRepo struct {
	units      map[int64]Unit
	baseCounts map[int64]int
	nextID     int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{units: map[int64]Unit{}, baseCounts: map[int64]int{}, nextID: 1}
}

func (m *memoryRepo) List(_ context.Context, filters ListFilters) ([]Unit, int, error) {
	var out []Unit
	for _, u := range m.units {
		if u.Disabled && !filters.IncludeDisabled {
			continue
		}
		out = append(out, u)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Unit, error) {
	u, ok := m.units[id]
	if !ok {
		return Unit{}, shared.ErrNotFound
	}
	return u, nil
}

func (m *memoryRepo) Create(_ context.Context, unit Unit) (Unit, error) {
	unit.ID = m.nextID
	m.nextID++
	m.units[unit.ID] = unit
	return unit, nil
}

func (m *memoryRepo) Disable(_ context.Context, id int64) error {
	u, ok := m.units[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.Disabled = true
	m.units[id] = u
	return nil
}

func (m *memoryRepo) CountItemsUsingAsBase(_ context.Context, id int64) (int, error) {
	return m.baseCounts[id], nil
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), Unit{Name: "   "})
	require.ErrorIs(t, err, shared.ErrValidation)

	created, err := svc.Create(context.Background(), Unit{Name: "kg"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
}

func TestDisableRejectedWhileUnitIsABaseUnit(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), Unit{Name: "kg"})
	require.NoError(t, err)
	repo.baseCounts[created.ID] = 3

	err = svc.Disable(context.Background(), created.ID)
	require.ErrorIs(t, err, shared.ErrConflict)
	require.Contains(t, err.Error(), "3 item(s)")

	repo.baseCounts[created.ID] = 0
	require.NoError(t, svc.Disable(context.Background(), created.ID))

	visible, _, err := svc.List(context.Background(), ListFilters{})
	require.NoError(t, err)
	require.Empty(t, visible)
}

func TestGetValidatesID(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Get(context.Background(), 0)
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.Get(context.Background(), 42)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
