package categories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rielbooks/rielbooks/internal/shared"
)

type memoryRepo struct {
	categories map[int64]Category
	itemCounts map[int64]int
	nextID     int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{categories: map[int64]Category{}, itemCounts: map[int64]int{}, nextID: 1}
}

func (m *memoryRepo) List(_ context.Context, filters ListFilters) ([]Category, int, error) {
	var out []Category
	for _, c := range m.categories {
		if c.Disabled && !filters.IncludeDisabled {
			continue
		}
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return Category{}, shared.ErrNotFound
	}
	return c, nil
}

func (m *memoryRepo) Create(_ context.Context, category Category) (Category, error) {
	category.ID = m.nextID
	m.nextID++
	m.categories[category.ID] = category
	return category, nil
}

func (m *memoryRepo) Disable(_ context.Context, id int64) error {
	c, ok := m.categories[id]
	if !ok {
		return shared.ErrNotFound
	}
	c.Disabled = true
	m.categories[id] = c
	return nil
}

func (m *memoryRepo) CountItems(_ context.Context, id int64) (int, error) {
	return m.itemCounts[id], nil
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), Category{Name: ""})
	require.ErrorIs(t, err, shared.ErrValidation)

	created, err := svc.Create(context.Background(), Category{Name: "Beverages"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)
}

func TestDisableRejectedWhileCategoryInUse(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), Category{Name: "Beverages"})
	require.NoError(t, err)
	repo.itemCounts[created.ID] = 2

	err = svc.Disable(context.Background(), created.ID)
	require.ErrorIs(t, err, shared.ErrConflict)

	repo.itemCounts[created.ID] = 0
	require.NoError(t, svc.Disable(context.Background(), created.ID))
}
