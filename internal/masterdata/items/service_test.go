package items

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rielbooks/rielbooks/internal/shared"
)

type memoryRepo struct {
	items   map[int64]Item
	details []ItemDetail
	nextID  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[int64]Item)}
}

func (r *memoryRepo) List(ctx context.Context, filters ListFilters) ([]Item, int, error) {
	var out []Item
	for _, it := range r.items {
		if it.Disabled && !filters.IncludeDisabled {
			continue
		}
		out = append(out, it)
	}
	return out, len(out), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Item, error) {
	it, ok := r.items[id]
	if !ok {
		return Item{}, ErrItemNotFound
	}
	return it, nil
}

func (r *memoryRepo) Create(ctx context.Context, item Item) (Item, error) {
	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = item
	return item, nil
}

func (r *memoryRepo) Disable(ctx context.Context, id int64) error {
	it, ok := r.items[id]
	if !ok {
		return ErrItemNotFound
	}
	it.Disabled = true
	r.items[id] = it
	return nil
}

func (r *memoryRepo) CreateDetail(ctx context.Context, detail ItemDetail) (ItemDetail, error) {
	for _, d := range r.details {
		if d.Disabled {
			continue
		}
		if d.Code == detail.Code || (d.ItemID == detail.ItemID && d.UnitID == detail.UnitID) {
			return ItemDetail{}, ErrDuplicateDetail
		}
	}
	r.nextID++
	detail.ID = r.nextID
	r.details = append(r.details, detail)
	return detail, nil
}

func (r *memoryRepo) ListDetails(ctx context.Context, itemID int64, includeDisabled bool) ([]ItemDetail, error) {
	var out []ItemDetail
	for _, d := range r.details {
		if d.ItemID != itemID {
			continue
		}
		if d.Disabled && !includeDisabled {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *memoryRepo) DisableDetail(ctx context.Context, id int64) error {
	for i, d := range r.details {
		if d.ID == id {
			r.details[i].Disabled = true
			return nil
		}
	}
	return ErrPackagingNotFound
}

func (r *memoryRepo) GetDetailByCode(ctx context.Context, code string) (ItemDetail, error) {
	for _, d := range r.details {
		if d.Code == code && !d.Disabled {
			return d, nil
		}
	}
	return ItemDetail{}, ErrPackagingNotFound
}

func (r *memoryRepo) ResolveActiveDetail(ctx context.Context, itemID, unitID int64) (ItemDetail, error) {
	item, ok := r.items[itemID]
	if !ok || item.Disabled {
		return ItemDetail{}, ErrPackagingNotFound
	}
	for _, d := range r.details {
		if d.ItemID == itemID && d.UnitID == unitID && !d.Disabled {
			return d, nil
		}
	}
	return ItemDetail{}, ErrPackagingNotFound
}

func TestCreateDetailBaseUnitFactorRule(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	rice, err := svc.Create(ctx, Item{Name: "Rice", BaseUnitID: 1})
	require.NoError(t, err)

	// Base unit packaging with factor != 1 is rejected.
	_, err = svc.CreateDetail(ctx, ItemDetail{Code: "RICE-KG", ItemID: rice.ID, UnitID: 1, ConversionFactor: 5})
	require.ErrorIs(t, err, ErrBaseFactorNotOne)

	base, err := svc.CreateDetail(ctx, ItemDetail{Code: "RICE-KG", ItemID: rice.ID, UnitID: 1, ConversionFactor: 1})
	require.NoError(t, err)
	require.EqualValues(t, 1, base.ConversionFactor)

	bag, err := svc.CreateDetail(ctx, ItemDetail{Code: "RICE-BAG25", ItemID: rice.ID, UnitID: 2, ConversionFactor: 25})
	require.NoError(t, err)
	require.EqualValues(t, 25, bag.ConversionFactor)
}

func TestCreateDetailRejectsDuplicates(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	rice, err := svc.Create(ctx, Item{Name: "Rice", BaseUnitID: 1})
	require.NoError(t, err)

	_, err = svc.CreateDetail(ctx, ItemDetail{Code: "RICE-BAG25", ItemID: rice.ID, UnitID: 2, ConversionFactor: 25})
	require.NoError(t, err)

	// Same code.
	_, err = svc.CreateDetail(ctx, ItemDetail{Code: "RICE-BAG25", ItemID: rice.ID, UnitID: 3, ConversionFactor: 50})
	require.ErrorIs(t, err, ErrDuplicateDetail)
	require.ErrorIs(t, err, shared.ErrConflict)

	// Same item-unit combination.
	_, err = svc.CreateDetail(ctx, ItemDetail{Code: "RICE-BAG25-B", ItemID: rice.ID, UnitID: 2, ConversionFactor: 25})
	require.ErrorIs(t, err, ErrDuplicateDetail)
}

func TestResolveFactorMissingPackaging(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	rice, err := svc.Create(ctx, Item{Name: "Rice", BaseUnitID: 1})
	require.NoError(t, err)

	_, err = svc.ResolveFactor(ctx, rice.ID, 99)
	require.ErrorIs(t, err, ErrPackagingNotFound)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
