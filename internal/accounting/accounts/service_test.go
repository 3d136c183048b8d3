package accounts

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	acctshared "github.com/rielbooks/rielbooks/internal/accounting/shared"
	"github.com/rielbooks/rielbooks/internal/shared"
)

type memoryRepo struct {
	accounts   map[string]Account
	categories []Category
	nextID     int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{accounts: map[string]Account{}, nextID: 1}
}

func (m *memoryRepo) List(_ context.Context, filters ListFilters) ([]Account, error) {
	var out []Account
	for _, a := range m.accounts {
		if a.Disabled && !filters.IncludeDisabled {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memoryRepo) GetByNumber(_ context.Context, number string) (Account, error) {
	a, ok := m.accounts[number]
	if !ok {
		return Account{}, acctshared.ErrAccountNotFound
	}
	return a, nil
}

func (m *memoryRepo) Create(_ context.Context, account Account) (Account, error) {
	if _, ok := m.accounts[account.Number]; ok {
		return Account{}, acctshared.ErrDuplicateAccountNumber
	}
	account.ID = m.nextID
	m.nextID++
	m.accounts[account.Number] = account
	return account, nil
}

func (m *memoryRepo) Disable(_ context.Context, number string) error {
	a, ok := m.accounts[number]
	if !ok {
		return acctshared.ErrAccountNotFound
	}
	a.Disabled = true
	m.accounts[number] = a
	return nil
}

func (m *memoryRepo) ListCategories(_ context.Context) ([]Category, error) {
	return m.categories, nil
}

func (m *memoryRepo) CreateCategory(_ context.Context, category Category) (Category, error) {
	category.ID = m.nextID
	m.nextID++
	m.categories = append(m.categories, category)
	return category, nil
}

func (m *memoryRepo) ListSubCategories(_ context.Context, _ int64) ([]SubCategory, error) {
	return nil, nil
}

func (m *memoryRepo) CreateSubCategory(_ context.Context, sub SubCategory) (SubCategory, error) {
	sub.ID = m.nextID
	m.nextID++
	return sub, nil
}

func TestCreateDefaultsCurrencyToUSD(t *testing.T) {
	svc := NewService(newMemoryRepo())

	created, err := svc.Create(context.Background(), Account{
		Number:        "1000",
		Name:          "Cash on Hand",
		CategoryID:    1,
		NormalBalance: NormalBalanceDebit,
	})
	require.NoError(t, err)
	require.Equal(t, "USD", created.Currency)
	require.NotZero(t, created.ID)
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc := NewService(newMemoryRepo())

	cases := []struct {
		name    string
		account Account
		want    error
	}{
		{"missing number", Account{Name: "Cash", CategoryID: 1, NormalBalance: NormalBalanceDebit}, shared.ErrValidation},
		{"missing name", Account{Number: "1000", CategoryID: 1, NormalBalance: NormalBalanceDebit}, shared.ErrValidation},
		{"missing category", Account{Number: "1000", Name: "Cash", NormalBalance: NormalBalanceDebit}, shared.ErrValidation},
		{"bad normal balance", Account{Number: "1000", Name: "Cash", CategoryID: 1, NormalBalance: "SIDEWAYS"}, acctshared.ErrInvalidNormalBalance},
		{"bad currency", Account{Number: "1000", Name: "Cash", CategoryID: 1, NormalBalance: NormalBalanceDebit, Currency: "EUR"}, acctshared.ErrInvalidCurrency},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.account)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCreateRejectsDuplicateNumber(t *testing.T) {
	svc := NewService(newMemoryRepo())

	first := Account{Number: "1000", Name: "Cash", CategoryID: 1, NormalBalance: NormalBalanceDebit}
	_, err := svc.Create(context.Background(), first)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), Account{Number: "1000", Name: "Petty Cash", CategoryID: 1, NormalBalance: NormalBalanceDebit})
	require.ErrorIs(t, err, acctshared.ErrDuplicateAccountNumber)
	require.True(t, errors.Is(err, shared.ErrConflict))
}

func TestDisableHidesAccountFromDefaultListing(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), Account{Number: "1000", Name: "Cash", CategoryID: 1, NormalBalance: NormalBalanceDebit})
	require.NoError(t, err)

	require.NoError(t, svc.Disable(context.Background(), "1000"))

	visible, err := svc.List(context.Background(), ListFilters{})
	require.NoError(t, err)
	require.Empty(t, visible)

	all, err := svc.List(context.Background(), ListFilters{IncludeDisabled: true})
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestCreateCategoryValidatesClass(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.CreateCategory(context.Background(), Category{Name: "Fixed Assets", Class: ClassAsset})
	require.NoError(t, err)

	_, err = svc.CreateCategory(context.Background(), Category{Name: "Mystery", Class: "OTHER"})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestGetByNumberNotFound(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.GetByNumber(context.Background(), "9999")
	require.ErrorIs(t, err, shared.ErrNotFound)
}
