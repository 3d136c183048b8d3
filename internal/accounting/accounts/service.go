package accounts

import (
	"context"
	"fmt"
	"strings"

	acctshared "github.com/rielbooks/rielbooks/internal/accounting/shared"
	"github.com/rielbooks/rielbooks/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Account, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) GetByNumber(ctx context.Context, number string) (Account, error) {
	if strings.TrimSpace(number) == "" {
		return Account{}, fmt.Errorf("%w: account number is required", shared.ErrValidation)
	}
	return s.repo.GetByNumber(ctx, number)
}

// Create registers an account. The normal balance side is fixed here and
// never changes afterwards; reporting relies on it for sign conventions.
func (s *Service) Create(ctx context.Context, account Account) (Account, error) {
	if strings.TrimSpace(account.Number) == "" {
		return Account{}, fmt.Errorf("%w: account number is required", shared.ErrValidation)
	}
	if strings.TrimSpace(account.Name) == "" {
		return Account{}, fmt.Errorf("%w: account name is required", shared.ErrValidation)
	}
	if account.CategoryID <= 0 {
		return Account{}, fmt.Errorf("%w: account category is required", shared.ErrValidation)
	}
	switch account.NormalBalance {
	case NormalBalanceDebit, NormalBalanceCredit:
	default:
		return Account{}, acctshared.ErrInvalidNormalBalance
	}
	switch account.Currency {
	case "USD", "KHR":
	case "":
		account.Currency = "USD"
	default:
		return Account{}, acctshared.ErrInvalidCurrency
	}
	return s.repo.Create(ctx, account)
}

func (s *Service) Disable(ctx context.Context, number string) error {
	if strings.TrimSpace(number) == "" {
		return fmt.Errorf("%w: account number is required", shared.ErrValidation)
	}
	return s.repo.Disable(ctx, number)
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, category Category) (Category, error) {
	if strings.TrimSpace(category.Name) == "" {
		return Category{}, fmt.Errorf("%w: category name is required", shared.ErrValidation)
	}
	switch category.Class {
	case ClassAsset, ClassLiability, ClassEquity, ClassIncome, ClassExpense:
	default:
		return Category{}, fmt.Errorf("%w: unknown category class %q", shared.ErrValidation, category.Class)
	}
	return s.repo.CreateCategory(ctx, category)
}

func (s *Service) ListSubCategories(ctx context.Context, categoryID int64) ([]SubCategory, error) {
	if categoryID <= 0 {
		return nil, fmt.Errorf("%w: invalid category id", shared.ErrValidation)
	}
	return s.repo.ListSubCategories(ctx, categoryID)
}

func (s *Service) CreateSubCategory(ctx context.Context, sub SubCategory) (SubCategory, error) {
	if sub.CategoryID <= 0 {
		return SubCategory{}, fmt.Errorf("%w: invalid category id", shared.ErrValidation)
	}
	if strings.TrimSpace(sub.Name) == "" {
		return SubCategory{}, fmt.Errorf("%w: sub-category name is required", shared.ErrValidation)
	}
	return s.repo.CreateSubCategory(ctx, sub)
}
