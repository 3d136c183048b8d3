package accounts

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	acctshared "github.com/rielbooks/rielbooks/internal/accounting/shared"
)

const uniqueViolation = "23505"

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Account, error)
	GetByNumber(ctx context.Context, number string) (Account, error)
	Create(ctx context.Context, account Account) (Account, error)
	Disable(ctx context.Context, number string) error

	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, category Category) (Category, error)
	ListSubCategories(ctx context.Context, categoryID int64) ([]SubCategory, error)
	CreateSubCategory(ctx context.Context, sub SubCategory) (SubCategory, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const accountColumns = `id, number, name, category_id, sub_category_id, normal_balance, currency, disabled, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Number, &a.Name, &a.CategoryID, &a.SubCategoryID, &a.NormalBalance, &a.Currency, &a.Disabled, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if !filters.IncludeDisabled {
		query += ` AND disabled = FALSE`
	}
	if filters.CategoryID != nil {
		argCount++
		query += ` AND category_id = $` + strconv.Itoa(argCount)
		args = append(args, *filters.CategoryID)
	}
	if filters.Search != "" {
		argCount++
		query += ` AND (name ILIKE $` + strconv.Itoa(argCount) + ` OR number ILIKE $` + strconv.Itoa(argCount) + `)`
		args = append(args, "%"+filters.Search+"%")
	}
	query += ` ORDER BY number ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *repository) GetByNumber(ctx context.Context, number string) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE number = $1`, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, acctshared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) Create(ctx context.Context, account Account) (Account, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO accounts (number, name, category_id, sub_category_id, normal_balance, currency, disabled, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW(), NOW()) RETURNING id, disabled, created_at, updated_at`,
		account.Number, account.Name, account.CategoryID, account.SubCategoryID, account.NormalBalance, account.Currency).
		Scan(&account.ID, &account.Disabled, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Account{}, acctshared.ErrDuplicateAccountNumber
		}
		return Account{}, err
	}
	return account, nil
}

func (r *repository) Disable(ctx context.Context, number string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET disabled = TRUE, updated_at = NOW() WHERE number = $1`, number)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return acctshared.ErrAccountNotFound
	}
	return nil
}

func (r *repository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, class FROM account_categories ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Class); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *repository) CreateCategory(ctx context.Context, category Category) (Category, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO account_categories (name, class) VALUES ($1, $2) RETURNING id`, category.Name, category.Class).
		Scan(&category.ID)
	if err != nil {
		return Category{}, err
	}
	return category, nil
}

func (r *repository) ListSubCategories(ctx context.Context, categoryID int64) ([]SubCategory, error) {
	rows, err := r.db.Query(ctx, `SELECT id, category_id, name FROM account_sub_categories WHERE category_id = $1 ORDER BY id ASC`, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SubCategory
	for rows.Next() {
		var s SubCategory
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *repository) CreateSubCategory(ctx context.Context, sub SubCategory) (SubCategory, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO account_sub_categories (category_id, name) VALUES ($1, $2) RETURNING id`, sub.CategoryID, sub.Name).
		Scan(&sub.ID)
	if err != nil {
		return SubCategory{}, err
	}
	return sub, nil
}
