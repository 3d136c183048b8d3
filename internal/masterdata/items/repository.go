package items

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Item, int, error)
	Get(ctx context.Context, id int64) (Item, error)
	Create(ctx context.Context, item Item) (Item, error)
	Disable(ctx context.Context, id int64) error

	CreateDetail(ctx context.Context, detail ItemDetail) (ItemDetail, error)
	ListDetails(ctx context.Context, itemID int64, includeDisabled bool) ([]ItemDetail, error)
	DisableDetail(ctx context.Context, id int64) error
	GetDetailByCode(ctx context.Context, code string) (ItemDetail, error)
	ResolveActiveDetail(ctx context.Context, itemID, unitID int64) (ItemDetail, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const itemColumns = `id, name, category_id, base_unit_id, disabled, created_at, updated_at`

func scanItem(row pgx.Row) (Item, error) {
	var it Item
	err := row.Scan(&it.ID, &it.Name, &it.CategoryID, &it.BaseUnitID, &it.Disabled, &it.CreatedAt, &it.UpdatedAt)
	return it, err
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Item, int, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM items WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if !filters.IncludeDisabled {
		query += ` AND disabled = FALSE`
		countQuery += ` AND disabled = FALSE`
	}
	if filters.CategoryID != nil {
		argCount++
		query += ` AND category_id = $` + strconv.Itoa(argCount)
		countQuery += ` AND category_id = $` + strconv.Itoa(argCount)
		args = append(args, *filters.CategoryID)
	}
	if filters.Search != "" {
		argCount++
		query += ` AND name ILIKE $` + strconv.Itoa(argCount)
		countQuery += ` AND name ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name ASC`
	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var result []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, it)
	}
	return result, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Item, error) {
	it, err := scanItem(r.db.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, ErrItemNotFound
		}
		return Item{}, err
	}
	return it, nil
}

func (r *repository) Create(ctx context.Context, item Item) (Item, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO items (name, category_id, base_unit_id, disabled, created_at, updated_at)
VALUES ($1, $2, $3, FALSE, NOW(), NOW()) RETURNING id, disabled, created_at, updated_at`,
		item.Name, item.CategoryID, item.BaseUnitID).
		Scan(&item.ID, &item.Disabled, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Item{}, err
	}
	return item, nil
}

func (r *repository) Disable(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE items SET disabled = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

const detailColumns = `id, code, item_id, unit_id, conversion_factor, price, disabled, created_at, updated_at`

func scanDetail(row pgx.Row) (ItemDetail, error) {
	var d ItemDetail
	err := row.Scan(&d.ID, &d.Code, &d.ItemID, &d.UnitID, &d.ConversionFactor, &d.Price, &d.Disabled, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (r *repository) CreateDetail(ctx context.Context, detail ItemDetail) (ItemDetail, error) {
	err := r.db.QueryRow(ctx, `INSERT INTO item_details (code, item_id, unit_id, conversion_factor, price, disabled, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, FALSE, NOW(), NOW()) RETURNING id, disabled, created_at, updated_at`,
		detail.Code, detail.ItemID, detail.UnitID, detail.ConversionFactor, detail.Price).
		Scan(&detail.ID, &detail.Disabled, &detail.CreatedAt, &detail.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ItemDetail{}, ErrDuplicateDetail
		}
		return ItemDetail{}, err
	}
	return detail, nil
}

func (r *repository) ListDetails(ctx context.Context, itemID int64, includeDisabled bool) ([]ItemDetail, error) {
	query := `SELECT ` + detailColumns + ` FROM item_details WHERE item_id = $1`
	if !includeDisabled {
		query += ` AND disabled = FALSE`
	}
	query += ` ORDER BY conversion_factor ASC`
	rows, err := r.db.Query(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ItemDetail
	for rows.Next() {
		d, err := scanDetail(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

func (r *repository) DisableDetail(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE item_details SET disabled = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrPackagingNotFound
	}
	return nil
}

func (r *repository) GetDetailByCode(ctx context.Context, code string) (ItemDetail, error) {
	d, err := scanDetail(r.db.QueryRow(ctx, `SELECT `+detailColumns+` FROM item_details WHERE code = $1 AND disabled = FALSE`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ItemDetail{}, ErrPackagingNotFound
		}
		return ItemDetail{}, err
	}
	return d, nil
}

// ResolveActiveDetail loads the packaging row for (item, unit) where neither
// the detail, the unit, nor the item is disabled.
func (r *repository) ResolveActiveDetail(ctx context.Context, itemID, unitID int64) (ItemDetail, error) {
	d, err := scanDetail(r.db.QueryRow(ctx, `SELECT d.`+detailColumnsQualified(`d`)+`
FROM item_details d
JOIN items i ON i.id = d.item_id AND i.disabled = FALSE
JOIN units u ON u.id = d.unit_id AND u.disabled = FALSE
WHERE d.item_id = $1 AND d.unit_id = $2 AND d.disabled = FALSE`, itemID, unitID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ItemDetail{}, ErrPackagingNotFound
		}
		return ItemDetail{}, err
	}
	return d, nil
}

func detailColumnsQualified(alias string) string {
	return `id, ` + alias + `.code, ` + alias + `.item_id, ` + alias + `.unit_id, ` + alias + `.conversion_factor, ` + alias + `.price, ` + alias + `.disabled, ` + alias + `.created_at, ` + alias + `.updated_at`
}
