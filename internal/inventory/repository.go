package inventory

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rielbooks/rielbooks/internal/platform/db"
	"github.com/rielbooks/rielbooks/internal/shared"
)

// Repository encapsulates DB operations for the inventory ledger.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Log, int, error)
	Get(ctx context.Context, id int64) (Log, error)
	CurrentStock(ctx context.Context, itemID int64) (int64, error)
	ListPackagings(ctx context.Context, itemID int64) ([]PackagingQuantity, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the operations available while recording an entry.
// The stock check and the insert run under the same snapshot; LockStock
// orders the check against concurrent appends for the same item.
type TxRepository interface {
	LockStock(ctx context.Context, itemID int64) error
	CurrentStock(ctx context.Context, itemID int64) (int64, error)
	Insert(ctx context.Context, entry Log) (Log, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const logSelect = `SELECT l.id, l.item_id, i.name, l.detail_code, l.unit_id, u.name, l.type,
	l.qty_transacted, l.conversion_factor, l.qty_base, l.cost_per_base_unit, l.sale_price_per_unit,
	l.ref, l.description, l.user_id, l.created_at
FROM inventory_logs l
JOIN items i ON i.id = l.item_id
JOIN units u ON u.id = l.unit_id`

func scanLog(row pgx.Row) (Log, error) {
	var l Log
	err := row.Scan(&l.ID, &l.ItemID, &l.ItemName, &l.DetailCode, &l.UnitID, &l.UnitName, &l.Type,
		&l.QtyTransacted, &l.ConversionFactor, &l.QtyBase, &l.CostPerBaseUnit, &l.SalePricePerUnit,
		&l.Ref, &l.Description, &l.UserID, &l.CreatedAt)
	return l, err
}

func (r *repository) Get(ctx context.Context, id int64) (Log, error) {
	l, err := scanLog(r.db.QueryRow(ctx, logSelect+` WHERE l.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Log{}, ErrLogNotFound
	}
	return l, err
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Log, int, error) {
	where := ``
	countWhere := ``
	args := []interface{}{}
	argCount := 0

	add := func(clause string, value interface{}) {
		argCount++
		cond := ` AND ` + clause + `$` + strconv.Itoa(argCount)
		where += cond
		countWhere += cond
		args = append(args, value)
	}

	if filter.ItemID != nil {
		add(`l.item_id = `, *filter.ItemID)
	}
	if filter.Type != "" {
		add(`l.type = `, string(filter.Type))
	}
	if filter.From != nil {
		add(`l.created_at >= `, *filter.From)
	}
	if filter.To != nil {
		add(`l.created_at <= `, *filter.To)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_logs l WHERE 1=1`+countWhere, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := logSelect + ` WHERE 1=1` + where + ` ORDER BY l.created_at DESC, l.id DESC`
	if filter.PageSize > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filter.PageSize)

		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		offset := (filter.Page - 1) * filter.PageSize
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

	var logs []Log
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, 0, err
		}
		logs = append(logs, l)
	}
	return logs, total, rows.Err()
}

func (r *repository) CurrentStock(ctx context.Context, itemID int64) (int64, error) {
	return currentStock(ctx, r.db, itemID)
}

func (r *repository) ListPackagings(ctx context.Context, itemID int64) ([]PackagingQuantity, error) {
	rows, err := r.db.Query(ctx, `SELECT d.unit_id, u.name, d.conversion_factor
FROM item_details d
JOIN units u ON u.id = d.unit_id
WHERE d.item_id = $1 AND d.disabled = FALSE
ORDER BY d.conversion_factor DESC`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var packagings []PackagingQuantity
	for rows.Next() {
		var p PackagingQuantity
		if err := rows.Scan(&p.UnitID, &p.UnitName, &p.ConversionFactor); err != nil {
			return nil, err
		}
		packagings = append(packagings, p)
	}
	return packagings, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func currentStock(ctx context.Context, q querier, itemID int64) (int64, error) {
	var qty int64
	err := q.QueryRow(ctx, `SELECT COALESCE(SUM(qty_base), 0) FROM inventory_logs WHERE item_id = $1`, itemID).Scan(&qty)
	return qty, err
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) LockStock(ctx context.Context, itemID int64) error {
	_, err := r.tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, shared.StockLockKey(itemID))
	return err
}

func (r *txRepository) CurrentStock(ctx context.Context, itemID int64) (int64, error) {
	return currentStock(ctx, r.tx, itemID)
}

func (r *txRepository) Insert(ctx context.Context, entry Log) (Log, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO inventory_logs
	(item_id, detail_code, unit_id, type, qty_transacted, conversion_factor, qty_base,
	 cost_per_base_unit, sale_price_per_unit, ref, description, user_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
RETURNING id, created_at`,
		entry.ItemID, entry.DetailCode, entry.UnitID, string(entry.Type),
		entry.QtyTransacted, entry.ConversionFactor, entry.QtyBase,
		entry.CostPerBaseUnit, entry.SalePricePerUnit,
		entry.Ref, entry.Description, nullActor(entry.UserID))
	if err := row.Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return Log{}, err
	}
	return entry, nil
}

func nullActor(val int64) any {
	if val == 0 {
		return nil
	}
	return val
}
