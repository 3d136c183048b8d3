package sales

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	acctshared "github.com/rielbooks/rielbooks/internal/accounting/shared"
	"github.com/rielbooks/rielbooks/internal/accounting/journals"
	"github.com/rielbooks/rielbooks/internal/inventory"
	"github.com/rielbooks/rielbooks/internal/platform/db"
	"github.com/rielbooks/rielbooks/internal/shared"
)

// Repository encapsulates DB operations for sales.
type Repository interface {
	Get(ctx context.Context, id int64) (Sale, error)
	List(ctx context.Context, filter ListFilter) ([]Sale, int, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository covers every read and write of the posting transaction. The
// stock check, the average-cost lookup and all inserts share one snapshot;
// the inventory and journal inserts are duplicated here because they must
// run on this transaction's connection.
type TxRepository interface {
	LockStock(ctx context.Context, itemID int64) error
	CurrentStock(ctx context.Context, itemID int64) (int64, error)
	AverageCost(ctx context.Context, itemID int64) (decimal.Decimal, error)
	InsertSale(ctx context.Context, s Sale) (Sale, error)
	InsertLine(ctx context.Context, line SaleLine) (SaleLine, error)
	InsertInventoryLog(ctx context.Context, entry inventory.Log) error
	GetPostingAccount(ctx context.Context, number string) (string, error)
	InsertJournalPage(ctx context.Context, in journals.PageInput) (int64, error)
	SetJournalPage(ctx context.Context, saleID, pageID int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const saleColumns = `id, ref, customer_name, description, total, total_cost, journal_page_id, user_id, created_at`

func scanSale(row pgx.Row) (Sale, error) {
	var s Sale
	err := row.Scan(&s.ID, &s.Ref, &s.CustomerName, &s.Description, &s.Total, &s.TotalCost, &s.JournalPageID, &s.UserID, &s.CreatedAt)
	return s, err
}

func (r *repository) Get(ctx context.Context, id int64) (Sale, error) {
	s, err := scanSale(r.db.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Sale{}, ErrSaleNotFound
		}
		return Sale{}, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, sale_id, item_id, unit_id, qty, conversion_factor, qty_base, unit_price, line_total, cost_of_goods
FROM sale_lines WHERE sale_id = $1 ORDER BY id ASC`, id)
	if err != nil {
		return Sale{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line SaleLine
		if err := rows.Scan(&line.ID, &line.SaleID, &line.ItemID, &line.UnitID, &line.Qty,
			&line.ConversionFactor, &line.QtyBase, &line.UnitPrice, &line.LineTotal, &line.CostOfGoods); err != nil {
			return Sale{}, err
		}
		s.Lines = append(s.Lines, line)
	}
	return s, rows.Err()
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Sale, int, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM sales WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	add := func(clause string, value interface{}) {
		argCount++
		cond := ` AND ` + clause + `$` + strconv.Itoa(argCount)
		query += cond
		countQuery += cond
		args = append(args, value)
	}
	if filter.From != nil {
		add(`created_at >= `, *filter.From)
	}
	if filter.To != nil {
		add(`created_at <= `, *filter.To)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY created_at DESC, id DESC`
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

	var sales []Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, 0, err
		}
		sales = append(sales, s)
	}
	return sales, total, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

// LockStock serialises stock checks for one item until the transaction ends.
func (r *txRepository) LockStock(ctx context.Context, itemID int64) error {
	_, err := r.tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, shared.StockLockKey(itemID))
	return err
}

func (r *txRepository) CurrentStock(ctx context.Context, itemID int64) (int64, error) {
	var qty int64
	err := r.tx.QueryRow(ctx, `SELECT COALESCE(SUM(qty_base), 0) FROM inventory_logs WHERE item_id = $1`, itemID).Scan(&qty)
	return qty, err
}

// AverageCost weights cost over every inbound entry that carries one.
func (r *txRepository) AverageCost(ctx context.Context, itemID int64) (decimal.Decimal, error) {
	var avg decimal.Decimal
	err := r.tx.QueryRow(ctx, `SELECT COALESCE(SUM(qty_base * cost_per_base_unit) / NULLIF(SUM(qty_base), 0), 0)
FROM inventory_logs
WHERE item_id = $1 AND qty_base > 0 AND cost_per_base_unit IS NOT NULL`, itemID).Scan(&avg)
	return avg, err
}

func (r *txRepository) InsertSale(ctx context.Context, s Sale) (Sale, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO sales (ref, customer_name, description, total, total_cost, journal_page_id, user_id, created_at)
VALUES ($1, $2, $3, $4, $5, 0, $6, NOW()) RETURNING id, created_at`,
		s.Ref, s.CustomerName, s.Description, s.Total, s.TotalCost, nullActor(s.UserID))
	if err := row.Scan(&s.ID, &s.CreatedAt); err != nil {
		return Sale{}, err
	}
	return s, nil
}

func (r *txRepository) InsertLine(ctx context.Context, line SaleLine) (SaleLine, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO sale_lines (sale_id, item_id, unit_id, qty, conversion_factor, qty_base, unit_price, line_total, cost_of_goods)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		line.SaleID, line.ItemID, line.UnitID, line.Qty, line.ConversionFactor, line.QtyBase, line.UnitPrice, line.LineTotal, line.CostOfGoods)
	if err := row.Scan(&line.ID); err != nil {
		return SaleLine{}, err
	}
	return line, nil
}

func (r *txRepository) InsertInventoryLog(ctx context.Context, entry inventory.Log) error {
	_, err := r.tx.Exec(ctx, `INSERT INTO inventory_logs
	(item_id, detail_code, unit_id, type, qty_transacted, conversion_factor, qty_base,
	 cost_per_base_unit, sale_price_per_unit, ref, description, user_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())`,
		entry.ItemID, entry.DetailCode, entry.UnitID, string(entry.Type),
		entry.QtyTransacted, entry.ConversionFactor, entry.QtyBase,
		entry.CostPerBaseUnit, entry.SalePricePerUnit,
		entry.Ref, entry.Description, nullActor(entry.UserID))
	return err
}

func (r *txRepository) GetPostingAccount(ctx context.Context, number string) (string, error) {
	var name string
	err := r.tx.QueryRow(ctx, `SELECT name FROM accounts WHERE number = $1 AND disabled = FALSE`, number).Scan(&name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", acctshared.ErrAccountNotFound
		}
		return "", err
	}
	return name, nil
}

func (r *txRepository) InsertJournalPage(ctx context.Context, in journals.PageInput) (int64, error) {
	var pageID int64
	err := r.tx.QueryRow(ctx, `INSERT INTO journal_pages (source, ref, description, currency, user_id, disabled, created_at)
VALUES ($1, $2, $3, $4, $5, FALSE, NOW()) RETURNING id`,
		in.Source, in.Ref, in.Description, in.Currency, nullActor(in.UserID)).Scan(&pageID)
	if err != nil {
		return 0, err
	}
	for _, entry := range in.Entries {
		if _, err := r.tx.Exec(ctx, `INSERT INTO journal_posts (page_id, account_number, ref, description, debit, credit)
VALUES ($1, $2, $3, $4, $5, $6)`,
			pageID, entry.AccountNumber, entry.Ref, entry.Description, entry.Debit, entry.Credit); err != nil {
			return 0, err
		}
	}
	return pageID, nil
}

func (r *txRepository) SetJournalPage(ctx context.Context, saleID, pageID int64) error {
	_, err := r.tx.Exec(ctx, `UPDATE sales SET journal_page_id = $1 WHERE id = $2`, pageID, saleID)
	return err
}

func nullActor(val int64) any {
	if val == 0 {
		return nil
	}
	return val
}
