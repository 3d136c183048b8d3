package procurement

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	acctshared "github.com/rielbooks/rielbooks/internal/accounting/shared"
	"github.com/rielbooks/rielbooks/internal/accounting/journals"
	"github.com/rielbooks/rielbooks/internal/inventory"
	"github.com/rielbooks/rielbooks/internal/platform/db"
)

// Repository encapsulates DB operations for purchases.
type Repository interface {
	Get(ctx context.Context, id int64) (Purchase, error)
	List(ctx context.Context, filter ListFilter) ([]Purchase, int, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository covers every write of the posting transaction: document,
// inventory entries and journal page land together or not at all. The
// inventory and journal inserts are duplicated here because they must run on
// this transaction's connection.
type TxRepository interface {
	InsertPurchase(ctx context.Context, p Purchase) (Purchase, error)
	InsertLine(ctx context.Context, line PurchaseLine) (PurchaseLine, error)
	InsertInventoryLog(ctx context.Context, entry inventory.Log) error
	GetPostingAccount(ctx context.Context, number string) (string, error)
	InsertJournalPage(ctx context.Context, in journals.PageInput) (int64, error)
	SetJournalPage(ctx context.Context, purchaseID, pageID int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const purchaseColumns = `id, ref, supplier_name, payment_type, description, total, journal_page_id, user_id, created_at`

func scanPurchase(row pgx.Row) (Purchase, error) {
	var p Purchase
	err := row.Scan(&p.ID, &p.Ref, &p.SupplierName, &p.PaymentType, &p.Description, &p.Total, &p.JournalPageID, &p.UserID, &p.CreatedAt)
	return p, err
}

func (r *repository) Get(ctx context.Context, id int64) (Purchase, error) {
	p, err := scanPurchase(r.db.QueryRow(ctx, `SELECT `+purchaseColumns+` FROM purchases WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Purchase{}, ErrPurchaseNotFound
		}
		return Purchase{}, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, purchase_id, item_id, unit_id, qty, conversion_factor, qty_base, unit_cost, line_total
FROM purchase_lines WHERE purchase_id = $1 ORDER BY id ASC`, id)
	if err != nil {
		return Purchase{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line PurchaseLine
		if err := rows.Scan(&line.ID, &line.PurchaseID, &line.ItemID, &line.UnitID, &line.Qty,
			&line.ConversionFactor, &line.QtyBase, &line.UnitCost, &line.LineTotal); err != nil {
			return Purchase{}, err
		}
		p.Lines = append(p.Lines, line)
	}
	return p, rows.Err()
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Purchase, int, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM purchases WHERE 1=1`
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

	var purchases []Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, 0, err
		}
		purchases = append(purchases, p)
	}
	return purchases, total, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) InsertPurchase(ctx context.Context, p Purchase) (Purchase, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO purchases (ref, supplier_name, payment_type, description, total, journal_page_id, user_id, created_at)
VALUES ($1, $2, $3, $4, $5, 0, $6, NOW()) RETURNING id, created_at`,
		p.Ref, p.SupplierName, string(p.PaymentType), p.Description, p.Total, nullActor(p.UserID))
	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		return Purchase{}, err
	}
	return p, nil
}

func (r *txRepository) InsertLine(ctx context.Context, line PurchaseLine) (PurchaseLine, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO purchase_lines (purchase_id, item_id, unit_id, qty, conversion_factor, qty_base, unit_cost, line_total)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		line.PurchaseID, line.ItemID, line.UnitID, line.Qty, line.ConversionFactor, line.QtyBase, line.UnitCost, line.LineTotal)
	if err := row.Scan(&line.ID); err != nil {
		return PurchaseLine{}, err
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

func (r *txRepository) SetJournalPage(ctx context.Context, purchaseID, pageID int64) error {
	_, err := r.tx.Exec(ctx, `UPDATE purchases SET journal_page_id = $1 WHERE id = $2`, pageID, purchaseID)
	return err
}

func nullActor(val int64) any {
	if val == 0 {
		return nil
	}
	return val
}
