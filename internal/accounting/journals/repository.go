package journals

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	acctshared "github.com/rielbooks/rielbooks/internal/accounting/shared"
	"github.com/rielbooks/rielbooks/internal/platform/db"
)

// Repository encapsulates DB operations for journal pages.
type Repository interface {
	GetPage(ctx context.Context, id int64) (Page, error)
	ListPages(ctx context.Context, filter ListFilter) ([]Page, int, error)
	DisablePage(ctx context.Context, id int64) error
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the operations available within a posting transaction.
type TxRepository interface {
	// GetPostingAccount resolves an account number to its id and display
	// name; disabled accounts are reported as missing.
	GetPostingAccount(ctx context.Context, number string) (id int64, name string, err error)
	InsertPage(ctx context.Context, in PageInput) (Page, error)
	InsertPosts(ctx context.Context, pageID int64, entries []EntryInput) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const pageColumns = `id, source, ref, description, currency, user_id, disabled, created_at`

func scanPage(row pgx.Row) (Page, error) {
	var p Page
	err := row.Scan(&p.ID, &p.Source, &p.Ref, &p.Description, &p.Currency, &p.UserID, &p.Disabled, &p.CreatedAt)
	return p, err
}

func (r *repository) GetPage(ctx context.Context, id int64) (Page, error) {
	page, err := scanPage(r.db.QueryRow(ctx, `SELECT `+pageColumns+` FROM journal_pages WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Page{}, acctshared.ErrPageNotFound
		}
		return Page{}, err
	}
	rows, err := r.db.Query(ctx, `SELECT p.id, p.page_id, p.account_number, a.name, p.ref, p.description, p.debit, p.credit
FROM journal_posts p
JOIN accounts a ON a.number = p.account_number
WHERE p.page_id = $1 ORDER BY p.id ASC`, id)
	if err != nil {
		return Page{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var post Post
		if err := rows.Scan(&post.ID, &post.PageID, &post.AccountNumber, &post.AccountName, &post.Ref, &post.Description, &post.Debit, &post.Credit); err != nil {
			return Page{}, err
		}
		page.Posts = append(page.Posts, post)
		page.TotalDebit = page.TotalDebit.Add(post.Debit)
		page.TotalCredit = page.TotalCredit.Add(post.Credit)
	}
	return page, rows.Err()
}

func (r *repository) ListPages(ctx context.Context, filter ListFilter) ([]Page, int, error) {
	query := `SELECT ` + pageColumns + ` FROM journal_pages WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM journal_pages WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	add := func(clause string, value interface{}) {
		argCount++
		placeholder := `$` + strconv.Itoa(argCount)
		query += ` AND ` + clause + placeholder
		countQuery += ` AND ` + clause + placeholder
		args = append(args, value)
	}

	if !filter.IncludeDisabled {
		query += ` AND disabled = FALSE`
		countQuery += ` AND disabled = FALSE`
	}
	if filter.From != nil {
		add(`created_at >= `, *filter.From)
	}
	if filter.To != nil {
		add(`created_at <= `, *filter.To)
	}
	if filter.RefContains != "" {
		add(`ref ILIKE `, "%"+filter.RefContains+"%")
	}
	if filter.SourceContains != "" {
		add(`source ILIKE `, "%"+filter.SourceContains+"%")
	}
	if filter.DescriptionContains != "" {
		add(`description ILIKE `, "%"+filter.DescriptionContains+"%")
	}
	if filter.UserID != nil {
		add(`user_id = `, *filter.UserID)
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

	var pages []Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, 0, err
		}
		pages = append(pages, p)
	}
	return pages, total, rows.Err()
}

func (r *repository) DisablePage(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `UPDATE journal_pages SET disabled = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return acctshared.ErrPageNotFound
	}
	return nil
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetPostingAccount(ctx context.Context, number string) (int64, string, error) {
	var id int64
	var name string
	err := r.tx.QueryRow(ctx, `SELECT id, name FROM accounts WHERE number = $1 AND disabled = FALSE`, number).Scan(&id, &name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, "", acctshared.ErrAccountNotFound
		}
		return 0, "", err
	}
	return id, name, nil
}

func (r *txRepository) InsertPage(ctx context.Context, in PageInput) (Page, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO journal_pages (source, ref, description, currency, user_id, disabled, created_at)
VALUES ($1, $2, $3, $4, $5, FALSE, NOW()) RETURNING id, created_at`,
		in.Source, in.Ref, in.Description, in.Currency, nullInt(in.UserID))
	page := Page{
		Source:      in.Source,
		Ref:         in.Ref,
		Description: in.Description,
		Currency:    in.Currency,
		UserID:      in.UserID,
	}
	if err := row.Scan(&page.ID, &page.CreatedAt); err != nil {
		return Page{}, err
	}
	return page, nil
}

func (r *txRepository) InsertPosts(ctx context.Context, pageID int64, entries []EntryInput) error {
	for _, entry := range entries {
		if _, err := r.tx.Exec(ctx, `INSERT INTO journal_posts (page_id, account_number, ref, description, debit, credit)
VALUES ($1, $2, $3, $4, $5, $6)`,
			pageID, entry.AccountNumber, entry.Ref, entry.Description, entry.Debit, entry.Credit); err != nil {
			return err
		}
	}
	return nil
}

func nullInt(val int64) any {
	if val == 0 {
		return nil
	}
	return val
}
