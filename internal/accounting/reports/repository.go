package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository fetches the raw per-account aggregates the builders consume.
type Repository interface {
	AccountBalances(ctx context.Context, asOf time.Time) ([]AccountBalance, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// AccountBalances returns every active account with its lifetime debit and
// credit sums as of the report date. Posts on disabled pages are excluded;
// accounts without any activity still appear with zero sums.
func (r *repository) AccountBalances(ctx context.Context, asOf time.Time) ([]AccountBalance, error) {
	rows, err := r.db.Query(ctx, `SELECT a.number, a.name, a.normal_balance, a.currency,
	c.class, c.name, COALESCE(sc.name, ''),
	COALESCE(SUM(p.debit), 0), COALESCE(SUM(p.credit), 0)
FROM accounts a
JOIN account_categories c ON c.id = a.category_id
LEFT JOIN account_sub_categories sc ON sc.id = a.sub_category_id
LEFT JOIN journal_posts p ON p.account_number = a.number
	AND p.page_id IN (SELECT id FROM journal_pages WHERE disabled = FALSE AND created_at <= $1)
WHERE a.disabled = FALSE
GROUP BY a.number, a.name, a.normal_balance, a.currency, c.class, c.name, sc.name
ORDER BY a.number`, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []AccountBalance
	for rows.Next() {
		var b AccountBalance
		if err := rows.Scan(&b.Number, &b.Name, &b.NormalBalance, &b.Currency,
			&b.Class, &b.Category, &b.SubCategory, &b.Debit, &b.Credit); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}
