package reports

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	acctshared "github.com/rielbooks/rielbooks/internal/accounting/shared"
)

// Params selects what a report computation covers. Zero values fall back to
// the configured defaults: AsOf to today, Currency and ExchangeRate to the
// service configuration. Reports have day granularity: AsOf is widened to the
// end of its calendar day before it is used.
type Params struct {
	AsOf         time.Time
	Currency     string
	ExchangeRate *decimal.Decimal
}

// Service computes reports over the ledger with caching and request
// deduplication. Identical concurrent requests share one database pass.
type Service struct {
	repo            Repository
	cache           *Cache
	logger          *slog.Logger
	defaultCurrency string
	defaultRate     decimal.Decimal
	group           singleflight.Group
}

func NewService(repo Repository, cache *Cache, logger *slog.Logger, defaultCurrency string, defaultRate decimal.Decimal) *Service {
	return &Service{
		repo:            repo,
		cache:           cache,
		logger:          logger,
		defaultCurrency: defaultCurrency,
		defaultRate:     defaultRate,
	}
}

func (s *Service) resolve(p Params) (time.Time, string, decimal.Decimal, error) {
	asOf := p.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}
	// cache keys carry the date only, so the cutoff must cover the whole day
	// or two intraday requests could share a key yet see different ledgers
	y, m, d := asOf.Date()
	asOf = time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), asOf.Location())
	currency := p.Currency
	if currency == "" {
		currency = s.defaultCurrency
	}
	switch currency {
	case "USD", "KHR":
	default:
		return time.Time{}, "", decimal.Zero, acctshared.ErrInvalidCurrency
	}
	rate := s.defaultRate
	if p.ExchangeRate != nil {
		rate = *p.ExchangeRate
	}
	if !rate.IsPositive() {
		return time.Time{}, "", decimal.Zero, acctshared.ErrInvalidExchangeRate
	}
	return asOf, currency, rate, nil
}

// TrialBalance derives the trial balance as of the given date.
func (s *Service) TrialBalance(ctx context.Context, p Params) (TrialBalance, error) {
	asOf, currency, rate, err := s.resolve(p)
	if err != nil {
		return TrialBalance{}, err
	}
	key, err := s.cache.BuildKey(ctx, keyTrialBalance(asOf, currency, rate.String()))
	if err != nil {
		return TrialBalance{}, err
	}
	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		var tb TrialBalance
		err := s.cache.FetchJSON(ctx, key, &tb, func(ctx context.Context) (interface{}, error) {
			balances, err := s.repo.AccountBalances(ctx, asOf)
			if err != nil {
				return nil, err
			}
			built := BuildTrialBalance(asOf, currency, rate, balances)
			if built.HasData && !built.IsBalanced && s.logger != nil {
				s.logger.Warn("trial balance does not tie out",
					slog.String("as_of", asOf.Format("2006-01-02")),
					slog.String("total_debit", built.TotalDebit.StringFixed(2)),
					slog.String("total_credit", built.TotalCredit.StringFixed(2)))
			}
			return built, nil
		})
		return tb, err
	})
	if err != nil {
		return TrialBalance{}, err
	}
	return result.(TrialBalance), nil
}

// BalanceSheet derives the balance sheet as of the given date. An equation
// mismatch is flagged on the result, not returned as an error, because the
// report is still useful for diagnosing the imbalance.
func (s *Service) BalanceSheet(ctx context.Context, p Params) (BalanceSheet, error) {
	asOf, currency, rate, err := s.resolve(p)
	if err != nil {
		return BalanceSheet{}, err
	}
	key, err := s.cache.BuildKey(ctx, keyBalanceSheet(asOf, currency, rate.String()))
	if err != nil {
		return BalanceSheet{}, err
	}
	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		var bs BalanceSheet
		err := s.cache.FetchJSON(ctx, key, &bs, func(ctx context.Context) (interface{}, error) {
			balances, err := s.repo.AccountBalances(ctx, asOf)
			if err != nil {
				return nil, err
			}
			built := BuildBalanceSheet(asOf, currency, rate, balances)
			if built.HasData && !built.IsBalanced && s.logger != nil {
				s.logger.Warn("balance sheet equation does not hold",
					slog.String("as_of", asOf.Format("2006-01-02")),
					slog.String("total_assets", built.TotalAssets.StringFixed(2)),
					slog.String("total_liabilities_and_equity", built.TotalLiabilitiesAndEquity.StringFixed(2)))
			}
			return built, nil
		})
		return bs, err
	})
	if err != nil {
		return BalanceSheet{}, err
	}
	return result.(BalanceSheet), nil
}

// Warm precomputes today's reports in the default configuration so the
// first interactive request after an invalidation hits the cache.
func (s *Service) Warm(ctx context.Context) error {
	if _, err := s.TrialBalance(ctx, Params{}); err != nil {
		return err
	}
	_, err := s.BalanceSheet(ctx, Params{})
	return err
}
