package journals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	acctshared "github.com/rielbooks/rielbooks/internal/accounting/shared"
	"github.com/rielbooks/rielbooks/internal/shared"
)

// CacheBumper invalidates cached report payloads after postings change the
// ledger. Implementations must be safe for concurrent use.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// PostingMetrics records posting throughput counters.
type PostingMetrics interface {
	JournalPagePosted()
}

type Service struct {
	repo    Repository
	logger  *slog.Logger
	cache   CacheBumper
	metrics PostingMetrics
}

func NewService(repo Repository, logger *slog.Logger, cache CacheBumper, metrics PostingMetrics) *Service {
	return &Service{repo: repo, logger: logger, cache: cache, metrics: metrics}
}

// CreatePage validates and posts a balanced page atomically: either the page
// header and every post land together or nothing is written. Account names on
// the returned posts are denormalized from the chart of accounts at posting
// time.
func (s *Service) CreatePage(ctx context.Context, in PageInput) (Page, error) {
	if in.UserID == 0 {
		in.UserID = shared.ActorFromContext(ctx)
	}
	if err := in.Validate(); err != nil {
		return Page{}, err
	}

	var page Page
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		names := make(map[string]string, len(in.Entries))
		for _, entry := range in.Entries {
			if _, seen := names[entry.AccountNumber]; seen {
				continue
			}
			_, name, err := tx.GetPostingAccount(ctx, entry.AccountNumber)
			if err != nil {
				if errors.Is(err, acctshared.ErrAccountNotFound) {
					return fmt.Errorf("%w: unknown or disabled account %s", shared.ErrValidation, entry.AccountNumber)
				}
				return err
			}
			names[entry.AccountNumber] = name
		}

		created, err := tx.InsertPage(ctx, in)
		if err != nil {
			return err
		}
		if err := tx.InsertPosts(ctx, created.ID, in.Entries); err != nil {
			return err
		}

		for _, entry := range in.Entries {
			created.Posts = append(created.Posts, Post{
				PageID:        created.ID,
				AccountNumber: entry.AccountNumber,
				AccountName:   names[entry.AccountNumber],
				Ref:           entry.Ref,
				Description:   entry.Description,
				Debit:         entry.Debit,
				Credit:        entry.Credit,
			})
			created.TotalDebit = created.TotalDebit.Add(entry.Debit)
			created.TotalCredit = created.TotalCredit.Add(entry.Credit)
		}
		page = created
		return nil
	})
	if err != nil {
		return Page{}, err
	}

	if s.metrics != nil {
		s.metrics.JournalPagePosted()
	}
	s.bumpCache(ctx)
	return page, nil
}

func (s *Service) GetPage(ctx context.Context, id int64) (Page, error) {
	if id <= 0 {
		return Page{}, fmt.Errorf("%w: invalid page id", shared.ErrValidation)
	}
	return s.repo.GetPage(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Page, shared.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 200 {
		filter.PageSize = 50
	}
	pages, total, err := s.repo.ListPages(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return pages, shared.NewPagination(filter.Page, filter.PageSize, total), nil
}

// Disable marks a page inactive so reports skip it. The page and its posts
// stay on record.
func (s *Service) Disable(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid page id", shared.ErrValidation)
	}
	if err := s.repo.DisablePage(ctx, id); err != nil {
		return err
	}
	s.bumpCache(ctx)
	return nil
}

func (s *Service) bumpCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Bump(ctx); err != nil && s.logger != nil {
		s.logger.Warn("bump report cache", slog.Any("error", err))
	}
}
