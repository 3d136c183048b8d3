package journals

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	acctshared "github.com/rielbooks/rielbooks/internal/accounting/shared"
	"github.com/rielbooks/rielbooks/internal/shared"
)

type memoryRepo struct {
	accounts   map[string]string
	accountErr error
	pages      []Page
	posts      []Post
	nextID     int64
}

func newMemoryRepo(accounts map[string]string) *memoryRepo {
	return &memoryRepo{accounts: accounts, nextID: 1}
}

func (m *memoryRepo) GetPage(_ context.Context, id int64) (Page, error) {
	for _, p := range m.pages {
		if p.ID == id {
			page := p
			for _, post := range m.posts {
				if post.PageID == id {
					page.Posts = append(page.Posts, post)
					page.TotalDebit = page.TotalDebit.Add(post.Debit)
					page.TotalCredit = page.TotalCredit.Add(post.Credit)
				}
			}
			return page, nil
		}
	}
	return Page{}, acctshared.ErrPageNotFound
}

func (m *memoryRepo) ListPages(_ context.Context, filter ListFilter) ([]Page, int, error) {
	var out []Page
	for _, p := range m.pages {
		if p.Disabled && !filter.IncludeDisabled {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *memoryRepo) DisablePage(_ context.Context, id int64) error {
	for i := range m.pages {
		if m.pages[i].ID == id {
			m.pages[i].Disabled = true
			return nil
		}
	}
	return acctshared.ErrPageNotFound
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memoryTx{repo: m}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	m.pages = append(m.pages, tx.pages...)
	m.posts = append(m.posts, tx.posts...)
	return nil
}

type memoryTx struct {
	repo  *memoryRepo
	pages []Page
	posts []Post
}

func (t *memoryTx) GetPostingAccount(_ context.Context, number string) (int64, string, error) {
	if t.repo.accountErr != nil {
		return 0, "", t.repo.accountErr
	}
	name, ok := t.repo.accounts[number]
	if !ok {
		return 0, "", acctshared.ErrAccountNotFound
	}
	return 1, name, nil
}

func (t *memoryTx) InsertPage(_ context.Context, in PageInput) (Page, error) {
	page := Page{
		ID:          t.repo.nextID,
		Source:      in.Source,
		Ref:         in.Ref,
		Description: in.Description,
		Currency:    in.Currency,
		UserID:      in.UserID,
		CreatedAt:   time.Now(),
	}
	t.repo.nextID++
	t.pages = append(t.pages, page)
	return page, nil
}

func (t *memoryTx) InsertPosts(_ context.Context, pageID int64, entries []EntryInput) error {
	for _, entry := range entries {
		t.posts = append(t.posts, Post{
			PageID:        pageID,
			AccountNumber: entry.AccountNumber,
			Ref:           entry.Ref,
			Description:   entry.Description,
			Debit:         entry.Debit,
			Credit:        entry.Credit,
		})
	}
	return nil
}

type fakeBumper struct{ calls int }

func (f *fakeBumper) Bump(context.Context) error {
	f.calls++
	return nil
}

type fakeMetrics struct{ posted int }

func (f *fakeMetrics) JournalPagePosted() { f.posted++ }

func defaultAccounts() map[string]string {
	return map[string]string{
		"1000": "Cash",
		"1200": "Inventory",
		"3000": "Owner Capital",
	}
}

func TestCreatePagePostsBalancedEntries(t *testing.T) {
	repo := newMemoryRepo(defaultAccounts())
	bumper := &fakeBumper{}
	metrics := &fakeMetrics{}
	svc := NewService(repo, nil, bumper, metrics)

	page, err := svc.CreatePage(context.Background(), PageInput{
		Source:      "manual",
		Description: "owner contribution",
		Entries: []EntryInput{
			{AccountNumber: "1000", Debit: dec("100.00")},
			{AccountNumber: "3000", Credit: dec("100.00")},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, page.ID)
	require.Len(t, page.Posts, 2)
	require.Equal(t, "Cash", page.Posts[0].AccountName)
	require.Equal(t, "Owner Capital", page.Posts[1].AccountName)
	require.True(t, page.TotalDebit.Equal(dec("100.00")))
	require.True(t, page.TotalCredit.Equal(dec("100.00")))

	require.Len(t, repo.pages, 1)
	require.Len(t, repo.posts, 2)
	require.Equal(t, 1, bumper.calls)
	require.Equal(t, 1, metrics.posted)
}

func TestCreatePageRejectsUnknownAccountAtomically(t *testing.T) {
	repo := newMemoryRepo(defaultAccounts())
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.CreatePage(context.Background(), PageInput{
		Source: "manual",
		Entries: []EntryInput{
			{AccountNumber: "1000", Debit: dec("50.00")},
			{AccountNumber: "9999", Credit: dec("50.00")},
		},
	})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Contains(t, err.Error(), "9999")

	require.Empty(t, repo.pages)
	require.Empty(t, repo.posts)
}

func TestCreatePageAccountLookupFailurePropagates(t *testing.T) {
	repo := newMemoryRepo(defaultAccounts())
	repo.accountErr = errors.New("connection reset")
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.CreatePage(context.Background(), PageInput{
		Source: "manual",
		Entries: []EntryInput{
			{AccountNumber: "1000", Debit: dec("50.00")},
			{AccountNumber: "3000", Credit: dec("50.00")},
		},
	})
	require.ErrorIs(t, err, repo.accountErr)
	require.NotErrorIs(t, err, shared.ErrValidation)
	require.Empty(t, repo.pages)
}

func TestCreatePageRejectsUnbalancedBeforeStorage(t *testing.T) {
	repo := newMemoryRepo(defaultAccounts())
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.CreatePage(context.Background(), PageInput{
		Source: "manual",
		Entries: []EntryInput{
			{AccountNumber: "1000", Debit: dec("100.00")},
			{AccountNumber: "3000", Credit: dec("90.00")},
		},
	})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Empty(t, repo.pages)
}

func TestCreatePageTakesActorFromContext(t *testing.T) {
	repo := newMemoryRepo(defaultAccounts())
	svc := NewService(repo, nil, nil, nil)

	ctx := shared.ContextWithActor(context.Background(), 42)
	page, err := svc.CreatePage(ctx, PageInput{
		Source: "manual",
		Entries: []EntryInput{
			{AccountNumber: "1000", Debit: dec("10.00")},
			{AccountNumber: "3000", Credit: dec("10.00")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, int64(42), page.UserID)
}

func TestDisablePageHidesFromDefaultListing(t *testing.T) {
	repo := newMemoryRepo(defaultAccounts())
	bumper := &fakeBumper{}
	svc := NewService(repo, nil, bumper, nil)

	page, err := svc.CreatePage(context.Background(), PageInput{
		Source: "manual",
		Entries: []EntryInput{
			{AccountNumber: "1000", Debit: dec("10.00")},
			{AccountNumber: "3000", Credit: dec("10.00")},
		},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Disable(context.Background(), page.ID))

	pages, _, err := svc.List(context.Background(), ListFilter{})
	require.NoError(t, err)
	require.Empty(t, pages)

	pages, _, err = svc.List(context.Background(), ListFilter{IncludeDisabled: true})
	require.NoError(t, err)
	require.Len(t, pages, 1)
	require.True(t, pages[0].Disabled)

	// one bump for the posting, one for the disable
	require.Equal(t, 2, bumper.calls)
}

func TestGetPageNotFound(t *testing.T) {
	svc := NewService(newMemoryRepo(nil), nil, nil, nil)
	_, err := svc.GetPage(context.Background(), 123)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
