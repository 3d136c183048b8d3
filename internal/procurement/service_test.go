package procurement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	acctshared "github.com/rielbooks/rielbooks/internal/accounting/shared"
	"github.com/rielbooks/rielbooks/internal/accounting/journals"
	"github.com/rielbooks/rielbooks/internal/inventory"
	"github.com/rielbooks/rielbooks/internal/masterdata/items"
	"github.com/rielbooks/rielbooks/internal/shared"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type memoryRepo struct {
	accounts   map[string]string
	accountErr error
	purchases  []Purchase
	lines      []PurchaseLine
	logs       []inventory.Log
	pages      []journals.PageInput
	nextID     int64
}

func newMemoryRepo(accounts map[string]string) *memoryRepo {
	return &memoryRepo{accounts: accounts, nextID: 1}
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Purchase, error) {
	for _, p := range m.purchases {
		if p.ID == id {
			return p, nil
		}
	}
	return Purchase{}, ErrPurchaseNotFound
}

func (m *memoryRepo) List(context.Context, ListFilter) ([]Purchase, int, error) {
	return m.purchases, len(m.purchases), nil
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memoryTx{repo: m}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	m.purchases = append(m.purchases, tx.purchases...)
	m.lines = append(m.lines, tx.lines...)
	m.logs = append(m.logs, tx.logs...)
	m.pages = append(m.pages, tx.pages...)
	return nil
}

type memoryTx struct {
	repo      *memoryRepo
	purchases []Purchase
	lines     []PurchaseLine
	logs      []inventory.Log
	pages     []journals.PageInput
}

func (t *memoryTx) InsertPurchase(_ context.Context, p Purchase) (Purchase, error) {
	p.ID = t.repo.nextID
	p.CreatedAt = time.Now()
	t.repo.nextID++
	t.purchases = append(t.purchases, p)
	return p, nil
}

func (t *memoryTx) InsertLine(_ context.Context, line PurchaseLine) (PurchaseLine, error) {
	line.ID = t.repo.nextID
	t.repo.nextID++
	t.lines = append(t.lines, line)
	return line, nil
}

func (t *memoryTx) InsertInventoryLog(_ context.Context, entry inventory.Log) error {
	t.logs = append(t.logs, entry)
	return nil
}

func (t *memoryTx) GetPostingAccount(_ context.Context, number string) (string, error) {
	if t.repo.accountErr != nil {
		return "", t.repo.accountErr
	}
	name, ok := t.repo.accounts[number]
	if !ok {
		return "", acctshared.ErrAccountNotFound
	}
	return name, nil
}

func (t *memoryTx) InsertJournalPage(_ context.Context, in journals.PageInput) (int64, error) {
	t.pages = append(t.pages, in)
	id := t.repo.nextID
	t.repo.nextID++
	return id, nil
}

func (t *memoryTx) SetJournalPage(_ context.Context, purchaseID, pageID int64) error {
	for i := range t.purchases {
		if t.purchases[i].ID == purchaseID {
			t.purchases[i].JournalPageID = pageID
		}
	}
	return nil
}

type staticResolver struct {
	details map[[2]int64]items.ItemDetail
}

func (r *staticResolver) ResolveFactor(_ context.Context, itemID, unitID int64) (items.ItemDetail, error) {
	d, ok := r.details[[2]int64{itemID, unitID}]
	if !ok {
		return items.ItemDetail{}, items.ErrPackagingNotFound
	}
	return d, nil
}

func (r *staticResolver) GetDetailByCode(_ context.Context, code string) (items.ItemDetail, error) {
	for _, d := range r.details {
		if d.Code == code {
			return d, nil
		}
	}
	return items.ItemDetail{}, items.ErrPackagingNotFound
}

type fakeBumper struct{ calls int }

func (f *fakeBumper) Bump(context.Context) error {
	f.calls++
	return nil
}

type fakeMetrics struct {
	pages int
	logs  int
}

func (f *fakeMetrics) JournalPagePosted()    { f.pages++ }
func (f *fakeMetrics) InventoryLogRecorded() { f.logs++ }

type fakeAudit struct{ records []shared.AuditLog }

func (f *fakeAudit) Record(_ context.Context, log shared.AuditLog) error {
	f.records = append(f.records, log)
	return nil
}

var testAccounts = PostingAccounts{Cash: "1000", Inventory: "1200", Payable: "2100"}

func chartOfAccounts() map[string]string {
	return map[string]string{"1000": "Cash", "1200": "Inventory", "2100": "Accounts Payable"}
}

func riceResolver() *staticResolver {
	return &staticResolver{details: map[[2]int64]items.ItemDetail{
		{7, 2}: {ItemID: 7, UnitID: 2, Code: "RICE-BAG25", ConversionFactor: 25},
	}}
}

func newTestService(repo *memoryRepo) (*Service, *fakeBumper, *fakeMetrics, *fakeAudit) {
	bumper := &fakeBumper{}
	metrics := &fakeMetrics{}
	audit := &fakeAudit{}
	svc := NewService(repo, riceResolver(), audit, bumper, metrics, nil, testAccounts)
	return svc, bumper, metrics, audit
}

func TestCreatePostsDocumentLedgerAndJournalTogether(t *testing.T) {
	repo := newMemoryRepo(chartOfAccounts())
	svc, bumper, metrics, audit := newTestService(repo)

	purchase, err := svc.Create(context.Background(), CreateInput{
		SupplierName: "Mekong Trading",
		PaymentType:  PaymentTypeCredit,
		Description:  "rice restock",
		Lines: []LineInput{
			{ItemID: 7, UnitID: 2, Qty: dec("2"), UnitCost: dec("30.00")},
		},
	})
	require.NoError(t, err)
	require.NotEmpty(t, purchase.Ref)
	require.True(t, purchase.Total.Equal(dec("60.00")))
	require.NotZero(t, purchase.JournalPageID)

	require.Len(t, repo.lines, 1)
	require.Equal(t, int64(50), repo.lines[0].QtyBase)

	require.Len(t, repo.logs, 1)
	require.Equal(t, inventory.TransactionTypePurchase, repo.logs[0].Type)
	require.Equal(t, int64(50), repo.logs[0].QtyBase)
	require.NotNil(t, repo.logs[0].CostPerBaseUnit)
	require.True(t, repo.logs[0].CostPerBaseUnit.Equal(dec("1.2")), "30.00 per 25kg bag = 1.20 per kg")

	require.Len(t, repo.pages, 1)
	page := repo.pages[0]
	require.Equal(t, "purchase", page.Source)
	require.NoError(t, page.Validate())
	require.Equal(t, "1200", page.Entries[0].AccountNumber)
	require.True(t, page.Entries[0].Debit.Equal(dec("60.00")))
	require.Equal(t, "2100", page.Entries[1].AccountNumber)
	require.True(t, page.Entries[1].Credit.Equal(dec("60.00")))

	require.Equal(t, 1, bumper.calls)
	require.Equal(t, 1, metrics.pages)
	require.Equal(t, 1, metrics.logs)
	require.Len(t, audit.records, 1)
	require.Equal(t, "purchase.posted", audit.records[0].Action)
}

func TestCreateCashPurchaseCreditsCash(t *testing.T) {
	repo := newMemoryRepo(chartOfAccounts())
	svc, _, _, _ := newTestService(repo)

	_, err := svc.Create(context.Background(), CreateInput{
		PaymentType: PaymentTypeCash,
		Lines:       []LineInput{{ItemID: 7, UnitID: 2, Qty: dec("1"), UnitCost: dec("30.00")}},
	})
	require.NoError(t, err)
	require.Equal(t, "1000", repo.pages[0].Entries[1].AccountNumber)
}

func TestCreateRejectsMissingPostingAccountAtomically(t *testing.T) {
	repo := newMemoryRepo(map[string]string{"1200": "Inventory"})
	svc, _, _, _ := newTestService(repo)

	_, err := svc.Create(context.Background(), CreateInput{
		PaymentType: PaymentTypeCredit,
		Lines:       []LineInput{{ItemID: 7, UnitID: 2, Qty: dec("1"), UnitCost: dec("30.00")}},
	})
	require.ErrorIs(t, err, shared.ErrValidation)

	require.Empty(t, repo.purchases)
	require.Empty(t, repo.logs)
	require.Empty(t, repo.pages)
}

func TestCreateByDetailCode(t *testing.T) {
	repo := newMemoryRepo(chartOfAccounts())
	svc, _, _, _ := newTestService(repo)

	purchase, err := svc.Create(context.Background(), CreateInput{
		PaymentType: PaymentTypeCash,
		Lines: []LineInput{
			{DetailCode: "RICE-BAG25", Qty: dec("2"), UnitCost: dec("30.00")},
		},
	})
	require.NoError(t, err)
	require.Equal(t, int64(7), purchase.Lines[0].ItemID)
	require.Equal(t, int64(2), purchase.Lines[0].UnitID)
	require.Equal(t, int64(50), purchase.Lines[0].QtyBase)
}

func TestCreateDetailCodeItemMismatch(t *testing.T) {
	repo := newMemoryRepo(chartOfAccounts())
	svc, _, _, _ := newTestService(repo)

	_, err := svc.Create(context.Background(), CreateInput{
		PaymentType: PaymentTypeCash,
		Lines: []LineInput{
			{DetailCode: "RICE-BAG25", ItemID: 9, Qty: dec("1"), UnitCost: dec("30.00")},
		},
	})
	require.ErrorIs(t, err, shared.ErrValidation)
	require.Empty(t, repo.purchases)
}

func TestCreateAccountLookupFailurePropagates(t *testing.T) {
	repo := newMemoryRepo(chartOfAccounts())
	repo.accountErr = errors.New("connection reset")
	svc, _, _, _ := newTestService(repo)

	_, err := svc.Create(context.Background(), CreateInput{
		PaymentType: PaymentTypeCash,
		Lines:       []LineInput{{ItemID: 7, UnitID: 2, Qty: dec("1"), UnitCost: dec("30.00")}},
	})
	require.ErrorIs(t, err, repo.accountErr)
	require.NotErrorIs(t, err, shared.ErrValidation)
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc, _, _, _ := newTestService(newMemoryRepo(chartOfAccounts()))

	_, err := svc.Create(context.Background(), CreateInput{PaymentType: PaymentTypeCash})
	require.ErrorIs(t, err, ErrNoLines)

	_, err = svc.Create(context.Background(), CreateInput{
		PaymentType: "TRANSFER",
		Lines:       []LineInput{{ItemID: 7, UnitID: 2, Qty: dec("1"), UnitCost: dec("1")}},
	})
	require.ErrorIs(t, err, ErrInvalidPayment)

	_, err = svc.Create(context.Background(), CreateInput{
		PaymentType: PaymentTypeCash,
		Lines:       []LineInput{{ItemID: 7, UnitID: 2, Qty: dec("0"), UnitCost: dec("1")}},
	})
	require.ErrorIs(t, err, ErrNonPositiveLineQty)

	_, err = svc.Create(context.Background(), CreateInput{
		PaymentType: PaymentTypeCash,
		Lines:       []LineInput{{ItemID: 7, UnitID: 2, Qty: dec("1"), UnitCost: dec("-1")}},
	})
	require.ErrorIs(t, err, ErrNonPositiveCost)
}

func TestCreateUnknownPackaging(t *testing.T) {
	svc, _, _, _ := newTestService(newMemoryRepo(chartOfAccounts()))
	_, err := svc.Create(context.Background(), CreateInput{
		PaymentType: PaymentTypeCash,
		Lines:       []LineInput{{ItemID: 7, UnitID: 99, Qty: dec("1"), UnitCost: dec("1")}},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
}
