package procurement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	acctshared "github.com/rielbooks/rielbooks/internal/accounting/shared"
	"github.com/rielbooks/rielbooks/internal/accounting/journals"
	"github.com/rielbooks/rielbooks/internal/inventory"
	"github.com/rielbooks/rielbooks/internal/masterdata/items"
	"github.com/rielbooks/rielbooks/internal/shared"
)

// PackagingResolver looks up active packagings, either by their code or by
// the (item, unit) pair.
type PackagingResolver interface {
	ResolveFactor(ctx context.Context, itemID, unitID int64) (items.ItemDetail, error)
	GetDetailByCode(ctx context.Context, code string) (items.ItemDetail, error)
}

// AuditPort records who posted what.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// CacheBumper invalidates cached reports after a posting.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// PostingMetrics counts what a purchase writes.
type PostingMetrics interface {
	JournalPagePosted()
	InventoryLogRecorded()
}

// PostingAccounts names the chart-of-accounts slots a purchase posts to.
type PostingAccounts struct {
	Cash      string
	Inventory string
	Payable   string
}

// Service posts purchase documents. One purchase writes the document, its
// inventory entries and a balanced journal page in a single transaction.
type Service struct {
	repo     Repository
	resolver PackagingResolver
	audit    AuditPort
	cache    CacheBumper
	metrics  PostingMetrics
	logger   *slog.Logger
	accounts PostingAccounts
}

func NewService(repo Repository, resolver PackagingResolver, audit AuditPort, cache CacheBumper, metrics PostingMetrics, logger *slog.Logger, accounts PostingAccounts) *Service {
	return &Service{repo: repo, resolver: resolver, audit: audit, cache: cache, metrics: metrics, logger: logger, accounts: accounts}
}

// LineInput is one purchased item in one packaging unit, identified by the
// packaging's code or by the (item, unit) pair. UnitCost is the cost of one
// transacted unit.
type LineInput struct {
	DetailCode string
	ItemID     int64
	UnitID     int64
	Qty        decimal.Decimal
	UnitCost   decimal.Decimal
}

// CreateInput describes a purchase to post.
type CreateInput struct {
	Ref          string
	SupplierName string
	PaymentType  PaymentType
	Description  string
	Lines        []LineInput
}

func (in CreateInput) validate() error {
	if len(in.Lines) == 0 {
		return ErrNoLines
	}
	switch in.PaymentType {
	case PaymentTypeCash, PaymentTypeCredit:
	default:
		return ErrInvalidPayment
	}
	for idx, line := range in.Lines {
		if line.DetailCode == "" && (line.ItemID <= 0 || line.UnitID <= 0) {
			return fmt.Errorf("%w: line %d needs a packaging code or an item and unit", shared.ErrValidation, idx)
		}
		if !line.Qty.IsPositive() {
			return fmt.Errorf("line %d: %w", idx, ErrNonPositiveLineQty)
		}
		if !line.UnitCost.IsPositive() {
			return fmt.Errorf("line %d: %w", idx, ErrNonPositiveCost)
		}
	}
	return nil
}

// resolveLine loads the packaging for a document line. The detail code is
// the business key; the (item, unit) pair remains accepted, and when both
// are given they must agree.
func resolveLine(ctx context.Context, resolver PackagingResolver, code string, itemID, unitID int64) (items.ItemDetail, error) {
	if code == "" {
		return resolver.ResolveFactor(ctx, itemID, unitID)
	}
	detail, err := resolver.GetDetailByCode(ctx, code)
	if err != nil {
		return items.ItemDetail{}, err
	}
	if itemID != 0 && itemID != detail.ItemID {
		return items.ItemDetail{}, fmt.Errorf("%w: packaging %s does not belong to item %d", shared.ErrValidation, code, itemID)
	}
	if unitID != 0 && unitID != detail.UnitID {
		return items.ItemDetail{}, fmt.Errorf("%w: packaging %s is not bought in unit %d", shared.ErrValidation, code, unitID)
	}
	return detail, nil
}

// Create posts the purchase: stock in at cost, inventory debited, cash or
// payable credited. Any failure rolls the whole document back.
func (s *Service) Create(ctx context.Context, in CreateInput) (Purchase, error) {
	if err := in.validate(); err != nil {
		return Purchase{}, err
	}
	ref := strings.TrimSpace(in.Ref)
	if ref == "" {
		ref = "PUR-" + strings.ToUpper(uuid.NewString()[:8])
	}
	actor := shared.ActorFromContext(ctx)

	type preparedLine struct {
		line  PurchaseLine
		entry inventory.Log
	}
	prepared := make([]preparedLine, 0, len(in.Lines))
	total := decimal.Zero
	for _, line := range in.Lines {
		detail, err := resolveLine(ctx, s.resolver, line.DetailCode, line.ItemID, line.UnitID)
		if err != nil {
			return Purchase{}, err
		}
		line.ItemID = detail.ItemID
		line.UnitID = detail.UnitID
		lineTotal := line.Qty.Mul(line.UnitCost)
		costPerBase := line.UnitCost.DivRound(decimal.NewFromInt(detail.ConversionFactor), 4)
		entry, err := inventory.BuildEntry(inventory.EntryInput{
			ItemID:           line.ItemID,
			UnitID:           line.UnitID,
			DetailCode:       detail.Code,
			ConversionFactor: detail.ConversionFactor,
			Type:             inventory.TransactionTypePurchase,
			Qty:              line.Qty,
			CostPerBaseUnit:  &costPerBase,
			Ref:              ref,
			Description:      in.Description,
			UserID:           actor,
		})
		if err != nil {
			return Purchase{}, err
		}
		prepared = append(prepared, preparedLine{
			line: PurchaseLine{
				ItemID:           line.ItemID,
				UnitID:           line.UnitID,
				Qty:              line.Qty,
				ConversionFactor: detail.ConversionFactor,
				QtyBase:          entry.QtyBase,
				UnitCost:         line.UnitCost,
				LineTotal:        lineTotal,
			},
			entry: entry,
		})
		total = total.Add(lineTotal)
	}

	creditAccount := s.accounts.Payable
	if in.PaymentType == PaymentTypeCash {
		creditAccount = s.accounts.Cash
	}
	pageInput := journals.PageInput{
		Source:      "purchase",
		Ref:         ref,
		Description: in.Description,
		Currency:    "USD",
		UserID:      actor,
		Entries: []journals.EntryInput{
			{AccountNumber: s.accounts.Inventory, Ref: ref, Description: "stock received", Debit: total, Credit: decimal.Zero},
			{AccountNumber: creditAccount, Ref: ref, Description: "purchase settlement", Debit: decimal.Zero, Credit: total},
		},
	}
	if err := pageInput.Validate(); err != nil {
		return Purchase{}, err
	}

	var purchase Purchase
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, number := range []string{s.accounts.Inventory, creditAccount} {
			if _, err := tx.GetPostingAccount(ctx, number); err != nil {
				if errors.Is(err, acctshared.ErrAccountNotFound) {
					return fmt.Errorf("%w: unknown or disabled account %s", shared.ErrValidation, number)
				}
				return err
			}
		}
		created, err := tx.InsertPurchase(ctx, Purchase{
			Ref:          ref,
			SupplierName: in.SupplierName,
			PaymentType:  in.PaymentType,
			Description:  in.Description,
			Total:        total,
			UserID:       actor,
		})
		if err != nil {
			return err
		}
		for _, p := range prepared {
			p.line.PurchaseID = created.ID
			line, err := tx.InsertLine(ctx, p.line)
			if err != nil {
				return err
			}
			created.Lines = append(created.Lines, line)
			if err := tx.InsertInventoryLog(ctx, p.entry); err != nil {
				return err
			}
		}
		pageID, err := tx.InsertJournalPage(ctx, pageInput)
		if err != nil {
			return err
		}
		if err := tx.SetJournalPage(ctx, created.ID, pageID); err != nil {
			return err
		}
		created.JournalPageID = pageID
		purchase = created
		return nil
	})
	if err != nil {
		return Purchase{}, err
	}

	if s.metrics != nil {
		s.metrics.JournalPagePosted()
		for range prepared {
			s.metrics.InventoryLogRecorded()
		}
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actor,
			Action:   "purchase.posted",
			Entity:   "purchase",
			EntityID: strconv.FormatInt(purchase.ID, 10),
			Meta:     map[string]any{"ref": purchase.Ref, "total": purchase.Total.String()},
		})
	}
	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil && s.logger != nil {
			s.logger.Warn("bump report cache", slog.Any("error", err))
		}
	}
	if s.logger != nil {
		s.logger.Info("purchase posted",
			slog.String("ref", purchase.Ref),
			slog.String("total", purchase.Total.StringFixed(2)),
			slog.Int("lines", len(purchase.Lines)))
	}
	return purchase, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Purchase, error) {
	if id <= 0 {
		return Purchase{}, fmt.Errorf("%w: invalid purchase id", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Purchase, shared.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 200 {
		filter.PageSize = 50
	}
	purchases, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return purchases, shared.NewPagination(filter.Page, filter.PageSize, total), nil
}
