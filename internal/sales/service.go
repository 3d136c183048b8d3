package sales

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

// PostingMetrics counts what a sale writes.
type PostingMetrics interface {
	JournalPagePosted()
	InventoryLogRecorded()
}

// PostingAccounts names the chart-of-accounts slots a sale posts to.
type PostingAccounts struct {
	Cash      string
	Sales     string
	Inventory string
	COGS      string
}

// ServiceConfig groups posting policy settings.
type ServiceConfig struct {
	AllowNegativeStock bool
}

// Service posts sale documents: revenue at the sale price and cost of goods
// at the item's average inbound cost, all in a single transaction with the
// stock movement.
type Service struct {
	repo     Repository
	resolver PackagingResolver
	audit    AuditPort
	cache    CacheBumper
	metrics  PostingMetrics
	logger   *slog.Logger
	accounts PostingAccounts
	allowNeg bool
}

func NewService(repo Repository, resolver PackagingResolver, audit AuditPort, cache CacheBumper, metrics PostingMetrics, logger *slog.Logger, accounts PostingAccounts, cfg ServiceConfig) *Service {
	return &Service{repo: repo, resolver: resolver, audit: audit, cache: cache, metrics: metrics, logger: logger, accounts: accounts, allowNeg: cfg.AllowNegativeStock}
}

// LineInput is one sold item in one packaging unit, identified by the
// packaging's code or by the (item, unit) pair. UnitPrice is the price of
// one transacted unit.
type LineInput struct {
	DetailCode string
	ItemID     int64
	UnitID     int64
	Qty        decimal.Decimal
	UnitPrice  decimal.Decimal
}

// CreateInput describes a sale to post.
type CreateInput struct {
	Ref          string
	CustomerName string
	Description  string
	Lines        []LineInput
}

func (in CreateInput) validate() error {
	if len(in.Lines) == 0 {
		return ErrNoLines
	}
	for idx, line := range in.Lines {
		if line.DetailCode == "" && (line.ItemID <= 0 || line.UnitID <= 0) {
			return fmt.Errorf("%w: line %d needs a packaging code or an item and unit", shared.ErrValidation, idx)
		}
		if !line.Qty.IsPositive() {
			return fmt.Errorf("line %d: %w", idx, ErrNonPositiveLineQty)
		}
		if !line.UnitPrice.IsPositive() {
			return fmt.Errorf("line %d: %w", idx, ErrNonPositivePrice)
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
		return items.ItemDetail{}, fmt.Errorf("%w: packaging %s is not sold in unit %d", shared.ErrValidation, code, unitID)
	}
	return detail, nil
}

// Create posts the sale. The stock check, the average-cost snapshot, the
// outbound ledger entries and the journal page all run under one
// transaction; overselling fails the whole document unless negative stock
// is allowed by configuration.
func (s *Service) Create(ctx context.Context, in CreateInput) (Sale, error) {
	if err := in.validate(); err != nil {
		return Sale{}, err
	}
	ref := strings.TrimSpace(in.Ref)
	if ref == "" {
		ref = "SAL-" + strings.ToUpper(uuid.NewString()[:8])
	}
	actor := shared.ActorFromContext(ctx)

	type resolvedLine struct {
		input  LineInput
		detail items.ItemDetail
	}
	resolved := make([]resolvedLine, 0, len(in.Lines))
	for _, line := range in.Lines {
		detail, err := resolveLine(ctx, s.resolver, line.DetailCode, line.ItemID, line.UnitID)
		if err != nil {
			return Sale{}, err
		}
		line.ItemID = detail.ItemID
		line.UnitID = detail.UnitID
		resolved = append(resolved, resolvedLine{input: line, detail: detail})
	}

	var sale Sale
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		total := decimal.Zero
		totalCost := decimal.Zero
		lines := make([]SaleLine, 0, len(resolved))
		entries := make([]inventory.Log, 0, len(resolved))
		// running stock per item, so several lines of one item are checked
		// against what the earlier lines already took
		stocks := make(map[int64]int64)

		for _, r := range resolved {
			entry, err := inventory.BuildEntry(inventory.EntryInput{
				ItemID:           r.input.ItemID,
				UnitID:           r.input.UnitID,
				DetailCode:       r.detail.Code,
				ConversionFactor: r.detail.ConversionFactor,
				Type:             inventory.TransactionTypeSale,
				Qty:              r.input.Qty,
				SalePricePerUnit: &r.input.UnitPrice,
				Ref:              ref,
				Description:      in.Description,
				UserID:           actor,
			})
			if err != nil {
				return err
			}
			if !s.allowNeg {
				stock, seen := stocks[r.input.ItemID]
				if !seen {
					if err := tx.LockStock(ctx, r.input.ItemID); err != nil {
						return err
					}
					loaded, err := tx.CurrentStock(ctx, r.input.ItemID)
					if err != nil {
						return err
					}
					stock = loaded
				}
				if stock+entry.QtyBase < 0 {
					return fmt.Errorf("%w: item %d has %d base units, need %d",
						ErrInsufficientStock, r.input.ItemID, stock, -entry.QtyBase)
				}
				stocks[r.input.ItemID] = stock + entry.QtyBase
			}
			avgCost, err := tx.AverageCost(ctx, r.input.ItemID)
			if err != nil {
				return err
			}
			entry.CostPerBaseUnit = &avgCost

			lineTotal := r.input.Qty.Mul(r.input.UnitPrice)
			// entry.QtyBase is negative for a sale
			costOfGoods := avgCost.Mul(decimal.NewFromInt(-entry.QtyBase)).Round(2)
			lines = append(lines, SaleLine{
				ItemID:           r.input.ItemID,
				UnitID:           r.input.UnitID,
				Qty:              r.input.Qty,
				ConversionFactor: r.detail.ConversionFactor,
				QtyBase:          entry.QtyBase,
				UnitPrice:        r.input.UnitPrice,
				LineTotal:        lineTotal,
				CostOfGoods:      costOfGoods,
			})
			entries = append(entries, entry)
			total = total.Add(lineTotal)
			totalCost = totalCost.Add(costOfGoods)
		}

		pageEntries := []journals.EntryInput{
			{AccountNumber: s.accounts.Cash, Ref: ref, Description: "sale proceeds", Debit: total, Credit: decimal.Zero},
			{AccountNumber: s.accounts.Sales, Ref: ref, Description: "revenue", Debit: decimal.Zero, Credit: total},
		}
		if totalCost.IsPositive() {
			pageEntries = append(pageEntries,
				journals.EntryInput{AccountNumber: s.accounts.COGS, Ref: ref, Description: "cost of goods sold", Debit: totalCost, Credit: decimal.Zero},
				journals.EntryInput{AccountNumber: s.accounts.Inventory, Ref: ref, Description: "stock issued", Debit: decimal.Zero, Credit: totalCost},
			)
		}
		pageInput := journals.PageInput{
			Source:      "sale",
			Ref:         ref,
			Description: in.Description,
			Currency:    "USD",
			UserID:      actor,
			Entries:     pageEntries,
		}
		if err := pageInput.Validate(); err != nil {
			return err
		}
		for _, entry := range pageEntries {
			if _, err := tx.GetPostingAccount(ctx, entry.AccountNumber); err != nil {
				if errors.Is(err, acctshared.ErrAccountNotFound) {
					return fmt.Errorf("%w: unknown or disabled account %s", shared.ErrValidation, entry.AccountNumber)
				}
				return err
			}
		}

		created, err := tx.InsertSale(ctx, Sale{
			Ref:          ref,
			CustomerName: in.CustomerName,
			Description:  in.Description,
			Total:        total,
			TotalCost:    totalCost,
			UserID:       actor,
		})
		if err != nil {
			return err
		}
		for i := range lines {
			lines[i].SaleID = created.ID
			line, err := tx.InsertLine(ctx, lines[i])
			if err != nil {
				return err
			}
			created.Lines = append(created.Lines, line)
			if err := tx.InsertInventoryLog(ctx, entries[i]); err != nil {
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
		sale = created
		return nil
	})
	if err != nil {
		return Sale{}, err
	}

	if s.metrics != nil {
		s.metrics.JournalPagePosted()
		for range sale.Lines {
			s.metrics.InventoryLogRecorded()
		}
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actor,
			Action:   "sale.posted",
			Entity:   "sale",
			EntityID: strconv.FormatInt(sale.ID, 10),
			Meta:     map[string]any{"ref": sale.Ref, "total": sale.Total.String()},
		})
	}
	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil && s.logger != nil {
			s.logger.Warn("bump report cache", slog.Any("error", err))
		}
	}
	if s.logger != nil {
		s.logger.Info("sale posted",
			slog.String("ref", sale.Ref),
			slog.String("total", sale.Total.StringFixed(2)),
			slog.String("total_cost", sale.TotalCost.StringFixed(2)))
	}
	return sale, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Sale, error) {
	if id <= 0 {
		return Sale{}, fmt.Errorf("%w: invalid sale id", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Sale, shared.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 200 {
		filter.PageSize = 50
	}
	sales, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return sales, shared.NewPagination(filter.Page, filter.PageSize, total), nil
}
