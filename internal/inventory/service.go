package inventory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/rielbooks/rielbooks/internal/masterdata/items"
	"github.com/rielbooks/rielbooks/internal/shared"
)

// PackagingResolver looks up the active packaging for an (item, unit) pair.
type PackagingResolver interface {
	ResolveFactor(ctx context.Context, itemID, unitID int64) (items.ItemDetail, error)
}

// RecordMetrics counts recorded ledger entries.
type RecordMetrics interface {
	InventoryLogRecorded()
}

// ServiceConfig groups posting policy settings.
type ServiceConfig struct {
	AllowNegativeStock bool
}

// Service coordinates manual inventory recording and stock queries.
type Service struct {
	repo     Repository
	resolver PackagingResolver
	logger   *slog.Logger
	metrics  RecordMetrics
	allowNeg bool
}

func NewService(repo Repository, resolver PackagingResolver, logger *slog.Logger, metrics RecordMetrics, cfg ServiceConfig) *Service {
	return &Service{repo: repo, resolver: resolver, logger: logger, metrics: metrics, allowNeg: cfg.AllowNegativeStock}
}

// RecordInput describes a manual ledger entry to record.
type RecordInput struct {
	ItemID          int64
	UnitID          int64
	Type            TransactionType
	Qty             decimal.Decimal
	CostPerBaseUnit *decimal.Decimal
	Ref             string
	Description     string
}

// Record appends one manual entry to the ledger. Purchase and sale types are
// rejected here; those entries are written by their document flows. The
// stock check and the insert share one transaction so concurrent outbound
// movements cannot overdraw.
func (s *Service) Record(ctx context.Context, in RecordInput) (Log, error) {
	if in.Type.Reserved() {
		return Log{}, ErrReservedType
	}
	if _, err := in.Type.Direction(); err != nil {
		return Log{}, err
	}
	if !in.Qty.IsPositive() {
		return Log{}, ErrInvalidQuantity
	}
	if in.CostPerBaseUnit != nil && in.CostPerBaseUnit.IsNegative() {
		return Log{}, fmt.Errorf("%w: cost must not be negative", shared.ErrValidation)
	}

	detail, err := s.resolver.ResolveFactor(ctx, in.ItemID, in.UnitID)
	if err != nil {
		return Log{}, err
	}
	entry, err := BuildEntry(EntryInput{
		ItemID:           in.ItemID,
		UnitID:           in.UnitID,
		DetailCode:       detail.Code,
		ConversionFactor: detail.ConversionFactor,
		Type:             in.Type,
		Qty:              in.Qty,
		CostPerBaseUnit:  in.CostPerBaseUnit,
		Ref:              in.Ref,
		Description:      in.Description,
		UserID:           shared.ActorFromContext(ctx),
	})
	if err != nil {
		return Log{}, err
	}

	var recorded Log
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if entry.QtyBase < 0 && !s.allowNeg {
			if err := tx.LockStock(ctx, in.ItemID); err != nil {
				return err
			}
			stock, err := tx.CurrentStock(ctx, in.ItemID)
			if err != nil {
				return err
			}
			if stock+entry.QtyBase < 0 {
				return fmt.Errorf("%w: have %d base units, need %d", ErrInsufficientStock, stock, -entry.QtyBase)
			}
		}
		var err error
		recorded, err = tx.Insert(ctx, entry)
		return err
	})
	if err != nil {
		return Log{}, err
	}

	if s.metrics != nil {
		s.metrics.InventoryLogRecorded()
	}
	if s.logger != nil {
		s.logger.Info("inventory entry recorded",
			slog.Int64("item_id", recorded.ItemID),
			slog.String("type", string(recorded.Type)),
			slog.Int64("qty_base", recorded.QtyBase))
	}
	return recorded, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Log, error) {
	if id <= 0 {
		return Log{}, fmt.Errorf("%w: invalid log id", shared.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Log, shared.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 200 {
		filter.PageSize = 50
	}
	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return logs, shared.NewPagination(filter.Page, filter.PageSize, total), nil
}

// CurrentStock sums the signed base quantities of every entry for the item.
func (s *Service) CurrentStock(ctx context.Context, itemID int64) (int64, error) {
	if itemID <= 0 {
		return 0, fmt.Errorf("%w: invalid item id", shared.ErrValidation)
	}
	return s.repo.CurrentStock(ctx, itemID)
}

// Breakdown expresses the item's current stock in its packaging units.
func (s *Service) Breakdown(ctx context.Context, itemID int64) (StockBreakdown, error) {
	if itemID <= 0 {
		return StockBreakdown{}, fmt.Errorf("%w: invalid item id", shared.ErrValidation)
	}
	qty, err := s.repo.CurrentStock(ctx, itemID)
	if err != nil {
		return StockBreakdown{}, err
	}
	packagings, err := s.repo.ListPackagings(ctx, itemID)
	if err != nil {
		return StockBreakdown{}, err
	}
	return BuildBreakdown(itemID, qty, packagings), nil
}
