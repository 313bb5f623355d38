package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tablewise/restaurant-api/internal/domain"
	"github.com/tablewise/restaurant-api/internal/events"
	"github.com/tablewise/restaurant-api/internal/metrics"
	"github.com/tablewise/restaurant-api/internal/repository"
)

const (
	openingBalanceNote = "opening balance"
	closingBalanceNote = "stock closed"
)

var (
	ErrStockNotFound     = repository.ErrStockNotFound
	ErrNegativeStock     = domain.NewError(domain.ErrInvalidArgument, "quantity must not be negative")
	ErrNegativeThreshold = domain.NewError(domain.ErrInvalidArgument, "reorder threshold must not be negative")
)

type InventoryRepository interface {
	CreateStock(ctx context.Context, stock domain.Stock, opening *domain.StockTransaction) (domain.Stock, error)
	FindStockByID(ctx context.Context, id uint) (domain.Stock, error)
	FindStocks(ctx context.Context, filter domain.StockFilter) ([]domain.Stock, error)
	UpdateReorderThreshold(ctx context.Context, id uint, threshold float64) (domain.Stock, error)
	DeleteStock(ctx context.Context, id uint, closing domain.StockTransaction) error
	RecordTransaction(ctx context.Context, txn domain.StockTransaction) (domain.StockTransaction, domain.Stock, error)
	FindTransactionByID(ctx context.Context, id uint) (domain.StockTransaction, error)
	FindTransactions(ctx context.Context, filter domain.StockTransactionFilter) ([]domain.StockTransaction, error)
}

type InventoryService struct {
	repo    InventoryRepository
	events  events.Publisher
	metrics *metrics.Metrics
}

func NewInventoryService(repo InventoryRepository, pub events.Publisher, m *metrics.Metrics) *InventoryService {
	return &InventoryService{
		repo:    repo,
		events:  pub,
		metrics: m,
	}
}

// CreateStock opens a stock record. The ledger receives an opening adjustment
// in the same transaction when its balance for the ingredient differs from
// the starting quantity.
func (s *InventoryService) CreateStock(ctx context.Context, actor domain.Actor, stock domain.Stock) (domain.Stock, error) {
	if stock.IngredientID == 0 {
		return domain.Stock{}, domain.ErrIngredientRequired
	}
	if stock.Quantity < 0 {
		return domain.Stock{}, ErrNegativeStock
	}
	if stock.ReorderThreshold < 0 {
		return domain.Stock{}, ErrNegativeThreshold
	}

	opening := &domain.StockTransaction{
		IngredientID: stock.IngredientID,
		Type:         domain.StockAdjustment,
		Quantity:     stock.Quantity,
		Notes:        openingBalanceNote,
		UserID:       actorID(actor),
	}

	created, err := s.repo.CreateStock(ctx, stock, opening)
	if err != nil {
		return domain.Stock{}, fmt.Errorf("s.repo.CreateStock -> %w", err)
	}

	if stock.Quantity != 0 {
		s.metrics.StockTransactions.WithLabelValues(string(domain.StockAdjustment)).Inc()
	}

	return created, nil
}

func (s *InventoryService) GetStock(ctx context.Context, id uint) (domain.Stock, error) {
	stock, err := s.repo.FindStockByID(ctx, id)
	if err != nil {
		return domain.Stock{}, fmt.Errorf("s.repo.FindStockByID -> %w", err)
	}

	return stock, nil
}

func (s *InventoryService) ListStocks(ctx context.Context, filter domain.StockFilter) ([]domain.Stock, error) {
	stocks, err := s.repo.FindStocks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindStocks -> %w", err)
	}

	return stocks, nil
}

func (s *InventoryService) ReorderList(ctx context.Context) ([]domain.Stock, error) {
	needsReorder := true
	return s.ListStocks(ctx, domain.StockFilter{NeedsReorder: &needsReorder})
}

func (s *InventoryService) UpdateReorderThreshold(ctx context.Context, id uint, threshold float64) (domain.Stock, error) {
	if threshold < 0 {
		return domain.Stock{}, ErrNegativeThreshold
	}

	stock, err := s.repo.UpdateReorderThreshold(ctx, id, threshold)
	if err != nil {
		return domain.Stock{}, fmt.Errorf("s.repo.UpdateReorderThreshold -> %w", err)
	}

	return stock, nil
}

// DeleteStock removes a stock record, writing any remaining quantity off the
// ledger so a later CreateStock starts from a zero balance.
func (s *InventoryService) DeleteStock(ctx context.Context, actor domain.Actor, id uint) error {
	closing := domain.StockTransaction{
		Type:   domain.StockAdjustment,
		Notes:  closingBalanceNote,
		UserID: actorID(actor),
	}
	if err := s.repo.DeleteStock(ctx, id, closing); err != nil {
		return fmt.Errorf("s.repo.DeleteStock -> %w", err)
	}

	zap.L().Info("stock deleted", zap.Uint("stock_id", id), zap.Uint("actor_id", actor.UserID))

	return nil
}

// RecordTransaction appends to the ledger and applies the movement to the
// ingredient's stock atomically.
func (s *InventoryService) RecordTransaction(ctx context.Context, actor domain.Actor, txn domain.StockTransaction) (domain.StockTransaction, domain.Stock, error) {
	if _, err := txn.Delta(); err != nil {
		return domain.StockTransaction{}, domain.Stock{}, err
	}
	txn.UserID = actorID(actor)

	created, stock, err := s.repo.RecordTransaction(ctx, txn)
	if err != nil {
		return domain.StockTransaction{}, domain.Stock{}, fmt.Errorf("s.repo.RecordTransaction -> %w", err)
	}

	s.metrics.StockTransactions.WithLabelValues(string(created.Type)).Inc()
	zap.L().Info("stock transaction recorded",
		zap.Uint("ingredient_id", created.IngredientID),
		zap.String("type", string(created.Type)),
		zap.Float64("quantity", created.Quantity),
		zap.Float64("on_hand", stock.Quantity),
	)
	if stock.NeedsReorder() {
		zap.L().Warn("stock at or below reorder threshold",
			zap.Uint("ingredient_id", stock.IngredientID),
			zap.Float64("on_hand", stock.Quantity),
			zap.Float64("threshold", stock.ReorderThreshold),
		)
	}
	publish(ctx, s.events, s.metrics, events.New(events.StockTransaction, created).ForIngredient(created.IngredientID))

	return created, stock, nil
}

func (s *InventoryService) GetTransaction(ctx context.Context, id uint) (domain.StockTransaction, error) {
	txn, err := s.repo.FindTransactionByID(ctx, id)
	if err != nil {
		return domain.StockTransaction{}, fmt.Errorf("s.repo.FindTransactionByID -> %w", err)
	}

	return txn, nil
}

func (s *InventoryService) ListTransactions(ctx context.Context, filter domain.StockTransactionFilter) ([]domain.StockTransaction, error) {
	txns, err := s.repo.FindTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindTransactions -> %w", err)
	}

	return txns, nil
}

func actorID(actor domain.Actor) *uint {
	if actor.UserID == 0 {
		return nil
	}
	id := actor.UserID
	return &id
}
