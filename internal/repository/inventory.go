package repository

import (
	"context"
	"fmt"

	"github.com/tablewise/restaurant-api/internal/domain"
	"github.com/tablewise/restaurant-api/internal/repository/dao"
)

var (
	ErrStockNotFound = dao.ErrStockNotFound
	ErrStockExists   = dao.ErrStockExists
)

type InventoryDAO interface {
	InsertStock(ctx context.Context, stock dao.Stock, opening *dao.StockTransaction) (dao.Stock, error)
	FindStockByID(ctx context.Context, id uint) (dao.Stock, error)
	FindStocks(ctx context.Context, filter domain.StockFilter) ([]dao.Stock, error)
	UpdateReorderThreshold(ctx context.Context, id uint, threshold float64) (dao.Stock, error)
	DeleteStock(ctx context.Context, id uint, closing dao.StockTransaction) error
	ApplyTransaction(ctx context.Context, txn dao.StockTransaction, apply func(onHand float64) (float64, error)) (dao.StockTransaction, dao.Stock, error)
	FindTransactionByID(ctx context.Context, id uint) (dao.StockTransaction, error)
	FindTransactions(ctx context.Context, filter domain.StockTransactionFilter) ([]dao.StockTransaction, error)
}

type InventoryRepository struct {
	dao InventoryDAO
}

func NewInventoryRepository(dao InventoryDAO) *InventoryRepository {
	return &InventoryRepository{
		dao: dao,
	}
}

func (r *InventoryRepository) CreateStock(ctx context.Context, stock domain.Stock, opening *domain.StockTransaction) (domain.Stock, error) {
	var openingDAO *dao.StockTransaction
	if opening != nil {
		txn := stockTransactionToDAO(*opening)
		openingDAO = &txn
	}

	created, err := r.dao.InsertStock(ctx, dao.Stock{
		IngredientID:     stock.IngredientID,
		Quantity:         stock.Quantity,
		ReorderThreshold: stock.ReorderThreshold,
	}, openingDAO)
	if err != nil {
		return domain.Stock{}, fmt.Errorf("r.dao.InsertStock -> %w", err)
	}

	return stockToDomain(created), nil
}

func (r *InventoryRepository) FindStockByID(ctx context.Context, id uint) (domain.Stock, error) {
	found, err := r.dao.FindStockByID(ctx, id)
	if err != nil {
		return domain.Stock{}, fmt.Errorf("r.dao.FindStockByID -> %w", err)
	}

	return stockToDomain(found), nil
}

func (r *InventoryRepository) FindStocks(ctx context.Context, filter domain.StockFilter) ([]domain.Stock, error) {
	found, err := r.dao.FindStocks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindStocks -> %w", err)
	}

	stocks := make([]domain.Stock, 0, len(found))
	for _, s := range found {
		stocks = append(stocks, stockToDomain(s))
	}

	return stocks, nil
}

func (r *InventoryRepository) UpdateReorderThreshold(ctx context.Context, id uint, threshold float64) (domain.Stock, error) {
	updated, err := r.dao.UpdateReorderThreshold(ctx, id, threshold)
	if err != nil {
		return domain.Stock{}, fmt.Errorf("r.dao.UpdateReorderThreshold -> %w", err)
	}

	return stockToDomain(updated), nil
}

func (r *InventoryRepository) DeleteStock(ctx context.Context, id uint, closing domain.StockTransaction) error {
	if err := r.dao.DeleteStock(ctx, id, stockTransactionToDAO(closing)); err != nil {
		return fmt.Errorf("r.dao.DeleteStock -> %w", err)
	}

	return nil
}

// RecordTransaction appends txn and applies it to the ingredient's stock.
func (r *InventoryRepository) RecordTransaction(ctx context.Context, txn domain.StockTransaction) (domain.StockTransaction, domain.Stock, error) {
	created, stock, err := r.dao.ApplyTransaction(ctx, stockTransactionToDAO(txn), txn.Apply)
	if err != nil {
		return domain.StockTransaction{}, domain.Stock{}, fmt.Errorf("r.dao.ApplyTransaction -> %w", err)
	}

	return stockTransactionToDomain(created), stockToDomain(stock), nil
}

func (r *InventoryRepository) FindTransactionByID(ctx context.Context, id uint) (domain.StockTransaction, error) {
	found, err := r.dao.FindTransactionByID(ctx, id)
	if err != nil {
		return domain.StockTransaction{}, fmt.Errorf("r.dao.FindTransactionByID -> %w", err)
	}

	return stockTransactionToDomain(found), nil
}

func (r *InventoryRepository) FindTransactions(ctx context.Context, filter domain.StockTransactionFilter) ([]domain.StockTransaction, error) {
	found, err := r.dao.FindTransactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindTransactions -> %w", err)
	}

	txns := make([]domain.StockTransaction, 0, len(found))
	for _, t := range found {
		txns = append(txns, stockTransactionToDomain(t))
	}

	return txns, nil
}

func stockToDomain(s dao.Stock) domain.Stock {
	stock := domain.Stock{
		ID:               s.ID,
		IngredientID:     s.IngredientID,
		Quantity:         s.Quantity,
		ReorderThreshold: s.ReorderThreshold,
		LastUpdated:      s.LastUpdated,
	}
	if s.Ingredient != nil {
		ingredient := ingredientToDomain(*s.Ingredient)
		stock.Ingredient = &ingredient
	}

	return stock
}

func stockTransactionToDAO(t domain.StockTransaction) dao.StockTransaction {
	return dao.StockTransaction{
		IngredientID: t.IngredientID,
		Type:         string(t.Type),
		Quantity:     t.Quantity,
		Notes:        t.Notes,
		UserID:       t.UserID,
	}
}

func stockTransactionToDomain(t dao.StockTransaction) domain.StockTransaction {
	return domain.StockTransaction{
		ID:           t.ID,
		IngredientID: t.IngredientID,
		Type:         domain.StockTransactionType(t.Type),
		Quantity:     t.Quantity,
		Timestamp:    t.Timestamp,
		Notes:        t.Notes,
		UserID:       t.UserID,
	}
}
