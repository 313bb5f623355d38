package dao

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tablewise/restaurant-api/internal/domain"
)

var (
	ErrStockNotFound            = domain.NewError(domain.ErrNotFound, "no stock record for this ingredient")
	ErrStockExists              = domain.NewError(domain.ErrConflict, "stock for this ingredient already exists")
	ErrStockTransactionNotFound = domain.NewError(domain.ErrNotFound, "stock transaction not found")
)

type Stock struct {
	ID               uint        `gorm:"primaryKey"`
	IngredientID     uint        `gorm:"uniqueIndex;not null"`
	Ingredient       *Ingredient `gorm:"constraint:OnDelete:CASCADE"`
	Quantity         float64     `gorm:"not null"`
	ReorderThreshold float64     `gorm:"not null"`
	LastUpdated      time.Time   `gorm:"autoUpdateTime"`
}

// StockTransaction rows are never updated or deleted individually.
type StockTransaction struct {
	ID           uint        `gorm:"primaryKey"`
	IngredientID uint        `gorm:"not null;index"`
	Ingredient   *Ingredient `gorm:"constraint:OnDelete:CASCADE"`
	Type         string      `gorm:"not null"`
	Quantity     float64     `gorm:"not null"`
	Timestamp    time.Time   `gorm:"autoCreateTime;index"`
	Notes        string
	UserID       *uint `gorm:"index"`
	User         *User `gorm:"constraint:OnDelete:SET NULL"`
}

type InventoryDAO struct {
	db *gorm.DB
}

func NewInventoryDAO(db *gorm.DB) *InventoryDAO {
	return &InventoryDAO{
		db: db,
	}
}

// InsertStock creates the stock row. When opening is given it is written to
// the ledger with whatever quantity brings the ingredient's ledger balance to
// the new stock quantity, and skipped when the two already agree.
func (d *InventoryDAO) InsertStock(ctx context.Context, stock Stock, opening *StockTransaction) (Stock, error) {
	var created Stock
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Ingredient{}).Where("id = ?", stock.IngredientID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrIngredientNotFound
		}

		stock.Ingredient = nil
		if err := tx.Create(&stock).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrStockExists
			}
			return err
		}

		if opening != nil {
			balance, err := ledgerBalance(tx, stock.IngredientID)
			if err != nil {
				return err
			}
			if delta := stock.Quantity - balance; delta != 0 {
				opening.IngredientID = stock.IngredientID
				opening.Type = string(domain.StockAdjustment)
				opening.Quantity = delta
				if err = tx.Create(opening).Error; err != nil {
					return err
				}
			}
		}

		return tx.Preload("Ingredient").First(&created, stock.ID).Error
	})
	if err != nil {
		return Stock{}, err
	}

	return created, nil
}

// ledgerBalance sums the signed movements recorded for an ingredient.
func ledgerBalance(tx *gorm.DB, ingredientID uint) (float64, error) {
	var balance float64
	err := tx.Model(&StockTransaction{}).
		Select("COALESCE(SUM(CASE WHEN type = ? THEN -quantity ELSE quantity END), 0)", string(domain.StockOut)).
		Where("ingredient_id = ?", ingredientID).
		Scan(&balance).Error

	return balance, err
}

func (d *InventoryDAO) FindStockByID(ctx context.Context, id uint) (Stock, error) {
	var stock Stock

	result := d.db.WithContext(ctx).Preload("Ingredient").First(&stock, id)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return Stock{}, ErrStockNotFound
		}

		return Stock{}, result.Error
	}

	return stock, nil
}

func (d *InventoryDAO) FindStocks(ctx context.Context, filter domain.StockFilter) ([]Stock, error) {
	var stocks []Stock

	query := d.db.WithContext(ctx).Preload("Ingredient").Order("id")
	if filter.IngredientID != nil {
		query = query.Where("ingredient_id = ?", *filter.IngredientID)
	}
	if filter.NeedsReorder != nil {
		if *filter.NeedsReorder {
			query = query.Where("quantity <= reorder_threshold")
		} else {
			query = query.Where("quantity > reorder_threshold")
		}
	}
	if filter.Search != "" {
		query = query.Where("ingredient_id IN (?)",
			d.db.Model(&Ingredient{}).Select("id").Where("LOWER(name) LIKE ?", likePattern(filter.Search)))
	}
	if err := query.Find(&stocks).Error; err != nil {
		return nil, err
	}

	return stocks, nil
}

func (d *InventoryDAO) UpdateReorderThreshold(ctx context.Context, id uint, threshold float64) (Stock, error) {
	result := d.db.WithContext(ctx).Model(&Stock{ID: id}).Update("reorder_threshold", threshold)
	if result.Error != nil {
		return Stock{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Stock{}, ErrStockNotFound
	}

	return d.FindStockByID(ctx, id)
}

// DeleteStock removes the stock row. A non-zero quantity is first written
// off with closing, so the ledger balance returns to zero with it.
func (d *InventoryDAO) DeleteStock(ctx context.Context, id uint, closing StockTransaction) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var stock Stock
		if err := tx.Clauses(lockForUpdate).First(&stock, id).Error; err != nil {
			if isNotFound(err) {
				return ErrStockNotFound
			}
			return err
		}

		if stock.Quantity != 0 {
			closing.IngredientID = stock.IngredientID
			closing.Type = string(domain.StockAdjustment)
			closing.Quantity = -stock.Quantity
			closing.Ingredient = nil
			closing.User = nil
			if err := tx.Create(&closing).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&Stock{}, stock.ID).Error
	})
}

// ApplyTransaction appends txn to the ledger and moves the on-hand quantity
// to whatever apply returns, holding the stock row lock throughout.
func (d *InventoryDAO) ApplyTransaction(
	ctx context.Context,
	txn StockTransaction,
	apply func(onHand float64) (float64, error),
) (StockTransaction, Stock, error) {
	var stock Stock
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(lockForUpdate).Where("ingredient_id = ?", txn.IngredientID).First(&stock)
		if result.Error != nil {
			if isNotFound(result.Error) {
				return ErrStockNotFound
			}
			return result.Error
		}

		next, err := apply(stock.Quantity)
		if err != nil {
			return err
		}

		txn.Ingredient = nil
		txn.User = nil
		if err = tx.Create(&txn).Error; err != nil {
			return err
		}

		stock.Quantity = next
		if err = tx.Model(&stock).Update("quantity", next).Error; err != nil {
			return err
		}

		return tx.Preload("Ingredient").First(&stock, stock.ID).Error
	})
	if err != nil {
		return StockTransaction{}, Stock{}, err
	}

	return txn, stock, nil
}

func (d *InventoryDAO) FindTransactionByID(ctx context.Context, id uint) (StockTransaction, error) {
	var txn StockTransaction

	result := d.db.WithContext(ctx).First(&txn, id)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return StockTransaction{}, ErrStockTransactionNotFound
		}

		return StockTransaction{}, result.Error
	}

	return txn, nil
}

func (d *InventoryDAO) FindTransactions(ctx context.Context, filter domain.StockTransactionFilter) ([]StockTransaction, error) {
	var txns []StockTransaction

	query := d.db.WithContext(ctx).Order("timestamp DESC").Order("id DESC")
	if filter.IngredientID != nil {
		query = query.Where("ingredient_id = ?", *filter.IngredientID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", string(filter.Type))
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if err := query.Find(&txns).Error; err != nil {
		return nil, err
	}

	return txns, nil
}
