package dao

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tablewise/restaurant-api/internal/domain"
)

var (
	ErrDailySalesNotFound  = domain.NewError(domain.ErrNotFound, "daily sales record not found")
	ErrDailySalesExists    = domain.NewError(domain.ErrConflict, "daily sales for this date already exist")
	ErrPopularDishNotFound = domain.NewError(domain.ErrNotFound, "popular dish record not found")
	ErrPopularDishExists   = domain.NewError(domain.ErrConflict, "popular dish record for this dish and period already exists")
)

type DailySales struct {
	ID                uint            `gorm:"primaryKey"`
	Date              time.Time       `gorm:"type:date;uniqueIndex;not null"`
	TotalOrders       int             `gorm:"not null"`
	TotalRevenue      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	AverageOrderValue decimal.Decimal `gorm:"type:numeric(10,2);not null"`
}

func (DailySales) TableName() string {
	return "daily_sales"
}

type PopularDish struct {
	ID               uint            `gorm:"primaryKey"`
	DishID           uint            `gorm:"not null;uniqueIndex:idx_popular_dish_period"`
	Dish             *Dish           `gorm:"constraint:OnDelete:CASCADE"`
	OrderCount       int             `gorm:"not null"`
	RevenueGenerated decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PeriodStart      time.Time       `gorm:"type:date;not null;uniqueIndex:idx_popular_dish_period"`
	PeriodEnd        time.Time       `gorm:"type:date;not null;uniqueIndex:idx_popular_dish_period"`
}

type ReportDAO struct {
	db *gorm.DB
}

func NewReportDAO(db *gorm.DB) *ReportDAO {
	return &ReportDAO{
		db: db,
	}
}

func (d *ReportDAO) InsertDailySales(ctx context.Context, sales DailySales) (DailySales, error) {
	if err := d.db.WithContext(ctx).Create(&sales).Error; err != nil {
		if isUniqueViolation(err) {
			return DailySales{}, ErrDailySalesExists
		}

		return DailySales{}, err
	}

	return sales, nil
}

func (d *ReportDAO) FindDailySalesByID(ctx context.Context, id uint) (DailySales, error) {
	var sales DailySales

	result := d.db.WithContext(ctx).First(&sales, id)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return DailySales{}, ErrDailySalesNotFound
		}

		return DailySales{}, result.Error
	}

	return sales, nil
}

var dailySalesOrdering = map[string]string{
	"date":          "date",
	"total_orders":  "total_orders",
	"total_revenue": "total_revenue",
}

func (d *ReportDAO) FindDailySales(ctx context.Context, filter domain.DailySalesFilter) ([]DailySales, error) {
	var sales []DailySales

	query := d.db.WithContext(ctx).Order(orderBy(filter.Ordering, dailySalesOrdering, "date DESC"))
	if filter.Date != nil {
		query = query.Where("date = ?", filter.Date.Time)
	}
	if err := query.Find(&sales).Error; err != nil {
		return nil, err
	}

	return sales, nil
}

func (d *ReportDAO) UpdateDailySales(ctx context.Context, sales DailySales) (DailySales, error) {
	result := d.db.WithContext(ctx).Model(&DailySales{ID: sales.ID}).
		Select("date", "total_orders", "total_revenue", "average_order_value").
		Updates(&sales)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return DailySales{}, ErrDailySalesExists
		}

		return DailySales{}, result.Error
	}
	if result.RowsAffected == 0 {
		return DailySales{}, ErrDailySalesNotFound
	}

	return d.FindDailySalesByID(ctx, sales.ID)
}

func (d *ReportDAO) DeleteDailySales(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&DailySales{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDailySalesNotFound
	}

	return nil
}

func (d *ReportDAO) InsertPopularDish(ctx context.Context, popular PopularDish) (PopularDish, error) {
	var created PopularDish
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Dish{}).Where("id = ?", popular.DishID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrDishNotFound
		}

		popular.Dish = nil
		if err := tx.Create(&popular).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrPopularDishExists
			}
			return err
		}

		return tx.Preload("Dish").First(&created, popular.ID).Error
	})
	if err != nil {
		return PopularDish{}, err
	}

	return created, nil
}

func (d *ReportDAO) FindPopularDishByID(ctx context.Context, id uint) (PopularDish, error) {
	var popular PopularDish

	result := d.db.WithContext(ctx).Preload("Dish").First(&popular, id)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return PopularDish{}, ErrPopularDishNotFound
		}

		return PopularDish{}, result.Error
	}

	return popular, nil
}

var popularDishOrdering = map[string]string{
	"order_count":       "order_count",
	"revenue_generated": "revenue_generated",
	"period_start":      "period_start",
}

func (d *ReportDAO) FindPopularDishes(ctx context.Context, filter domain.PopularDishFilter) ([]PopularDish, error) {
	var popular []PopularDish

	query := d.db.WithContext(ctx).Preload("Dish").
		Order(orderBy(filter.Ordering, popularDishOrdering, "order_count DESC")).
		Order("id")
	if filter.DishID != nil {
		query = query.Where("dish_id = ?", *filter.DishID)
	}
	if filter.PeriodStart != nil {
		query = query.Where("period_start = ?", filter.PeriodStart.Time)
	}
	if filter.PeriodEnd != nil {
		query = query.Where("period_end = ?", filter.PeriodEnd.Time)
	}
	if err := query.Find(&popular).Error; err != nil {
		return nil, err
	}

	return popular, nil
}

func (d *ReportDAO) UpdatePopularDish(ctx context.Context, popular PopularDish) (PopularDish, error) {
	popular.Dish = nil
	result := d.db.WithContext(ctx).Model(&PopularDish{ID: popular.ID}).
		Select("dish_id", "order_count", "revenue_generated", "period_start", "period_end").
		Updates(&popular)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return PopularDish{}, ErrPopularDishExists
		}
		if isForeignKeyViolation(result.Error) {
			return PopularDish{}, ErrDishNotFound
		}

		return PopularDish{}, result.Error
	}
	if result.RowsAffected == 0 {
		return PopularDish{}, ErrPopularDishNotFound
	}

	return d.FindPopularDishByID(ctx, popular.ID)
}

func (d *ReportDAO) DeletePopularDish(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&PopularDish{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPopularDishNotFound
	}

	return nil
}
