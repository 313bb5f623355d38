package repository

import (
	"context"
	"fmt"

	"github.com/tablewise/restaurant-api/internal/domain"
	"github.com/tablewise/restaurant-api/internal/repository/dao"
)

var (
	ErrDailySalesNotFound  = dao.ErrDailySalesNotFound
	ErrPopularDishNotFound = dao.ErrPopularDishNotFound
)

type ReportDAO interface {
	InsertDailySales(ctx context.Context, sales dao.DailySales) (dao.DailySales, error)
	FindDailySalesByID(ctx context.Context, id uint) (dao.DailySales, error)
	FindDailySales(ctx context.Context, filter domain.DailySalesFilter) ([]dao.DailySales, error)
	UpdateDailySales(ctx context.Context, sales dao.DailySales) (dao.DailySales, error)
	DeleteDailySales(ctx context.Context, id uint) error

	InsertPopularDish(ctx context.Context, popular dao.PopularDish) (dao.PopularDish, error)
	FindPopularDishByID(ctx context.Context, id uint) (dao.PopularDish, error)
	FindPopularDishes(ctx context.Context, filter domain.PopularDishFilter) ([]dao.PopularDish, error)
	UpdatePopularDish(ctx context.Context, popular dao.PopularDish) (dao.PopularDish, error)
	DeletePopularDish(ctx context.Context, id uint) error
}

type ReportRepository struct {
	dao ReportDAO
}

func NewReportRepository(dao ReportDAO) *ReportRepository {
	return &ReportRepository{
		dao: dao,
	}
}

func (r *ReportRepository) CreateDailySales(ctx context.Context, sales domain.DailySales) (domain.DailySales, error) {
	created, err := r.dao.InsertDailySales(ctx, dailySalesToDAO(sales))
	if err != nil {
		return domain.DailySales{}, fmt.Errorf("r.dao.InsertDailySales -> %w", err)
	}

	return dailySalesToDomain(created), nil
}

func (r *ReportRepository) FindDailySalesByID(ctx context.Context, id uint) (domain.DailySales, error) {
	found, err := r.dao.FindDailySalesByID(ctx, id)
	if err != nil {
		return domain.DailySales{}, fmt.Errorf("r.dao.FindDailySalesByID -> %w", err)
	}

	return dailySalesToDomain(found), nil
}

func (r *ReportRepository) FindDailySales(ctx context.Context, filter domain.DailySalesFilter) ([]domain.DailySales, error) {
	found, err := r.dao.FindDailySales(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindDailySales -> %w", err)
	}

	sales := make([]domain.DailySales, 0, len(found))
	for _, s := range found {
		sales = append(sales, dailySalesToDomain(s))
	}

	return sales, nil
}

func (r *ReportRepository) UpdateDailySales(ctx context.Context, sales domain.DailySales) (domain.DailySales, error) {
	updated, err := r.dao.UpdateDailySales(ctx, dailySalesToDAO(sales))
	if err != nil {
		return domain.DailySales{}, fmt.Errorf("r.dao.UpdateDailySales -> %w", err)
	}

	return dailySalesToDomain(updated), nil
}

func (r *ReportRepository) DeleteDailySales(ctx context.Context, id uint) error {
	if err := r.dao.DeleteDailySales(ctx, id); err != nil {
		return fmt.Errorf("r.dao.DeleteDailySales -> %w", err)
	}

	return nil
}

func (r *ReportRepository) CreatePopularDish(ctx context.Context, popular domain.PopularDish) (domain.PopularDish, error) {
	created, err := r.dao.InsertPopularDish(ctx, popularDishToDAO(popular))
	if err != nil {
		return domain.PopularDish{}, fmt.Errorf("r.dao.InsertPopularDish -> %w", err)
	}

	return popularDishToDomain(created), nil
}

func (r *ReportRepository) FindPopularDishByID(ctx context.Context, id uint) (domain.PopularDish, error) {
	found, err := r.dao.FindPopularDishByID(ctx, id)
	if err != nil {
		return domain.PopularDish{}, fmt.Errorf("r.dao.FindPopularDishByID -> %w", err)
	}

	return popularDishToDomain(found), nil
}

func (r *ReportRepository) FindPopularDishes(ctx context.Context, filter domain.PopularDishFilter) ([]domain.PopularDish, error) {
	found, err := r.dao.FindPopularDishes(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindPopularDishes -> %w", err)
	}

	popular := make([]domain.PopularDish, 0, len(found))
	for _, p := range found {
		popular = append(popular, popularDishToDomain(p))
	}

	return popular, nil
}

func (r *ReportRepository) UpdatePopularDish(ctx context.Context, popular domain.PopularDish) (domain.PopularDish, error) {
	updated, err := r.dao.UpdatePopularDish(ctx, popularDishToDAO(popular))
	if err != nil {
		return domain.PopularDish{}, fmt.Errorf("r.dao.UpdatePopularDish -> %w", err)
	}

	return popularDishToDomain(updated), nil
}

func (r *ReportRepository) DeletePopularDish(ctx context.Context, id uint) error {
	if err := r.dao.DeletePopularDish(ctx, id); err != nil {
		return fmt.Errorf("r.dao.DeletePopularDish -> %w", err)
	}

	return nil
}

func dailySalesToDAO(s domain.DailySales) dao.DailySales {
	return dao.DailySales{
		ID:                s.ID,
		Date:              s.Date.Time,
		TotalOrders:       s.TotalOrders,
		TotalRevenue:      s.TotalRevenue,
		AverageOrderValue: s.AverageOrderValue,
	}
}

func dailySalesToDomain(s dao.DailySales) domain.DailySales {
	return domain.DailySales{
		ID:                s.ID,
		Date:              domain.NewDate(s.Date),
		TotalOrders:       s.TotalOrders,
		TotalRevenue:      s.TotalRevenue,
		AverageOrderValue: s.AverageOrderValue,
	}
}

func popularDishToDAO(p domain.PopularDish) dao.PopularDish {
	return dao.PopularDish{
		ID:               p.ID,
		DishID:           p.DishID,
		OrderCount:       p.OrderCount,
		RevenueGenerated: p.RevenueGenerated,
		PeriodStart:      p.PeriodStart.Time,
		PeriodEnd:        p.PeriodEnd.Time,
	}
}

func popularDishToDomain(p dao.PopularDish) domain.PopularDish {
	popular := domain.PopularDish{
		ID:               p.ID,
		DishID:           p.DishID,
		OrderCount:       p.OrderCount,
		RevenueGenerated: p.RevenueGenerated,
		PeriodStart:      domain.NewDate(p.PeriodStart),
		PeriodEnd:        domain.NewDate(p.PeriodEnd),
	}
	if p.Dish != nil {
		dish := dishToDomain(*p.Dish)
		popular.Dish = &dish
	}

	return popular
}
