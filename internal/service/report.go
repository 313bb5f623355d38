package service

import (
	"context"
	"fmt"

	"github.com/tablewise/restaurant-api/internal/domain"
	"github.com/tablewise/restaurant-api/internal/repository"
)

var (
	ErrDailySalesNotFound  = repository.ErrDailySalesNotFound
	ErrPopularDishNotFound = repository.ErrPopularDishNotFound
)

type ReportRepository interface {
	CreateDailySales(ctx context.Context, sales domain.DailySales) (domain.DailySales, error)
	FindDailySalesByID(ctx context.Context, id uint) (domain.DailySales, error)
	FindDailySales(ctx context.Context, filter domain.DailySalesFilter) ([]domain.DailySales, error)
	UpdateDailySales(ctx context.Context, sales domain.DailySales) (domain.DailySales, error)
	DeleteDailySales(ctx context.Context, id uint) error

	CreatePopularDish(ctx context.Context, popular domain.PopularDish) (domain.PopularDish, error)
	FindPopularDishByID(ctx context.Context, id uint) (domain.PopularDish, error)
	FindPopularDishes(ctx context.Context, filter domain.PopularDishFilter) ([]domain.PopularDish, error)
	UpdatePopularDish(ctx context.Context, popular domain.PopularDish) (domain.PopularDish, error)
	DeletePopularDish(ctx context.Context, id uint) error
}

// ReportService stores aggregates computed elsewhere. Only managers write.
type ReportService struct {
	repo ReportRepository
}

func NewReportService(repo ReportRepository) *ReportService {
	return &ReportService{
		repo: repo,
	}
}

func (s *ReportService) CreateDailySales(ctx context.Context, actor domain.Actor, sales domain.DailySales) (domain.DailySales, error) {
	if err := requireRole(actor, domain.RoleManager); err != nil {
		return domain.DailySales{}, err
	}

	created, err := s.repo.CreateDailySales(ctx, sales)
	if err != nil {
		return domain.DailySales{}, fmt.Errorf("s.repo.CreateDailySales -> %w", err)
	}

	return created, nil
}

func (s *ReportService) GetDailySales(ctx context.Context, id uint) (domain.DailySales, error) {
	sales, err := s.repo.FindDailySalesByID(ctx, id)
	if err != nil {
		return domain.DailySales{}, fmt.Errorf("s.repo.FindDailySalesByID -> %w", err)
	}

	return sales, nil
}

func (s *ReportService) ListDailySales(ctx context.Context, filter domain.DailySalesFilter) ([]domain.DailySales, error) {
	sales, err := s.repo.FindDailySales(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindDailySales -> %w", err)
	}

	return sales, nil
}

func (s *ReportService) UpdateDailySales(ctx context.Context, actor domain.Actor, id uint, sales domain.DailySales) (domain.DailySales, error) {
	if err := requireRole(actor, domain.RoleManager); err != nil {
		return domain.DailySales{}, err
	}
	sales.ID = id

	updated, err := s.repo.UpdateDailySales(ctx, sales)
	if err != nil {
		return domain.DailySales{}, fmt.Errorf("s.repo.UpdateDailySales -> %w", err)
	}

	return updated, nil
}

func (s *ReportService) DeleteDailySales(ctx context.Context, actor domain.Actor, id uint) error {
	if err := requireRole(actor, domain.RoleManager); err != nil {
		return err
	}

	if err := s.repo.DeleteDailySales(ctx, id); err != nil {
		return fmt.Errorf("s.repo.DeleteDailySales -> %w", err)
	}

	return nil
}

func (s *ReportService) CreatePopularDish(ctx context.Context, actor domain.Actor, popular domain.PopularDish) (domain.PopularDish, error) {
	if err := requireRole(actor, domain.RoleManager); err != nil {
		return domain.PopularDish{}, err
	}
	if err := popular.Validate(); err != nil {
		return domain.PopularDish{}, err
	}

	created, err := s.repo.CreatePopularDish(ctx, popular)
	if err != nil {
		return domain.PopularDish{}, fmt.Errorf("s.repo.CreatePopularDish -> %w", err)
	}

	return created, nil
}

func (s *ReportService) GetPopularDish(ctx context.Context, id uint) (domain.PopularDish, error) {
	popular, err := s.repo.FindPopularDishByID(ctx, id)
	if err != nil {
		return domain.PopularDish{}, fmt.Errorf("s.repo.FindPopularDishByID -> %w", err)
	}

	return popular, nil
}

func (s *ReportService) ListPopularDishes(ctx context.Context, filter domain.PopularDishFilter) ([]domain.PopularDish, error) {
	popular, err := s.repo.FindPopularDishes(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindPopularDishes -> %w", err)
	}

	return popular, nil
}

func (s *ReportService) UpdatePopularDish(ctx context.Context, actor domain.Actor, id uint, popular domain.PopularDish) (domain.PopularDish, error) {
	if err := requireRole(actor, domain.RoleManager); err != nil {
		return domain.PopularDish{}, err
	}
	if err := popular.Validate(); err != nil {
		return domain.PopularDish{}, err
	}
	popular.ID = id

	updated, err := s.repo.UpdatePopularDish(ctx, popular)
	if err != nil {
		return domain.PopularDish{}, fmt.Errorf("s.repo.UpdatePopularDish -> %w", err)
	}

	return updated, nil
}

func (s *ReportService) DeletePopularDish(ctx context.Context, actor domain.Actor, id uint) error {
	if err := requireRole(actor, domain.RoleManager); err != nil {
		return err
	}

	if err := s.repo.DeletePopularDish(ctx, id); err != nil {
		return fmt.Errorf("s.repo.DeletePopularDish -> %w", err)
	}

	return nil
}
