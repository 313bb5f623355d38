package service

import (
	"context"
	"fmt"

	"github.com/tablewise/restaurant-api/internal/domain"
	"github.com/tablewise/restaurant-api/internal/repository"
)

var (
	ErrCategoryNotFound   = repository.ErrCategoryNotFound
	ErrIngredientNotFound = repository.ErrIngredientNotFound
	ErrDishNotFound       = repository.ErrDishNotFound
)

type MenuRepository interface {
	CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error)
	FindCategoryByID(ctx context.Context, id uint) (domain.Category, error)
	FindCategories(ctx context.Context) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, category domain.Category) (domain.Category, error)
	DeleteCategory(ctx context.Context, id uint) error

	CreateIngredient(ctx context.Context, ingredient domain.Ingredient) (domain.Ingredient, error)
	FindIngredientByID(ctx context.Context, id uint) (domain.Ingredient, error)
	FindIngredientByName(ctx context.Context, name string) (domain.Ingredient, error)
	FindIngredients(ctx context.Context, filter domain.IngredientFilter) ([]domain.Ingredient, error)
	UpdateIngredient(ctx context.Context, ingredient domain.Ingredient) (domain.Ingredient, error)
	DeleteIngredient(ctx context.Context, id uint) error

	CreateDish(ctx context.Context, dish domain.Dish) (domain.Dish, error)
	FindDishByID(ctx context.Context, id uint) (domain.Dish, error)
	FindDishes(ctx context.Context, filter domain.DishFilter) ([]domain.Dish, error)
	UpdateDish(ctx context.Context, dish domain.Dish, replaceIngredients bool) (domain.Dish, error)
	DeleteDish(ctx context.Context, id uint) error
	CountDishes(ctx context.Context) (int64, error)
}

type MenuService struct {
	repo MenuRepository
}

func NewMenuService(repo MenuRepository) *MenuService {
	return &MenuService{
		repo: repo,
	}
}

func (s *MenuService) CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	created, err := s.repo.CreateCategory(ctx, category)
	if err != nil {
		return domain.Category{}, fmt.Errorf("s.repo.CreateCategory -> %w", err)
	}

	return created, nil
}

func (s *MenuService) GetCategory(ctx context.Context, id uint) (domain.Category, error) {
	category, err := s.repo.FindCategoryByID(ctx, id)
	if err != nil {
		return domain.Category{}, fmt.Errorf("s.repo.FindCategoryByID -> %w", err)
	}

	return category, nil
}

func (s *MenuService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.repo.FindCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindCategories -> %w", err)
	}

	return categories, nil
}

func (s *MenuService) UpdateCategory(ctx context.Context, id uint, update domain.CategoryUpdate) (domain.Category, error) {
	category, err := s.repo.FindCategoryByID(ctx, id)
	if err != nil {
		return domain.Category{}, fmt.Errorf("s.repo.FindCategoryByID -> %w", err)
	}

	updated, err := s.repo.UpdateCategory(ctx, update.Apply(category))
	if err != nil {
		return domain.Category{}, fmt.Errorf("s.repo.UpdateCategory -> %w", err)
	}

	return updated, nil
}

func (s *MenuService) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("s.repo.DeleteCategory -> %w", err)
	}

	return nil
}

func (s *MenuService) CreateIngredient(ctx context.Context, ingredient domain.Ingredient) (domain.Ingredient, error) {
	if err := ingredient.Validate(); err != nil {
		return domain.Ingredient{}, err
	}

	created, err := s.repo.CreateIngredient(ctx, ingredient)
	if err != nil {
		return domain.Ingredient{}, fmt.Errorf("s.repo.CreateIngredient -> %w", err)
	}

	return created, nil
}

func (s *MenuService) GetIngredient(ctx context.Context, id uint) (domain.Ingredient, error) {
	ingredient, err := s.repo.FindIngredientByID(ctx, id)
	if err != nil {
		return domain.Ingredient{}, fmt.Errorf("s.repo.FindIngredientByID -> %w", err)
	}

	return ingredient, nil
}

func (s *MenuService) FindIngredientByName(ctx context.Context, name string) (domain.Ingredient, error) {
	ingredient, err := s.repo.FindIngredientByName(ctx, name)
	if err != nil {
		return domain.Ingredient{}, fmt.Errorf("s.repo.FindIngredientByName -> %w", err)
	}

	return ingredient, nil
}

func (s *MenuService) ListIngredients(ctx context.Context, filter domain.IngredientFilter) ([]domain.Ingredient, error) {
	ingredients, err := s.repo.FindIngredients(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindIngredients -> %w", err)
	}

	return ingredients, nil
}

func (s *MenuService) UpdateIngredient(ctx context.Context, id uint, update domain.IngredientUpdate) (domain.Ingredient, error) {
	ingredient, err := s.repo.FindIngredientByID(ctx, id)
	if err != nil {
		return domain.Ingredient{}, fmt.Errorf("s.repo.FindIngredientByID -> %w", err)
	}

	ingredient = update.Apply(ingredient)
	if err = ingredient.Validate(); err != nil {
		return domain.Ingredient{}, err
	}

	updated, err := s.repo.UpdateIngredient(ctx, ingredient)
	if err != nil {
		return domain.Ingredient{}, fmt.Errorf("s.repo.UpdateIngredient -> %w", err)
	}

	return updated, nil
}

func (s *MenuService) DeleteIngredient(ctx context.Context, id uint) error {
	if err := s.repo.DeleteIngredient(ctx, id); err != nil {
		return fmt.Errorf("s.repo.DeleteIngredient -> %w", err)
	}

	return nil
}

func (s *MenuService) CreateDish(ctx context.Context, dish domain.Dish) (domain.Dish, error) {
	if err := dish.Validate(); err != nil {
		return domain.Dish{}, err
	}

	created, err := s.repo.CreateDish(ctx, dish)
	if err != nil {
		return domain.Dish{}, fmt.Errorf("s.repo.CreateDish -> %w", err)
	}

	return created, nil
}

func (s *MenuService) GetDish(ctx context.Context, id uint) (domain.Dish, error) {
	dish, err := s.repo.FindDishByID(ctx, id)
	if err != nil {
		return domain.Dish{}, fmt.Errorf("s.repo.FindDishByID -> %w", err)
	}

	return dish, nil
}

func (s *MenuService) ListDishes(ctx context.Context, filter domain.DishFilter) ([]domain.Dish, error) {
	dishes, err := s.repo.FindDishes(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindDishes -> %w", err)
	}

	return dishes, nil
}

// UpdateDish validates a replacement ingredient list before touching the
// dish, then writes the fields and the whole list in one transaction.
func (s *MenuService) UpdateDish(ctx context.Context, id uint, update domain.DishUpdate) (domain.Dish, error) {
	if update.Ingredients != nil {
		if err := domain.ValidateDishIngredients(*update.Ingredients); err != nil {
			return domain.Dish{}, err
		}
	}

	dish, err := s.repo.FindDishByID(ctx, id)
	if err != nil {
		return domain.Dish{}, fmt.Errorf("s.repo.FindDishByID -> %w", err)
	}

	dish = update.Apply(dish)
	if err = dish.Validate(); err != nil {
		return domain.Dish{}, err
	}

	updated, err := s.repo.UpdateDish(ctx, dish, update.Ingredients != nil)
	if err != nil {
		return domain.Dish{}, fmt.Errorf("s.repo.UpdateDish -> %w", err)
	}

	return updated, nil
}

func (s *MenuService) DeleteDish(ctx context.Context, id uint) error {
	if err := s.repo.DeleteDish(ctx, id); err != nil {
		return fmt.Errorf("s.repo.DeleteDish -> %w", err)
	}

	return nil
}

func (s *MenuService) IsEmpty(ctx context.Context) (bool, error) {
	count, err := s.repo.CountDishes(ctx)
	if err != nil {
		return false, fmt.Errorf("s.repo.CountDishes -> %w", err)
	}

	return count == 0, nil
}
