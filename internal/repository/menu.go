package repository

import (
	"context"
	"fmt"

	"github.com/tablewise/restaurant-api/internal/domain"
	"github.com/tablewise/restaurant-api/internal/repository/dao"
)

var (
	ErrCategoryNotFound   = dao.ErrCategoryNotFound
	ErrIngredientNotFound = dao.ErrIngredientNotFound
	ErrDishNotFound       = dao.ErrDishNotFound
)

type MenuDAO interface {
	InsertCategory(ctx context.Context, category dao.Category) (dao.Category, error)
	FindCategoryByID(ctx context.Context, id uint) (dao.Category, error)
	FindCategories(ctx context.Context) ([]dao.Category, error)
	UpdateCategory(ctx context.Context, category dao.Category) (dao.Category, error)
	DeleteCategory(ctx context.Context, id uint) error

	InsertIngredient(ctx context.Context, ingredient dao.Ingredient) (dao.Ingredient, error)
	FindIngredientByID(ctx context.Context, id uint) (dao.Ingredient, error)
	FindIngredientByName(ctx context.Context, name string) (dao.Ingredient, error)
	FindIngredients(ctx context.Context, filter domain.IngredientFilter) ([]dao.Ingredient, error)
	UpdateIngredient(ctx context.Context, ingredient dao.Ingredient) (dao.Ingredient, error)
	DeleteIngredient(ctx context.Context, id uint) error

	InsertDish(ctx context.Context, dish dao.Dish) (dao.Dish, error)
	FindDishByID(ctx context.Context, id uint) (dao.Dish, error)
	FindDishes(ctx context.Context, filter domain.DishFilter) ([]dao.Dish, error)
	UpdateDish(ctx context.Context, dish dao.Dish, replaceIngredients bool) (dao.Dish, error)
	DeleteDish(ctx context.Context, id uint) error
	CountDishes(ctx context.Context) (int64, error)
}

type MenuRepository struct {
	dao MenuDAO
}

func NewMenuRepository(dao MenuDAO) *MenuRepository {
	return &MenuRepository{
		dao: dao,
	}
}

func (r *MenuRepository) CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	created, err := r.dao.InsertCategory(ctx, dao.Category{
		Name:        category.Name,
		Description: category.Description,
	})
	if err != nil {
		return domain.Category{}, fmt.Errorf("r.dao.InsertCategory -> %w", err)
	}

	return categoryToDomain(created), nil
}

func (r *MenuRepository) FindCategoryByID(ctx context.Context, id uint) (domain.Category, error) {
	found, err := r.dao.FindCategoryByID(ctx, id)
	if err != nil {
		return domain.Category{}, fmt.Errorf("r.dao.FindCategoryByID -> %w", err)
	}

	return categoryToDomain(found), nil
}

func (r *MenuRepository) FindCategories(ctx context.Context) ([]domain.Category, error) {
	found, err := r.dao.FindCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindCategories -> %w", err)
	}

	categories := make([]domain.Category, 0, len(found))
	for _, c := range found {
		categories = append(categories, categoryToDomain(c))
	}

	return categories, nil
}

func (r *MenuRepository) UpdateCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	updated, err := r.dao.UpdateCategory(ctx, dao.Category{
		ID:          category.ID,
		Name:        category.Name,
		Description: category.Description,
	})
	if err != nil {
		return domain.Category{}, fmt.Errorf("r.dao.UpdateCategory -> %w", err)
	}

	return categoryToDomain(updated), nil
}

func (r *MenuRepository) DeleteCategory(ctx context.Context, id uint) error {
	if err := r.dao.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("r.dao.DeleteCategory -> %w", err)
	}

	return nil
}

func (r *MenuRepository) CreateIngredient(ctx context.Context, ingredient domain.Ingredient) (domain.Ingredient, error) {
	created, err := r.dao.InsertIngredient(ctx, ingredientToDAO(ingredient))
	if err != nil {
		return domain.Ingredient{}, fmt.Errorf("r.dao.InsertIngredient -> %w", err)
	}

	return ingredientToDomain(created), nil
}

func (r *MenuRepository) FindIngredientByID(ctx context.Context, id uint) (domain.Ingredient, error) {
	found, err := r.dao.FindIngredientByID(ctx, id)
	if err != nil {
		return domain.Ingredient{}, fmt.Errorf("r.dao.FindIngredientByID -> %w", err)
	}

	return ingredientToDomain(found), nil
}

func (r *MenuRepository) FindIngredientByName(ctx context.Context, name string) (domain.Ingredient, error) {
	found, err := r.dao.FindIngredientByName(ctx, name)
	if err != nil {
		return domain.Ingredient{}, fmt.Errorf("r.dao.FindIngredientByName -> %w", err)
	}

	return ingredientToDomain(found), nil
}

func (r *MenuRepository) FindIngredients(ctx context.Context, filter domain.IngredientFilter) ([]domain.Ingredient, error) {
	found, err := r.dao.FindIngredients(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindIngredients -> %w", err)
	}

	ingredients := make([]domain.Ingredient, 0, len(found))
	for _, i := range found {
		ingredients = append(ingredients, ingredientToDomain(i))
	}

	return ingredients, nil
}

func (r *MenuRepository) UpdateIngredient(ctx context.Context, ingredient domain.Ingredient) (domain.Ingredient, error) {
	updated, err := r.dao.UpdateIngredient(ctx, ingredientToDAO(ingredient))
	if err != nil {
		return domain.Ingredient{}, fmt.Errorf("r.dao.UpdateIngredient -> %w", err)
	}

	return ingredientToDomain(updated), nil
}

func (r *MenuRepository) DeleteIngredient(ctx context.Context, id uint) error {
	if err := r.dao.DeleteIngredient(ctx, id); err != nil {
		return fmt.Errorf("r.dao.DeleteIngredient -> %w", err)
	}

	return nil
}

func (r *MenuRepository) CreateDish(ctx context.Context, dish domain.Dish) (domain.Dish, error) {
	created, err := r.dao.InsertDish(ctx, dishToDAO(dish))
	if err != nil {
		return domain.Dish{}, fmt.Errorf("r.dao.InsertDish -> %w", err)
	}

	return dishToDomain(created), nil
}

func (r *MenuRepository) FindDishByID(ctx context.Context, id uint) (domain.Dish, error) {
	found, err := r.dao.FindDishByID(ctx, id)
	if err != nil {
		return domain.Dish{}, fmt.Errorf("r.dao.FindDishByID -> %w", err)
	}

	return dishToDomain(found), nil
}

func (r *MenuRepository) FindDishes(ctx context.Context, filter domain.DishFilter) ([]domain.Dish, error) {
	found, err := r.dao.FindDishes(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindDishes -> %w", err)
	}

	dishes := make([]domain.Dish, 0, len(found))
	for _, d := range found {
		dishes = append(dishes, dishToDomain(d))
	}

	return dishes, nil
}

func (r *MenuRepository) UpdateDish(ctx context.Context, dish domain.Dish, replaceIngredients bool) (domain.Dish, error) {
	updated, err := r.dao.UpdateDish(ctx, dishToDAO(dish), replaceIngredients)
	if err != nil {
		return domain.Dish{}, fmt.Errorf("r.dao.UpdateDish -> %w", err)
	}

	return dishToDomain(updated), nil
}

func (r *MenuRepository) DeleteDish(ctx context.Context, id uint) error {
	if err := r.dao.DeleteDish(ctx, id); err != nil {
		return fmt.Errorf("r.dao.DeleteDish -> %w", err)
	}

	return nil
}

func (r *MenuRepository) CountDishes(ctx context.Context) (int64, error) {
	count, err := r.dao.CountDishes(ctx)
	if err != nil {
		return 0, fmt.Errorf("r.dao.CountDishes -> %w", err)
	}

	return count, nil
}

func categoryToDomain(c dao.Category) domain.Category {
	return domain.Category{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func ingredientToDAO(i domain.Ingredient) dao.Ingredient {
	return dao.Ingredient{
		ID:          i.ID,
		Name:        i.Name,
		Unit:        i.Unit,
		CostPerUnit: i.CostPerUnit,
	}
}

func ingredientToDomain(i dao.Ingredient) domain.Ingredient {
	return domain.Ingredient{
		ID:          i.ID,
		Name:        i.Name,
		Unit:        i.Unit,
		CostPerUnit: i.CostPerUnit,
	}
}

func dishToDAO(d domain.Dish) dao.Dish {
	ingredients := make([]dao.DishIngredient, 0, len(d.Ingredients))
	for _, di := range d.Ingredients {
		ingredients = append(ingredients, dao.DishIngredient{
			DishID:       d.ID,
			IngredientID: di.IngredientID,
			Quantity:     di.Quantity,
		})
	}

	return dao.Dish{
		ID:              d.ID,
		Name:            d.Name,
		Description:     d.Description,
		Price:           d.Price,
		CategoryID:      d.CategoryID,
		Available:       d.Available,
		PreparationTime: d.PreparationTime,
		Calories:        d.Calories,
		Ingredients:     ingredients,
	}
}

func dishToDomain(d dao.Dish) domain.Dish {
	dish := domain.Dish{
		ID:              d.ID,
		Name:            d.Name,
		Description:     d.Description,
		Price:           d.Price,
		CategoryID:      d.CategoryID,
		Available:       d.Available,
		PreparationTime: d.PreparationTime,
		Calories:        d.Calories,
		Ingredients:     make([]domain.DishIngredient, 0, len(d.Ingredients)),
	}
	if d.Category != nil {
		category := categoryToDomain(*d.Category)
		dish.Category = &category
	}
	for _, di := range d.Ingredients {
		line := domain.DishIngredient{
			IngredientID: di.IngredientID,
			Quantity:     di.Quantity,
		}
		if di.Ingredient != nil {
			ingredient := ingredientToDomain(*di.Ingredient)
			line.Ingredient = &ingredient
		}
		dish.Ingredients = append(dish.Ingredients, line)
	}

	return dish
}
