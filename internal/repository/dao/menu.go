package dao

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tablewise/restaurant-api/internal/domain"
)

var (
	ErrCategoryNotFound   = domain.NewError(domain.ErrNotFound, "category not found")
	ErrCategoryInUse      = domain.NewError(domain.ErrConflict, "category has dishes referenced by orders")
	ErrIngredientNotFound = domain.NewError(domain.ErrNotFound, "ingredient not found")
	ErrIngredientExists   = domain.NewError(domain.ErrConflict, "ingredient with this name already exists")
	ErrDishNotFound       = domain.NewError(domain.ErrNotFound, "dish not found")
	ErrDishInUse          = domain.NewError(domain.ErrConflict, "dish is referenced by orders, mark it unavailable instead")
)

type Category struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Ingredient struct {
	ID          uint            `gorm:"primaryKey"`
	Name        string          `gorm:"uniqueIndex;not null"`
	Unit        string          `gorm:"not null"`
	CostPerUnit decimal.Decimal `gorm:"type:numeric(12,4);not null"`
}

type Dish struct {
	ID              uint   `gorm:"primaryKey"`
	Name            string `gorm:"not null"`
	Description     string
	Price           decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	CategoryID      uint            `gorm:"not null;index"`
	Category        *Category       `gorm:"constraint:OnDelete:CASCADE"`
	Available       bool            `gorm:"not null"`
	PreparationTime int             `gorm:"not null"`
	Calories        *int
	Ingredients     []DishIngredient `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type DishIngredient struct {
	ID           uint        `gorm:"primaryKey"`
	DishID       uint        `gorm:"not null;uniqueIndex:idx_dish_ingredient"`
	IngredientID uint        `gorm:"not null;uniqueIndex:idx_dish_ingredient"`
	Ingredient   *Ingredient `gorm:"constraint:OnDelete:CASCADE"`
	Quantity     float64     `gorm:"not null"`
}

type MenuDAO struct {
	db *gorm.DB
}

func NewMenuDAO(db *gorm.DB) *MenuDAO {
	return &MenuDAO{
		db: db,
	}
}

func (d *MenuDAO) InsertCategory(ctx context.Context, category Category) (Category, error) {
	if err := d.db.WithContext(ctx).Create(&category).Error; err != nil {
		return Category{}, err
	}

	return category, nil
}

func (d *MenuDAO) FindCategoryByID(ctx context.Context, id uint) (Category, error) {
	var category Category

	result := d.db.WithContext(ctx).First(&category, id)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return Category{}, ErrCategoryNotFound
		}

		return Category{}, result.Error
	}

	return category, nil
}

func (d *MenuDAO) FindCategories(ctx context.Context) ([]Category, error) {
	var categories []Category

	if err := d.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}

	return categories, nil
}

func (d *MenuDAO) UpdateCategory(ctx context.Context, category Category) (Category, error) {
	result := d.db.WithContext(ctx).Model(&Category{ID: category.ID}).
		Select("name", "description").
		Updates(&category)
	if result.Error != nil {
		return Category{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Category{}, ErrCategoryNotFound
	}

	return d.FindCategoryByID(ctx, category.ID)
}

// DeleteCategory removes the category and its dishes.
func (d *MenuDAO) DeleteCategory(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Category{}, id)
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return ErrCategoryInUse
		}

		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

func (d *MenuDAO) InsertIngredient(ctx context.Context, ingredient Ingredient) (Ingredient, error) {
	if err := d.db.WithContext(ctx).Create(&ingredient).Error; err != nil {
		if isUniqueViolation(err) {
			return Ingredient{}, ErrIngredientExists
		}

		return Ingredient{}, err
	}

	return ingredient, nil
}

func (d *MenuDAO) FindIngredientByID(ctx context.Context, id uint) (Ingredient, error) {
	var ingredient Ingredient

	result := d.db.WithContext(ctx).First(&ingredient, id)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return Ingredient{}, ErrIngredientNotFound
		}

		return Ingredient{}, result.Error
	}

	return ingredient, nil
}

func (d *MenuDAO) FindIngredientByName(ctx context.Context, name string) (Ingredient, error) {
	var ingredient Ingredient

	result := d.db.WithContext(ctx).First(&ingredient, "name = ?", name)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return Ingredient{}, ErrIngredientNotFound
		}

		return Ingredient{}, result.Error
	}

	return ingredient, nil
}

func (d *MenuDAO) FindIngredients(ctx context.Context, filter domain.IngredientFilter) ([]Ingredient, error) {
	var ingredients []Ingredient

	query := d.db.WithContext(ctx).Order("name")
	if filter.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(filter.Search))
	}
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, err
	}

	return ingredients, nil
}

func (d *MenuDAO) UpdateIngredient(ctx context.Context, ingredient Ingredient) (Ingredient, error) {
	result := d.db.WithContext(ctx).Model(&Ingredient{ID: ingredient.ID}).
		Select("name", "unit", "cost_per_unit").
		Updates(&ingredient)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return Ingredient{}, ErrIngredientExists
		}

		return Ingredient{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Ingredient{}, ErrIngredientNotFound
	}

	return d.FindIngredientByID(ctx, ingredient.ID)
}

// DeleteIngredient removes the ingredient with its stock, ledger and recipe lines.
func (d *MenuDAO) DeleteIngredient(ctx context.Context, id uint) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&DishIngredient{}, &StockTransaction{}, &Stock{}} {
			if err := tx.Where("ingredient_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&Ingredient{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrIngredientNotFound
		}

		return nil
	})
}

func (d *MenuDAO) preloadDish(db *gorm.DB) *gorm.DB {
	return db.Preload("Category").
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Ingredients.Ingredient")
}

func (d *MenuDAO) FindDishByID(ctx context.Context, id uint) (Dish, error) {
	return d.findDish(d.db.WithContext(ctx), id)
}

func (d *MenuDAO) findDish(db *gorm.DB, id uint) (Dish, error) {
	var dish Dish

	result := d.preloadDish(db).First(&dish, id)
	if result.Error != nil {
		if isNotFound(result.Error) {
			return Dish{}, ErrDishNotFound
		}

		return Dish{}, result.Error
	}

	return dish, nil
}

var dishOrdering = map[string]string{
	"price":            "price",
	"name":             "name",
	"preparation_time": "preparation_time",
}

func (d *MenuDAO) FindDishes(ctx context.Context, filter domain.DishFilter) ([]Dish, error) {
	var dishes []Dish

	query := d.preloadDish(d.db.WithContext(ctx)).
		Order(orderBy(filter.Ordering, dishOrdering, "name ASC")).
		Order("id")
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Available != nil {
		query = query.Where("available = ?", *filter.Available)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	if err := query.Find(&dishes).Error; err != nil {
		return nil, err
	}

	return dishes, nil
}

// checkDishRefs verifies the category and every ingredient exist.
func checkDishRefs(tx *gorm.DB, categoryID uint, ingredients []DishIngredient) error {
	var count int64
	if err := tx.Model(&Category{}).Where("id = ?", categoryID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrCategoryNotFound
	}

	if len(ingredients) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(ingredients))
	for _, di := range ingredients {
		ids = append(ids, di.IngredientID)
	}
	if err := tx.Model(&Ingredient{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return err
	}
	if int(count) != len(ids) {
		return ErrIngredientNotFound
	}

	return nil
}

func (d *MenuDAO) InsertDish(ctx context.Context, dish Dish) (Dish, error) {
	var created Dish
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkDishRefs(tx, dish.CategoryID, dish.Ingredients); err != nil {
			return err
		}

		dish.Category = nil
		for i := range dish.Ingredients {
			dish.Ingredients[i].Ingredient = nil
		}
		if err := tx.Create(&dish).Error; err != nil {
			return err
		}

		var err error
		created, err = d.findDish(tx, dish.ID)
		return err
	})
	if err != nil {
		return Dish{}, err
	}

	return created, nil
}

// UpdateDish writes the dish fields and, when replaceIngredients is set,
// swaps the whole ingredient set in the same transaction.
func (d *MenuDAO) UpdateDish(ctx context.Context, dish Dish, replaceIngredients bool) (Dish, error) {
	var updated Dish
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current Dish
		if err := tx.Clauses(lockForUpdate).First(&current, dish.ID).Error; err != nil {
			if isNotFound(err) {
				return ErrDishNotFound
			}
			return err
		}

		var refs []DishIngredient
		if replaceIngredients {
			refs = dish.Ingredients
		}
		if err := checkDishRefs(tx, dish.CategoryID, refs); err != nil {
			return err
		}

		err := tx.Model(&current).
			Omit(clause.Associations).
			Select("name", "description", "price", "category_id", "available", "preparation_time", "calories").
			Updates(&Dish{
				Name:            dish.Name,
				Description:     dish.Description,
				Price:           dish.Price,
				CategoryID:      dish.CategoryID,
				Available:       dish.Available,
				PreparationTime: dish.PreparationTime,
				Calories:        dish.Calories,
			}).Error
		if err != nil {
			return err
		}

		if replaceIngredients {
			if err = tx.Where("dish_id = ?", dish.ID).Delete(&DishIngredient{}).Error; err != nil {
				return err
			}
			for _, di := range dish.Ingredients {
				line := DishIngredient{DishID: dish.ID, IngredientID: di.IngredientID, Quantity: di.Quantity}
				if err = tx.Omit("Ingredient").Create(&line).Error; err != nil {
					return err
				}
			}
		}

		updated, err = d.findDish(tx, dish.ID)
		return err
	})
	if err != nil {
		return Dish{}, err
	}

	return updated, nil
}

func (d *MenuDAO) DeleteDish(ctx context.Context, id uint) error {
	result := d.db.WithContext(ctx).Delete(&Dish{}, id)
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return ErrDishInUse
		}

		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDishNotFound
	}

	return nil
}

func (d *MenuDAO) CountDishes(ctx context.Context) (int64, error) {
	var count int64
	if err := d.db.WithContext(ctx).Model(&Dish{}).Count(&count).Error; err != nil {
		return 0, err
	}

	return count, nil
}
