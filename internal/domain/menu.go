package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrIngredientIDRequired   = NewError(ErrInvalidArgument, "ingredient is required")
	ErrIngredientQuantity     = NewError(ErrInvalidArgument, "ingredient quantity must be greater than zero")
	ErrDuplicateIngredient    = NewError(ErrInvalidArgument, "ingredient listed more than once")
	ErrNegativePrice          = NewError(ErrInvalidArgument, "price must not be negative")
	ErrInvalidPreparation     = NewError(ErrInvalidArgument, "preparation time must be greater than zero")
	ErrCategoryRequired       = NewError(ErrInvalidArgument, "category is required")
	ErrNegativeIngredientCost = NewError(ErrInvalidArgument, "cost per unit must not be negative")
)

type Category struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Ingredient struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Unit        string          `json:"unit"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
}

func (i Ingredient) Validate() error {
	if i.CostPerUnit.IsNegative() {
		return ErrNegativeIngredientCost
	}
	return nil
}

type Dish struct {
	ID              uint             `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Price           decimal.Decimal  `json:"price"`
	CategoryID      uint             `json:"category_id"`
	Category        *Category        `json:"category,omitempty"`
	Available       bool             `json:"available"`
	PreparationTime int              `json:"preparation_time"`
	Calories        *int             `json:"calories"`
	Ingredients     []DishIngredient `json:"ingredients"`
}

// DishIngredient is the quantity of one ingredient used by a dish.
type DishIngredient struct {
	IngredientID uint        `json:"ingredient_id"`
	Ingredient   *Ingredient `json:"ingredient,omitempty"`
	Quantity     float64     `json:"quantity"`
}

func (d Dish) Validate() error {
	if d.CategoryID == 0 {
		return ErrCategoryRequired
	}
	if d.Price.IsNegative() {
		return ErrNegativePrice
	}
	if d.PreparationTime <= 0 {
		return ErrInvalidPreparation
	}
	return ValidateDishIngredients(d.Ingredients)
}

// ValidateDishIngredients checks a full replacement set before anything is written.
func ValidateDishIngredients(ingredients []DishIngredient) error {
	seen := make(map[uint]struct{}, len(ingredients))
	for _, di := range ingredients {
		if di.IngredientID == 0 {
			return ErrIngredientIDRequired
		}
		if di.Quantity <= 0 {
			return ErrIngredientQuantity
		}
		if _, ok := seen[di.IngredientID]; ok {
			return ErrDuplicateIngredient
		}
		seen[di.IngredientID] = struct{}{}
	}
	return nil
}

// DishUpdate carries the fields of a partial dish update. Nil means unchanged.
// A non-nil Ingredients replaces the whole ingredient set.
type DishUpdate struct {
	Name            *string
	Description     *string
	Price           *decimal.Decimal
	CategoryID      *uint
	Available       *bool
	PreparationTime *int
	Calories        *int
	Ingredients     *[]DishIngredient
}

func (u DishUpdate) Apply(d Dish) Dish {
	if u.Name != nil {
		d.Name = *u.Name
	}
	if u.Description != nil {
		d.Description = *u.Description
	}
	if u.Price != nil {
		d.Price = *u.Price
	}
	if u.CategoryID != nil {
		d.CategoryID = *u.CategoryID
		d.Category = nil
	}
	if u.Available != nil {
		d.Available = *u.Available
	}
	if u.PreparationTime != nil {
		d.PreparationTime = *u.PreparationTime
	}
	if u.Calories != nil {
		d.Calories = u.Calories
	}
	if u.Ingredients != nil {
		d.Ingredients = *u.Ingredients
	}
	return d
}

type CategoryUpdate struct {
	Name        *string
	Description *string
}

func (u CategoryUpdate) Apply(c Category) Category {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
	return c
}

type IngredientUpdate struct {
	Name        *string
	Unit        *string
	CostPerUnit *decimal.Decimal
}

func (u IngredientUpdate) Apply(i Ingredient) Ingredient {
	if u.Name != nil {
		i.Name = *u.Name
	}
	if u.Unit != nil {
		i.Unit = *u.Unit
	}
	if u.CostPerUnit != nil {
		i.CostPerUnit = *u.CostPerUnit
	}
	return i
}
