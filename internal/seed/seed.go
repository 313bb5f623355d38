package seed

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tablewise/restaurant-api/internal/domain"
)

type Menu struct {
	Ingredients []Ingredient `yaml:"ingredients"`
	Categories  []Category   `yaml:"categories"`
}

type Ingredient struct {
	Name             string  `yaml:"name"`
	Unit             string  `yaml:"unit"`
	CostPerUnit      string  `yaml:"cost_per_unit"`
	Stock            float64 `yaml:"stock"`
	ReorderThreshold float64 `yaml:"reorder_threshold"`
}

type Category struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Dishes      []Dish `yaml:"dishes"`
}

type Dish struct {
	Name            string           `yaml:"name"`
	Description     string           `yaml:"description"`
	Price           string           `yaml:"price"`
	PreparationTime int              `yaml:"preparation_time"`
	Calories        *int             `yaml:"calories"`
	Unavailable     bool             `yaml:"unavailable"`
	Ingredients     []DishIngredient `yaml:"ingredients"`
}

type DishIngredient struct {
	Name     string  `yaml:"name"`
	Quantity float64 `yaml:"quantity"`
}

func LoadMenu(path string) (Menu, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Menu{}, fmt.Errorf("os.ReadFile -> %w", err)
	}

	var menu Menu
	if err = yaml.Unmarshal(data, &menu); err != nil {
		return Menu{}, fmt.Errorf("yaml.Unmarshal -> %w", err)
	}

	return menu, nil
}

type MenuService interface {
	IsEmpty(ctx context.Context) (bool, error)
	CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error)
	CreateIngredient(ctx context.Context, ingredient domain.Ingredient) (domain.Ingredient, error)
	CreateDish(ctx context.Context, dish domain.Dish) (domain.Dish, error)
}

type InventoryService interface {
	CreateStock(ctx context.Context, actor domain.Actor, stock domain.Stock) (domain.Stock, error)
}

// Apply loads menu into an empty catalog. It reports whether anything was
// written.
func Apply(ctx context.Context, menu Menu, menuSvc MenuService, inventorySvc InventoryService) (bool, error) {
	empty, err := menuSvc.IsEmpty(ctx)
	if err != nil {
		return false, fmt.Errorf("menuSvc.IsEmpty -> %w", err)
	}
	if !empty {
		return false, nil
	}

	ingredientIDs := make(map[string]uint, len(menu.Ingredients))
	for _, in := range menu.Ingredients {
		cost, err := decimal.NewFromString(in.CostPerUnit)
		if err != nil {
			return false, fmt.Errorf("ingredient %q: invalid cost_per_unit: %w", in.Name, err)
		}

		created, err := menuSvc.CreateIngredient(ctx, domain.Ingredient{
			Name:        in.Name,
			Unit:        in.Unit,
			CostPerUnit: cost,
		})
		if err != nil {
			return false, fmt.Errorf("menuSvc.CreateIngredient(%q) -> %w", in.Name, err)
		}
		ingredientIDs[in.Name] = created.ID

		_, err = inventorySvc.CreateStock(ctx, domain.Actor{}, domain.Stock{
			IngredientID:     created.ID,
			Quantity:         in.Stock,
			ReorderThreshold: in.ReorderThreshold,
		})
		if err != nil {
			return false, fmt.Errorf("inventorySvc.CreateStock(%q) -> %w", in.Name, err)
		}
	}

	dishes := 0
	for _, c := range menu.Categories {
		category, err := menuSvc.CreateCategory(ctx, domain.Category{
			Name:        c.Name,
			Description: c.Description,
		})
		if err != nil {
			return false, fmt.Errorf("menuSvc.CreateCategory(%q) -> %w", c.Name, err)
		}

		for _, d := range c.Dishes {
			dish, err := toDish(d, category.ID, ingredientIDs)
			if err != nil {
				return false, err
			}
			if _, err = menuSvc.CreateDish(ctx, dish); err != nil {
				return false, fmt.Errorf("menuSvc.CreateDish(%q) -> %w", d.Name, err)
			}
			dishes++
		}
	}

	zap.L().Info("menu seeded",
		zap.Int("ingredients", len(menu.Ingredients)),
		zap.Int("categories", len(menu.Categories)),
		zap.Int("dishes", dishes),
	)

	return true, nil
}

func toDish(d Dish, categoryID uint, ingredientIDs map[string]uint) (domain.Dish, error) {
	price, err := decimal.NewFromString(d.Price)
	if err != nil {
		return domain.Dish{}, fmt.Errorf("dish %q: invalid price: %w", d.Name, err)
	}

	lines := make([]domain.DishIngredient, 0, len(d.Ingredients))
	for _, di := range d.Ingredients {
		id, ok := ingredientIDs[di.Name]
		if !ok {
			return domain.Dish{}, fmt.Errorf("dish %q: unknown ingredient %q", d.Name, di.Name)
		}
		lines = append(lines, domain.DishIngredient{
			IngredientID: id,
			Quantity:     di.Quantity,
		})
	}

	return domain.Dish{
		Name:            d.Name,
		Description:     d.Description,
		Price:           price,
		CategoryID:      categoryID,
		Available:       !d.Unavailable,
		PreparationTime: d.PreparationTime,
		Calories:        d.Calories,
		Ingredients:     lines,
	}, nil
}
