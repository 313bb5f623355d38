package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablewise/restaurant-api/internal/domain"
)

const menuYAML = `
ingredients:
  - name: Flour
    unit: g
    cost_per_unit: "0.002"
    stock: 1000
    reorder_threshold: 200
categories:
  - name: Bread
    description: Baked daily
    dishes:
      - name: Focaccia
        price: "4.50"
        preparation_time: 20
        ingredients:
          - name: Flour
            quantity: 150
`

type fakeCatalog struct {
	dishes      []domain.Dish
	categories  []domain.Category
	ingredients []domain.Ingredient
	stocks      []domain.Stock
	nonEmpty    bool
}

func (f *fakeCatalog) IsEmpty(context.Context) (bool, error) {
	return !f.nonEmpty, nil
}

func (f *fakeCatalog) CreateCategory(_ context.Context, c domain.Category) (domain.Category, error) {
	c.ID = uint(len(f.categories) + 1)
	f.categories = append(f.categories, c)
	return c, nil
}

func (f *fakeCatalog) CreateIngredient(_ context.Context, i domain.Ingredient) (domain.Ingredient, error) {
	i.ID = uint(len(f.ingredients) + 10)
	f.ingredients = append(f.ingredients, i)
	return i, nil
}

func (f *fakeCatalog) CreateDish(_ context.Context, d domain.Dish) (domain.Dish, error) {
	f.dishes = append(f.dishes, d)
	return d, nil
}

func (f *fakeCatalog) CreateStock(_ context.Context, _ domain.Actor, s domain.Stock) (domain.Stock, error) {
	f.stocks = append(f.stocks, s)
	return s, nil
}

func writeMenu(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "menu.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMenu(t *testing.T) {
	menu, err := LoadMenu(writeMenu(t, menuYAML))
	require.NoError(t, err)

	require.Len(t, menu.Ingredients, 1)
	assert.Equal(t, "Flour", menu.Ingredients[0].Name)
	require.Len(t, menu.Categories, 1)
	require.Len(t, menu.Categories[0].Dishes, 1)
	assert.Equal(t, "4.50", menu.Categories[0].Dishes[0].Price)
}

func TestLoadMenu_BundledFixture(t *testing.T) {
	menu, err := LoadMenu("../../cmd/app/menu.yml")
	require.NoError(t, err)
	assert.NotEmpty(t, menu.Categories)
	assert.NotEmpty(t, menu.Ingredients)
}

func TestApply(t *testing.T) {
	menu, err := LoadMenu(writeMenu(t, menuYAML))
	require.NoError(t, err)

	catalog := &fakeCatalog{}
	applied, err := Apply(context.Background(), menu, catalog, catalog)
	require.NoError(t, err)
	assert.True(t, applied)

	require.Len(t, catalog.stocks, 1)
	assert.Equal(t, uint(10), catalog.stocks[0].IngredientID)
	assert.Equal(t, 1000.0, catalog.stocks[0].Quantity)

	require.Len(t, catalog.dishes, 1)
	dish := catalog.dishes[0]
	assert.True(t, dish.Price.Equal(decimal.RequireFromString("4.50")))
	assert.True(t, dish.Available)
	assert.Equal(t, uint(1), dish.CategoryID)
	require.Len(t, dish.Ingredients, 1)
	assert.Equal(t, uint(10), dish.Ingredients[0].IngredientID)
}

func TestApply_SkipsNonEmptyCatalog(t *testing.T) {
	catalog := &fakeCatalog{nonEmpty: true}

	applied, err := Apply(context.Background(), Menu{Categories: []Category{{Name: "x"}}}, catalog, catalog)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Empty(t, catalog.categories)
}

func TestApply_UnknownIngredient(t *testing.T) {
	menu := Menu{Categories: []Category{{
		Name:   "Soup",
		Dishes: []Dish{{Name: "Minestrone", Price: "7", PreparationTime: 10, Ingredients: []DishIngredient{{Name: "Leek", Quantity: 1}}}},
	}}}

	_, err := Apply(context.Background(), menu, &fakeCatalog{}, &fakeCatalog{})
	assert.ErrorContains(t, err, `unknown ingredient "Leek"`)
}
