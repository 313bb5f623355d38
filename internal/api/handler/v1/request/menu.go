package request

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/shopspring/decimal"

	"github.com/tablewise/restaurant-api/internal/domain"
)

type CategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (req *CategoryRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
	)
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (req *UpdateCategoryRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, 100)),
	)
}

func (req *UpdateCategoryRequest) Update() domain.CategoryUpdate {
	return domain.CategoryUpdate{
		Name:        req.Name,
		Description: req.Description,
	}
}

type IngredientRequest struct {
	Name        string          `json:"name"`
	Unit        string          `json:"unit"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
}

func (req *IngredientRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(1, 100)),
		validation.Field(&req.Unit, validation.Required, validation.Length(1, 20)),
	)
}

type UpdateIngredientRequest struct {
	Name        *string          `json:"name"`
	Unit        *string          `json:"unit"`
	CostPerUnit *decimal.Decimal `json:"cost_per_unit"`
}

func (req *UpdateIngredientRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&req.Unit, validation.NilOrNotEmpty, validation.Length(1, 20)),
	)
}

func (req *UpdateIngredientRequest) Update() domain.IngredientUpdate {
	return domain.IngredientUpdate{
		Name:        req.Name,
		Unit:        req.Unit,
		CostPerUnit: req.CostPerUnit,
	}
}

type DishIngredientRequest struct {
	IngredientID uint    `json:"ingredient_id"`
	Quantity     float64 `json:"quantity"`
}

func dishIngredients(in []DishIngredientRequest) []domain.DishIngredient {
	out := make([]domain.DishIngredient, 0, len(in))
	for _, di := range in {
		out = append(out, domain.DishIngredient{
			IngredientID: di.IngredientID,
			Quantity:     di.Quantity,
		})
	}
	return out
}

// DishRequest is used for PUT and PATCH as well as POST. On update, absent
// fields keep their stored value and a present ingredients list replaces the
// whole set.
type DishRequest struct {
	Name            *string                  `json:"name" form:"name"`
	Description     *string                  `json:"description" form:"description"`
	Price           *decimal.Decimal         `json:"price" form:"price"`
	CategoryID      *uint                    `json:"category_id" form:"category_id"`
	Available       *bool                    `json:"available" form:"available"`
	PreparationTime *int                     `json:"preparation_time" form:"preparation_time"`
	Calories        *int                     `json:"calories" form:"calories"`
	Ingredients     *[]DishIngredientRequest `json:"ingredients" form:"-"`
}

func (req *DishRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.NilOrNotEmpty, validation.Length(1, 100)),
		validation.Field(&req.CategoryID, validation.NilOrNotEmpty),
		validation.Field(&req.Calories, validation.Min(0)),
	)
}

// ValidateCreate additionally requires the fields a new dish cannot do without.
func (req *DishRequest) ValidateCreate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required),
		validation.Field(&req.Price, validation.NotNil),
		validation.Field(&req.CategoryID, validation.Required),
		validation.Field(&req.PreparationTime, validation.Required),
	)
	if err != nil {
		return err
	}

	return req.Validate()
}

func (req *DishRequest) Dish() domain.Dish {
	dish := req.Update().Apply(domain.Dish{Available: true})
	if dish.Ingredients == nil {
		dish.Ingredients = []domain.DishIngredient{}
	}
	return dish
}

func (req *DishRequest) Update() domain.DishUpdate {
	update := domain.DishUpdate{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		CategoryID:      req.CategoryID,
		Available:       req.Available,
		PreparationTime: req.PreparationTime,
		Calories:        req.Calories,
	}
	if req.Ingredients != nil {
		ingredients := dishIngredients(*req.Ingredients)
		update.Ingredients = &ingredients
	}
	return update
}

var indexedIngredientKey = regexp2.MustCompile(`^ingredients\[(\d+)\]\.(ingredient|quantity)$`, regexp2.None)

// ParseIndexedIngredients reads the form encoding ingredients[<i>].ingredient
// and ingredients[<i>].quantity into an ordered list. found is false when the
// form carries no such keys.
func ParseIndexedIngredients(form url.Values) (ingredients []DishIngredientRequest, found bool, err error) {
	type line struct {
		ingredient, quantity string
	}
	lines := map[int]*line{}

	for key, values := range form {
		m, err := indexedIngredientKey.FindStringMatch(key)
		if err != nil {
			return nil, false, err
		}
		if m == nil || len(values) == 0 {
			continue
		}

		groups := m.Groups()
		idx, err := strconv.Atoi(groups[1].String())
		if err != nil {
			return nil, false, fmt.Errorf("invalid ingredient index in %q", key)
		}
		l, ok := lines[idx]
		if !ok {
			l = &line{}
			lines[idx] = l
		}
		if groups[2].String() == "ingredient" {
			l.ingredient = values[0]
		} else {
			l.quantity = values[0]
		}
	}

	if len(lines) == 0 {
		return nil, false, nil
	}

	indexes := make([]int, 0, len(lines))
	for idx := range lines {
		indexes = append(indexes, idx)
	}
	slices.Sort(indexes)

	ingredients = make([]DishIngredientRequest, 0, len(indexes))
	for _, idx := range indexes {
		l := lines[idx]
		if l.ingredient == "" {
			return nil, true, fmt.Errorf("ingredients[%d].ingredient is required", idx)
		}
		id, err := strconv.ParseUint(l.ingredient, 10, 64)
		if err != nil {
			return nil, true, fmt.Errorf("ingredients[%d].ingredient must be an ingredient id", idx)
		}
		if l.quantity == "" {
			return nil, true, fmt.Errorf("ingredients[%d].quantity is required", idx)
		}
		qty, err := strconv.ParseFloat(l.quantity, 64)
		if err != nil {
			return nil, true, fmt.Errorf("ingredients[%d].quantity must be a number", idx)
		}
		ingredients = append(ingredients, DishIngredientRequest{
			IngredientID: uint(id),
			Quantity:     qty,
		})
	}

	return ingredients, true, nil
}
