package request

import (
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablewise/restaurant-api/internal/domain"
)

func ptr[T any](v T) *T {
	return &v
}

func TestRegisterRequest_Validate(t *testing.T) {
	valid := RegisterRequest{
		Username:        "alice",
		Email:           "alice@example.com",
		Password:        "secret123",
		ConfirmPassword: "secret123",
		Role:            "chef",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(r *RegisterRequest)
	}{
		{"short password", func(r *RegisterRequest) { r.Password, r.ConfirmPassword = "a1", "a1" }},
		{"password without digit", func(r *RegisterRequest) { r.Password, r.ConfirmPassword = "abcdefgh", "abcdefgh" }},
		{"password without letter", func(r *RegisterRequest) { r.Password, r.ConfirmPassword = "12345678", "12345678" }},
		{"confirm mismatch", func(r *RegisterRequest) { r.ConfirmPassword = "secret124" }},
		{"bad email", func(r *RegisterRequest) { r.Email = "not-an-email" }},
		{"unknown role", func(r *RegisterRequest) { r.Role = "sommelier" }},
		{"missing username", func(r *RegisterRequest) { r.Username = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			assert.Error(t, req.Validate())
		})
	}
}

func TestChangePasswordRequest_Validate(t *testing.T) {
	assert.NoError(t, (&ChangePasswordRequest{OldPassword: "x", NewPassword: "newpass99"}).Validate())
	assert.ErrorIs(t, (&ChangePasswordRequest{OldPassword: "x", NewPassword: "newpassword"}).Validate(), errInvalidPassword)
	assert.Error(t, (&ChangePasswordRequest{NewPassword: "newpass99"}).Validate())
}

func TestParseIndexedIngredients(t *testing.T) {
	form := url.Values{
		"name":                      {"Soup"},
		"ingredients[1].ingredient": {"7"},
		"ingredients[1].quantity":   {"0.5"},
		"ingredients[0].ingredient": {"3"},
		"ingredients[0].quantity":   {"2"},
	}

	ingredients, found, err := ParseIndexedIngredients(form)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []DishIngredientRequest{
		{IngredientID: 3, Quantity: 2},
		{IngredientID: 7, Quantity: 0.5},
	}, ingredients)
}

func TestParseIndexedIngredients_Absent(t *testing.T) {
	ingredients, found, err := ParseIndexedIngredients(url.Values{"name": {"Soup"}})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, ingredients)
}

func TestParseIndexedIngredients_Incomplete(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{
			name: "missing quantity",
			form: url.Values{"ingredients[0].ingredient": {"3"}},
			want: "ingredients[0].quantity is required",
		},
		{
			name: "missing ingredient",
			form: url.Values{"ingredients[2].quantity": {"1"}},
			want: "ingredients[2].ingredient is required",
		},
		{
			name: "non numeric id",
			form: url.Values{"ingredients[0].ingredient": {"salt"}, "ingredients[0].quantity": {"1"}},
			want: "must be an ingredient id",
		},
		{
			name: "non numeric quantity",
			form: url.Values{"ingredients[0].ingredient": {"1"}, "ingredients[0].quantity": {"lots"}},
			want: "must be a number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, found, err := ParseIndexedIngredients(tt.form)
			assert.True(t, found)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDishRequest_ValidateCreate(t *testing.T) {
	price := decimal.RequireFromString("12.50")
	req := DishRequest{
		Name:            ptr("Risotto"),
		Price:           &price,
		CategoryID:      ptr(uint(1)),
		PreparationTime: ptr(20),
	}
	require.NoError(t, req.ValidateCreate())

	dish := req.Dish()
	assert.Equal(t, "Risotto", dish.Name)
	assert.True(t, dish.Available)
	assert.True(t, price.Equal(dish.Price))
	assert.NotNil(t, dish.Ingredients)
	assert.Empty(t, dish.Ingredients)

	req.CategoryID = nil
	assert.Error(t, req.ValidateCreate())
	assert.NoError(t, req.Validate())
}

func TestDishRequest_Update(t *testing.T) {
	req := DishRequest{
		Available:   ptr(false),
		Ingredients: &[]DishIngredientRequest{{IngredientID: 4, Quantity: 1.5}},
	}

	update := req.Update()
	assert.Nil(t, update.Name)
	require.NotNil(t, update.Available)
	assert.False(t, *update.Available)
	require.NotNil(t, update.Ingredients)
	assert.Equal(t, []domain.DishIngredient{{IngredientID: 4, Quantity: 1.5}}, *update.Ingredients)
}

func TestStockTransactionRequest_Validate(t *testing.T) {
	assert.NoError(t, (&StockTransactionRequest{IngredientID: 1, Type: "in", Quantity: 3}).Validate())
	assert.Error(t, (&StockTransactionRequest{IngredientID: 1, Type: "sideways", Quantity: 3}).Validate())
	assert.Error(t, (&StockTransactionRequest{Type: "out", Quantity: 3}).Validate())
}

func TestReservationRequest(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)

	req := ReservationRequest{
		TableID:      2,
		CustomerName: "Dupont",
		Date:         "2026-06-01",
		Time:         "19:30",
		PartySize:    4,
	}
	require.NoError(t, req.Validate())

	r, err := req.Reservation(loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 6, 1, 17, 30, 0, 0, time.UTC), r.ScheduledAt.UTC())

	req.Time = "7pm"
	assert.Error(t, req.Validate())
}

func TestUpdateReservationRequest_Update(t *testing.T) {
	current := time.Date(2026, 6, 1, 19, 30, 0, 0, time.UTC)

	req := UpdateReservationRequest{Time: ptr("21:00")}
	require.NoError(t, req.Validate())
	assert.True(t, req.Reschedules())

	update, err := req.Update(current, time.UTC)
	require.NoError(t, err)
	require.NotNil(t, update.ScheduledAt)
	assert.Equal(t, time.Date(2026, 6, 1, 21, 0, 0, 0, time.UTC), *update.ScheduledAt)

	req = UpdateReservationRequest{Status: ptr("confirmed")}
	assert.False(t, req.Reschedules())
	update, err = req.Update(current, time.UTC)
	require.NoError(t, err)
	assert.Nil(t, update.ScheduledAt)
	require.NotNil(t, update.Status)
	assert.Equal(t, domain.ReservationConfirmed, *update.Status)
}

func TestPopularDishRequest_Validate(t *testing.T) {
	start, err := domain.ParseDate("2026-01-01")
	require.NoError(t, err)

	assert.NoError(t, (&PopularDishRequest{DishID: 1, PeriodStart: start, PeriodEnd: start}).Validate())
	assert.Error(t, (&PopularDishRequest{DishID: 1, PeriodStart: start}).Validate())
	assert.Error(t, (&DailySalesRequest{}).Validate())
}
