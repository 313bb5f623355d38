package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStock_NeedsReorder(t *testing.T) {
	assert.True(t, Stock{Quantity: 5, ReorderThreshold: 5}.NeedsReorder())
	assert.False(t, Stock{Quantity: 6, ReorderThreshold: 5}.NeedsReorder())
	assert.True(t, Stock{Quantity: -1, ReorderThreshold: 0}.NeedsReorder())
}

func TestStock_MarshalJSONIncludesNeedsReorder(t *testing.T) {
	b, err := json.Marshal(Stock{ID: 1, IngredientID: 2, Quantity: 1, ReorderThreshold: 3})
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(b, &body))
	assert.Equal(t, true, body["needs_reorder"])
	assert.Equal(t, float64(2), body["ingredient_id"])
}

func TestStockTransaction_Apply(t *testing.T) {
	tests := []struct {
		name    string
		tx      StockTransaction
		onHand  float64
		want    float64
		wantErr error
	}{
		{"in adds", StockTransaction{IngredientID: 1, Type: StockIn, Quantity: 3}, 5, 8, nil},
		{"out subtracts", StockTransaction{IngredientID: 1, Type: StockOut, Quantity: 2}, 5, 3, nil},
		{"out to zero", StockTransaction{IngredientID: 1, Type: StockOut, Quantity: 5}, 5, 0, nil},
		{"out below zero", StockTransaction{IngredientID: 1, Type: StockOut, Quantity: 6}, 5, 0, ErrInsufficientStock},
		{"negative adjustment may go negative", StockTransaction{IngredientID: 1, Type: StockAdjustment, Quantity: -7}, 5, -2, nil},
		{"zero adjustment", StockTransaction{IngredientID: 1, Type: StockAdjustment}, 5, 0, ErrAdjustmentZero},
		{"in needs positive quantity", StockTransaction{IngredientID: 1, Type: StockIn, Quantity: -1}, 5, 0, ErrStockQuantityPositive},
		{"unknown type", StockTransaction{IngredientID: 1, Type: "spill", Quantity: 1}, 5, 0, ErrInvalidStockTxType},
		{"missing ingredient", StockTransaction{Type: StockIn, Quantity: 1}, 5, 0, ErrIngredientRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.tx.Apply(tt.onHand)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReservation_IsActive(t *testing.T) {
	now := time.Date(2026, 10, 15, 19, 0, 0, 0, time.UTC)

	assert.True(t, Reservation{ScheduledAt: now}.IsActive(now))
	assert.True(t, Reservation{ScheduledAt: now.Add(time.Minute)}.IsActive(now))
	assert.False(t, Reservation{ScheduledAt: now.Add(-time.Minute)}.IsActive(now))
}

func TestReservation_NeedsOverlapCheck(t *testing.T) {
	at := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	prev := Reservation{TableID: 1, ScheduledAt: at, Status: ReservationPending}

	tests := []struct {
		name     string
		next     Reservation
		previous *Reservation
		want     bool
	}{
		{name: "create", next: prev, previous: nil, want: true},
		{name: "create cancelled", next: Reservation{TableID: 1, ScheduledAt: at, Status: ReservationCancelled}, want: false},
		{name: "notes only", next: prev, previous: &prev, want: false},
		{name: "moved table", next: Reservation{TableID: 2, ScheduledAt: at, Status: ReservationPending}, previous: &prev, want: true},
		{name: "rescheduled", next: Reservation{TableID: 1, ScheduledAt: at.Add(time.Hour), Status: ReservationPending}, previous: &prev, want: true},
		{name: "confirmed", next: Reservation{TableID: 1, ScheduledAt: at, Status: ReservationConfirmed}, previous: &prev, want: true},
		{name: "seated", next: Reservation{TableID: 1, ScheduledAt: at, Status: ReservationSeated}, previous: &prev, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.next.NeedsOverlapCheck(tt.previous))
		})
	}
}

func TestReservationStatus_CanTransitionTo(t *testing.T) {
	assert.NoError(t, ReservationPending.CanTransitionTo(ReservationSeated))
	assert.NoError(t, ReservationConfirmed.CanTransitionTo(ReservationCancelled))
	assert.ErrorIs(t, ReservationSeated.CanTransitionTo(ReservationPending), ErrInvalidTransition)
	assert.ErrorIs(t, ReservationCompleted.CanTransitionTo(ReservationCancelled), ErrInvalidTransition)
	assert.ErrorIs(t, ReservationPending.CanTransitionTo("lost"), ErrInvalidArgument)
}

func TestValidateDishIngredients(t *testing.T) {
	assert.NoError(t, ValidateDishIngredients(nil))
	assert.NoError(t, ValidateDishIngredients([]DishIngredient{{IngredientID: 1, Quantity: 0.2}, {IngredientID: 2, Quantity: 1}}))
	assert.Equal(t, ErrIngredientQuantity, ValidateDishIngredients([]DishIngredient{{IngredientID: 1}}))
	assert.Equal(t, ErrIngredientIDRequired, ValidateDishIngredients([]DishIngredient{{Quantity: 1}}))
	assert.Equal(t, ErrDuplicateIngredient, ValidateDishIngredients([]DishIngredient{{IngredientID: 1, Quantity: 1}, {IngredientID: 1, Quantity: 2}}))
}

func TestDate_JSON(t *testing.T) {
	d, err := ParseDate("2026-10-15")
	require.NoError(t, err)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2026-10-15"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Equal(d.Time))

	_, err = ParseDate("15/10/2026")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
