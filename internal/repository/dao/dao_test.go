package dao

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tablewise/restaurant-api/internal/db"
	"github.com/tablewise/restaurant-api/internal/domain"
)

func newSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "restaurant.db"))
	require.NoError(t, err)
	require.NoError(t, InitTables(gdb))

	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return gdb
}

func allowAll(string) error {
	return nil
}

func seedDish(t *testing.T, gdb *gorm.DB, price string) Dish {
	t.Helper()
	ctx := context.Background()
	menu := NewMenuDAO(gdb)

	category, err := menu.InsertCategory(ctx, Category{Name: "Mains"})
	require.NoError(t, err)

	dish, err := menu.InsertDish(ctx, Dish{
		Name:            "Risotto",
		Price:           decimal.RequireFromString(price),
		CategoryID:      category.ID,
		Available:       true,
		PreparationTime: 20,
	})
	require.NoError(t, err)

	return dish
}

// payConcurrently fires n payment attempts at one order and returns how many
// went through and how many were rejected as duplicates.
func payConcurrently(t *testing.T, gdb *gorm.DB, n int) (paid, duplicates int) {
	t.Helper()
	ctx := context.Background()
	orders := NewOrderDAO(gdb)

	dish := seedDish(t, gdb, "12.50")
	order, err := orders.Insert(ctx, Order{Status: string(domain.OrderPending)})
	require.NoError(t, err)
	_, err = orders.AddItem(ctx, OrderItem{OrderID: order.ID, DishID: dish.ID, Quantity: 2, Status: "pending"}, allowAll)
	require.NoError(t, err)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := orders.PayOrder(ctx, Payment{
				OrderID:       order.ID,
				Amount:        decimal.RequireFromString("25.00"),
				Method:        "cash",
				TransactionID: "tx",
			}, string(domain.OrderPaid), allowAll)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				paid++
			case errors.Is(err, ErrPaymentExists):
				duplicates++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	stored, err := orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.OrderPaid), stored.Status)
	require.NotNil(t, stored.Payment)

	return paid, duplicates
}

func TestOrderDAO_PayOrder_Concurrent(t *testing.T) {
	paid, duplicates := payConcurrently(t, newSQLite(t), 8)

	assert.Equal(t, 1, paid)
	assert.Equal(t, 7, duplicates)
}

func TestOrderDAO_AddItem(t *testing.T) {
	ctx := context.Background()
	gdb := newSQLite(t)
	orders := NewOrderDAO(gdb)
	dish := seedDish(t, gdb, "9.00")

	order, err := orders.Insert(ctx, Order{Status: string(domain.OrderPending)})
	require.NoError(t, err)

	_, err = orders.AddItem(ctx, OrderItem{OrderID: order.ID, DishID: dish.ID + 100, Quantity: 1}, allowAll)
	assert.ErrorIs(t, err, ErrDishNotFound)

	_, err = orders.AddItem(ctx, OrderItem{OrderID: order.ID + 100, DishID: dish.ID, Quantity: 1}, allowAll)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	blocked := errors.New("blocked")
	_, err = orders.AddItem(ctx, OrderItem{OrderID: order.ID, DishID: dish.ID, Quantity: 1}, func(string) error { return blocked })
	assert.ErrorIs(t, err, blocked)

	item, err := orders.AddItem(ctx, OrderItem{OrderID: order.ID, DishID: dish.ID, Quantity: 3, Status: "pending"}, allowAll)
	require.NoError(t, err)
	require.NotNil(t, item.Dish)
	assert.Equal(t, "Risotto", item.Dish.Name)

	_, err = NewMenuDAO(gdb).UpdateDish(ctx, Dish{
		ID:              dish.ID,
		Name:            dish.Name,
		Price:           dish.Price,
		CategoryID:      dish.CategoryID,
		Available:       false,
		PreparationTime: dish.PreparationTime,
	}, false)
	require.NoError(t, err)

	_, err = orders.AddItem(ctx, OrderItem{OrderID: order.ID, DishID: dish.ID, Quantity: 1}, allowAll)
	assert.ErrorIs(t, err, domain.ErrDishUnavailable)
}

func dishIngredientIDs(dish Dish) []uint {
	ids := make([]uint, 0, len(dish.Ingredients))
	for _, di := range dish.Ingredients {
		ids = append(ids, di.IngredientID)
	}
	return ids
}

func TestMenuDAO_UpdateDish_ReplacesIngredientSet(t *testing.T) {
	ctx := context.Background()
	gdb := newSQLite(t)
	menu := NewMenuDAO(gdb)
	dish := seedDish(t, gdb, "12.50")

	rice, err := menu.InsertIngredient(ctx, Ingredient{Name: "Rice", Unit: "kg", CostPerUnit: decimal.RequireFromString("3")})
	require.NoError(t, err)
	stock, err := menu.InsertIngredient(ctx, Ingredient{Name: "Stock", Unit: "l", CostPerUnit: decimal.RequireFromString("1")})
	require.NoError(t, err)

	dish.Ingredients = []DishIngredient{{IngredientID: rice.ID, Quantity: 0.2}}
	updated, err := menu.UpdateDish(ctx, dish, true)
	require.NoError(t, err)
	assert.Equal(t, []uint{rice.ID}, dishIngredientIDs(updated))

	t.Run("unknown ingredient leaves the dish untouched", func(t *testing.T) {
		change := updated
		change.Price = decimal.RequireFromString("99")
		change.Ingredients = []DishIngredient{
			{IngredientID: stock.ID, Quantity: 0.5},
			{IngredientID: stock.ID + 100, Quantity: 1},
		}

		_, err := menu.UpdateDish(ctx, change, true)
		assert.ErrorIs(t, err, ErrIngredientNotFound)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		stored, err := menu.FindDishByID(ctx, dish.ID)
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("12.50").Equal(stored.Price), stored.Price.String())
		assert.Equal(t, []uint{rice.ID}, dishIngredientIDs(stored))
	})

	t.Run("whole set is swapped", func(t *testing.T) {
		change := updated
		change.Ingredients = []DishIngredient{
			{IngredientID: stock.ID, Quantity: 0.5},
			{IngredientID: rice.ID, Quantity: 0.3},
		}

		_, err := menu.UpdateDish(ctx, change, true)
		require.NoError(t, err)

		stored, err := menu.FindDishByID(ctx, dish.ID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []uint{stock.ID, rice.ID}, dishIngredientIDs(stored))
		for _, di := range stored.Ingredients {
			if di.IngredientID == rice.ID {
				assert.Equal(t, 0.3, di.Quantity)
			}
		}
	})

	t.Run("fields only keep the set", func(t *testing.T) {
		change := updated
		change.Name = "Mushroom risotto"
		change.Ingredients = nil

		_, err := menu.UpdateDish(ctx, change, false)
		require.NoError(t, err)

		stored, err := menu.FindDishByID(ctx, dish.ID)
		require.NoError(t, err)
		assert.Equal(t, "Mushroom risotto", stored.Name)
		assert.Len(t, stored.Ingredients, 2)
	})
}

func TestInventoryDAO_ApplyTransaction(t *testing.T) {
	ctx := context.Background()
	gdb := newSQLite(t)
	inventory := NewInventoryDAO(gdb)

	ingredient, err := NewMenuDAO(gdb).InsertIngredient(ctx, Ingredient{
		Name:        "Arborio rice",
		Unit:        "kg",
		CostPerUnit: decimal.RequireFromString("3.2"),
	})
	require.NoError(t, err)

	stock, err := inventory.InsertStock(ctx, Stock{IngredientID: ingredient.ID, Quantity: 5, ReorderThreshold: 2},
		&StockTransaction{Type: "adjustment", Quantity: 5, Notes: "opening balance"})
	require.NoError(t, err)
	assert.Equal(t, 5.0, stock.Quantity)

	_, err = inventory.InsertStock(ctx, Stock{IngredientID: ingredient.ID}, nil)
	assert.ErrorIs(t, err, ErrStockExists)

	txn, stock, err := inventory.ApplyTransaction(ctx, StockTransaction{IngredientID: ingredient.ID, Type: "in", Quantity: 3},
		func(onHand float64) (float64, error) { return onHand + 3, nil })
	require.NoError(t, err)
	assert.NotZero(t, txn.ID)
	assert.Equal(t, 8.0, stock.Quantity)

	short := errors.New("insufficient")
	_, _, err = inventory.ApplyTransaction(ctx, StockTransaction{IngredientID: ingredient.ID, Type: "out", Quantity: 20},
		func(float64) (float64, error) { return 0, short })
	assert.ErrorIs(t, err, short)

	_, _, err = inventory.ApplyTransaction(ctx, StockTransaction{IngredientID: ingredient.ID + 1, Type: "in", Quantity: 1},
		func(onHand float64) (float64, error) { return onHand + 1, nil })
	assert.ErrorIs(t, err, ErrStockNotFound)

	txns, err := inventory.FindTransactions(ctx, domain.StockTransactionFilter{IngredientID: &ingredient.ID})
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "in", txns[0].Type)
	assert.Equal(t, "adjustment", txns[1].Type)

	stored, err := inventory.FindStockByID(ctx, stock.ID)
	require.NoError(t, err)
	assert.Equal(t, 8.0, stored.Quantity)
}

func ledgerSum(t *testing.T, inventory *InventoryDAO, ingredientID uint) float64 {
	t.Helper()

	txns, err := inventory.FindTransactions(context.Background(), domain.StockTransactionFilter{IngredientID: &ingredientID})
	require.NoError(t, err)

	sum := 0.0
	for _, txn := range txns {
		if txn.Type == "out" {
			sum -= txn.Quantity
		} else {
			sum += txn.Quantity
		}
	}
	return sum
}

func TestInventoryDAO_DeleteStock_LedgerStaysBalanced(t *testing.T) {
	ctx := context.Background()
	gdb := newSQLite(t)
	inventory := NewInventoryDAO(gdb)
	menu := NewMenuDAO(gdb)

	ingredient, err := menu.InsertIngredient(ctx, Ingredient{Name: "Butter", Unit: "kg", CostPerUnit: decimal.RequireFromString("8")})
	require.NoError(t, err)

	opening := func() *StockTransaction {
		return &StockTransaction{Type: "adjustment", Notes: "opening balance"}
	}

	stock, err := inventory.InsertStock(ctx, Stock{IngredientID: ingredient.ID, Quantity: 5}, opening())
	require.NoError(t, err)
	_, stock, err = inventory.ApplyTransaction(ctx, StockTransaction{IngredientID: ingredient.ID, Type: "out", Quantity: 1},
		func(onHand float64) (float64, error) { return onHand - 1, nil })
	require.NoError(t, err)
	assert.Equal(t, 4.0, ledgerSum(t, inventory, ingredient.ID))

	require.NoError(t, inventory.DeleteStock(ctx, stock.ID, StockTransaction{Notes: "stock closed"}))
	assert.Equal(t, 0.0, ledgerSum(t, inventory, ingredient.ID))
	_, err = inventory.FindStockByID(ctx, stock.ID)
	assert.ErrorIs(t, err, ErrStockNotFound)
	assert.ErrorIs(t, inventory.DeleteStock(ctx, stock.ID, StockTransaction{}), ErrStockNotFound)

	recreated, err := inventory.InsertStock(ctx, Stock{IngredientID: ingredient.ID, Quantity: 2}, opening())
	require.NoError(t, err)
	assert.Equal(t, 2.0, recreated.Quantity)
	assert.Equal(t, recreated.Quantity, ledgerSum(t, inventory, ingredient.ID))

	t.Run("opening row covers only the difference", func(t *testing.T) {
		flour, err := menu.InsertIngredient(ctx, Ingredient{Name: "Flour", Unit: "kg", CostPerUnit: decimal.RequireFromString("1")})
		require.NoError(t, err)
		require.NoError(t, gdb.Create(&StockTransaction{IngredientID: flour.ID, Type: "in", Quantity: 3}).Error)

		_, err = inventory.InsertStock(ctx, Stock{IngredientID: flour.ID, Quantity: 3}, opening())
		require.NoError(t, err)
		txns, err := inventory.FindTransactions(ctx, domain.StockTransactionFilter{IngredientID: &flour.ID})
		require.NoError(t, err)
		assert.Len(t, txns, 1)

		stale, err := menu.InsertIngredient(ctx, Ingredient{Name: "Salt", Unit: "kg", CostPerUnit: decimal.RequireFromString("1")})
		require.NoError(t, err)
		require.NoError(t, gdb.Create(&StockTransaction{IngredientID: stale.ID, Type: "in", Quantity: 6}).Error)

		_, err = inventory.InsertStock(ctx, Stock{IngredientID: stale.ID, Quantity: 4}, opening())
		require.NoError(t, err)
		assert.Equal(t, 4.0, ledgerSum(t, inventory, stale.ID))
	})
}

func TestTableDAO_SaveReservation_Overlap(t *testing.T) {
	ctx := context.Background()
	tables := NewTableDAO(newSQLite(t))
	window := 2 * time.Hour
	check := func(Table, *Reservation) (bool, error) { return true, nil }

	table, err := tables.InsertTable(ctx, Table{Number: 1, Capacity: 4})
	require.NoError(t, err)

	at := time.Date(2026, 6, 1, 19, 0, 0, 0, time.UTC)
	reserve := func(when time.Time, status domain.ReservationStatus) (Reservation, error) {
		return tables.SaveReservation(ctx, Reservation{
			TableID:      table.ID,
			CustomerName: "Dupont",
			ScheduledAt:  when,
			PartySize:    2,
			Status:       string(status),
		}, window, check)
	}

	first, err := reserve(at, domain.ReservationConfirmed)
	require.NoError(t, err)
	require.NotNil(t, first.Table)

	_, err = reserve(at.Add(time.Hour), domain.ReservationPending)
	assert.ErrorIs(t, err, domain.ErrReservationOverlap)

	_, err = reserve(at.Add(window), domain.ReservationPending)
	assert.NoError(t, err, "a reservation exactly one window away does not overlap")

	cancelled, err := reserve(at.Add(-3*time.Hour), domain.ReservationCancelled)
	require.NoError(t, err)

	cancelled.Status = string(domain.ReservationPending)
	cancelled.ScheduledAt = at.Add(-4 * time.Hour)
	_, err = tables.SaveReservation(ctx, cancelled, window, check)
	assert.NoError(t, err, "moving a reservation does not collide with itself")

	_, err = tables.SaveReservation(ctx, Reservation{TableID: table.ID + 1, CustomerName: "x", ScheduledAt: at, PartySize: 1}, window, check)
	assert.ErrorIs(t, err, ErrTableNotFound)

	from, to := at.Add(-time.Hour), at.Add(time.Hour)
	found, err := tables.FindReservations(ctx, domain.ReservationFilter{From: &from, To: &to})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, first.ID, found[0].ID)
}

func TestTableDAO_DeleteTable(t *testing.T) {
	ctx := context.Background()
	gdb := newSQLite(t)
	tables := NewTableDAO(gdb)
	orders := NewOrderDAO(gdb)

	table, err := tables.InsertTable(ctx, Table{Number: 7, Capacity: 2})
	require.NoError(t, err)
	order, err := orders.Insert(ctx, Order{TableID: &table.ID, Status: string(domain.OrderPending)})
	require.NoError(t, err)

	_, err = tables.InsertTable(ctx, Table{Number: 7, Capacity: 6})
	assert.ErrorIs(t, err, ErrTableExists)

	require.NoError(t, tables.DeleteTable(ctx, table.ID))

	stored, err := orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.TableID)

	assert.ErrorIs(t, tables.DeleteTable(ctx, table.ID), ErrTableNotFound)
}
