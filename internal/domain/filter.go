package domain

import "time"

// List filters. Zero values and nil pointers mean "no constraint". Ordering is
// a field name, optionally prefixed with "-" for descending order.

type DishFilter struct {
	CategoryID *uint
	Available  *bool
	Search     string
	Ordering   string
}

type IngredientFilter struct {
	Search string
}

type StockFilter struct {
	IngredientID *uint
	NeedsReorder *bool
	Search       string
}

type StockTransactionFilter struct {
	IngredientID *uint
	Type         StockTransactionType
	UserID       *uint
}

type TableFilter struct {
	MinCapacity *int
	Location    string
}

type ReservationFilter struct {
	TableID *uint
	Status  ReservationStatus
	From    *time.Time
	To      *time.Time
	Search  string
}

type OrderFilter struct {
	Status   OrderStatus
	TableID  *uint
	WaiterID *uint
	Search   string
	Ordering string
}

type PaymentFilter struct {
	OrderID *uint
	Method  PaymentMethod
	Search  string
}

type DailySalesFilter struct {
	Date     *Date
	Ordering string
}

type PopularDishFilter struct {
	DishID      *uint
	PeriodStart *Date
	PeriodEnd   *Date
	Ordering    string
}
