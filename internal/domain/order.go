package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrDishIDRequired        = NewError(ErrInvalidArgument, "dish_id is required")
	ErrItemQuantity          = NewError(ErrInvalidArgument, "quantity must be at least 1")
	ErrDishUnavailable       = NewError(ErrConflict, "dish is not available")
	ErrAmountRequired        = NewError(ErrInvalidArgument, "amount is required")
	ErrMethodRequired        = NewError(ErrInvalidArgument, "payment method is required")
	ErrTransactionIDRequired = NewError(ErrInvalidArgument, "transaction ID is required")
	ErrAmountNotPositive     = NewError(ErrInvalidArgument, "amount must be greater than zero")
	ErrUnknownPaymentMethod  = NewError(ErrInvalidArgument, "method must be one of cash, card, mobile")
	ErrUnknownOrderStatus    = NewError(ErrInvalidArgument, "unknown order status")
	ErrUnknownItemStatus     = NewError(ErrInvalidArgument, "unknown order item status")
	ErrPaidRequiresPayment   = NewError(ErrInvalidTransition, "orders become paid only through a payment")
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderServed    OrderStatus = "served"
	OrderPaid      OrderStatus = "paid"
	OrderCancelled OrderStatus = "cancelled"
)

var orderStatusRank = map[OrderStatus]int{
	OrderPending:   0,
	OrderConfirmed: 1,
	OrderPreparing: 2,
	OrderReady:     3,
	OrderServed:    4,
	OrderPaid:      5,
}

func (s OrderStatus) Valid() bool {
	_, ok := orderStatusRank[s]
	return ok || s == OrderCancelled
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderPaid || s == OrderCancelled
}

// CanTransitionTo allows forward moves (skipping is fine) and cancellation from
// any non-terminal state. Staying in the same state is a no-op.
func (s OrderStatus) CanTransitionTo(next OrderStatus) error {
	if !next.Valid() {
		return ErrUnknownOrderStatus
	}
	if s == next {
		return nil
	}
	if s.IsTerminal() {
		return Errorf(ErrInvalidTransition, "order is %s and can no longer change", s)
	}
	if next == OrderCancelled {
		return nil
	}
	if orderStatusRank[next] < orderStatusRank[s] {
		return Errorf(ErrInvalidTransition, "cannot move order from %s back to %s", s, next)
	}
	return nil
}

type OrderItemStatus string

const (
	ItemPending   OrderItemStatus = "pending"
	ItemPreparing OrderItemStatus = "preparing"
	ItemReady     OrderItemStatus = "ready"
	ItemServed    OrderItemStatus = "served"
)

var itemStatusRank = map[OrderItemStatus]int{
	ItemPending:   0,
	ItemPreparing: 1,
	ItemReady:     2,
	ItemServed:    3,
}

func (s OrderItemStatus) Valid() bool {
	_, ok := itemStatusRank[s]
	return ok
}

func (s OrderItemStatus) CanTransitionTo(next OrderItemStatus) error {
	if !next.Valid() {
		return ErrUnknownItemStatus
	}
	if itemStatusRank[next] < itemStatusRank[s] {
		return Errorf(ErrInvalidTransition, "cannot move item from %s back to %s", s, next)
	}
	return nil
}

type Order struct {
	ID        uint        `json:"id"`
	TableID   *uint       `json:"table_id"`
	Table     *Table      `json:"table,omitempty"`
	WaiterID  *uint       `json:"waiter_id"`
	Waiter    *User       `json:"waiter,omitempty"`
	Status    OrderStatus `json:"status"`
	Notes     string      `json:"notes"`
	Items     []OrderItem `json:"items"`
	Payment   *Payment    `json:"payment,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// TotalAmount folds over the current items using each dish's current price.
func (o Order) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.TotalPrice())
	}
	return total
}

func (o Order) TotalItems() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

func (o Order) MarshalJSON() ([]byte, error) {
	type alias Order
	items := o.Items
	if items == nil {
		items = []OrderItem{}
	}
	a := alias(o)
	a.Items = items
	return json.Marshal(struct {
		alias
		TotalAmount decimal.Decimal `json:"total_amount"`
		TotalItems  int             `json:"total_items"`
	}{
		alias:       a,
		TotalAmount: o.TotalAmount(),
		TotalItems:  o.TotalItems(),
	})
}

// OrderUpdate carries a partial order update. Nil means unchanged.
type OrderUpdate struct {
	TableID *uint
	Status  *OrderStatus
	Notes   *string
}

type OrderItem struct {
	ID       uint            `json:"id"`
	OrderID  uint            `json:"order_id"`
	DishID   uint            `json:"dish_id"`
	Dish     *Dish           `json:"dish,omitempty"`
	Quantity int             `json:"quantity"`
	Status   OrderItemStatus `json:"status"`
	Notes    string          `json:"notes"`
}

// TotalPrice is evaluated against the dish price at read time.
func (i OrderItem) TotalPrice() decimal.Decimal {
	if i.Dish == nil {
		return decimal.Zero
	}
	return i.Dish.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i OrderItem) MarshalJSON() ([]byte, error) {
	type alias OrderItem
	return json.Marshal(struct {
		alias
		TotalPrice decimal.Decimal `json:"total_price"`
	}{
		alias:      alias(i),
		TotalPrice: i.TotalPrice(),
	})
}

// OrderItemUpdate carries a partial item update. Nil means unchanged.
type OrderItemUpdate struct {
	Quantity *int
	Status   *OrderItemStatus
	Notes    *string
}

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentMobile PaymentMethod = "mobile"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentMobile:
		return true
	}
	return false
}

type Payment struct {
	ID            uint            `json:"id"`
	OrderID       uint            `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        PaymentMethod   `json:"method"`
	TransactionID string          `json:"transaction_id"`
	Timestamp     time.Time       `json:"timestamp"`
}

// Validate checks presence of amount, method and transaction id in that
// order, then their values.
func (p Payment) Validate() error {
	if p.Amount.IsZero() {
		return ErrAmountRequired
	}
	if p.Method == "" {
		return ErrMethodRequired
	}
	if p.TransactionID == "" {
		return ErrTransactionIDRequired
	}
	if !p.Amount.IsPositive() {
		return ErrAmountNotPositive
	}
	if !p.Method.Valid() {
		return ErrUnknownPaymentMethod
	}
	return nil
}
