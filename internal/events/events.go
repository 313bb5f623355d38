package events

import (
	"context"
	"errors"
	"fmt"
	"time"
)

type Type string

const (
	OrderCreated       Type = "order.created"
	OrderStatusChanged Type = "order.status_changed"
	OrderItemAdded     Type = "order.item_added"
	OrderPaid          Type = "order.paid"
	StockTransaction   Type = "stock.transaction"
)

// Event is a committed state change broadcast to the order feed and the
// message bus.
type Event struct {
	Type         Type      `json:"type"`
	OrderID      uint      `json:"order_id,omitempty"`
	IngredientID uint      `json:"ingredient_id,omitempty"`
	Data         any       `json:"data"`
	At           time.Time `json:"at"`
}

func New(t Type, data any) Event {
	return Event{
		Type: t,
		Data: data,
		At:   time.Now().UTC(),
	}
}

func (e Event) ForOrder(id uint) Event {
	e.OrderID = id
	return e
}

func (e Event) ForIngredient(id uint) Event {
	e.IngredientID = id
	return e
}

// Key partitions events so everything about one order or ingredient stays
// in order on the bus.
func (e Event) Key() string {
	if e.OrderID != 0 {
		return fmt.Sprintf("order-%d", e.OrderID)
	}
	if e.IngredientID != 0 {
		return fmt.Sprintf("ingredient-%d", e.IngredientID)
	}
	return string(e.Type)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Fanout delivers each event to every publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) error {
	return nil
}
