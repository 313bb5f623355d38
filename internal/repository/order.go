package repository

import (
	"context"
	"fmt"

	"github.com/tablewise/restaurant-api/internal/domain"
	"github.com/tablewise/restaurant-api/internal/repository/dao"
)

var (
	ErrOrderNotFound     = dao.ErrOrderNotFound
	ErrOrderItemNotFound = dao.ErrOrderItemNotFound
	ErrPaymentNotFound   = dao.ErrPaymentNotFound
	ErrPaymentExists     = dao.ErrPaymentExists
)

type OrderDAO interface {
	Insert(ctx context.Context, order dao.Order) (dao.Order, error)
	FindByID(ctx context.Context, id uint) (dao.Order, error)
	FindAll(ctx context.Context, filter domain.OrderFilter) ([]dao.Order, error)
	Update(ctx context.Context, order dao.Order, guard dao.OrderGuard) (dao.Order, error)
	Delete(ctx context.Context, id uint) error

	AddItem(ctx context.Context, item dao.OrderItem, guard dao.OrderGuard) (dao.OrderItem, error)
	FindItem(ctx context.Context, orderID, itemID uint) (dao.OrderItem, error)
	UpdateItem(ctx context.Context, item dao.OrderItem, guard dao.ItemGuard) (dao.OrderItem, error)
	DeleteItem(ctx context.Context, orderID, itemID uint, guard dao.OrderGuard) error

	PayOrder(ctx context.Context, payment dao.Payment, paidStatus string, guard dao.OrderGuard) (dao.Payment, error)
	FindPaymentByID(ctx context.Context, id uint) (dao.Payment, error)
	FindPayments(ctx context.Context, filter domain.PaymentFilter) ([]dao.Payment, error)
}

// StatusGuard vets a write against the stored order status.
type StatusGuard func(status domain.OrderStatus) error

// ItemGuard vets an item write against the stored order status and item.
type ItemGuard func(orderStatus domain.OrderStatus, current domain.OrderItem) error

type OrderRepository struct {
	dao OrderDAO
}

func NewOrderRepository(dao OrderDAO) *OrderRepository {
	return &OrderRepository{
		dao: dao,
	}
}

func (g StatusGuard) dao() dao.OrderGuard {
	return func(status string) error {
		return g(domain.OrderStatus(status))
	}
}

func (r *OrderRepository) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	created, err := r.dao.Insert(ctx, dao.Order{
		TableID:  order.TableID,
		WaiterID: order.WaiterID,
		Status:   string(order.Status),
		Notes:    order.Notes,
	})
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.Insert -> %w", err)
	}

	return orderToDomain(created), nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint) (domain.Order, error) {
	found, err := r.dao.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.FindByID -> %w", err)
	}

	return orderToDomain(found), nil
}

func (r *OrderRepository) FindAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	found, err := r.dao.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindAll -> %w", err)
	}

	orders := make([]domain.Order, 0, len(found))
	for _, o := range found {
		orders = append(orders, orderToDomain(o))
	}

	return orders, nil
}

func (r *OrderRepository) Update(ctx context.Context, order domain.Order, guard StatusGuard) (domain.Order, error) {
	updated, err := r.dao.Update(ctx, dao.Order{
		ID:      order.ID,
		TableID: order.TableID,
		Status:  string(order.Status),
		Notes:   order.Notes,
	}, guard.dao())
	if err != nil {
		return domain.Order{}, fmt.Errorf("r.dao.Update -> %w", err)
	}

	return orderToDomain(updated), nil
}

func (r *OrderRepository) Delete(ctx context.Context, id uint) error {
	if err := r.dao.Delete(ctx, id); err != nil {
		return fmt.Errorf("r.dao.Delete -> %w", err)
	}

	return nil
}

func (r *OrderRepository) AddItem(ctx context.Context, item domain.OrderItem, guard StatusGuard) (domain.OrderItem, error) {
	created, err := r.dao.AddItem(ctx, orderItemToDAO(item), guard.dao())
	if err != nil {
		return domain.OrderItem{}, fmt.Errorf("r.dao.AddItem -> %w", err)
	}

	return orderItemToDomain(created), nil
}

func (r *OrderRepository) FindItem(ctx context.Context, orderID, itemID uint) (domain.OrderItem, error) {
	found, err := r.dao.FindItem(ctx, orderID, itemID)
	if err != nil {
		return domain.OrderItem{}, fmt.Errorf("r.dao.FindItem -> %w", err)
	}

	return orderItemToDomain(found), nil
}

func (r *OrderRepository) UpdateItem(ctx context.Context, item domain.OrderItem, guard ItemGuard) (domain.OrderItem, error) {
	updated, err := r.dao.UpdateItem(ctx, orderItemToDAO(item), func(status string, current dao.OrderItem) error {
		return guard(domain.OrderStatus(status), orderItemToDomain(current))
	})
	if err != nil {
		return domain.OrderItem{}, fmt.Errorf("r.dao.UpdateItem -> %w", err)
	}

	return orderItemToDomain(updated), nil
}

func (r *OrderRepository) DeleteItem(ctx context.Context, orderID, itemID uint, guard StatusGuard) error {
	if err := r.dao.DeleteItem(ctx, orderID, itemID, guard.dao()); err != nil {
		return fmt.Errorf("r.dao.DeleteItem -> %w", err)
	}

	return nil
}

// Pay records the payment and marks the order paid atomically.
func (r *OrderRepository) Pay(ctx context.Context, payment domain.Payment, guard StatusGuard) (domain.Payment, error) {
	created, err := r.dao.PayOrder(ctx, dao.Payment{
		OrderID:       payment.OrderID,
		Amount:        payment.Amount,
		Method:        string(payment.Method),
		TransactionID: payment.TransactionID,
	}, string(domain.OrderPaid), guard.dao())
	if err != nil {
		return domain.Payment{}, fmt.Errorf("r.dao.PayOrder -> %w", err)
	}

	return paymentToDomain(created), nil
}

func (r *OrderRepository) FindPaymentByID(ctx context.Context, id uint) (domain.Payment, error) {
	found, err := r.dao.FindPaymentByID(ctx, id)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("r.dao.FindPaymentByID -> %w", err)
	}

	return paymentToDomain(found), nil
}

func (r *OrderRepository) FindPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, error) {
	found, err := r.dao.FindPayments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("r.dao.FindPayments -> %w", err)
	}

	payments := make([]domain.Payment, 0, len(found))
	for _, p := range found {
		payments = append(payments, paymentToDomain(p))
	}

	return payments, nil
}

func orderToDomain(o dao.Order) domain.Order {
	order := domain.Order{
		ID:        o.ID,
		TableID:   o.TableID,
		WaiterID:  o.WaiterID,
		Status:    domain.OrderStatus(o.Status),
		Notes:     o.Notes,
		Items:     make([]domain.OrderItem, 0, len(o.Items)),
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
	if o.Table != nil {
		table := tableToDomain(*o.Table)
		order.Table = &table
	}
	if o.Waiter != nil {
		waiter := userToDomain(*o.Waiter)
		order.Waiter = &waiter
	}
	if o.Payment != nil {
		payment := paymentToDomain(*o.Payment)
		order.Payment = &payment
	}
	for _, item := range o.Items {
		order.Items = append(order.Items, orderItemToDomain(item))
	}

	return order
}

func orderItemToDAO(i domain.OrderItem) dao.OrderItem {
	return dao.OrderItem{
		ID:       i.ID,
		OrderID:  i.OrderID,
		DishID:   i.DishID,
		Quantity: i.Quantity,
		Status:   string(i.Status),
		Notes:    i.Notes,
	}
}

func orderItemToDomain(i dao.OrderItem) domain.OrderItem {
	item := domain.OrderItem{
		ID:       i.ID,
		OrderID:  i.OrderID,
		DishID:   i.DishID,
		Quantity: i.Quantity,
		Status:   domain.OrderItemStatus(i.Status),
		Notes:    i.Notes,
	}
	if i.Dish != nil {
		dish := dishToDomain(*i.Dish)
		item.Dish = &dish
	}

	return item
}

func paymentToDomain(p dao.Payment) domain.Payment {
	return domain.Payment{
		ID:            p.ID,
		OrderID:       p.OrderID,
		Amount:        p.Amount,
		Method:        domain.PaymentMethod(p.Method),
		TransactionID: p.TransactionID,
		Timestamp:     p.Timestamp,
	}
}
