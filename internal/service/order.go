package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tablewise/restaurant-api/internal/domain"
	"github.com/tablewise/restaurant-api/internal/events"
	"github.com/tablewise/restaurant-api/internal/metrics"
	"github.com/tablewise/restaurant-api/internal/repository"
)

var (
	ErrOrderNotFound     = repository.ErrOrderNotFound
	ErrOrderItemNotFound = repository.ErrOrderItemNotFound
	ErrPaymentNotFound   = repository.ErrPaymentNotFound
	ErrPaymentExists     = repository.ErrPaymentExists
	ErrCancelledPayment  = domain.NewError(domain.ErrInvalidTransition, "cannot pay a cancelled order")
)

type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) (domain.Order, error)
	FindByID(ctx context.Context, id uint) (domain.Order, error)
	FindAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	Update(ctx context.Context, order domain.Order, guard repository.StatusGuard) (domain.Order, error)
	Delete(ctx context.Context, id uint) error

	AddItem(ctx context.Context, item domain.OrderItem, guard repository.StatusGuard) (domain.OrderItem, error)
	FindItem(ctx context.Context, orderID, itemID uint) (domain.OrderItem, error)
	UpdateItem(ctx context.Context, item domain.OrderItem, guard repository.ItemGuard) (domain.OrderItem, error)
	DeleteItem(ctx context.Context, orderID, itemID uint, guard repository.StatusGuard) error

	Pay(ctx context.Context, payment domain.Payment, guard repository.StatusGuard) (domain.Payment, error)
	FindPaymentByID(ctx context.Context, id uint) (domain.Payment, error)
	FindPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, error)
}

type OrderService struct {
	repo    OrderRepository
	events  events.Publisher
	metrics *metrics.Metrics
}

func NewOrderService(repo OrderRepository, pub events.Publisher, m *metrics.Metrics) *OrderService {
	return &OrderService{
		repo:    repo,
		events:  pub,
		metrics: m,
	}
}

// orderOpen rejects writes to orders that reached a terminal status.
func orderOpen(status domain.OrderStatus) error {
	if status.IsTerminal() {
		return domain.Errorf(domain.ErrInvalidTransition, "order is %s and can no longer change", status)
	}
	return nil
}

// CreateOrder opens a pending order. The waiter defaults to the caller.
func (s *OrderService) CreateOrder(ctx context.Context, actor domain.Actor, order domain.Order) (domain.Order, error) {
	order.Status = domain.OrderPending
	if order.WaiterID == nil {
		order.WaiterID = actorID(actor)
	}

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	s.metrics.OrdersCreated.Inc()
	zap.L().Info("order created", zap.Uint("order_id", created.ID), zap.Uint("actor_id", actor.UserID))
	publish(ctx, s.events, s.metrics, events.New(events.OrderCreated, created).ForOrder(created.ID))

	return created, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uint) (domain.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	orders, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindAll -> %w", err)
	}

	return orders, nil
}

// UpdateOrder applies a partial update to an open order. A status change is
// checked against the status stored at write time, and paid is reachable only
// through MakePayment.
func (s *OrderService) UpdateOrder(ctx context.Context, actor domain.Actor, id uint, update domain.OrderUpdate) (domain.Order, error) {
	if update.Status != nil && !update.Status.Valid() {
		return domain.Order{}, domain.ErrUnknownOrderStatus
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	order := domain.Order{
		ID:      id,
		TableID: current.TableID,
		Notes:   current.Notes,
	}
	if update.TableID != nil {
		order.TableID = update.TableID
	}
	if update.Notes != nil {
		order.Notes = *update.Notes
	}

	var previous domain.OrderStatus
	guard := func(status domain.OrderStatus) error {
		previous = status
		if err := orderOpen(status); err != nil {
			return err
		}
		if update.Status == nil {
			return nil
		}
		next := *update.Status
		if next == domain.OrderPaid && status != domain.OrderPaid {
			return domain.ErrPaidRequiresPayment
		}
		return status.CanTransitionTo(next)
	}
	if update.Status != nil {
		order.Status = *update.Status
	}

	updated, err := s.repo.Update(ctx, order, guard)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.repo.Update -> %w", err)
	}

	if updated.Status != previous {
		s.metrics.OrderStatusChanges.WithLabelValues(string(updated.Status)).Inc()
		zap.L().Info("order status changed",
			zap.Uint("order_id", updated.ID),
			zap.String("from", string(previous)),
			zap.String("to", string(updated.Status)),
			zap.Uint("actor_id", actor.UserID),
		)
		publish(ctx, s.events, s.metrics, events.New(events.OrderStatusChanged, updated).ForOrder(updated.ID))
	}

	return updated, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("s.repo.Delete -> %w", err)
	}

	return nil
}

// AddItem appends a line to an open order. Concurrent adds to the same order
// do not block each other.
func (s *OrderService) AddItem(ctx context.Context, actor domain.Actor, orderID uint, item domain.OrderItem) (domain.OrderItem, error) {
	if item.DishID == 0 {
		return domain.OrderItem{}, domain.ErrDishIDRequired
	}
	if item.Quantity < 1 {
		return domain.OrderItem{}, domain.ErrItemQuantity
	}
	item.OrderID = orderID
	item.Status = domain.ItemPending

	created, err := s.repo.AddItem(ctx, item, orderOpen)
	if err != nil {
		return domain.OrderItem{}, fmt.Errorf("s.repo.AddItem -> %w", err)
	}

	s.metrics.OrderItemsAdded.Inc()
	zap.L().Info("order item added",
		zap.Uint("order_id", orderID),
		zap.Uint("dish_id", created.DishID),
		zap.Int("quantity", created.Quantity),
		zap.Uint("actor_id", actor.UserID),
	)
	publish(ctx, s.events, s.metrics, events.New(events.OrderItemAdded, created).ForOrder(orderID))

	return created, nil
}

func (s *OrderService) UpdateItem(ctx context.Context, orderID, itemID uint, update domain.OrderItemUpdate) (domain.OrderItem, error) {
	if update.Quantity != nil && *update.Quantity < 1 {
		return domain.OrderItem{}, domain.ErrItemQuantity
	}
	if update.Status != nil && !update.Status.Valid() {
		return domain.OrderItem{}, domain.ErrUnknownItemStatus
	}

	item, err := s.repo.FindItem(ctx, orderID, itemID)
	if err != nil {
		return domain.OrderItem{}, fmt.Errorf("s.repo.FindItem -> %w", err)
	}

	if update.Quantity != nil {
		item.Quantity = *update.Quantity
	}
	if update.Status != nil {
		item.Status = *update.Status
	}
	if update.Notes != nil {
		item.Notes = *update.Notes
	}

	guard := func(orderStatus domain.OrderStatus, current domain.OrderItem) error {
		if err := orderOpen(orderStatus); err != nil {
			return err
		}
		return current.Status.CanTransitionTo(item.Status)
	}

	updated, err := s.repo.UpdateItem(ctx, item, guard)
	if err != nil {
		return domain.OrderItem{}, fmt.Errorf("s.repo.UpdateItem -> %w", err)
	}

	return updated, nil
}

func (s *OrderService) DeleteItem(ctx context.Context, orderID, itemID uint) error {
	if err := s.repo.DeleteItem(ctx, orderID, itemID, orderOpen); err != nil {
		return fmt.Errorf("s.repo.DeleteItem -> %w", err)
	}

	return nil
}

// MakePayment records the order's single payment and marks it paid in the
// same transaction. Concurrent attempts serialize on the order row and all
// but the first see ErrPaymentExists.
func (s *OrderService) MakePayment(ctx context.Context, actor domain.Actor, orderID uint, payment domain.Payment) (domain.Payment, error) {
	if err := payment.Validate(); err != nil {
		return domain.Payment{}, err
	}
	payment.OrderID = orderID

	guard := func(status domain.OrderStatus) error {
		if status == domain.OrderCancelled {
			return ErrCancelledPayment
		}
		return nil
	}

	created, err := s.repo.Pay(ctx, payment, guard)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("s.repo.Pay -> %w", err)
	}

	s.metrics.PaymentsRecorded.WithLabelValues(string(created.Method)).Inc()
	s.metrics.OrderStatusChanges.WithLabelValues(string(domain.OrderPaid)).Inc()
	zap.L().Info("payment recorded",
		zap.Uint("order_id", orderID),
		zap.Uint("payment_id", created.ID),
		zap.String("method", string(created.Method)),
		zap.String("amount", created.Amount.StringFixed(2)),
		zap.Uint("actor_id", actor.UserID),
	)
	publish(ctx, s.events, s.metrics, events.New(events.OrderPaid, created).ForOrder(orderID))

	return created, nil
}

func (s *OrderService) GetPayment(ctx context.Context, id uint) (domain.Payment, error) {
	payment, err := s.repo.FindPaymentByID(ctx, id)
	if err != nil {
		return domain.Payment{}, fmt.Errorf("s.repo.FindPaymentByID -> %w", err)
	}

	return payment, nil
}

func (s *OrderService) ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, error) {
	payments, err := s.repo.FindPayments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindPayments -> %w", err)
	}

	return payments, nil
}
