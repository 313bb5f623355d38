package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tablewise/restaurant-api/internal/domain"
	"github.com/tablewise/restaurant-api/internal/events"
	"github.com/tablewise/restaurant-api/internal/metrics"
	"github.com/tablewise/restaurant-api/internal/repository"
)

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return p.err
}

// mockOrderRepo runs the guards it receives against status, the stored order
// status, before recording the call.
type mockOrderRepo struct {
	mock.Mock
	status domain.OrderStatus
}

func (m *mockOrderRepo) Create(ctx context.Context, order domain.Order) (domain.Order, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *mockOrderRepo) FindByID(ctx context.Context, id uint) (domain.Order, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *mockOrderRepo) FindAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockOrderRepo) Update(ctx context.Context, order domain.Order, guard repository.StatusGuard) (domain.Order, error) {
	if err := guard(m.status); err != nil {
		return domain.Order{}, err
	}
	args := m.Called(ctx, order)
	return args.Get(0).(domain.Order), args.Error(1)
}

func (m *mockOrderRepo) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockOrderRepo) AddItem(ctx context.Context, item domain.OrderItem, guard repository.StatusGuard) (domain.OrderItem, error) {
	if err := guard(m.status); err != nil {
		return domain.OrderItem{}, err
	}
	args := m.Called(ctx, item)
	return args.Get(0).(domain.OrderItem), args.Error(1)
}

func (m *mockOrderRepo) FindItem(ctx context.Context, orderID, itemID uint) (domain.OrderItem, error) {
	args := m.Called(ctx, orderID, itemID)
	return args.Get(0).(domain.OrderItem), args.Error(1)
}

func (m *mockOrderRepo) UpdateItem(ctx context.Context, item domain.OrderItem, guard repository.ItemGuard) (domain.OrderItem, error) {
	current, err := m.FindItem(ctx, item.OrderID, item.ID)
	if err != nil {
		return domain.OrderItem{}, err
	}
	if err = guard(m.status, current); err != nil {
		return domain.OrderItem{}, err
	}
	args := m.Called(ctx, item)
	return args.Get(0).(domain.OrderItem), args.Error(1)
}

func (m *mockOrderRepo) DeleteItem(ctx context.Context, orderID, itemID uint, guard repository.StatusGuard) error {
	if err := guard(m.status); err != nil {
		return err
	}
	return m.Called(ctx, orderID, itemID).Error(0)
}

func (m *mockOrderRepo) Pay(ctx context.Context, payment domain.Payment, guard repository.StatusGuard) (domain.Payment, error) {
	if err := guard(m.status); err != nil {
		return domain.Payment{}, err
	}
	args := m.Called(ctx, payment)
	return args.Get(0).(domain.Payment), args.Error(1)
}

func (m *mockOrderRepo) FindPaymentByID(ctx context.Context, id uint) (domain.Payment, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Payment), args.Error(1)
}

func (m *mockOrderRepo) FindPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Payment), args.Error(1)
}

func newOrderService(status domain.OrderStatus) (*OrderService, *mockOrderRepo, *recordingPublisher, *metrics.Metrics) {
	repo := &mockOrderRepo{status: status}
	pub := &recordingPublisher{}
	m := metrics.New()
	return NewOrderService(repo, pub, m), repo, pub, m
}

var waiter = domain.Actor{UserID: 9, Role: domain.RoleWaiter}

func TestOrderService_CreateOrder(t *testing.T) {
	ctx := context.Background()
	svc, repo, pub, m := newOrderService("")

	repo.On("Create", ctx, mock.MatchedBy(func(o domain.Order) bool {
		return o.Status == domain.OrderPending && o.WaiterID != nil && *o.WaiterID == 9
	})).Return(domain.Order{ID: 1, Status: domain.OrderPending}, nil)

	order, err := svc.CreateOrder(ctx, waiter, domain.Order{Status: domain.OrderServed})
	require.NoError(t, err)

	assert.Equal(t, uint(1), order.ID)
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.OrderCreated, pub.events[0].Type)
	assert.Equal(t, uint(1), pub.events[0].OrderID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersCreated))
	repo.AssertExpectations(t)
}

func TestOrderService_UpdateOrder(t *testing.T) {
	ctx := context.Background()
	paid, served, bogus := domain.OrderPaid, domain.OrderServed, domain.OrderStatus("eaten")

	t.Run("unknown status", func(t *testing.T) {
		svc, repo, _, _ := newOrderService(domain.OrderPending)

		_, err := svc.UpdateOrder(ctx, waiter, 1, domain.OrderUpdate{Status: &bogus})
		assert.ErrorIs(t, err, domain.ErrUnknownOrderStatus)
		repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("paid only through payment", func(t *testing.T) {
		svc, repo, pub, _ := newOrderService(domain.OrderServed)
		repo.On("FindByID", ctx, uint(1)).Return(domain.Order{ID: 1, Status: domain.OrderServed}, nil)

		_, err := svc.UpdateOrder(ctx, waiter, 1, domain.OrderUpdate{Status: &paid})
		assert.ErrorIs(t, err, domain.ErrPaidRequiresPayment)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Empty(t, pub.events)
	})

	t.Run("backward transition", func(t *testing.T) {
		pending := domain.OrderPending
		svc, repo, _, _ := newOrderService(domain.OrderServed)
		repo.On("FindByID", ctx, uint(1)).Return(domain.Order{ID: 1, Status: domain.OrderServed}, nil)

		_, err := svc.UpdateOrder(ctx, waiter, 1, domain.OrderUpdate{Status: &pending})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("status change is published", func(t *testing.T) {
		notes := "window seat"
		svc, repo, pub, m := newOrderService(domain.OrderPreparing)
		repo.On("FindByID", ctx, uint(1)).Return(domain.Order{ID: 1, Status: domain.OrderPreparing}, nil)
		repo.On("Update", ctx, domain.Order{ID: 1, Status: domain.OrderServed, Notes: notes}).
			Return(domain.Order{ID: 1, Status: domain.OrderServed, Notes: notes}, nil)

		order, err := svc.UpdateOrder(ctx, waiter, 1, domain.OrderUpdate{Status: &served, Notes: &notes})
		require.NoError(t, err)

		assert.Equal(t, domain.OrderServed, order.Status)
		require.Len(t, pub.events, 1)
		assert.Equal(t, events.OrderStatusChanged, pub.events[0].Type)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.OrderStatusChanges.WithLabelValues("served")))
	})

	t.Run("terminal order rejects field edits", func(t *testing.T) {
		notes, table := "rewritten", uint(4)
		for _, status := range []domain.OrderStatus{domain.OrderCancelled, domain.OrderPaid} {
			svc, repo, pub, _ := newOrderService(status)
			repo.On("FindByID", ctx, uint(1)).Return(domain.Order{ID: 1, Status: status}, nil)

			_, err := svc.UpdateOrder(ctx, waiter, 1, domain.OrderUpdate{Notes: &notes})
			assert.ErrorIs(t, err, domain.ErrInvalidTransition, status)

			_, err = svc.UpdateOrder(ctx, waiter, 1, domain.OrderUpdate{TableID: &table})
			assert.ErrorIs(t, err, domain.ErrInvalidTransition, status)

			same := status
			_, err = svc.UpdateOrder(ctx, waiter, 1, domain.OrderUpdate{Status: &same})
			assert.ErrorIs(t, err, domain.ErrInvalidTransition, status)

			repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			assert.Empty(t, pub.events)
		}
	})

	t.Run("notes only keeps status quiet", func(t *testing.T) {
		notes := "no onions"
		svc, repo, pub, _ := newOrderService(domain.OrderPending)
		repo.On("FindByID", ctx, uint(1)).Return(domain.Order{ID: 1, Status: domain.OrderPending}, nil)
		repo.On("Update", ctx, domain.Order{ID: 1, Notes: notes}).
			Return(domain.Order{ID: 1, Status: domain.OrderPending, Notes: notes}, nil)

		_, err := svc.UpdateOrder(ctx, waiter, 1, domain.OrderUpdate{Notes: &notes})
		require.NoError(t, err)
		assert.Empty(t, pub.events)
	})
}

func TestOrderService_AddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("dish id checked before quantity", func(t *testing.T) {
		svc, _, _, _ := newOrderService(domain.OrderPending)

		_, err := svc.AddItem(ctx, waiter, 1, domain.OrderItem{})
		assert.ErrorIs(t, err, domain.ErrDishIDRequired)

		_, err = svc.AddItem(ctx, waiter, 1, domain.OrderItem{DishID: 3})
		assert.ErrorIs(t, err, domain.ErrItemQuantity)
	})

	t.Run("terminal order", func(t *testing.T) {
		svc, repo, _, _ := newOrderService(domain.OrderPaid)

		_, err := svc.AddItem(ctx, waiter, 1, domain.OrderItem{DishID: 3, Quantity: 1})
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		repo.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything)
	})

	t.Run("added", func(t *testing.T) {
		svc, repo, pub, m := newOrderService(domain.OrderPreparing)
		repo.On("AddItem", ctx, domain.OrderItem{OrderID: 1, DishID: 3, Quantity: 2, Status: domain.ItemPending}).
			Return(domain.OrderItem{ID: 5, OrderID: 1, DishID: 3, Quantity: 2, Status: domain.ItemPending}, nil)

		item, err := svc.AddItem(ctx, waiter, 1, domain.OrderItem{DishID: 3, Quantity: 2})
		require.NoError(t, err)

		assert.Equal(t, uint(5), item.ID)
		require.Len(t, pub.events, 1)
		assert.Equal(t, events.OrderItemAdded, pub.events[0].Type)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.OrderItemsAdded))
	})
}

func TestOrderService_MakePayment(t *testing.T) {
	ctx := context.Background()
	amount := decimal.RequireFromString("25.00")
	valid := domain.Payment{Amount: amount, Method: domain.PaymentCash, TransactionID: "tx-1"}

	t.Run("validation order", func(t *testing.T) {
		svc, _, _, _ := newOrderService(domain.OrderServed)

		tests := []struct {
			payment domain.Payment
			want    error
		}{
			{domain.Payment{}, domain.ErrAmountRequired},
			{domain.Payment{Amount: amount}, domain.ErrMethodRequired},
			{domain.Payment{Amount: amount, Method: domain.PaymentCard}, domain.ErrTransactionIDRequired},
			{domain.Payment{Amount: amount.Neg(), Method: domain.PaymentCard, TransactionID: "x"}, domain.ErrAmountNotPositive},
			{domain.Payment{Amount: amount, Method: "cheque", TransactionID: "x"}, domain.ErrUnknownPaymentMethod},
		}
		for _, tt := range tests {
			_, err := svc.MakePayment(ctx, waiter, 1, tt.payment)
			assert.ErrorIs(t, err, tt.want)
		}
	})

	t.Run("cancelled order", func(t *testing.T) {
		svc, _, _, _ := newOrderService(domain.OrderCancelled)

		_, err := svc.MakePayment(ctx, waiter, 1, valid)
		assert.ErrorIs(t, err, ErrCancelledPayment)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("second payment", func(t *testing.T) {
		svc, repo, pub, _ := newOrderService(domain.OrderPaid)
		repo.On("Pay", ctx, mock.Anything).Return(domain.Payment{}, ErrPaymentExists)

		_, err := svc.MakePayment(ctx, waiter, 1, valid)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Empty(t, pub.events)
	})

	t.Run("paid even when the feed is down", func(t *testing.T) {
		svc, repo, pub, m := newOrderService(domain.OrderServed)
		pub.err = errors.New("broker down")

		expected := valid
		expected.OrderID = 1
		repo.On("Pay", ctx, expected).Return(domain.Payment{ID: 3, OrderID: 1, Amount: amount, Method: domain.PaymentCash}, nil)

		payment, err := svc.MakePayment(ctx, waiter, 1, valid)
		require.NoError(t, err)

		assert.Equal(t, uint(3), payment.ID)
		require.Len(t, pub.events, 1)
		assert.Equal(t, events.OrderPaid, pub.events[0].Type)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.PaymentsRecorded.WithLabelValues("cash")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.EventPublishFailure.WithLabelValues(string(events.OrderPaid))))
	})
}

func TestOrderService_UpdateItem(t *testing.T) {
	ctx := context.Background()
	zero := 0
	ready := domain.ItemReady

	svc, repo, _, _ := newOrderService(domain.OrderPreparing)
	_, err := svc.UpdateItem(ctx, 1, 5, domain.OrderItemUpdate{Quantity: &zero})
	assert.ErrorIs(t, err, domain.ErrItemQuantity)

	stored := domain.OrderItem{ID: 5, OrderID: 1, DishID: 3, Quantity: 1, Status: domain.ItemPreparing}
	repo.On("FindItem", ctx, uint(1), uint(5)).Return(stored, nil)

	want := stored
	want.Status = domain.ItemReady
	repo.On("UpdateItem", ctx, want).Return(want, nil)

	item, err := svc.UpdateItem(ctx, 1, 5, domain.OrderItemUpdate{Status: &ready})
	require.NoError(t, err)
	assert.Equal(t, domain.ItemReady, item.Status)
}
