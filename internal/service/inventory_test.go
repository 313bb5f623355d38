package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tablewise/restaurant-api/internal/domain"
	"github.com/tablewise/restaurant-api/internal/events"
	"github.com/tablewise/restaurant-api/internal/metrics"
)

type mockInventoryRepo struct {
	mock.Mock
}

func (m *mockInventoryRepo) CreateStock(ctx context.Context, stock domain.Stock, opening *domain.StockTransaction) (domain.Stock, error) {
	args := m.Called(ctx, stock, opening)
	return args.Get(0).(domain.Stock), args.Error(1)
}

func (m *mockInventoryRepo) FindStockByID(ctx context.Context, id uint) (domain.Stock, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Stock), args.Error(1)
}

func (m *mockInventoryRepo) FindStocks(ctx context.Context, filter domain.StockFilter) ([]domain.Stock, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Stock), args.Error(1)
}

func (m *mockInventoryRepo) UpdateReorderThreshold(ctx context.Context, id uint, threshold float64) (domain.Stock, error) {
	args := m.Called(ctx, id, threshold)
	return args.Get(0).(domain.Stock), args.Error(1)
}

func (m *mockInventoryRepo) DeleteStock(ctx context.Context, id uint, closing domain.StockTransaction) error {
	return m.Called(ctx, id, closing).Error(0)
}

func (m *mockInventoryRepo) RecordTransaction(ctx context.Context, txn domain.StockTransaction) (domain.StockTransaction, domain.Stock, error) {
	args := m.Called(ctx, txn)
	return args.Get(0).(domain.StockTransaction), args.Get(1).(domain.Stock), args.Error(2)
}

func (m *mockInventoryRepo) FindTransactionByID(ctx context.Context, id uint) (domain.StockTransaction, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.StockTransaction), args.Error(1)
}

func (m *mockInventoryRepo) FindTransactions(ctx context.Context, filter domain.StockTransactionFilter) ([]domain.StockTransaction, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.StockTransaction), args.Error(1)
}

func TestInventoryService_CreateStock(t *testing.T) {
	ctx := context.Background()
	actor := domain.Actor{UserID: 4, Role: domain.RoleChef}

	t.Run("rejects negative values", func(t *testing.T) {
		svc := NewInventoryService(&mockInventoryRepo{}, events.Nop{}, metrics.New())

		_, err := svc.CreateStock(ctx, actor, domain.Stock{})
		assert.ErrorIs(t, err, domain.ErrIngredientRequired)
		_, err = svc.CreateStock(ctx, actor, domain.Stock{IngredientID: 1, Quantity: -1})
		assert.ErrorIs(t, err, ErrNegativeStock)
		_, err = svc.CreateStock(ctx, actor, domain.Stock{IngredientID: 1, ReorderThreshold: -1})
		assert.ErrorIs(t, err, ErrNegativeThreshold)
	})

	t.Run("opening balance", func(t *testing.T) {
		repo := &mockInventoryRepo{}
		m := metrics.New()
		svc := NewInventoryService(repo, events.Nop{}, m)

		stock := domain.Stock{IngredientID: 1, Quantity: 5, ReorderThreshold: 2}
		repo.On("CreateStock", ctx, stock, mock.MatchedBy(func(txn *domain.StockTransaction) bool {
			return txn != nil && txn.Type == domain.StockAdjustment && txn.Quantity == 5 &&
				txn.Notes == openingBalanceNote && txn.UserID != nil && *txn.UserID == 4
		})).Return(domain.Stock{ID: 1, IngredientID: 1, Quantity: 5, ReorderThreshold: 2}, nil)

		created, err := svc.CreateStock(ctx, actor, stock)
		require.NoError(t, err)
		assert.Equal(t, 5.0, created.Quantity)
		assert.Equal(t, 1.0, testutil.ToFloat64(m.StockTransactions.WithLabelValues("adjustment")))
	})

	t.Run("empty stock still reconciles with the ledger", func(t *testing.T) {
		repo := &mockInventoryRepo{}
		m := metrics.New()
		svc := NewInventoryService(repo, events.Nop{}, m)

		stock := domain.Stock{IngredientID: 1}
		repo.On("CreateStock", ctx, stock, mock.MatchedBy(func(txn *domain.StockTransaction) bool {
			return txn != nil && txn.Type == domain.StockAdjustment && txn.Quantity == 0
		})).Return(domain.Stock{ID: 1, IngredientID: 1}, nil)

		_, err := svc.CreateStock(ctx, actor, stock)
		require.NoError(t, err)
		repo.AssertExpectations(t)
		assert.Equal(t, 0.0, testutil.ToFloat64(m.StockTransactions.WithLabelValues("adjustment")))
	})
}

func TestInventoryService_DeleteStock(t *testing.T) {
	ctx := context.Background()
	actor := domain.Actor{UserID: 4, Role: domain.RoleManager}

	repo := &mockInventoryRepo{}
	svc := NewInventoryService(repo, events.Nop{}, metrics.New())

	repo.On("DeleteStock", ctx, uint(7), mock.MatchedBy(func(txn domain.StockTransaction) bool {
		return txn.Type == domain.StockAdjustment && txn.Notes == closingBalanceNote &&
			txn.UserID != nil && *txn.UserID == 4
	})).Return(nil).Once()
	repo.On("DeleteStock", ctx, uint(8), mock.Anything).Return(ErrStockNotFound).Once()

	require.NoError(t, svc.DeleteStock(ctx, actor, 7))
	assert.ErrorIs(t, svc.DeleteStock(ctx, actor, 8), domain.ErrNotFound)
	repo.AssertExpectations(t)
}

func TestInventoryService_RecordTransaction(t *testing.T) {
	ctx := context.Background()
	actor := domain.Actor{UserID: 4, Role: domain.RoleChef}

	t.Run("invalid movement never reaches the store", func(t *testing.T) {
		repo := &mockInventoryRepo{}
		svc := NewInventoryService(repo, events.Nop{}, metrics.New())

		tests := []struct {
			txn  domain.StockTransaction
			want error
		}{
			{domain.StockTransaction{Type: domain.StockIn, Quantity: 1}, domain.ErrIngredientRequired},
			{domain.StockTransaction{IngredientID: 1, Type: "sideways", Quantity: 1}, domain.ErrInvalidStockTxType},
			{domain.StockTransaction{IngredientID: 1, Type: domain.StockOut, Quantity: -2}, domain.ErrStockQuantityPositive},
			{domain.StockTransaction{IngredientID: 1, Type: domain.StockAdjustment}, domain.ErrAdjustmentZero},
		}
		for _, tt := range tests {
			_, _, err := svc.RecordTransaction(ctx, actor, tt.txn)
			assert.ErrorIs(t, err, tt.want)
		}
		repo.AssertNotCalled(t, "RecordTransaction", mock.Anything, mock.Anything)
	})

	t.Run("recorded and published", func(t *testing.T) {
		repo := &mockInventoryRepo{}
		pub := &recordingPublisher{}
		m := metrics.New()
		svc := NewInventoryService(repo, pub, m)

		userID := uint(4)
		txn := domain.StockTransaction{IngredientID: 1, Type: domain.StockIn, Quantity: 3}
		want := txn
		want.UserID = &userID
		repo.On("RecordTransaction", ctx, want).
			Return(domain.StockTransaction{ID: 2, IngredientID: 1, Type: domain.StockIn, Quantity: 3, UserID: &userID},
				domain.Stock{ID: 1, IngredientID: 1, Quantity: 8}, nil)

		created, stock, err := svc.RecordTransaction(ctx, actor, txn)
		require.NoError(t, err)

		assert.Equal(t, uint(2), created.ID)
		assert.Equal(t, 8.0, stock.Quantity)
		require.Len(t, pub.events, 1)
		assert.Equal(t, events.StockTransaction, pub.events[0].Type)
		assert.Equal(t, "ingredient-1", pub.events[0].Key())
		assert.Equal(t, 1.0, testutil.ToFloat64(m.StockTransactions.WithLabelValues("in")))
	})

	t.Run("insufficient stock", func(t *testing.T) {
		repo := &mockInventoryRepo{}
		pub := &recordingPublisher{}
		svc := NewInventoryService(repo, pub, metrics.New())

		repo.On("RecordTransaction", ctx, mock.Anything).
			Return(domain.StockTransaction{}, domain.Stock{}, domain.ErrInsufficientStock)

		_, _, err := svc.RecordTransaction(ctx, actor, domain.StockTransaction{IngredientID: 1, Type: domain.StockOut, Quantity: 50})
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Empty(t, pub.events)
	})
}

func TestInventoryService_ReorderList(t *testing.T) {
	ctx := context.Background()
	repo := &mockInventoryRepo{}
	svc := NewInventoryService(repo, events.Nop{}, metrics.New())

	repo.On("FindStocks", ctx, mock.MatchedBy(func(f domain.StockFilter) bool {
		return f.NeedsReorder != nil && *f.NeedsReorder
	})).Return([]domain.Stock{{ID: 1, Quantity: 1, ReorderThreshold: 2}}, nil)

	stocks, err := svc.ReorderList(ctx)
	require.NoError(t, err)
	assert.Len(t, stocks, 1)
}
