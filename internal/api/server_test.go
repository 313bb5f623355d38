package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablewise/restaurant-api/internal/config"
	"github.com/tablewise/restaurant-api/internal/db"
	"github.com/tablewise/restaurant-api/internal/events"
	"github.com/tablewise/restaurant-api/internal/metrics"
	"github.com/tablewise/restaurant-api/internal/repository/dao"
)

type testClient struct {
	t      *testing.T
	server *Server
	token  string
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	conf := &config.AppConfig{
		API: &config.APIConfig{
			Environment:   "test",
			Port:          "0",
			BaseURL:       "localhost",
			JWTSigningKey: "test-signing-key",
			JWTTTL:        time.Hour,
			Timezone:      "UTC",
		},
		Gin:          &config.GinConfig{Mode: "test"},
		Database:     &config.DatabaseConfig{Driver: "sqlite"},
		Reservations: &config.ReservationsConfig{OverlapWindow: 2 * time.Hour},
		Kafka:        &config.KafkaConfig{},
		Seed:         &config.SeedConfig{},
	}

	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	require.NoError(t, dao.InitTables(gdb))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := events.NewHub()
	go hub.Run(ctx)

	s, err := NewServer(conf, gdb, hub, hub, metrics.New())
	require.NoError(t, err)

	return s
}

func (c *testClient) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	w := httptest.NewRecorder()
	c.server.Router.ServeHTTP(w, req)

	return w
}

func (c *testClient) decode(w *httptest.ResponseRecorder, wantCode int, out any) {
	c.t.Helper()

	require.Equal(c.t, wantCode, w.Code, w.Body.String())
	if out != nil {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), out))
	}
}

func login(t *testing.T, s *Server, username, role string) *testClient {
	t.Helper()

	c := &testClient{t: t, server: s}

	w := c.do(http.MethodPost, "/api/v1/users/", map[string]any{
		"username":         username,
		"email":            username + "@example.com",
		"password":         "secret123",
		"confirm_password": "secret123",
		"role":             role,
	})
	c.decode(w, http.StatusCreated, nil)

	var resp struct {
		Token string `json:"token"`
	}
	w = c.do(http.MethodPost, "/api/v1/auth/token", map[string]any{
		"username": username,
		"password": "secret123",
	})
	c.decode(w, http.StatusOK, &resp)
	require.NotEmpty(t, resp.Token)

	c.token = resp.Token
	return c
}

type idBody struct {
	ID uint `json:"id"`
}

type orderBody struct {
	ID          uint            `json:"id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	TotalItems  int             `json:"total_items"`
	Items       []struct {
		ID         uint            `json:"id"`
		Quantity   int             `json:"quantity"`
		TotalPrice decimal.Decimal `json:"total_price"`
	} `json:"items"`
}

func TestServer_OrderLifecycle(t *testing.T) {
	s := newTestServer(t)
	c := login(t, s, "manager", "manager")

	var category idBody
	c.decode(c.do(http.MethodPost, "/api/v1/menu/categories", map[string]any{
		"name": "Mains",
	}), http.StatusCreated, &category)

	var dish idBody
	c.decode(c.do(http.MethodPost, "/api/v1/menu/dishes", map[string]any{
		"name":             "Risotto",
		"price":            "12.50",
		"category_id":      category.ID,
		"preparation_time": 20,
	}), http.StatusCreated, &dish)

	var order orderBody
	c.decode(c.do(http.MethodPost, "/api/v1/orders/orders", map[string]any{
		"notes": "window seat",
	}), http.StatusCreated, &order)
	assert.Equal(t, "pending", order.Status)
	assert.Empty(t, order.Items)

	base := fmt.Sprintf("/api/v1/orders/orders/%d", order.ID)

	c.decode(c.do(http.MethodPost, base+"/add_item", map[string]any{
		"dish_id":  dish.ID,
		"quantity": 2,
	}), http.StatusCreated, nil)

	c.decode(c.do(http.MethodGet, base, nil), http.StatusOK, &order)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.TotalItems)
	assert.True(t, decimal.NewFromInt(25).Equal(order.TotalAmount), order.TotalAmount.String())

	// The total follows the current dish price until the order is paid.
	c.decode(c.do(http.MethodPatch, fmt.Sprintf("/api/v1/menu/dishes/%d", dish.ID), map[string]any{
		"price": "10",
	}), http.StatusOK, nil)
	c.decode(c.do(http.MethodGet, base, nil), http.StatusOK, &order)
	assert.True(t, decimal.NewFromInt(20).Equal(order.TotalAmount), order.TotalAmount.String())

	t.Run("add item without a body", func(t *testing.T) {
		w := c.do(http.MethodPost, base+"/add_item", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	})

	t.Run("add item with an unknown dish", func(t *testing.T) {
		w := c.do(http.MethodPost, base+"/add_item", map[string]any{"dish_id": 9999})
		assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	})

	payment := map[string]any{
		"amount":         "20",
		"method":         "cash",
		"transaction_id": "till-0001",
	}

	var paid struct {
		ID      uint   `json:"id"`
		OrderID uint   `json:"order_id"`
		Method  string `json:"method"`
	}
	c.decode(c.do(http.MethodPost, base+"/make_payment", payment), http.StatusCreated, &paid)
	assert.Equal(t, order.ID, paid.OrderID)
	assert.Equal(t, "cash", paid.Method)

	c.decode(c.do(http.MethodGet, base, nil), http.StatusOK, &order)
	assert.Equal(t, "paid", order.Status)

	w := c.do(http.MethodPost, base+"/make_payment", payment)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	var payments []idBody
	c.decode(c.do(http.MethodGet, fmt.Sprintf("/api/v1/orders/payments?order=%d", order.ID), nil), http.StatusOK, &payments)
	assert.Len(t, payments, 1)
}

func TestServer_DishIngredientsFromForm(t *testing.T) {
	s := newTestServer(t)
	c := login(t, s, "chef", "manager")

	var category, rice, stock, dish idBody
	c.decode(c.do(http.MethodPost, "/api/v1/menu/categories", map[string]any{"name": "Mains"}), http.StatusCreated, &category)
	c.decode(c.do(http.MethodPost, "/api/v1/menu/ingredients", map[string]any{
		"name": "Rice", "unit": "kg", "cost_per_unit": "3",
	}), http.StatusCreated, &rice)
	c.decode(c.do(http.MethodPost, "/api/v1/menu/ingredients", map[string]any{
		"name": "Stock", "unit": "l", "cost_per_unit": "1",
	}), http.StatusCreated, &stock)
	c.decode(c.do(http.MethodPost, "/api/v1/menu/dishes", map[string]any{
		"name":             "Risotto",
		"price":            "12.50",
		"category_id":      category.ID,
		"preparation_time": 20,
		"ingredients":      []map[string]any{{"ingredient_id": rice.ID, "quantity": 0.2}},
	}), http.StatusCreated, &dish)

	path := fmt.Sprintf("/api/v1/menu/dishes/%d", dish.ID)
	putForm := func(form url.Values) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "Bearer "+c.token)

		w := httptest.NewRecorder()
		s.Router.ServeHTTP(w, req)
		return w
	}

	type dishBody struct {
		Name        string `json:"name"`
		Ingredients []struct {
			IngredientID uint    `json:"ingredient_id"`
			Quantity     float64 `json:"quantity"`
		} `json:"ingredients"`
	}

	w := putForm(url.Values{
		"name":                      {"Risotto bianco"},
		"ingredients[0].ingredient": {fmt.Sprint(stock.ID)},
		"ingredients[0].quantity":   {"0.5"},
	})
	var updated dishBody
	c.decode(w, http.StatusOK, &updated)
	assert.Equal(t, "Risotto bianco", updated.Name)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, stock.ID, updated.Ingredients[0].IngredientID)
	assert.Equal(t, 0.5, updated.Ingredients[0].Quantity)

	w = putForm(url.Values{
		"ingredients[0].ingredient": {fmt.Sprint(rice.ID)},
		"ingredients[0].quantity":   {"0.2"},
		"ingredients[1].ingredient": {"9999"},
		"ingredients[1].quantity":   {"1"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())

	w = putForm(url.Values{"ingredients[0].ingredient": {fmt.Sprint(rice.ID)}})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	var stored dishBody
	c.decode(c.do(http.MethodGet, path, nil), http.StatusOK, &stored)
	assert.Equal(t, "Risotto bianco", stored.Name)
	require.Len(t, stored.Ingredients, 1)
	assert.Equal(t, stock.ID, stored.Ingredients[0].IngredientID)
}

func TestServer_StockLedger(t *testing.T) {
	s := newTestServer(t)
	c := login(t, s, "chef", "manager")

	var ingredient idBody
	c.decode(c.do(http.MethodPost, "/api/v1/menu/ingredients", map[string]any{
		"name":          "Arborio rice",
		"unit":          "kg",
		"cost_per_unit": "3.20",
	}), http.StatusCreated, &ingredient)

	var stock struct {
		ID       uint    `json:"id"`
		Quantity float64 `json:"quantity"`
	}
	c.decode(c.do(http.MethodPost, "/api/v1/inventory/stocks", map[string]any{
		"ingredient_id":     ingredient.ID,
		"quantity":          5,
		"reorder_threshold": 2,
	}), http.StatusCreated, &stock)
	assert.Equal(t, 5.0, stock.Quantity)

	var recorded struct {
		Transaction struct {
			Type     string  `json:"type"`
			Quantity float64 `json:"quantity"`
		} `json:"transaction"`
		Stock struct {
			Quantity float64 `json:"quantity"`
		} `json:"stock"`
	}
	c.decode(c.do(http.MethodPost, "/api/v1/inventory/stock-transactions", map[string]any{
		"ingredient_id": ingredient.ID,
		"type":          "in",
		"quantity":      3,
	}), http.StatusCreated, &recorded)
	assert.Equal(t, "in", recorded.Transaction.Type)
	assert.Equal(t, 8.0, recorded.Stock.Quantity)

	w := c.do(http.MethodPost, "/api/v1/inventory/stock-transactions", map[string]any{
		"ingredient_id": ingredient.ID,
		"type":          "out",
		"quantity":      100,
	})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	c.decode(c.do(http.MethodGet, fmt.Sprintf("/api/v1/inventory/stocks/%d", stock.ID), nil), http.StatusOK, &stock)
	assert.Equal(t, 8.0, stock.Quantity)
}

func TestServer_Access(t *testing.T) {
	s := newTestServer(t)

	t.Run("healthcheck is open", func(t *testing.T) {
		c := &testClient{t: t, server: s}
		w := c.do(http.MethodGet, "/", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("api requires a token", func(t *testing.T) {
		c := &testClient{t: t, server: s}
		w := c.do(http.MethodGet, "/api/v1/orders/orders", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("report writes are for managers", func(t *testing.T) {
		waiter := login(t, s, "waiter", "waiter")
		body := map[string]any{
			"date":                "2026-10-01",
			"total_orders":        3,
			"total_revenue":       "90",
			"average_order_value": "30",
		}

		w := waiter.do(http.MethodPost, "/api/v1/reports/daily-sales", body)
		assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

		w = waiter.do(http.MethodGet, "/api/v1/reports/daily-sales", nil)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

		manager := login(t, s, "boss", "manager")
		w = manager.do(http.MethodPost, "/api/v1/reports/daily-sales", body)
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	})

	t.Run("metrics are exposed", func(t *testing.T) {
		c := &testClient{t: t, server: s}
		w := c.do(http.MethodGet, "/metrics", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "http_requests_total")
	})
}
