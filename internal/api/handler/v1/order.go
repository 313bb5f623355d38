package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tablewise/restaurant-api/internal/api/handler/v1/request"
	"github.com/tablewise/restaurant-api/internal/api/handler/v1/response"
	"github.com/tablewise/restaurant-api/internal/domain"
)

type OrderService interface {
	CreateOrder(ctx context.Context, actor domain.Actor, order domain.Order) (domain.Order, error)
	GetOrder(ctx context.Context, id uint) (domain.Order, error)
	ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error)
	UpdateOrder(ctx context.Context, actor domain.Actor, id uint, update domain.OrderUpdate) (domain.Order, error)
	DeleteOrder(ctx context.Context, id uint) error

	AddItem(ctx context.Context, actor domain.Actor, orderID uint, item domain.OrderItem) (domain.OrderItem, error)
	UpdateItem(ctx context.Context, orderID, itemID uint, update domain.OrderItemUpdate) (domain.OrderItem, error)
	DeleteItem(ctx context.Context, orderID, itemID uint) error

	MakePayment(ctx context.Context, actor domain.Actor, orderID uint, payment domain.Payment) (domain.Payment, error)
	GetPayment(ctx context.Context, id uint) (domain.Payment, error)
	ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]domain.Payment, error)
}

// FeedServer streams order events over a websocket.
type FeedServer interface {
	Serve(w http.ResponseWriter, r *http.Request) error
}

type OrderHandler struct {
	svc  OrderService
	feed FeedServer
}

func NewOrderHandler(svc OrderService, feed FeedServer) *OrderHandler {
	return &OrderHandler{
		svc:  svc,
		feed: feed,
	}
}

// HandleListOrders godoc
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Param        status    query     string  false  "order status"
// @Param        table     query     int     false  "table ID"
// @Param        waiter    query     int     false  "waiter user ID"
// @Param        search    query     string  false  "notes contain"
// @Param        ordering  query     string  false  "created_at or updated_at, '-' for descending"
// @Success      200  {array}   domain.Order
// @Failure      400  {object}  response.Err
// @Router       /orders/orders [get]
// @Security BearerAuth
func (h *OrderHandler) HandleListOrders(ctx *gin.Context) {
	tableID, err := queryUint(ctx, "table")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	waiterID, err := queryUint(ctx, "waiter")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	status := domain.OrderStatus(ctx.Query("status"))
	if status != "" && !status.Valid() {
		response.RenderErr(ctx, response.ErrFromDomain(domain.ErrUnknownOrderStatus))
		return
	}

	orders, err := h.svc.ListOrders(ctx.Request.Context(), domain.OrderFilter{
		Status:   status,
		TableID:  tableID,
		WaiterID: waiterID,
		Search:   ctx.Query("search"),
		Ordering: ctx.Query("ordering"),
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleListOrders -> h.svc.ListOrders -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, orders)
}

// HandleCreateOrder godoc
// @Summary      Open an order
// @Description  The waiter defaults to the caller.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request  body      request.CreateOrderRequest  true  "order"
// @Success      201  {object}  domain.Order
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /orders/orders [post]
// @Security BearerAuth
func (h *OrderHandler) HandleCreateOrder(ctx *gin.Context) {
	actor, respErr := actorFrom(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.CreateOrderRequest
	if err := bindJSON(ctx, &req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	order, err := h.svc.CreateOrder(ctx.Request.Context(), actor, req.Order())
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateOrder -> h.svc.CreateOrder -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, order)
}

// HandleGetOrder godoc
// @Summary      Get an order with its items and totals
// @Tags         orders
// @Produce      json
// @Param        id   path      int  true  "order ID"
// @Success      200  {object}  domain.Order
// @Failure      404  {object}  response.Err
// @Router       /orders/orders/{id} [get]
// @Security BearerAuth
func (h *OrderHandler) HandleGetOrder(ctx *gin.Context) {
	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	order, err := h.svc.GetOrder(ctx.Request.Context(), id)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetOrder -> h.svc.GetOrder -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, order)
}

// HandleUpdateOrder godoc
// @Summary      Update an order
// @Description  Status changes follow the order state machine. Paid is set only by make_payment.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id       path      int                         true  "order ID"
// @Param        request  body      request.UpdateOrderRequest  true  "fields to change"
// @Success      200  {object}  domain.Order
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /orders/orders/{id} [patch]
// @Security BearerAuth
func (h *OrderHandler) HandleUpdateOrder(ctx *gin.Context) {
	actor, respErr := actorFrom(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateOrderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	order, err := h.svc.UpdateOrder(ctx.Request.Context(), actor, id, req.Update())
	if err != nil {
		err = fmt.Errorf("v1.HandleUpdateOrder -> h.svc.UpdateOrder -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, order)
}

// HandleDeleteOrder godoc
// @Summary      Delete an order with its items and payment
// @Tags         orders
// @Param        id   path      int  true  "order ID"
// @Success      204
// @Failure      404  {object}  response.Err
// @Router       /orders/orders/{id} [delete]
// @Security BearerAuth
func (h *OrderHandler) HandleDeleteOrder(ctx *gin.Context) {
	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteOrder(ctx.Request.Context(), id); err != nil {
		err = fmt.Errorf("v1.HandleDeleteOrder -> h.svc.DeleteOrder -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleAddItem godoc
// @Summary      Add a dish to an order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id       path      int                     true  "order ID"
// @Param        request  body      request.AddItemRequest  true  "item, quantity defaults to 1"
// @Success      201  {object}  domain.OrderItem
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /orders/orders/{id}/add_item [post]
// @Security BearerAuth
func (h *OrderHandler) HandleAddItem(ctx *gin.Context) {
	actor, respErr := actorFrom(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.AddItemRequest
	if err := bindJSON(ctx, &req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	item, err := h.svc.AddItem(ctx.Request.Context(), actor, id, req.Item())
	if err != nil {
		err = fmt.Errorf("v1.HandleAddItem -> h.svc.AddItem -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, item)
}

// HandleUpdateItem godoc
// @Summary      Update an order item
// @Description  Item status moves forward only: pending, preparing, ready, served.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id       path      int                        true  "order ID"
// @Param        item_id  path      int                        true  "item ID"
// @Param        request  body      request.UpdateItemRequest  true  "fields to change"
// @Success      200  {object}  domain.OrderItem
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /orders/orders/{id}/items/{item_id} [patch]
// @Security BearerAuth
func (h *OrderHandler) HandleUpdateItem(ctx *gin.Context) {
	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	itemID, respErr := paramID(ctx, "item_id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	item, err := h.svc.UpdateItem(ctx.Request.Context(), id, itemID, req.Update())
	if err != nil {
		err = fmt.Errorf("v1.HandleUpdateItem -> h.svc.UpdateItem -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, item)
}

// HandleDeleteItem godoc
// @Summary      Remove an item from an open order
// @Tags         orders
// @Param        id       path      int  true  "order ID"
// @Param        item_id  path      int  true  "item ID"
// @Success      204
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /orders/orders/{id}/items/{item_id} [delete]
// @Security BearerAuth
func (h *OrderHandler) HandleDeleteItem(ctx *gin.Context) {
	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}
	itemID, respErr := paramID(ctx, "item_id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteItem(ctx.Request.Context(), id, itemID); err != nil {
		err = fmt.Errorf("v1.HandleDeleteItem -> h.svc.DeleteItem -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleMakePayment godoc
// @Summary      Pay an order
// @Description  Records the order's only payment and marks it paid in one transaction.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id       path      int                     true  "order ID"
// @Param        request  body      request.PaymentRequest  true  "payment"
// @Success      201  {object}  domain.Payment
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /orders/orders/{id}/make_payment [post]
// @Security BearerAuth
func (h *OrderHandler) HandleMakePayment(ctx *gin.Context) {
	actor, respErr := actorFrom(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.PaymentRequest
	if err := bindJSON(ctx, &req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	payment, err := h.svc.MakePayment(ctx.Request.Context(), actor, id, req.Payment())
	if err != nil {
		err = fmt.Errorf("v1.HandleMakePayment -> h.svc.MakePayment -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, payment)
}

// HandleListPayments godoc
// @Summary      List payments
// @Tags         orders
// @Produce      json
// @Param        order   query     int     false  "order ID"
// @Param        method  query     string  false  "cash, card or mobile"
// @Param        search  query     string  false  "transaction ID contains"
// @Success      200  {array}   domain.Payment
// @Failure      400  {object}  response.Err
// @Router       /orders/payments [get]
// @Security BearerAuth
func (h *OrderHandler) HandleListPayments(ctx *gin.Context) {
	orderID, err := queryUint(ctx, "order")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	method := domain.PaymentMethod(ctx.Query("method"))
	if method != "" && !method.Valid() {
		response.RenderErr(ctx, response.ErrFromDomain(domain.ErrUnknownPaymentMethod))
		return
	}

	payments, err := h.svc.ListPayments(ctx.Request.Context(), domain.PaymentFilter{
		OrderID: orderID,
		Method:  method,
		Search:  ctx.Query("search"),
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleListPayments -> h.svc.ListPayments -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, payments)
}

// HandleGetPayment godoc
// @Summary      Get a payment
// @Tags         orders
// @Produce      json
// @Param        id   path      int  true  "payment ID"
// @Success      200  {object}  domain.Payment
// @Failure      404  {object}  response.Err
// @Router       /orders/payments/{id} [get]
// @Security BearerAuth
func (h *OrderHandler) HandleGetPayment(ctx *gin.Context) {
	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	payment, err := h.svc.GetPayment(ctx.Request.Context(), id)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetPayment -> h.svc.GetPayment -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, payment)
}

// HandleFeed godoc
// @Summary      Order event feed
// @Description  Upgrades to a websocket that receives order events as JSON.
// @Tags         orders
// @Success      101
// @Router       /orders/feed [get]
// @Security BearerAuth
func (h *OrderHandler) HandleFeed(ctx *gin.Context) {
	if err := h.feed.Serve(ctx.Writer, ctx.Request); err != nil {
		zap.L().Warn("order feed closed", zap.Error(err))
	}
}
