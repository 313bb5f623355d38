package v1

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tablewise/restaurant-api/internal/api/handler/v1/request"
	"github.com/tablewise/restaurant-api/internal/api/handler/v1/response"
	"github.com/tablewise/restaurant-api/internal/domain"
)

type InventoryService interface {
	CreateStock(ctx context.Context, actor domain.Actor, stock domain.Stock) (domain.Stock, error)
	GetStock(ctx context.Context, id uint) (domain.Stock, error)
	ListStocks(ctx context.Context, filter domain.StockFilter) ([]domain.Stock, error)
	ReorderList(ctx context.Context) ([]domain.Stock, error)
	UpdateReorderThreshold(ctx context.Context, id uint, threshold float64) (domain.Stock, error)
	DeleteStock(ctx context.Context, actor domain.Actor, id uint) error

	RecordTransaction(ctx context.Context, actor domain.Actor, txn domain.StockTransaction) (domain.StockTransaction, domain.Stock, error)
	GetTransaction(ctx context.Context, id uint) (domain.StockTransaction, error)
	ListTransactions(ctx context.Context, filter domain.StockTransactionFilter) ([]domain.StockTransaction, error)
}

type InventoryHandler struct {
	svc InventoryService
}

func NewInventoryHandler(svc InventoryService) *InventoryHandler {
	return &InventoryHandler{
		svc: svc,
	}
}

// HandleListStocks godoc
// @Summary      List stock levels
// @Tags         inventory
// @Produce      json
// @Param        ingredient     query     int     false  "ingredient ID"
// @Param        needs_reorder  query     bool    false  "at or below threshold"
// @Param        search         query     string  false  "ingredient name contains"
// @Success      200  {array}   domain.Stock
// @Failure      400  {object}  response.Err
// @Router       /inventory/stocks [get]
// @Security BearerAuth
func (h *InventoryHandler) HandleListStocks(ctx *gin.Context) {
	ingredientID, err := queryUint(ctx, "ingredient")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	needsReorder, err := queryBool(ctx, "needs_reorder")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	stocks, err := h.svc.ListStocks(ctx.Request.Context(), domain.StockFilter{
		IngredientID: ingredientID,
		NeedsReorder: needsReorder,
		Search:       ctx.Query("search"),
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleListStocks -> h.svc.ListStocks -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, stocks)
}

// HandleReorderList godoc
// @Summary      List stocks at or below their reorder threshold
// @Tags         inventory
// @Produce      json
// @Success      200  {array}   domain.Stock
// @Router       /inventory/stocks/reorder [get]
// @Security BearerAuth
func (h *InventoryHandler) HandleReorderList(ctx *gin.Context) {
	stocks, err := h.svc.ReorderList(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleReorderList -> h.svc.ReorderList -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, stocks)
}

// HandleCreateStock godoc
// @Summary      Open a stock record for an ingredient
// @Description  A non-zero quantity is recorded as an opening adjustment in the ledger.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request  body      request.StockRequest  true  "stock"
// @Success      201  {object}  domain.Stock
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /inventory/stocks [post]
// @Security BearerAuth
func (h *InventoryHandler) HandleCreateStock(ctx *gin.Context) {
	actor, respErr := actorFrom(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.StockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	stock, err := h.svc.CreateStock(ctx.Request.Context(), actor, req.Stock())
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateStock -> h.svc.CreateStock -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, stock)
}

// HandleGetStock godoc
// @Summary      Get a stock record
// @Tags         inventory
// @Produce      json
// @Param        id   path      int  true  "stock ID"
// @Success      200  {object}  domain.Stock
// @Failure      404  {object}  response.Err
// @Router       /inventory/stocks/{id} [get]
// @Security BearerAuth
func (h *InventoryHandler) HandleGetStock(ctx *gin.Context) {
	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	stock, err := h.svc.GetStock(ctx.Request.Context(), id)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetStock -> h.svc.GetStock -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, stock)
}

// HandleUpdateStock godoc
// @Summary      Change the reorder threshold
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        id       path      int                         true  "stock ID"
// @Param        request  body      request.UpdateStockRequest  true  "threshold"
// @Success      200  {object}  domain.Stock
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /inventory/stocks/{id} [patch]
// @Security BearerAuth
func (h *InventoryHandler) HandleUpdateStock(ctx *gin.Context) {
	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateStockRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	stock, err := h.svc.UpdateReorderThreshold(ctx.Request.Context(), id, *req.ReorderThreshold)
	if err != nil {
		err = fmt.Errorf("v1.HandleUpdateStock -> h.svc.UpdateReorderThreshold -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, stock)
}

// HandleDeleteStock godoc
// @Summary      Delete a stock record
// @Description  Any remaining quantity is written off the ledger as an adjustment.
// @Tags         inventory
// @Param        id   path      int  true  "stock ID"
// @Success      204
// @Failure      404  {object}  response.Err
// @Router       /inventory/stocks/{id} [delete]
// @Security BearerAuth
func (h *InventoryHandler) HandleDeleteStock(ctx *gin.Context) {
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

	if err := h.svc.DeleteStock(ctx.Request.Context(), actor, id); err != nil {
		err = fmt.Errorf("v1.HandleDeleteStock -> h.svc.DeleteStock -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleListTransactions godoc
// @Summary      List stock transactions, newest first
// @Tags         inventory
// @Produce      json
// @Param        ingredient  query     int     false  "ingredient ID"
// @Param        type        query     string  false  "in, out or adjustment"
// @Param        user        query     int     false  "user ID"
// @Success      200  {array}   domain.StockTransaction
// @Failure      400  {object}  response.Err
// @Router       /inventory/stock-transactions [get]
// @Security BearerAuth
func (h *InventoryHandler) HandleListTransactions(ctx *gin.Context) {
	ingredientID, err := queryUint(ctx, "ingredient")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	userID, err := queryUint(ctx, "user")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	txType := domain.StockTransactionType(ctx.Query("type"))
	if txType != "" && !txType.Valid() {
		response.RenderErr(ctx, response.ErrFromDomain(domain.ErrInvalidStockTxType))
		return
	}

	txns, err := h.svc.ListTransactions(ctx.Request.Context(), domain.StockTransactionFilter{
		IngredientID: ingredientID,
		Type:         txType,
		UserID:       userID,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleListTransactions -> h.svc.ListTransactions -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, txns)
}

// HandleRecordTransaction godoc
// @Summary      Record a stock movement
// @Description  Appends to the ledger and applies the movement to the ingredient's stock atomically.
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request  body      request.StockTransactionRequest  true  "movement"
// @Success      201  {object}  response.StockTransaction
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /inventory/stock-transactions [post]
// @Security BearerAuth
func (h *InventoryHandler) HandleRecordTransaction(ctx *gin.Context) {
	actor, respErr := actorFrom(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.StockTransactionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	txn, stock, err := h.svc.RecordTransaction(ctx.Request.Context(), actor, req.Transaction())
	if err != nil {
		err = fmt.Errorf("v1.HandleRecordTransaction -> h.svc.RecordTransaction -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, response.StockTransaction{
		Transaction: txn,
		Stock:       stock,
	})
}

// HandleGetTransaction godoc
// @Summary      Get a stock transaction
// @Tags         inventory
// @Produce      json
// @Param        id   path      int  true  "transaction ID"
// @Success      200  {object}  domain.StockTransaction
// @Failure      404  {object}  response.Err
// @Router       /inventory/stock-transactions/{id} [get]
// @Security BearerAuth
func (h *InventoryHandler) HandleGetTransaction(ctx *gin.Context) {
	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	txn, err := h.svc.GetTransaction(ctx.Request.Context(), id)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetTransaction -> h.svc.GetTransaction -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, txn)
}
