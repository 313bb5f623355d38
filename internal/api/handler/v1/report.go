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

type ReportService interface {
	CreateDailySales(ctx context.Context, actor domain.Actor, sales domain.DailySales) (domain.DailySales, error)
	GetDailySales(ctx context.Context, id uint) (domain.DailySales, error)
	ListDailySales(ctx context.Context, filter domain.DailySalesFilter) ([]domain.DailySales, error)
	UpdateDailySales(ctx context.Context, actor domain.Actor, id uint, sales domain.DailySales) (domain.DailySales, error)
	DeleteDailySales(ctx context.Context, actor domain.Actor, id uint) error

	CreatePopularDish(ctx context.Context, actor domain.Actor, popular domain.PopularDish) (domain.PopularDish, error)
	GetPopularDish(ctx context.Context, id uint) (domain.PopularDish, error)
	ListPopularDishes(ctx context.Context, filter domain.PopularDishFilter) ([]domain.PopularDish, error)
	UpdatePopularDish(ctx context.Context, actor domain.Actor, id uint, popular domain.PopularDish) (domain.PopularDish, error)
	DeletePopularDish(ctx context.Context, actor domain.Actor, id uint) error
}

type ReportHandler struct {
	svc ReportService
}

func NewReportHandler(svc ReportService) *ReportHandler {
	return &ReportHandler{
		svc: svc,
	}
}

// HandleListDailySales godoc
// @Summary      List daily sales
// @Tags         reports
// @Produce      json
// @Param        date      query     string  false  "YYYY-MM-DD"
// @Param        ordering  query     string  false  "date, total_orders or total_revenue, '-' for descending"
// @Success      200  {array}   domain.DailySales
// @Failure      400  {object}  response.Err
// @Router       /reports/daily-sales [get]
// @Security BearerAuth
func (h *ReportHandler) HandleListDailySales(ctx *gin.Context) {
	date, err := queryDate(ctx, "date")
	if err != nil {
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	sales, err := h.svc.ListDailySales(ctx.Request.Context(), domain.DailySalesFilter{
		Date:     date,
		Ordering: ctx.Query("ordering"),
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleListDailySales -> h.svc.ListDailySales -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, sales)
}

// HandleCreateDailySales godoc
// @Summary      Store a daily sales aggregate
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        request  body      request.DailySalesRequest  true  "aggregate"
// @Success      201  {object}  domain.DailySales
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /reports/daily-sales [post]
// @Security BearerAuth
func (h *ReportHandler) HandleCreateDailySales(ctx *gin.Context) {
	actor, respErr := actorFrom(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.DailySalesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	sales, err := h.svc.CreateDailySales(ctx.Request.Context(), actor, req.DailySales())
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateDailySales -> h.svc.CreateDailySales -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, sales)
}

// HandleGetDailySales godoc
// @Summary      Get a daily sales aggregate
// @Tags         reports
// @Produce      json
// @Param        id   path      int  true  "record ID"
// @Success      200  {object}  domain.DailySales
// @Failure      404  {object}  response.Err
// @Router       /reports/daily-sales/{id} [get]
// @Security BearerAuth
func (h *ReportHandler) HandleGetDailySales(ctx *gin.Context) {
	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	sales, err := h.svc.GetDailySales(ctx.Request.Context(), id)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetDailySales -> h.svc.GetDailySales -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, sales)
}

// HandleUpdateDailySales godoc
// @Summary      Replace a daily sales aggregate
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        id       path      int                        true  "record ID"
// @Param        request  body      request.DailySalesRequest  true  "aggregate"
// @Success      200  {object}  domain.DailySales
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /reports/daily-sales/{id} [put]
// @Security BearerAuth
func (h *ReportHandler) HandleUpdateDailySales(ctx *gin.Context) {
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

	var req request.DailySalesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	sales, err := h.svc.UpdateDailySales(ctx.Request.Context(), actor, id, req.DailySales())
	if err != nil {
		err = fmt.Errorf("v1.HandleUpdateDailySales -> h.svc.UpdateDailySales -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, sales)
}

// HandleDeleteDailySales godoc
// @Summary      Delete a daily sales aggregate
// @Tags         reports
// @Param        id   path      int  true  "record ID"
// @Success      204
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /reports/daily-sales/{id} [delete]
// @Security BearerAuth
func (h *ReportHandler) HandleDeleteDailySales(ctx *gin.Context) {
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

	if err := h.svc.DeleteDailySales(ctx.Request.Context(), actor, id); err != nil {
		err = fmt.Errorf("v1.HandleDeleteDailySales -> h.svc.DeleteDailySales -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleListPopularDishes godoc
// @Summary      List popular dish aggregates
// @Tags         reports
// @Produce      json
// @Param        dish          query     int     false  "dish ID"
// @Param        period_start  query     string  false  "YYYY-MM-DD"
// @Param        period_end    query     string  false  "YYYY-MM-DD"
// @Param        ordering      query     string  false  "order_count or revenue_generated, '-' for descending"
// @Success      200  {array}   domain.PopularDish
// @Failure      400  {object}  response.Err
// @Router       /reports/popular-dishes [get]
// @Security BearerAuth
func (h *ReportHandler) HandleListPopularDishes(ctx *gin.Context) {
	dishID, err := queryUint(ctx, "dish")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	start, err := queryDate(ctx, "period_start")
	if err != nil {
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}
	end, err := queryDate(ctx, "period_end")
	if err != nil {
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	popular, err := h.svc.ListPopularDishes(ctx.Request.Context(), domain.PopularDishFilter{
		DishID:      dishID,
		PeriodStart: start,
		PeriodEnd:   end,
		Ordering:    ctx.Query("ordering"),
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleListPopularDishes -> h.svc.ListPopularDishes -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, popular)
}

// HandleCreatePopularDish godoc
// @Summary      Store a popular dish aggregate
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        request  body      request.PopularDishRequest  true  "aggregate"
// @Success      201  {object}  domain.PopularDish
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /reports/popular-dishes [post]
// @Security BearerAuth
func (h *ReportHandler) HandleCreatePopularDish(ctx *gin.Context) {
	actor, respErr := actorFrom(ctx)
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.PopularDishRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	popular, err := h.svc.CreatePopularDish(ctx.Request.Context(), actor, req.PopularDish())
	if err != nil {
		err = fmt.Errorf("v1.HandleCreatePopularDish -> h.svc.CreatePopularDish -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, popular)
}

// HandleGetPopularDish godoc
// @Summary      Get a popular dish aggregate
// @Tags         reports
// @Produce      json
// @Param        id   path      int  true  "record ID"
// @Success      200  {object}  domain.PopularDish
// @Failure      404  {object}  response.Err
// @Router       /reports/popular-dishes/{id} [get]
// @Security BearerAuth
func (h *ReportHandler) HandleGetPopularDish(ctx *gin.Context) {
	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	popular, err := h.svc.GetPopularDish(ctx.Request.Context(), id)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetPopularDish -> h.svc.GetPopularDish -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, popular)
}

// HandleUpdatePopularDish godoc
// @Summary      Replace a popular dish aggregate
// @Tags         reports
// @Accept       json
// @Produce      json
// @Param        id       path      int                         true  "record ID"
// @Param        request  body      request.PopularDishRequest  true  "aggregate"
// @Success      200  {object}  domain.PopularDish
// @Failure      400  {object}  response.Err
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /reports/popular-dishes/{id} [put]
// @Security BearerAuth
func (h *ReportHandler) HandleUpdatePopularDish(ctx *gin.Context) {
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

	var req request.PopularDishRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	popular, err := h.svc.UpdatePopularDish(ctx.Request.Context(), actor, id, req.PopularDish())
	if err != nil {
		err = fmt.Errorf("v1.HandleUpdatePopularDish -> h.svc.UpdatePopularDish -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, popular)
}

// HandleDeletePopularDish godoc
// @Summary      Delete a popular dish aggregate
// @Tags         reports
// @Param        id   path      int  true  "record ID"
// @Success      204
// @Failure      403  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /reports/popular-dishes/{id} [delete]
// @Security BearerAuth
func (h *ReportHandler) HandleDeletePopularDish(ctx *gin.Context) {
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

	if err := h.svc.DeletePopularDish(ctx.Request.Context(), actor, id); err != nil {
		err = fmt.Errorf("v1.HandleDeletePopularDish -> h.svc.DeletePopularDish -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}
