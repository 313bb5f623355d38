package v1

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tablewise/restaurant-api/internal/api/handler/v1/request"
	"github.com/tablewise/restaurant-api/internal/api/handler/v1/response"
	"github.com/tablewise/restaurant-api/internal/domain"
)

type ReservationService interface {
	CreateTable(ctx context.Context, table domain.Table) (domain.Table, error)
	GetTable(ctx context.Context, id uint) (domain.Table, error)
	ListTables(ctx context.Context, filter domain.TableFilter) ([]domain.Table, error)
	UpdateTable(ctx context.Context, id uint, update domain.TableUpdate) (domain.Table, error)
	DeleteTable(ctx context.Context, id uint) error

	CreateReservation(ctx context.Context, reservation domain.Reservation) (domain.Reservation, error)
	GetReservation(ctx context.Context, id uint) (domain.Reservation, error)
	ListReservations(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error)
	UpdateReservation(ctx context.Context, id uint, update domain.ReservationUpdate) (domain.Reservation, error)
	DeleteReservation(ctx context.Context, id uint) error
}

// TableHandler serves tables and reservations. Reservation dates and times
// are read and written in the restaurant's zone.
type TableHandler struct {
	svc ReservationService
	loc *time.Location
	now func() time.Time
}

func NewTableHandler(svc ReservationService, loc *time.Location) *TableHandler {
	return &TableHandler{
		svc: svc,
		loc: loc,
		now: time.Now,
	}
}

// HandleListTables godoc
// @Summary      List tables
// @Tags         tables
// @Produce      json
// @Param        min_capacity  query     int     false  "seats at least"
// @Param        location      query     string  false  "location"
// @Success      200  {array}   domain.Table
// @Failure      400  {object}  response.Err
// @Router       /tables/tables [get]
// @Security BearerAuth
func (h *TableHandler) HandleListTables(ctx *gin.Context) {
	minCapacity, err := queryInt(ctx, "min_capacity")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	tables, err := h.svc.ListTables(ctx.Request.Context(), domain.TableFilter{
		MinCapacity: minCapacity,
		Location:    ctx.Query("location"),
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleListTables -> h.svc.ListTables -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, tables)
}

// HandleCreateTable godoc
// @Summary      Create a table
// @Tags         tables
// @Accept       json
// @Produce      json
// @Param        request  body      request.TableRequest  true  "table"
// @Success      201  {object}  domain.Table
// @Failure      400  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /tables/tables [post]
// @Security BearerAuth
func (h *TableHandler) HandleCreateTable(ctx *gin.Context) {
	var req request.TableRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	table, err := h.svc.CreateTable(ctx.Request.Context(), req.Table())
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateTable -> h.svc.CreateTable -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, table)
}

// HandleGetTable godoc
// @Summary      Get a table
// @Tags         tables
// @Produce      json
// @Param        id   path      int  true  "table ID"
// @Success      200  {object}  domain.Table
// @Failure      404  {object}  response.Err
// @Router       /tables/tables/{id} [get]
// @Security BearerAuth
func (h *TableHandler) HandleGetTable(ctx *gin.Context) {
	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	table, err := h.svc.GetTable(ctx.Request.Context(), id)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetTable -> h.svc.GetTable -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, table)
}

// HandleUpdateTable godoc
// @Summary      Update a table
// @Tags         tables
// @Accept       json
// @Produce      json
// @Param        id       path      int                         true  "table ID"
// @Param        request  body      request.UpdateTableRequest  true  "fields to change"
// @Success      200  {object}  domain.Table
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /tables/tables/{id} [patch]
// @Security BearerAuth
func (h *TableHandler) HandleUpdateTable(ctx *gin.Context) {
	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateTableRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	table, err := h.svc.UpdateTable(ctx.Request.Context(), id, req.Update())
	if err != nil {
		err = fmt.Errorf("v1.HandleUpdateTable -> h.svc.UpdateTable -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, table)
}

// HandleDeleteTable godoc
// @Summary      Delete a table and its reservations
// @Tags         tables
// @Param        id   path      int  true  "table ID"
// @Success      204
// @Failure      404  {object}  response.Err
// @Router       /tables/tables/{id} [delete]
// @Security BearerAuth
func (h *TableHandler) HandleDeleteTable(ctx *gin.Context) {
	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteTable(ctx.Request.Context(), id); err != nil {
		err = fmt.Errorf("v1.HandleDeleteTable -> h.svc.DeleteTable -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleListReservations godoc
// @Summary      List reservations
// @Tags         tables
// @Produce      json
// @Param        table   query     int     false  "table ID"
// @Param        status  query     string  false  "reservation status"
// @Param        date    query     string  false  "YYYY-MM-DD"
// @Param        search  query     string  false  "customer name or phone contains"
// @Success      200  {array}   response.Reservation
// @Failure      400  {object}  response.Err
// @Router       /tables/reservations [get]
// @Security BearerAuth
func (h *TableHandler) HandleListReservations(ctx *gin.Context) {
	tableID, err := queryUint(ctx, "table")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	date, err := queryDate(ctx, "date")
	if err != nil {
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}
	status := domain.ReservationStatus(ctx.Query("status"))
	if status != "" && !status.Valid() {
		response.RenderErr(ctx, response.ErrFromDomain(domain.ErrUnknownReservationStatus))
		return
	}

	filter := domain.ReservationFilter{
		TableID: tableID,
		Status:  status,
		Search:  ctx.Query("search"),
	}
	if date != nil {
		y, m, d := date.Date()
		start := time.Date(y, m, d, 0, 0, 0, 0, h.loc)
		from, to := start.UTC(), start.AddDate(0, 0, 1).UTC()
		filter.From, filter.To = &from, &to
	}

	reservations, err := h.svc.ListReservations(ctx.Request.Context(), filter)
	if err != nil {
		err = fmt.Errorf("v1.HandleListReservations -> h.svc.ListReservations -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewReservations(reservations, h.loc, h.now()))
}

// HandleCreateReservation godoc
// @Summary      Book a table
// @Description  Rejected when the party exceeds the table or another live reservation of the
// @Description  table falls within the overlap window.
// @Tags         tables
// @Accept       json
// @Produce      json
// @Param        request  body      request.ReservationRequest  true  "reservation"
// @Success      201  {object}  response.Reservation
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /tables/reservations [post]
// @Security BearerAuth
func (h *TableHandler) HandleCreateReservation(ctx *gin.Context) {
	var req request.ReservationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	reservation, err := req.Reservation(h.loc)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	created, err := h.svc.CreateReservation(ctx.Request.Context(), reservation)
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateReservation -> h.svc.CreateReservation -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, response.NewReservation(created, h.loc, h.now()))
}

// HandleGetReservation godoc
// @Summary      Get a reservation
// @Tags         tables
// @Produce      json
// @Param        id   path      int  true  "reservation ID"
// @Success      200  {object}  response.Reservation
// @Failure      404  {object}  response.Err
// @Router       /tables/reservations/{id} [get]
// @Security BearerAuth
func (h *TableHandler) HandleGetReservation(ctx *gin.Context) {
	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	reservation, err := h.svc.GetReservation(ctx.Request.Context(), id)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetReservation -> h.svc.GetReservation -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewReservation(reservation, h.loc, h.now()))
}

// HandleUpdateReservation godoc
// @Summary      Update a reservation
// @Description  Status follows pending, confirmed, seated, completed, with cancelled reachable
// @Description  from any open state. Moving or confirming re-runs the overlap check.
// @Tags         tables
// @Accept       json
// @Produce      json
// @Param        id       path      int                               true  "reservation ID"
// @Param        request  body      request.UpdateReservationRequest  true  "fields to change"
// @Success      200  {object}  response.Reservation
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /tables/reservations/{id} [patch]
// @Security BearerAuth
func (h *TableHandler) HandleUpdateReservation(ctx *gin.Context) {
	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateReservationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	var current time.Time
	if req.Reschedules() {
		stored, err := h.svc.GetReservation(ctx.Request.Context(), id)
		if err != nil {
			err = fmt.Errorf("v1.HandleUpdateReservation -> h.svc.GetReservation -> %w", err)
			response.RenderErr(ctx, response.ErrFromDomain(err))
			return
		}
		current = stored.ScheduledAt
	}

	update, err := req.Update(current, h.loc)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	reservation, err := h.svc.UpdateReservation(ctx.Request.Context(), id, update)
	if err != nil {
		err = fmt.Errorf("v1.HandleUpdateReservation -> h.svc.UpdateReservation -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, response.NewReservation(reservation, h.loc, h.now()))
}

// HandleDeleteReservation godoc
// @Summary      Delete a reservation
// @Tags         tables
// @Param        id   path      int  true  "reservation ID"
// @Success      204
// @Failure      404  {object}  response.Err
// @Router       /tables/reservations/{id} [delete]
// @Security BearerAuth
func (h *TableHandler) HandleDeleteReservation(ctx *gin.Context) {
	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteReservation(ctx.Request.Context(), id); err != nil {
		err = fmt.Errorf("v1.HandleDeleteReservation -> h.svc.DeleteReservation -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}
