package v1

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tablewise/restaurant-api/internal/api/handler/v1/response"
	"github.com/tablewise/restaurant-api/internal/api/middleware"
	"github.com/tablewise/restaurant-api/internal/domain"
)

func paramID(ctx *gin.Context, name string) (uint, *response.Err) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, response.ErrBadRequest(fmt.Errorf("invalid %s %q", name, ctx.Param(name)))
	}

	return uint(id), nil
}

func queryUint(ctx *gin.Context, key string) (*uint, error) {
	raw, ok := ctx.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}

	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("query parameter %s must be a positive integer", key)
	}
	id := uint(v)

	return &id, nil
}

func queryInt(ctx *gin.Context, key string) (*int, error) {
	raw, ok := ctx.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("query parameter %s must be an integer", key)
	}

	return &v, nil
}

func queryBool(ctx *gin.Context, key string) (*bool, error) {
	raw, ok := ctx.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("query parameter %s must be true or false", key)
	}

	return &v, nil
}

func queryDate(ctx *gin.Context, key string) (*domain.Date, error) {
	raw, ok := ctx.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}

	d, err := domain.ParseDate(raw)
	if err != nil {
		return nil, err
	}

	return &d, nil
}

// bindJSON treats an empty body as an empty object so that the workflow can
// report the first missing field itself.
func bindJSON(ctx *gin.Context, req any) error {
	err := ctx.ShouldBindJSON(req)
	if errors.Is(err, io.EOF) {
		return nil
	}

	return err
}

func actorFrom(ctx *gin.Context) (domain.Actor, *response.Err) {
	actor, ok := middleware.ActorFromContext(ctx)
	if !ok {
		return domain.Actor{}, response.ErrUnauthorized(errors.New("authentication required"))
	}

	return actor, nil
}
