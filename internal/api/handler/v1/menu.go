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

type MenuService interface {
	CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error)
	GetCategory(ctx context.Context, id uint) (domain.Category, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	UpdateCategory(ctx context.Context, id uint, update domain.CategoryUpdate) (domain.Category, error)
	DeleteCategory(ctx context.Context, id uint) error

	CreateIngredient(ctx context.Context, ingredient domain.Ingredient) (domain.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (domain.Ingredient, error)
	ListIngredients(ctx context.Context, filter domain.IngredientFilter) ([]domain.Ingredient, error)
	UpdateIngredient(ctx context.Context, id uint, update domain.IngredientUpdate) (domain.Ingredient, error)
	DeleteIngredient(ctx context.Context, id uint) error

	CreateDish(ctx context.Context, dish domain.Dish) (domain.Dish, error)
	GetDish(ctx context.Context, id uint) (domain.Dish, error)
	ListDishes(ctx context.Context, filter domain.DishFilter) ([]domain.Dish, error)
	UpdateDish(ctx context.Context, id uint, update domain.DishUpdate) (domain.Dish, error)
	DeleteDish(ctx context.Context, id uint) error
}

type MenuHandler struct {
	svc MenuService
}

func NewMenuHandler(svc MenuService) *MenuHandler {
	return &MenuHandler{
		svc: svc,
	}
}

// HandleListCategories godoc
// @Summary      List categories
// @Tags         menu
// @Produce      json
// @Success      200  {array}   domain.Category
// @Router       /menu/categories [get]
// @Security BearerAuth
func (h *MenuHandler) HandleListCategories(ctx *gin.Context) {
	categories, err := h.svc.ListCategories(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListCategories -> h.svc.ListCategories -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, categories)
}

// HandleCreateCategory godoc
// @Summary      Create a category
// @Tags         menu
// @Accept       json
// @Produce      json
// @Param        request  body      request.CategoryRequest  true  "category"
// @Success      201  {object}  domain.Category
// @Failure      400  {object}  response.Err
// @Router       /menu/categories [post]
// @Security BearerAuth
func (h *MenuHandler) HandleCreateCategory(ctx *gin.Context) {
	var req request.CategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	category, err := h.svc.CreateCategory(ctx.Request.Context(), domain.Category{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateCategory -> h.svc.CreateCategory -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, category)
}

// HandleGetCategory godoc
// @Summary      Get a category
// @Tags         menu
// @Produce      json
// @Param        id   path      int  true  "category ID"
// @Success      200  {object}  domain.Category
// @Failure      404  {object}  response.Err
// @Router       /menu/categories/{id} [get]
// @Security BearerAuth
func (h *MenuHandler) HandleGetCategory(ctx *gin.Context) {
	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	category, err := h.svc.GetCategory(ctx.Request.Context(), id)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetCategory -> h.svc.GetCategory -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, category)
}

// HandleUpdateCategory godoc
// @Summary      Update a category
// @Tags         menu
// @Accept       json
// @Produce      json
// @Param        id       path      int                            true  "category ID"
// @Param        request  body      request.UpdateCategoryRequest  true  "fields to change"
// @Success      200  {object}  domain.Category
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /menu/categories/{id} [patch]
// @Security BearerAuth
func (h *MenuHandler) HandleUpdateCategory(ctx *gin.Context) {
	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateCategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	category, err := h.svc.UpdateCategory(ctx.Request.Context(), id, req.Update())
	if err != nil {
		err = fmt.Errorf("v1.HandleUpdateCategory -> h.svc.UpdateCategory -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, category)
}

// HandleDeleteCategory godoc
// @Summary      Delete a category and its dishes
// @Tags         menu
// @Param        id   path      int  true  "category ID"
// @Success      204
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /menu/categories/{id} [delete]
// @Security BearerAuth
func (h *MenuHandler) HandleDeleteCategory(ctx *gin.Context) {
	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteCategory(ctx.Request.Context(), id); err != nil {
		err = fmt.Errorf("v1.HandleDeleteCategory -> h.svc.DeleteCategory -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleListIngredients godoc
// @Summary      List ingredients
// @Tags         menu
// @Produce      json
// @Param        search  query     string  false  "name contains"
// @Success      200  {array}   domain.Ingredient
// @Router       /menu/ingredients [get]
// @Security BearerAuth
func (h *MenuHandler) HandleListIngredients(ctx *gin.Context) {
	ingredients, err := h.svc.ListIngredients(ctx.Request.Context(), domain.IngredientFilter{
		Search: ctx.Query("search"),
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleListIngredients -> h.svc.ListIngredients -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, ingredients)
}

// HandleCreateIngredient godoc
// @Summary      Create an ingredient
// @Tags         menu
// @Accept       json
// @Produce      json
// @Param        request  body      request.IngredientRequest  true  "ingredient"
// @Success      201  {object}  domain.Ingredient
// @Failure      400  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /menu/ingredients [post]
// @Security BearerAuth
func (h *MenuHandler) HandleCreateIngredient(ctx *gin.Context) {
	var req request.IngredientRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ingredient, err := h.svc.CreateIngredient(ctx.Request.Context(), domain.Ingredient{
		Name:        req.Name,
		Unit:        req.Unit,
		CostPerUnit: req.CostPerUnit,
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateIngredient -> h.svc.CreateIngredient -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, ingredient)
}

// HandleGetIngredient godoc
// @Summary      Get an ingredient
// @Tags         menu
// @Produce      json
// @Param        id   path      int  true  "ingredient ID"
// @Success      200  {object}  domain.Ingredient
// @Failure      404  {object}  response.Err
// @Router       /menu/ingredients/{id} [get]
// @Security BearerAuth
func (h *MenuHandler) HandleGetIngredient(ctx *gin.Context) {
	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	ingredient, err := h.svc.GetIngredient(ctx.Request.Context(), id)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetIngredient -> h.svc.GetIngredient -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, ingredient)
}

// HandleUpdateIngredient godoc
// @Summary      Update an ingredient
// @Tags         menu
// @Accept       json
// @Produce      json
// @Param        id       path      int                              true  "ingredient ID"
// @Param        request  body      request.UpdateIngredientRequest  true  "fields to change"
// @Success      200  {object}  domain.Ingredient
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /menu/ingredients/{id} [patch]
// @Security BearerAuth
func (h *MenuHandler) HandleUpdateIngredient(ctx *gin.Context) {
	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	var req request.UpdateIngredientRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	ingredient, err := h.svc.UpdateIngredient(ctx.Request.Context(), id, req.Update())
	if err != nil {
		err = fmt.Errorf("v1.HandleUpdateIngredient -> h.svc.UpdateIngredient -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, ingredient)
}

// HandleDeleteIngredient godoc
// @Summary      Delete an ingredient
// @Tags         menu
// @Param        id   path      int  true  "ingredient ID"
// @Success      204
// @Failure      404  {object}  response.Err
// @Router       /menu/ingredients/{id} [delete]
// @Security BearerAuth
func (h *MenuHandler) HandleDeleteIngredient(ctx *gin.Context) {
	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteIngredient(ctx.Request.Context(), id); err != nil {
		err = fmt.Errorf("v1.HandleDeleteIngredient -> h.svc.DeleteIngredient -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleListDishes godoc
// @Summary      List dishes
// @Tags         menu
// @Produce      json
// @Param        category   query     int     false  "category ID"
// @Param        available  query     bool    false  "availability"
// @Param        search     query     string  false  "name or description contains"
// @Param        ordering   query     string  false  "price, name or preparation_time, '-' for descending"
// @Success      200  {array}   domain.Dish
// @Failure      400  {object}  response.Err
// @Router       /menu/dishes [get]
// @Security BearerAuth
func (h *MenuHandler) HandleListDishes(ctx *gin.Context) {
	categoryID, err := queryUint(ctx, "category")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	available, err := queryBool(ctx, "available")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	dishes, err := h.svc.ListDishes(ctx.Request.Context(), domain.DishFilter{
		CategoryID: categoryID,
		Available:  available,
		Search:     ctx.Query("search"),
		Ordering:   ctx.Query("ordering"),
	})
	if err != nil {
		err = fmt.Errorf("v1.HandleListDishes -> h.svc.ListDishes -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, dishes)
}

// bindDish accepts JSON or a form carrying ingredients[<i>].ingredient and
// ingredients[<i>].quantity keys.
func bindDish(ctx *gin.Context) (request.DishRequest, error) {
	var req request.DishRequest

	switch ctx.ContentType() {
	case gin.MIMEPOSTForm, gin.MIMEMultipartPOSTForm:
		if err := ctx.ShouldBind(&req); err != nil {
			return req, err
		}
		ingredients, found, err := request.ParseIndexedIngredients(ctx.Request.PostForm)
		if err != nil {
			return req, err
		}
		if found {
			req.Ingredients = &ingredients
		}
	default:
		if err := ctx.ShouldBindJSON(&req); err != nil {
			return req, err
		}
	}

	return req, nil
}

// HandleCreateDish godoc
// @Summary      Create a dish
// @Tags         menu
// @Accept       json
// @Produce      json
// @Param        request  body      request.DishRequest  true  "dish"
// @Success      201  {object}  domain.Dish
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /menu/dishes [post]
// @Security BearerAuth
func (h *MenuHandler) HandleCreateDish(ctx *gin.Context) {
	req, err := bindDish(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = req.ValidateCreate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	dish, err := h.svc.CreateDish(ctx.Request.Context(), req.Dish())
	if err != nil {
		err = fmt.Errorf("v1.HandleCreateDish -> h.svc.CreateDish -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusCreated, dish)
}

// HandleGetDish godoc
// @Summary      Get a dish
// @Tags         menu
// @Produce      json
// @Param        id   path      int  true  "dish ID"
// @Success      200  {object}  domain.Dish
// @Failure      404  {object}  response.Err
// @Router       /menu/dishes/{id} [get]
// @Security BearerAuth
func (h *MenuHandler) HandleGetDish(ctx *gin.Context) {
	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	dish, err := h.svc.GetDish(ctx.Request.Context(), id)
	if err != nil {
		err = fmt.Errorf("v1.HandleGetDish -> h.svc.GetDish -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, dish)
}

// HandleUpdateDish godoc
// @Summary      Update a dish
// @Description  Absent fields keep their value. A present ingredients list, in JSON or as
// @Description  ingredients[<i>].ingredient / ingredients[<i>].quantity form keys, replaces the
// @Description  whole ingredient set in the same transaction.
// @Tags         menu
// @Accept       json
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        id       path      int                  true  "dish ID"
// @Param        request  body      request.DishRequest  true  "fields to change"
// @Success      200  {object}  domain.Dish
// @Failure      400  {object}  response.Err
// @Failure      404  {object}  response.Err
// @Router       /menu/dishes/{id} [put]
// @Router       /menu/dishes/{id} [patch]
// @Security BearerAuth
func (h *MenuHandler) HandleUpdateDish(ctx *gin.Context) {
	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	req, err := bindDish(ctx)
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err = req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	dish, err := h.svc.UpdateDish(ctx.Request.Context(), id, req.Update())
	if err != nil {
		err = fmt.Errorf("v1.HandleUpdateDish -> h.svc.UpdateDish -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.JSON(http.StatusOK, dish)
}

// HandleDeleteDish godoc
// @Summary      Delete a dish
// @Tags         menu
// @Param        id   path      int  true  "dish ID"
// @Success      204
// @Failure      404  {object}  response.Err
// @Failure      409  {object}  response.Err
// @Router       /menu/dishes/{id} [delete]
// @Security BearerAuth
func (h *MenuHandler) HandleDeleteDish(ctx *gin.Context) {
	id, respErr := paramID(ctx, "id")
	if respErr != nil {
		response.RenderErr(ctx, respErr)
		return
	}

	if err := h.svc.DeleteDish(ctx.Request.Context(), id); err != nil {
		err = fmt.Errorf("v1.HandleDeleteDish -> h.svc.DeleteDish -> %w", err)
		response.RenderErr(ctx, response.ErrFromDomain(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}
