package response

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tablewise/restaurant-api/internal/domain"
)

type Err struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText string `json:"status"`
	ErrorText  string `json:"error,omitempty"`
}

func (e *Err) Error() string {
	return e.ErrorText
}

func RenderErr(ctx *gin.Context, err *Err) {
	ctx.AbortWithStatusJSON(err.HTTPStatusCode, err)
}

func newErr(code int, err error) *Err {
	text := ""
	if err != nil {
		text = err.Error()
	}

	return &Err{
		Err:            err,
		HTTPStatusCode: code,
		StatusText:     http.StatusText(code),
		ErrorText:      text,
	}
}

func ErrBadRequest(err error) *Err {
	return newErr(http.StatusBadRequest, err)
}

func ErrNotFound(resource, key string, value any) *Err {
	return newErr(http.StatusNotFound, fmt.Errorf("%v with %v = %v is not found", resource, key, value))
}

func ErrConflict(err error) *Err {
	return newErr(http.StatusConflict, err)
}

func ErrWrongCredentials(err error) *Err {
	e := newErr(http.StatusUnauthorized, err)
	e.ErrorText = "wrong username or password"

	return e
}

func ErrUnauthorized(err error) *Err {
	return newErr(http.StatusUnauthorized, err)
}

func ErrPermissionDenied(err error) *Err {
	return newErr(http.StatusForbidden, err)
}

// ErrInternalServerError logs err and hides it from the client.
func ErrInternalServerError(err error) *Err {
	zap.L().Error("internal server error", zap.Error(err))

	e := newErr(http.StatusInternalServerError, err)
	e.ErrorText = "internal server error"

	return e
}

// ErrFromDomain picks the status code from the error's kind and renders the
// business message only.
func ErrFromDomain(err error) *Err {
	var code int
	switch {
	case errors.Is(err, domain.ErrInvalidArgument), errors.Is(err, domain.ErrInvalidTransition):
		code = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		code = http.StatusConflict
	case errors.Is(err, domain.ErrForbidden):
		code = http.StatusForbidden
	default:
		return ErrInternalServerError(err)
	}

	e := newErr(code, err)
	var de *domain.Error
	if errors.As(err, &de) {
		e.ErrorText = de.Message
	}

	return e
}
