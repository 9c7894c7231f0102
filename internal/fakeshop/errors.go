package fakeshop

import (
	"errors"
	"net/http"

	"github.com/almirah-shop/storefront/internal/types"
	"github.com/almirah-shop/storefront/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// apiError is a failure with the HTTP status and error code it is served with.
type apiError struct {
	Status int
	Code   string
	Detail string
}

func (e *apiError) Error() string {
	return e.Detail
}

func badRequest(detail string) error {
	return &apiError{Status: http.StatusBadRequest, Code: types.CodeValidation, Detail: detail}
}

func notFound(detail string) error {
	return &apiError{Status: http.StatusNotFound, Code: types.CodeNotFound, Detail: detail}
}

func forbidden(detail string) error {
	return &apiError{Status: http.StatusForbidden, Code: types.CodeForbidden, Detail: detail}
}

func unauthorized(detail string) error {
	return &apiError{Status: http.StatusUnauthorized, Code: types.CodeUnauthenticated, Detail: detail}
}

func withCode(status int, code, detail string) error {
	return &apiError{Status: status, Code: code, Detail: detail}
}

// writeError renders err as {"detail": ..., "code": ...}.
func writeError(c *gin.Context, err error) {
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		utils.Zlog.Error("Unhandled error",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		apiErr = &apiError{Status: http.StatusInternalServerError, Detail: "Internal server error"}
	}
	c.AbortWithStatusJSON(apiErr.Status, types.ErrorResponse{Detail: apiErr.Detail, Code: apiErr.Code})
}

// writeValidation renders a binding failure the way the backend reports
// request validation: 422 with one {loc, msg} entry per field.
func writeValidation(c *gin.Context, err error) {
	type item struct {
		Loc []string `json:"loc"`
		Msg string   `json:"msg"`
	}
	var items []item
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			items = append(items, item{
				Loc: []string{"body", fe.Field()},
				Msg: "failed on " + fe.Tag(),
			})
		}
	} else {
		items = append(items, item{Loc: []string{"body"}, Msg: err.Error()})
	}
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, types.ErrorResponse{Detail: items, Code: types.CodeValidation})
}
