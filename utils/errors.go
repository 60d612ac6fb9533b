package utils

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

func CreateError(statusCode int, title, detail string, ctx iris.Context) {
	ctx.StopWithProblem(statusCode, iris.NewProblem().Title(title).Detail(detail))
}

func CreateInternalServerError(ctx iris.Context) {
	CreateError(iris.StatusInternalServerError, "Internal Server Error", "Internal Server Error", ctx)
}

func CreateNotFound(ctx iris.Context) {
	CreateError(iris.StatusNotFound, "Not Found", "Not Found", ctx)
}

func CreateEmailAlreadyRegistered(ctx iris.Context) {
	CreateError(iris.StatusConflict, "Conflict", "Email already registered", ctx)
}

// HandleValidationErrors turns validator failures into a 400 listing every
// offending field; other read errors become a generic bad request.
func HandleValidationErrors(err error, ctx iris.Context) {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		CreateError(iris.StatusBadRequest, "Bad Request", "Invalid request body", ctx)
		return
	}

	fields := make([]iris.Map, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, iris.Map{
			"field": lowerFirst(fe.Field()),
			"code":  fe.Tag(),
			"param": fe.Param(),
		})
	}
	ctx.StopWithJSON(iris.StatusBadRequest, iris.Map{
		"error":   "validation_error",
		"message": "One or more fields failed validation",
		"fields":  fields,
	})
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
