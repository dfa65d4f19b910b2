package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// BindJSON binds the request body into out and converts bind failures
// into a flat 400 message. Returns false when the request was rejected.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)

	if err != nil {
		RespondBadRequest(ctx, bindErrorMessage(err))

		return false
	}

	return true
}

func bindErrorMessage(err error) string {
	var validatorErrors validator.ValidationErrors

	if errors.As(err, &validatorErrors) && len(validatorErrors) > 0 {
		fe := validatorErrors[0]

		return fmt.Sprintf("%s %s", strings.ToLower(fe.Field()), validationMessage(fe.Tag(), fe.Param()))
	}

	return "Invalid request body"
}

func validationMessage(rule, param string) string {
	switch rule {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + param + " characters"
	case "max":
		return "must be at most " + param + " characters"
	default:
		return "failed " + rule + " validation"
	}
}
