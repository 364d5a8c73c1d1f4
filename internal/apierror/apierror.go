// Package apierror renders the error envelope shared by every endpoint:
// a numeric code, a short message, a longer description, and a structured
// field list for validation failures.
package apierror

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Error struct {
	Code        int          `json:"code"`
	Message     string       `json:"message"`
	Description string       `json:"description"`
	Errors      []FieldError `json:"errors,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Abort writes the envelope and stops the handler chain.
func Abort(ctx *gin.Context, status int, description string) {
	ctx.AbortWithStatusJSON(status, Error{
		Code:        status,
		Message:     http.StatusText(status),
		Description: description,
	})
}

// AbortValidation writes a 400 envelope carrying per-field details when the
// bind error comes from the validator, or a plain 400 otherwise.
func AbortValidation(ctx *gin.Context, err error) {
	envelope := Error{
		Code:        http.StatusBadRequest,
		Message:     http.StatusText(http.StatusBadRequest),
		Description: "request validation failed",
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			envelope.Errors = append(envelope.Errors, FieldError{
				Field:   fe.Field(),
				Message: fe.Tag(),
			})
		}
	}

	ctx.AbortWithStatusJSON(http.StatusBadRequest, envelope)
}
