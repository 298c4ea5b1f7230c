package server

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ValidationErrors is a rejected request body, reported field by field.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// requestValidator adapts validator/v10 to echo.Validator.
type requestValidator struct {
	v *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{v: v}
}

func (r *requestValidator) Validate(i interface{}) error {
	err := r.v.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: fieldMessage(fe), Value: fe.Value()})
	}
	return out
}

var fieldLabels = map[string]string{
	"name":     "Business name",
	"location": "Location",
	"category": "Business category",
}

func fieldMessage(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "min", "max":
		bounds := map[string]string{"name": "2 and 100", "location": "2 and 200"}[fe.Field()]
		if bounds == "" {
			return fmt.Sprintf("%s fails %s=%s", label, fe.Tag(), fe.Param())
		}
		return fmt.Sprintf("%s must be between %s characters", label, bounds)
	case "oneof":
		return "Invalid " + strings.ToLower(label)
	}
	return fmt.Sprintf("%s is invalid", label)
}

// validationResponse renders err as a 400 when it is a ValidationErrors.
func validationResponse(c echo.Context, err error) error {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return c.JSON(http.StatusBadRequest, ValidationFailure{Error: "Validation failed", Details: verrs})
	}
	return err
}
