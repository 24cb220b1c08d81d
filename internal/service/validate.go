package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aryan0dhankhar/crm/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json names so messages match the payload the client sent
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkStruct validates v and converts the first failure into a BadRequest
func checkStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return domain.BadRequest("%s", describe(verrs[0]))
	}
	return domain.BadRequest("%s", err.Error())
}

func describe(fe validator.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "oneof":
		return name + " must be one of: " + strings.Join(strings.Fields(fe.Param()), ", ")
	case "min", "gte":
		return name + " must be at least " + fe.Param()
	case "max", "lte":
		return name + " must be at most " + fe.Param()
	default:
		return name + " is invalid"
	}
}

// blankToNil clears optional strings the client sent as ""
func blankToNil(fields ...**string) {
	for _, f := range fields {
		if *f != nil && strings.TrimSpace(**f) == "" {
			*f = nil
		}
	}
}
