package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/baechuer/real-time-ressys/services/syndication-service/internal/domain"
)

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	// report fields by their json name
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = val.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
		_, err := domain.ParsePlatform(fl.Field().String())
		return err == nil
	})
	return val
}

// Struct validates a request DTO. Failures become a validation error whose meta
// maps each field to the rule it broke.
func Struct(req any) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	meta := make(map[string]string, len(ves))
	for _, fe := range ves {
		meta[fe.Field()] = message(fe)
	}
	return domain.ErrValidationMeta("invalid request", meta)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "uuid":
		return "must be uuid"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "platform":
		return "unknown platform"
	default:
		return "failed " + fe.Tag()
	}
}
