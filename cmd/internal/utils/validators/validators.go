package validators

import (
	"agenda/cmd/internal/utils"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Register installs the custom rules used by request structs and makes
// validation errors report form field names.
func Register(validate *validator.Validate) {
	validate.RegisterTagNameFunc(formFieldName)
	_ = validate.RegisterValidation("datetimelocal", IsDateTimeInput)
	_ = validate.RegisterValidation("isodate", IsIsoDate)
}

// IsDateTimeInput accepts the HTML datetime-local format, YYYY-MM-DDTHH:MM.
func IsDateTimeInput(fl validator.FieldLevel) bool {
	_, err := time.Parse(utils.DateTimeInputLayout, fl.Field().String())
	return err == nil
}

func IsIsoDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(utils.DateLayout, fl.Field().String())
	return err == nil
}

func formFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}
