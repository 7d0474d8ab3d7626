package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/baharkarakas/maverick-bank/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string { // error interface
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

var v = newValidator()

func newValidator() *validator.Validate {
	vv := validator.New(validator.WithRequiredStructEnabled())
	// report json names, not Go field names
	vv.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return vv
}

// Struct validates s against its `validate` tags. It returns nil or Errs.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errs, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ErrField{Field: fe.Field(), Msg: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "alphanum":
		return "must be alphanumeric"
	}
	return "failed " + fe.Tag()
}

// Money checks that d is strictly positive, fits the money columns and has
// at most two decimal places.
func Money(field string, d decimal.Decimal) *ErrField {
	if !d.IsPositive() {
		return &ErrField{Field: field, Msg: "must be > 0"}
	}
	if d.GreaterThan(models.MaxMoney) {
		return &ErrField{Field: field, Msg: "must be at most " + models.MaxMoney.String()}
	}
	if !d.Equal(d.Round(2)) {
		return &ErrField{Field: field, Msg: "at most 2 decimal places"}
	}
	return nil
}

// Merge appends field errors to the result of Struct.
func Merge(err error, extra ...*ErrField) error {
	var out Errs
	if err != nil {
		var errs Errs
		if !errors.As(err, &errs) {
			return err
		}
		out = append(out, errs...)
	}
	for _, e := range extra {
		if e != nil {
			out = append(out, *e)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
