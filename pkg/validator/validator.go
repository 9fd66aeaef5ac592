package validator

import (
	"context"
	"errors"

	"github.com/go-playground/validator"
)

var global *validator.Validate

const (
	ErrInvalidFormat      = "Invalid format"
	ErrFieldRequired      = "Field is required"
	ErrFieldExceedsMaxLen = "Field exceeds maximum length"
	ErrFieldBelowMinLen   = "Field is below minimum length"
	ErrFieldExceedsMaxVal = "Field exceeds maximum value"
	ErrFieldBelowMinVal   = "Field is below minimum value"
	ErrUnknownValidation  = "Unknown validation error"
)

// eventTypes are the single-letter event category codes.
var eventTypes = map[string]bool{
	"A": true, "B": true, "C": true, "D": true, "E": true, "F": true,
	"G": true, "H": true, "I": true, "J": true, "L": true, "M": true,
	"N": true, "O": true, "P": true, "R": true, "S": true, "T": true,
	"V": true, "W": true, "X": true,
}

var visibilities = map[string]bool{
	"PUB": true,
	"PRI": true,
	"CLO": true,
}

func init() {
	SetValidator(New())
}

func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("eventtype", validateEventType)
	_ = v.RegisterValidation("visibility", validateVisibility)
	return v
}

func SetValidator(v *validator.Validate) {
	global = v
}

func Validator() *validator.Validate {
	return global
}

func validateEventType(fl validator.FieldLevel) bool {
	return eventTypes[fl.Field().String()]
}

func validateVisibility(fl validator.FieldLevel) bool {
	return visibilities[fl.Field().String()]
}

func Validate(ctx context.Context, structure any) error {
	return parseValidationErrors(Validator().StructCtx(ctx, structure))
}

func parseValidationErrors(err error) error {
	if err == nil {
		return nil
	}
	vErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(vErrors) == 0 {
		return nil
	}
	ve := vErrors[0]
	var msg string
	switch ve.Tag() {
	case "required":
		msg = ErrFieldRequired
	case "max":
		msg = ErrFieldExceedsMaxLen
	case "min":
		msg = ErrFieldBelowMinLen
	case "lt", "lte":
		msg = ErrFieldExceedsMaxVal
	case "gt", "gte":
		msg = ErrFieldBelowMinVal
	case "email", "url":
		msg = ErrInvalidFormat
	case "eventtype":
		msg = "Unknown event category"
	case "visibility":
		msg = "Account type must be PUB, PRI or CLO"
	default:
		msg = ErrUnknownValidation
	}
	return errors.New(msg + ": " + ve.Namespace())
}
