package client

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/vytor/betterank/internal/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkInput rejects request bodies the backend would refuse anyway, before
// any bytes hit the network.
func checkInput(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return errors.NewValidationError(field, "is required")
	case "required_without":
		return errors.NewValidationError(field, fmt.Sprintf("is required when %s is empty", strings.ToLower(fe.Param())))
	case "email":
		return errors.NewValidationError(field, "must be an email address")
	case "base64":
		return errors.NewValidationError(field, "must be base64 encoded")
	default:
		return errors.NewValidationError(field, fmt.Sprintf("must satisfy %s=%s", fe.Tag(), fe.Param()))
	}
}
