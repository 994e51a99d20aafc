package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"go-commerce-service/internal/apperror"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return isStrongPassword(fl.Field().String())
	})
	return v
}

// isStrongPassword requires upper, lower, digit and special, length >= 8.
func isStrongPassword(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			special = true
		}
	}
	return upper && lower && digit && special
}

// validateInput maps the first failing field onto a BadRequest naming it,
// reproducing the "which field failed" contract of the API.
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return apperror.BadRequest("invalid request body")
	}
	fe := errs[0]
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return apperror.BadRequest(fmt.Sprintf("%s is required", field))
	case "email":
		return apperror.BadRequest("email format is invalid")
	case "username":
		return apperror.BadRequest("username must be 3-20 characters, letters, digits and underscores only")
	case "password":
		return apperror.BadRequest("password must be at least 8 characters with upper, lower, digit and special characters")
	case "min", "gt":
		return apperror.BadRequest(fmt.Sprintf("%s is too small", field))
	default:
		return apperror.BadRequest(fmt.Sprintf("%s is invalid", field))
	}
}
