package usecase

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/motoescola/backoffice/internal/entity"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validate = newValidator()

var nonDigits = regexp.MustCompile(`\D`)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// erros com o nome do campo no JSON
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return isValidPhoneNumber(fl.Field().String())
	})

	return v
}

func ValidateCreateLeadInput(input CreateLeadInput) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errs = append(errs, ValidationError{"name", "is required"})
	}

	errs = append(errs, structErrors(validate.Struct(input))...)

	return dedupe(errs)
}

func ValidateUpdateLeadInput(input UpdateLeadInput) []ValidationError {
	var errs []ValidationError

	if input.Empty() {
		return []ValidationError{{"body", "no fields to update"}}
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			errs = append(errs, ValidationError{"name", "must not be empty"})
		} else if validate.Var(*input.Name, "max=200") != nil {
			errs = append(errs, ValidationError{"name", "must not exceed 200 characters"})
		}
	}
	if input.Email != nil && *input.Email != "" && validate.Var(*input.Email, "email") != nil {
		errs = append(errs, ValidationError{"email", "is invalid"})
	}
	if input.Phone != nil && *input.Phone != "" && !isValidPhoneNumber(*input.Phone) {
		errs = append(errs, ValidationError{"phone", "must be a valid phone number"})
	}
	if input.Whatsapp != nil && *input.Whatsapp != "" && !isValidPhoneNumber(*input.Whatsapp) {
		errs = append(errs, ValidationError{"whatsapp", "must be a valid phone number"})
	}
	if input.Status != nil {
		if _, ok := entity.ParseStage(*input.Status); !ok {
			errs = append(errs, ValidationError{"status", "must be one of " + stageList()})
		}
	}
	if input.Tags != nil && validate.Var(*input.Tags, "max=30,dive,max=50") != nil {
		errs = append(errs, ValidationError{"tags", "at most 30 tags of up to 50 characters"})
	}

	return errs
}

func structErrors(err error) []ValidationError {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []ValidationError{{"body", err.Error()}}
	}

	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, ValidationError{Field: fe.Field(), Message: messageFor(fe)})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "is invalid"
	case "phone":
		return "must be a valid phone number"
	case "max":
		return "must not exceed " + fe.Param() + " characters"
	default:
		return "failed on " + fe.Tag()
	}
}

func dedupe(errs []ValidationError) []ValidationError {
	seen := map[ValidationError]bool{}
	out := errs[:0]
	for _, e := range errs {
		if seen[e] {
			continue
		}
		seen[e] = true
		out = append(out, e)
	}
	return out
}

func validationFailed(errs []ValidationError) *DomainError {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field+" ("+e.Message+")")
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: "validation failed: " + strings.Join(parts, ", "),
	}
}

func stageList() string {
	names := make([]string, 0, 7)
	for _, s := range entity.AllStages() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}

func isValidPhoneNumber(phone string) bool {
	cleaned := nonDigits.ReplaceAllString(phone, "")

	// DDD + número, com ou sem 55 na frente
	return len(cleaned) >= 10 && len(cleaned) <= 13
}
