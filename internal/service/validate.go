package service

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"go-user-service/internal/domain"
)

// Field rules mirror the entity constraints: name >= 2, valid email,
// password 6..255, optional address >= 2, gender enum, phone exactly 10.
var validate = validator.New()

type CreateUserInput struct {
	Name     string         `json:"name" validate:"required,min=2"`
	Email    string         `json:"email" validate:"required,email"`
	Password string         `json:"password" validate:"required,min=6,max=255"`
	Address  *string        `json:"address" validate:"omitempty,min=2"`
	Gender   *domain.Gender `json:"gender" validate:"omitempty,oneof=male female"`
	Phone    string         `json:"phone" validate:"required,len=10"`
}

type UpdateUserInput struct {
	Name     *string        `json:"name" validate:"omitempty,min=2"`
	Email    *string        `json:"email" validate:"omitempty,email"`
	Password *string        `json:"password" validate:"omitempty,min=6,max=255"`
	Address  *string        `json:"address" validate:"omitempty,min=2"`
	Gender   *domain.Gender `json:"gender" validate:"omitempty,oneof=male female"`
	Phone    *string        `json:"phone" validate:"omitempty,len=10"`
}

func checkStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return domain.ErrValidation(domain.FieldError{Field: "_", Message: err.Error()})
	}
	fields := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, domain.FieldError{
			Field:   strings.ToLower(fe.Field()),
			Message: ruleMessage(fe),
		})
	}
	return domain.ErrValidation(fields...)
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "len":
		return "must be exactly " + fe.Param() + " characters"
	case "oneof":
		return "must be one of: " + fe.Param()
	}
	return "is invalid"
}
