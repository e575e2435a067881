package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
)

type contactForm struct {
	Name  string `json:"name" validate:"required,max=10"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone_number" validate:"required,phone"`
	Kind  string `json:"kind" validate:"omitempty,oneof=a b"`
}

func TestValidate_Valid(t *testing.T) {
	err := Validate(contactForm{Name: "Ann", Phone: "(415) 555-2671"})
	assert.NoError(t, err)
}

func TestValidate_FieldErrors(t *testing.T) {
	err := Validate(contactForm{Email: "nope", Phone: "12", Kind: "c"})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))

	fields := apperrors.FieldErrors(err)
	require.Len(t, fields, 4)

	byField := map[string]*apperrors.ValidationError{}
	for _, f := range fields {
		byField[f.Field] = f
	}
	assert.Equal(t, "required", byField["name"].Kind)
	assert.Equal(t, "email", byField["email"].Kind)
	assert.Equal(t, "phone", byField["phone_number"].Kind)
	assert.Equal(t, "must be one of: a b", byField["kind"].Message)
}

func TestValidateVar(t *testing.T) {
	assert.NoError(t, ValidateVar("+14155552671", "phone"))
	assert.Error(t, ValidateVar("abc", "phone"))
}
