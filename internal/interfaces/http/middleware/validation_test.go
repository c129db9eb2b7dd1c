package middleware

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationSample struct {
	Email       string   `json:"email" validate:"required,email"`
	Currency    string   `json:"currency" validate:"required,currency"`
	Permissions []string `json:"permissions" validate:"omitempty,dive,permission"`
	Date        string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

func newTestValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	require.NoError(t, RegisterValidations(v))
	return v
}

func TestRegisterValidations(t *testing.T) {
	v := newTestValidator(t)

	valid := validationSample{
		Email:       "a@b.test",
		Currency:    "sar",
		Permissions: []string{"clients:read", "finance:read"},
		Date:        "2026-02-28",
	}
	assert.NoError(t, v.Struct(valid))

	invalid := validationSample{
		Email:       "nope",
		Currency:    "GBP",
		Permissions: []string{"clients:read", "root:all"},
		Date:        "28/02/2026",
	}
	err := v.Struct(invalid)
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := map[string]string{}
	for _, e := range verrs {
		fields[e.Field()] = e.Tag()
	}
	assert.Equal(t, "email", fields["email"])
	assert.Equal(t, "currency", fields["currency"])
	assert.Equal(t, "permission", fields["permissions[1]"])
	assert.Equal(t, "datetime", fields["date"])
}

func TestFormatValidationErrors(t *testing.T) {
	v := newTestValidator(t)
	err := v.Struct(validationSample{Currency: "XXX"})

	resp := FormatValidationErrors(err, "req-9")
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "req-9", resp.Error.RequestID)

	messages := map[string]string{}
	for _, d := range resp.Error.Details {
		messages[d.Field] = d.Message
	}
	assert.Equal(t, "This field is required", messages["email"])
	assert.Equal(t, "Unsupported currency code", messages["currency"])
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(errors.New("boom"), "")
	require.NotNil(t, resp.Error)
	assert.Empty(t, resp.Error.Details)
}
