package response

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	resp := Error("something went wrong")
	assert.Equal(t, "something went wrong", resp.Error)
}

func TestAuthError(t *testing.T) {
	resp := AuthError("invalid or expired token")
	assert.Equal(t, "invalid or expired token", resp.Msg)
}

func TestFieldError(t *testing.T) {
	resp := FieldError("email", "Email test@example.com already exists.")
	require.Contains(t, resp.Errors, "email")
	assert.Equal(t, []string{"Email test@example.com already exists."}, resp.Errors["email"])
}

func TestValidationError(t *testing.T) {
	type payload struct {
		Email     string   `json:"email" validate:"required,email"`
		Password  string   `json:"password" validate:"required,min=6"`
		FirstName string   `json:"first_name" validate:"required,min=3"`
		Price     *float64 `json:"price" validate:"required,gte=0"`
	}

	v := NewValidator()
	negative := -1.0

	tests := []struct {
		name     string
		input    payload
		expected map[string][]string
	}{
		{
			name:  "все поля пустые",
			input: payload{},
			expected: map[string][]string{
				"email":      {"is a required field"},
				"password":   {"is a required field"},
				"first_name": {"is a required field"},
				"price":      {"is a required field"},
			},
		},
		{
			name: "некорректная почта и короткий пароль",
			input: payload{
				Email:     "not-an-email",
				Password:  "123",
				FirstName: "Iv",
				Price:     &negative,
			},
			expected: map[string][]string{
				"email":      {"must be a valid email address"},
				"password":   {"must be at least 6 characters long"},
				"first_name": {"must be at least 3 characters long"},
				"price":      {"must be greater than or equal to 0"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			require.Error(t, err)

			resp := ValidationError(err.(validator.ValidationErrors))
			assert.Equal(t, tt.expected, resp.Errors)
		})
	}
}

func TestNewValidator_UsesJSONNames(t *testing.T) {
	type payload struct {
		PlanID int64 `json:"plan_id" validate:"required"`
	}

	v := NewValidator()
	err := v.Struct(payload{})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))
	assert.Contains(t, resp.Errors, "plan_id")
}
