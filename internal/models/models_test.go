package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		want  string
	}{
		{name: "целое число", price: 200, want: "200.00"},
		{name: "одна цифра после запятой", price: 499.9, want: "499.90"},
		{name: "две цифры после запятой", price: 19.99, want: "19.99"},
		{name: "ноль", price: 0, want: "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatPrice(tt.price))
		})
	}
}

func TestNewSubscriptionResponse(t *testing.T) {
	sub := &Subscription{
		ID: 11, Name: "basic", Price: "200.00",
		UserID: 42, PlanID: 3,
		StartDate: 1700000000, EndDate: 1702592000,
		IsActive: true, CreatedAt: 1700000000,
	}

	data, err := json.Marshal(NewSubscriptionResponse(sub))
	require.NoError(t, err)

	// Идентификаторы и даты уходят на провод строками.
	assert.JSONEq(t, `{
		"id": "11",
		"name": "basic",
		"price": "200.00",
		"user_id": "42",
		"plan_id": "3",
		"start_date": "1700000000",
		"end_date": "1702592000",
		"is_active": true,
		"created_at": "1700000000"
	}`, string(data))
}

func TestNewUserResponse_OmitsPassword(t *testing.T) {
	user := &User{
		ID: 7, Email: "user@example.com",
		FirstName: "Ivan", LastName: "Petrov",
		PasswordHash: "hashedpassword", CreatedAt: 1700000000,
	}

	data, err := json.Marshal(NewUserResponse(user))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hashedpassword")
	assert.JSONEq(t, `{
		"id": "7",
		"email": "user@example.com",
		"first_name": "Ivan",
		"last_name": "Petrov",
		"created_at": "1700000000"
	}`, string(data))
}
