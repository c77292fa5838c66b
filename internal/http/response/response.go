// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков: ошибок, ошибок валидации
// в формате «поле → список сообщений» и ошибок авторизации.
package response

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator"
)

// ErrorResponse — тело ответа с одиночной ошибкой.
type ErrorResponse struct {
	Error string `json:"error" example:"Plan with id '42' does not exists."`
}

// AuthErrorResponse — тело ответа на отказ авторизации.
type AuthErrorResponse struct {
	Msg string `json:"msg" example:"invalid or expired token"`
}

// ValidationResponse — тело ответа на ошибку валидации:
// для каждого поля список сообщений.
type ValidationResponse struct {
	Errors map[string][]string `json:"errors"`
}

// Error возвращает ErrorResponse с переданным сообщением.
func Error(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}

// AuthError возвращает AuthErrorResponse с переданным сообщением.
func AuthError(msg string) AuthErrorResponse {
	return AuthErrorResponse{Msg: msg}
}

// FieldError формирует ValidationResponse с одним сообщением для одного поля.
// Используется для конфликтов уникальности (занятая почта, имя плана).
func FieldError(field, msg string) ValidationResponse {
	return ValidationResponse{Errors: map[string][]string{field: {msg}}}
}

// ValidationError формирует ValidationResponse на основе ошибок валидатора.
func ValidationError(errs validator.ValidationErrors) ValidationResponse {
	result := make(map[string][]string, len(errs))
	for _, err := range errs {
		var msg string
		switch err.ActualTag() {
		case "required":
			msg = "is a required field"
		case "email":
			msg = "must be a valid email address"
		case "min":
			msg = fmt.Sprintf("must be at least %s characters long", err.Param())
		case "gte":
			msg = fmt.Sprintf("must be greater than or equal to %s", err.Param())
		default:
			msg = "is not valid"
		}
		result[err.Field()] = append(result[err.Field()], msg)
	}
	return ValidationResponse{Errors: result}
}

// NewValidator создает валидатор, использующий json-имена полей
// в сообщениях об ошибках.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}
