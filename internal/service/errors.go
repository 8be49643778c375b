package service

import "errors"

// Виды ошибок сервиса. Проверяются через errors.Is, клиенту отдается Error.Message.
var (
	ErrInvalidCredentials = errors.New("неверные учетные данные")
	ErrConflict           = errors.New("конфликт уникальности")
	ErrUnauthorized       = errors.New("не авторизован")
	ErrValidationFailed   = errors.New("ошибка валидации")
	ErrNotFound           = errors.New("не найдено")
	ErrForbidden          = errors.New("доступ запрещен")
)

// Error : ошибка с публичным сообщением. Причина (cause) только для логов.
type Error struct {
	kind    error
	message string
	cause   error
}

func NewError(kind error, message string) *Error {
	return &Error{kind: kind, message: message}
}

func wrapError(kind error, message string, cause error) *Error {
	return &Error{kind: kind, message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.kind.Error() + ": " + e.message + ": " + e.cause.Error()
	}
	return e.kind.Error() + ": " + e.message
}

// Message : текст, который можно показать клиенту
func (e *Error) Message() string {
	return e.message
}

func (e *Error) Is(target error) bool {
	return target == e.kind
}

func (e *Error) Unwrap() error {
	return e.cause
}
