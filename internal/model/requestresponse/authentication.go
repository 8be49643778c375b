package requestresponse

import (
	"auth-service/internal/model"
	"fmt"
	"net/mail"
	"strings"
)

const (
	minUsernameLength = 3
	minPasswordLength = 6
	// bcrypt учитывает только первые 72 байта
	maxPasswordBytes = 72
)

// ValidationError : ошибка разбора тела запроса, отдается клиенту как 400
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// RegisterRequest : тело запроса регистрации
type RegisterRequest struct {
	Email    string `json:"email" example:"user@example.com"`
	Username string `json:"username" example:"johndoe"`
	Password string `json:"password" example:"StrongPass123!"`
	Role     string `json:"role,omitempty" example:"USER"`
}

// Parse проверяет поля и возвращает model.RegisterInput
func (r RegisterRequest) Parse() (model.RegisterInput, error) {
	email := strings.TrimSpace(r.Email)
	if email == "" {
		return model.RegisterInput{}, invalid("email", "обязательное поле")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return model.RegisterInput{}, invalid("email", "некорректный адрес")
	}

	username := strings.TrimSpace(r.Username)
	if len([]rune(username)) < minUsernameLength {
		return model.RegisterInput{}, invalid("username", "минимум %d символа", minUsernameLength)
	}

	if err := checkPassword("password", r.Password); err != nil {
		return model.RegisterInput{}, err
	}

	role := model.RoleUser
	if r.Role != "" {
		role = model.Role(r.Role)
		if !role.Valid() {
			return model.RegisterInput{}, invalid("role", "допустимые значения: USER, ADMIN, SUPER_ADMIN")
		}
	}

	return model.RegisterInput{
		Email:    email,
		Username: username,
		Password: r.Password,
		Role:     role,
	}, nil
}

// LoginRequest : тело запроса на аутентификацию
type LoginRequest struct {
	Username string `json:"username" example:"johndoe"`
	Password string `json:"password" example:"StrongPass123!"`
}

func (r LoginRequest) Validate() error {
	if strings.TrimSpace(r.Username) == "" {
		return invalid("username", "обязательное поле")
	}
	if r.Password == "" {
		return invalid("password", "обязательное поле")
	}
	return nil
}

// RefreshTokenRequest : запрос на обновление пары токенов и на logout
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" example:"eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9..."`
}

func (r RefreshTokenRequest) Validate() error {
	if strings.TrimSpace(r.RefreshToken) == "" {
		return invalid("refresh_token", "обязательное поле")
	}
	return nil
}

// ForgotPasswordRequest : запрос на отправку токена сброса пароля
type ForgotPasswordRequest struct {
	Email string `json:"email" example:"user@example.com"`
}

func (r ForgotPasswordRequest) Validate() error {
	if _, err := mail.ParseAddress(strings.TrimSpace(r.Email)); err != nil {
		return invalid("email", "некорректный адрес")
	}
	return nil
}

// ResetPasswordRequest : сброс пароля по токену из письма
type ResetPasswordRequest struct {
	Token       string `json:"token" example:"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"`
	NewPassword string `json:"newPassword" example:"NewSecurePass123!"`
}

func (r ResetPasswordRequest) Validate() error {
	if strings.TrimSpace(r.Token) == "" {
		return invalid("token", "обязательное поле")
	}
	return checkPassword("newPassword", r.NewPassword)
}

func checkPassword(field, password string) error {
	if len([]rune(password)) < minPasswordLength {
		return invalid(field, "минимум %d символов", minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return invalid(field, "максимум %d байта", maxPasswordBytes)
	}
	return nil
}

// ProfileResponse : данные текущего пользователя из access токена
type ProfileResponse struct {
	ID       string     `json:"id" example:"b6a1e1c4-4b1d-4f1e-8b29-1234567890ab"`
	Username string     `json:"username" example:"johndoe"`
	Email    string     `json:"email" example:"user@example.com"`
	Role     model.Role `json:"role" example:"USER"`
}
