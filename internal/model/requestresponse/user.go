package requestresponse

import "auth-service/internal/model"

// ErrorResponse : стандартная структура ошибки
type ErrorResponse struct {
	Error   string `json:"error" example:"Unauthorized"`
	Message string `json:"message" example:"Invalid refresh token"`
	Code    int    `json:"code" example:"401"`
}

// UserResponse : пользователь без хэша пароля
type UserResponse struct {
	Data *model.User `json:"data"`
}

// ListUsersResponse : страница пользователей
type ListUsersResponse struct {
	Data struct {
		Users      []*model.User `json:"users"`
		NextCursor string        `json:"next_cursor,omitempty"`
	} `json:"data"`
}
