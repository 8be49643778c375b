package handler

import (
	"auth-service/internal/logging"
	"auth-service/internal/model/requestresponse"
	"auth-service/internal/ports"
	"auth-service/internal/security"
	"auth-service/internal/util"
	"net/http"
)

type AuthenticationHandler struct {
	ports.AuthenticationService
	log logging.Logger
}

func NewAuthenticationHandler(authenticationService ports.AuthenticationService, log logging.Logger) *AuthenticationHandler {
	return &AuthenticationHandler{
		authenticationService,
		log.With("component", "AuthenticationHandler"),
	}
}

// Register godoc
// @Summary Регистрация пользователя
// @Description Создает пользователя и сразу выдает пару access/refresh токенов
// @Tags auth
// @Accept json
// @Produce json
// @Param body body requestresponse.RegisterRequest true "Тело запроса"
// @Success 201 {object} model.AuthResult
// @Failure 400 {object} requestresponse.ErrorResponse "Ошибка валидации"
// @Failure 409 {object} requestresponse.ErrorResponse "Email или username уже заняты"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /auth/register [post]
func (h *AuthenticationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := req.Parse()
	if err != nil {
		writeValidationError(w, err)
		return
	}

	result, err := h.AuthenticationService.Register(r.Context(), input)
	if err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}

	util.WriteJSON(w, http.StatusCreated, result)
}

// Login godoc
// @Summary Аутентификация пользователя
// @Description Проверяет username и пароль, выдает пару токенов
// @Tags auth
// @Accept json
// @Produce json
// @Param body body requestresponse.LoginRequest true "Тело запроса"
// @Success 200 {object} model.AuthResult
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse "Invalid credentials"
// @Failure 500 {object} requestresponse.ErrorResponse
// @Router /auth/login [post]
func (h *AuthenticationHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	ctx := r.Context()
	user, err := h.AuthenticationService.ValidateCredentials(ctx, req.Username, req.Password)
	if err != nil {
		writeServiceError(ctx, w, h.log, err)
		return
	}

	result, err := h.AuthenticationService.Login(ctx, user)
	if err != nil {
		writeServiceError(ctx, w, h.log, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, result)
}

// Refresh godoc
// @Summary Обновление токенов
// @Description Обменивает refresh токен на новую пару. Старый refresh токен отзывается.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body requestresponse.RefreshTokenRequest true "Тело запроса"
// @Success 200 {object} model.AuthResult
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse "Invalid refresh token"
// @Router /auth/refresh [post]
func (h *AuthenticationHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RefreshTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	result, err := h.AuthenticationService.RotateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, result)
}

// Logout godoc
// @Summary Выход
// @Description Отзывает переданный refresh токен. Повторный вызов тоже успешен.
// @Tags auth
// @Accept json
// @Produce json
// @Param body body requestresponse.RefreshTokenRequest true "Тело запроса"
// @Success 200 {object} model.MessageResult
// @Failure 400 {object} requestresponse.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthenticationHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.RefreshTokenRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	result, err := h.AuthenticationService.Logout(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, result)
}

// RevokeAll godoc
// @Summary Выход со всех устройств
// @Description Отзывает все refresh токены текущего пользователя
// @Tags auth
// @Produce json
// @Success 200 {object} model.MessageResult
// @Failure 401 {object} requestresponse.ErrorResponse
// @Security BearerAuth
// @Router /auth/revoke-all [post]
func (h *AuthenticationHandler) RevokeAll(w http.ResponseWriter, r *http.Request) {
	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		util.HandleError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	result, err := h.AuthenticationService.RevokeAllUserTokens(r.Context(), claims.UserUUID())
	if err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, result)
}

// ForgotPassword godoc
// @Summary Запрос сброса пароля
// @Description Ответ одинаков для существующего и несуществующего email
// @Tags auth
// @Accept json
// @Produce json
// @Param body body requestresponse.ForgotPasswordRequest true "Тело запроса"
// @Success 200 {object} model.MessageResult
// @Failure 400 {object} requestresponse.ErrorResponse
// @Router /auth/forgot-password [post]
func (h *AuthenticationHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.ForgotPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	result, err := h.AuthenticationService.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, result)
}

// ResetPassword godoc
// @Summary Сброс пароля
// @Description Меняет пароль по одноразовому токену и отзывает все сессии пользователя
// @Tags auth
// @Accept json
// @Produce json
// @Param body body requestresponse.ResetPasswordRequest true "Тело запроса"
// @Success 200 {object} model.MessageResult
// @Failure 400 {object} requestresponse.ErrorResponse "Invalid or expired reset token"
// @Router /auth/reset-password [post]
func (h *AuthenticationHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req requestresponse.ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	result, err := h.AuthenticationService.ResetPassword(r.Context(), req.Token, req.NewPassword)
	if err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, result)
}

// Profile godoc
// @Summary Профиль текущего пользователя
// @Description Данные пользователя из access токена
// @Tags auth
// @Produce json
// @Success 200 {object} requestresponse.ProfileResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Security BearerAuth
// @Router /auth/profile [get]
func (h *AuthenticationHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims, err := security.GetClaimsFromContext(r.Context())
	if err != nil {
		util.HandleError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.ProfileResponse{
		ID:       claims.UserUUID(),
		Username: claims.Username,
		Email:    claims.Email,
		Role:     claims.Role,
	})
}
