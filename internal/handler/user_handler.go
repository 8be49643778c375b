package handler

import (
	"auth-service/internal/logging"
	"auth-service/internal/model/requestresponse"
	"auth-service/internal/ports"
	"auth-service/internal/util"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	ports.UserService
	log logging.Logger
}

func NewUserHandler(userService ports.UserService, log logging.Logger) *UserHandler {
	return &UserHandler{userService, log.With("component", "UserHandler")}
}

// GetUser godoc
// @Summary Получение пользователя
// @Description USER может получить только себя, ADMIN и SUPER_ADMIN любого пользователя
// @Tags users
// @Produce json
// @Param id path string true "UUID пользователя"
// @Success 200 {object} requestresponse.UserResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse "User not found"
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserService.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, requestresponse.UserResponse{Data: user})
}

// ListUsers godoc
// @Summary Список пользователей
// @Description Cursor-based пагинация. Только ADMIN и SUPER_ADMIN.
// @Tags users
// @Produce json
// @Param cursor query string false "Курсор для пагинации"
// @Param limit query int false "Размер страницы" default(50) minimum(1) maximum(200)
// @Success 200 {object} requestresponse.ListUsersResponse
// @Failure 400 {object} requestresponse.ErrorResponse
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Security BearerAuth
// @Router /users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	cursor := r.URL.Query().Get("cursor")

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil || l <= 0 {
			util.HandleError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = l
	}

	users, nextCursor, err := h.UserService.ListUsers(r.Context(), cursor, limit)
	if err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}

	resp := requestresponse.ListUsersResponse{}
	resp.Data.Users = users
	resp.Data.NextCursor = nextCursor

	util.WriteJSON(w, http.StatusOK, resp)
}

// DeleteUser godoc
// @Summary Удаление пользователя
// @Description Помечает пользователя удаленным и отзывает его refresh токены. Только SUPER_ADMIN.
// @Tags users
// @Produce json
// @Param id path string true "UUID пользователя"
// @Success 200 {object} model.MessageResult
// @Failure 401 {object} requestresponse.ErrorResponse
// @Failure 403 {object} requestresponse.ErrorResponse
// @Failure 404 {object} requestresponse.ErrorResponse "User not found"
// @Security BearerAuth
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	result, err := h.UserService.DeleteUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(r.Context(), w, h.log, err)
		return
	}

	util.WriteJSON(w, http.StatusOK, result)
}
