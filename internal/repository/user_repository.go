package repository

import (
	"auth-service/internal/logging"
	"auth-service/internal/model"
	"auth-service/internal/util"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const (
	userColumns     = `uuid, username, email, password_hash, role, created_at, updated_at, deleted_at`
	cursorSeparator = "|"
)

type UserRepository struct {
	log logging.Logger
}

func NewUserRepository(log logging.Logger) *UserRepository {
	return &UserRepository{log: log.With("component", "UserRepo")}
}

// CreateUser : сохраняет нового пользователя
func (r *UserRepository) CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error) {
	query := `
	INSERT INTO users (uuid, username, email, password_hash, role)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING ` + userColumns

	createdUser := &model.User{}
	err := sqlx.GetContext(ctx, exec, createdUser, query, user.UUID, user.Username, user.Email, user.PasswordHash, user.Role)
	if err != nil {
		if constraint, ok := uniqueConstraint(err); ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicate, constraint)
		}
		return nil, util.LogError(ctx, r.log, "[UserRepo] ошибка вставки данных в БД", err)
	}

	return createdUser, nil
}

// FindByUUID : ищет не удаленного пользователя по UUID
func (r *UserRepository) FindByUUID(ctx context.Context, exec sqlx.ExtContext, uuid string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE uuid = $1 AND deleted_at IS NULL`
	return r.getOne(ctx, exec, query, uuid)
}

// FindByUsername : ищет не удаленного пользователя по username
func (r *UserRepository) FindByUsername(ctx context.Context, exec sqlx.ExtContext, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 AND deleted_at IS NULL`
	return r.getOne(ctx, exec, query, username)
}

// FindByEmail : ищет не удаленного пользователя по email
func (r *UserRepository) FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 AND deleted_at IS NULL`
	return r.getOne(ctx, exec, query, email)
}

// FindByUsernameOrEmail : любой пользователь (в том числе удаленный), занявший username или email
func (r *UserRepository) FindByUsernameOrEmail(ctx context.Context, exec sqlx.ExtContext, username, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 OR username = $2 LIMIT 1`
	return r.getOne(ctx, exec, query, email, username)
}

func (r *UserRepository) getOne(ctx context.Context, exec sqlx.ExtContext, query string, args ...any) (*model.User, error) {
	var user model.User
	err := sqlx.GetContext(ctx, exec, &user, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, util.LogError(ctx, r.log, "[UserRepo] не удалось найти пользователя в БД", err)
	}
	return &user, nil
}

// UpdatePassword : меняет хэш пароля пользователя
func (r *UserRepository) UpdatePassword(ctx context.Context, exec sqlx.ExtContext, uuid, newPasswordHash string) error {
	query := `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE uuid = $1 AND deleted_at IS NULL`

	result, err := exec.ExecContext(ctx, query, uuid, newPasswordHash)
	if err != nil {
		return util.LogError(ctx, r.log, "[UserRepo] не удалось обновить пароль", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return util.LogError(ctx, r.log, "[UserRepo] не удалось проверить, обновлен ли пароль", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// SoftDelete : помечает пользователя удаленным; строки журналов токенов остаются
func (r *UserRepository) SoftDelete(ctx context.Context, exec sqlx.ExtContext, uuid string) (bool, error) {
	query := `UPDATE users SET deleted_at = NOW(), updated_at = NOW() WHERE uuid = $1 AND deleted_at IS NULL`

	result, err := exec.ExecContext(ctx, query, uuid)
	if err != nil {
		return false, util.LogError(ctx, r.log, "[UserRepo] не удалось удалить пользователя", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, util.LogError(ctx, r.log, "[UserRepo] не удалось проверить удаление пользователя", err)
	}

	return rowsAffected == 1, nil
}

// ListUsers : вывод списка пользователей с cursor-based пагинацией.
// Курсор "created_at|uuid" последней строки страницы: одинаковый created_at
// у соседних пользователей не приводит к пропуску строк.
func (r *UserRepository) ListUsers(ctx context.Context, exec sqlx.ExtContext, cursor string, limit int) ([]*model.User, string, error) {
	query := `
        SELECT ` + userColumns + `
        FROM users
        WHERE (created_at, uuid) > ($1, $2) AND deleted_at IS NULL
        ORDER BY created_at ASC, uuid ASC
        LIMIT $3
    `

	cursorTime, cursorUUID, err := decodeUserCursor(cursor)
	if err != nil {
		return nil, "", err
	}

	var users []*model.User
	err = sqlx.SelectContext(ctx, exec, &users, query, cursorTime, cursorUUID, limit+1) // +1 для проверки наличия следующей страницы
	if err != nil {
		return nil, "", util.LogError(ctx, r.log, "[UserRepo] не удалось получить список пользователей", err)
	}

	var nextCursor string
	if len(users) > limit {
		users = users[:limit]
		last := users[len(users)-1]
		nextCursor = encodeUserCursor(last.CreatedAt, last.UUID)
	}

	return users, nextCursor, nil
}

func encodeUserCursor(createdAt time.Time, id string) string {
	return createdAt.UTC().Format(time.RFC3339Nano) + cursorSeparator + id
}

// пустой курсор - начало списка
func decodeUserCursor(cursor string) (time.Time, string, error) {
	if cursor == "" {
		return time.Time{}, uuid.Nil.String(), nil
	}

	ts, id, ok := strings.Cut(cursor, cursorSeparator)
	if !ok {
		return time.Time{}, "", fmt.Errorf("%w: %q", ErrInvalidCursor, cursor)
	}

	createdAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}

	return createdAt, parsed.String(), nil
}
