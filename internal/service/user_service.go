package service

import (
	"auth-service/internal/logging"
	"auth-service/internal/model"
	"auth-service/internal/ports"
	"auth-service/internal/repository"
	"auth-service/internal/security"
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const (
	MsgUserNotFound = "User not found"
	MsgUserDeleted  = "User deleted successfully"
	MsgForbidden    = "Forbidden resource"
	MsgBadCursor    = "Invalid cursor"

	defaultListLimit = 50
	maxListLimit     = 200
)

type UserService struct {
	db             ports.Transactor
	userRepository ports.UserRepository
	jwtRepository  ports.JWTRepositoryInterface
	log            logging.Logger
}

func NewUserService(
	db ports.Transactor,
	userRepository ports.UserRepository,
	jwtRepository ports.JWTRepositoryInterface,
	log logging.Logger,
) *UserService {
	return &UserService{
		db:             db,
		userRepository: userRepository,
		jwtRepository:  jwtRepository,
		log:            log.With("component", "UserService"),
	}
}

// GetUser : USER видит только себя, ADMIN и SUPER_ADMIN любого пользователя
func (s *UserService) GetUser(ctx context.Context, uuid string) (*model.User, error) {
	claims, err := security.GetClaimsFromContext(ctx)
	if err != nil {
		return nil, NewError(ErrUnauthorized, "Unauthorized")
	}

	if claims.Role == model.RoleUser && claims.UserUUID() != uuid {
		return nil, NewError(ErrForbidden, MsgForbidden)
	}

	user, err := s.userRepository.FindByUUID(ctx, s.db.Executor(), uuid)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, NewError(ErrNotFound, MsgUserNotFound)
		}
		return nil, fmt.Errorf("[UserService] не удалось получить пользователя: %w", err)
	}

	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, cursor string, limit int) ([]*model.User, string, error) {
	switch {
	case limit <= 0:
		limit = defaultListLimit
	case limit > maxListLimit:
		limit = maxListLimit
	}

	users, nextCursor, err := s.userRepository.ListUsers(ctx, s.db.Executor(), cursor, limit)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCursor) {
			return nil, "", NewError(ErrValidationFailed, MsgBadCursor)
		}
		return nil, "", err
	}

	return users, nextCursor, nil
}

// DeleteUser помечает пользователя удаленным и отзывает его refresh-токены.
// Записи журналов остаются для аудита.
func (s *UserService) DeleteUser(ctx context.Context, uuid string) (*model.MessageResult, error) {
	err := s.db.WithinTransaction(ctx, func(exec sqlx.ExtContext) error {
		deleted, err := s.userRepository.SoftDelete(ctx, exec, uuid)
		if err != nil {
			return fmt.Errorf("[UserService] не удалось удалить пользователя: %w", err)
		}
		if !deleted {
			return NewError(ErrNotFound, MsgUserNotFound)
		}

		count, err := s.jwtRepository.RevokeAllForUser(ctx, exec, uuid)
		if err != nil {
			return fmt.Errorf("[UserService] не удалось отозвать токены: %w", err)
		}

		s.log.Info(ctx, "пользователь удален", "user_uuid", uuid, "revoked_tokens", count)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &model.MessageResult{Message: MsgUserDeleted}, nil
}
