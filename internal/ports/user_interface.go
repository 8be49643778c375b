package ports

import (
	"auth-service/internal/model"
	"context"

	"github.com/jmoiron/sqlx"
)

// UserRepository : хранилище учетных записей
type UserRepository interface {
	CreateUser(ctx context.Context, exec sqlx.ExtContext, user *model.User) (*model.User, error)
	FindByUUID(ctx context.Context, exec sqlx.ExtContext, uuid string) (*model.User, error)
	FindByUsername(ctx context.Context, exec sqlx.ExtContext, username string) (*model.User, error)
	FindByEmail(ctx context.Context, exec sqlx.ExtContext, email string) (*model.User, error)
	FindByUsernameOrEmail(ctx context.Context, exec sqlx.ExtContext, username, email string) (*model.User, error)
	UpdatePassword(ctx context.Context, exec sqlx.ExtContext, uuid, newPasswordHash string) error
	SoftDelete(ctx context.Context, exec sqlx.ExtContext, uuid string) (bool, error)
	ListUsers(ctx context.Context, exec sqlx.ExtContext, cursor string, limit int) ([]*model.User, string, error)
}

type UserService interface {
	GetUser(ctx context.Context, uuid string) (*model.User, error)
	ListUsers(ctx context.Context, cursor string, limit int) ([]*model.User, string, error)
	DeleteUser(ctx context.Context, uuid string) (*model.MessageResult, error)
}
