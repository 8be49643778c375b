package model

import "time"

// RefreshToken : запись журнала выданных refresh-токенов.
// IsRevoked меняется только false -> true, строки не удаляются.
type RefreshToken struct {
	Token     string     `db:"token"`
	UserUUID  string     `db:"user_uuid"`
	ExpiresAt time.Time  `db:"expires_at"`
	IsRevoked bool       `db:"is_revoked"`
	CreatedAt time.Time  `db:"created_at"`
	RevokedAt *time.Time `db:"revoked_at"`
}

// Usable : токен можно обменять на новую пару
func (t *RefreshToken) Usable(now time.Time) bool {
	return !t.IsRevoked && now.Before(t.ExpiresAt)
}

// PasswordResetToken : запись журнала токенов сброса пароля.
// Used меняется только false -> true вместе со сменой пароля.
type PasswordResetToken struct {
	Token     string     `db:"token"`
	UserUUID  string     `db:"user_uuid"`
	ExpiresAt time.Time  `db:"expires_at"`
	Used      bool       `db:"used"`
	CreatedAt time.Time  `db:"created_at"`
	UsedAt    *time.Time `db:"used_at"`
}

// TokenClaims : данные пользователя, которые кладутся в access и refresh токены
type TokenClaims struct {
	Subject  string
	Username string
	Email    string
	Role     Role
}

func ClaimsFromUser(u *User) TokenClaims {
	return TokenClaims{
		Subject:  u.UUID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

// TokensPair содержит пару access и refresh токенов
// swagger:model
type TokensPair struct {
	// Access токен (JWT)
	// example: eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9...
	AccessToken string `json:"access_token"`

	// Refresh токен (JWT, подписан отдельным секретом)
	// example: eyJhbGciOiJIUzUxMiIsInR5cCI6IkpXVCJ9...
	RefreshToken string `json:"refresh_token"`
}

// AuthResult : ответ register / login / refresh
type AuthResult struct {
	User PublicUser `json:"user"`
	TokensPair
}

// MessageResult : ответ logout / forgot-password / reset-password
type MessageResult struct {
	Message string `json:"message"`
}
