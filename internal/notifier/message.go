package notifier

import (
	"net/url"
	"time"
)

const resetSubject = "Password reset"

// PasswordResetMessage : письмо со ссылкой на сброс пароля
type PasswordResetMessage struct {
	To        string    `json:"to"`
	Subject   string    `json:"subject"`
	Link      string    `json:"link"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// ResetLink добавляет токен к базовой ссылке как параметр token.
// Без базовой ссылки возвращается сам токен.
func ResetLink(base, token string) string {
	if base == "" {
		return token
	}

	u, err := url.Parse(base)
	if err != nil {
		return base + "?token=" + url.QueryEscape(token)
	}

	query := u.Query()
	query.Set("token", token)
	u.RawQuery = query.Encode()
	return u.String()
}

func newPasswordResetMessage(linkBase, email, token string, expiresAt, now time.Time) PasswordResetMessage {
	return PasswordResetMessage{
		To:        email,
		Subject:   resetSubject,
		Link:      ResetLink(linkBase, token),
		Token:     token,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: now.UTC(),
	}
}
