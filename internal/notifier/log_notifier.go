package notifier

import (
	"auth-service/internal/logging"
	"context"
	"time"
)

// LogNotifier ничего не отправляет, только пишет ссылку в лог. Для локальной разработки.
type LogNotifier struct {
	linkBase string
	log      logging.Logger
}

func NewLogNotifier(linkBase string, log logging.Logger) *LogNotifier {
	return &LogNotifier{linkBase: linkBase, log: log.With("component", "LogNotifier")}
}

func (n *LogNotifier) SendPasswordReset(ctx context.Context, email, token string, expiresAt time.Time) error {
	n.log.Info(ctx, "ссылка для сброса пароля",
		"email", email,
		"link", ResetLink(n.linkBase, token),
		"expires_at", expiresAt.UTC().Format(time.RFC3339),
	)
	return nil
}
