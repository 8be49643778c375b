// Package logging задает минимальный интерфейс структурного логгера,
// который передается в сервисы явно.
package logging

import "context"

// Logger : логгер с контекстом, аргументы - пары ключ/значение:
//
//	log.Info(ctx, "сервер запущен", "addr", addr)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) Logger
}
