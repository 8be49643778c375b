package repository

import (
	"errors"

	"github.com/lib/pq"
)

var (
	ErrNotFound  = errors.New("запись не найдена")
	ErrDuplicate = errors.New("запись с таким значением уже существует")

	ErrInvalidCursor = errors.New("invalid cursor format")
)

const uniqueViolation = pq.ErrorCode("23505")

// uniqueConstraint возвращает имя нарушенного уникального ограничения, если ошибка - 23505
func uniqueConstraint(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return pqErr.Constraint, true
	}
	return "", false
}
