package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const defaultLedgerDays = 7

// ParseTTL разбирает длительность в формате time.ParseDuration, дополнительно
// принимая суффикс "d" (дни): "15m", "1h", "7d", "1d12h".
// Число без единиц считается секундами: "604800" - семь дней.
func ParseTTL(value string) (time.Duration, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("пустая длительность")
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		return checkPositive(time.Duration(seconds)*time.Second, value)
	}

	var days time.Duration
	if idx := strings.Index(value, "d"); idx > 0 {
		n, err := strconv.Atoi(value[:idx])
		if err != nil {
			return 0, fmt.Errorf("неверная длительность %q: %w", value, err)
		}
		days = time.Duration(n) * 24 * time.Hour
		value = value[idx+1:]
		if value == "" {
			return checkPositive(days, value)
		}
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("неверная длительность %q: %w", value, err)
	}

	return checkPositive(days+d, value)
}

func checkPositive(d time.Duration, value string) (time.Duration, error) {
	if d <= 0 {
		return 0, fmt.Errorf("длительность должна быть положительной: %q", value)
	}
	return d, nil
}

// LedgerDays возвращает срок жизни записи refresh-токена в днях.
// Берется числовой префикс строки TTL ("7d" -> 7, "15m" -> 15, "30" -> 30);
// если префикса нет или он равен нулю, используется 7.
// Срок записи в журнале не обязан совпадать со сроком в подписи токена:
// при ротации проверяются оба.
func LedgerDays(ttl string) int {
	ttl = strings.TrimSpace(ttl)
	end := 0
	for end < len(ttl) && ttl[end] >= '0' && ttl[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(ttl[:end])
	if err != nil || n == 0 {
		return defaultLedgerDays
	}
	return n
}
