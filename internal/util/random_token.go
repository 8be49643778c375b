package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateRandomToken : byteLength случайных байт из crypto/rand в hex (2 символа на байт)
func GenerateRandomToken(byteLength int) (string, error) {
	bytes := make([]byte, byteLength)

	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("[util] ошибка генерации токена: %w", err)
	}

	return hex.EncodeToString(bytes), nil
}
