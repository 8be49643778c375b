package security

import (
	"auth-service/config"
	"auth-service/internal/model"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("невалидный токен")

// Claims : содержимое access и refresh токенов. Subject - UUID пользователя,
// ID (jti) - случайный UUID, чтобы два токена, выданных в одну секунду, различались.
type Claims struct {
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Role     model.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) UserUUID() string {
	return c.Subject
}

func (c *Claims) TokenClaims() model.TokenClaims {
	return model.TokenClaims{
		Subject:  c.Subject,
		Username: c.Username,
		Email:    c.Email,
		Role:     c.Role,
	}
}

// JWTService подписывает и проверяет токены. Access и refresh подписываются
// разными секретами, поэтому один нельзя выдать за другой.
type JWTService struct {
	cfg        *config.JWTConfig
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewJWTService(cfg *config.JWTConfig) (*JWTService, error) {
	accessTTL, err := config.ParseTTL(cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("access_token_ttl: %w", err)
	}
	refreshTTL, err := config.ParseTTL(cfg.RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("refresh_token_ttl: %w", err)
	}

	return &JWTService{
		cfg:        cfg,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// WithClock подменяет источник времени (для тестов)
func (service *JWTService) WithClock(now func() time.Time) *JWTService {
	service.now = now
	return service
}

func (service *JWTService) RefreshTTL() time.Duration {
	return service.refreshTTL
}

// GenerateTokenPair подписывает access токен access-секретом и refresh токен refresh-секретом
func (service *JWTService) GenerateTokenPair(claims model.TokenClaims) (*model.TokensPair, error) {
	accessToken, err := service.sign(claims, service.accessTTL, service.cfg.AccessSecret)
	if err != nil {
		return nil, fmt.Errorf("ошибка подписи access токена: %w", err)
	}

	refreshToken, err := service.sign(claims, service.refreshTTL, service.cfg.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("ошибка подписи refresh токена: %w", err)
	}

	return &model.TokensPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func (service *JWTService) sign(tokenClaims model.TokenClaims, ttl time.Duration, secret string) (string, error) {
	now := service.now()
	claims := Claims{
		Username: tokenClaims.Username,
		Email:    tokenClaims.Email,
		Role:     tokenClaims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tokenClaims.Subject,
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    service.cfg.Issuer,
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(secret))
}

func (service *JWTService) ValidateAccessToken(tokenStr string) (*Claims, error) {
	return service.ValidateJWT(tokenStr, []byte(service.cfg.AccessSecret))
}

func (service *JWTService) ValidateRefreshToken(tokenStr string) (*Claims, error) {
	return service.ValidateJWT(tokenStr, []byte(service.cfg.RefreshSecret))
}

// ValidateJWT проверяет подпись, алгоритм, издателя и срок действия токена
func (service *JWTService) ValidateJWT(jwtTokenStr string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	jwtToken, err := jwt.ParseWithClaims(jwtTokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Header["alg"] != jwt.SigningMethodHS512.Alg() {
			return nil, fmt.Errorf("неверный способ подписи токена: %v", token.Header["alg"])
		}
		return secretKey, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(service.cfg.Issuer),
		jwt.WithTimeFunc(service.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !jwtToken.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
