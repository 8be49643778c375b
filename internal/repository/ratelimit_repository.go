package repository

import (
	"auth-service/config"
	"auth-service/internal/logging"
	"auth-service/internal/util"
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitRepository : счетчики запросов в фиксированном окне, по ключу на клиента
type RateLimitRepository struct {
	client *config.RedisClient
	limit  int64
	window time.Duration
	log    logging.Logger
}

func NewRateLimitRepository(rdb *config.RedisClient, limit int, window time.Duration, log logging.Logger) *RateLimitRepository {
	return &RateLimitRepository{
		client: rdb,
		limit:  int64(limit),
		window: window,
		log:    log.With("component", "RateLimitRepo"),
	}
}

// Allow увеличивает счетчик клиента и сообщает, укладывается ли запрос в лимит.
// Для отклоненного запроса возвращает, через сколько откроется новое окно.
func (r *RateLimitRepository) Allow(ctx context.Context, clientKey string) (bool, time.Duration, error) {
	key := r.key(clientKey)

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := r.client.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return false, 0, util.LogError(ctx, r.log, "ошибка обновления счетчика в Redis", err)
	}

	// первый запрос в окне или ключ остался без срока жизни
	if incr.Val() == 1 || ttl.Val() < 0 {
		if err := r.client.Client.Expire(ctx, key, r.window).Err(); err != nil {
			return false, 0, util.LogError(ctx, r.log, "ошибка установки срока жизни счетчика", err)
		}
		return incr.Val() <= r.limit, r.window, nil
	}

	if incr.Val() > r.limit {
		return false, ttl.Val(), nil
	}

	return true, 0, nil
}

func (r *RateLimitRepository) key(clientKey string) string {
	return fmt.Sprintf("ratelimit:auth:%s", clientKey)
}
