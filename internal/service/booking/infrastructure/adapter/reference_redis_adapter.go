// internal/service/booking/infrastructure/adapter/reference_redis_adapter.go
package adapter

import (
	"context"
	"fmt"
	"time"

	"voyago/internal/pkg/redis"
)

// ReferenceRedisAdapter 用 Redis 的按日计数器生成预订参考号，
// 形如 BK20260831000042。计数器 key 保留 48 小时后过期。
type ReferenceRedisAdapter struct {
	client *redis.Client
}

func NewReferenceRedisAdapter(client *redis.Client) *ReferenceRedisAdapter {
	return &ReferenceRedisAdapter{client: client}
}

func (a *ReferenceRedisAdapter) Next(ctx context.Context) (string, error) {
	day := time.Now().Format("20060102")
	seq, err := a.client.IncrWithTTL(ctx, "voyago:booking:seq:"+day, 48*time.Hour)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("BK%s%06d", day, seq), nil
}
