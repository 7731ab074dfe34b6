package intern

import (
	"context"
	"fmt"

	"github.com/judnich/Kickoff/internal/config"
)

// New selects a Pool implementation according to cfg.Backend.
func New(ctx context.Context, cfg *config.InternConfig) (Pool, error) {
	switch cfg.Backend {
	case config.InternBackendFreeCache:
		return NewFreeCachePool(cfg.FreeCache.SizeBytes), nil
	case config.InternBackendRedis:
		return NewRedisPool(ctx, cfg.Redis.URL, cfg.Redis.Password)
	case config.InternBackendMemory, "":
		return NewMemoryPool(), nil
	default:
		return nil, fmt.Errorf("intern: unknown backend %q", cfg.Backend)
	}
}
