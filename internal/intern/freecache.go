package intern

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	fc "github.com/coocood/freecache"
)

// FreeCachePool keys entries by the 64-bit xxhash of the string's content,
// so large tag/command working sets evict under a fixed memory budget
// instead of growing the table without bound.
type FreeCachePool struct {
	cache *fc.Cache
}

// NewFreeCachePool allocates a freecache instance of sizeBytes.
func NewFreeCachePool(sizeBytes int) *FreeCachePool {
	return &FreeCachePool{cache: fc.NewCache(sizeBytes)}
}

func (p *FreeCachePool) Intern(s string) (string, error) {
	key := []byte(strconv.FormatUint(xxhash.Sum64String(s), 16))
	if existing, err := p.cache.Get(key); err == nil {
		return string(existing), nil
	}
	if err := p.cache.Set(key, []byte(s), 0); err != nil {
		return "", fmt.Errorf("intern: freecache set failed: %w", err)
	}
	return s, nil
}
