package settings

import (
	"context"
	"sync"

	"app/internal/repository"
)

// サイト設定（サイト名・テーマカラー・連絡先など）のプロセス常駐キャッシュ。
// 起動時に一度読み、以後は読み取り専用。更新はRefreshの明示呼び出しのみ。
type Cache struct {
	repo repository.SettingRepository

	mu     sync.RWMutex
	values map[string]string
}

func NewCache(repo repository.SettingRepository) *Cache {
	return &Cache{
		repo:   repo,
		values: map[string]string{},
	}
}

// RefreshはDBから全設定を読み直す。
func (c *Cache) Refresh(ctx context.Context) error {
	rows, err := c.repo.ListAll(ctx)
	if err != nil {
		return err
	}

	next := make(map[string]string, len(rows))
	for _, s := range rows {
		next[s.SettingKey] = s.SettingValue
	}

	c.mu.Lock()
	c.values = next
	c.mu.Unlock()
	return nil
}

func (c *Cache) Get(key string, def string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if v, ok := c.values[key]; ok {
		return v
	}
	return def
}

// Allは全設定のコピーを返す（/settingsの応答用）。
func (c *Cache) All() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]string, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}
