//go:generate mockgen -package=session -destination=mock.go -source=interfaces.go

package session

import (
	"context"
	"time"
)

// IStore 是 session 資料的儲存層
// Save 時帶上 TTL，過期的 session 由儲存層自行回收
type IStore interface {
	Load(ctx context.Context, id string) (map[string]string, error)
	Save(ctx context.Context, id string, data map[string]string, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

// ISession 代表單一請求綁定的使用者會話
type ISession interface {
	Load() error
	Get(key string) string
	Set(key, value string)
	Delete(key string)
	// Destroy 清空資料並將 session 從儲存層移除，用於登出
	Destroy() error
	Save(ttl time.Duration) error
}
