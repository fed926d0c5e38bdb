package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Evergreenies/bidding-application/adapters/session"
)

// Store 實作 session.IStore，以 Redis hash 儲存 session 資料
// 每次 Save 都會刷新整個 hash 的 TTL，過期的 session 由 Redis 自行回收
type Store struct {
	client  *redis.Client // Redis 客戶端連線
	options StoreOptions  // Store 的配置選項
}

// StoreOptions 定義 Store 的配置選項
type StoreOptions struct {
	Prefix string
}

type StoreOption func(*StoreOptions)

// WithStorePrefix 設定 Store 的 key 前綴
func WithStorePrefix(prefix string) StoreOption {
	return func(o *StoreOptions) {
		o.Prefix = prefix
	}
}

// NewStore 建立新的 Store 實例
func NewStore(client *redis.Client, opts ...StoreOption) session.IStore {
	options := &StoreOptions{}
	for _, opt := range opts {
		opt(options)
	}

	return &Store{
		client:  client,
		options: *options,
	}
}

// Load 從 Redis 中載入指定 session 的資料
func (s *Store) Load(ctx context.Context, id string) (map[string]string, error) {
	const op = "redis.Store.Load"
	key := s.options.Prefix + id

	result, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get hash: %w", op, err)
	}

	// Redis returns empty map when key doesn't exist
	return result, nil
}

// saveScript 原子性地刪除舊資料、寫入新欄位並設定 TTL
// ARGV[1] 是秒數，其後是攤平的 key-value 對
var saveScript = redis.NewScript(`
local key = KEYS[1]
local ttl = tonumber(ARGV[1])
redis.call('DEL', key)
if #ARGV > 1 then
    redis.call('HSET', key, unpack(ARGV, 2))
    if ttl > 0 then
        redis.call('EXPIRE', key, ttl)
    end
end
return 1
`)

// Save 將 session 資料寫入 Redis 並刷新 TTL
func (s *Store) Save(ctx context.Context, id string, data map[string]string, ttl time.Duration) error {
	const op = "redis.Store.Save"
	key := s.options.Prefix + id
	// 準備參數
	args := make([]any, 0, len(data)*2+1)
	args = append(args, strconv.FormatInt(int64(ttl/time.Second), 10))
	for k, v := range data {
		args = append(args, k, v)
	}
	// 執行 Lua 腳本
	err := saveScript.Run(ctx, s.client, []string{key}, args...).Err()
	if err != nil {
		return fmt.Errorf("%s: failed to execute save script: %w", op, err)
	}

	return nil
}

// Delete 將 session 從 Redis 中移除
func (s *Store) Delete(ctx context.Context, id string) error {
	const op = "redis.Store.Delete"
	key := s.options.Prefix + id

	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: failed to delete key: %w", op, err)
	}
	return nil
}
