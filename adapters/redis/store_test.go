package redis

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func init() {
	// 將日誌輸出重定向到io.Discard
	log.SetOutput(io.Discard)
}

func setupTest(t *testing.T) (*redis.Client, redismock.ClientMock, func()) {
	db, mock := redismock.NewClientMock()
	return db, mock, func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	}
}

func TestStore_Load(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(mock redismock.ClientMock)
		session  string
		expected map[string]string
		wantErr  bool
	}{
		{
			name: "success",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectHGetAll("test:session1").SetVal(map[string]string{
					"user_id": "42",
				})
			},
			session: "session1",
			expected: map[string]string{
				"user_id": "42",
			},
		},
		{
			name: "empty_session",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectHGetAll("test:empty").SetVal(map[string]string{})
			},
			session:  "empty",
			expected: map[string]string{},
		},
		{
			name: "redis_error",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectHGetAll("test:session1").
					SetErr(errors.New("redis connection error"))
			},
			session:  "session1",
			wantErr:  true,
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 準備測試環境
			client, mock, cleanup := setupTest(t)
			defer cleanup()

			tt.setup(mock)

			store := NewStore(client, WithStorePrefix("test:"))

			// 執行測試
			got, err := store.Load(context.Background(), tt.session)

			// 驗證結果
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestStore_Save(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock redismock.ClientMock)
		session string
		data    map[string]string
		ttl     time.Duration
		wantErr bool
	}{
		{
			name: "success",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectEvalSha(
					saveScript.Hash(),
					[]string{"test:session1"},
					[]interface{}{"3600", "user_id", "42"},
				).SetVal(1)
			},
			session: "session1",
			data: map[string]string{
				"user_id": "42",
			},
			ttl: time.Hour,
		},
		{
			name: "empty_data",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectEvalSha(
					saveScript.Hash(),
					[]string{"test:session1"},
					[]interface{}{"3600"},
				).SetVal(1)
			},
			session: "session1",
			data:    map[string]string{},
			ttl:     time.Hour,
		},
		{
			name: "redis_error",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectEvalSha(
					saveScript.Hash(),
					[]string{"test:session1"},
					[]interface{}{"3600", "user_id", "42"},
				).SetErr(redis.ErrClosed)
			},
			session: "session1",
			data: map[string]string{
				"user_id": "42",
			},
			ttl:     time.Hour,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 準備測試環境
			client, mock, cleanup := setupTest(t)
			defer cleanup()

			tt.setup(mock)

			store := NewStore(client, WithStorePrefix("test:"))

			// 執行測試
			err := store.Save(context.Background(), tt.session, tt.data, tt.ttl)

			// 驗證結果
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestStore_Delete(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(mock redismock.ClientMock)
		session string
		wantErr bool
	}{
		{
			name: "success",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectDel("test:session1").SetVal(1)
			},
			session: "session1",
		},
		{
			name: "redis_error",
			setup: func(mock redismock.ClientMock) {
				mock.ExpectDel("test:session1").SetErr(redis.ErrClosed)
			},
			session: "session1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 準備測試環境
			client, mock, cleanup := setupTest(t)
			defer cleanup()

			tt.setup(mock)

			store := NewStore(client, WithStorePrefix("test:"))

			// 執行測試
			err := store.Delete(context.Background(), tt.session)

			// 驗證結果
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
