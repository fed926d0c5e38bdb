package session

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	DefaultSessionKeyForContext = "bid-default-session-context"
)

var ErrSessionNotFound = fmt.Errorf("session not found")

// MiddlewareOptions 包含 session middleware 的設定選項
type MiddlewareOptions struct {
	sessionKeyForCookie  string        // session 在 cookie 中的 key
	sessionKeyForContext string        // session 在 context 中的 key
	cookieMaxAge         time.Duration // cookie 與 session 的過期時間
	cookiePath           string        // cookie 的路徑
	cookieSecure         bool          // 是否只在 HTTPS 連線中傳送 cookie
}

// MiddlewareOption 定義設定選項的函數類型
type MiddlewareOption func(*MiddlewareOptions)

// WithSessionKeyForCookie 設定 session 在 cookie 中的 key
func WithSessionKeyForCookie(key string) MiddlewareOption {
	return func(options *MiddlewareOptions) {
		options.sessionKeyForCookie = key
	}
}

// WithSessionKeyForContext 設定 session 在 context 中的 key
func WithSessionKeyForContext(key string) MiddlewareOption {
	return func(options *MiddlewareOptions) {
		options.sessionKeyForContext = key
	}
}

// WithCookieMaxAge 設定 cookie 與 session 的過期時間
func WithCookieMaxAge(maxAge time.Duration) MiddlewareOption {
	return func(options *MiddlewareOptions) {
		options.cookieMaxAge = maxAge
	}
}

// WithCookieSecure 設定是否只在 HTTPS 連線中傳送 cookie
func WithCookieSecure(secure bool) MiddlewareOption {
	return func(options *MiddlewareOptions) {
		options.cookieSecure = secure
	}
}

// GinMiddleware 建立 gin 的 session middleware
// handler 結束後才把 session 寫回儲存層，同時刷新 cookie 的效期
func GinMiddleware(store IStore, opts ...MiddlewareOption) gin.HandlerFunc {
	// 設定預設選項
	options := MiddlewareOptions{
		sessionKeyForCookie:  "session",
		sessionKeyForContext: DefaultSessionKeyForContext,
		cookieMaxAge:         24 * time.Hour,
		cookiePath:           "/",
		cookieSecure:         true,
	}

	// 應用自定義選項
	for _, opt := range opts {
		opt(&options)
	}

	return func(c *gin.Context) {
		// 從 cookie 中取得 session id
		sessionID, err := c.Cookie(options.sessionKeyForCookie)
		if err != nil || sessionID == "" {
			sessionID = uuid.New().String()
		}

		// 建立新的 session 並加入 context
		sess := NewSession(c.Request.Context(), sessionID, store)
		c.Set(options.sessionKeyForContext, sess)

		c.Next()

		// 寫回儲存層並更新 cookie
		if err := sess.Save(options.cookieMaxAge); err != nil {
			_ = c.Error(err)
		}
		c.SetCookie(
			options.sessionKeyForCookie,
			sessionID,
			int(options.cookieMaxAge/time.Second),
			options.cookiePath,
			"",
			options.cookieSecure,
			true,
		)
	}
}

// GetSession 從 context 中取得 session
func GetSession(ctx context.Context, opts ...MiddlewareOption) (ISession, error) {
	const op = "session.GetSession"
	// 設定預設選項
	options := MiddlewareOptions{
		sessionKeyForContext: DefaultSessionKeyForContext,
	}
	// 應用自定義選項
	for _, opt := range opts {
		opt(&options)
	}
	// 從 context 中取得 session
	v := ctx.Value(options.sessionKeyForContext)
	if v == nil {
		return nil, ErrSessionNotFound
	}
	sess, ok := v.(ISession)
	if !ok {
		return nil, fmt.Errorf("%s: invalid session type in context", op)
	}
	// 載入 session 資料
	if err := sess.Load(); err != nil {
		return nil, fmt.Errorf("%s: failed to load session: %w", op, err)
	}

	return sess, nil
}
