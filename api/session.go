package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Evergreenies/bidding-application/adapters/session"
)

const (
	SESSION_KEY_USER_ID = "user_id"
)

// SessionMiddleware 建立 session middleware，資料存在注入的儲存層
func (impl *ServerImpl) SessionMiddleware() gin.HandlerFunc {
	return session.GinMiddleware(
		impl.sessionStore,
		session.WithSessionKeyForCookie(impl.config.Session.KeyForCookie),
		session.WithCookieMaxAge(impl.config.Session.CookieMaxAge),
		session.WithCookieSecure(impl.config.Session.CookieSecure),
	)
}

// LoginRequired 是登入檢查，session 中沒有綁定使用者時直接以 401 結束請求
func (impl *ServerImpl) LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentUserID(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "login required"})
			return
		}
		c.Next()
	}
}

// currentUserID 回傳目前 session 綁定的使用者 ID
func currentUserID(c *gin.Context) (uint, bool) {
	sess, err := session.GetSession(c)
	if err != nil {
		return 0, false
	}
	raw := sess.Get(SESSION_KEY_USER_ID)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

// bindSessionUser 將使用者 ID 寫進 session，代表登入成功
func bindSessionUser(c *gin.Context, userID uint) error {
	sess, err := session.GetSession(c)
	if err != nil {
		return err
	}
	sess.Set(SESSION_KEY_USER_ID, strconv.FormatUint(uint64(userID), 10))
	return nil
}

// clearSessionUser 清掉 session，代表登出
func clearSessionUser(c *gin.Context) error {
	sess, err := session.GetSession(c)
	if err != nil {
		return err
	}
	return sess.Destroy()
}
