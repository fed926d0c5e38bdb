package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/Evergreenies/bidding-application/models"
)

// ResetClaims 是重設密碼 token 的內容，只攜帶使用者 ID 與標準時效欄位
type ResetClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// IssueResetToken 簽發一個有時效的重設密碼 token
func (s *Service) IssueResetToken(user *models.User) (string, error) {
	const op = "auth.IssueResetToken"

	now := time.Now()
	claims := ResetClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.options.resetTokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.options.secret)
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to sign token, err=%w", op, err)
	}
	return token, nil
}

// VerifyResetToken 驗證重設密碼 token 並回傳對應的使用者
// token 過期、簽章不符或解析失敗時一律回傳 nil，不會讓錯誤跨出這個邊界
func (s *Service) VerifyResetToken(ctx context.Context, tokenString string) *models.User {
	const op = "auth.VerifyResetToken"

	var claims ResetClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.options.secret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	var user models.User
	if result := s.db.WithContext(ctx).First(&user, claims.UserID); result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			// 非預期的儲存層錯誤也不外洩，只留下 log 並視同無效 token
			slog.Error("Fail to find user for reset token", slog.String("op", op), slog.Any("error", result.Error))
		}
		return nil
	}
	return &user
}
