package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Evergreenies/bidding-application/adapters/mail"
	"github.com/Evergreenies/bidding-application/models"
)

var (
	// ErrDuplicateUsername 表示使用者名稱已被註冊
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrDuplicateEmail 表示信箱已被註冊
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials 表示登入失敗
	// 不論是查無帳號還是密碼錯誤都回傳同一個錯誤，避免帳號枚舉
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailNotFound 表示查無此信箱的帳號
	ErrEmailNotFound = errors.New("no account with that email")
)

// Service 負責帳號註冊、登入驗證與密碼重設流程
type Service struct {
	db      *gorm.DB
	mailer  mail.IEnqueuer
	options ServiceOptions
}

// ServiceOptions 定義 Service 的配置選項
type ServiceOptions struct {
	secret        []byte        // 重設密碼 token 的簽章金鑰
	resetTokenTTL time.Duration // 重設密碼 token 的有效時間
	publicBaseURL string        // 重設密碼信件中連結的 base URL
}

type ServiceOption func(*ServiceOptions)

// WithResetTokenTTL 設定重設密碼 token 的有效時間，非正值沿用預設
func WithResetTokenTTL(ttl time.Duration) ServiceOption {
	return func(o *ServiceOptions) {
		if ttl > 0 {
			o.resetTokenTTL = ttl
		}
	}
}

// WithPublicBaseURL 設定重設密碼信件中連結的 base URL，空字串沿用預設
func WithPublicBaseURL(base string) ServiceOption {
	return func(o *ServiceOptions) {
		if base != "" {
			o.publicBaseURL = base
		}
	}
}

// NewService 建立新的認證服務
func NewService(db *gorm.DB, mailer mail.IEnqueuer, secret []byte, opts ...ServiceOption) *Service {
	options := ServiceOptions{
		secret:        secret,
		resetTokenTTL: 30 * time.Minute,
		publicBaseURL: "http://localhost:8080",
	}
	for _, opt := range opts {
		opt(&options)
	}
	return &Service{db: db, mailer: mailer, options: options}
}

// Register 建立新帳號，密碼在落庫前先經過 bcrypt 雜湊
// 使用者名稱與信箱都必須是全域唯一
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	const op = "auth.Register"

	// 先查重複，資料庫的 unique index 作為併發情況下的最後防線
	var count int64
	if result := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to check username, err=%w", op, result.Error)
	}
	if count > 0 {
		return nil, ErrDuplicateUsername
	}
	if result := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to check email, err=%w", op, result.Error)
	}
	if count > 0 {
		return nil, ErrDuplicateEmail
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to hash password, err=%w", op, err)
	}

	user := models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
	}
	if result := s.db.WithContext(ctx).Create(&user); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("[%s] Fail to create user, err=%w", op, result.Error)
	}
	return &user, nil
}

// Authenticate 以信箱與密碼驗證使用者
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	const op = "auth.Authenticate"

	var user models.User
	if result := s.db.WithContext(ctx).Where("email = ?", email).First(&user); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("[%s] Fail to find user, err=%w", op, result.Error)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// ResetPassword 以新密碼覆蓋使用者的舊密碼
func (s *Service) ResetPassword(ctx context.Context, userID uint, newPassword string) error {
	const op = "auth.ResetPassword"

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("[%s] Fail to hash password, err=%w", op, err)
	}
	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("password", string(hashed))
	if result.Error != nil {
		return fmt.Errorf("[%s] Fail to update password, err=%w", op, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RequestPasswordReset 對指定信箱發出重設密碼信
// 寄信是 best-effort，排入佇列後即回傳，寄送失敗只會留下 log
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	const op = "auth.RequestPasswordReset"

	var user models.User
	if result := s.db.WithContext(ctx).Where("email = ?", email).First(&user); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ErrEmailNotFound
		}
		return fmt.Errorf("[%s] Fail to find user, err=%w", op, result.Error)
	}

	token, err := s.IssueResetToken(&user)
	if err != nil {
		return fmt.Errorf("[%s] Fail to issue reset token, err=%w", op, err)
	}

	msg := mail.Message{
		To:      user.Email,
		Subject: "Password Reset Request",
		Body: fmt.Sprintf(`To reset your password, visit the following link:
%s/reset_password/%s

If you did not make this request then simply ignore this email and no changes will be made.
`, s.options.publicBaseURL, token),
	}
	if err := s.mailer.Enqueue(msg); err != nil {
		slog.Warn("Fail to enqueue reset email", slog.String("op", op), slog.Any("error", err))
	}
	return nil
}
