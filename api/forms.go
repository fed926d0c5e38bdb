package api

import (
	"net/mail"
	"time"
	"unicode/utf8"
)

// FieldError 是單一欄位的驗證錯誤
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RegisterRequest 是註冊的輸入欄位
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Validate 檢查註冊欄位，回傳所有不合法的欄位
// 驗證是純函數，不碰資料庫；唯一性留給服務層檢查
func (r RegisterRequest) Validate() []FieldError {
	var errs []FieldError
	if n := utf8.RuneCountInString(r.Username); n < 2 || n > 20 {
		errs = append(errs, FieldError{Field: "username", Message: "username must be between 2 and 20 characters"})
	}
	if _, err := mail.ParseAddress(r.Email); err != nil {
		errs = append(errs, FieldError{Field: "email", Message: "invalid email address"})
	}
	if r.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	}
	if r.Password != r.ConfirmPassword {
		errs = append(errs, FieldError{Field: "confirm_password", Message: "passwords do not match"})
	}
	return errs
}

// LoginRequest 是登入的輸入欄位
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() []FieldError {
	var errs []FieldError
	if _, err := mail.ParseAddress(r.Email); err != nil {
		errs = append(errs, FieldError{Field: "email", Message: "invalid email address"})
	}
	if r.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	}
	return errs
}

// ResetRequest 是請求重設密碼的輸入欄位
type ResetRequest struct {
	Email string `json:"email"`
}

func (r ResetRequest) Validate() []FieldError {
	var errs []FieldError
	if _, err := mail.ParseAddress(r.Email); err != nil {
		errs = append(errs, FieldError{Field: "email", Message: "invalid email address"})
	}
	return errs
}

// ResetPasswordRequest 是重設密碼的輸入欄位
type ResetPasswordRequest struct {
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r ResetPasswordRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "password is required"})
	}
	if r.Password != r.ConfirmPassword {
		errs = append(errs, FieldError{Field: "confirm_password", Message: "passwords do not match"})
	}
	return errs
}

// ProductForm 是建立與更新商品的表單欄位，從 multipart form 解析
type ProductForm struct {
	Name          string `form:"name"`
	Description   string `form:"description"`
	Category      string `form:"category"`
	MinimumBid    int64  `form:"minimum_bid"`
	LastDateToBid string `form:"last_date_to_bid"` // YYYY-MM-DD
}

// Validate 檢查商品欄位並解析截止日
func (f ProductForm) Validate() (time.Time, []FieldError) {
	var errs []FieldError
	if f.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "must provide product name"})
	}
	if f.Category == "" {
		errs = append(errs, FieldError{Field: "category", Message: "must provide product category"})
	}
	if f.MinimumBid <= 0 {
		errs = append(errs, FieldError{Field: "minimum_bid", Message: "enter minimum bidding amount"})
	}
	deadline, err := time.ParseInLocation("2006-01-02", f.LastDateToBid, time.Local)
	if err != nil {
		errs = append(errs, FieldError{Field: "last_date_to_bid", Message: "enter last date to bid on product"})
	} else {
		// 截止日落在當天結束，讓「今天」以後的日期都算未來
		deadline = deadline.Add(24*time.Hour - time.Second)
	}
	return deadline, errs
}

// BidRequest 是出價的輸入欄位
type BidRequest struct {
	Amount float64 `json:"amount"`
	Note   string  `json:"note"`
}

func (r BidRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Amount <= 0 {
		errs = append(errs, FieldError{Field: "amount", Message: "must provide amount to apply bidding"})
	}
	return errs
}
