package models

import "time"

// User 代表競標平台中的使用者
// 只儲存登入憑證與基本識別資訊，密碼欄位為 bcrypt 雜湊，永遠不回傳給前端
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(20);not null;unique" json:"username"`
	Email     string    `gorm:"type:varchar(120);not null;unique" json:"email"`
	Password  string    `gorm:"type:varchar(60);not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 外鍵關聯
	Products []Product `json:"-"`
}
