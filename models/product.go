package models

import "time"

// Product 代表使用者刊登的競標商品
// 包含商品資訊、最低出價、出價截止日與圖片位置等資訊
type Product struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;<-:create" json:"user_id"`
	Name          string    `gorm:"type:varchar(100);not null" json:"name"`
	Description   string    `gorm:"type:varchar(550)" json:"description"`
	Category      string    `gorm:"type:varchar(50);not null" json:"category"`
	MinimumBid    int64     `gorm:"type:bigint;not null" json:"minimum_bid"`
	LastDateToBid time.Time `gorm:"not null" json:"last_date_to_bid"`
	Picture       string    `gorm:"type:varchar(1600);not null;default:'default.png'" json:"picture"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// 外鍵關聯
	Owner User  `gorm:"foreignKey:UserID" json:"-"`
	Bids  []Bid `json:"-"`
}
