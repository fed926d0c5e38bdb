package models

import "time"

// Bid 代表使用者對商品的出價
// 每組 (bidder, product) 只保留一筆紀錄，重複出價會覆蓋原本的金額與備註
type Bid struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	BidderID  uint      `gorm:"not null;uniqueIndex:idx_bid_bidder_id_product_id;<-:create" json:"bidder_id"`
	ProductID uint      `gorm:"not null;uniqueIndex:idx_bid_bidder_id_product_id;<-:create" json:"product_id"`
	Amount    float64   `gorm:"type:numeric(12,2);not null" json:"amount"`
	Note      string    `gorm:"type:varchar(500)" json:"note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 外鍵關聯
	Bidder  User    `gorm:"foreignKey:BidderID" json:"-"`
	Product Product `json:"-"`
}
