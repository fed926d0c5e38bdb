package bidding

import (
	"context"
	"errors"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Evergreenies/bidding-application/models"
)

var (
	// ErrNotFound 表示指定的商品不存在
	ErrNotFound = errors.New("product not found")
	// ErrBidTooLow 表示出價沒有超過商品的最低出價
	ErrBidTooLow = errors.New("bid must be greater than the minimum bid")
)

// Service 負責出價與最高出價查詢
type Service struct {
	db          *gorm.DB
	htmlChecker *bluemonday.Policy
}

// NewService 建立新的出價服務
func NewService(db *gorm.DB) *Service {
	return &Service{
		db:          db,
		htmlChecker: bluemonday.UGCPolicy(),
	}
}

// PlaceOrUpdate 對商品出價
// 同一位使用者對同一件商品只會有一筆出價，重複出價會覆蓋金額與備註。
// 檢查與寫入包在同一個 transaction 內：先確認商品存在並讀取最低出價，
// 再以 (bidder_id, product_id) 的 unique index 做 upsert，讓並發的重複
// 出價合併成單一筆最新紀錄，而不會多出一列。
func (s *Service) PlaceOrUpdate(ctx context.Context, bidderID, productID uint, amount float64, note string) (*models.Bid, error) {
	const op = "bidding.PlaceOrUpdate"

	var saved models.Bid
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 在 transaction 內重新確認商品存在，與刪除商品的流程互斥
		var product models.Product
		if result := tx.First(&product, productID); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("[%s] Fail to find product, err=%w", op, result.Error)
		}

		// 出價必須「嚴格大於」最低出價，等於也不行
		if amount <= float64(product.MinimumBid) {
			return ErrBidTooLow
		}

		bid := models.Bid{
			BidderID:  bidderID,
			ProductID: productID,
			Amount:    amount,
			Note:      s.htmlChecker.Sanitize(note),
		}
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "bidder_id"}, {Name: "product_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"amount", "note", "updated_at"}),
		}).Create(&bid)
		if result.Error != nil {
			return fmt.Errorf("[%s] Fail to upsert bid, err=%w", op, result.Error)
		}

		// 走到 conflict-update 路徑時 driver 不一定會回填主鍵，重新讀一次
		if result := tx.Preload("Bidder").Where("bidder_id = ? AND product_id = ?", bidderID, productID).First(&saved); result.Error != nil {
			return fmt.Errorf("[%s] Fail to reload bid, err=%w", op, result.Error)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// BidForProduct 回傳使用者對商品既有的出價，沒有出過價時回傳 nil
func (s *Service) BidForProduct(ctx context.Context, bidderID, productID uint) (*models.Bid, error) {
	const op = "bidding.BidForProduct"

	var bid models.Bid
	result := s.db.WithContext(ctx).Preload("Bidder").Where("bidder_id = ? AND product_id = ?", bidderID, productID).First(&bid)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("[%s] Fail to find bid, err=%w", op, result.Error)
	}
	return &bid, nil
}

// LeadingBid 計算商品目前的最高出價
// 這是讀取時才計算的顯示值，不會寫回任何欄位；沒有出價時第二個回傳值為 false
func LeadingBid(product *models.Product) (float64, bool) {
	if len(product.Bids) == 0 {
		return 0, false
	}
	top := lo.MaxBy(product.Bids, func(a, b models.Bid) bool {
		return a.Amount > b.Amount
	})
	return top.Amount, true
}
