package api

import (
	"time"

	"github.com/samber/lo"

	internalS3 "github.com/Evergreenies/bidding-application/adapters/s3"
	"github.com/Evergreenies/bidding-application/bidding"
	"github.com/Evergreenies/bidding-application/models"
)

// ProductSummary 是商品在列表中的外部表示
type ProductSummary struct {
	ID            uint      `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	MinimumBid    int64     `json:"minimum_bid"`
	LastDateToBid time.Time `json:"last_date_to_bid"`
	PictureURL    string    `json:"picture_url"`
	Owner         string    `json:"owner,omitempty"`
	LeadingBid    *float64  `json:"leading_bid,omitempty"`
	BidCount      int       `json:"bid_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// ProductDetail 是單一商品頁的外部表示，包含所有出價
type ProductDetail struct {
	ProductSummary
	Description string    `json:"description"`
	Bids        []BidView `json:"bids"`
}

// BidView 是單筆出價的外部表示
type BidView struct {
	ID        uint      `json:"id"`
	Bidder    string    `json:"bidder"`
	Amount    float64   `json:"amount"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (impl *ServerImpl) toProductSummary(product *models.Product) ProductSummary {
	picture := product.Picture
	if picture == "" {
		picture = internalS3.DefaultPictureKey
	}
	summary := ProductSummary{
		ID:            product.ID,
		Name:          product.Name,
		Category:      product.Category,
		MinimumBid:    product.MinimumBid,
		LastDateToBid: product.LastDateToBid,
		PictureURL:    impl.pictureStore.PublicURL(picture),
		Owner:         product.Owner.Username,
		BidCount:      len(product.Bids),
		CreatedAt:     product.CreatedAt,
	}
	if amount, ok := bidding.LeadingBid(product); ok {
		summary.LeadingBid = lo.ToPtr(amount)
	}
	return summary
}

func (impl *ServerImpl) toProductDetail(product *models.Product) ProductDetail {
	return ProductDetail{
		ProductSummary: impl.toProductSummary(product),
		Description:    product.Description,
		Bids: lo.Map(product.Bids, func(bid models.Bid, _ int) BidView {
			return toBidView(&bid)
		}),
	}
}

func toBidView(bid *models.Bid) BidView {
	return BidView{
		ID:        bid.ID,
		Bidder:    bid.Bidder.Username,
		Amount:    bid.Amount,
		Note:      bid.Note,
		CreatedAt: bid.CreatedAt,
		UpdatedAt: bid.UpdatedAt,
	}
}
