package bidding

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Evergreenies/bidding-application/models"
)

func setupTest(t *testing.T) (*gorm.DB, *Service, *models.User, *models.Product) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Product{}, &models.Bid{}))

	owner := &models.User{Username: "alice", Email: "alice@example.com", Password: "x"}
	require.NoError(t, db.Create(owner).Error)
	bidder := &models.User{Username: "bob", Email: "bob@example.com", Password: "x"}
	require.NoError(t, db.Create(bidder).Error)

	product := &models.Product{
		UserID:        owner.ID,
		Name:          "Antique clock",
		Category:      "antiques",
		MinimumBid:    100,
		LastDateToBid: time.Now().Add(72 * time.Hour),
	}
	require.NoError(t, db.Create(product).Error)
	return db, NewService(db), bidder, product
}

func TestPlaceOrUpdate(t *testing.T) {
	ctx := context.Background()
	db, service, bidder, product := setupTest(t)

	t.Run("product not found", func(t *testing.T) {
		_, err := service.PlaceOrUpdate(ctx, bidder.ID, 9999, 200, "")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	tests := []struct {
		name    string
		amount  float64
		wantErr error
	}{
		{
			name:    "below minimum",
			amount:  50,
			wantErr: ErrBidTooLow,
		},
		{
			// 等於最低出價也不行，必須嚴格大於
			name:    "equal to minimum",
			amount:  100,
			wantErr: ErrBidTooLow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.PlaceOrUpdate(ctx, bidder.ID, product.ID, tt.amount, "")
			assert.ErrorIs(t, err, tt.wantErr)

			// 被拒絕的出價不能留下任何紀錄
			var count int64
			require.NoError(t, db.Model(&models.Bid{}).Where("product_id = ?", product.ID).Count(&count).Error)
			assert.Zero(t, count)
		})
	}

	t.Run("first bid", func(t *testing.T) {
		bid, err := service.PlaceOrUpdate(ctx, bidder.ID, product.ID, 150, "call me")
		require.NoError(t, err)
		assert.EqualValues(t, 150, bid.Amount)
		assert.Equal(t, "call me", bid.Note)
		assert.Equal(t, "bob", bid.Bidder.Username)
	})
	t.Run("revised bid replaces the old one", func(t *testing.T) {
		bid, err := service.PlaceOrUpdate(ctx, bidder.ID, product.ID, 300, "new offer")
		require.NoError(t, err)
		assert.EqualValues(t, 300, bid.Amount)
		assert.Equal(t, "new offer", bid.Note)

		// 同一人對同一商品永遠只有一筆
		var count int64
		require.NoError(t, db.Model(&models.Bid{}).Where("bidder_id = ? AND product_id = ?", bidder.ID, product.ID).Count(&count).Error)
		assert.EqualValues(t, 1, count)
	})
	t.Run("note is sanitized", func(t *testing.T) {
		bid, err := service.PlaceOrUpdate(ctx, bidder.ID, product.ID, 400, `hi <script>alert("x")</script>`)
		require.NoError(t, err)
		assert.NotContains(t, bid.Note, "<script>")
	})
}

func TestBidForProduct(t *testing.T) {
	ctx := context.Background()
	_, service, bidder, product := setupTest(t)

	t.Run("no bid yet", func(t *testing.T) {
		bid, err := service.BidForProduct(ctx, bidder.ID, product.ID)
		require.NoError(t, err)
		assert.Nil(t, bid)
	})
	t.Run("existing bid", func(t *testing.T) {
		_, err := service.PlaceOrUpdate(ctx, bidder.ID, product.ID, 150, "")
		require.NoError(t, err)

		bid, err := service.BidForProduct(ctx, bidder.ID, product.ID)
		require.NoError(t, err)
		require.NotNil(t, bid)
		assert.EqualValues(t, 150, bid.Amount)
		assert.Equal(t, "bob", bid.Bidder.Username)
	})
}

func TestLeadingBid(t *testing.T) {
	t.Run("no bids", func(t *testing.T) {
		_, ok := LeadingBid(&models.Product{})
		assert.False(t, ok)
	})
	t.Run("highest amount wins", func(t *testing.T) {
		product := &models.Product{Bids: []models.Bid{
			{Amount: 150},
			{Amount: 200},
			{Amount: 175},
		}}
		amount, ok := LeadingBid(product)
		require.True(t, ok)
		assert.EqualValues(t, 200, amount)
	})
}
