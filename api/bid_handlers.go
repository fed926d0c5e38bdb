package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Evergreenies/bidding-application/bidding"
)

// GetMyBid 回傳目前使用者對指定商品的出價，沒出過價時 bid 為 null
func (impl *ServerImpl) GetMyBid(c *gin.Context) {
	const op = "GetMyBid"

	userID, _ := currentUserID(c)
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	bid, err := impl.bidSvc.BidForProduct(c.Request.Context(), userID, productID)
	if err != nil {
		internalError(c, op, err)
		return
	}
	if bid == nil {
		c.JSON(http.StatusOK, gin.H{"bid": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bid": toBidView(bid)})
}

// PlaceBid 出價或更新出價，同一使用者對同一商品只會有一筆
func (impl *ServerImpl) PlaceBid(c *gin.Context) {
	const op = "PlaceBid"

	userID, _ := currentUserID(c)
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	var req BidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}

	bid, err := impl.bidSvc.PlaceOrUpdate(c.Request.Context(), userID, productID, req.Amount, req.Note)
	switch {
	case errors.Is(err, bidding.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
		return
	case errors.Is(err, bidding.ErrBidTooLow):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	case err != nil:
		internalError(c, op, err)
		return
	}

	slog.Info("Bid accepted", slog.Uint64("user", uint64(userID)), slog.Uint64("product", uint64(productID)), slog.Float64("amount", req.Amount))
	c.JSON(http.StatusOK, gin.H{
		"message": "bid placed successfully",
		"bid":     toBidView(bid),
	})
}
