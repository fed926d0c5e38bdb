package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	internalS3 "github.com/Evergreenies/bidding-application/adapters/s3"
	"github.com/Evergreenies/bidding-application/catalog"
	"github.com/Evergreenies/bidding-application/models"
)

// MaxPictureSize 是商品圖片上傳的大小上限
const MaxPictureSize = 5 << 20

// parseProductID 解析路徑參數中的商品 ID
func parseProductID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("productID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
		return 0, false
	}
	return uint(id), true
}

// parsePage 解析 query string 中的頁碼，沒給或不合法時回到第一頁
func parsePage(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func (impl *ServerImpl) pageResponse(page *catalog.Page) gin.H {
	return gin.H{
		"items": lo.Map(page.Items, func(product models.Product, _ int) ProductSummary {
			return impl.toProductSummary(&product)
		}),
		"page":      page.Page,
		"page_size": page.PageSize,
		"total":     page.Total,
	}
}

// Home 回傳還在競標期限內的商品列表
func (impl *ServerImpl) Home(c *gin.Context) {
	const op = "Home"

	page, err := impl.catalogSvc.ListActive(c.Request.Context(), parsePage(c))
	if err != nil {
		internalError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, impl.pageResponse(page))
}

// GetProduct 回傳單一商品與它的所有出價
func (impl *ServerImpl) GetProduct(c *gin.Context) {
	const op = "GetProduct"

	productID, ok := parseProductID(c)
	if !ok {
		return
	}
	product, err := impl.catalogSvc.Get(c.Request.Context(), productID)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
		return
	case err != nil:
		internalError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, impl.toProductDetail(product))
}

// UserProducts 回傳指定使用者刊登的商品列表
func (impl *ServerImpl) UserProducts(c *gin.Context) {
	const op = "UserProducts"

	user, page, err := impl.catalogSvc.ListByOwner(c.Request.Context(), c.Param("username"), parsePage(c))
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "user not found"})
		return
	case err != nil:
		internalError(c, op, err)
		return
	}
	response := impl.pageResponse(page)
	response["owner"] = user.Username
	c.JSON(http.StatusOK, response)
}

// uploadPicture 讀出表單中的圖片、縮圖後上傳，回傳 object key
// 沒附圖片時回傳空字串
func (impl *ServerImpl) uploadPicture(c *gin.Context) (string, bool) {
	const op = "uploadPicture"

	file, _, err := c.Request.FormFile("picture")
	if errors.Is(err, http.ErrMissingFile) {
		return "", true
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid picture field"})
		return "", false
	}
	defer file.Close()

	// 限制圖片
	// 	1. 小於5MB
	// 	2. MIME類型為不包含腳本的圖片檔案
	content, err := io.ReadAll(internalS3.NewMaxSizeReader(file, MaxPictureSize))
	if errors.As(err, &internalS3.ErrReachLimitType) {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return "", false
	}
	if err != nil {
		internalError(c, op, fmt.Errorf("[%s] Fail to read picture, err=%w", op, err))
		return "", false
	}
	mimeType := http.DetectContentType(content)
	secure, ext := internalS3.CheckSecureImageAndGetExtension(mimeType)
	if !secure {
		c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("Invalid image type: %s", mimeType)})
		return "", false
	}

	// 只保留縮圖，原圖不落地
	thumbnail, err := internalS3.MakeThumbnail(mimeType, content)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid image content"})
		return "", false
	}
	key, err := impl.pictureStore.UploadPicture(c.Request.Context(), mimeType, ext, thumbnail)
	if err != nil {
		internalError(c, op, err)
		return "", false
	}
	return key, true
}

func (impl *ServerImpl) bindProductInput(c *gin.Context) (catalog.ProductInput, bool) {
	var form ProductForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return catalog.ProductInput{}, false
	}
	deadline, errs := form.Validate()
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return catalog.ProductInput{}, false
	}

	picture, ok := impl.uploadPicture(c)
	if !ok {
		return catalog.ProductInput{}, false
	}
	return catalog.ProductInput{
		Name:          form.Name,
		Description:   form.Description,
		Category:      form.Category,
		MinimumBid:    form.MinimumBid,
		LastDateToBid: deadline,
		Picture:       picture,
	}, true
}

// CreateProduct 刊登新商品
func (impl *ServerImpl) CreateProduct(c *gin.Context) {
	const op = "CreateProduct"

	userID, _ := currentUserID(c)
	input, ok := impl.bindProductInput(c)
	if !ok {
		return
	}

	product, err := impl.catalogSvc.Create(c.Request.Context(), userID, input)
	switch {
	case errors.Is(err, catalog.ErrDeadlineNotFuture), errors.Is(err, catalog.ErrNegativeMinimumBid):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	case err != nil:
		internalError(c, op, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "your product has been created",
		"product": impl.toProductSummary(product),
	})
}

// UpdateProduct 更新商品，只有擁有者可以操作
func (impl *ServerImpl) UpdateProduct(c *gin.Context) {
	const op = "UpdateProduct"

	userID, _ := currentUserID(c)
	productID, ok := parseProductID(c)
	if !ok {
		return
	}
	input, ok := impl.bindProductInput(c)
	if !ok {
		return
	}

	product, err := impl.catalogSvc.Update(c.Request.Context(), productID, userID, input)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
		return
	case errors.Is(err, catalog.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
		return
	case errors.Is(err, catalog.ErrDeadlineNotFuture), errors.Is(err, catalog.ErrNegativeMinimumBid):
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	case err != nil:
		internalError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "your product has been updated",
		"product": impl.toProductSummary(product),
	})
}

// DeleteProduct 刪除商品與它所有的出價，只有擁有者可以操作
func (impl *ServerImpl) DeleteProduct(c *gin.Context) {
	const op = "DeleteProduct"

	userID, _ := currentUserID(c)
	productID, ok := parseProductID(c)
	if !ok {
		return
	}

	err := impl.catalogSvc.Delete(c.Request.Context(), productID, userID)
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
		return
	case errors.Is(err, catalog.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": err.Error()})
		return
	case err != nil:
		internalError(c, op, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "your product has been deleted!"})
}
