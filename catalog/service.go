package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/Evergreenies/bidding-application/models"
)

var (
	// ErrNotFound 表示指定的商品或使用者不存在
	ErrNotFound = errors.New("product not found")
	// ErrForbidden 表示操作者不是商品的擁有者
	ErrForbidden = errors.New("not the product owner")
	// ErrDeadlineNotFuture 表示出價截止日不在未來
	ErrDeadlineNotFuture = errors.New("last date to bid must be in the future")
	// ErrNegativeMinimumBid 表示最低出價小於零
	ErrNegativeMinimumBid = errors.New("minimum bid must not be negative")
)

// PageSize 是商品列表每頁的筆數
const PageSize = 5

// staleWindow 定義商品在截止後仍會留在首頁列表的時間
const staleWindow = 24 * time.Hour

// Service 負責商品的建立、修改、刪除與列表查詢
// 所有會改動資料的操作都先經過擁有者檢查
type Service struct {
	db          *gorm.DB
	htmlChecker *bluemonday.Policy
}

// NewService 建立新的商品目錄服務
func NewService(db *gorm.DB) *Service {
	return &Service{
		db:          db,
		htmlChecker: bluemonday.UGCPolicy(),
	}
}

// ProductInput 是建立與更新商品時的輸入欄位
type ProductInput struct {
	Name          string
	Description   string
	Category      string
	MinimumBid    int64
	LastDateToBid time.Time
	// Picture 是已上傳圖片的 object key，空字串代表沿用預設或既有圖片
	Picture string
}

// Page 是一頁查詢結果
type Page struct {
	Items    []models.Product `json:"items"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Total    int64            `json:"total"`
}

// CanModify 是唯一的授權判斷：只有商品擁有者可以修改或刪除商品
func CanModify(editorID uint, product *models.Product) bool {
	return editorID == product.UserID
}

func (s *Service) validate(in ProductInput) error {
	if !in.LastDateToBid.After(time.Now()) {
		return ErrDeadlineNotFuture
	}
	if in.MinimumBid < 0 {
		return ErrNegativeMinimumBid
	}
	return nil
}

// Create 為指定使用者建立新商品
// 商品描述在落庫前會先經過 HTML 過濾
func (s *Service) Create(ctx context.Context, ownerID uint, in ProductInput) (*models.Product, error) {
	const op = "catalog.Create"

	if err := s.validate(in); err != nil {
		return nil, err
	}

	product := models.Product{
		UserID:        ownerID,
		Name:          in.Name,
		Description:   s.htmlChecker.Sanitize(in.Description),
		Category:      in.Category,
		MinimumBid:    in.MinimumBid,
		LastDateToBid: in.LastDateToBid,
	}
	if in.Picture != "" {
		product.Picture = in.Picture
	}
	if result := s.db.WithContext(ctx).Create(&product); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to create product, err=%w", op, result.Error)
	}
	return &product, nil
}

// Update 更新商品內容，只有擁有者可以操作
// 每次成功更新都會刷新 updated_at
func (s *Service) Update(ctx context.Context, productID, editorID uint, in ProductInput) (*models.Product, error) {
	const op = "catalog.Update"

	var product models.Product
	if result := s.db.WithContext(ctx).First(&product, productID); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("[%s] Fail to find product, err=%w", op, result.Error)
	}
	if !CanModify(editorID, &product) {
		return nil, ErrForbidden
	}
	if err := s.validate(in); err != nil {
		return nil, err
	}

	product.Name = in.Name
	product.Description = s.htmlChecker.Sanitize(in.Description)
	product.Category = in.Category
	product.MinimumBid = in.MinimumBid
	product.LastDateToBid = in.LastDateToBid
	if in.Picture != "" {
		product.Picture = in.Picture
	}
	if result := s.db.WithContext(ctx).Save(&product); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to update product, err=%w", op, result.Error)
	}
	return &product, nil
}

// Delete 刪除商品，只有擁有者可以操作
// 商品的所有出價會在同一個 transaction 內一併刪除，不留孤兒紀錄
func (s *Service) Delete(ctx context.Context, productID, editorID uint) error {
	const op = "catalog.Delete"

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if result := tx.First(&product, productID); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("[%s] Fail to find product, err=%w", op, result.Error)
		}
		if !CanModify(editorID, &product) {
			return ErrForbidden
		}
		if result := tx.Where("product_id = ?", productID).Delete(&models.Bid{}); result.Error != nil {
			return fmt.Errorf("[%s] Fail to delete bids, err=%w", op, result.Error)
		}
		if result := tx.Delete(&models.Product{}, productID); result.Error != nil {
			return fmt.Errorf("[%s] Fail to delete product, err=%w", op, result.Error)
		}
		return nil
	})
	return err
}

// Get 取得單一商品，連同出價紀錄與擁有者
func (s *Service) Get(ctx context.Context, productID uint) (*models.Product, error) {
	const op = "catalog.Get"

	var product models.Product
	result := s.db.WithContext(ctx).
		Preload("Bids", func(db *gorm.DB) *gorm.DB {
			return db.Order("amount DESC")
		}).
		Preload("Bids.Bidder").
		Preload("Owner").
		First(&product, productID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("[%s] Fail to find product, err=%w", op, result.Error)
	}
	return &product, nil
}

// ListActive 回傳首頁的商品列表
// 只包含截止日在一天內的商品，依刊登時間新到舊排序，時間相同時以 id 大者優先
func (s *Service) ListActive(ctx context.Context, page int) (*Page, error) {
	const op = "catalog.ListActive"

	cutoff := time.Now().Add(-staleWindow)
	query := s.db.WithContext(ctx).Model(&models.Product{}).Where("last_date_to_bid >= ?", cutoff)
	return s.paginate(query, page, op)
}

// ListByOwner 回傳指定使用者刊登的商品列表
func (s *Service) ListByOwner(ctx context.Context, username string, page int) (*models.User, *Page, error) {
	const op = "catalog.ListByOwner"

	var user models.User
	if result := s.db.WithContext(ctx).Where("username = ?", username).First(&user); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("[%s] Fail to find user, err=%w", op, result.Error)
	}

	query := s.db.WithContext(ctx).Model(&models.Product{}).Where("user_id = ?", user.ID)
	result, err := s.paginate(query, page, op)
	if err != nil {
		return nil, nil, err
	}
	return &user, result, nil
}

func (s *Service) paginate(query *gorm.DB, page int, op string) (*Page, error) {
	if page < 1 {
		page = 1
	}
	// 讓同一組條件可以安全地重複用在 Count 和 Find
	query = query.Session(&gorm.Session{})

	var total int64
	if result := query.Count(&total); result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to count products, err=%w", op, result.Error)
	}

	var items []models.Product
	result := query.
		Preload("Bids").
		Preload("Owner").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * PageSize).
		Limit(PageSize).
		Find(&items)
	if result.Error != nil {
		return nil, fmt.Errorf("[%s] Fail to list products, err=%w", op, result.Error)
	}
	return &Page{Items: items, Page: page, PageSize: PageSize, Total: total}, nil
}
