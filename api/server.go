package api

import (
	"context"
	"fmt"

	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/Evergreenies/bidding-application/adapters/mail"
	redisAdapter "github.com/Evergreenies/bidding-application/adapters/redis"
	internalS3 "github.com/Evergreenies/bidding-application/adapters/s3"
	"github.com/Evergreenies/bidding-application/adapters/session"
	"github.com/Evergreenies/bidding-application/auth"
	"github.com/Evergreenies/bidding-application/bidding"
	"github.com/Evergreenies/bidding-application/catalog"
	"github.com/Evergreenies/bidding-application/models"
)

// IPictureStore 是商品圖片的儲存層
type IPictureStore interface {
	UploadPicture(ctx context.Context, mimeType, ext string, content []byte) (string, error)
	PublicURL(key string) string
}

type ServerImpl struct {
	db           *gorm.DB
	sessionStore session.IStore
	pictureStore IPictureStore
	asyncMailer  *mail.AsyncMailer

	authSvc    *auth.Service
	catalogSvc *catalog.Service
	bidSvc     *bidding.Service

	config ServerConfig
}

// NewServer 初始化所有外部連線並組裝服務
func NewServer(config ServerConfig) (*ServerImpl, error) {
	const op = "NewServer"

	// 初始化資料庫連線
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s", config.DB.User, config.DB.Password, config.DB.Host, config.DB.Port, config.DB.Database, config.DB.Schema)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: config.DB.Schema + ".",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to connect to database, err=%w", op, err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Bid{}); err != nil {
		return nil, fmt.Errorf("[%s] Fail to migrate schema, err=%w", op, err)
	}

	// 初始化Redis連線，作為 session 的儲存層
	redisClient := redis.NewClient(&redis.Options{
		Addr:     config.Redis.Addr,
		Password: config.Redis.Password,
		DB:       config.Redis.DB,
	})
	sessionStore := redisAdapter.NewStore(
		redisClient,
		redisAdapter.WithStorePrefix(config.Redis.KeyPrefix+"session:"),
	)

	// 初始化S3客戶端
	s3Cfg, err := awsCfg.LoadDefaultConfig(
		context.Background(),
		awsCfg.WithBaseEndpoint(config.S3.Endpoint),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(config.S3.AccessKeyID, config.S3.SecretAccessKey, "")),
		awsCfg.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to load AWS config, err=%w", op, err)
	}
	s3Operator, err := internalS3.NewS3Operator(s3.NewFromConfig(s3Cfg), config.S3.Bucket, config.S3.PublicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to create S3 operator, err=%w", op, err)
	}

	// 初始化寄信佇列
	asyncMailer := mail.NewAsyncMailer(mail.NewSMTPSender(mail.SMTPConfig{
		Host:     config.SMTP.Host,
		Port:     config.SMTP.Port,
		Username: config.SMTP.Username,
		Password: config.SMTP.Password,
		From:     config.SMTP.From,
		UseSSL:   config.SMTP.UseSSL,
	}), nil)

	impl := NewServerWithDependencies(db, sessionStore, asyncMailer, s3Operator, config)
	impl.asyncMailer = asyncMailer
	return impl, nil
}

// NewServerWithDependencies 以外部注入的依賴組裝服務
// 測試時搭配 sqlite 與記憶體版的儲存層使用
func NewServerWithDependencies(db *gorm.DB, sessionStore session.IStore, enqueuer mail.IEnqueuer, pictureStore IPictureStore, config ServerConfig) *ServerImpl {
	return &ServerImpl{
		db:           db,
		sessionStore: sessionStore,
		pictureStore: pictureStore,
		authSvc: auth.NewService(db, enqueuer, []byte(config.Auth.SecretKey),
			auth.WithResetTokenTTL(config.Auth.ResetTokenTTL),
			auth.WithPublicBaseURL(config.PublicBaseURL),
		),
		catalogSvc: catalog.NewService(db),
		bidSvc:     bidding.NewService(db),
		config:     config,
	}
}

// Start 啟動背景工作，目前只有寄信 worker
func (impl *ServerImpl) Start() {
	if impl.asyncMailer != nil {
		impl.asyncMailer.Start()
	}
}

// Close 停止背景工作並等待它們結束
func (impl *ServerImpl) Close() {
	if impl.asyncMailer != nil {
		impl.asyncMailer.Close()
	}
}
