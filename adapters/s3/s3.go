package s3

import (
	"bytes"
	"context"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// DefaultPictureKey 是商品沒有上傳圖片時使用的預設圖片
const DefaultPictureKey = "default.png"

// S3Operator 負責商品圖片的上傳與公開網址組裝
type S3Operator struct {
	// Client 是 S3 客戶端。
	Client *s3.Client
	// Bucket 是 S3 存儲桶的名稱。
	Bucket string
	// PublicEndpoint 是 S3 存儲桶的公開 Endpoint。
	PublicEndpoint *url.URL
}

func NewS3Operator(client *s3.Client, bucket, publicBaseURL string) (*S3Operator, error) {
	const op = "NewS3Operator"
	publicEndpoint, err := url.Parse(publicBaseURL)
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to parse public base URL, err=%w", op, err)
	}
	return &S3Operator{Client: client, Bucket: bucket, PublicEndpoint: publicEndpoint}, nil
}

// UploadPicture 將縮圖後的商品圖片上傳到 S3
// object key 用隨機的 uuid 命名，回傳 key 供商品紀錄儲存
func (s *S3Operator) UploadPicture(ctx context.Context, mimeType, ext string, content []byte) (string, error) {
	const op = "UploadPicture"
	key := fmt.Sprintf("pics/%s.%s", uuid.New().String(), ext)
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return "", fmt.Errorf("[%s] Fail to upload picture to S3, err=%w", op, err)
	}
	return key, nil
}

// PublicURL 回傳 object key 的公開存取網址
func (s *S3Operator) PublicURL(key string) string {
	uri := *s.PublicEndpoint
	uri.Path = key
	return uri.String()
}
