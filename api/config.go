package api

import "time"

type ServerConfig struct {
	Auth    AuthConfig
	DB      DBConfig
	Redis   RedisConfig
	S3      S3Config
	SMTP    SMTPConfig
	Session SessionConfig

	// PublicBaseURL 是服務對外的網址，用於組出重設密碼信中的連結
	PublicBaseURL string
}

type AuthConfig struct {
	// SecretKey 是重設密碼 token 的簽章金鑰，全程式共用
	SecretKey     string
	ResetTokenTTL time.Duration
}

type DBConfig struct {
	User     string
	Password string
	Host     string
	Port     int
	Database string
	Schema   string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	// KeyPrefix 是所有 session key 的前綴
	KeyPrefix string
}

type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	Bucket          string
	PublicBaseURL   string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseSSL   bool
}

type SessionConfig struct {
	KeyForCookie string
	CookieMaxAge time.Duration
	CookieSecure bool
}
