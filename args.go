package main

import (
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Evergreenies/bidding-application/api"
)

func ParseArgs() Args {
	// server config
	pflag.String("server-url", "0.0.0.0:8080", "")
	pflag.String("public-base-url", "http://localhost:8080", "")

	// auth config
	pflag.String("auth-secret-key", "", "")
	pflag.Duration("auth-reset-token-ttl", 30*time.Minute, "")

	// db config
	pflag.String("db-user", "", "")
	pflag.String("db-password", "", "")
	pflag.String("db-host", "", "")
	pflag.Int("db-port", 5432, "")
	pflag.String("db-database", "", "")
	pflag.String("db-schema", "", "")

	// redis config
	pflag.String("redis-addr", "", "")
	pflag.String("redis-password", "", "")
	pflag.Int("redis-db", 15, "")
	pflag.String("redis-key-prefix", "bid:", "")

	// s3 config
	pflag.String("s3-endpoint", "", "")
	pflag.String("s3-bucket", "", "")
	pflag.String("s3-public-base-url", "", "")
	pflag.String("s3-access-key-id", "", "")
	pflag.String("s3-secret-access-key", "", "")

	// smtp config
	pflag.String("smtp-host", "", "")
	pflag.Int("smtp-port", 465, "")
	pflag.String("smtp-username", "", "")
	pflag.String("smtp-password", "", "")
	pflag.String("smtp-from", "", "")
	pflag.Bool("smtp-use-ssl", true, "")

	// session config
	pflag.String("session-key-for-cookie", "bid-session", "")
	pflag.Duration("session-cookie-max-age", 24*time.Hour, "")
	pflag.Bool("session-cookie-secure", true, "")

	// bind pflag to viper
	pflag.Parse()
	viper.BindPFlags(pflag.CommandLine)
	viper.AutomaticEnv()
	viper.SetEnvPrefix("BID")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// initial arguments
	return Args{
		ServerURL: viper.GetString("server-url"),
		ServerConfig: api.ServerConfig{
			Auth: api.AuthConfig{
				SecretKey:     viper.GetString("auth-secret-key"),
				ResetTokenTTL: viper.GetDuration("auth-reset-token-ttl"),
			},
			DB: api.DBConfig{
				User:     viper.GetString("db-user"),
				Password: viper.GetString("db-password"),
				Host:     viper.GetString("db-host"),
				Port:     viper.GetInt("db-port"),
				Database: viper.GetString("db-database"),
				Schema:   viper.GetString("db-schema"),
			},
			Redis: api.RedisConfig{
				Addr:      viper.GetString("redis-addr"),
				Password:  viper.GetString("redis-password"),
				DB:        viper.GetInt("redis-db"),
				KeyPrefix: viper.GetString("redis-key-prefix"),
			},
			S3: api.S3Config{
				Endpoint:        viper.GetString("s3-endpoint"),
				Bucket:          viper.GetString("s3-bucket"),
				PublicBaseURL:   viper.GetString("s3-public-base-url"),
				AccessKeyID:     viper.GetString("s3-access-key-id"),
				SecretAccessKey: viper.GetString("s3-secret-access-key"),
			},
			SMTP: api.SMTPConfig{
				Host:     viper.GetString("smtp-host"),
				Port:     viper.GetInt("smtp-port"),
				Username: viper.GetString("smtp-username"),
				Password: viper.GetString("smtp-password"),
				From:     viper.GetString("smtp-from"),
				UseSSL:   viper.GetBool("smtp-use-ssl"),
			},
			Session: api.SessionConfig{
				KeyForCookie: viper.GetString("session-key-for-cookie"),
				CookieMaxAge: viper.GetDuration("session-cookie-max-age"),
				CookieSecure: viper.GetBool("session-cookie-secure"),
			},
			PublicBaseURL: viper.GetString("public-base-url"),
		},
	}
}

type Args struct {
	ServerURL    string
	ServerConfig api.ServerConfig
}

func (args Args) Validate() bool {
	return args.ServerURL != "" && args.ServerConfig.Auth.SecretKey != "" && args.ServerConfig.DB.Host != "" && args.ServerConfig.Redis.Addr != ""
}
