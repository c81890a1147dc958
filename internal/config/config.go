package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	TikTok     TikTokConfig
	Uploader   UploaderConfig
	TokenStore TokenStoreConfig
	Postgres   DBConfig
	Redis      RedisConfig
	S3         S3Config
	Logger     Logger
}

type ServerConfig struct {
	AppVersion     string
	Port           string
	Mode           string
	StateSecretKey string
	StateExpire    time.Duration
}

type TikTokConfig struct {
	ClientKey    string
	ClientSecret string
	RedirectURI  string
	AuthBaseURL  string
	APIBaseURL   string
	Scopes       string
}

type UploaderConfig struct {
	QueueFile          string
	TempDir            string
	MaxRetries         int
	RetryBackoff       time.Duration
	RequestTimeout     time.Duration
	PollInterval       time.Duration
	PollTimeout        time.Duration
	TokenExpiryMargin  time.Duration
	MinChunkSize       int64
	MaxChunkSize       int64
	MaxChunkCount      int
	MinFreeDiskMB      int64
	VideoCoverOffsetMs int64
}

type TokenStoreConfig struct {
	Backend string
	File    string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	PgDriver string
}

type RedisConfig struct {
	RedisAddr     string
	RedisPassword string
	DB            int
	MinIdleConns  int
	PoolSize      int
	PoolTimeout   int
	JobKeyPrefix  string
	ResultTTL     int
}

type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
}

type Logger struct {
	Development       bool
	DisableCaller     bool
	DisableStacktrace bool
	Encoding          string
	Level             string
}

// RetryBackoffDuration is the base delay before the first retry; it doubles
// on every further attempt.
func (c *UploaderConfig) RetryBackoffDuration() time.Duration {
	if c.RetryBackoff <= 0 {
		return time.Second
	}
	return c.RetryBackoff
}

func (c *UploaderConfig) RequestTimeoutDuration() time.Duration {
	if c.RequestTimeout <= 0 {
		return 30 * time.Second
	}
	return c.RequestTimeout
}

func (c *UploaderConfig) PollIntervalDuration() time.Duration {
	if c.PollInterval <= 0 {
		return 5 * time.Second
	}
	return c.PollInterval
}

func (c *UploaderConfig) PollTimeoutDuration() time.Duration {
	if c.PollTimeout <= 0 {
		return 5 * time.Minute
	}
	return c.PollTimeout
}

func (c *UploaderConfig) TokenExpiryMarginDuration() time.Duration {
	if c.TokenExpiryMargin <= 0 {
		return 2 * time.Minute
	}
	return c.TokenExpiryMargin
}

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(filename)
	v.AddConfigPath(".")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if errors.Is(err, configFileNotFound) {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
