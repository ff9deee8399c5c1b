package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

var (
	ErrMissingSetting = errors.New("missing required setting")
	ErrInvalidSetting = errors.New("invalid setting")
)

type TLSConfig struct {
	Enabled  bool
	CertFile string
	KeyFile  string
}

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type PostgresConfig struct {
	DSN             string
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type StorageConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	BucketContent string
	UseSSL        bool
	Region        string
}

// SecurityConfig carries the token signing settings. JWTSecret, JWTAlgorithm
// and both TTLs are required for the API to start.
type SecurityConfig struct {
	JWTSecret                 string
	JWTAlgorithm              string
	AccessTokenExpireMinutes  int
	RefreshTokenExpireMinutes int
	CredentialFailureStatus   int
}

type ContentConfig struct {
	AllowedExtensions []string
	MaxUploadBytes    int64
}

type PaymentConfig struct {
	StripeSecretKey string
	Amount          int64
	Currency        string
	Description     string
}

type QueueConfig struct {
	Stream        string
	Group         string
	Consumer      string
	BatchSize     int64
	Block         time.Duration
	ClaimInterval time.Duration
}

type JobsConfig struct {
	PurgeSweepSpec string
}

type LoggingConfig struct {
	Level string
}

type AppConfig struct {
	Environment      string
	Logging          LoggingConfig
	HTTP             HTTPConfig
	TLS              TLSConfig
	Postgres         PostgresConfig
	Redis            RedisConfig
	Storage          StorageConfig
	Security         SecurityConfig
	Content          ContentConfig
	Payment          PaymentConfig
	Queue            QueueConfig
	Jobs             JobsConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("CONTENTHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the settings the API cannot run without.
func (c *AppConfig) Validate() error {
	var missing []string
	if c.Security.JWTSecret == "" {
		missing = append(missing, "security.jwtsecret")
	}
	if c.Security.JWTAlgorithm == "" {
		missing = append(missing, "security.jwtalgorithm")
	}
	if c.Security.AccessTokenExpireMinutes <= 0 {
		missing = append(missing, "security.accesstokenexpireminutes")
	}
	if c.Security.RefreshTokenExpireMinutes <= 0 {
		missing = append(missing, "security.refreshtokenexpireminutes")
	}
	if c.Postgres.DSN == "" {
		missing = append(missing, "postgres.dsn")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingSetting, strings.Join(missing, ", "))
	}
	if status := c.Security.CredentialFailureStatus; status != 0 && (status < 400 || status > 599) {
		return fmt.Errorf("%w: security.credentialfailurestatus %d is not a 4xx or 5xx status", ErrInvalidSetting, status)
	}
	return nil
}

func (s SecurityConfig) AccessTTL() time.Duration {
	return time.Duration(s.AccessTokenExpireMinutes) * time.Minute
}

func (s SecurityConfig) RefreshTTL() time.Duration {
	return time.Duration(s.RefreshTokenExpireMinutes) * time.Minute
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("logging.level", "")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "60s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.endpoint", "127.0.0.1:9000")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.bucketcontent", "contenthub-media")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	// Signing material has no default; Validate rejects its absence.
	v.SetDefault("security.jwtsecret", "")
	v.SetDefault("security.jwtalgorithm", "")
	v.SetDefault("security.accesstokenexpireminutes", 0)
	v.SetDefault("security.refreshtokenexpireminutes", 0)
	v.SetDefault("security.credentialfailurestatus", 401)

	v.SetDefault("content.allowedextensions", []string{
		"mp4", "mov", "avi", "wmv", "flv", "webm", "mpeg4", "3gpp",
		"mpegps", "cineform", "hevc", "dnxhr", "prores",
	})
	v.SetDefault("content.maxuploadbytes", 2<<30)

	v.SetDefault("payment.stripesecretkey", "")
	v.SetDefault("payment.amount", 2000)
	v.SetDefault("payment.currency", "usd")
	v.SetDefault("payment.description", "My Payment")

	v.SetDefault("queue.stream", "content:tasks")
	v.SetDefault("queue.group", "content-workers")
	v.SetDefault("queue.consumer", "worker-1")
	v.SetDefault("queue.batchsize", 10)
	v.SetDefault("queue.block", "5s")
	v.SetDefault("queue.claiminterval", "30s")

	v.SetDefault("jobs.purgesweepspec", "0 0 3 * * *")

	v.SetDefault("allowcorsorigins", []string{})
}
