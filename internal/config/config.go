package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

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
	Stream   string
	Group    string
	Consumer string
}

type StorageConfig struct {
	Endpoint        string
	AccessKey       string
	SecretKey       string
	BucketUploads   string
	BucketProcessed string
	UseSSL          bool
	Region          string
	// CDNDomain, when set, replaces the raw storage endpoint in every
	// rendition URL handed back to clients.
	CDNDomain string
}

type SecurityConfig struct {
	JWTSecret string
}

type VisionConfig struct {
	Region        string
	AccessKey     string
	SecretKey     string
	MaxLabels     int
	MinConfidence float64
}

type UploadConfig struct {
	MaxFileSize   int64
	URLExpiry     time.Duration
	WatermarkText string
}

type SweepConfig struct {
	Enabled bool
	// Upload objects with no metadata record are only reclaimed once
	// they are older than GracePeriod, so in-flight ingests survive.
	GracePeriod time.Duration
	Schedule    string
}

type QueueConfig struct {
	ClaimInterval time.Duration
}

type AppConfig struct {
	Environment string
	HTTP        HTTPConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
	Storage     StorageConfig
	Security    SecurityConfig
	Vision      VisionConfig
	Upload      UploadConfig
	Sweep       SweepConfig
	Queues      QueueConfig
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("PHOTOGALLERY")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("postgres.maxopen", 30)
	v.SetDefault("postgres.maxidle", 10)
	v.SetDefault("postgres.connmaxlifetime", "30m")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "gallery:tasks")
	v.SetDefault("redis.group", "gallery-workers")
	v.SetDefault("redis.consumer", "worker-1")

	v.SetDefault("storage.bucketuploads", "photogallery-uploads")
	v.SetDefault("storage.bucketprocessed", "photogallery-processed")
	v.SetDefault("storage.usessl", false)
	v.SetDefault("storage.region", "us-east-1")

	v.SetDefault("vision.region", "us-east-1")
	v.SetDefault("vision.maxlabels", 10)
	v.SetDefault("vision.minconfidence", 80)

	v.SetDefault("upload.maxfilesize", 10*1024*1024)
	v.SetDefault("upload.urlexpiry", "5m")
	v.SetDefault("upload.watermarktext", "PhotoGallery")

	v.SetDefault("sweep.enabled", true)
	v.SetDefault("sweep.graceperiod", "48h")
	v.SetDefault("sweep.schedule", "0 0 3 * * *")

	v.SetDefault("queues.claiminterval", "1m")
}
