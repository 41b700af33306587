package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/petmily/service-reservation/internal/blobstore"
	"github.com/petmily/service-reservation/internal/platform/config"
)

// Blob store drivers.
const (
	BlobDriverLocal = "local"
	BlobDriverS3    = "s3"
)

// BlobConfig selects and configures the photo store.
type BlobConfig struct {
	Driver string

	// local driver
	LocalRoot  string
	PublicPath string

	S3 blobstore.S3Config
}

// ServiceConfig holds all configuration for the reservation service.
type ServiceConfig struct {
	Port           string
	AppEnv         string
	PublicBaseURL  string
	MaxUploadBytes int64
	DBConfig       config.DatabaseConfig
	JWTConfig      config.JWTConfig
	KafkaConfig    config.KafkaConfig
	BlobConfig     BlobConfig
}

// Load reads configuration from RESERVATION_* environment variables and an
// optional config.yaml.
func Load() (*ServiceConfig, error) {
	v, err := config.Load("RESERVATION")
	if err != nil {
		return nil, err
	}
	setDefaults(v)

	cfg := &ServiceConfig{
		Port:           config.GetServicePort(v, "SERVICE_PORT"),
		AppEnv:         config.GetAppEnv(v),
		PublicBaseURL:  v.GetString("PUBLIC_BASE_URL"),
		MaxUploadBytes: v.GetInt64("UPLOAD_MAX_BYTES"),
		DBConfig:       config.LoadDatabaseConfig(v, "DB_NAME"),
		JWTConfig:      config.LoadJWTConfig(v),
		KafkaConfig:    config.LoadKafkaConfig(v),
		BlobConfig: BlobConfig{
			Driver:     v.GetString("BLOB_DRIVER"),
			LocalRoot:  v.GetString("BLOB_LOCAL_ROOT"),
			PublicPath: v.GetString("BLOB_PUBLIC_PATH"),
			S3: blobstore.S3Config{
				Bucket:          v.GetString("BLOB_S3_BUCKET"),
				Region:          v.GetString("BLOB_S3_REGION"),
				Endpoint:        v.GetString("BLOB_S3_ENDPOINT"),
				AccessKeyID:     v.GetString("BLOB_S3_ACCESS_KEY_ID"),
				SecretAccessKey: v.GetString("BLOB_S3_SECRET_ACCESS_KEY"),
				Prefix:          v.GetString("BLOB_PREFIX"),
				PublicBaseURL:   v.GetString("BLOB_S3_PUBLIC_BASE_URL"),
			},
		},
	}

	switch cfg.BlobConfig.Driver {
	case BlobDriverLocal:
	case BlobDriverS3:
		if cfg.BlobConfig.S3.Bucket == "" {
			return nil, fmt.Errorf("BLOB_S3_BUCKET is required for the s3 blob driver")
		}
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.BlobConfig.Driver)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("DB_NAME", "petmily_reservation")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("UPLOAD_MAX_BYTES", 5<<20)
	v.SetDefault("BLOB_DRIVER", BlobDriverLocal)
	v.SetDefault("BLOB_LOCAL_ROOT", "./data/blobs")
	v.SetDefault("BLOB_PUBLIC_PATH", "/files")
	v.SetDefault("BLOB_PREFIX", "pets")
	v.SetDefault("BLOB_S3_REGION", "ap-northeast-2")
}
