package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env      Env
	Storage  StorageConfig
	Minio    MinioConfig
	S3       S3Config
	Upload   FileUploadConfig
	NATS     NATSConfig
	Database DatabaseConfig
	Server   ServerConfig
}

type Env struct {
	Env string `envconfig:"ENV" default:"DEV"`
}

type ServerConfig struct {
	Host           string        `envconfig:"SERVER_HOST" default:"localhost"`
	Port           string        `envconfig:"SERVER_PORT" default:"8080"`
	RequestTimeout time.Duration `envconfig:"SERVER_REQUEST_TIMEOUT" default:"120s"`
	MaxBodyBytes   int64         `envconfig:"SERVER_MAX_BODY_BYTES" default:"8388608"` // 8MB, one chunk plus form overhead
}

// StorageConfig selects the object store implementation
type StorageConfig struct {
	Driver string `envconfig:"STORAGE_DRIVER" default:"minio"`
}

type MinioConfig struct {
	Endpoint   string `envconfig:"MINIO_ENDPOINT"`
	BucketName string `envconfig:"MINIO_BUCKET_NAME" default:"csv-files"`
	AccessKey  string `envconfig:"MINIO_ACCESS_KEY"`
	SecretKey  string `envconfig:"MINIO_SECRET_KEY"`
	UseSSL     bool   `envconfig:"MINIO_USE_SSL" default:"false"`
}

type S3Config struct {
	Region          string `envconfig:"AWS_REGION" default:"us-east-1"`
	BucketName      string `envconfig:"AWS_BUCKET_NAME"`
	AccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	Endpoint        string `envconfig:"AWS_S3_ENDPOINT"`
	ForcePathStyle  bool   `envconfig:"AWS_S3_FORCE_PATH_STYLE" default:"false"`
}

type FileUploadConfig struct {
	TenantID          string        `envconfig:"UPLOAD_TENANT_ID" default:"1234"`
	SimpleMaxSize     int64         `envconfig:"UPLOAD_SIMPLE_MAX_SIZE" default:"5242880"`  // 5MB
	MaxFileSize       int64         `envconfig:"UPLOAD_MAX_FILE_SIZE" default:"5368709120"` // 5GB
	PartSize          int64         `envconfig:"UPLOAD_PART_SIZE" default:"5242880"`        // 5MB
	AllowedExtensions []string      `envconfig:"UPLOAD_ALLOWED_EXTENSIONS" default:".csv"`
	AllowedMimeTypes  []string      `envconfig:"UPLOAD_ALLOWED_MIME_TYPES" default:"text/csv,text/plain,application/vnd.ms-excel"`
	RemoteCallTimeout time.Duration `envconfig:"UPLOAD_REMOTE_CALL_TIMEOUT" default:"30s"`
	CleanupTimeout    time.Duration `envconfig:"UPLOAD_CLEANUP_TIMEOUT" default:"15s"`
	SignedURLTTL      time.Duration `envconfig:"UPLOAD_SIGNED_URL_TTL" default:"1h"`
	StaleAfter        time.Duration `envconfig:"UPLOAD_STALE_AFTER" default:"1h"`
	SweepEvery        time.Duration `envconfig:"UPLOAD_SWEEP_EVERY" default:"15m"`
}

// NATSConfig configures the compensation retry queue. An empty URL disables it.
type NATSConfig struct {
	URL          string        `envconfig:"NATS_URL"`
	StreamName   string        `envconfig:"NATS_STREAM_NAME" default:"CSVDROP_COMPENSATION"`
	ConsumerName string        `envconfig:"NATS_CONSUMER_NAME" default:"csvdrop-compensator"`
	Subject      string        `envconfig:"NATS_SUBJECT" default:"csvdrop.compensation"`
	MaxDeliver   int           `envconfig:"NATS_MAX_DELIVER" default:"10"`
	AckWait      time.Duration `envconfig:"NATS_ACK_WAIT" default:"30s"`
	RetryDelay   time.Duration `envconfig:"NATS_RETRY_DELAY" default:"5s"`
}

type DatabaseConfig struct {
	Host           string        `envconfig:"DB_HOST" required:"true"`
	Port           int           `envconfig:"DB_PORT" default:"5432"`
	User           string        `envconfig:"DB_USER" required:"true"`
	Password       string        `envconfig:"DB_PASSWORD" required:"true"`
	Name           string        `envconfig:"DB_NAME" required:"true"`
	SSLMode        string        `envconfig:"DB_SSLMODE" default:"disable"`
	MaxOpenCons    int           `envconfig:"DB_MAX_OPEN_CONS" default:"25"`
	MaxIdleCons    int           `envconfig:"DB_MAX_IDLE_CONS" default:"5"`
	ConMaxLifeTime time.Duration `envconfig:"DB_CONMAX_LIFE_TIME" default:"5m"`
}

// DSN returns the lib/pq connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadDatabase reads only the DB_* variables
func LoadDatabase(cfg *DatabaseConfig) error {
	return envconfig.Process("", cfg)
}
