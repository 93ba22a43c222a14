package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"
)

type Config struct {
	Environment   string `env:"ENVIRONMENT" envDefault:"development"`
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"memory"`
	AuthRequired  bool   `env:"AUTH_REQUIRED" envDefault:"false"`
	SeedDemoData  bool   `env:"SEED_DEMO_DATA" envDefault:"true"`
	Server        struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Log struct {
		Level      string `env:"LEVEL" envDefault:"info"`
		Format     string `env:"FORMAT" envDefault:"text"`
		File       string `env:"FILE"`
		MaxSizeMB  int    `env:"MAX_SIZE_MB" envDefault:"50"`
		MaxBackups int    `env:"MAX_BACKUPS" envDefault:"5"`
	} `envPrefix:"LOG_"`
	Database struct {
		DSN                string `env:"DSN"`
		AutoMigrate        bool   `env:"AUTO_MIGRATE" envDefault:"false"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	Mongo struct {
		URI            string `env:"URI"`
		Database       string `env:"DATABASE" envDefault:"team_schedule"`
		ConnectTimeout int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout   int    `env:"QUERY_TIMEOUT" envDefault:"10"`
	} `envPrefix:"MONGO_"`
	InitialAdmin struct {
		Username string `env:"USERNAME" envDefault:"admin"`
		Password string `env:"PASSWORD"`
	} `envPrefix:"INITIAL_ADMIN_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"336"` // 小时，14 天
		Secret     string `env:"SECRET" envDefault:"dev-secret-change-in-production"`
	} `envPrefix:"JWT_"`
	Schedule struct {
		Timezone string `env:"TIMEZONE" envDefault:"UTC"`
	} `envPrefix:"SCHEDULE_"`
	Email struct {
		CoverageRecipient string `env:"COVERAGE_RECIPIENT"`
		SMTP              struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		Enabled        bool   `env:"ENABLED" envDefault:"false"`
		DSN            string `env:"DSN"`
		Queue          string `env:"QUEUE" envDefault:"email_queue"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Enabled          bool   `env:"ENABLED" envDefault:"false"`
		Host             string `env:"HOST" envDefault:"localhost"`
		Port             int    `env:"PORT" envDefault:"6379"`
		Password         string `env:"PASSWORD"`
		DB               int    `env:"DB" envDefault:"0"`
		ConnectTimeout   int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationTimeout int    `env:"OPERATION_TIMEOUT" envDefault:"2"`
		CacheTTL         int    `env:"CACHE_TTL" envDefault:"300"`
	} `envPrefix:"REDIS_"`
	Seed struct {
		EmailDomain  string `env:"EMAIL_DOMAIN" envDefault:"example.com"`
		UserPassword string `env:"USER_PASSWORD" envDefault:"changeme"`
	} `envPrefix:"SEED_"`
}

func LoadConfig() (*Config, error) {
	// .env 文件只在本地开发时存在，找不到不算错误
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate 只检查当前选用的组件所需的配置，内存模式下不需要任何外部依赖
func (cfg *Config) Validate() error {
	switch cfg.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if cfg.Database.DSN == "" {
			return errors.New("DATABASE_DSN is required when STORAGE_DRIVER=postgres")
		}
	case StorageMongo:
		if cfg.Mongo.URI == "" {
			return errors.New("MONGO_URI is required when STORAGE_DRIVER=mongo")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	if cfg.RabbitMQ.Enabled && cfg.RabbitMQ.DSN == "" {
		return errors.New("RABBITMQ_DSN is required when RABBITMQ_ENABLED=true")
	}

	if cfg.RabbitMQ.Enabled && cfg.Email.CoverageRecipient == "" {
		return errors.New("EMAIL_COVERAGE_RECIPIENT is required when RABBITMQ_ENABLED=true")
	}

	if _, err := cfg.Location(); err != nil {
		return fmt.Errorf("invalid SCHEDULE_TIMEZONE: %w", err)
	}

	return nil
}

func (cfg *Config) Location() (*time.Location, error) {
	return time.LoadLocation(cfg.Schedule.Timezone)
}

func (cfg *Config) QueryTimeout() time.Duration {
	return time.Duration(cfg.Database.QueryTimeout) * time.Second
}

func (cfg *Config) TransactionTimeout() time.Duration {
	return time.Duration(cfg.Database.TransactionTimeout) * time.Second
}
