package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type AppConfig struct {
	API           *APIConfig           `mapstructure:"api"`
	Gin           *GinConfig           `mapstructure:"gin"`
	Postgres      *PostgresConfig      `mapstructure:"postgres"`
	Minio         *MinioConfig         `mapstructure:"minio"`
	Redis         *RedisConfig         `mapstructure:"redis"`
	Notifications *NotificationsConfig `mapstructure:"notifications"`
	Uploads       *UploadsConfig       `mapstructure:"uploads"`
	RateLimit     *RateLimitConfig     `mapstructure:"rate_limit"`
}

type APIConfig struct {
	Environment        string   `mapstructure:"environment"`
	Port               string   `mapstructure:"port"`
	BaseURL            string   `mapstructure:"base_url"`
	PublicURL          string   `mapstructure:"public_url"`
	LogLevel           string   `mapstructure:"log_level"`
	AllowedCORSDomains []string `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string   `mapstructure:"jwt_signing_key"`
	JWTExpiryHours     int      `mapstructure:"jwt_expiry_hours"`
	AdminEmails        []string `mapstructure:"admin_emails"`
	EventName          string   `mapstructure:"event_name"`
	Timezone           string   `mapstructure:"timezone"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DB, c.SSLMode)
}

type MinioConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type RedisConfig struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	TTLMinutes int    `mapstructure:"ttl_minutes"`
}

type NotificationsConfig struct {
	// Driver is one of "log", "rabbitmq" or "kafka".
	Driver       string   `mapstructure:"driver"`
	RabbitMQURL  string   `mapstructure:"rabbitmq_url"`
	Queue        string   `mapstructure:"queue"`
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
	KafkaTopic   string   `mapstructure:"kafka_topic"`
}

type UploadsConfig struct {
	MaxFileSizeMB       int `mapstructure:"max_file_size_mb"`
	MaxAttachmentSizeMB int `mapstructure:"max_attachment_size_mb"`
}

type RateLimitConfig struct {
	MessagesPerMinute int `mapstructure:"messages_per_minute"`
	Burst             int `mapstructure:"burst"`
}

// Load reads the yaml file at path and overlays environment variables, so
// that api.port can be overridden with API_PORT.
func Load(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	loaded = v

	return conf, nil
}

var loaded *viper.Viper

// Watch calls onChange with the reloaded configuration whenever the file
// read by Load is written.
func Watch(onChange func(conf *AppConfig)) {
	if loaded == nil {
		return
	}

	loaded.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) {
			return
		}

		conf := &AppConfig{}
		if err := loaded.Unmarshal(conf); err != nil {
			return
		}
		onChange(conf)
	})
	loaded.WatchConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.log_level", "info")
	v.SetDefault("api.jwt_expiry_hours", 72)
	v.SetDefault("api.timezone", "UTC")
	v.SetDefault("gin.mode", "release")
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("redis.ttl_minutes", 10)
	v.SetDefault("notifications.driver", "log")
	v.SetDefault("notifications.queue", "stand.notifications")
	v.SetDefault("notifications.kafka_topic", "stand-notifications")
	v.SetDefault("uploads.max_file_size_mb", 50)
	v.SetDefault("uploads.max_attachment_size_mb", 10)
	v.SetDefault("rate_limit.messages_per_minute", 30)
	v.SetDefault("rate_limit.burst", 5)
}
