package config

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type AppConfig struct {
	API          *APIConfig
	Gin          *GinConfig
	Database     *DatabaseConfig
	Postgres     *PostgresConfig
	Reservations *ReservationsConfig
	Kafka        *KafkaConfig
	Seed         *SeedConfig
}

type APIConfig struct {
	Environment        string
	Port               string
	BaseURL            string        `mapstructure:"base_url"`
	AllowedCORSDomains []string      `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string        `mapstructure:"jwt_signing_key"`
	JWTTTL             time.Duration `mapstructure:"jwt_ttl"`
	Timezone           string
}

type GinConfig struct {
	Mode string
}

type DatabaseConfig struct {
	Driver      string
	AutoMigrate bool   `mapstructure:"auto_migrate"`
	SQLitePath  string `mapstructure:"sqlite_path"`
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DB       string
	SSLMode  string `mapstructure:"sslmode"`
}

func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DB, c.SSLMode)
}

// ReservationsConfig holds settings that may change while the server runs.
type ReservationsConfig struct {
	OverlapWindow time.Duration `mapstructure:"overlap_window"`

	window atomic.Int64
}

// Window returns the current overlap window. It falls back to the loaded
// value until Store has been called.
func (c *ReservationsConfig) Window() time.Duration {
	if w := c.window.Load(); w > 0 {
		return time.Duration(w)
	}
	return c.OverlapWindow
}

func (c *ReservationsConfig) Store(d time.Duration) {
	c.window.Store(int64(d))
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

func (c *KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0 && c.Topic != ""
}

type SeedConfig struct {
	MenuFile string `mapstructure:"menu_file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.jwt_ttl", "24h")
	v.SetDefault("api.timezone", "UTC")
	v.SetDefault("gin.mode", "debug")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("reservations.overlap_window", "2h")
	v.SetDefault("kafka.topic", "restaurant.events")
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("seed.menu_file", "")
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("app")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return v
}

func decode(v *viper.Viper) (*AppConfig, error) {
	conf := &AppConfig{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("v.Unmarshal -> %w", err)
	}

	if conf.API == nil || conf.API.JWTSigningKey == "" {
		return nil, fmt.Errorf("api.jwt_signing_key is required")
	}
	if conf.Reservations.OverlapWindow <= 0 {
		return nil, fmt.Errorf("reservations.overlap_window must be positive")
	}
	if conf.Database.Driver != "postgres" && conf.Database.Driver != "sqlite" {
		return nil, fmt.Errorf("database.driver must be postgres or sqlite, got %q", conf.Database.Driver)
	}
	if _, err := time.LoadLocation(conf.API.Timezone); err != nil {
		return nil, fmt.Errorf("api.timezone -> %w", err)
	}

	return conf, nil
}

func Load(path string) (*AppConfig, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	return decode(v)
}

// LoadAndWatch loads the config and keeps the reservation window in sync with
// the file. Other sections need a restart to take effect.
func LoadAndWatch(path string) (*AppConfig, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("v.ReadInConfig -> %w", err)
	}

	conf, err := decode(v)
	if err != nil {
		return nil, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		reloaded, err := decode(v)
		if err != nil {
			zap.L().Warn("ignoring invalid config change", zap.String("file", e.Name), zap.Error(err))
			return
		}

		conf.Reservations.Store(reloaded.Reservations.OverlapWindow)
		zap.L().Info("config reloaded",
			zap.String("file", e.Name),
			zap.Duration("reservations.overlap_window", conf.Reservations.Window()),
		)
	})
	v.WatchConfig()

	return conf, nil
}
