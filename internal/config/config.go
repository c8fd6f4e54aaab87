package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

/*
把 init 跟 read 分開
init : 需要設置 viper watch 與 onConfigChange
read : 一般讀取  需要讀寫鎖
*/
var (
	singleton *configSingleton
	once      sync.Once
)

// ConfigPathEnv 指定設定檔位置，未設定時只讀環境變數
const ConfigPathEnv = "STOREFRONT_CONFIG"

type configSingleton struct {
	config *Config
	v      *viper.Viper
	mu     sync.RWMutex
}

type Config struct {
	ServerPort      string        `mapstructure:"SERVER_PORT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`

	LogLevel      string `mapstructure:"LOG_LEVEL"`
	LogPretty     bool   `mapstructure:"LOG_PRETTY"`
	LogKafkaTopic string `mapstructure:"LOG_KAFKA_TOPIC"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// memory | redis
	CartBackend string        `mapstructure:"CART_BACKEND"`
	CartTTL     time.Duration `mapstructure:"CART_TTL"`

	// memory | redis | sqlite | postgres
	ProfileBackend string `mapstructure:"PROFILE_BACKEND"`
	SQLitePath     string `mapstructure:"SQLITE_PATH"`
	PostgresDSN    string `mapstructure:"POSTGRES_DSN"`

	// http | fixture
	CatalogSource  string        `mapstructure:"CATALOG_SOURCE"`
	CatalogBaseURL string        `mapstructure:"CATALOG_BASE_URL"`
	CatalogFixture string        `mapstructure:"CATALOG_FIXTURE"`
	CatalogTimeout time.Duration `mapstructure:"CATALOG_TIMEOUT"`

	// memory | redis
	CacheBackend string        `mapstructure:"CACHE_BACKEND"`
	CacheSize    int           `mapstructure:"CACHE_SIZE"`
	CacheTTL     time.Duration `mapstructure:"CACHE_TTL"`

	CheckoutSessionTTL time.Duration `mapstructure:"CHECKOUT_SESSION_TTL"`

	PaystackPublicKey string `mapstructure:"PAYSTACK_PUBLIC_KEY"`
	PaymentCurrency   string `mapstructure:"PAYMENT_CURRENCY"`
	UsdToNgnRate      string `mapstructure:"USD_TO_NGN_RATE"`

	KafkaBrokers    []string `mapstructure:"KAFKA_BROKERS"`
	KafkaEventTopic string   `mapstructure:"KAFKA_EVENT_TOPIC"`
	EventStoreURL   string   `mapstructure:"EVENTSTORE_URL"`

	// memory | redis
	RateLimitBackend  string  `mapstructure:"RATE_LIMIT_BACKEND"`
	RateLimitCapacity int     `mapstructure:"RATE_LIMIT_CAPACITY"`
	RateLimitRate     float64 `mapstructure:"RATE_LIMIT_RATE"`
}

var defaults = map[string]any{
	"SERVER_PORT":      "8080",
	"SHUTDOWN_TIMEOUT": 30 * time.Second,

	"LOG_LEVEL":       "info",
	"LOG_PRETTY":      false,
	"LOG_KAFKA_TOPIC": "",

	"REDIS_ADDR":     "localhost:6379",
	"REDIS_PASSWORD": "",
	"REDIS_DB":       0,

	"CART_BACKEND": "memory",
	"CART_TTL":     24 * time.Hour,

	"PROFILE_BACKEND": "memory",
	"SQLITE_PATH":     "storefront.db",
	"POSTGRES_DSN":    "",

	"CATALOG_SOURCE":   "http",
	"CATALOG_BASE_URL": "https://fakestoreapi.com",
	"CATALOG_FIXTURE":  "",
	"CATALOG_TIMEOUT":  10 * time.Second,

	"CACHE_BACKEND": "memory",
	"CACHE_SIZE":    256,
	"CACHE_TTL":     5 * time.Minute,

	"CHECKOUT_SESSION_TTL": 30 * time.Minute,

	"PAYSTACK_PUBLIC_KEY": "",
	"PAYMENT_CURRENCY":    "NGN",
	"USD_TO_NGN_RATE":     "1650",

	"KAFKA_BROKERS":     []string{},
	"KAFKA_EVENT_TOPIC": "",
	"EVENTSTORE_URL":    "",

	"RATE_LIMIT_BACKEND":  "memory",
	"RATE_LIMIT_CAPACITY": 100,
	"RATE_LIMIT_RATE":     10.0,
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	return v
}

func (c *Config) Validate() error {
	var errs []error
	if c.ServerPort == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	switch c.CartBackend {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("unknown CART_BACKEND %q", c.CartBackend))
	}
	switch c.CacheBackend {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend))
	}
	switch c.RateLimitBackend {
	case "memory", "redis":
	default:
		errs = append(errs, fmt.Errorf("unknown RATE_LIMIT_BACKEND %q", c.RateLimitBackend))
	}
	switch c.CatalogSource {
	case "http":
	case "fixture":
		if c.CatalogFixture == "" {
			errs = append(errs, errors.New("CATALOG_FIXTURE is required for fixture catalog"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CATALOG_SOURCE %q", c.CatalogSource))
	}
	if c.ProfileBackend == "postgres" && c.PostgresDSN == "" {
		errs = append(errs, errors.New("POSTGRES_DSN is required for postgres profile backend"))
	}
	return errors.Join(errs...)
}

/*
單純回傳錯誤  由外部決定要不要 Fatal
path 為空時只讀環境變數與預設值
*/
func LoadConfig(path string) (*Config, error) {
	return load(newViper(), path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if strings.HasSuffix(path, ".env") {
			v.SetConfigType("env")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cf := &Config{}
	if err := v.Unmarshal(cf); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cf.Validate(); err != nil {
		return nil, err
	}
	return cf, nil
}

// GetConfig 第一次呼叫時載入 STOREFRONT_CONFIG，之後檔案變動會自動重新載入
func GetConfig() *Config {
	initConfig()
	singleton.mu.RLock()
	defer singleton.mu.RUnlock()
	return singleton.config
}

func initConfig() {
	once.Do(func() {
		v := newViper()
		path := v.GetString(ConfigPathEnv)
		cf, err := load(v, path)
		if err != nil {
			log.Fatal().Err(err).Msg("error read config")
		}
		singleton = &configSingleton{config: cf, v: v}

		if path == "" {
			return
		}
		v.OnConfigChange(func(e fsnotify.Event) {
			cf := &Config{}
			if err := v.Unmarshal(cf); err != nil {
				log.Error().Err(err).Str("file", e.Name).Msg("failed to reload config file")
				return
			}
			if err := cf.Validate(); err != nil {
				log.Error().Err(err).Str("file", e.Name).Msg("reloaded config is invalid, keep previous")
				return
			}
			singleton.mu.Lock()
			singleton.config = cf
			singleton.mu.Unlock()
			log.Info().Str("file", e.Name).Msg("config reloaded")
		})
		v.WatchConfig()
	})
}
