package appcontext

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/EventStore/EventStore-Client-Go/v4/esdb"
	"github.com/RoyceAzure/lab/storefront/internal/cart"
	"github.com/RoyceAzure/lab/storefront/internal/catalog"
	"github.com/RoyceAzure/lab/storefront/internal/checkout"
	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/infra/cache"
	"github.com/RoyceAzure/lab/storefront/internal/infra/eventdb"
	"github.com/RoyceAzure/lab/storefront/internal/infra/kv"
	"github.com/RoyceAzure/lab/storefront/internal/infra/producer"
	"github.com/RoyceAzure/lab/storefront/internal/infra/redisclient"
	"github.com/RoyceAzure/lab/storefront/internal/logger"
	"github.com/RoyceAzure/lab/storefront/internal/payment"
	"github.com/RoyceAzure/lab/storefront/internal/profile"
	"github.com/RoyceAzure/lab/storefront/internal/ratelimit"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	redisPingTimeout = 5 * time.Second
	redisCachePrefix = "storefront:catalog"
	redisKVPrefix    = "storefront:kv"
	redisRatePrefix  = "storefront:ratelimit"
)

type ApplicationContext struct {
	Cf     *config.Config
	Logger *zerolog.Logger

	RedisClient    *redis.Client
	KVStore        kv.Store
	CatalogCache   cache.Cache
	CatalogSource  catalog.Source
	EventStore     *esdb.Client
	EventProducer  producer.Producer
	LogWriter      *logger.KafkaWriter
	Publisher      checkout.EventPublisher
	Gateway        *payment.Gateway
	RateLimiter    ratelimit.Limiter
	keyedLimiter   *ratelimit.KeyedLimiter
	CartStore      cart.IStore
	ProfileRepo    *profile.Repository
	ProfileService profile.IService
	QueryLayer     catalog.IQueryLayer
	CheckoutSvc    checkout.IService
	checkoutSvc    *checkout.Service
}

func NewApplicationContext(cf *config.Config) (*ApplicationContext, error) {
	app := ApplicationContext{
		Cf: cf,
	}
	if err := app.Init(); err != nil {
		// 已建立的連線要釋放
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = app.Shutdown(shutdownCtx)
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) Init() error {
	steps := []func() error{
		app.setUpLogger,
		app.setUpRedisClient,
		app.setUpKVStore,
		app.setUpProfileService,
		app.setUpCartStore,
		app.setUpCatalog,
		app.setUpGateway,
		app.setUpPublisher,
		app.setUpCheckoutService,
		app.setUpRateLimiter,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

func (app *ApplicationContext) usesRedis() bool {
	cf := app.Cf
	return cf.CartBackend == "redis" ||
		cf.CacheBackend == "redis" ||
		cf.RateLimitBackend == "redis" ||
		cf.ProfileBackend == string(kv.BackendRedis)
}

func (app *ApplicationContext) setUpLogger() error {
	cfg := logger.Config{
		Level:  app.Cf.LogLevel,
		Pretty: app.Cf.LogPretty,
	}
	if app.Cf.LogKafkaTopic != "" && len(app.Cf.KafkaBrokers) > 0 {
		p, err := producer.New(producer.Config{
			Brokers:      app.Cf.KafkaBrokers,
			Topic:        app.Cf.LogKafkaTopic,
			RequiredAcks: 1,
			BatchTimeout: 10 * time.Millisecond,
			WriteTimeout: 5 * time.Second,
		})
		if err != nil {
			return fmt.Errorf("setup log producer: %w", err)
		}
		app.LogWriter = logger.NewKafkaWriter(p)
		cfg.Extra = append(cfg.Extra, app.LogWriter)
	}
	l := logger.New(cfg)
	app.Logger = &l
	app.Logger.Info().Str("level", l.GetLevel().String()).Bool("kafka", app.LogWriter != nil).Msg("Finish setup logger")
	return nil
}

func (app *ApplicationContext) setUpRedisClient() error {
	if !app.usesRedis() {
		return nil
	}
	app.Logger.Info().Str("addr", app.Cf.RedisAddr).Msg("Start setup redis client")
	client := redisclient.GetRedisClient(app.Cf.RedisAddr,
		redisclient.WithPassword(app.Cf.RedisPassword),
		redisclient.WithDB(app.Cf.RedisDB),
	)
	if err := redisclient.Ping(context.Background(), client, redisPingTimeout); err != nil {
		return err
	}
	app.RedisClient = client
	app.Logger.Info().Msg("Finish setup redis client")
	return nil
}

func (app *ApplicationContext) setUpKVStore() error {
	app.Logger.Info().Str("backend", app.Cf.ProfileBackend).Msg("Start setup kv store")
	store, err := kv.New(kv.Options{
		Backend:     kv.Backend(app.Cf.ProfileBackend),
		RedisClient: app.RedisClient,
		RedisPrefix: redisKVPrefix,
		SQLitePath:  app.Cf.SQLitePath,
		PostgresDSN: app.Cf.PostgresDSN,
	})
	if err != nil {
		return fmt.Errorf("setup kv store: %w", err)
	}
	app.KVStore = store
	app.Logger.Info().Msg("Finish setup kv store")
	return nil
}

func (app *ApplicationContext) setUpProfileService() error {
	app.ProfileRepo = profile.NewRepository(app.KVStore)
	app.ProfileService = profile.NewService(app.ProfileRepo, app.Logger)
	return nil
}

func (app *ApplicationContext) setUpCartStore() error {
	app.Logger.Info().Str("backend", app.Cf.CartBackend).Msg("Start setup cart store")
	var repo cart.Repository
	switch app.Cf.CartBackend {
	case "redis":
		repo = cart.NewRedisRepo(app.RedisClient, app.Cf.CartTTL)
	default:
		repo = cart.NewMemoryRepo()
	}
	app.CartStore = cart.NewStore(repo, app.Logger)
	app.Logger.Info().Msg("Finish setup cart store")
	return nil
}

func (app *ApplicationContext) setUpCatalog() error {
	app.Logger.Info().Str("source", app.Cf.CatalogSource).Str("cache", app.Cf.CacheBackend).Msg("Start setup catalog")
	switch app.Cf.CatalogSource {
	case "fixture":
		src, err := catalog.LoadFixtureSource(app.Cf.CatalogFixture)
		if err != nil {
			return err
		}
		app.CatalogSource = src
	default:
		src, err := catalog.NewHTTPSource(app.Cf.CatalogBaseURL, app.Cf.CatalogTimeout)
		if err != nil {
			return err
		}
		app.CatalogSource = src
	}

	switch app.Cf.CacheBackend {
	case "redis":
		app.CatalogCache = cache.NewRedisCache(app.RedisClient, redisCachePrefix)
	default:
		lru, err := cache.NewLRUCache(app.Cf.CacheSize)
		if err != nil {
			return err
		}
		app.CatalogCache = lru
	}

	app.QueryLayer = catalog.NewQueryLayer(app.CatalogSource, app.CatalogCache, app.Cf.CacheTTL, app.Logger)
	app.Logger.Info().Msg("Finish setup catalog")
	return nil
}

func (app *ApplicationContext) setUpGateway() error {
	rate, err := decimal.NewFromString(app.Cf.UsdToNgnRate)
	if err != nil {
		return fmt.Errorf("invalid USD_TO_NGN_RATE %q: %w", app.Cf.UsdToNgnRate, err)
	}
	if app.Cf.PaystackPublicKey == "" {
		app.Logger.Warn().Msg("PAYSTACK_PUBLIC_KEY is empty, payment widget cannot be initialised")
	}
	app.Gateway = payment.NewGateway(payment.Config{
		PublicKey: app.Cf.PaystackPublicKey,
		Currency:  app.Cf.PaymentCurrency,
		Rate:      rate,
	})
	return nil
}

// setUpPublisher kafka 與 eventstore 皆為選用
func (app *ApplicationContext) setUpPublisher() error {
	var publishers checkout.MultiPublisher

	if app.Cf.KafkaEventTopic != "" && len(app.Cf.KafkaBrokers) > 0 {
		app.Logger.Info().Str("topic", app.Cf.KafkaEventTopic).Msg("Start setup kafka event producer")
		p, err := producer.New(producer.Config{
			Brokers:       app.Cf.KafkaBrokers,
			Topic:         app.Cf.KafkaEventTopic,
			RequiredAcks:  -1,
			BatchTimeout:  10 * time.Millisecond,
			WriteTimeout:  10 * time.Second,
			RetryAttempts: 3,
			RetryDelay:    200 * time.Millisecond,
		})
		if err != nil {
			return fmt.Errorf("setup event producer: %w", err)
		}
		app.EventProducer = p
		publishers = append(publishers, producer.NewEventPublisher(p))
	}

	if app.Cf.EventStoreURL != "" {
		app.Logger.Info().Msg("Start setup eventstore client")
		client, err := eventdb.Connect(app.Cf.EventStoreURL)
		if err != nil {
			return err
		}
		app.EventStore = client
		publishers = append(publishers, eventdb.NewEventDao(client))
	}

	if len(publishers) == 0 {
		app.Publisher = checkout.NopPublisher{}
		return nil
	}
	app.Publisher = publishers
	return nil
}

func (app *ApplicationContext) setUpCheckoutService() error {
	app.checkoutSvc = checkout.NewService(app.CartStore, app.ProfileRepo, app.Gateway, app.Publisher, app.Logger,
		checkout.WithSessionTTL(app.Cf.CheckoutSessionTTL))
	app.CheckoutSvc = app.checkoutSvc
	return nil
}

func (app *ApplicationContext) setUpRateLimiter() error {
	cfg := ratelimit.Config{
		Capacity: app.Cf.RateLimitCapacity,
		Rate:     app.Cf.RateLimitRate,
	}
	switch app.Cf.RateLimitBackend {
	case "redis":
		app.RateLimiter = ratelimit.NewRedisLimiter(app.RedisClient, cfg, redisRatePrefix, app.Logger)
	default:
		app.keyedLimiter = ratelimit.NewKeyedLimiter(cfg)
		app.RateLimiter = app.keyedLimiter
	}
	return nil
}

// Shutdown 依建立的相反順序釋放資源，錯誤不中斷流程
func (app *ApplicationContext) Shutdown(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		var errs []error
		if app.keyedLimiter != nil {
			app.keyedLimiter.Stop()
		}
		if app.checkoutSvc != nil {
			app.checkoutSvc.Stop()
		}
		if app.EventProducer != nil {
			if err := app.EventProducer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close event producer: %w", err))
			}
		}
		if app.EventStore != nil {
			if err := app.EventStore.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close eventstore: %w", err))
			}
		}
		if closer, ok := app.KVStore.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close kv store: %w", err))
			}
		}
		if app.RedisClient != nil {
			if err := app.RedisClient.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close redis: %w", err))
			}
		}
		// 最後關閉 log 輸出
		if app.LogWriter != nil {
			if err := app.LogWriter.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close log writer: %w", err))
			}
		}
		done <- errors.Join(errs...)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("application shutdown: %w", ctx.Err())
	}
}
