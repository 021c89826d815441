package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ChefJodlak/prooptica-sub000/internal/catalog"
	appconfig "github.com/ChefJodlak/prooptica-sub000/internal/config"
	"github.com/ChefJodlak/prooptica-sub000/internal/wizard"
	"github.com/ChefJodlak/prooptica-sub000/pkg/logging"
)

const catalogLoadTimeout = 10 * time.Second

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildWizardStore picks Redis-backed sessions when a client is available and
// falls back to process memory otherwise.
func BuildWizardStore(redisClient *redis.Client, cfg *appconfig.Config, logger *logging.Logger) wizard.Store {
	ttl := wizard.DefaultSessionTTL
	if cfg != nil && cfg.WizardSessionTTL > 0 {
		ttl = cfg.WizardSessionTTL
	}
	if redisClient == nil {
		if logger != nil {
			logger.Warn("redis not configured; wizard sessions kept in memory")
		}
		return wizard.NewMemoryStore(ttl)
	}
	return wizard.NewRedisStore(redisClient, ttl)
}

// BuildPostgresPool connects to DATABASE_URL. An empty URL or a failed ping
// returns nil.
func BuildPostgresPool(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) *pgxpool.Pool {
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Warn("postgres pool init failed", "error", err)
		return nil
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Warn("postgres not available", "error", err)
		pool.Close()
		return nil
	}
	return pool
}

// CatalogLoader is satisfied by catalog.PostgresRepository.
type CatalogLoader interface {
	Load(ctx context.Context) (*catalog.Catalog, error)
}

// SpecialistAllowlist is satisfied by portal.Directory.
type SpecialistAllowlist interface {
	Has(specialistID string) bool
}

// BuildCatalog loads the catalog from loader, falling back to the built-in
// data when loader is nil or fails. Loaded specialists missing from allowed
// are dropped with a warning, since their calendars cannot be fetched.
func BuildCatalog(ctx context.Context, loader CatalogLoader, allowed SpecialistAllowlist, logger *logging.Logger) *catalog.Catalog {
	if logger == nil {
		logger = logging.Default()
	}
	if loader == nil {
		logger.Info("using built-in catalog")
		return catalog.Default()
	}
	loadCtx, cancel := context.WithTimeout(ctx, catalogLoadTimeout)
	defer cancel()
	c, err := loader.Load(loadCtx)
	if err != nil {
		logger.Warn("catalog load failed; using built-in catalog", "error", err)
		return catalog.Default()
	}
	if allowed != nil {
		kept, dropped, err := c.KeepSpecialists(allowed.Has)
		if err != nil {
			logger.Warn("catalog restriction failed; using built-in catalog", "error", err)
			return catalog.Default()
		}
		if len(dropped) > 0 {
			logger.Warn("catalog specialists missing from portal directory; dropped", "specialists", dropped)
		}
		c = kept
	}
	logger.Info("catalog loaded from postgres",
		"salons", len(c.Salons()),
		"specialists", len(c.Specialists()),
		"services", len(c.Services()),
	)
	return c
}
