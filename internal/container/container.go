package container

import (
	"castlist-be/internal/auth"
	"castlist-be/internal/config"
	"castlist-be/internal/repository"
	"castlist-be/internal/service"
	"castlist-be/pkg/database"
	"castlist-be/pkg/logger"
	"castlist-be/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          *database.PostgresDB
	RedisClient *redis.Client
	Store       repository.CastlistStore
	JWTManager  *auth.JWTManager
	Castlists   service.CastlistService
}

// New creates a new dependency injection container around an already
// connected database. Redis is optional; without it reads skip the cache.
func New(cfg *config.Config, log *logger.Logger, db *database.PostgresDB) (*Container, error) {
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			log.Info("Redis client initialized successfully")
		}
	} else {
		log.Info("Redis URL not configured, proceeding without caching")
	}

	store := repository.NewPostgresStore(db)

	var cache *service.CacheService
	if redisClient != nil {
		cache = service.NewCacheService(redisClient, log.Logger)
	}

	return &Container{
		Config:      cfg,
		Logger:      log,
		DB:          db,
		RedisClient: redisClient,
		Store:       store,
		JWTManager:  auth.NewJWTManager(cfg.JWTSecret, cfg.TokenDuration),
		Castlists:   service.NewCastlistService(store, cache, log.Logger),
	}, nil
}

// GetCastlistService returns the castlist service
func (c *Container) GetCastlistService() service.CastlistService {
	return c.Castlists
}

// GetJWTManager returns the JWT manager
func (c *Container) GetJWTManager() *auth.JWTManager {
	return c.JWTManager
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetDB returns the database handle (may be nil in tests)
func (c *Container) GetDB() *database.PostgresDB {
	return c.DB
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}
