package main

import (
	"go.uber.org/zap"

	"github.com/yatube/yatube/cache"
	"github.com/yatube/yatube/config"
	"github.com/yatube/yatube/models"
	"github.com/yatube/yatube/routes"
	"github.com/yatube/yatube/storage"
	"github.com/yatube/yatube/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	db := config.InitDatabase(models.All()...)

	media, err := storage.New(cfg)
	if err != nil {
		utils.Sugar.Fatalf("media storage: %v", err)
	}

	views := cache.New(viewBackend(cfg), cfg.IndexCacheTTL(), cache.WithLogger(utils.Logger.Named("viewcache")))

	r := routes.SetupRouter(db, views, media)

	utils.Logger.Info("starting server",
		zap.String("port", cfg.AppPort),
		zap.String("db", cfg.DBDriver),
		zap.String("cache", cfg.CacheBackend),
		zap.String("storage", cfg.StorageBackend),
	)
	if err := utils.GraceServer(":"+cfg.AppPort, r, cfg.TLSDomains...); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

// viewBackend picks Redis for the view cache when configured and reachable
// through the shared client, and the in-process map otherwise.
func viewBackend(cfg config.AppConfig) cache.Backend {
	if cfg.CacheBackend == "redis" {
		if rc := utils.GetRedis(); rc != nil {
			return cache.NewRedisBackend(rc, cache.DefaultRedisPrefix)
		}
		utils.Logger.Warn("CacheBackend is redis but Redis is disabled, using memory")
	}
	return cache.NewMemoryBackend()
}
