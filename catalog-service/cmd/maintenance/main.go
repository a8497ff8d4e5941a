// Команда maintenance выполняет разовые операции над каталогом.
// Запускается при остановленных писателях:
//
//	maintenance recompute-closures
//	maintenance prune-empty-categories
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"spectre/catalog-service/internal/app/catalog/config"
	"spectre/catalog-service/internal/app/catalog/repository"
	"spectre/catalog-service/internal/app/catalog/service"
	"spectre/catalog-service/internal/app/catalog/util"
	"spectre/pkg/logger"
)

const serviceName = "catalog-maintenance"

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s <recompute-closures|prune-empty-categories> [flags]\n", os.Args[0])
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	command := os.Args[1]

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	timeout := fs.Duration("timeout", 30*time.Minute, "maximum run time")
	_ = fs.Parse(os.Args[2:])

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(serviceName, cfg.Log.Level, cfg.Log.Format)

	mongoClient, err := util.ConnectMongoDB(cfg.MongoDB.URI)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer util.DisconnectMongoDB(mongoClient)

	db := mongoClient.Database(cfg.MongoDB.Database)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)

	var cache util.RedisCache
	if cfg.Redis.Enabled {
		if redisClient, err := util.NewRedisClient(cfg.Redis.Address(), cfg.Redis.Password, cfg.Redis.DB); err == nil {
			defer redisClient.Close()
			cache = redisClient
		} else {
			logger.Warn().Err(err).Msg("Redis unavailable, category cache will not be invalidated")
		}
	}

	categoryService := service.NewCategoryService(categoryRepo, productRepo, cache, cfg.Catalog.SlugLocale)
	productService := service.NewProductService(productRepo, categoryRepo, categoryService, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	started := time.Now()
	switch command {
	case "recompute-closures":
		result, err := productService.RecomputeAllClosures(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("Closure recomputation failed")
			os.Exit(1)
		}
		logger.Info().
			Int("scanned", result.Scanned).
			Int("updated", result.Updated).
			Dur("took", time.Since(started)).
			Msg("Closures recomputed")

	case "prune-empty-categories":
		removed, err := categoryService.PruneEmpty(ctx)
		if err != nil {
			logger.Error().Err(err).Int("removed", removed).Msg("Category pruning failed")
			os.Exit(1)
		}
		logger.Info().
			Int("removed", removed).
			Dur("took", time.Since(started)).
			Msg("Empty categories pruned")

	default:
		usage()
	}
}
