// Command seed writes kiosk reason taxonomies and staff departments onto
// property documents.
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"propdesk-service/internal/domain/entity"
	"propdesk-service/internal/infrastructure/config"
	"propdesk-service/internal/infrastructure/persistence"
	"propdesk-service/internal/interface/repository"
	"propdesk-service/pkg/logger"
)

func main() {
	var (
		configPath  = flag.String("config", "configs/reason_maps.yaml", "reason taxonomy file")
		properties  = flag.String("property", "", "comma-separated property ids (default: all in the file)")
		pruneLegacy = flag.Bool("prune-legacy", false, "remove the legacy singular reason fields")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", "error", err)
	}
	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()

	fh, err := os.Open(*configPath)
	if err != nil {
		log.Fatal("Failed to open seed file", "path", *configPath, "error", err)
	}
	file, err := parseSeedFile(fh)
	fh.Close()
	if err != nil {
		log.Fatal("Invalid seed file", "path", *configPath, "error", err)
	}

	targets := file.targets(*properties)
	if len(targets) == 0 {
		log.Fatal("No properties to seed; pass -property or list them in the file")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, db, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoUser, cfg.MongoPassword)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	defer client.Disconnect(context.Background())

	props := repository.NewMongoPropertyRepository(db)

	failed := 0
	for _, pid := range targets {
		err := props.SeedReasons(ctx, pid, file.seedFor(pid, *pruneLegacy))
		switch {
		case errors.Is(err, entity.ErrNotFound):
			log.Warn("Property not found, skipped", "propertyID", pid)
		case err != nil:
			failed++
			log.Error("Failed to seed property", "propertyID", pid, "error", err)
		default:
			log.Info("Seeded property", "propertyID", pid, "pruneLegacy", *pruneLegacy)
		}
	}

	if failed > 0 {
		log.Fatal("Seeding finished with errors", "failed", failed, "total", len(targets))
	}
	log.Info("Seeding complete", "total", len(targets))
}
