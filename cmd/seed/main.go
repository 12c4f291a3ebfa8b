package main

import (
	"os"

	"github.com/oggyb/cardswap/internal/config"
	"github.com/oggyb/cardswap/internal/db"
	"github.com/oggyb/cardswap/internal/logger"
)

func main() {
	cfg := config.New()
	log := logger.InitFromConfig(cfg)

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		os.Exit(1)
	}

	if err := db.SeedTestData(database); err != nil {
		log.Error("failed to seed", "err", err)
		os.Exit(1)
	}

	log.Info("seeding completed")
}
