// Command seed loads the national location taxonomy from CSV files into the
// portal database. It replaces the whole taxonomy in one shot.
package main

import (
	"context"
	"flag"
	"os"

	"vecinal/internal/location/seed"
	locstore "vecinal/internal/location/store"
	"vecinal/internal/platform/config"
	"vecinal/internal/platform/logger"
	"vecinal/internal/platform/surreal"
)

func main() {
	dir := flag.String("dir", "data/taxonomy", "directory holding departments.csv, provinces.csv and municipalities.csv")
	flag.Parse()

	cfg := config.FromEnv()
	log := logger.New(cfg.Environment)

	ctx := context.Background()
	db, err := surreal.Connect(ctx, cfg.Surreal)
	if err != nil {
		log.Error("surrealdb connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close(context.Background())

	if err := seed.Load(ctx, *dir, locstore.NewSurreal(db)); err != nil {
		log.Error("taxonomy seed failed", "dir", *dir, "error", err)
		os.Exit(1)
	}
	log.Info("taxonomy seeded", "dir", *dir)
}
