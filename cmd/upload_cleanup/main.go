package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"uploadkit/internal/config"
	"uploadkit/internal/database"
	"uploadkit/internal/domain/upload"
	"uploadkit/internal/pkg/fileupload"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to load .env: %v", err)
	}

	cfg, err := config.LoadUploadRuntimeConfig()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	purged, err := fileupload.PurgeStale(cfg.TmpDir, cfg.TmpTTL, time.Now())
	if err != nil {
		log.Printf("purge stale temp files finished with errors: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	svc := upload.NewService(upload.NewRepository(db), cfg.UploadDir, cfg.StaticBase)
	pruned, err := svc.PruneMissing(ctx)
	if err != nil {
		log.Fatalf("prune dangling upload records failed: %v", err)
	}

	log.Printf("upload cleanup completed: stale_temp_files=%d dangling_records=%d", purged, pruned)
}
