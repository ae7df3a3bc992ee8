package main

import (
	"flag"
	"log"
	"time"

	"github.com/liftlog/api/internal/config"
	"github.com/liftlog/api/internal/database"
	"github.com/liftlog/api/internal/model"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Show what would be pruned without actually deleting")
	flag.Parse()

	startTime := time.Now()
	log.Println("Starting refresh token prune job...")

	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	query := db.Model(&model.RefreshToken{}).Where("revoked = true OR expires_at < ?", time.Now())

	if *dryRun {
		var count int64
		if err := query.Count(&count).Error; err != nil {
			log.Fatalf("Failed to count prunable tokens: %v", err)
		}
		log.Printf("[DRY RUN] Would delete %d refresh tokens", count)
		log.Println("[DRY RUN] No changes made")
		return
	}

	result := db.Where("revoked = true OR expires_at < ?", time.Now()).Delete(&model.RefreshToken{})
	if result.Error != nil {
		log.Fatalf("Failed to prune refresh tokens: %v", result.Error)
	}

	log.Printf("Prune complete. Deleted %d refresh tokens in %v", result.RowsAffected, time.Since(startTime))
}
