package main

import (
	"bufio"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/liftlog/api/internal/config"
	"github.com/liftlog/api/internal/database"
	"gorm.io/gorm"
)

func main() {
	filePath := flag.String("file", "data/exercises.txt", "Path to exercise name list file")
	batchSize := flag.Int("batch", 500, "Batch size for inserts")
	flag.Parse()

	log.Printf("Seeding exercise catalog from %s", *filePath)

	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	names, err := loadExerciseList(*filePath)
	if err != nil {
		log.Fatalf("Failed to load exercise list: %v", err)
	}

	log.Printf("Loaded %d exercise names from file", len(names))

	inserted, skipped := seedExercises(db, names, *batchSize)

	log.Printf("Seeding complete. Inserted: %d, Skipped (already present): %d", inserted, skipped)
}

func loadExerciseList(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var names []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}

	return names, scanner.Err()
}

func seedExercises(db *gorm.DB, names []string, batchSize int) (inserted int, skipped int) {
	for i := 0; i < len(names); i += batchSize {
		end := i + batchSize
		if end > len(names) {
			end = len(names)
		}

		for _, name := range names[i:end] {
			result := db.Exec(`
				INSERT INTO exercises (id, name, aliases, created_at, updated_at)
				VALUES (gen_random_uuid(), ?, '[]', NOW(), NOW())
				ON CONFLICT (name) DO NOTHING
			`, name)

			if result.Error != nil {
				log.Printf("Error inserting exercise %s: %v", name, result.Error)
				skipped++
				continue
			}

			if result.RowsAffected > 0 {
				inserted++
			} else {
				skipped++
			}
		}

		if (i/batchSize+1)%10 == 0 {
			log.Printf("Progress: %d/%d exercises processed", end, len(names))
		}
	}

	return inserted, skipped
}
