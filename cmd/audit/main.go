package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/liftlog/api/internal/config"
	"github.com/liftlog/api/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Issue is one integrity finding for a workout aggregate.
type Issue struct {
	WorkoutID string `json:"workoutId"`
	UserID    int64  `json:"userId"`
	Type      string `json:"type"`
	Details   string `json:"details"`
}

func main() {
	workers := flag.Int("workers", 10, "Number of parallel workers")
	outputFile := flag.String("output", "audit_results.json", "Output file for results")
	flag.Parse()

	cfg := config.Load()
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	var total int64
	db.Model(&model.Workout{}).Count(&total)

	fmt.Printf("Auditing %d workouts with %d workers...\n", total, *workers)

	workoutChan := make(chan model.Workout, *workers*10)
	issueChan := make(chan Issue, 1000)

	var processed int64
	var issueCount int64
	var wg sync.WaitGroup

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for workout := range workoutChan {
				issues := auditWorkout(workout)
				for _, issue := range issues {
					issueChan <- issue
					atomic.AddInt64(&issueCount, 1)
				}
				p := atomic.AddInt64(&processed, 1)
				if p%1000 == 0 {
					fmt.Printf("Progress: %d/%d (%.1f%%), Issues found: %d\n",
						p, total, float64(p)/float64(total)*100, atomic.LoadInt64(&issueCount))
				}
			}
		}()
	}

	var issues []Issue
	var issuesMu sync.Mutex
	done := make(chan bool)
	go func() {
		for issue := range issueChan {
			issuesMu.Lock()
			issues = append(issues, issue)
			issuesMu.Unlock()
		}
		done <- true
	}()

	// Fetch workouts in batches, fully hydrated
	startTime := time.Now()
	batchSize := 500
	offset := 0
	for {
		var workouts []model.Workout
		result := db.
			Preload("Exercises", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
			Preload("Exercises.Exercise").
			Preload("Exercises.Sets", func(db *gorm.DB) *gorm.DB { return db.Order("set_number ASC") }).
			Order("created_at ASC").
			Limit(batchSize).
			Offset(offset).
			Find(&workouts)
		if result.Error != nil {
			log.Fatalf("Failed to fetch workouts: %v", result.Error)
		}
		if len(workouts) == 0 {
			break
		}

		for _, workout := range workouts {
			workoutChan <- workout
		}
		offset += batchSize
	}

	close(workoutChan)
	wg.Wait()
	close(issueChan)
	<-done

	fmt.Printf("Audit complete in %v. %d workouts checked, %d issues found.\n",
		time.Since(startTime), processed, len(issues))

	data, err := json.MarshalIndent(issues, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal results: %v", err)
	}
	if err := os.WriteFile(*outputFile, data, 0644); err != nil {
		log.Fatalf("Failed to write results: %v", err)
	}
	fmt.Printf("Results written to %s\n", *outputFile)
}

// auditWorkout checks one aggregate against the schema-level invariants:
// contiguous zero-based positions, contiguous 1-based set numbers, and no
// join rows pointing at missing catalog entries.
func auditWorkout(workout model.Workout) []Issue {
	var issues []Issue

	report := func(issueType, details string) {
		issues = append(issues, Issue{
			WorkoutID: workout.ID,
			UserID:    workout.UserID,
			Type:      issueType,
			Details:   details,
		})
	}

	for i, we := range workout.Exercises {
		if we.Position != i {
			report("position_gap", fmt.Sprintf("exercise at index %d has position %d", i, we.Position))
		}
		if we.Exercise.ID == "" {
			report("orphaned_exercise", fmt.Sprintf("workout exercise %s references missing catalog row %s", we.ID, we.ExerciseID))
		}
		for j, set := range we.Sets {
			if set.SetNumber != j+1 {
				report("set_number_gap", fmt.Sprintf("exercise %d set at index %d has set number %d", i, j, set.SetNumber))
			}
		}
		if len(we.Sets) == 0 {
			report("empty_exercise", fmt.Sprintf("exercise at position %d has no sets", we.Position))
		}
	}

	if workout.CompletedAt != nil && workout.CompletedAt.Before(workout.StartedAt) {
		report("completed_before_started", fmt.Sprintf("completedAt %s precedes startedAt %s",
			workout.CompletedAt.Format(time.RFC3339), workout.StartedAt.Format(time.RFC3339)))
	}

	return issues
}
