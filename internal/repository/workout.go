package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/liftlog/api/internal/model"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrUnauthorized is returned when no authenticated identity was
	// supplied to an operation that requires one.
	ErrUnauthorized = errors.New("no authenticated user")

	// ErrWorkoutNotFound covers both a missing workout and a workout owned
	// by somebody else. The two cases are deliberately indistinguishable so
	// that lookups never leak the existence of other users' data.
	ErrWorkoutNotFound = errors.New("workout not found")
)

// SetSpec describes one set of an exercise on the way into the store.
// Weight and Reps are independently optional.
type SetSpec struct {
	Weight *decimal.Decimal
	Reps   *int
}

// ExerciseSpec describes one exercise and its ordered sets on the way into
// the store. Position and set numbers are assigned from slice order.
type ExerciseSpec struct {
	Name string
	Sets []SetSpec
}

// WorkoutRepo persists workout aggregates. The DB handle is injected and
// owned by the caller; the repo keeps no state of its own.
type WorkoutRepo struct {
	db *gorm.DB
}

func NewWorkoutRepo(db *gorm.DB) *WorkoutRepo {
	return &WorkoutRepo{db: db}
}

// withAggregate preloads the full workout tree in its canonical order:
// exercises ascending by position, sets ascending by set number.
func withAggregate(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Exercises", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Exercises.Exercise").
		Preload("Exercises.Sets", func(db *gorm.DB) *gorm.DB {
			return db.Order("set_number ASC")
		})
}

// FindForUserInWindow returns every workout owned by userID whose StartedAt
// falls in the half-open window [start, end), most recent first, each fully
// hydrated with exercises and sets.
func (r *WorkoutRepo) FindForUserInWindow(ctx context.Context, userID int64, start, end time.Time) ([]model.Workout, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}

	var workouts []model.Workout
	err := withAggregate(r.db.WithContext(ctx)).
		Where("user_id = ? AND started_at >= ? AND started_at < ?", userID, start, end).
		Order("started_at DESC").
		Find(&workouts).Error
	if err != nil {
		return nil, fmt.Errorf("find workouts in window: %w", err)
	}

	return workouts, nil
}

// FindByID returns the aggregate only when both the id and the owner match.
func (r *WorkoutRepo) FindByID(ctx context.Context, workoutID string, userID int64) (*model.Workout, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}

	var workout model.Workout
	err := withAggregate(r.db.WithContext(ctx)).
		Where("id = ? AND user_id = ?", workoutID, userID).
		First(&workout).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find workout: %w", err)
	}

	return &workout, nil
}

// Create inserts a workout with its full exercise/set tree in one
// transaction. Exercise positions are zero-based slice positions, set
// numbers 1-based; catalog rows are looked up or created by name.
func (r *WorkoutRepo) Create(ctx context.Context, userID int64, name string, startedAt time.Time, metadata datatypes.JSON, specs []ExerciseSpec) (*model.Workout, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}

	var workoutID string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		workout := model.Workout{
			UserID:    userID,
			Name:      name,
			StartedAt: startedAt,
			Metadata:  metadata,
		}
		if err := tx.Create(&workout).Error; err != nil {
			return fmt.Errorf("create workout: %w", err)
		}
		workoutID = workout.ID

		return insertExerciseTree(tx, workout.ID, specs)
	})
	if err != nil {
		return nil, err
	}

	return r.FindByID(ctx, workoutID, userID)
}

// Update re-verifies ownership and replaces the workout's exercise/set tree
// wholesale. The replacement runs inside one transaction so a concurrent
// reader sees either the old tree or the new one, never a mix.
//
// A workout that is already completed cannot be moved back to in-progress:
// a nil completedAt leaves the stored completion time untouched.
func (r *WorkoutRepo) Update(ctx context.Context, workoutID string, userID int64, name string, startedAt time.Time, completedAt *time.Time, metadata datatypes.JSON, specs []ExerciseSpec) (*model.Workout, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var workout model.Workout
		err := tx.Where("id = ? AND user_id = ?", workoutID, userID).First(&workout).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkoutNotFound
		}
		if err != nil {
			return fmt.Errorf("load workout for update: %w", err)
		}

		if completedAt == nil {
			completedAt = workout.CompletedAt
		}

		updates := map[string]interface{}{
			"name":         name,
			"started_at":   startedAt,
			"completed_at": completedAt,
			"metadata":     metadata,
			"updated_at":   time.Now(),
		}
		if err := tx.Model(&workout).Updates(updates).Error; err != nil {
			return fmt.Errorf("update workout: %w", err)
		}

		if err := deleteExerciseTree(tx, workout.ID); err != nil {
			return err
		}

		return insertExerciseTree(tx, workout.ID, specs)
	})
	if err != nil {
		return nil, err
	}

	return r.FindByID(ctx, workoutID, userID)
}

// Complete marks the workout done. Completing an already-completed workout
// keeps the original completion time.
func (r *WorkoutRepo) Complete(ctx context.Context, workoutID string, userID int64, at time.Time) (*model.Workout, error) {
	if userID == 0 {
		return nil, ErrUnauthorized
	}

	result := r.db.WithContext(ctx).
		Model(&model.Workout{}).
		Where("id = ? AND user_id = ? AND completed_at IS NULL", workoutID, userID).
		Update("completed_at", at)
	if result.Error != nil {
		return nil, fmt.Errorf("complete workout: %w", result.Error)
	}

	// Zero rows can mean missing, foreign, or already completed; FindByID
	// sorts the first two from the third.
	return r.FindByID(ctx, workoutID, userID)
}

// AutoCompleteStale marks every in-progress workout started before cutoff
// as completed at the given time. Returns the number of workouts closed.
func (r *WorkoutRepo) AutoCompleteStale(ctx context.Context, cutoff, completedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Workout{}).
		Where("completed_at IS NULL AND started_at < ?", cutoff).
		Update("completed_at", completedAt)
	if result.Error != nil {
		return 0, fmt.Errorf("auto-complete stale workouts: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func insertExerciseTree(tx *gorm.DB, workoutID string, specs []ExerciseSpec) error {
	for position, spec := range specs {
		exercise, err := findOrCreateExercise(tx, spec.Name)
		if err != nil {
			return err
		}

		workoutExercise := model.WorkoutExercise{
			WorkoutID:  workoutID,
			ExerciseID: exercise.ID,
			Position:   position,
		}
		if err := tx.Create(&workoutExercise).Error; err != nil {
			return fmt.Errorf("create workout exercise %q: %w", spec.Name, err)
		}

		for i, setSpec := range spec.Sets {
			set := model.Set{
				WorkoutExerciseID: workoutExercise.ID,
				SetNumber:         i + 1,
				Weight:            setSpec.Weight,
				Reps:              setSpec.Reps,
			}
			if err := tx.Create(&set).Error; err != nil {
				return fmt.Errorf("create set %d of %q: %w", i+1, spec.Name, err)
			}
		}
	}

	return nil
}

func deleteExerciseTree(tx *gorm.DB, workoutID string) error {
	// Sets are removed explicitly rather than via ON DELETE CASCADE so the
	// replacement behaves the same on stores that do not enforce the
	// foreign-key constraints.
	err := tx.Where(
		"workout_exercise_id IN (?)",
		tx.Session(&gorm.Session{NewDB: true}).
			Model(&model.WorkoutExercise{}).
			Select("id").
			Where("workout_id = ?", workoutID),
	).Delete(&model.Set{}).Error
	if err != nil {
		return fmt.Errorf("delete sets: %w", err)
	}

	if err := tx.Where("workout_id = ?", workoutID).Delete(&model.WorkoutExercise{}).Error; err != nil {
		return fmt.Errorf("delete workout exercises: %w", err)
	}

	return nil
}
