package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Workout is one exercise session belonging to exactly one user.
// A nil CompletedAt means the session is still in progress.
type Workout struct {
	ID          string         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      int64          `gorm:"not null;index:idx_workouts_user_started,priority:1" json:"userId"`
	Name        string         `gorm:"not null;size:255" json:"name"`
	StartedAt   time.Time      `gorm:"not null;index:idx_workouts_user_started,priority:2,sort:desc" json:"startedAt"`
	CompletedAt *time.Time     `json:"completedAt"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`

	Exercises []WorkoutExercise `gorm:"foreignKey:WorkoutID;constraint:OnDelete:CASCADE" json:"exercises"`
}

func (Workout) TableName() string {
	return "workouts"
}

func (w *Workout) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// Completed reports whether the workout has been marked done.
func (w *Workout) Completed() bool {
	return w.CompletedAt != nil
}

// WorkoutExercise links a workout to a catalog exercise at a position.
// Position is zero-based and unique within a workout; it defines the
// display and iteration sequence.
type WorkoutExercise struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	WorkoutID  string    `gorm:"type:uuid;not null;index" json:"workoutId"`
	ExerciseID string    `gorm:"type:uuid;not null;index" json:"exerciseId"`
	Position   int       `gorm:"not null" json:"position"`
	CreatedAt  time.Time `json:"createdAt"`

	Exercise Exercise `gorm:"foreignKey:ExerciseID" json:"exercise"`
	Sets     []Set    `gorm:"foreignKey:WorkoutExerciseID;constraint:OnDelete:CASCADE" json:"sets"`
}

func (WorkoutExercise) TableName() string {
	return "workout_exercises"
}

func (we *WorkoutExercise) BeforeCreate(tx *gorm.DB) error {
	if we.ID == "" {
		we.ID = uuid.NewString()
	}
	return nil
}

// Set is a single set within a workout exercise. SetNumber is 1-based and
// unique within its parent. Weight and Reps are independently optional:
// a bodyweight movement may record reps with no weight, or neither.
// Weight is stored as numeric(6,2) to keep values free of binary
// floating-point rounding.
type Set struct {
	ID                string           `gorm:"type:uuid;primaryKey" json:"id"`
	WorkoutExerciseID string           `gorm:"type:uuid;not null;index" json:"workoutExerciseId"`
	SetNumber         int              `gorm:"not null" json:"setNumber"`
	Weight            *decimal.Decimal `gorm:"type:numeric(6,2)" json:"weight"`
	Reps              *int             `json:"reps"`
}

func (Set) TableName() string {
	return "sets"
}

func (s *Set) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
