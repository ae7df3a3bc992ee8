package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/liftlog/api/internal/model"
	"github.com/liftlog/api/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// EditDocument is the flattened, caller-facing form of a workout aggregate.
// Internal catalog and join identifiers are dropped; exercise position and
// set number are implicit in slice order and reconstructed on the way back.
type EditDocument struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name"`
	StartedAt   time.Time      `json:"startedAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`
	Exercises   []EditExercise `json:"exercises"`
}

type EditExercise struct {
	Name string    `json:"name"`
	Sets []EditSet `json:"sets"`
}

type EditSet struct {
	Weight *decimal.Decimal `json:"weight,omitempty"`
	Reps   *int             `json:"reps,omitempty"`
}

// ValidationError reports the first structural violation found in an edit
// document. It never carries internal identifiers or store error text.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// ToEditDocument flattens a hydrated aggregate. It is pure: slice order in
// the result mirrors the aggregate's position and set-number order exactly.
func ToEditDocument(workout model.Workout) EditDocument {
	doc := EditDocument{
		ID:          workout.ID,
		Name:        workout.Name,
		StartedAt:   workout.StartedAt,
		CompletedAt: workout.CompletedAt,
		Metadata:    workout.Metadata,
		Exercises:   make([]EditExercise, 0, len(workout.Exercises)),
	}

	for _, we := range workout.Exercises {
		exercise := EditExercise{
			Name: we.Exercise.Name,
			Sets: make([]EditSet, 0, len(we.Sets)),
		}
		for _, set := range we.Sets {
			exercise.Sets = append(exercise.Sets, EditSet{
				Weight: set.Weight,
				Reps:   set.Reps,
			})
		}
		doc.Exercises = append(doc.Exercises, exercise)
	}

	return doc
}

// FromEditDocument validates the document's structure and converts it into
// repository input. Validation short-circuits on the first offending field,
// before any store call is made.
func FromEditDocument(doc EditDocument) ([]repository.ExerciseSpec, error) {
	if len(doc.Exercises) == 0 {
		return nil, &ValidationError{Field: "exercises", Reason: "at least one exercise is required"}
	}

	specs := make([]repository.ExerciseSpec, 0, len(doc.Exercises))
	for i, exercise := range doc.Exercises {
		name := strings.TrimSpace(exercise.Name)
		if name == "" {
			return nil, &ValidationError{
				Field:  fmt.Sprintf("exercises[%d].name", i),
				Reason: "must not be empty",
			}
		}
		if len(exercise.Sets) == 0 {
			return nil, &ValidationError{
				Field:  fmt.Sprintf("exercises[%d].sets", i),
				Reason: "at least one set is required",
			}
		}

		spec := repository.ExerciseSpec{
			Name: name,
			Sets: make([]repository.SetSpec, 0, len(exercise.Sets)),
		}
		for j, set := range exercise.Sets {
			if set.Weight != nil && !set.Weight.IsPositive() {
				return nil, &ValidationError{
					Field:  fmt.Sprintf("exercises[%d].sets[%d].weight", i, j),
					Reason: "must be positive when present",
				}
			}
			if set.Reps != nil && *set.Reps <= 0 {
				return nil, &ValidationError{
					Field:  fmt.Sprintf("exercises[%d].sets[%d].reps", i, j),
					Reason: "must be positive when present",
				}
			}
			spec.Sets = append(spec.Sets, repository.SetSpec{
				Weight: set.Weight,
				Reps:   set.Reps,
			})
		}

		specs = append(specs, spec)
	}

	return specs, nil
}
