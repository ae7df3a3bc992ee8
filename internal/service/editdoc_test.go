package service_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftlog/api/internal/model"
	"github.com/liftlog/api/internal/service"
)

func weight(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func reps(n int) *int {
	return &n
}

func TestToEditDocument_DropsInternalIdentifiers(t *testing.T) {
	completedAt := time.Date(2025, 9, 1, 9, 30, 0, 0, time.UTC)
	workout := model.Workout{
		ID:          "workout-id",
		UserID:      1,
		Name:        "Leg Day",
		StartedAt:   time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC),
		CompletedAt: &completedAt,
		Exercises: []model.WorkoutExercise{
			{
				ID:       "join-1",
				Position: 0,
				Exercise: model.Exercise{ID: "cat-1", Name: "Squat"},
				Sets: []model.Set{
					{ID: "set-1", SetNumber: 1, Weight: weight("100"), Reps: reps(5)},
					{ID: "set-2", SetNumber: 2, Weight: weight("102.5"), Reps: reps(3)},
				},
			},
			{
				ID:       "join-2",
				Position: 1,
				Exercise: model.Exercise{ID: "cat-2", Name: "Leg Press"},
				Sets:     []model.Set{{ID: "set-3", SetNumber: 1, Reps: reps(12)}},
			},
		},
	}

	doc := service.ToEditDocument(workout)

	assert.Equal(t, "workout-id", doc.ID)
	assert.Equal(t, "Leg Day", doc.Name)
	require.NotNil(t, doc.CompletedAt)
	require.Len(t, doc.Exercises, 2)

	assert.Equal(t, "Squat", doc.Exercises[0].Name)
	require.Len(t, doc.Exercises[0].Sets, 2)
	assert.True(t, doc.Exercises[0].Sets[0].Weight.Equal(decimal.RequireFromString("100")))
	assert.Equal(t, 5, *doc.Exercises[0].Sets[0].Reps)
	assert.True(t, doc.Exercises[0].Sets[1].Weight.Equal(decimal.RequireFromString("102.5")))

	assert.Equal(t, "Leg Press", doc.Exercises[1].Name)
	assert.Nil(t, doc.Exercises[1].Sets[0].Weight)
	assert.Equal(t, 12, *doc.Exercises[1].Sets[0].Reps)
}

func TestFromEditDocument_ReconstructsPositionsFromOrder(t *testing.T) {
	doc := service.EditDocument{
		Name:      "Ordering",
		StartedAt: time.Now(),
		Exercises: []service.EditExercise{
			{Name: "A", Sets: []service.EditSet{{Weight: weight("10"), Reps: reps(5)}}},
			{Name: " B ", Sets: []service.EditSet{{Reps: reps(8)}, {}}},
		},
	}

	specs, err := service.FromEditDocument(doc)
	require.NoError(t, err)
	require.Len(t, specs, 2)

	assert.Equal(t, "A", specs[0].Name)
	require.Len(t, specs[0].Sets, 1)
	assert.True(t, specs[0].Sets[0].Weight.Equal(decimal.RequireFromString("10")))

	// Names are trimmed; optional fields pass through untouched.
	assert.Equal(t, "B", specs[1].Name)
	require.Len(t, specs[1].Sets, 2)
	assert.Nil(t, specs[1].Sets[0].Weight)
	assert.Equal(t, 8, *specs[1].Sets[0].Reps)
	assert.Nil(t, specs[1].Sets[1].Weight)
	assert.Nil(t, specs[1].Sets[1].Reps)
}

func TestFromEditDocument_Validation(t *testing.T) {
	base := func() service.EditDocument {
		return service.EditDocument{
			Name:      "Leg Day",
			StartedAt: time.Now(),
			Exercises: []service.EditExercise{
				{Name: "Squat", Sets: []service.EditSet{{Weight: weight("100"), Reps: reps(5)}}},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*service.EditDocument)
		field  string
	}{
		{
			name:   "no exercises",
			mutate: func(d *service.EditDocument) { d.Exercises = nil },
			field:  "exercises",
		},
		{
			name:   "empty exercise name",
			mutate: func(d *service.EditDocument) { d.Exercises[0].Name = "   " },
			field:  "exercises[0].name",
		},
		{
			name:   "no sets",
			mutate: func(d *service.EditDocument) { d.Exercises[0].Sets = nil },
			field:  "exercises[0].sets",
		},
		{
			name:   "negative weight",
			mutate: func(d *service.EditDocument) { d.Exercises[0].Sets[0].Weight = weight("-1") },
			field:  "exercises[0].sets[0].weight",
		},
		{
			name:   "zero weight",
			mutate: func(d *service.EditDocument) { d.Exercises[0].Sets[0].Weight = weight("0") },
			field:  "exercises[0].sets[0].weight",
		},
		{
			name:   "non-positive reps",
			mutate: func(d *service.EditDocument) { d.Exercises[0].Sets[0].Reps = reps(0) },
			field:  "exercises[0].sets[0].reps",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			doc := base()
			tc.mutate(&doc)

			_, err := service.FromEditDocument(doc)
			var validationErr *service.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tc.field, validationErr.Field)
		})
	}
}
