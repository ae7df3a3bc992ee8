package stats_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftlog/api/internal/model"
	"github.com/liftlog/api/internal/stats"
)

func weight(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func reps(n int) *int {
	return &n
}

func TestAnalyze(t *testing.T) {
	completedAt := time.Now()
	workouts := []model.Workout{
		{
			ID:          "w1",
			CompletedAt: &completedAt,
			Exercises: []model.WorkoutExercise{
				{
					Exercise: model.Exercise{Name: "Squat"},
					Sets: []model.Set{
						{SetNumber: 1, Weight: weight("100"), Reps: reps(5)},
						{SetNumber: 2, Weight: weight("105"), Reps: reps(3)},
					},
				},
			},
		},
		{
			ID: "w2",
			Exercises: []model.WorkoutExercise{
				{
					Exercise: model.Exercise{Name: "Squat"},
					Sets: []model.Set{
						{SetNumber: 1, Weight: weight("102.5"), Reps: reps(5)},
					},
				},
				{
					Exercise: model.Exercise{Name: "Pull Up"},
					Sets: []model.Set{
						// Bodyweight: reps but no weight, then neither.
						{SetNumber: 1, Reps: reps(10)},
						{SetNumber: 2},
					},
				},
			},
		},
	}

	summary := stats.Analyze(workouts)

	assert.Equal(t, 2, summary.Workouts)
	assert.Equal(t, 1, summary.Completed)
	require.Len(t, summary.Exercises, 2)

	// Alphabetical output order.
	pullUp := summary.Exercises[0]
	assert.Equal(t, "Pull Up", pullUp.Exercise)
	assert.Equal(t, 1, pullUp.Workouts)
	assert.Equal(t, 2, pullUp.Sets)
	assert.Equal(t, 10, pullUp.TotalReps)
	assert.Nil(t, pullUp.MaxWeight)
	assert.True(t, pullUp.Volume.IsZero())

	squat := summary.Exercises[1]
	assert.Equal(t, "Squat", squat.Exercise)
	assert.Equal(t, 2, squat.Workouts)
	assert.Equal(t, 3, squat.Sets)
	assert.Equal(t, 13, squat.TotalReps)
	require.NotNil(t, squat.MaxWeight)
	assert.True(t, squat.MaxWeight.Equal(decimal.RequireFromString("105")))
	// 100*5 + 105*3 + 102.5*5 = 1327.5
	assert.True(t, squat.Volume.Equal(decimal.RequireFromString("1327.5")))
}

func TestAnalyze_Empty(t *testing.T) {
	summary := stats.Analyze(nil)
	assert.Equal(t, 0, summary.Workouts)
	assert.Equal(t, 0, summary.Completed)
	assert.Empty(t, summary.Exercises)
}
