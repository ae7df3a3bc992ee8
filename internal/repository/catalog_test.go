package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/liftlog/api/internal/model"
	"github.com/liftlog/api/internal/repository"
)

func TestFindOrCreate_ReusesExistingRow(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewCatalogRepo(db)
	ctx := context.Background()

	first, err := repo.FindOrCreate(ctx, "Deadlift")
	require.NoError(t, err)

	// Whitespace is trimmed before de-duplication.
	second, err := repo.FindOrCreate(ctx, "  Deadlift ")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var count int64
	db.Model(&model.Exercise{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestSearch(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewCatalogRepo(db)
	ctx := context.Background()

	for _, name := range []string{"Bench Press", "Incline Bench Press", "Deadlift"} {
		_, err := repo.FindOrCreate(ctx, name)
		require.NoError(t, err)
	}

	results, err := repo.Search(ctx, "bench", 20)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Bench Press", results[0].Name)
	assert.Equal(t, "Incline Bench Press", results[1].Name)
}

func TestRename_KeepsOldNameAsAlias(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewCatalogRepo(db)
	ctx := context.Background()

	exercise, err := repo.FindOrCreate(ctx, "Squats")
	require.NoError(t, err)

	renamed, err := repo.Rename(ctx, exercise.ID, "Back Squat")
	require.NoError(t, err)
	assert.Equal(t, "Back Squat", renamed.Name)
	assert.Contains(t, renamed.Aliases, "Squats")

	_, err = repo.Rename(ctx, "no-such-id", "X")
	assert.ErrorIs(t, err, repository.ErrExerciseNotFound)
}

func TestMerge_RepointsWorkoutsAndDeletesDuplicate(t *testing.T) {
	db := newTestDB(t)
	catalog := repository.NewCatalogRepo(db)
	workouts := repository.NewWorkoutRepo(db)
	ctx := context.Background()

	canonical, err := catalog.FindOrCreate(ctx, "Bench Press")
	require.NoError(t, err)

	// A workout logged against the duplicate spelling.
	created, err := workouts.Create(ctx, 1, "Push Day", time.Now(), nil, []repository.ExerciseSpec{
		{Name: "Benchpress", Sets: []repository.SetSpec{{Reps: reps(8)}}},
	})
	require.NoError(t, err)
	duplicateID := created.Exercises[0].ExerciseID

	merged, err := catalog.Merge(ctx, canonical.ID, duplicateID)
	require.NoError(t, err)
	assert.Contains(t, merged.Aliases, "Benchpress")

	// The join row now points at the canonical entry.
	reloaded, err := workouts.FindByID(ctx, created.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, canonical.ID, reloaded.Exercises[0].ExerciseID)
	assert.Equal(t, "Bench Press", reloaded.Exercises[0].Exercise.Name)

	var count int64
	db.Model(&model.Exercise{}).Count(&count)
	assert.Equal(t, int64(1), count)

	_, err = catalog.Merge(ctx, canonical.ID, canonical.ID)
	assert.Error(t, err)
}
