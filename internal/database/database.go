package database

import (
	"github.com/liftlog/api/internal/config"
	"github.com/liftlog/api/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Exercise{},
		&model.Workout{},
		&model.WorkoutExercise{},
		&model.Set{},
	)
	if err != nil {
		return err
	}

	// Composite uniques: catalog names are globally unique, and within one
	// workout the exercise positions and set numbers must not collide.
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_workout_exercises_workout_position ON workout_exercises(workout_id, position)")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_sets_exercise_number ON sets(workout_exercise_id, set_number)")

	// Create unique index for users (provider, provider_id)
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_users_provider_provider_id ON users(provider, provider_id)")

	return nil
}
