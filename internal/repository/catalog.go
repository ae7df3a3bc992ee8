package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/liftlog/api/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrExerciseNotFound = errors.New("exercise not found")

// CatalogRepo manages the shared exercise catalog. The catalog is
// append-mostly: rows are created lazily, at most once per distinct name,
// the first time that name is referenced by any workout.
type CatalogRepo struct {
	db *gorm.DB
}

func NewCatalogRepo(db *gorm.DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

func (r *CatalogRepo) List(ctx context.Context) ([]model.Exercise, error) {
	var exercises []model.Exercise
	err := r.db.WithContext(ctx).Order("name ASC").Find(&exercises).Error
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	return exercises, nil
}

func (r *CatalogRepo) Search(ctx context.Context, query string, limit int) ([]model.Exercise, error) {
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var exercises []model.Exercise
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", "%"+strings.ToLower(strings.TrimSpace(query))+"%").
		Order("name ASC").
		Limit(limit).
		Find(&exercises).Error
	if err != nil {
		return nil, fmt.Errorf("search catalog: %w", err)
	}
	return exercises, nil
}

func (r *CatalogRepo) FindByName(ctx context.Context, name string) (*model.Exercise, error) {
	var exercise model.Exercise
	err := r.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)).First(&exercise).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrExerciseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find exercise: %w", err)
	}
	return &exercise, nil
}

// FindOrCreate returns the catalog row for name, creating it when missing.
func (r *CatalogRepo) FindOrCreate(ctx context.Context, name string) (*model.Exercise, error) {
	return findOrCreateExercise(r.db.WithContext(ctx), name)
}

// Rename changes a catalog entry's name. Admin-only at the handler level.
func (r *CatalogRepo) Rename(ctx context.Context, exerciseID, newName string) (*model.Exercise, error) {
	newName = strings.TrimSpace(newName)

	var exercise model.Exercise
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&exercise, "id = ?", exerciseID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrExerciseNotFound
			}
			return fmt.Errorf("load exercise: %w", err)
		}

		old := exercise.Name
		exercise.Name = newName
		if old != newName && !containsFold(exercise.Aliases, old) {
			exercise.Aliases = append(exercise.Aliases, old)
		}
		if err := tx.Save(&exercise).Error; err != nil {
			return fmt.Errorf("rename exercise: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &exercise, nil
}

// Merge folds the duplicate catalog entry into the canonical one: every
// workout exercise referencing the duplicate is re-pointed, the duplicate's
// name is kept as an alias, and the duplicate row is deleted. The whole
// operation is one transaction.
func (r *CatalogRepo) Merge(ctx context.Context, canonicalID, duplicateID string) (*model.Exercise, error) {
	if canonicalID == duplicateID {
		return nil, errors.New("cannot merge an exercise into itself")
	}

	var canonical model.Exercise
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var duplicate model.Exercise
		if err := tx.First(&canonical, "id = ?", canonicalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrExerciseNotFound
			}
			return fmt.Errorf("load canonical exercise: %w", err)
		}
		if err := tx.First(&duplicate, "id = ?", duplicateID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrExerciseNotFound
			}
			return fmt.Errorf("load duplicate exercise: %w", err)
		}

		err := tx.Model(&model.WorkoutExercise{}).
			Where("exercise_id = ?", duplicate.ID).
			Update("exercise_id", canonical.ID).Error
		if err != nil {
			return fmt.Errorf("re-point workout exercises: %w", err)
		}

		if !containsFold(canonical.Aliases, duplicate.Name) {
			canonical.Aliases = append(canonical.Aliases, duplicate.Name)
		}
		for _, alias := range duplicate.Aliases {
			if !containsFold(canonical.Aliases, alias) {
				canonical.Aliases = append(canonical.Aliases, alias)
			}
		}
		if err := tx.Save(&canonical).Error; err != nil {
			return fmt.Errorf("save canonical exercise: %w", err)
		}

		if err := tx.Delete(&duplicate).Error; err != nil {
			return fmt.Errorf("delete duplicate exercise: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &canonical, nil
}

// findOrCreateExercise de-duplicates catalog rows by exact name. The write
// uses insert-ignore-on-conflict followed by a re-select so two callers
// creating the same name concurrently both end up with the single stored
// row instead of racing a check-then-insert.
func findOrCreateExercise(db *gorm.DB, name string) (*model.Exercise, error) {
	name = strings.TrimSpace(name)

	insert := model.Exercise{Name: name}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&insert).Error
	if err != nil {
		return nil, fmt.Errorf("insert exercise %q: %w", name, err)
	}

	// Always re-select: on conflict the insert assigns no stored row, and
	// the generated ID above would not match the existing one.
	var exercise model.Exercise
	if err := db.Where("name = ?", name).First(&exercise).Error; err != nil {
		return nil, fmt.Errorf("select exercise %q: %w", name, err)
	}

	return &exercise, nil
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
