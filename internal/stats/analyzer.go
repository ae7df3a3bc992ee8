package stats

import (
	"sort"

	"github.com/liftlog/api/internal/model"
	"github.com/shopspring/decimal"
)

// ExerciseStats aggregates one catalog exercise across a set of workouts.
type ExerciseStats struct {
	Exercise string `json:"exercise"`
	Workouts int    `json:"workouts"`
	Sets     int    `json:"sets"`
	// TotalReps counts only sets that recorded reps.
	TotalReps int `json:"totalReps"`
	// MaxWeight is the heaviest recorded set, nil when no set had a weight.
	MaxWeight *decimal.Decimal `json:"maxWeight,omitempty"`
	// Volume is the sum of weight*reps over sets that recorded both.
	Volume decimal.Decimal `json:"volume"`
}

// Summary is the aggregation result for a range of workouts.
type Summary struct {
	Workouts  int             `json:"workouts"`
	Completed int             `json:"completed"`
	Exercises []ExerciseStats `json:"exercises"`
}

// Analyze folds a slice of hydrated workout aggregates into per-exercise
// totals. It is pure; the input is not modified.
func Analyze(workouts []model.Workout) Summary {
	summary := Summary{Workouts: len(workouts)}
	byName := make(map[string]*ExerciseStats)
	seenIn := make(map[string]map[string]struct{})

	for _, workout := range workouts {
		if workout.Completed() {
			summary.Completed++
		}

		for _, we := range workout.Exercises {
			name := we.Exercise.Name
			entry, ok := byName[name]
			if !ok {
				entry = &ExerciseStats{Exercise: name}
				byName[name] = entry
				seenIn[name] = make(map[string]struct{})
			}
			seenIn[name][workout.ID] = struct{}{}

			for _, set := range we.Sets {
				entry.Sets++
				if set.Reps != nil {
					entry.TotalReps += *set.Reps
				}
				if set.Weight != nil {
					if entry.MaxWeight == nil || set.Weight.GreaterThan(*entry.MaxWeight) {
						w := *set.Weight
						entry.MaxWeight = &w
					}
					if set.Reps != nil {
						reps := decimal.NewFromInt(int64(*set.Reps))
						entry.Volume = entry.Volume.Add(set.Weight.Mul(reps))
					}
				}
			}
		}
	}

	summary.Exercises = make([]ExerciseStats, 0, len(byName))
	for name, entry := range byName {
		entry.Workouts = len(seenIn[name])
		summary.Exercises = append(summary.Exercises, *entry)
	}
	sort.Slice(summary.Exercises, func(i, j int) bool {
		return summary.Exercises[i].Exercise < summary.Exercises[j].Exercise
	})

	return summary
}
