package service

import (
	"context"
	"fmt"
	"time"

	"github.com/liftlog/api/internal/model"
	"github.com/liftlog/api/internal/repository"
)

// DateLayout is the calendar-date form exchanged with callers: a plain
// YYYY-MM-DD day with no time-of-day and no offset.
const DateLayout = "2006-01-02"

// DayService turns calendar dates into time windows and shapes workout
// aggregates into the flattened edit-document form and back.
type DayService struct {
	repo *repository.WorkoutRepo
	loc  *time.Location
}

// NewDayService builds the service with the zone all day boundaries are
// computed in. A nil location means the server's local zone.
func NewDayService(repo *repository.WorkoutRepo, loc *time.Location) *DayService {
	if loc == nil {
		loc = time.Local
	}
	return &DayService{repo: repo, loc: loc}
}

// DayWindow returns the half-open window [midnight, next midnight) for the
// given calendar day in the service's zone. The upper bound is exclusive;
// a workout started exactly at the next midnight belongs to the next day.
func (s *DayService) DayWindow(date string) (start, end time.Time, err error) {
	start, err = time.ParseInLocation(DateLayout, date, s.loc)
	if err != nil {
		return time.Time{}, time.Time{}, &ValidationError{
			Field:  "date",
			Reason: fmt.Sprintf("must be a %s calendar date", DateLayout),
		}
	}

	// AddDate rather than +24h so the window stays aligned to midnight
	// across DST transitions.
	end = start.AddDate(0, 0, 1)
	return start, end, nil
}

// WorkoutsForDay returns the user's workouts for one calendar day, most
// recent first, fully hydrated.
func (s *DayService) WorkoutsForDay(ctx context.Context, userID int64, date string) ([]model.Workout, error) {
	start, end, err := s.DayWindow(date)
	if err != nil {
		return nil, err
	}
	return s.repo.FindForUserInWindow(ctx, userID, start, end)
}

// WorkoutsForRange returns the user's workouts for an inclusive range of
// calendar days, most recent first.
func (s *DayService) WorkoutsForRange(ctx context.Context, userID int64, fromDate, toDate string) ([]model.Workout, error) {
	start, _, err := s.DayWindow(fromDate)
	if err != nil {
		return nil, err
	}
	_, end, err := s.DayWindow(toDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, &ValidationError{Field: "to", Reason: "must not be before from"}
	}
	return s.repo.FindForUserInWindow(ctx, userID, start, end)
}

// EditDocumentForWorkout loads one workout for editing.
func (s *DayService) EditDocumentForWorkout(ctx context.Context, workoutID string, userID int64) (*EditDocument, error) {
	workout, err := s.repo.FindByID(ctx, workoutID, userID)
	if err != nil {
		return nil, err
	}
	doc := ToEditDocument(*workout)
	return &doc, nil
}

// CreateFromDocument validates the document and creates the aggregate.
func (s *DayService) CreateFromDocument(ctx context.Context, userID int64, doc EditDocument) (*model.Workout, error) {
	specs, err := FromEditDocument(doc)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, userID, doc.Name, doc.StartedAt, doc.Metadata, specs)
}

// UpdateFromDocument validates the document and replaces the stored
// aggregate's composition wholesale.
func (s *DayService) UpdateFromDocument(ctx context.Context, workoutID string, userID int64, doc EditDocument) (*model.Workout, error) {
	specs, err := FromEditDocument(doc)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, workoutID, userID, doc.Name, doc.StartedAt, doc.CompletedAt, doc.Metadata, specs)
}

// CompleteWorkout marks the workout done now. Once completed a workout
// stays completed; there is no transition back to in-progress.
func (s *DayService) CompleteWorkout(ctx context.Context, workoutID string, userID int64) (*model.Workout, error) {
	return s.repo.Complete(ctx, workoutID, userID, time.Now().In(s.loc))
}

// Location exposes the zone day boundaries are computed in.
func (s *DayService) Location() *time.Location {
	return s.loc
}
