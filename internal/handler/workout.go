package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/liftlog/api/internal/cache"
	"github.com/liftlog/api/internal/middleware"
	"github.com/liftlog/api/internal/repository"
	"github.com/liftlog/api/internal/service"
)

type WorkoutHandler struct {
	svc   *service.DayService
	cache *cache.RedisCache
}

// NewWorkoutHandler wires the day service and an optional Redis cache;
// a nil cache disables day-view caching (fail-open).
func NewWorkoutHandler(svc *service.DayService, redisCache *cache.RedisCache) *WorkoutHandler {
	return &WorkoutHandler{svc: svc, cache: redisCache}
}

// ListByDay returns the authenticated user's workouts for one calendar
// day, most recent first.
func (h *WorkoutHandler) ListByDay(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}

	if h.cache != nil {
		if view, err := h.cache.GetDayView(c.Request.Context(), userID, date); err == nil {
			middleware.RecordDayViewLookup(true)
			c.Data(http.StatusOK, "application/json", view)
			return
		}
		middleware.RecordDayViewLookup(false)
	}

	workouts, err := h.svc.WorkoutsForDay(c.Request.Context(), userID, date)
	if err != nil {
		respondError(c, err)
		return
	}

	response := gin.H{"date": date, "workouts": workouts}

	if h.cache != nil {
		if view, err := json.Marshal(response); err == nil {
			if err := h.cache.SetDayView(c.Request.Context(), userID, date, view); err != nil {
				log.Printf("Failed to cache day view for user %d: %v", userID, err)
			}
		}
	}

	c.JSON(http.StatusOK, response)
}

// Get returns one workout as an edit document.
func (h *WorkoutHandler) Get(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	doc, err := h.svc.EditDocumentForWorkout(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// Create builds a new workout aggregate from an edit document.
func (h *WorkoutHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var doc service.EditDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	workout, err := h.svc.CreateFromDocument(c.Request.Context(), userID, doc)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.RecordWorkoutCreated()
	h.invalidateDay(c.Request.Context(), userID, workout.StartedAt.In(h.svc.Location()).Format(service.DateLayout))

	c.JSON(http.StatusCreated, workout)
}

// Update replaces the workout's composition wholesale from an edit document.
func (h *WorkoutHandler) Update(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var doc service.EditDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	workoutID := c.Param("id")

	// The edit may move the workout to another day; drop both cached views.
	previous, err := h.svc.EditDocumentForWorkout(c.Request.Context(), workoutID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	workout, err := h.svc.UpdateFromDocument(c.Request.Context(), workoutID, userID, doc)
	if err != nil {
		respondError(c, err)
		return
	}

	h.invalidateDay(c.Request.Context(), userID, previous.StartedAt.In(h.svc.Location()).Format(service.DateLayout))
	h.invalidateDay(c.Request.Context(), userID, workout.StartedAt.In(h.svc.Location()).Format(service.DateLayout))

	c.JSON(http.StatusOK, workout)
}

// Complete marks a workout done. Completion is one-way.
func (h *WorkoutHandler) Complete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	workout, err := h.svc.CompleteWorkout(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.RecordWorkoutCompleted("user")
	h.invalidateDay(c.Request.Context(), userID, workout.StartedAt.In(h.svc.Location()).Format(service.DateLayout))

	c.JSON(http.StatusOK, workout)
}

func (h *WorkoutHandler) invalidateDay(ctx context.Context, userID int64, date string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.InvalidateDayView(ctx, userID, date); err != nil {
		log.Printf("Failed to invalidate day view for user %d: %v", userID, err)
	}
}

// respondError maps service and repository errors onto the API's status
// codes. Store error text stays in the server log; the client only ever
// sees an opaque message.
func respondError(c *gin.Context, err error) {
	var validationErr *service.ValidationError

	switch {
	case errors.Is(err, repository.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
	case errors.Is(err, repository.ErrWorkoutNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "workout not found"})
	case errors.Is(err, repository.ErrExerciseNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "exercise not found"})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"field":  validationErr.Field,
			"reason": validationErr.Reason,
		})
	default:
		log.Printf("Request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
