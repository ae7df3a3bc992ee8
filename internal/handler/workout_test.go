package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/liftlog/api/internal/auth"
	"github.com/liftlog/api/internal/database"
	"github.com/liftlog/api/internal/handler"
	"github.com/liftlog/api/internal/middleware"
	"github.com/liftlog/api/internal/model"
	"github.com/liftlog/api/internal/repository"
	"github.com/liftlog/api/internal/service"
)

const testSecret = "test-secret"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	svc := service.NewDayService(repository.NewWorkoutRepo(db), time.UTC)

	// No Redis in tests; the handler runs fail-open without a cache.
	workoutHandler := handler.NewWorkoutHandler(svc, nil)
	statsHandler := handler.NewStatsHandler(svc)

	r := gin.New()
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware(testSecret))
	{
		api.GET("/workouts", workoutHandler.ListByDay)
		api.POST("/workouts", workoutHandler.Create)
		api.GET("/workouts/:id", workoutHandler.Get)
		api.PUT("/workouts/:id", workoutHandler.Update)
		api.POST("/workouts/:id/complete", workoutHandler.Complete)
		api.GET("/stats", statsHandler.Summary)
	}
	return r
}

func token(t *testing.T, userID int64) string {
	t.Helper()
	accessToken, err := auth.GenerateAccessToken(&model.User{ID: userID, Email: "user@example.com"}, testSecret)
	require.NoError(t, err)
	return "Bearer " + accessToken
}

func doRequest(t *testing.T, r *gin.Engine, method, path, authHeader string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func legDayDoc() service.EditDocument {
	w := decimal.RequireFromString("100")
	r := 5
	return service.EditDocument{
		Name:      "Leg Day",
		StartedAt: time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC),
		Exercises: []service.EditExercise{
			{Name: "Squat", Sets: []service.EditSet{
				{Weight: &w, Reps: &r},
				{Weight: &w, Reps: &r},
			}},
		},
	}
}

func TestWorkoutLifecycle(t *testing.T) {
	r := newTestRouter(t)
	owner := token(t, 1)

	// Create
	rec := doRequest(t, r, "POST", "/api/workouts", owner, legDayDoc())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created model.Workout
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	// Read back as edit document
	rec = doRequest(t, r, "GET", "/api/workouts/"+created.ID, owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc service.EditDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "Leg Day", doc.Name)
	require.Len(t, doc.Exercises, 1)
	assert.Equal(t, "Squat", doc.Exercises[0].Name)
	require.Len(t, doc.Exercises[0].Sets, 2)

	// List by day
	rec = doRequest(t, r, "GET", "/api/workouts?date=2025-09-01", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listResponse struct {
		Date     string          `json:"date"`
		Workouts []model.Workout `json:"workouts"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listResponse))
	require.Len(t, listResponse.Workouts, 1)
	assert.Equal(t, created.ID, listResponse.Workouts[0].ID)

	// Update: replace the composition
	doc.Exercises = append(doc.Exercises, service.EditExercise{
		Name: "Leg Press",
		Sets: []service.EditSet{{Reps: intPtr(12)}},
	})
	rec = doRequest(t, r, "PUT", "/api/workouts/"+created.ID, owner, doc)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated model.Workout
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	require.Len(t, updated.Exercises, 2)
	assert.Equal(t, "Leg Press", updated.Exercises[1].Exercise.Name)

	// Complete
	rec = doRequest(t, r, "POST", "/api/workouts/"+created.ID+"/complete", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var completed model.Workout
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &completed))
	assert.NotNil(t, completed.CompletedAt)

	// Stats over the day
	rec = doRequest(t, r, "GET", "/api/stats?from=2025-09-01", owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Squat")
}

func TestWorkoutAccess_StatusCodes(t *testing.T) {
	r := newTestRouter(t)
	owner := token(t, 1)
	stranger := token(t, 2)

	rec := doRequest(t, r, "POST", "/api/workouts", owner, legDayDoc())
	require.Equal(t, http.StatusCreated, rec.Code)
	var created model.Workout
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// No token at all
	rec = doRequest(t, r, "GET", "/api/workouts/"+created.ID, "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Foreign owner gets the same 404 as a missing id
	rec = doRequest(t, r, "GET", "/api/workouts/"+created.ID, stranger, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doRequest(t, r, "GET", "/api/workouts/"+uuid.NewString(), owner, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Structural violations come back as 400 with the offending field
	invalid := legDayDoc()
	invalid.Exercises[0].Sets = nil
	rec = doRequest(t, r, "POST", "/api/workouts", owner, invalid)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "exercises[0].sets")

	// Missing date parameter
	rec = doRequest(t, r, "GET", "/api/workouts", owner, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Malformed date
	rec = doRequest(t, r, "GET", "/api/workouts?date=yesterday", owner, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func intPtr(n int) *int {
	return &n
}
