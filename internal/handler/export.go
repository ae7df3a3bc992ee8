package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/liftlog/api/internal/middleware"
	"github.com/liftlog/api/internal/model"
	"github.com/liftlog/api/internal/service"
)

type ExportHandler struct {
	svc *service.DayService
}

func NewExportHandler(svc *service.DayService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// Export renders the authenticated user's workouts for one calendar day as
// JSON, CSV or Markdown.
func (h *ExportHandler) Export(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	date := c.Param("date")
	format := c.DefaultQuery("format", "json")

	workouts, err := h.svc.WorkoutsForDay(c.Request.Context(), userID, date)
	if err != nil {
		respondError(c, err)
		return
	}

	switch format {
	case "json":
		h.exportJSON(c, date, workouts)
	case "csv":
		h.exportCSV(c, date, workouts)
	case "md", "markdown":
		h.exportMarkdown(c, date, workouts)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid format. Use json, csv, or md"})
	}
}

func (h *ExportHandler) exportJSON(c *gin.Context, date string, workouts []model.Workout) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=workouts-%s.json", date))
	c.JSON(http.StatusOK, gin.H{"date": date, "workouts": workouts})
}

func (h *ExportHandler) exportCSV(c *gin.Context, date string, workouts []model.Workout) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	writer.Write([]string{"Workout", "Started At", "Exercise", "Set", "Weight", "Reps"})

	for _, workout := range workouts {
		for _, we := range workout.Exercises {
			for _, set := range we.Sets {
				weight := ""
				if set.Weight != nil {
					weight = set.Weight.StringFixed(2)
				}
				reps := ""
				if set.Reps != nil {
					reps = strconv.Itoa(*set.Reps)
				}
				writer.Write([]string{
					workout.Name,
					workout.StartedAt.Format("2006-01-02 15:04"),
					we.Exercise.Name,
					strconv.Itoa(set.SetNumber),
					weight,
					reps,
				})
			}
		}
	}

	writer.Flush()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=workouts-%s.csv", date))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func (h *ExportHandler) exportMarkdown(c *gin.Context, date string, workouts []model.Workout) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Workouts for %s\n\n", date)
	if len(workouts) == 0 {
		buf.WriteString("No workouts recorded.\n")
	}

	for _, workout := range workouts {
		status := "in progress"
		if workout.Completed() {
			status = "completed"
		}
		fmt.Fprintf(&buf, "## %s (%s, started %s)\n\n", workout.Name, status, workout.StartedAt.Format("15:04"))

		for _, we := range workout.Exercises {
			fmt.Fprintf(&buf, "### %d. %s\n\n", we.Position+1, we.Exercise.Name)
			fmt.Fprintf(&buf, "| Set | Weight | Reps |\n|-----|--------|------|\n")
			for _, set := range we.Sets {
				weight := "-"
				if set.Weight != nil {
					weight = set.Weight.StringFixed(2)
				}
				reps := "-"
				if set.Reps != nil {
					reps = strconv.Itoa(*set.Reps)
				}
				fmt.Fprintf(&buf, "| %d | %s | %s |\n", set.SetNumber, weight, reps)
			}
			buf.WriteString("\n")
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=workouts-%s.md", date))
	c.Data(http.StatusOK, "text/markdown", buf.Bytes())
}
