package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/liftlog/api/internal/middleware"
	"github.com/liftlog/api/internal/service"
	"github.com/liftlog/api/internal/stats"
)

type StatsHandler struct {
	svc *service.DayService
}

func NewStatsHandler(svc *service.DayService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// Summary aggregates the user's workouts over an inclusive date range.
// Defaults to a single day when only "from" is given.
func (h *StatsHandler) Summary(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	from := c.Query("from")
	if from == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from query parameter is required"})
		return
	}
	to := c.DefaultQuery("to", from)

	workouts, err := h.svc.WorkoutsForRange(c.Request.Context(), userID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	summary := stats.Analyze(workouts)
	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "stats": summary})
}
