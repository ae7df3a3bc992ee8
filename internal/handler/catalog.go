package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/liftlog/api/internal/cache"
	"github.com/liftlog/api/internal/repository"
)

type CatalogHandler struct {
	repo  *repository.CatalogRepo
	cache *cache.RedisCache
}

func NewCatalogHandler(repo *repository.CatalogRepo, redisCache *cache.RedisCache) *CatalogHandler {
	return &CatalogHandler{repo: repo, cache: redisCache}
}

// List returns the whole catalog, alphabetically.
func (h *CatalogHandler) List(c *gin.Context) {
	exercises, err := h.repo.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"exercises": exercises})
}

// Search filters the catalog by substring match on name.
func (h *CatalogHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q query parameter is required"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	exercises, err := h.repo.Search(c.Request.Context(), query, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"exercises": exercises})
}

// Suggest serves prefix autocomplete from the Redis name index. When Redis
// is unavailable it falls back to a catalog search.
func (h *CatalogHandler) Suggest(c *gin.Context) {
	prefix := c.Query("q")
	if prefix == "" {
		c.JSON(http.StatusOK, gin.H{"suggestions": []string{}})
		return
	}

	if h.cache != nil {
		names, err := h.cache.SuggestExerciseNames(c.Request.Context(), prefix, 10)
		if err == nil {
			if names == nil {
				names = []string{}
			}
			c.JSON(http.StatusOK, gin.H{"suggestions": names})
			return
		}
	}

	exercises, err := h.repo.Search(c.Request.Context(), prefix, 10)
	if err != nil {
		respondError(c, err)
		return
	}
	names := make([]string, 0, len(exercises))
	for _, exercise := range exercises {
		names = append(names, exercise.Name)
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": names})
}

type RenameExerciseRequest struct {
	Name string `json:"name" binding:"required"`
}

// Rename changes a catalog entry's display name. Admin only.
func (h *CatalogHandler) Rename(c *gin.Context) {
	var req RenameExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	exercise, err := h.repo.Rename(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, exercise)
}

type MergeExerciseRequest struct {
	DuplicateID string `json:"duplicateId" binding:"required"`
}

// Merge folds a duplicate catalog entry into this one. Admin only.
func (h *CatalogHandler) Merge(c *gin.Context) {
	var req MergeExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "duplicateId is required"})
		return
	}

	exercise, err := h.repo.Merge(c.Request.Context(), c.Param("id"), req.DuplicateID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, exercise)
}
