package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"insightbeam/core"
	"insightbeam/store"
)

// RegisterSourceRoutes registers source management and pull endpoints.
func RegisterSourceRoutes(r *gin.Engine, c *core.Core) {
	g := r.Group("/sources")
	g.GET("", handleGetSources(c))
	g.POST("", handlePostSource(c))
	g.POST("/:id/pull", handlePullSource(c))
	g.GET("/:id/items", handleGetSourceItems(c))
}

// AddSourceRequest is the payload for registering a feed.
type AddSourceRequest struct {
	URL string `json:"url" binding:"required"`
}

func handleGetSources(c *core.Core) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		sources, err := c.GetSources()
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"sources": sources})
	}
}

func handlePostSource(c *core.Core) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req AddSourceRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		source, err := c.AddSource(req.URL)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusCreated, source)
	}
}

func handlePullSource(c *core.Core) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		sourceID, ok := pathID(ctx)
		if !ok {
			return
		}

		limit := 0
		if v := ctx.Query("limit"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed < 0 {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
				return
			}
			limit = parsed
		}

		items, failed, err := c.PullFromSource(ctx.Request.Context(), sourceID, limit)
		if err != nil {
			respondWithError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"items": items, "failed": failed})
	}
}

func handleGetSourceItems(c *core.Core) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		sourceID, ok := pathID(ctx)
		if !ok {
			return
		}

		items, err := c.GetSourceItems(sourceID)
		if err != nil {
			respondWithError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"items": items})
	}
}

// pathID parses the :id path parameter, writing a 400 on failure.
func pathID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return 0, false
	}
	return id, true
}

// respondWithError maps pipeline faults to HTTP statuses: missing records
// are 404, the counter-before-analysis precondition is 409, anything else
// is a 500.
func respondWithError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, core.ErrNoAnalysis):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
