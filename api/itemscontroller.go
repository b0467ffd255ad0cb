package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"insightbeam/core"
)

// RegisterItemRoutes registers item lookup and analysis endpoints.
func RegisterItemRoutes(r *gin.Engine, c *core.Core) {
	g := r.Group("/items")
	g.GET("/:id", handleGetItem(c))
	g.GET("/:id/analysis", handleGetAnalysis(c))
	g.GET("/:id/counter-analysis", handleGetCounterAnalysis(c))
}

func handleGetItem(c *core.Core) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		itemID, ok := pathID(ctx)
		if !ok {
			return
		}

		item, err := c.GetItem(itemID)
		if err != nil {
			respondWithError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, item)
	}
}

func handleGetAnalysis(c *core.Core) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		itemID, ok := pathID(ctx)
		if !ok {
			return
		}

		analysis, err := c.GetAnalysis(ctx.Request.Context(), itemID)
		if err != nil {
			respondWithError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, analysis)
	}
}

func handleGetCounterAnalysis(c *core.Core) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		itemID, ok := pathID(ctx)
		if !ok {
			return
		}

		counter, err := c.GetCounterAnalysis(ctx.Request.Context(), itemID)
		if err != nil {
			respondWithError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, counter)
	}
}
