package api

import (
	"github.com/gin-gonic/gin"

	"insightbeam/core"
)

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(c *core.Core) *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())

	RegisterSourceRoutes(r, c)
	RegisterItemRoutes(r, c)
	RegisterHealthRoutes(r)
	return r
}
