package server

import (
	"github.com/gin-gonic/gin"

	"jobtracker-backend/internal/shared/server/middleware"
	"jobtracker-backend/internal/shared/server/respond"
)

// registerMeRoutes attaches the /me endpoint, which echoes the resolved caller.
func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", meHandler)
}

func meHandler(c *gin.Context) {
	respond.OK(c, gin.H{
		"userId":    middleware.UserIDFromContext(c),
		"requestId": middleware.RequestIDFromContext(c),
	})
}
