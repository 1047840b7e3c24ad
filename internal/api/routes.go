package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.Use(cors.Default())

	api := router.Group("/api")
	{
		api.GET("/properties", handler.GetAllProperties)
		api.GET("/properties/:id/comps", handler.GetPropertyComps)
		api.POST("/search", handler.SearchProperties)
		api.GET("/stats", handler.GetMarketStats)
	}
}
