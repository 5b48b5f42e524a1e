package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/hotelsense/internal/api/handler"
	"github.com/timmy/hotelsense/internal/api/middleware"
	"github.com/timmy/hotelsense/internal/metrics"
)

// SetupRouter configures the Gin router with all routes
func SetupRouter(
	health *handler.HealthHandler,
	stages *handler.StageHandler,
	hotels *handler.HotelHandler,
	mode string,
) *gin.Engine {
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	r.GET("/health", health.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	{
		// Synchronous stage triggers
		st := v1.Group("/stages")
		st.POST("/ingest", stages.Ingest)
		st.POST("/rooms", stages.Rooms)
		st.POST("/amenities", stages.Amenities)
		st.POST("/rating", stages.Rating)

		v1.GET("/hotels/:hotel_id", hotels.GetHotel)
		v1.GET("/hotels/:hotel_id/images", hotels.ListImages)
	}

	return r
}
