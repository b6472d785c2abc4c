// Package server is the management surface over the pipeline's data:
// rule CRUD, post/entity reads and analytics aggregation. Collection and
// NLP never happen here; the operations that need them (collect now,
// reprocess) are proxied to the pipeline service which owns the models
// and the per-rule serialization.
package server

import (
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sociolens/sociolens/collector/clients"
	"gorm.io/gorm"
)

type Server struct {
	db *gorm.DB

	// Base url of the pipeline service, e.g. http://pipeline:8001.
	pipelineUrl string

	http *clients.HttpClient
}

func NewServer(db *gorm.DB) *Server {
	pipelineUrl := os.Getenv("PIPELINE_URL")
	if pipelineUrl == "" {
		pipelineUrl = "http://localhost:8001"
	}
	return &Server{
		db:          db,
		pipelineUrl: pipelineUrl,
		http:        clients.NewDefaultHttpClient(),
	}
}

func (s *Server) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "api"})
	})

	rules := router.Group("/rules")
	{
		rules.GET("", s.ListRules)
		rules.POST("", s.CreateRule)
		rules.GET("/:id", s.GetRule)
		rules.PUT("/:id", s.UpdateRule)
		rules.DELETE("/:id", s.DeleteRule)
		rules.POST("/:id/toggle", s.ToggleRule)
		rules.POST("/:id/acknowledge", s.AcknowledgeRule)
		rules.POST("/:id/collect", s.CollectNow)
		rules.POST("/:id/scrape-state/reset", s.ResetScrapeState)
	}

	posts := router.Group("/posts")
	{
		posts.GET("", s.ListPosts)
		posts.GET("/:id", s.GetPost)
		posts.DELETE("/:id", s.DeletePost)
		posts.GET("/:id/entities", s.GetPostEntities)
		posts.POST("/:id/reprocess", s.ReprocessPost)
	}

	entities := router.Group("/entities")
	{
		entities.GET("", s.ListEntities)
		entities.GET("/top", s.TopEntities)
		entities.GET("/types", s.EntityTypes)
	}

	analytics := router.Group("/analytics")
	{
		analytics.GET("/sentiment", s.SentimentAnalytics)
		analytics.GET("/engagement", s.EngagementAnalytics)
	}
}

func parseIdParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
