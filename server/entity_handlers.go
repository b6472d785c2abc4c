package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sociolens/sociolens/model"
)

const DefaultTopEntityLimit = 20

// TopEntityView is one row of the top-entities leaderboard.
type TopEntityView struct {
	EntityId    int64  `json:"entity_id"`
	EntityType  string `json:"entity_type"`
	EntityText  string `json:"entity_text"`
	DisplayText string `json:"display_text"`
	Occurrences int64  `json:"occurrences"`
	PostCount   int64  `json:"post_count"`
}

func (s *Server) ListEntities(c *gin.Context) {
	query := s.db.Order("created_at desc")
	if entityType := c.Query("entity_type"); entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}
	if q := c.Query("q"); q != "" {
		query = query.Where("entity_text ILIKE ?", "%"+q+"%")
	}

	limit := queryInt(c, "limit", DefaultPostPageSize)
	if limit > MaxPostPageSize {
		limit = MaxPostPageSize
	}

	entities := []*model.Entity{}
	if err := query.Limit(limit).Offset(queryInt(c, "offset", 0)).Find(&entities).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entities)
}

// TopEntities ranks entities by how often they appear in collected posts,
// optionally scoped to one rule or one entity type.
func (s *Server) TopEntities(c *gin.Context) {
	query := s.db.Model(&model.PostEntity{}).
		Select("entities.id as entity_id, entities.entity_type, entities.entity_text, entities.display_text, count(*) as occurrences, count(distinct post_entities.post_id) as post_count").
		Joins("JOIN entities ON entities.id = post_entities.entity_id").
		Group("entities.id, entities.entity_type, entities.entity_text, entities.display_text").
		Order("occurrences desc")

	if entityType := c.Query("entity_type"); entityType != "" {
		query = query.Where("entities.entity_type = ?", entityType)
	}
	if ruleId := c.Query("rule_id"); ruleId != "" {
		query = query.
			Joins("JOIN posts ON posts.id = post_entities.post_id").
			Where("posts.rule_id = ?", ruleId)
	}

	limit := queryInt(c, "limit", DefaultTopEntityLimit)
	if limit > MaxPostPageSize {
		limit = MaxPostPageSize
	}

	views := []*TopEntityView{}
	if err := query.Limit(limit).Scan(&views).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, views)
}

// EntityTypes lists the distinct entity types present in the catalog with
// how many entities each holds.
func (s *Server) EntityTypes(c *gin.Context) {
	type typeCount struct {
		EntityType string `json:"entity_type"`
		Count      int64  `json:"count"`
	}
	counts := []*typeCount{}
	err := s.db.Model(&model.Entity{}).
		Select("entity_type, count(*) as count").
		Group("entity_type").
		Order("count desc").
		Scan(&counts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, counts)
}
