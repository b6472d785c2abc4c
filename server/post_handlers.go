package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sociolens/sociolens/model"
)

const (
	DefaultPostPageSize = 50
	MaxPostPageSize     = 200
)

// PostEntityView flattens a PostEntity link with its entity for responses.
type PostEntityView struct {
	EntityId   int64  `json:"entity_id"`
	EntityType string `json:"entity_type"`
	EntityText string `json:"entity_text"`
	StartPos   int32  `json:"start_pos"`
	EndPos     int32  `json:"end_pos"`
	Confidence float64 `json:"confidence"`
}

// ListPosts supports the operator facing filters: rule, platform, sentiment
// label, author/content substring match and a collected_at window, with
// offset pagination ordered newest first.
func (s *Server) ListPosts(c *gin.Context) {
	query := s.db.Model(&model.Post{})

	if ruleId := c.Query("rule_id"); ruleId != "" {
		query = query.Where("rule_id = ?", ruleId)
	}
	if platform := c.Query("platform"); platform != "" {
		query = query.Where("platform = ?", platform)
	}
	if label := c.Query("sentiment_label"); label != "" {
		query = query.Where("sentiment_label = ?", label)
	}
	if author := c.Query("author"); author != "" {
		query = query.Where("author_handle ILIKE ?", "%"+author+"%")
	}
	if content := c.Query("q"); content != "" {
		query = query.Where("content ILIKE ?", "%"+content+"%")
	}
	if since := c.Query("since"); since != "" {
		query = query.Where("collected_at >= ?", since)
	}
	if until := c.Query("until"); until != "" {
		query = query.Where("collected_at <= ?", until)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	limit := queryInt(c, "limit", DefaultPostPageSize)
	if limit > MaxPostPageSize {
		limit = MaxPostPageSize
	}
	offset := queryInt(c, "offset", 0)

	posts := []*model.Post{}
	err := query.Order("post_created_at desc nulls last, id desc").
		Limit(limit).Offset(offset).
		Find(&posts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  limit,
		"offset": offset,
		"posts":  posts,
	})
}

func (s *Server) GetPost(c *gin.Context) {
	post, ok := s.findPost(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, post)
}

func (s *Server) DeletePost(c *gin.Context) {
	post, ok := s.findPost(c)
	if !ok {
		return
	}
	if err := s.db.Delete(post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": post.Id})
}

// GetPostEntities returns the extracted entity mentions of one post with
// their character offsets, joined against the entity catalog.
func (s *Server) GetPostEntities(c *gin.Context) {
	post, ok := s.findPost(c)
	if !ok {
		return
	}

	views := []*PostEntityView{}
	err := s.db.Model(&model.PostEntity{}).
		Select("post_entities.entity_id, entities.entity_type, entities.entity_text, post_entities.start_pos, post_entities.end_pos, post_entities.confidence").
		Joins("JOIN entities ON entities.id = post_entities.entity_id").
		Where("post_entities.post_id = ?", post.Id).
		Order("post_entities.start_pos asc").
		Scan(&views).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, views)
}

// ReprocessPost forwards to the pipeline service, which re-runs sentiment
// and entity extraction against the stored content.
func (s *Server) ReprocessPost(c *gin.Context) {
	post, ok := s.findPost(c)
	if !ok {
		return
	}
	s.proxyToPipeline(c, "/posts/"+strconv.FormatInt(post.Id, 10)+"/reprocess", nil)
}

func (s *Server) findPost(c *gin.Context) (*model.Post, bool) {
	id, ok := parseIdParam(c)
	if !ok {
		return nil, false
	}
	post := model.Post{}
	if err := s.db.First(&post, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return nil, false
	}
	return &post, true
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
