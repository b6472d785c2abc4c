package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sociolens/sociolens/model"
	"github.com/sociolens/sociolens/utils"
)

// CreateRuleRequest carries the operator supplied rule fields. Scheduling
// state (flags, timestamps) always starts from the defaults.
type CreateRuleRequest struct {
	Name             string `json:"name" binding:"required"`
	Platform         string `json:"platform" binding:"required"`
	RuleType         string `json:"rule_type" binding:"required"`
	RuleValue        string `json:"rule_value" binding:"required"`
	IsActive         *bool  `json:"is_active"`
	PollFrequencySec int32  `json:"poll_frequency"`
}

// UpdateRuleRequest updates only what the operator sent.
type UpdateRuleRequest struct {
	Name             *string `json:"name"`
	Platform         *string `json:"platform"`
	RuleType         *string `json:"rule_type"`
	RuleValue        *string `json:"rule_value"`
	IsActive         *bool   `json:"is_active"`
	PollFrequencySec *int32  `json:"poll_frequency"`
}

var validPlatforms = []string{model.PlatformBluesky, model.PlatformTwitter, model.PlatformAll}
var validRuleTypes = []string{model.RuleTypeKeyword, model.RuleTypeMention, model.RuleTypeHashtag}

func (s *Server) ListRules(c *gin.Context) {
	query := s.db.Order("created_at desc")

	if isActive := c.Query("is_active"); isActive != "" {
		query = query.Where("is_active = ?", isActive == "true")
	}
	if platform := c.Query("platform"); platform != "" {
		query = query.Where("platform = ?", platform)
	}

	rules := []*model.Rule{}
	if err := query.Find(&rules).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rules)
}

func (s *Server) CreateRule(c *gin.Context) {
	req := CreateRuleRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !utils.ContainsString(validPlatforms, req.Platform) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown platform: " + req.Platform})
		return
	}
	if !utils.ContainsString(validRuleTypes, req.RuleType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown rule type: " + req.RuleType})
		return
	}

	rule := model.Rule{
		Name:             req.Name,
		Platform:         req.Platform,
		RuleType:         req.RuleType,
		RuleValue:        req.RuleValue,
		IsActive:         true,
		PollFrequencySec: 300,
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if req.PollFrequencySec > 0 {
		rule.PollFrequencySec = req.PollFrequencySec
	}

	if err := s.db.Create(&rule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (s *Server) GetRule(c *gin.Context) {
	rule, ok := s.findRule(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rule)
}

func (s *Server) UpdateRule(c *gin.Context) {
	rule, ok := s.findRule(c)
	if !ok {
		return
	}

	req := UpdateRuleRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.Platform != nil {
		if !utils.ContainsString(validPlatforms, *req.Platform) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown platform: " + *req.Platform})
			return
		}
		rule.Platform = *req.Platform
	}
	if req.RuleType != nil {
		if !utils.ContainsString(validRuleTypes, *req.RuleType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown rule type: " + *req.RuleType})
			return
		}
		rule.RuleType = *req.RuleType
	}
	if req.RuleValue != nil {
		rule.RuleValue = *req.RuleValue
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if req.PollFrequencySec != nil {
		rule.PollFrequencySec = *req.PollFrequencySec
	}

	if err := s.db.Save(rule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rule)
}

// DeleteRule removes the rule; posts, entity links and scrape states go
// with it through the cascading foreign keys, not through pipeline logic.
func (s *Server) DeleteRule(c *gin.Context) {
	rule, ok := s.findRule(c)
	if !ok {
		return
	}
	if err := s.db.Delete(rule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": rule.Id})
}

func (s *Server) ToggleRule(c *gin.Context) {
	rule, ok := s.findRule(c)
	if !ok {
		return
	}
	rule.IsActive = !rule.IsActive
	if err := s.db.Save(rule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rule)
}

// AcknowledgeRule clears the has_new_content flag. It is the only way the
// flag goes back to false, empty cycles never clear it.
func (s *Server) AcknowledgeRule(c *gin.Context) {
	rule, ok := s.findRule(c)
	if !ok {
		return
	}
	rule.HasNewContent = false
	if err := s.db.Save(rule).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rule)
}

// CollectNow forwards the manual trigger to the pipeline service. The
// pipeline queues the cycle behind any running one for the same rule.
func (s *Server) CollectNow(c *gin.Context) {
	rule, ok := s.findRule(c)
	if !ok {
		return
	}
	payload, _ := json.Marshal(map[string]int32{"rule_id": rule.Id})
	s.proxyToPipeline(c, "/collect", payload)
}

// ResetScrapeState forwards the explicit operator reset to the pipeline.
func (s *Server) ResetScrapeState(c *gin.Context) {
	rule, ok := s.findRule(c)
	if !ok {
		return
	}
	s.proxyToPipeline(c, "/rules/"+strconv.FormatInt(int64(rule.Id), 10)+"/scrape-state/reset", nil)
}

func (s *Server) proxyToPipeline(c *gin.Context, path string, payload []byte) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	res, err := s.http.Post(ctx, s.pipelineUrl+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "pipeline unreachable: " + err.Error()})
		return
	}
	defer res.Body.Close()
	body, _ := ioutil.ReadAll(res.Body)
	c.Data(res.StatusCode, "application/json", body)
}

func (s *Server) findRule(c *gin.Context) (*model.Rule, bool) {
	id, ok := parseIdParam(c)
	if !ok {
		return nil, false
	}
	rule := model.Rule{}
	if err := s.db.First(&rule, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "rule not found"})
		return nil, false
	}
	return &rule, true
}
