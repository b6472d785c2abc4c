package main

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sociolens/sociolens/collector"
	"github.com/sociolens/sociolens/model"
	"github.com/sociolens/sociolens/nlp"
	"github.com/sociolens/sociolens/pipeline"
	"github.com/sociolens/sociolens/pipeline/modules"
	"github.com/sociolens/sociolens/protocol"
	Logger "github.com/sociolens/sociolens/utils/log"
	"google.golang.org/protobuf/proto"
	"gorm.io/gorm"
)

type collectRequest struct {
	RuleId int32 `json:"rule_id"`
}

type schedulerJobStatus struct {
	RuleId   int32  `json:"rule_id"`
	RuleName string `json:"rule_name"`
	NextRun  string `json:"next_run"`
}

// RunTriggerAPI serves the pipeline's own HTTP surface. Manual triggers
// publish onto the same event bus the scheduler uses, so they go through
// the identical per-rule serialization: a manual trigger for a rule with a
// running cycle queues behind it.
func RunTriggerAPI(db *gorm.DB, registry *collector.Registry, scheduler *modules.Scheduler, executor *modules.CycleExecutor, enricher *nlp.Orchestrator, eventbus *gochannel.GoChannel, address string) {
	if address == "" {
		address = ":8001"
	}

	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "pipeline"})
	})

	router.GET("/status", func(c *gin.Context) {
		jobs := []schedulerJobStatus{}
		for _, job := range scheduler.JobsSnapshot() {
			jobs = append(jobs, schedulerJobStatus{
				RuleId:   job.RuleId(),
				RuleName: job.Rule().Name,
				NextRun:  job.NextRun().String(),
			})
		}

		configured := gin.H{}
		for _, platform := range registry.Platforms() {
			col, err := registry.Get(platform)
			if err == nil {
				configured[platform] = col.IsConfigured()
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "running",
			"collectors": configured,
			"jobs":       jobs,
		})
	})

	router.POST("/collect", func(c *gin.Context) {
		req := collectRequest{}
		// An empty body means "collect every active rule".
		_ = c.ShouldBindJSON(&req)

		rules := []*model.Rule{}
		query := db.Where("is_active = ?", true)
		if req.RuleId != 0 {
			query = query.Where("id = ?", req.RuleId)
		}
		if err := query.Find(&rules).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if len(rules) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "no active rules found"})
			return
		}

		for _, rule := range rules {
			job := &protocol.CycleJob{
				JobId:   uuid.NewString(),
				RuleId:  rule.Id,
				Trigger: pipeline.TriggerManual,
			}
			data, err := proto.Marshal(job)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			if err := eventbus.Publish(pipeline.TopicPendingCycle, message.NewMessage(watermill.NewUUID(), data)); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "queued",
			"message": "collection triggered",
			"rules":   len(rules),
		})
	})

	router.POST("/posts/:id/reprocess", func(c *gin.Context) {
		postId, ok := parseIdParam(c)
		if !ok {
			return
		}
		post, err := enricher.Reprocess(context.Background(), postId)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, post)
	})

	router.POST("/rules/:id/scrape-state/reset", func(c *gin.Context) {
		ruleId, ok := parseIdParam(c)
		if !ok {
			return
		}
		if err := executor.ResetScrapeState(int32(ruleId)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "reset", "id": ruleId})
	})

	Logger.Log.Infof("pipeline trigger api listening on %s", address)
	if err := router.Run(address); err != nil {
		Logger.Log.Errorf("trigger api stopped: %v", err)
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
