package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sociolens/sociolens/model"
	"github.com/sociolens/sociolens/utils"
	"github.com/sociolens/sociolens/utils/dotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	dotenv.LoadDotEnvsInTests()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	NewServer(db).RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.Nil(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRuleLifecycle(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newTestRouter(db)

	w := doJSON(t, router, "POST", "/rules", map[string]interface{}{
		"name":       "brand monitoring",
		"platform":   model.PlatformBluesky,
		"rule_type":  model.RuleTypeKeyword,
		"rule_value": "brandx",
	})
	require.Equal(t, http.StatusOK, w.Code)

	created := model.Rule{}
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.IsActive)
	assert.Equal(t, int32(300), created.PollFrequencySec)

	// Unknown platform is rejected.
	w = doJSON(t, router, "POST", "/rules", map[string]interface{}{
		"name":       "bad",
		"platform":   "myspace",
		"rule_type":  model.RuleTypeKeyword,
		"rule_value": "x",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, "GET", fmt.Sprintf("/rules/%d", created.Id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "PUT", fmt.Sprintf("/rules/%d", created.Id), map[string]interface{}{
		"poll_frequency": 60,
	})
	require.Equal(t, http.StatusOK, w.Code)
	updated := model.Rule{}
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, int32(60), updated.PollFrequencySec)
	assert.Equal(t, "brand monitoring", updated.Name)

	w = doJSON(t, router, "POST", fmt.Sprintf("/rules/%d/toggle", created.Id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	toggled := model.Rule{}
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &toggled))
	assert.False(t, toggled.IsActive)

	w = doJSON(t, router, "DELETE", fmt.Sprintf("/rules/%d", created.Id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", fmt.Sprintf("/rules/%d", created.Id), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAcknowledgeRule_ClearsNewContentFlag(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newTestRouter(db)

	rule := model.Rule{
		Name:          "rule",
		Platform:      model.PlatformBluesky,
		RuleType:      model.RuleTypeKeyword,
		RuleValue:     "brandx",
		IsActive:      true,
		HasNewContent: true,
	}
	require.Nil(t, db.Create(&rule).Error)

	w := doJSON(t, router, "POST", fmt.Sprintf("/rules/%d/acknowledge", rule.Id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	fresh := model.Rule{}
	require.Nil(t, db.First(&fresh, rule.Id).Error)
	assert.False(t, fresh.HasNewContent)
}

func seedAnalyticsFixture(t *testing.T, db *gorm.DB) *model.Rule {
	rule := model.Rule{
		Name:      "rule",
		Platform:  model.PlatformBluesky,
		RuleType:  model.RuleTypeKeyword,
		RuleValue: "brandx",
		IsActive:  true,
	}
	require.Nil(t, db.Create(&rule).Error)

	now := time.Now().UTC()
	scores := []float64{0.8, -0.6, 0.0}
	labels := []string{model.SentimentPositive, model.SentimentNegative, model.SentimentNeutral}
	likes := []int32{10, 20, 30}
	for i := range scores {
		post := model.Post{
			RuleId:         rule.Id,
			Platform:       model.PlatformBluesky,
			PlatformPostId: fmt.Sprintf("p%d", i),
			Content:        "content",
			LikesCount:     likes[i],
			SentimentScore: &scores[i],
			SentimentLabel: &labels[i],
			NlpProcessedAt: &now,
			CollectedAt:    now,
		}
		require.Nil(t, db.Create(&post).Error)
	}
	return &rule
}

func TestSentimentAnalytics(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newTestRouter(db)
	seedAnalyticsFixture(t, db)

	w := doJSON(t, router, "GET", "/analytics/sentiment", nil)
	require.Equal(t, http.StatusOK, w.Code)

	res := SentimentAnalyticsResponse{}
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, int64(3), res.TotalPosts)
	assert.Equal(t, int64(3), res.ProcessedPosts)
	assert.Equal(t, int64(0), res.FailedPosts)
	assert.Equal(t, int64(1), res.LabelCounts[model.SentimentPositive])
	assert.Equal(t, int64(1), res.LabelCounts[model.SentimentNegative])
	assert.Equal(t, int64(1), res.LabelCounts[model.SentimentNeutral])
	require.NotNil(t, res.AverageScore)
	assert.InDelta(t, 0.0666, *res.AverageScore, 0.001)
}

func TestEngagementAnalytics(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newTestRouter(db)
	seedAnalyticsFixture(t, db)

	w := doJSON(t, router, "GET", "/analytics/engagement", nil)
	require.Equal(t, http.StatusOK, w.Code)

	res := EngagementAnalyticsResponse{}
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, int64(3), res.TotalPosts)
	assert.Equal(t, int64(60), res.TotalLikes)
	assert.InDelta(t, 20.0, res.AverageLikes, 0.001)
	require.NotNil(t, res.TopPostLikes)
	assert.Equal(t, int32(30), *res.TopPostLikes)
}

func TestListPosts_Filters(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newTestRouter(db)
	rule := seedAnalyticsFixture(t, db)

	w := doJSON(t, router, "GET", fmt.Sprintf("/posts?rule_id=%d&sentiment_label=positive", rule.Id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Total int64         `json:"total"`
		Posts []*model.Post `json:"posts"`
	}
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, int64(1), res.Total)
	require.Len(t, res.Posts, 1)
	require.NotNil(t, res.Posts[0].SentimentLabel)
	assert.Equal(t, model.SentimentPositive, *res.Posts[0].SentimentLabel)
}

func TestGetPostEntities(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newTestRouter(db)
	rule := seedAnalyticsFixture(t, db)

	post := model.Post{}
	require.Nil(t, db.Where("rule_id = ?", rule.Id).First(&post).Error)

	entity := model.Entity{EntityType: "PERSON", EntityText: "alice", DisplayText: "Alice"}
	require.Nil(t, db.Create(&entity).Error)
	link := model.PostEntity{PostId: post.Id, EntityId: entity.Id, StartPos: 0, EndPos: 5, Confidence: 1.0}
	require.Nil(t, db.Create(&link).Error)

	w := doJSON(t, router, "GET", fmt.Sprintf("/posts/%d/entities", post.Id), nil)
	require.Equal(t, http.StatusOK, w.Code)

	views := []*PostEntityView{}
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "PERSON", views[0].EntityType)
	assert.Equal(t, "alice", views[0].EntityText)
	assert.Equal(t, int32(0), views[0].StartPos)
	assert.Equal(t, int32(5), views[0].EndPos)
}

func TestTopEntities(t *testing.T) {
	db, _ := utils.CreateTempDB(t)
	router := newTestRouter(db)
	rule := seedAnalyticsFixture(t, db)

	posts := []*model.Post{}
	require.Nil(t, db.Where("rule_id = ?", rule.Id).Order("id asc").Find(&posts).Error)

	alice := model.Entity{EntityType: "PERSON", EntityText: "alice", DisplayText: "Alice"}
	berlin := model.Entity{EntityType: "GPE", EntityText: "berlin", DisplayText: "Berlin"}
	require.Nil(t, db.Create(&alice).Error)
	require.Nil(t, db.Create(&berlin).Error)

	// alice appears in two posts, berlin in one.
	for i, postIdx := range []int{0, 1} {
		link := model.PostEntity{PostId: posts[postIdx].Id, EntityId: alice.Id, StartPos: int32(i)}
		require.Nil(t, db.Create(&link).Error)
	}
	link := model.PostEntity{PostId: posts[0].Id, EntityId: berlin.Id, StartPos: 10}
	require.Nil(t, db.Create(&link).Error)

	w := doJSON(t, router, "GET", "/entities/top", nil)
	require.Equal(t, http.StatusOK, w.Code)

	views := []*TopEntityView{}
	require.Nil(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, 2)
	assert.Equal(t, "alice", views[0].EntityText)
	assert.Equal(t, int64(2), views[0].Occurrences)
	assert.Equal(t, int64(2), views[0].PostCount)
	assert.Equal(t, "berlin", views[1].EntityText)
}
