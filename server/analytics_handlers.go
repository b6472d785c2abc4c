package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sociolens/sociolens/model"
	"gonum.org/v1/gonum/stat"
	"gorm.io/gorm"
)

// SentimentAnalyticsResponse summarizes the processed posts of a scope.
type SentimentAnalyticsResponse struct {
	TotalPosts     int64            `json:"total_posts"`
	ProcessedPosts int64            `json:"processed_posts"`
	FailedPosts    int64            `json:"failed_posts"`
	LabelCounts    map[string]int64 `json:"label_counts"`
	AverageScore   *float64         `json:"average_score"`
	ScoreStdDev    *float64         `json:"score_std_dev"`
}

// EngagementAnalyticsResponse aggregates engagement counters of a scope.
type EngagementAnalyticsResponse struct {
	TotalPosts    int64   `json:"total_posts"`
	TotalLikes    int64   `json:"total_likes"`
	TotalReplies  int64   `json:"total_replies"`
	TotalReposts  int64   `json:"total_reposts"`
	TotalQuotes   int64   `json:"total_quotes"`
	TotalViews    int64   `json:"total_views"`
	AverageLikes  float64 `json:"average_likes"`
	LikesStdDev   float64 `json:"likes_std_dev"`
	TopPostByLike *int64  `json:"top_post_by_likes"`
	TopPostLikes  *int32  `json:"top_post_likes_count"`
}

func (s *Server) scopedPosts(c *gin.Context) *gorm.DB {
	query := s.db.Model(&model.Post{})
	if ruleId := c.Query("rule_id"); ruleId != "" {
		query = query.Where("rule_id = ?", ruleId)
	}
	if platform := c.Query("platform"); platform != "" {
		query = query.Where("platform = ?", platform)
	}
	if since := c.Query("since"); since != "" {
		query = query.Where("collected_at >= ?", since)
	}
	if until := c.Query("until"); until != "" {
		query = query.Where("collected_at <= ?", until)
	}
	return query
}

// SentimentAnalytics reports label distribution plus the mean and standard
// deviation of the continuous sentiment score for the selected scope.
func (s *Server) SentimentAnalytics(c *gin.Context) {
	res := SentimentAnalyticsResponse{LabelCounts: map[string]int64{}}

	if err := s.scopedPosts(c).Count(&res.TotalPosts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := s.scopedPosts(c).Where("nlp_processed_at IS NOT NULL").Count(&res.ProcessedPosts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := s.scopedPosts(c).Where("nlp_error IS NOT NULL").Count(&res.FailedPosts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	type labelCount struct {
		SentimentLabel string
		Count          int64
	}
	labelCounts := []*labelCount{}
	err := s.scopedPosts(c).
		Select("sentiment_label, count(*) as count").
		Where("sentiment_label IS NOT NULL").
		Group("sentiment_label").
		Scan(&labelCounts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	for _, lc := range labelCounts {
		res.LabelCounts[lc.SentimentLabel] = lc.Count
	}

	scores := []float64{}
	err = s.scopedPosts(c).
		Where("sentiment_score IS NOT NULL").
		Pluck("sentiment_score", &scores).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(scores) > 0 {
		mean, std := stat.MeanStdDev(scores, nil)
		res.AverageScore = &mean
		if len(scores) > 1 {
			res.ScoreStdDev = &std
		}
	}

	c.JSON(http.StatusOK, res)
}

// EngagementAnalytics reports counter totals, the likes distribution and
// the single most liked post for the selected scope.
func (s *Server) EngagementAnalytics(c *gin.Context) {
	res := EngagementAnalyticsResponse{}

	type sums struct {
		TotalPosts   int64
		TotalLikes   int64
		TotalReplies int64
		TotalReposts int64
		TotalQuotes  int64
		TotalViews   int64
	}
	agg := sums{}
	err := s.scopedPosts(c).
		Select("count(*) as total_posts, coalesce(sum(likes_count), 0) as total_likes, coalesce(sum(replies_count), 0) as total_replies, coalesce(sum(reposts_count), 0) as total_reposts, coalesce(sum(quotes_count), 0) as total_quotes, coalesce(sum(views_count), 0) as total_views").
		Scan(&agg).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	res.TotalPosts = agg.TotalPosts
	res.TotalLikes = agg.TotalLikes
	res.TotalReplies = agg.TotalReplies
	res.TotalReposts = agg.TotalReposts
	res.TotalQuotes = agg.TotalQuotes
	res.TotalViews = agg.TotalViews

	likes := []float64{}
	if err := s.scopedPosts(c).Pluck("likes_count", &likes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(likes) > 0 {
		mean, std := stat.MeanStdDev(likes, nil)
		res.AverageLikes = mean
		if len(likes) > 1 {
			res.LikesStdDev = std
		}
	}

	topPost := model.Post{}
	err = s.scopedPosts(c).Order("likes_count desc").Limit(1).Find(&topPost).Error
	if err == nil && topPost.Id != 0 {
		res.TopPostByLike = &topPost.Id
		res.TopPostLikes = &topPost.LikesCount
	}

	c.JSON(http.StatusOK, res)
}
