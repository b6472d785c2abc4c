package collector_instances

import (
	"context"
	"encoding/json"

	twitterscraper "github.com/n0madic/twitter-scraper"
	"github.com/pkg/errors"
	"github.com/sociolens/sociolens/collector"
	"github.com/sociolens/sociolens/model"
)

// TwitterCollector searches Twitter through the guest search endpoint, no
// API credentials required. The scraper exposes the same cursor based
// pagination the cycle executor drives for every platform.
type TwitterCollector struct {
	scraper *twitterscraper.Scraper
}

func NewTwitterCollector() *TwitterCollector {
	scraper := twitterscraper.New()
	scraper.SetSearchMode(twitterscraper.SearchLatest)
	return &TwitterCollector{scraper: scraper}
}

func (t *TwitterCollector) Platform() string {
	return model.PlatformTwitter
}

// IsConfigured is always true: the guest session needs no credentials.
func (t *TwitterCollector) IsConfigured() bool {
	return true
}

func (t *TwitterCollector) TestConnection(ctx context.Context) error {
	_, _, err := t.scraper.FetchSearchTweets("the", 1, "")
	return errors.Wrap(err, "twitter search probe failed")
}

func (t *TwitterCollector) FetchPage(ctx context.Context, rule *model.Rule, cursor string, limit int) (*collector.Page, error) {
	query := collector.BuildSearchQuery(rule)

	type result struct {
		tweets []*twitterscraper.Tweet
		next   string
		err    error
	}
	done := make(chan result, 1)
	// The scraper API predates context support, run it on the side so the
	// fetch timeout still applies.
	go func() {
		tweets, next, err := t.scraper.FetchSearchTweets(query, limit, cursor)
		done <- result{tweets: tweets, next: next, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, errors.Wrapf(res.err, "twitter search failed for %q", query)
		}
		page := &collector.Page{NextCursor: res.next}
		for _, tweet := range res.tweets {
			page.Posts = append(page.Posts, tweetToRawPost(tweet))
		}
		return page, nil
	}
}

func tweetToRawPost(tweet *twitterscraper.Tweet) collector.RawPost {
	raw, _ := json.Marshal(tweet)
	created := tweet.TimeParsed.UTC()
	return collector.RawPost{
		PlatformPostId:    tweet.ID,
		AuthorHandle:      tweet.Username,
		AuthorDisplayName: tweet.Username,
		Content:           tweet.Text,
		PostUrl:           tweet.PermanentURL,
		LikesCount:        int32(tweet.Likes),
		RepliesCount:      int32(tweet.Replies),
		RepostsCount:      int32(tweet.Retweets),
		PostCreatedAt:     &created,
		RawData:           raw,
	}
}
