package collector_instances

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/sociolens/sociolens/collector"
	"github.com/sociolens/sociolens/collector/clients"
	"github.com/sociolens/sociolens/model"
)

// BlueskyCollector searches Bluesky over the AT protocol. The platform post
// id is the at:// record uri, which is stable and globally unique.
type BlueskyCollector struct {
	Client *clients.BlueskyClient
}

func NewBlueskyCollector(client *clients.BlueskyClient) *BlueskyCollector {
	return &BlueskyCollector{Client: client}
}

func (b *BlueskyCollector) Platform() string {
	return model.PlatformBluesky
}

func (b *BlueskyCollector) IsConfigured() bool {
	return b.Client.Identifier != "" && b.Client.AppPassword != ""
}

func (b *BlueskyCollector) TestConnection(ctx context.Context) error {
	return b.Client.GetProfile(ctx)
}

func (b *BlueskyCollector) FetchPage(ctx context.Context, rule *model.Rule, cursor string, limit int) (*collector.Page, error) {
	if !b.IsConfigured() {
		return nil, errors.New("bluesky credentials not configured")
	}

	query := collector.BuildSearchQuery(rule)
	res, err := b.Client.SearchPosts(ctx, query, limit, cursor)
	if err != nil {
		return nil, errors.Wrapf(err, "bluesky search failed for %q", query)
	}

	page := &collector.Page{NextCursor: res.Cursor}
	for _, view := range res.Posts {
		page.Posts = append(page.Posts, blueskyPostToRawPost(view))
	}
	return page, nil
}

func blueskyPostToRawPost(view clients.BlueskyPostView) collector.RawPost {
	raw, _ := json.Marshal(view)
	return collector.RawPost{
		PlatformPostId:    view.Uri,
		AuthorHandle:      view.Author.Handle,
		AuthorDisplayName: view.Author.DisplayName,
		AuthorAvatarUrl:   view.Author.Avatar,
		Content:           view.Record.Text,
		PostUrl:           blueskyPostUrl(view),
		LikesCount:        view.LikeCount,
		RepliesCount:      view.ReplyCount,
		RepostsCount:      view.RepostCount,
		QuotesCount:       view.QuoteCount,
		PostCreatedAt:     collector.ParsePlatformTime(view.Record.CreatedAt),
		RawData:           raw,
	}
}

// blueskyPostUrl rebuilds the public web url from the record uri, which has
// the shape at://did:plc:xxx/app.bsky.feed.post/<rkey>.
func blueskyPostUrl(view clients.BlueskyPostView) string {
	parts := strings.Split(view.Uri, "/")
	rkey := parts[len(parts)-1]
	return fmt.Sprintf("https://bsky.app/profile/%s/post/%s", view.Author.Handle, rkey)
}
