package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/pkg/errors"
)

const DefaultBlueskyHost = "https://bsky.social"

// BlueskyClient talks to the AT protocol XRPC endpoints. Authentication is
// a session created from the account handle plus an app password, the
// access token is cached and refreshed on 401.
type BlueskyClient struct {
	Host        string
	Identifier  string
	AppPassword string

	m         sync.Mutex
	accessJwt string

	inner *HttpClient
}

func NewBlueskyClient(host, identifier, appPassword string) *BlueskyClient {
	if host == "" {
		host = DefaultBlueskyHost
	}
	return &BlueskyClient{
		Host:        host,
		Identifier:  identifier,
		AppPassword: appPassword,
		inner:       NewDefaultHttpClient(),
	}
}

type blueskySession struct {
	AccessJwt string `json:"accessJwt"`
	Did       string `json:"did"`
	Handle    string `json:"handle"`
}

// BlueskyAuthor is the subset of the post author view we consume.
type BlueskyAuthor struct {
	Did         string `json:"did"`
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
}

// BlueskyRecord is the post record carried inside a post view.
type BlueskyRecord struct {
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

// BlueskyPostView is a single search result from app.bsky.feed.searchPosts.
type BlueskyPostView struct {
	Uri         string        `json:"uri"`
	Cid         string        `json:"cid"`
	Author      BlueskyAuthor `json:"author"`
	Record      BlueskyRecord `json:"record"`
	ReplyCount  int32         `json:"replyCount"`
	RepostCount int32         `json:"repostCount"`
	LikeCount   int32         `json:"likeCount"`
	QuoteCount  int32         `json:"quoteCount"`
}

// BlueskySearchResponse is one page of search results. Cursor is absent on
// the last page.
type BlueskySearchResponse struct {
	Posts  []BlueskyPostView `json:"posts"`
	Cursor string            `json:"cursor"`
}

// CreateSession authenticates and caches the access token.
func (c *BlueskyClient) CreateSession(ctx context.Context) error {
	payload, err := json.Marshal(map[string]string{
		"identifier": c.Identifier,
		"password":   c.AppPassword,
	})
	if err != nil {
		return err
	}

	res, err := c.inner.Post(ctx, c.Host+"/xrpc/com.atproto.server.createSession", "application/json", bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "bluesky createSession failed")
	}
	defer res.Body.Close()

	session := blueskySession{}
	if err := json.NewDecoder(res.Body).Decode(&session); err != nil {
		return errors.Wrap(err, "cannot decode bluesky session")
	}
	if session.AccessJwt == "" {
		return errors.New("bluesky session has no access token")
	}

	c.m.Lock()
	c.accessJwt = session.AccessJwt
	c.m.Unlock()
	return nil
}

func (c *BlueskyClient) token(ctx context.Context) (string, error) {
	c.m.Lock()
	jwt := c.accessJwt
	c.m.Unlock()
	if jwt != "" {
		return jwt, nil
	}
	if err := c.CreateSession(ctx); err != nil {
		return "", err
	}
	c.m.Lock()
	defer c.m.Unlock()
	return c.accessJwt, nil
}

// SearchPosts fetches one page of full text search results. An empty
// cursor requests the newest page. A 401 re-logins and retries exactly
// once, a second 401 is a real credential problem and surfaces.
func (c *BlueskyClient) SearchPosts(ctx context.Context, query string, limit int, cursor string) (*BlueskySearchResponse, error) {
	res, err := c.searchOnce(ctx, query, limit, cursor)
	if err != nil && res != nil && res.StatusCode == http.StatusUnauthorized {
		res.Body.Close()
		c.m.Lock()
		c.accessJwt = ""
		c.m.Unlock()
		if err := c.CreateSession(ctx); err != nil {
			return nil, err
		}
		res, err = c.searchOnce(ctx, query, limit, cursor)
	}
	if err != nil {
		if res != nil {
			res.Body.Close()
		}
		return nil, errors.Wrap(err, "bluesky search failed")
	}
	defer res.Body.Close()

	out := &BlueskySearchResponse{}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return nil, errors.Wrap(err, "cannot decode bluesky search response")
	}
	return out, nil
}

func (c *BlueskyClient) searchOnce(ctx context.Context, query string, limit int, cursor string) (*http.Response, error) {
	jwt, err := c.token(ctx)
	if err != nil {
		return nil, err
	}

	params := map[string]string{
		"q":     query,
		"limit": strconv.Itoa(limit),
	}
	if cursor != "" {
		params["cursor"] = cursor
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+jwt)
	return c.inner.GetWithQueryParamsAndHeader(ctx, c.Host+"/xrpc/app.bsky.feed.searchPosts", params, header)
}

// GetProfile fetches the authenticated account's own profile. Used as a
// cheap connection test.
func (c *BlueskyClient) GetProfile(ctx context.Context) error {
	jwt, err := c.token(ctx)
	if err != nil {
		return err
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+jwt)
	res, err := c.inner.GetWithQueryParamsAndHeader(ctx, c.Host+"/xrpc/app.bsky.actor.getProfile",
		map[string]string{"actor": c.Identifier}, header)
	if err != nil {
		if res != nil {
			res.Body.Close()
		}
		return errors.Wrap(err, "bluesky getProfile failed")
	}
	res.Body.Close()
	return nil
}
