// Package xapi reads public posts from X, either through the official v2
// API (bearer token) or through twitterapi.io (API key). When both
// credentials are configured twitterapi.io is used.
package xapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/talentscout/connectors"
	"github.com/poiesic/talentscout/core"
)

// Default endpoints.
const (
	DefaultOfficialBaseURL   = "https://api.twitter.com/2"
	DefaultTwitterAPIBaseURL = "https://api.twitterapi.io/twitter"
)

// officialMaxResults is the page size limit of the official API.
const officialMaxResults = 100

// Source is recorded on every fetched post.
const Source = "x"

// ErrUpstream is a failure reported inside a successful response body.
var ErrUpstream = errors.New("x api error")

// Config selects the backend and its credentials.
type Config struct {
	BearerToken       string
	APIKey            string
	OfficialBaseURL   string
	TwitterAPIBaseURL string
}

// Client fetches users and posts.
type Client struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

// NewClient creates a client. A nil httpClient gets a 30 second timeout.
func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if cfg.OfficialBaseURL == "" {
		cfg.OfficialBaseURL = DefaultOfficialBaseURL
	}
	if cfg.TwitterAPIBaseURL == "" {
		cfg.TwitterAPIBaseURL = DefaultTwitterAPIBaseURL
	}
	cfg.OfficialBaseURL = strings.TrimSuffix(cfg.OfficialBaseURL, "/")
	cfg.TwitterAPIBaseURL = strings.TrimSuffix(cfg.TwitterAPIBaseURL, "/")
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		client: connectors.NewClient(httpClient, 30*time.Second),
		logger: logger.With("component", "xapi"),
	}
}

// Enabled reports whether any credentials are configured.
func (c *Client) Enabled() bool {
	return c.cfg.APIKey != "" || c.cfg.BearerToken != ""
}

// User is an X account.
type User struct {
	ID       string
	Username string
	Name     string
}

// LookupUser resolves a handle. It returns nil without error when the user
// does not exist or no credentials are configured.
func (c *Client) LookupUser(ctx context.Context, username string) (*User, error) {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	switch {
	case c.cfg.APIKey != "":
		return c.twitterAPIUser(ctx, username)
	case c.cfg.BearerToken != "":
		return c.officialUser(ctx, username)
	}
	return nil, nil
}

// RecentPosts returns up to limit of the user's latest posts.
func (c *Client) RecentPosts(ctx context.Context, userID string, limit int) ([]*core.SocialPost, error) {
	switch {
	case c.cfg.APIKey != "":
		return c.twitterAPIPosts(ctx, userID, limit)
	case c.cfg.BearerToken != "":
		return c.officialPosts(ctx, userID, limit)
	}
	return nil, nil
}

// FetchPosts looks up handle and returns its recent posts.
func (c *Client) FetchPosts(ctx context.Context, handle string, limit int) ([]*core.SocialPost, error) {
	if !c.Enabled() {
		return nil, nil
	}
	user, err := c.LookupUser(ctx, handle)
	if err != nil || user == nil {
		return nil, err
	}
	posts, err := c.RecentPosts(ctx, user.ID, limit)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("fetched posts", "handle", user.Username, "count", len(posts))
	return posts, nil
}

// tweet covers both backends' field names.
type tweet struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	CreatedAt     string `json:"created_at"`
	CreatedAtAlt  string `json:"createdAt"`
	LikeCount     int    `json:"likeCount"`
	RetweetCount  int    `json:"retweetCount"`
	PublicMetrics *struct {
		LikeCount    int `json:"like_count"`
		RetweetCount int `json:"retweet_count"`
	} `json:"public_metrics"`
}

func (t tweet) post() *core.SocialPost {
	p := &core.SocialPost{
		Source:      Source,
		PostID:      t.ID,
		Text:        t.Text,
		CreatedAt:   parseCreated(t.CreatedAt, t.CreatedAtAlt),
		LikeCount:   t.LikeCount,
		RepostCount: t.RetweetCount,
	}
	if t.PublicMetrics != nil {
		p.LikeCount = t.PublicMetrics.LikeCount
		p.RepostCount = t.PublicMetrics.RetweetCount
	}
	return p
}

// parseCreated accepts RFC 3339 and the classic "Mon Jan 02 15:04:05 -0700 2006"
// layout. Unparseable values become the current time.
func parseCreated(values ...string) time.Time {
	for _, v := range values {
		if v == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339Nano, time.RubyDate} {
			if t, err := time.Parse(layout, v); err == nil {
				return t.UTC()
			}
		}
	}
	return time.Now().UTC()
}

func toPosts(tweets []tweet, limit int) []*core.SocialPost {
	posts := make([]*core.SocialPost, 0, min(len(tweets), limit))
	for _, t := range tweets {
		if strings.TrimSpace(t.Text) == "" {
			continue
		}
		posts = append(posts, t.post())
		if len(posts) == limit {
			break
		}
	}
	return posts
}

func (c *Client) officialHeader() http.Header {
	return http.Header{"Authorization": {"Bearer " + c.cfg.BearerToken}}
}

func (c *Client) officialUser(ctx context.Context, username string) (*User, error) {
	var resp struct {
		Data *struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			Name     string `json:"name"`
		} `json:"data"`
	}
	u := c.cfg.OfficialBaseURL + "/users/by/username/" + url.PathEscape(username) + "?user.fields=name,username"
	if err := connectors.GetJSON(ctx, c.client, u, c.officialHeader(), &resp); err != nil {
		if connectors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if resp.Data == nil {
		return nil, nil
	}
	user := &User{ID: resp.Data.ID, Username: resp.Data.Username, Name: resp.Data.Name}
	if user.Name == "" {
		user.Name = user.Username
	}
	return user, nil
}

func (c *Client) officialPosts(ctx context.Context, userID string, limit int) ([]*core.SocialPost, error) {
	params := url.Values{}
	params.Set("tweet.fields", "created_at,public_metrics")
	params.Set("max_results", strconv.Itoa(min(max(limit, 5), officialMaxResults)))
	params.Set("exclude", "retweets,replies")

	var resp struct {
		Data []tweet `json:"data"`
	}
	u := c.cfg.OfficialBaseURL + "/users/" + url.PathEscape(userID) + "/tweets?" + params.Encode()
	if err := connectors.GetJSON(ctx, c.client, u, c.officialHeader(), &resp); err != nil {
		return nil, err
	}
	return toPosts(resp.Data, limit), nil
}

func (c *Client) apiKeyHeader() http.Header {
	return http.Header{"X-Api-Key": {c.cfg.APIKey}}
}

// upstreamError interprets a twitterapi.io status field. It returns
// notFound for "not found" messages.
func upstreamError(status, msg string) (notFound bool, err error) {
	if status != "error" {
		return false, nil
	}
	if strings.Contains(strings.ToLower(msg), "not found") {
		return true, nil
	}
	if msg == "" {
		msg = "unknown error"
	}
	return false, fmt.Errorf("%w: %w: %s", core.ErrCollaboratorUnavailable, ErrUpstream, msg)
}

func (c *Client) twitterAPIUser(ctx context.Context, username string) (*User, error) {
	var resp struct {
		Status  string `json:"status"`
		Msg     string `json:"msg"`
		Message string `json:"message"`
		Data    *struct {
			ID       string `json:"id"`
			UserName string `json:"userName"`
			Name     string `json:"name"`
		} `json:"data"`
	}
	u := c.cfg.TwitterAPIBaseURL + "/user/info?" + url.Values{"userName": {username}}.Encode()
	if err := connectors.GetJSON(ctx, c.client, u, c.apiKeyHeader(), &resp); err != nil {
		if connectors.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if notFound, err := upstreamError(resp.Status, resp.Msg+resp.Message); notFound || err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, nil
	}
	user := &User{ID: resp.Data.ID, Username: resp.Data.UserName, Name: resp.Data.Name}
	if user.Username == "" {
		user.Username = username
	}
	if user.Name == "" {
		user.Name = user.Username
	}
	return user, nil
}

func (c *Client) twitterAPIPosts(ctx context.Context, userID string, limit int) ([]*core.SocialPost, error) {
	var all []tweet
	cursor := ""
	for {
		params := url.Values{"userId": {userID}}
		if cursor != "" {
			params.Set("cursor", cursor)
		}
		var resp struct {
			Status      string  `json:"status"`
			Msg         string  `json:"msg"`
			Message     string  `json:"message"`
			Tweets      []tweet `json:"tweets"`
			HasNextPage bool    `json:"has_next_page"`
			NextCursor  string  `json:"next_cursor"`
		}
		err := connectors.GetJSON(ctx, c.client, c.cfg.TwitterAPIBaseURL+"/user/last_tweets?"+params.Encode(), c.apiKeyHeader(), &resp)
		if connectors.IsNotFound(err) {
			break
		}
		if err != nil {
			return nil, err
		}
		notFound, err := upstreamError(resp.Status, resp.Message+resp.Msg)
		if err != nil {
			return nil, err
		}
		if notFound {
			break
		}

		all = append(all, resp.Tweets...)
		if len(all) >= limit || !resp.HasNextPage || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}
	return toPosts(all, limit), nil
}
