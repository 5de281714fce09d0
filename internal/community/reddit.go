package community

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/terraincognita07/biolog/internal/models"
	"go.uber.org/zap"
)

const (
	DefaultRedditBaseURL = "https://www.reddit.com"
	DefaultUserAgent     = "BioLog Health Tracker/1.0"
	DefaultRecentWindow  = 7 * 24 * time.Hour
	defaultSearchLimit   = 10
	maxListingBytes      = 1 << 20
)

var ErrEmptyKeyword = errors.New("keyword is empty")

type RedditConfig struct {
	BaseURL      string
	Subreddits   []string
	UserAgent    string
	RecentWindow time.Duration
	Timeout      time.Duration
	DemoFallback bool
}

// RedditSource searches public subreddits in order and returns the newest
// post that passes the recency and title filters.
type RedditSource struct {
	baseURL      string
	subreddits   []string
	userAgent    string
	recentWindow time.Duration
	demoFallback bool
	client       *http.Client
	now          func() time.Time
	logger       *zap.Logger
}

func NewRedditSource(cfg RedditConfig, logger *zap.Logger) *RedditSource {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultRedditBaseURL
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	recentWindow := cfg.RecentWindow
	if recentWindow <= 0 {
		recentWindow = DefaultRecentWindow
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	subreddits := make([]string, 0, len(cfg.Subreddits))
	for _, subreddit := range cfg.Subreddits {
		if trimmed := strings.TrimSpace(subreddit); trimmed != "" {
			subreddits = append(subreddits, trimmed)
		}
	}

	return &RedditSource{
		baseURL:      baseURL,
		subreddits:   subreddits,
		userAgent:    userAgent,
		recentWindow: recentWindow,
		demoFallback: cfg.DemoFallback,
		client:       &http.Client{Timeout: timeout},
		now:          time.Now,
		logger:       logger,
	}
}

func (source *RedditSource) Lookup(ctx context.Context, keyword string) (models.CommunitySignal, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return models.CommunitySignal{}, ErrEmptyKeyword
	}

	var lastErr error
	for _, subreddit := range source.subreddits {
		signal, found, err := source.searchSubreddit(ctx, subreddit, keyword)
		if err != nil {
			source.logger.Warn("subreddit search failed", zap.String("subreddit", subreddit), zap.Error(err))
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		if found {
			return signal, nil
		}
	}

	if source.demoFallback {
		return DemoSignal(keyword), nil
	}
	if lastErr != nil {
		return models.CommunitySignal{}, lastErr
	}
	return models.CommunitySignal{Found: false}, nil
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	Title      string  `json:"title"`
	Permalink  string  `json:"permalink"`
	CreatedUTC float64 `json:"created_utc"`
}

func (source *RedditSource) searchSubreddit(ctx context.Context, subreddit string, keyword string) (models.CommunitySignal, bool, error) {
	query := url.Values{}
	query.Set("q", keyword)
	query.Set("restrict_sr", "1")
	query.Set("sort", "new")
	query.Set("limit", fmt.Sprintf("%d", defaultSearchLimit))
	endpoint := fmt.Sprintf("%s/r/%s/search.json?%s", source.baseURL, url.PathEscape(subreddit), query.Encode())

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.CommunitySignal{}, false, err
	}
	request.Header.Set("User-Agent", source.userAgent)
	request.Header.Set("Accept", "application/json")

	response, err := source.client.Do(request)
	if err != nil {
		return models.CommunitySignal{}, false, err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return models.CommunitySignal{}, false, fmt.Errorf("reddit returned status %d", response.StatusCode)
	}

	var listing redditListing
	if err := json.NewDecoder(io.LimitReader(response.Body, maxListingBytes)).Decode(&listing); err != nil {
		return models.CommunitySignal{}, false, fmt.Errorf("decode reddit listing: %w", err)
	}

	now := source.now()
	cutoff := now.Add(-source.recentWindow)
	for _, child := range listing.Data.Children {
		post := child.Data
		created := time.Unix(int64(post.CreatedUTC), 0).UTC()
		if !created.After(cutoff) || !models.IsRelevantHeadline(post.Title, now) {
			continue
		}
		return models.CommunitySignal{
			Found:     true,
			Source:    fmt.Sprintf("Reddit (r/%s)", subreddit),
			Headline:  post.Title,
			URL:       "https://reddit.com" + post.Permalink,
			Context:   keyword,
			Timestamp: created.Format(time.RFC3339),
		}, true, nil
	}
	return models.CommunitySignal{}, false, nil
}
