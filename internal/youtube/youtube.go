// Package youtube fetches video metadata for files whose file_id points at
// a YouTube video. Lookups go through the shared circuit-breaker HTTP
// client; a tripped breaker or a failed call degrades to empty metadata and
// never blocks a write.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/Geeks-Solutions/exmedias/pkg/httpclient"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// Metadata is what a video lookup yields.
type Metadata struct {
	Title        string
	Duration     int // seconds
	ThumbnailURL string
}

// Client queries the YouTube Data API for video metadata.
type Client struct {
	http    *httpclient.CircuitBreakerClient
	baseURL string
	apiKey  string
	logger  *slog.Logger
}

// New creates a YouTube metadata client. An empty baseURL selects the
// public API endpoint; tests point it at a local server.
func New(http *httpclient.CircuitBreakerClient, baseURL, apiKey string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		http:    http,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		logger:  logger,
	}
}

type videosResponse struct {
	Items []struct {
		Snippet struct {
			Title      string `json:"title"`
			Thumbnails struct {
				High struct {
					URL string `json:"url"`
				} `json:"high"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// Lookup fetches title, duration and thumbnail for a video id. An unknown
// id is not an error: it returns empty metadata, matching the degraded
// behavior callers already have to tolerate.
func (c *Client) Lookup(ctx context.Context, videoID string) (*Metadata, error) {
	q := url.Values{}
	q.Set("id", videoID)
	q.Set("part", "snippet,contentDetails")
	q.Set("key", c.apiKey)

	resp, err := c.http.Get(ctx, fmt.Sprintf("%s/videos?%s", c.baseURL, q.Encode()))
	if err != nil {
		return nil, fmt.Errorf("fetch video metadata: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, httpclient.ParseResponseError(resp, "youtube")
	}

	var body videosResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode video metadata: %w", err)
	}
	if len(body.Items) == 0 {
		c.logger.DebugContext(ctx, "no metadata for video", slog.String("video_id", videoID))
		return &Metadata{}, nil
	}

	item := body.Items[0]
	return &Metadata{
		Title:        item.Snippet.Title,
		Duration:     parseISODuration(item.ContentDetails.Duration),
		ThumbnailURL: item.Snippet.Thumbnails.High.URL,
	}, nil
}

var isoDurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODuration converts the API's ISO 8601 duration (PT1H2M3S) to
// seconds. Unparseable input yields 0.
func parseISODuration(s string) int {
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	h, _ := strconv.Atoi(zeroEmpty(m[1]))
	min, _ := strconv.Atoi(zeroEmpty(m[2]))
	sec, _ := strconv.Atoi(zeroEmpty(m[3]))
	return h*3600 + min*60 + sec
}

func zeroEmpty(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
