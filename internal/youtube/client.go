package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Client talks to the YouTube Data API v3. It is stateless apart from a
// token-bucket limiter that paces channel fetches; pacing is a property of
// the client so it can be tested in isolation instead of living as an inline
// delay in the batch runner.
//
// The client performs a single attempt per logical operation. Retry policy
// belongs to the caller and none is implemented: the batch runner records the
// failure and moves on to the next unit.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a client. pacing is the minimum spacing between
// channel-video fetches; zero disables pacing (used in tests).
func NewClient(apiKey, baseURL string, pacing time.Duration) *Client {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if pacing > 0 {
		limiter = rate.NewLimiter(rate.Every(pacing), 1)
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		limiter: limiter,
	}
}

type channelListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title      string     `json:"title"`
			Thumbnails thumbnails `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
		Statistics struct {
			SubscriberCount string `json:"subscriberCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type playlistItemsResponse struct {
	Items []struct {
		Snippet struct {
			ResourceID struct {
				VideoID string `json:"videoId"`
			} `json:"resourceId"`
		} `json:"snippet"`
	} `json:"items"`
}

type videoListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string     `json:"title"`
			ChannelTitle string     `json:"channelTitle"`
			PublishedAt  time.Time  `json:"publishedAt"`
			Thumbnails   thumbnails `json:"thumbnails"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type thumbnails struct {
	MaxRes *thumbnail `json:"maxres"`
	High   *thumbnail `json:"high"`
	Medium *thumbnail `json:"medium"`
}

type thumbnail struct {
	URL string `json:"url"`
}

// bestURL prefers the highest-resolution thumbnail available.
func (t thumbnails) bestURL() string {
	switch {
	case t.MaxRes != nil:
		return t.MaxRes.URL
	case t.High != nil:
		return t.High.URL
	case t.Medium != nil:
		return t.Medium.URL
	default:
		return ""
	}
}

// ChannelInfo resolves a channel's display metadata. An unknown channel ID
// returns (nil, nil).
func (c *Client) ChannelInfo(ctx context.Context, channelID string) (*Channel, error) {
	var resp channelListResponse
	err := c.get(ctx, "channels", url.Values{
		"part": {"snippet,statistics"},
		"id":   {channelID},
	}, &resp)
	if err != nil {
		return nil, sourceErr("channel info", err)
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}

	item := resp.Items[0]
	subs, _ := strconv.ParseInt(item.Statistics.SubscriberCount, 10, 64)
	return &Channel{
		ID:              item.ID,
		Title:           item.Snippet.Title,
		ThumbnailURL:    item.Snippet.Thumbnails.bestURL(),
		SubscriberCount: subs,
	}, nil
}

// ChannelVideos returns a channel's most recent uploads, newest first, as one
// logical operation spanning three dependent requests: resolve the uploads
// playlist, list its video IDs, then fetch metrics for those IDs. An unknown
// channel or an empty playlist yields an empty slice with no error; any
// transport or decode failure surfaces as a SourceError without leaking
// partial results.
//
// Calls wait on the client's token bucket so sequential channel refreshes
// stay under the upstream rate limit.
func (c *Client) ChannelVideos(ctx context.Context, channelID string, limit int) ([]Video, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, sourceErr("pacing", err)
	}

	var chResp channelListResponse
	err := c.get(ctx, "channels", url.Values{
		"part": {"contentDetails"},
		"id":   {channelID},
	}, &chResp)
	if err != nil {
		return nil, sourceErr("resolve uploads playlist", err)
	}
	if len(chResp.Items) == 0 {
		return nil, nil
	}
	playlistID := chResp.Items[0].ContentDetails.RelatedPlaylists.Uploads
	if playlistID == "" {
		return nil, nil
	}

	var plResp playlistItemsResponse
	err = c.get(ctx, "playlistItems", url.Values{
		"part":       {"snippet"},
		"playlistId": {playlistID},
		"maxResults": {strconv.Itoa(limit)},
	}, &plResp)
	if err != nil {
		return nil, sourceErr("list playlist items", err)
	}
	if len(plResp.Items) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(plResp.Items))
	for _, item := range plResp.Items {
		if id := item.Snippet.ResourceID.VideoID; id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	return c.videosByID(ctx, ids)
}

// TrendingVideos returns the most-popular chart for a region. Trending
// fetches are one per region and low volume, so they do not wait on the
// channel pacing bucket.
func (c *Client) TrendingVideos(ctx context.Context, regionCode string, limit int) ([]Video, error) {
	var resp videoListResponse
	err := c.get(ctx, "videos", url.Values{
		"part":       {"snippet,statistics"},
		"chart":      {"mostPopular"},
		"regionCode": {regionCode},
		"maxResults": {strconv.Itoa(limit)},
	}, &resp)
	if err != nil {
		return nil, sourceErr("trending videos", err)
	}
	return decodeVideos(resp), nil
}

// videosByID fetches snippet and statistics for a batch of video IDs.
func (c *Client) videosByID(ctx context.Context, ids []string) ([]Video, error) {
	var resp videoListResponse
	err := c.get(ctx, "videos", url.Values{
		"part": {"snippet,statistics"},
		"id":   {strings.Join(ids, ",")},
	}, &resp)
	if err != nil {
		return nil, sourceErr("video metrics", err)
	}
	return decodeVideos(resp), nil
}

func decodeVideos(resp videoListResponse) []Video {
	videos := make([]Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		v := Video{
			ID:           item.ID,
			Title:        item.Snippet.Title,
			ThumbnailURL: item.Snippet.Thumbnails.bestURL(),
			ChannelTitle: item.Snippet.ChannelTitle,
			PublishedAt:  item.Snippet.PublishedAt,
		}
		v.ViewCount, _ = strconv.ParseInt(item.Statistics.ViewCount, 10, 64)
		v.LikeCount, _ = strconv.ParseInt(item.Statistics.LikeCount, 10, 64)
		if item.Statistics.CommentCount != "" {
			if n, err := strconv.ParseInt(item.Statistics.CommentCount, 10, 64); err == nil {
				v.CommentCount = &n
			}
		}
		videos = append(videos, v)
	}
	return videos
}

// get performs one API request and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, resource string, params url.Values, out any) error {
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/"+resource+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
