package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	vlhttp "vidlists/http"
)

// DefaultBaseURL is the catalog endpoint used when none is configured.
const DefaultBaseURL = "https://mock-youtube-api.herokuapp.com/api/videos"

// Fetcher retrieves a single page of the upstream catalog.
type Fetcher interface {
	// FetchPage requests the 1-indexed page. Errors wrap ErrUpstreamUnavailable,
	// ErrUpstream (*UpstreamError) or ErrUpstreamProtocol, except context errors
	// which are returned unchanged.
	FetchPage(ctx context.Context, page int) (*Page, error)
}

// APIFetcher implements Fetcher against the JSON catalog API:
//
//	GET {baseURL}?page=N -> {"videos": [...], "meta": {"total": N}}
type APIFetcher struct {
	client  *vlhttp.Client
	baseURL string
}

// NewAPIFetcher creates a fetcher. An empty baseURL selects DefaultBaseURL.
func NewAPIFetcher(client *vlhttp.Client, baseURL string) *APIFetcher {
	if client == nil {
		client = vlhttp.New(nil)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &APIFetcher{client: client, baseURL: baseURL}
}

// pageResponse is the wire shape of one catalog page.
type pageResponse struct {
	Videos *[]videoRecord `json:"videos"`
	Meta   struct {
		Total flexInt `json:"total"`
	} `json:"meta"`
}

type videoRecord struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	VideoID      string    `json:"video_id"`
	Views        int64     `json:"views"`
	Likes        int64     `json:"likes"`
	Comments     int64     `json:"comments"`
	Description  string    `json:"description"`
	ThumbnailURL string    `json:"thumbnail_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// flexInt accepts a JSON number or a numeric string.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	v, err := strconv.Atoi(string(data))
	if err != nil {
		return fmt.Errorf("total %q is not an integer", data)
	}
	*n = flexInt(v)
	return nil
}

// FetchPage retrieves and decodes one page.
func (f *APIFetcher) FetchPage(ctx context.Context, page int) (*Page, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}

	pageURL, err := f.pageURL(page)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %w", ErrUpstreamProtocol, page, err)
	}

	resp, err := f.client.Get(ctx, pageURL)
	if err != nil {
		return nil, classify(page, err)
	}

	var body pageResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return nil, fmt.Errorf("%w: page %d: decode: %w", ErrUpstreamProtocol, page, err)
	}
	if body.Videos == nil {
		return nil, fmt.Errorf("%w: page %d: response has no videos field", ErrUpstreamProtocol, page)
	}

	videos := make([]*Video, 0, len(*body.Videos))
	for _, rec := range *body.Videos {
		if rec.Views < 0 || rec.Likes < 0 || rec.Comments < 0 {
			return nil, fmt.Errorf("%w: page %d: video %d has negative counters", ErrUpstreamProtocol, page, rec.ID)
		}
		videos = append(videos, &Video{
			ID:           rec.ID,
			Title:        rec.Title,
			VideoID:      rec.VideoID,
			Views:        rec.Views,
			Likes:        rec.Likes,
			Comments:     rec.Comments,
			Description:  rec.Description,
			ThumbnailURL: rec.ThumbnailURL,
			CreatedAt:    rec.CreatedAt,
			UpdatedAt:    rec.UpdatedAt,
		})
	}

	return &Page{
		Number: page,
		Videos: videos,
		Total:  int(body.Meta.Total),
	}, nil
}

func (f *APIFetcher) pageURL(page int) (string, error) {
	u, err := url.Parse(f.baseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// classify maps HTTP client errors onto the catalog error kinds.
func classify(page int, err error) error {
	var httpErr *vlhttp.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return &UpstreamError{
			Page:       page,
			StatusCode: httpErr.StatusCode,
			Body:       string(httpErr.Body),
		}
	case errors.Is(err, vlhttp.ErrRequestFailed):
		return fmt.Errorf("%w: page %d: %w", ErrUpstreamUnavailable, page, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: page %d: %w", ErrUpstreamProtocol, page, err)
	}
}
