package metadata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultBaseURL = "https://www.googleapis.com/books/v1/volumes"

// Client fetches descriptive book data from the Google Books API. The
// base URL is swappable so tests can point it at a local server.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
	}
}

// NewClientWithBaseURL is for tests.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
	}
}

// SearchByISBN returns (nil, nil) when the volume is unknown upstream.
func (c *Client) SearchByISBN(ctx context.Context, isbn string) (*BookMetadata, error) {
	items, err := c.query(ctx, "isbn:"+isbn)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	m := buildMetadata(&items[0].VolumeInfo, isbn)
	return &m, nil
}

func (c *Client) SearchByTitle(ctx context.Context, title string) ([]BookMetadata, error) {
	items, err := c.query(ctx, "intitle:"+title)
	if err != nil {
		return nil, err
	}
	return buildMetadataList(items), nil
}

func (c *Client) SearchByAuthor(ctx context.Context, author string) ([]BookMetadata, error) {
	items, err := c.query(ctx, "inauthor:"+author)
	if err != nil {
		return nil, err
	}
	return buildMetadataList(items), nil
}

func (c *Client) query(ctx context.Context, q string) ([]volumeItem, error) {
	u := c.baseURL + "?q=" + url.QueryEscape(q)
	if c.apiKey != "" {
		u += "&key=" + url.QueryEscape(c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata lookup failed: upstream status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var vr volumesResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return nil, fmt.Errorf("metadata lookup failed: %w", err)
	}
	return vr.Items, nil
}

func buildMetadataList(items []volumeItem) []BookMetadata {
	out := make([]BookMetadata, 0, len(items))
	for i := range items {
		out = append(out, buildMetadata(&items[i].VolumeInfo, ""))
	}
	return out
}

func buildMetadata(v *volumeInfo, fallbackISBN string) BookMetadata {
	m := BookMetadata{
		ISBN:          fallbackISBN,
		Title:         v.Title,
		Author:        strings.Join(v.Authors, ", "),
		Publisher:     v.Publisher,
		PublishedDate: v.PublishedDate,
		PageCount:     v.PageCount,
		Language:      v.Language,
		Description:   v.Description,
		Rating:        v.AverageRating,
		RatingCount:   v.RatingsCount,
	}
	if len(v.Categories) > 0 {
		m.Genre = v.Categories[0]
	}
	// Prefer the identifier the upstream record carries.
	for _, id := range v.IndustryIdentifiers {
		if id.Type == "ISBN_13" {
			m.ISBN = id.Identifier
			break
		}
		if id.Type == "ISBN_10" && m.ISBN == fallbackISBN {
			m.ISBN = id.Identifier
		}
	}
	return m
}
