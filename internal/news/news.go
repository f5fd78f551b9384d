// Package news calls the neural search provider behind the tenant news feed.
package news

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"impact-service/pkg/config"
)

const (
	searchWindow = 21 * 24 * time.Hour
	numResults   = 10
)

// excludedDomains are platforms that dominate neural search results
// without carrying usable articles.
var excludedDomains = []string{
	"x.com", "youtube.com", "en.wikipedia.org", "twitter.com",
	"surveymonkey.com", "drive.google.com", "onedrive.live.com",
	"accounts.google.com", "mail.google.com",
	"login.microsoftonline.com", "bing.com",
}

// Article is one news feed entry
type Article struct {
	Score         float64  `json:"score"`
	Title         string   `json:"title"`
	ID            string   `json:"id"`
	URL           string   `json:"url"`
	PublishedDate string   `json:"published_date"`
	Author        string   `json:"author"`
	Text          string   `json:"text"`
	Highlights    []string `json:"highlights"`
	Summary       string   `json:"summary"`
}

// Provider searches recent news and research for a tenant
type Provider interface {
	Search(ctx context.Context, location, topics string) ([]Article, error)
}

type searchRequest struct {
	Query              string         `json:"query"`
	Type               string         `json:"type"`
	UseAutoprompt      bool           `json:"useAutoprompt"`
	Category           string         `json:"category"`
	NumResults         int            `json:"numResults"`
	StartPublishedDate string         `json:"startPublishedDate"`
	EndPublishedDate   string         `json:"endPublishedDate"`
	ExcludeDomains     []string       `json:"excludeDomains"`
	Contents           searchContents `json:"contents"`
}

type searchContents struct {
	Text       bool             `json:"text"`
	Highlights searchHighlights `json:"highlights"`
	Summary    bool             `json:"summary"`
}

type searchHighlights struct {
	NumSentences     int    `json:"numSentences"`
	HighlightsPerURL int    `json:"highlightsPerUrl"`
	Query            string `json:"query"`
}

type searchResult struct {
	Score         float64  `json:"score"`
	Title         string   `json:"title"`
	ID            string   `json:"id"`
	URL           string   `json:"url"`
	PublishedDate string   `json:"publishedDate"`
	Author        string   `json:"author"`
	Text          string   `json:"text"`
	Highlights    []string `json:"highlights"`
	Summary       string   `json:"summary"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

// HTTPProvider implements Provider against an Exa-compatible search API
type HTTPProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewHTTPProvider builds a search client from configuration
func NewHTTPProvider(cfg *config.NewsConfig) *HTTPProvider {
	return &HTTPProvider{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

// Search runs a neural search over the last three weeks of publications
func (p *HTTPProvider) Search(ctx context.Context, location, topics string) ([]Article, error) {
	now := time.Now()
	body := searchRequest{
		Query:              fmt.Sprintf("Here is the top news and academic research for nonprofit organizations in %s related to %s", location, topics),
		Type:               "neural",
		UseAutoprompt:      true,
		Category:           "research paper",
		NumResults:         numResults,
		StartPublishedDate: now.Add(-searchWindow).Format(time.RFC3339),
		EndPublishedDate:   now.Format(time.RFC3339),
		ExcludeDomains:     excludedDomains,
		Contents: searchContents{
			Text:       true,
			Highlights: searchHighlights{NumSentences: 2, HighlightsPerURL: 4, Query: topics},
			Summary:    true,
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/search", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("news search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("news search returned %d: %s", resp.StatusCode, data)
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode news search response: %w", err)
	}

	articles := make([]Article, 0, len(sr.Results))
	for _, r := range sr.Results {
		articles = append(articles, Article{
			Score:         r.Score,
			Title:         r.Title,
			ID:            r.ID,
			URL:           r.URL,
			PublishedDate: r.PublishedDate,
			Author:        r.Author,
			Text:          r.Text,
			Highlights:    r.Highlights,
			Summary:       r.Summary,
		})
	}
	return articles, nil
}
