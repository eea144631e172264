package tool

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/assistd-ai/assistd/pkg/types"
)

const (
	searchEndpoint   = "https://html.duckduckgo.com/html/"
	searchTimeout    = 20 * time.Second
	maxSearchResults = 5
)

// WebSearchTool runs a web search and returns the top results. It scrapes
// the DuckDuckGo HTML endpoint, which needs no API key.
type WebSearchTool struct {
	client   *http.Client
	endpoint string
}

// NewWebSearchTool creates a web_search tool.
func NewWebSearchTool() *WebSearchTool {
	return &WebSearchTool{
		client:   &http.Client{Timeout: searchTimeout},
		endpoint: searchEndpoint,
	}
}

func (t *WebSearchTool) Metadata() types.ToolMetadata {
	return types.ToolMetadata{
		Name:        "web_search",
		Description: "Search the web and return the top results",
		Category:    types.CategoryWeb,
		Parameters: []types.ToolParameter{
			{Name: "query", Type: "string", Description: "Search query", Required: true},
		},
		DangerLevel:          types.DangerSafe,
		RequiresConfirmation: false,
		Examples:             []string{`[TOOL: web_search("Python tutorials")]`},
	}
}

// SearchResult is one web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

func (t *WebSearchTool) Execute(ctx context.Context, toolCtx *Context, params map[string]string) (any, error) {
	query := strings.TrimSpace(params["query"])
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		t.endpoint+"?q="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "assistd/1.0")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request: status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}

	var results []SearchResult
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find(".result__a")
		href, _ := link.Attr("href")
		title := strings.TrimSpace(link.Text())
		if title == "" || href == "" {
			return true
		}
		results = append(results, SearchResult{
			Title:   title,
			URL:     href,
			Snippet: strings.TrimSpace(sel.Find(".result__snippet").Text()),
		})
		return len(results) < maxSearchResults
	})

	return map[string]any{
		"query":   query,
		"count":   len(results),
		"results": results,
	}, nil
}
