package tool

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/assistd-ai/assistd/pkg/types"
)

const (
	maxFetchSize = 5 * 1024 * 1024 // 5MB
	fetchTimeout = 30 * time.Second
)

// WebFetchTool fetches a URL and returns its content as text, markdown, or
// raw HTML.
type WebFetchTool struct {
	client *http.Client
}

// NewWebFetchTool creates a web_fetch tool.
func NewWebFetchTool() *WebFetchTool {
	return &WebFetchTool{
		client: &http.Client{Timeout: fetchTimeout},
	}
}

func (t *WebFetchTool) Metadata() types.ToolMetadata {
	return types.ToolMetadata{
		Name:        "web_fetch",
		Description: "Fetch content from a URL in text, markdown, or html format",
		Category:    types.CategoryWeb,
		Parameters: []types.ToolParameter{
			{Name: "url", Type: "string", Description: "The URL to fetch", Required: true},
			{Name: "format", Type: "string", Description: "text, markdown, or html (default markdown)"},
		},
		DangerLevel:          types.DangerSafe,
		RequiresConfirmation: false,
		Examples:             []string{`[TOOL: web_fetch("https://example.com", "markdown")]`},
	}
}

func (t *WebFetchTool) Execute(ctx context.Context, toolCtx *Context, params map[string]string) (any, error) {
	url := params["url"]
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("URL must start with http:// or https://")
	}

	format := params["format"]
	if format == "" {
		format = "markdown"
	}
	if format != "text" && format != "markdown" && format != "html" {
		return nil, fmt.Errorf("format must be 'text', 'markdown', or 'html'")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "assistd/1.0")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	content, err := renderContent(string(body), format)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"url":     url,
		"format":  format,
		"content": content,
		"size":    len(content),
	}, nil
}

// renderContent converts an HTML document into the requested format.
func renderContent(html, format string) (string, error) {
	switch format {
	case "html":
		return html, nil
	case "text":
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			return "", fmt.Errorf("parse html: %w", err)
		}
		doc.Find("script, style, noscript").Remove()
		return strings.TrimSpace(doc.Text()), nil
	case "markdown":
		converter := md.NewConverter("", true, nil)
		markdown, err := converter.ConvertString(html)
		if err != nil {
			return "", fmt.Errorf("convert to markdown: %w", err)
		}
		return markdown, nil
	}
	return "", fmt.Errorf("unsupported format: %s", format)
}
