package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultSearchBaseURL = "https://www.sanmar.com"

// SearchResult is one compact product hit from the site's search endpoint.
type SearchResult struct {
	Slug        string `json:"slug"`
	Code        string `json:"code"`
	StyleNumber string `json:"styleNumber"`
	Name        string `json:"name"`
	PriceText   string `json:"priceText"`
}

// SearchClient calls the retail site's findProducts endpoint. Like the
// inventory JSON endpoint it is undocumented and may require the cookie
// and header overrides to answer.
type SearchClient struct {
	baseURL      string
	cookie       string
	extraHeaders map[string]string
	httpClient   *http.Client
	logger       *zap.Logger
}

// SearchOptions configures a SearchClient.
type SearchOptions struct {
	BaseURL      string
	Cookie       string
	ExtraHeaders map[string]string
	Timeout      time.Duration
	Logger       *zap.Logger
}

// NewSearchClient builds the client.
func NewSearchClient(opts SearchOptions) *SearchClient {
	baseURL := strings.TrimSuffix(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultSearchBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchClient{
		baseURL:      baseURL,
		cookie:       opts.Cookie,
		extraHeaders: opts.ExtraHeaders,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

type searchRequest struct {
	Text        string `json:"text"`
	CurrentPage int    `json:"currentPage"`
	PageSize    int    `json:"pageSize"`
	Sort        string `json:"sort"`
}

type searchResponse struct {
	Results  []searchItem `json:"results"`
	Products []searchItem `json:"products"`
}

type searchItem struct {
	Code              string `json:"code"`
	Name              string `json:"name"`
	StyleNumber       string `json:"styleNumber"`
	Style             string `json:"style"`
	URL               string `json:"url"`
	PDPURL            string `json:"pdpUrl"`
	DisplayPriceText  string `json:"displayPriceText"`
	SalePriceText     string `json:"salePriceText"`
	OriginalPriceText string `json:"originalPriceText"`
}

// FindProducts runs a text search and returns compact hits. sort may be
// empty for relevance order.
func (c *SearchClient) FindProducts(ctx context.Context, query string, page, pageSize int, sortOrder string) ([]SearchResult, error) {
	if pageSize <= 0 {
		pageSize = 24
	}
	if sortOrder == "" {
		sortOrder = "relevance"
	}
	body, err := json.Marshal(searchRequest{Text: query, CurrentPage: page, PageSize: pageSize, Sort: sortOrder})
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search/findProducts.json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build search request: %w", err)
	}
	req.Header.Set("User-Agent", pageHeaders["User-Agent"])
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	req.Header.Set("Origin", c.baseURL)
	req.Header.Set("Referer", c.baseURL+"/search/?text="+url.QueryEscape(query))
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}
	for k, v := range c.extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("product search failed", zap.String("query", query), zap.Error(err))
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	var decoded searchResponse
	if resp.StatusCode != http.StatusOK || json.Unmarshal(raw, &decoded) != nil {
		snippet := strings.ReplaceAll(string(raw), "\n", " ")
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, fmt.Errorf("non-JSON response from search (status %d). First 200 chars: %s", resp.StatusCode, snippet)
	}
	return parseSearchItems(decoded), nil
}

func parseSearchItems(decoded searchResponse) []SearchResult {
	items := decoded.Results
	if len(items) == 0 {
		items = decoded.Products
	}
	out := make([]SearchResult, 0, len(items))
	for _, item := range items {
		styleNumber := item.StyleNumber
		if styleNumber == "" {
			styleNumber = item.Style
		}
		if styleNumber == "" {
			styleNumber = item.Code
		}
		price := item.DisplayPriceText
		if price == "" {
			price = item.SalePriceText
		}
		if price == "" {
			price = item.OriginalPriceText
		}
		productURL := item.URL
		if productURL == "" {
			productURL = item.PDPURL
		}
		slug := SlugFromProductURL(productURL)
		if slug == "" {
			slug = item.Code
		}
		out = append(out, SearchResult{
			Slug:        slug,
			Code:        item.Code,
			StyleNumber: styleNumber,
			Name:        item.Name,
			PriceText:   price,
		})
	}
	return out
}
