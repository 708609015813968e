// Package scrape discovers product style codes from catalog pages, raw
// text, and files. Pages frequently block scripted requests; discovery is
// best-effort and a blocked page yields an empty list, never an error the
// batch would trip over.
package scrape

import (
	"context"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// styleRe matches catalog style codes such as K420, PC61, L223, JST81.
var styleRe = regexp.MustCompile(`\b[A-Z]{1,5}\d{2,5}\b`)

// styleAttrs are the data attributes catalog markup tends to hang codes on.
var styleAttrs = []string{"data-style", "data-sku", "data-productid", "data-style-id"}

var pageHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
}

// Scraper fetches catalog pages and extracts style codes heuristically.
type Scraper struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewScraper builds a scraper with the given per-request timeout.
func NewScraper(timeout time.Duration, logger *zap.Logger) *Scraper {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scraper{httpClient: &http.Client{Timeout: timeout}, logger: logger}
}

// StylesFromURL fetches a category or search page and extracts style
// codes. Blocked or failed requests return an empty list; callers fall
// back to explicit style lists.
func (s *Scraper) StylesFromURL(ctx context.Context, url string) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}
	for k, v := range pageHeaders {
		req.Header.Set(k, v)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn("style page fetch failed", zap.String("url", url), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("style page fetch rejected", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil
	}
	if strings.Contains(doc.Text(), "Request Rejected") {
		s.logger.Warn("style page fetch blocked", zap.String("url", url))
		return nil
	}
	return stylesFromDocument(doc)
}

// StylesFromHTML extracts style codes from already-fetched markup.
func StylesFromHTML(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}
	return stylesFromDocument(doc)
}

func stylesFromDocument(doc *goquery.Document) []string {
	seen := make(map[string]bool)
	add := func(text string) {
		for _, m := range styleRe.FindAllString(strings.ToUpper(text), -1) {
			seen[m] = true
		}
	}

	for _, attr := range styleAttrs {
		doc.Find("[" + attr + "]").Each(func(_ int, sel *goquery.Selection) {
			val, _ := sel.Attr(attr)
			add(val)
		})
	}
	doc.Find("a, div, span, p").Each(func(_ int, sel *goquery.Selection) {
		add(sel.Text())
	})
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		add(href)
	})

	styles := make([]string, 0, len(seen))
	for style := range seen {
		styles = append(styles, style)
	}
	sort.Strings(styles)
	return styles
}

// StylesFromText extracts style codes from free-form text.
func StylesFromText(text string) []string {
	seen := make(map[string]bool)
	for _, m := range styleRe.FindAllString(strings.ToUpper(text), -1) {
		seen[m] = true
	}
	styles := make([]string, 0, len(seen))
	for style := range seen {
		styles = append(styles, style)
	}
	sort.Strings(styles)
	return styles
}

// StylesFromFile extracts style codes from a text file. Unreadable files
// yield an empty list, matching the best-effort discovery contract.
func StylesFromFile(path string) []string {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	return StylesFromText(string(content))
}

// SlugFromProductURL extracts the product slug from a /p/{slug}/... URL,
// returning "" when the URL has no product path.
func SlugFromProductURL(url string) string {
	_, tail, found := strings.Cut(url, "/p/")
	if !found {
		return ""
	}
	slug, _, _ := strings.Cut(tail, "/")
	slug, _, _ = strings.Cut(slug, "?")
	slug, _, _ = strings.Cut(slug, "#")
	return slug
}
