package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sanmar-inventory/internal/core"
)

// defaultSiteBaseURL is the retail site the JSON endpoint lives under.
const defaultSiteBaseURL = "https://www.sanmar.com"

// bodySnippetLen bounds how much of a bad response body is echoed into the
// error envelope. Enough for an operator to spot a block page or cookie
// wall, without dragging whole HTML documents into logs.
const bodySnippetLen = 300

// webJSONHeaders is the browser-shaped header set the endpoint expects.
// The site serves a block page to clients that look scripted.
var webJSONHeaders = map[string]string{
	"User-Agent":         "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126 Safari/537.36",
	"Accept":             "application/json, text/plain, */*",
	"Accept-Language":    "en-US,en;q=0.9",
	"X-Requested-With":   "XMLHttpRequest",
	"Sec-Fetch-Site":     "same-origin",
	"Sec-Fetch-Mode":     "cors",
	"Sec-Fetch-Dest":     "empty",
	"sec-ch-ua":          `"Chromium";v="126", "Not.A/Brand";v="24"`,
	"sec-ch-ua-mobile":   "?0",
	"sec-ch-ua-platform": `"macOS"`,
	"Pragma":             "no-cache",
	"Cache-Control":      "no-cache",
}

// priceKeyPreference is the ordered list of price-map keys tried before
// falling back to the first parseable entry.
var priceKeyPreference = []string{"3", "UPG"}

// WebJSONClient scrapes the retail site's undocumented inventory JSON
// endpoint. It is the only backend without a stable contract: the endpoint
// may reject requests, return HTML, or resolve only the root style of a
// color-suffixed slug, so failures here carry enough diagnostics for a
// human to act on.
type WebJSONClient struct {
	baseURL      string
	cookie       string
	extraHeaders map[string]string
	httpClient   *http.Client
	logger       *zap.Logger
	lastDiag     Diagnostics
}

// NewWebJSONClient builds the client from facade options.
func NewWebJSONClient(opts Options) *WebJSONClient {
	baseURL := strings.TrimSuffix(opts.SiteBaseURL, "/")
	if baseURL == "" {
		baseURL = defaultSiteBaseURL
	}
	return &WebJSONClient{
		baseURL:      baseURL,
		cookie:       opts.Cookie,
		extraHeaders: opts.ExtraHeaders,
		httpClient:   opts.httpClient(),
		logger:       opts.logger(),
	}
}

// Fetch retrieves inventory for a slug from the checkInventoryJson
// endpoint. On a non-2xx status or a body that fails to decode, a slug
// with a color suffix ("STYLE_COLOR") is retried exactly once against the
// base style, since the endpoint sometimes only resolves the root style. If
// both attempts fail the envelope lists every URL tried, the last status,
// content type, and a truncated body snippet.
func (c *WebJSONClient) Fetch(ctx context.Context, slug string) core.Envelope {
	keys := []string{slug}
	if base, ok := baseStyle(slug); ok {
		keys = append(keys, base)
	}

	var attemptedURLs []string
	var last fetchAttempt
	for _, key := range keys {
		url := c.baseURL + "/p/" + key + "/checkInventoryJson?pantWaistSize="
		attemptedURLs = append(attemptedURLs, url)
		last = c.get(ctx, url, slug)
		if last.err != nil {
			c.logger.Warn("inventory json fetch failed",
				zap.String("url", url), zap.Int("status", last.status), zap.Error(last.err))
			continue
		}
		env, perr := parseInventoryPayload(last.body, key)
		if perr == nil {
			return env
		}
		last.err = perr
		c.logger.Warn("inventory json decode failed", zap.String("url", url), zap.Error(perr))
	}

	return core.ErrorEnvelope(fmt.Sprintf(
		"Non-JSON response. Tried: %s. Status %s, content-type: %s. First %d chars: %s",
		strings.Join(attemptedURLs, ", "), last.statusText(), last.contentType, bodySnippetLen, last.snippet()))
}

// FetchCheck tries the checkInventory endpoint variant first and falls
// back to the checkInventoryJson path on any failure.
func (c *WebJSONClient) FetchCheck(ctx context.Context, slug string) core.Envelope {
	url := c.baseURL + "/p/" + slug + "/checkInventory"
	attempt := c.get(ctx, url, slug)
	if attempt.err == nil {
		if env, err := parseInventoryPayload(attempt.body, slug); err == nil {
			return env
		}
	}
	return c.Fetch(ctx, slug)
}

// Diagnostics returns the last request/response recorded by this client.
func (c *WebJSONClient) Diagnostics() Diagnostics { return c.lastDiag }

type fetchAttempt struct {
	status      int
	contentType string
	body        []byte
	err         error
}

func (a fetchAttempt) statusText() string {
	if a.status == 0 {
		return "n/a"
	}
	return strconv.Itoa(a.status)
}

func (a fetchAttempt) snippet() string {
	s := string(a.body)
	if len(s) > bodySnippetLen {
		s = s[:bodySnippetLen]
	}
	return strings.ReplaceAll(s, "\n", " ")
}

// get issues the browser-shaped GET. The Referer always points at the
// caller's original slug page, including on the base-style retry.
func (c *WebJSONClient) get(ctx context.Context, url, refererSlug string) fetchAttempt {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fetchAttempt{err: fmt.Errorf("failed to build request: %w", err)}
	}
	for k, v := range webJSONHeaders {
		req.Header.Set(k, v)
	}
	req.Header.Set("Origin", c.baseURL)
	req.Header.Set("Referer", c.baseURL+"/p/"+refererSlug)
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}
	for k, v := range c.extraHeaders {
		req.Header.Set(k, v)
	}

	c.lastDiag = Diagnostics{URL: url}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fetchAttempt{err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fetchAttempt{status: resp.StatusCode, err: fmt.Errorf("failed to read body: %w", err)}
	}

	attempt := fetchAttempt{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        body,
	}
	c.lastDiag.Status = resp.StatusCode
	c.lastDiag.ContentType = attempt.contentType
	c.lastDiag.ResponseBody = string(body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		attempt.err = fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return attempt
}

// baseStyle strips the color suffix from a slug: "60397_InsBlue" → "60397".
func baseStyle(slug string) (string, bool) {
	base, _, found := strings.Cut(slug, "_")
	if !found || base == "" || base == slug {
		return "", false
	}
	return base, true
}

// ParseInventoryJSON translates a captured checkInventoryJson payload into
// the canonical envelope. Pure: the live fetch path and the offline
// --json-file path both run exactly this logic.
func ParseInventoryJSON(payload []byte, slug string) core.Envelope {
	env, err := parseInventoryPayload(payload, slug)
	if err != nil {
		return core.ErrorEnvelope(fmt.Sprintf("failed to decode inventory JSON: %v", err))
	}
	return env
}

type webJSONPayload struct {
	Product    webJSONProduct    `json:"product"`
	Warehouses []webJSONLocation `json:"warehouses"`
}

type webJSONProduct struct {
	Code           string           `json:"code"`
	BaseProduct    string           `json:"baseProduct"`
	Name           string           `json:"name"`
	VariantOptions []webJSONVariant `json:"variantOptions"`
}

type webJSONLocation struct {
	Code      flexString `json:"code"`
	Name      string     `json:"name"`
	ShortName string     `json:"shortName"`
}

type webJSONVariant struct {
	Qualifiers        []webJSONQualifier      `json:"variantOptionQualifiers"`
	PriceDataMap      map[string]webJSONPrice `json:"priceDataMap"`
	StockLevelsMap    map[string]flexString   `json:"stockLevelsMap"`
	AvailableStockMap map[string]flexString   `json:"availableStockMap"`
}

type webJSONQualifier struct {
	Qualifier string `json:"qualifier"`
	Value     string `json:"value"`
}

type webJSONPrice struct {
	FormattedValue flexString `json:"formattedValue"`
}

// flexString accepts JSON strings, numbers, and null interchangeably; the
// endpoint is not consistent about which it sends for codes and counts.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

func parseInventoryPayload(payload []byte, slug string) (core.Envelope, error) {
	var data webJSONPayload
	if err := json.Unmarshal(payload, &data); err != nil {
		return core.Envelope{}, err
	}

	warehouseNames := make(map[string]string, len(data.Warehouses))
	for _, w := range data.Warehouses {
		name := w.ShortName
		if name == "" {
			name = w.Name
		}
		if name == "" {
			name = string(w.Code)
		}
		warehouseNames[string(w.Code)] = name
	}

	style := slug
	if style == "" {
		style = data.Product.BaseProduct
	}
	if style == "" {
		style = data.Product.Code
	}

	// Color comes from the slug, not the payload: "60397_InsBlue" → "InsBlue".
	color := ""
	if _, c, found := strings.Cut(slug, "_"); found {
		color = c
	}

	rows := []core.Row{}
	for _, opt := range data.Product.VariantOptions {
		size := ""
		for _, q := range opt.Qualifiers {
			if q.Qualifier == "size" {
				size = q.Value
				break
			}
		}
		price := extractPrice(opt.PriceDataMap)

		stock := opt.StockLevelsMap
		if len(stock) == 0 {
			stock = opt.AvailableStockMap
		}
		for _, warehouseID := range sortedKeys(stock) {
			qty, ok := coerceQty(string(stock[warehouseID]))
			if !ok {
				// Non-numeric quantity: the entry produces no row at all.
				continue
			}
			rows = append(rows, core.Row{
				Style:       style,
				PartID:      "",
				Color:       color,
				Size:        size,
				Description: data.Product.Name,
				WarehouseID: warehouseID,
				Warehouse:   core.WarehouseLabel(warehouseNames[warehouseID], warehouseID),
				Qty:         qty,
				Price:       price,
			})
		}
	}
	return core.Envelope{Rows: rows}, nil
}

// extractPrice resolves a unit price from a variant's price map: the
// preferred keys in order, then the remaining entries in sorted-key order.
// A value that fails numeric coercion means "try the next entry", never a
// hard failure.
func extractPrice(priceMap map[string]webJSONPrice) *decimal.Decimal {
	if len(priceMap) == 0 {
		return nil
	}
	tried := make(map[string]bool, len(priceKeyPreference))
	for _, key := range priceKeyPreference {
		tried[key] = true
		if p := parsePriceEntry(priceMap, key); p != nil {
			return p
		}
	}
	for _, key := range sortedKeys(priceMap) {
		if tried[key] {
			continue
		}
		if p := parsePriceEntry(priceMap, key); p != nil {
			return p
		}
	}
	return nil
}

func parsePriceEntry(priceMap map[string]webJSONPrice, key string) *decimal.Decimal {
	entry, ok := priceMap[key]
	if !ok || entry.FormattedValue == "" {
		return nil
	}
	d, err := decimal.NewFromString(string(entry.FormattedValue))
	if err != nil {
		return nil
	}
	return &d
}

// coerceQty turns a stock-map value into a non-negative integer. Entries
// that do not coerce are skipped by the caller, never zero-filled.
func coerceQty(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		d, derr := decimal.NewFromString(s)
		if derr != nil || !d.IsInteger() {
			return 0, false
		}
		n = int(d.IntPart())
	}
	if n < 0 {
		return 0, false
	}
	return n, true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
