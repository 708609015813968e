// Package backend holds the three upstream inventory clients and the facade
// that dispatches between them. Every client satisfies the same contract:
// fetch inventory for one product key and fold every failure into the
// uniform envelope; a backend never returns a Go error to its caller.
package backend

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"sanmar-inventory/internal/core"
)

// Kind identifies one of the closed set of upstream backends.
type Kind string

const (
	// KindPromoStandards is the PromoStandards-flavored SOAP inventory
	// service, keyed by product id.
	KindPromoStandards Kind = "promostandards"
	// KindStandard is the vendor's own SOAP web service, keyed by style.
	KindStandard Kind = "standard"
	// KindWebJSON is the undocumented retail-site JSON endpoint, keyed by
	// product slug (e.g. "60397_InsBlue").
	KindWebJSON Kind = "webjson"
)

// ParseKind maps a configuration string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindPromoStandards, KindStandard, KindWebJSON:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown backend %q (expected promostandards, standard, or webjson)", s)
}

// Client is the single query contract all three backends implement.
type Client interface {
	// Fetch returns the normalized inventory for one product key. Failures
	// of any kind fold into the envelope; Fetch never panics and never
	// returns an error value.
	Fetch(ctx context.Context, key string) core.Envelope
	// Diagnostics exposes the last raw request/response pair for
	// caller-side logging. Credential-bearing fields are not redacted
	// here; callers mask before display.
	Diagnostics() Diagnostics
}

// Diagnostics captures the last outbound call a client made. Observable
// for debugging, not part of the functional contract.
type Diagnostics struct {
	URL          string
	RequestBody  string
	Status       int
	ContentType  string
	ResponseBody string
}

// Options carries everything a backend needs, threaded explicitly per
// facade construction. No backend reads ambient process state.
type Options struct {
	Username       string
	Password       string
	CustomerNumber string
	// UseTest selects the vendor's test endpoints for the SOAP backends.
	UseTest bool
	// Timeout is the per-request budget; zero means DefaultTimeout. A
	// timeout folds into the envelope like any other network failure.
	Timeout time.Duration
	// Cookie and ExtraHeaders override the web JSON backend's
	// browser-shaped header set.
	Cookie       string
	ExtraHeaders map[string]string
	// SiteBaseURL overrides the retail site origin for the web JSON
	// backend (tests point this at a local server).
	SiteBaseURL string
	// PromoStandardsEndpoint and StandardEndpoint override the SOAP
	// endpoints selected by UseTest.
	PromoStandardsEndpoint string
	StandardEndpoint       string

	Logger *zap.Logger
}

// DefaultTimeout matches the per-request budget the system ran with
// historically.
const DefaultTimeout = 25 * time.Second

func (o Options) httpClient() *http.Client {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// Facade is the single entry point callers use: it routes a fetch to the
// configured backend and passes the envelope through unchanged.
type Facade struct {
	clients map[Kind]Client
}

// NewFacade constructs all three backends from one options value.
func NewFacade(opts Options) *Facade {
	return &Facade{clients: map[Kind]Client{
		KindPromoStandards: NewPromoStandardsClient(opts),
		KindStandard:       NewStandardClient(opts),
		KindWebJSON:        NewWebJSONClient(opts),
	}}
}

// Fetch dispatches to the backend identified by kind.
func (f *Facade) Fetch(ctx context.Context, kind Kind, key string) core.Envelope {
	client, ok := f.clients[kind]
	if !ok {
		return core.ErrorEnvelope(fmt.Sprintf("unknown backend %q", kind))
	}
	return client.Fetch(ctx, key)
}

// ParseWebJSON runs the web JSON parse step over a previously captured
// payload without any network call. It is the exact function the live path
// uses after a successful fetch.
func (f *Facade) ParseWebJSON(payload []byte, slug string) core.Envelope {
	return ParseInventoryJSON(payload, slug)
}

// Diagnostics returns the last request/response pair recorded by the given
// backend, if it has made a call.
func (f *Facade) Diagnostics(kind Kind) (Diagnostics, bool) {
	client, ok := f.clients[kind]
	if !ok {
		return Diagnostics{}, false
	}
	d := client.Diagnostics()
	return d, d.URL != ""
}
