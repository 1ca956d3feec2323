// Package fetch issues the GET requests against the upstream endpoints.
// Failures never surface as errors: a fetch either yields parsed JSON or nothing.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/mpapenbr/wrc-timing-go/log"
	"github.com/mpapenbr/wrc-timing-go/pkg/fetch/cache"
)

// Family selects one of the upstream roots
type Family int

const (
	Results Family = iota
	Timing
)

func (f Family) String() string {
	if f == Timing {
		return "timing"
	}
	return "results"
}

const DefaultTimeout = 5 * time.Second

type CacheConfig struct {
	Enabled bool
	cache.Config
}

type Config struct {
	ResultsURL string
	TimingURL  string
	// CORSProxy is prepended to every outgoing URL.
	// If it ends with "=" the upstream URL is query escaped.
	CORSProxy string
	Cache     CacheConfig
	Timeout   time.Duration
	// RateLimit is the max number of requests per second, 0 means unlimited
	RateLimit float64
}

type Option func(*Fetcher)

func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// WithCache uses c instead of the cache described by the config
func WithCache(c cache.Cache) Option {
	return func(f *Fetcher) {
		f.cache = c
	}
}

func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		f.now = now
	}
}

func WithLogger(l *log.Logger) Option {
	return func(f *Fetcher) {
		f.log = l
	}
}

type Fetcher struct {
	cfg     Config
	client  *http.Client
	cache   cache.Cache
	limiter *rate.Limiter
	log     *log.Logger
	now     func() time.Time
	tracer  trace.Tracer
}

var notFound = jp.MustParseString("$.status")

func New(cfg Config, opts ...Option) (*Fetcher, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	ret := &Fetcher{
		cfg:    cfg,
		log:    log.Default().Named("fetch"),
		now:    time.Now,
		tracer: otel.Tracer("wrct"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.client == nil {
		ret.client = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if cfg.RateLimit > 0 {
		ret.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	if ret.cache == nil && cfg.Cache.Enabled {
		c, err := cache.New(cfg.Cache.Config)
		if err != nil {
			return nil, fmt.Errorf("create cache: %w", err)
		}
		ret.cache = c
	}
	return ret, nil
}

func (f *Fetcher) Close() error {
	if f.cache != nil {
		return f.cache.Close()
	}
	return nil
}

// URL builds the upstream URL (without proxy) for path and params
func (f *Fetcher) URL(family Family, path string, params Params) string {
	base := f.cfg.ResultsURL
	if family == Timing {
		base = f.cfg.TimingURL
	}
	u := base + strings.TrimPrefix(path, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// Fetch requests path of the upstream family. The second return value is
// false if there is no data (transport error, non-JSON body, "Not Found").
//
//nolint:whitespace // can't make both editor and linter happy
func (f *Fetcher) Fetch(
	ctx context.Context, family Family, path string, params Params,
) (any, bool) {
	return f.FetchURL(ctx, f.URL(family, path, params))
}

// FetchURL requests the fully qualified upstream URL, which is also the cache key.
func (f *Fetcher) FetchURL(ctx context.Context, upstream string) (any, bool) {
	ctx, span := f.tracer.Start(ctx, "fetch.Get",
		trace.WithAttributes(attribute.String("url", upstream)))
	defer span.End()

	if data, ok := f.fromCache(ctx, upstream); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return data, true
	}
	body, ok := f.get(ctx, upstream)
	if !ok {
		return nil, false
	}
	data, ok := f.parse(upstream, body)
	if !ok {
		return nil, false
	}
	if f.cache != nil {
		if err := f.cache.Set(ctx, upstream,
			cache.Entry{Body: body, FetchedAt: f.now()}); err != nil {
			f.log.Warn("could not store cache entry",
				log.String("url", upstream), log.ErrorField(err))
		}
	}
	return data, true
}

func (f *Fetcher) fromCache(ctx context.Context, upstream string) (any, bool) {
	if f.cache == nil {
		return nil, false
	}
	e, ok := f.cache.Get(ctx, upstream)
	if !ok || e.Expired(f.now(), f.cfg.Cache.TTL) {
		return nil, false
	}
	f.log.Debug("cache hit", log.String("url", upstream))
	return f.parse(upstream, e.Body)
}

func (f *Fetcher) requestURL(upstream string) string {
	switch {
	case f.cfg.CORSProxy == "":
		return upstream
	case strings.HasSuffix(f.cfg.CORSProxy, "="):
		return f.cfg.CORSProxy + url.QueryEscape(upstream)
	default:
		return f.cfg.CORSProxy + upstream
	}
}

func (f *Fetcher) get(ctx context.Context, upstream string) ([]byte, bool) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			f.log.Warn("rate limiter", log.String("url", upstream), log.ErrorField(err))
			return nil, false
		}
	}
	ctx, cancel := context.WithTimeout(ctx, f.cfg.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.requestURL(upstream), http.NoBody)
	if err != nil {
		f.log.Warn("could not create request", log.String("url", upstream), log.ErrorField(err))
		return nil, false
	}
	req.Header.Set("Accept", "application/json")
	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		f.log.Warn("request failed", log.String("url", upstream), log.ErrorField(err))
		return nil, false
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		f.log.Warn("could not read body", log.String("url", upstream), log.ErrorField(err))
		return nil, false
	}
	f.log.Debug("fetched",
		log.String("url", upstream),
		log.Int("status", resp.StatusCode),
		log.Int("bytes", len(body)),
		log.Duration("duration", time.Since(start)))
	if resp.StatusCode != http.StatusOK {
		f.log.Warn("unexpected status", log.String("url", upstream), log.Int("status", resp.StatusCode))
		return nil, false
	}
	return body, true
}

func (f *Fetcher) parse(upstream string, body []byte) (any, bool) {
	data, err := oj.Parse(body)
	if err != nil {
		f.log.Warn("no json response", log.String("url", upstream), log.ErrorField(err))
		return nil, false
	}
	if IsNotFound(data) {
		f.log.Debug("not found", log.String("url", upstream))
		return nil, false
	}
	return data, true
}

// IsNotFound checks for the {"status": "Not Found"} envelope
func IsNotFound(data any) bool {
	if _, ok := data.(map[string]any); !ok {
		return false
	}
	for _, v := range notFound.Get(data) {
		if s, ok := v.(string); ok && strings.EqualFold(s, "Not Found") {
			return true
		}
	}
	return false
}
