// Package catalog fetches the product list a session browses. The upstream
// listing endpoint is treated as an opaque source: whatever goes wrong with
// it, callers receive a usable catalog.
package catalog

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/anomie-storefront/internal/domain/product"
)

// ProductsPath is the upstream listing path appended to the base URL.
const ProductsPath = "/api/products"

// maxBodySize bounds how much of an upstream response is read.
const maxBodySize = 8 << 20

// Source reports where a loaded catalog came from.
type Source string

const (
	// SourceUpstream means the upstream returned a usable product list.
	SourceUpstream Source = "upstream"
	// SourceFallback means the built-in demo catalog was substituted.
	SourceFallback Source = "fallback"
)

// Reason explains why the fallback catalog was used.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonUnreachable Reason = "unreachable"
	ReasonStatus      Reason = "status"
	ReasonMalformed   Reason = "malformed"
	ReasonEmpty       Reason = "empty"
)

// Result is the outcome of a catalog load. Products is never empty.
type Result struct {
	Products []product.Product
	Source   Source
	Reason   Reason
}

// Fetcher loads a catalog.
type Fetcher interface {
	Load(ctx context.Context) Result
}

// LoaderConfig holds the upstream location and HTTP client settings.
type LoaderConfig struct {
	// BaseURL is the upstream origin, e.g. http://localhost:8000.
	BaseURL string
	// Timeout bounds a single fetch. Zero waits indefinitely.
	Timeout time.Duration
	// Client overrides the HTTP client. When nil an otelhttp-instrumented
	// client is built from the provider options.
	Client *http.Client
	// TracerProvider and MeterProvider are optional; globals are used when nil.
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Loader fetches the catalog from the upstream listing endpoint and
// substitutes the fallback catalog on any failure.
type Loader struct {
	url     string
	timeout time.Duration
	client  *http.Client
	tracer  trace.Tracer
	loads   metric.Int64Counter
}

var _ Fetcher = (*Loader)(nil)

// NewLoader creates a Loader for the given configuration.
func NewLoader(cfg LoaderConfig) (*Loader, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("catalog base URL is required")
	}

	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	mp := cfg.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithTracerProvider(tp),
				otelhttp.WithMeterProvider(mp),
			),
		}
	}

	loads, err := mp.Meter("storefront/catalog").Int64Counter("storefront.catalog.loads",
		metric.WithDescription("Catalog loads by source and fallback reason"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create loads counter")
	}

	return &Loader{
		url:     base + ProductsPath,
		timeout: cfg.Timeout,
		client:  client,
		tracer:  tp.Tracer("storefront/catalog"),
		loads:   loads,
	}, nil
}

// Load fetches the catalog once. It never fails: network errors, non-2xx
// statuses, malformed bodies and empty lists all yield the fallback catalog.
func (l *Loader) Load(ctx context.Context) Result {
	ctx, span := l.tracer.Start(ctx, "catalog.Load")
	defer span.End()

	products, reason, err := l.fetch(ctx)

	res := Result{Products: products, Source: SourceUpstream}
	if reason != ReasonNone {
		res = Result{Products: product.Fallback(), Source: SourceFallback, Reason: reason}
		zctx.From(ctx).Warn("Using fallback catalog",
			zap.String("url", l.url),
			zap.String("reason", string(reason)),
			zap.Error(err),
		)
		if err != nil {
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, string(reason))
	}

	span.SetAttributes(
		attribute.String("catalog.source", string(res.Source)),
		attribute.Int("catalog.products", len(res.Products)),
	)
	l.loads.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", string(res.Source)),
		attribute.String("reason", string(res.Reason)),
	))
	return res
}

func (l *Loader) fetch(ctx context.Context) ([]product.Product, Reason, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, ReasonUnreachable, errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, ReasonUnreachable, errors.Wrap(err, "get products")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ReasonStatus, errors.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, ReasonUnreachable, errors.Wrap(err, "read body")
	}

	products, err := DecodeProducts(body)
	if err != nil {
		return nil, ReasonMalformed, err
	}
	if len(products) == 0 {
		return nil, ReasonEmpty, nil
	}

	product.AssignIDs(products)
	return products, ReasonNone, nil
}
