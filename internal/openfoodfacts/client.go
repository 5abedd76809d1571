// Package openfoodfacts implements product lookups against the Open Food Facts
// product database.
package openfoodfacts

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/DipamJha/foodPro/internal/domain/product"
)

// Defaults used when Options leaves a field empty.
const (
	DefaultBaseURL   = "https://openfoodfacts.org"
	DefaultUserAgent = "FoodScan - Go Service"
	DefaultTimeout   = 10 * time.Second
)

// maxBodySize bounds the decoded response body.
const maxBodySize = 8 << 20

var _ product.Fetcher = (*Client)(nil)

// Options configures a Client.
type Options struct {
	BaseURL   string
	UserAgent string
	// Timeout bounds each lookup, including reading the body.
	Timeout time.Duration
	// Transport is the base round tripper; http.DefaultTransport when nil.
	Transport http.RoundTripper

	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

func (o *Options) setDefaults() {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Transport == nil {
		o.Transport = http.DefaultTransport
	}
	if o.TracerProvider == nil {
		o.TracerProvider = otel.GetTracerProvider()
	}
	if o.MeterProvider == nil {
		o.MeterProvider = otel.GetMeterProvider()
	}
}

// Client fetches product records by barcode.
type Client struct {
	base      *url.URL
	userAgent string
	timeout   time.Duration
	http      *http.Client

	tracer  trace.Tracer
	lookups metric.Int64Counter
}

// NewClient creates a Client from opts.
func NewClient(opts Options) (*Client, error) {
	opts.setDefaults()

	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse base url")
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, errors.Errorf("base url %q must be absolute", opts.BaseURL)
	}

	meter := opts.MeterProvider.Meter("github.com/DipamJha/foodPro/internal/openfoodfacts")
	lookups, err := meter.Int64Counter("foodscan.lookups",
		metric.WithDescription("Product lookups by outcome"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create lookups counter")
	}

	return &Client{
		base:      base,
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
		http: &http.Client{
			Transport: otelhttp.NewTransport(opts.Transport,
				otelhttp.WithTracerProvider(opts.TracerProvider),
				otelhttp.WithMeterProvider(opts.MeterProvider),
			),
		},
		tracer:  opts.TracerProvider.Tracer("github.com/DipamJha/foodPro/internal/openfoodfacts"),
		lookups: lookups,
	}, nil
}

// productURL builds <base>/api/v2/product/{barcode}. The barcode is escaped
// as a single path segment but otherwise passed through as-is.
func (c *Client) productURL(barcode string) string {
	return c.base.String() + "/api/v2/product/" + url.PathEscape(barcode)
}

// Lookup fetches the product for barcode.
//
// It returns product.ErrNotFound when the response carries no product object
// and a *product.FetchError for every other failure.
func (c *Client) Lookup(ctx context.Context, barcode string) (_ *product.Record, rerr error) {
	ctx, span := c.tracer.Start(ctx, "openfoodfacts.Lookup",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("foodscan.barcode", barcode)),
	)
	defer func() {
		outcome := product.OutcomeOf(rerr)
		span.SetAttributes(attribute.String("foodscan.outcome", string(outcome)))
		if rerr != nil && outcome != product.OutcomeNotFound {
			span.RecordError(rerr)
			span.SetStatus(codes.Error, string(outcome))
		}
		span.End()
		c.lookups.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(outcome))))
	}()

	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	rec, err := c.fetch(fetchCtx, barcode)
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, err
		}
		reason := classify(err)
		if errors.Is(fetchCtx.Err(), context.DeadlineExceeded) {
			// Some transport paths surface an expired deadline as a
			// generic cancellation.
			reason = product.ReasonTimeout
		}
		return nil, &product.FetchError{
			Barcode: barcode,
			Reason:  reason,
			Err:     err,
		}
	}
	return rec, nil
}

func (c *Client) fetch(ctx context.Context, barcode string) (*product.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.productURL(barcode), http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	// Setting Accept-Encoding disables transparent decompression in the
	// transport; the body is decoded below.
	req.Header.Set("Accept-Encoding", "gzip")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "send request")
	}
	defer func() { _ = resp.Body.Close() }()

	// Open Food Facts answers unknown barcodes with 404 and a JSON status
	// body; both that and 2xx are decoded for a product object.
	if resp.StatusCode != http.StatusNotFound && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, errors.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	rec, err := decodeProduct(body)
	if err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	if rec == nil {
		return nil, product.ErrNotFound
	}
	rec.Barcode = barcode
	return rec, nil
}

func readBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := pgzip.NewReader(resp.Body)
		if err != nil {
			return nil, errors.Wrap(err, "create gzip reader")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	body, err := io.ReadAll(io.LimitReader(r, maxBodySize+1))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	if len(body) > maxBodySize {
		return nil, errors.Errorf("response body exceeds %d bytes", maxBodySize)
	}
	return body, nil
}
