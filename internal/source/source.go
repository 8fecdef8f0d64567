// Package source loads raw snapshot inputs from files or http(s) URLs.
package source

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("snapshot-collector/source")

const (
	// DefaultTimeout bounds a single remote fetch.
	DefaultTimeout = 30 * time.Second
)

// Reader loads inputs. Plain paths are read from disk; http and https URLs are
// fetched with a GET request.
type Reader struct {
	http *resty.Client
}

// Options configures remote fetches.
type Options struct {
	Timeout   time.Duration
	UserAgent string
}

// NewReader creates a new input reader.
func NewReader(opts Options) *Reader {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	client := resty.New()
	client.SetTimeout(opts.Timeout)
	if opts.UserAgent != "" {
		client.SetHeader("user-agent", opts.UserAgent)
	}

	return &Reader{http: client}
}

// WithClient replaces the HTTP client used for remote inputs.
func (r *Reader) WithClient(client *resty.Client) *Reader {
	r.http = client
	return r
}

// IsRemote reports whether location is an http or https URL.
func IsRemote(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return (scheme == "http" || scheme == "https") && u.Host != ""
}

// Read returns the bytes at location.
func (r *Reader) Read(ctx context.Context, location string) ([]byte, error) {
	if location == "" {
		return nil, fmt.Errorf("input location required")
	}
	if IsRemote(location) {
		return r.fetch(ctx, location)
	}

	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("reading input file: %w", err)
	}
	return data, nil
}

func (r *Reader) fetch(ctx context.Context, location string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "Fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("url", location)),
	)
	defer span.End()

	res, err := r.http.R().
		SetContext(ctx).
		Get(location)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		return nil, fmt.Errorf("executing request: %w", err)
	}

	span.SetAttributes(attribute.Int("status", res.StatusCode()))
	if res.IsError() {
		span.SetStatus(codes.Error, "unexpected status")
		return nil, fmt.Errorf("unexpected status: %d", res.StatusCode())
	}

	return res.Body(), nil
}
