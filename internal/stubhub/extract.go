package stubhub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/johan/snapshot-collector/internal/histogram"
)

var tracer = otel.Tracer("snapshot-collector/stubhub")

// ErrPayloadNotFound is returned when no script block carries the event payload.
var ErrPayloadNotFound = errors.New("could not find viagogo-event payload in StubHub HTML")

// ExtractScriptBlocks returns the contents of every <script> element that holds
// valid JSON, in document order. Blocks that are not JSON are skipped. Script
// markup inside HTML comments and <noscript> elements is searched as well.
func ExtractScriptBlocks(ctx context.Context, page []byte) ([]json.RawMessage, error) {
	ctx, span := tracer.Start(ctx, "ExtractScriptBlocks")
	defer span.End()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	var scripts []string
	for _, n := range doc.Nodes {
		collectScripts(n, &scripts)
	}

	var blocks []json.RawMessage
	for i, script := range scripts {
		text := strings.TrimSpace(script)
		var raw json.RawMessage
		if err := json.Unmarshal([]byte(text), &raw); err != nil {
			slog.DebugContext(ctx, "skipping non-json script block", "index", i, "err", err)
			continue
		}
		blocks = append(blocks, raw)
	}

	span.SetAttributes(
		attribute.Int("scripts", len(scripts)),
		attribute.Int("json_blocks", len(blocks)),
	)
	return blocks, nil
}

// collectScripts appends the text of every script below n in document order.
// Comments and <noscript> bodies are kept as raw text by the parser, so any
// script markup they carry is parsed again and searched in place.
func collectScripts(n *html.Node, out *[]string) {
	switch {
	case n.Type == html.ElementNode && n.DataAtom == atom.Script:
		*out = append(*out, nodeText(n))
		return
	case n.Type == html.CommentNode:
		collectEmbedded(n.Data, out)
		return
	case n.Type == html.ElementNode && n.DataAtom == atom.Noscript:
		collectEmbedded(nodeText(n), out)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectScripts(c, out)
	}
}

func collectEmbedded(text string, out *[]string) {
	if !strings.Contains(strings.ToLower(text), "<script") {
		return
	}
	root, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return
	}
	collectScripts(root, out)
}

// nodeText concatenates the text nodes below n.
func nodeText(n *html.Node) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return buf.String()
}

// PickEventPayload returns the first block that is a JSON object whose appName
// equals appName. Later matches are ignored.
func PickEventPayload(blocks []json.RawMessage, appName string) (*EventPayload, bool) {
	for _, block := range blocks {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(block, &fields); err != nil {
			continue
		}
		var name string
		if err := json.Unmarshal(fields["appName"], &name); err != nil || name != appName {
			continue
		}
		return decodePayload(block), true
	}
	return nil, false
}

// decodePayload decodes as much of the payload as matches EventPayload. Fields
// of an unexpected JSON type are left empty.
func decodePayload(block json.RawMessage) *EventPayload {
	var p EventPayload
	if err := json.Unmarshal(block, &p); err != nil {
		slog.Debug("event payload decoded partially", "err", err)
	}
	return &p
}

// Options controls the constant columns of a snapshot.
type Options struct {
	FallbackCurrency string
	MedianMethod     string
}

// DefaultOptions returns the options used by the history files.
func DefaultOptions() Options {
	return Options{
		FallbackCurrency: DefaultCurrency,
		MedianMethod:     MedianMethod,
	}
}

// ParseEventPayload normalizes an event payload into a snapshot row. Missing or
// unreadable values become empty strings, never zero.
func ParseEventPayload(p *EventPayload, snapshotDate, snapshotTimestamp string, opts Options) Snapshot {
	if p == nil {
		p = &EventPayload{}
	}

	grid := p.Grid
	if grid == nil {
		grid = &Grid{}
	}

	currency := opts.FallbackCurrency
	if len(grid.Items) > 0 {
		currency = grid.Items[0].BuyerCurrencyCode.Or(opts.FallbackCurrency)
	}

	listings := p.TotalListings
	if !listings.Set {
		listings = p.TotalFilteredListings
	}

	return Snapshot{
		SnapshotDate:      snapshotDate,
		SnapshotTimestamp: snapshotTimestamp,
		EventID:           p.EventID.Value,
		EventName:         p.EventName.Value,
		EventDateTime:     p.FormattedLocalEventDateTime.Value,
		Venue:             p.VenueName.Value,
		ListingsCounted:   listings.Value,
		LowPrice:          histogram.FormatPrice(grid.MinPrice.Value, grid.MinPrice.Set),
		MedianPrice:       histogram.FormatPrice(p.Histogram.Median()),
		HighPrice:         histogram.FormatPrice(grid.MaxPrice.Value, grid.MaxPrice.Set),
		Currency:          currency,
		URL:               p.EventURL.Value,
		MedianMethod:      opts.MedianMethod,
	}
}

// ParseEventPage runs the whole page pipeline: extract script blocks, pick the
// payload tagged appName and normalize it. It returns ErrPayloadNotFound when
// no block matches.
func ParseEventPage(ctx context.Context, page []byte, appName, snapshotDate, snapshotTimestamp string, opts Options) (Snapshot, error) {
	blocks, err := ExtractScriptBlocks(ctx, page)
	if err != nil {
		return Snapshot{}, err
	}

	payload, ok := PickEventPayload(blocks, appName)
	if !ok {
		slog.DebugContext(ctx, "no event payload", "json_blocks", len(blocks), "app_name", appName)
		return Snapshot{}, ErrPayloadNotFound
	}

	return ParseEventPayload(payload, snapshotDate, snapshotTimestamp, opts), nil
}
