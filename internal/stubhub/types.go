// Package stubhub extracts event snapshots from StubHub event pages.
//
// Event pages ship their data as JSON inside <script> blocks. The block whose
// appName matches the configured tag carries the event, its price grid and a
// listing price histogram.
package stubhub

import (
	"github.com/johan/snapshot-collector/internal/histogram"
	"github.com/johan/snapshot-collector/internal/loose"
	"github.com/johan/snapshot-collector/internal/types"
)

const (
	// DefaultAppName tags the event payload block.
	DefaultAppName = "viagogo-event"

	// DefaultCurrency is used when no listing carries a currency.
	DefaultCurrency = "USD"

	// MedianMethod names how the median column is computed.
	MedianMethod = "histogram-weighted-midpoint"
)

// EventPayload is the embedded event document.
type EventPayload struct {
	AppName                     loose.String         `json:"appName"`
	EventID                     loose.String         `json:"eventId"`
	EventName                   loose.String         `json:"eventName"`
	FormattedLocalEventDateTime loose.String         `json:"formattedLocalEventDateTime"`
	VenueName                   loose.String         `json:"venueName"`
	TotalListings               loose.String         `json:"totalListings"`
	TotalFilteredListings       loose.String         `json:"totalFilteredListings"`
	EventURL                    loose.String         `json:"eventUrl"`
	Grid                        *Grid                `json:"grid"`
	Histogram                   *histogram.Histogram `json:"histogram"`
}

// Grid is the listing grid summary.
type Grid struct {
	MinPrice loose.Float `json:"minPrice"`
	MaxPrice loose.Float `json:"maxPrice"`
	Items    []GridItem  `json:"items"`
}

// GridItem is a single listing in the grid.
type GridItem struct {
	BuyerCurrencyCode loose.String `json:"buyerCurrencyCode"`
}

// Snapshot is one history row for an event page.
type Snapshot struct {
	SnapshotDate      string
	SnapshotTimestamp string
	EventID           string
	EventName         string
	EventDateTime     string
	Venue             string
	ListingsCounted   string
	LowPrice          string
	MedianPrice       string
	HighPrice         string
	Currency          string
	URL               string
	MedianMethod      string
}

// SnapshotSchema is the column layout of the event history file.
var SnapshotSchema = types.Schema{
	Name: "stubhub_event_snapshots",
	Columns: []string{
		"snapshot date",
		"snapshot timestamp",
		"event id",
		"event name",
		"event datetime",
		"venue",
		"listings counted",
		"low price",
		"median price",
		"high price",
		"currency",
		"stubhub url",
		"median method",
	},
}

// Row implements types.Record in SnapshotSchema order.
func (s Snapshot) Row() types.Row {
	return types.Row{
		s.SnapshotDate,
		s.SnapshotTimestamp,
		s.EventID,
		s.EventName,
		s.EventDateTime,
		s.Venue,
		s.ListingsCounted,
		s.LowPrice,
		s.MedianPrice,
		s.HighPrice,
		s.Currency,
		s.URL,
		s.MedianMethod,
	}
}
