package odds

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Parse parses an odds feed payload.
// The feed is a JSON array of events; a single event object is accepted too.
func Parse(data []byte) ([]Event, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("parsing odds feed: empty input")
	}

	if data[0] == '[' {
		var events []Event
		if err := decode(data, &events); err != nil {
			return nil, err
		}
		return events, nil
	}

	var event Event
	if err := decode(data, &event); err != nil {
		return nil, err
	}
	return []Event{event}, nil
}

// decode unmarshals data into v. A type mismatch below the top level only
// empties the offending field; anything else fails the whole feed.
func decode(data []byte, v any) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		slog.Warn("odds feed decoded partially", "field", typeErr.Field, "err", err)
		return nil
	}
	return fmt.Errorf("parsing odds feed: %w (data: %s)", err, truncate(data, 100))
}

// Options controls which market and outcome names are flattened.
type Options struct {
	MarketKey   string
	DrawOutcome string
}

// DefaultOptions returns the head-to-head flattening options.
func DefaultOptions() Options {
	return Options{
		MarketKey:   MarketH2H,
		DrawOutcome: DrawOutcome,
	}
}

// Flatten produces one row per (event, bookmaker, market) whose market key
// equals opts.MarketKey. Home, away and draw prices are looked up by outcome
// name; a missing outcome leaves its price empty. Events without bookmakers and
// bookmakers without the market contribute no rows.
func Flatten(events []Event, snapshotDate, snapshotTimestamp string, opts Options) []Row {
	var rows []Row
	for _, event := range events {
		home := event.HomeTeam.Value
		away := event.AwayTeam.Value

		for _, bookmaker := range event.Bookmakers {
			for _, market := range bookmaker.Markets {
				if !market.Key.Set || market.Key.Value != opts.MarketKey {
					continue
				}

				prices := outcomePrices(market.Outcomes)
				rows = append(rows, Row{
					SnapshotDate:        snapshotDate,
					SnapshotTimestamp:   snapshotTimestamp,
					EventID:             event.ID.Value,
					SportKey:            event.SportKey.Value,
					SportTitle:          event.SportTitle.Value,
					CommenceTime:        event.CommenceTime.Value,
					HomeTeam:            home,
					AwayTeam:            away,
					BookmakerKey:        bookmaker.Key.Value,
					BookmakerTitle:      bookmaker.Title.Value,
					BookmakerLastUpdate: bookmaker.LastUpdate.Value,
					MarketKey:           market.Key.Value,
					MarketLastUpdate:    market.LastUpdate.Value,
					HomePrice:           prices[home],
					AwayPrice:           prices[away],
					DrawPrice:           prices[opts.DrawOutcome],
				})
			}
		}
	}
	return rows
}

// outcomePrices indexes prices by outcome name. A repeated name keeps the last
// price.
func outcomePrices(outcomes []Outcome) map[string]string {
	prices := make(map[string]string, len(outcomes))
	for _, o := range outcomes {
		prices[o.Name.Value] = o.Price.Value
	}
	return prices
}

// truncate truncates a byte slice to a maximum length for error messages.
func truncate(data []byte, maxLen int) string {
	if len(data) <= maxLen {
		return string(data)
	}
	return string(data[:maxLen]) + "..."
}
