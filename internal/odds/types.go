// Package odds flattens bookmaker odds feeds into history rows.
package odds

import (
	"github.com/johan/snapshot-collector/internal/loose"
	"github.com/johan/snapshot-collector/internal/types"
)

const (
	// MarketH2H is the head-to-head (moneyline) market key.
	MarketH2H = "h2h"

	// DrawOutcome is the outcome name carrying the draw price.
	DrawOutcome = "Draw"
)

// Event represents a sporting event with its bookmaker odds.
type Event struct {
	ID           loose.String `json:"id"`
	SportKey     loose.String `json:"sport_key"`
	SportTitle   loose.String `json:"sport_title"`
	CommenceTime loose.String `json:"commence_time"`
	HomeTeam     loose.String `json:"home_team"`
	AwayTeam     loose.String `json:"away_team"`
	Bookmakers   []Bookmaker  `json:"bookmakers"`
}

// Bookmaker represents one bookmaker's markets for an event.
type Bookmaker struct {
	Key        loose.String `json:"key"`
	Title      loose.String `json:"title"`
	LastUpdate loose.String `json:"last_update"`
	Markets    []Market     `json:"markets"`
}

// Market represents a betting market offered by a bookmaker.
type Market struct {
	Key        loose.String `json:"key"`
	LastUpdate loose.String `json:"last_update"`
	Outcomes   []Outcome    `json:"outcomes"`
}

// Outcome represents a priced outcome of a market. Price keeps the feed's
// number text so history files show exactly what was published.
type Outcome struct {
	Name  loose.String `json:"name"`
	Price loose.String `json:"price"`
}

// Row is one flattened (event, bookmaker, market) line.
type Row struct {
	SnapshotDate        string
	SnapshotTimestamp   string
	EventID             string
	SportKey            string
	SportTitle          string
	CommenceTime        string
	HomeTeam            string
	AwayTeam            string
	BookmakerKey        string
	BookmakerTitle      string
	BookmakerLastUpdate string
	MarketKey           string
	MarketLastUpdate    string
	HomePrice           string
	AwayPrice           string
	DrawPrice           string
}

// RowSchema is the column layout of the odds history file.
var RowSchema = types.Schema{
	Name: "odds_snapshots",
	Columns: []string{
		"snapshot_date",
		"snapshot_timestamp",
		"event_id",
		"sport_key",
		"sport_title",
		"commence_time",
		"home_team",
		"away_team",
		"bookmaker_key",
		"bookmaker_title",
		"bookmaker_last_update",
		"market_key",
		"market_last_update",
		"home_price",
		"away_price",
		"draw_price",
	},
}

// Row implements types.Record in RowSchema order.
func (r Row) Row() types.Row {
	return types.Row{
		r.SnapshotDate,
		r.SnapshotTimestamp,
		r.EventID,
		r.SportKey,
		r.SportTitle,
		r.CommenceTime,
		r.HomeTeam,
		r.AwayTeam,
		r.BookmakerKey,
		r.BookmakerTitle,
		r.BookmakerLastUpdate,
		r.MarketKey,
		r.MarketLastUpdate,
		r.HomePrice,
		r.AwayPrice,
		r.DrawPrice,
	}
}

// Records converts rows for storage.
func Records(rows []Row) []types.Record {
	out := make([]types.Record, len(rows))
	for i := range rows {
		out[i] = rows[i]
	}
	return out
}
