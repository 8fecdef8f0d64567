// Package histogram computes summary prices from listing price histograms.
package histogram

import (
	"encoding/json"
	"strconv"

	"github.com/johan/snapshot-collector/internal/loose"
)

// Bucket is one price band of a listing histogram.
type Bucket struct {
	StartPrice float64
	EndPrice   float64
	Frequency  int64
}

// Histogram is the listing price distribution shipped with an event page.
type Histogram struct {
	Buckets []Bucket `json:"buckets"`
}

type rawBucket struct {
	StartPrice loose.Float `json:"startPrice"`
	EndPrice   loose.Float `json:"endPrice"`
	Frequency  loose.Int   `json:"frequency"`
}

// UnmarshalJSON decodes a bucket leniently. A missing start price is 0, a
// missing end price equals the start price, and an unreadable or negative
// frequency is 0.
func (b *Bucket) UnmarshalJSON(data []byte) error {
	var raw rawBucket
	if err := json.Unmarshal(data, &raw); err != nil {
		*b = Bucket{}
		return nil
	}

	start := raw.StartPrice.Or(0)
	*b = Bucket{
		StartPrice: start,
		EndPrice:   raw.EndPrice.Or(start),
		Frequency:  max(raw.Frequency.Or(0), 0),
	}
	return nil
}

// Midpoint returns the centre of the bucket's price band.
func (b Bucket) Midpoint() float64 {
	return (b.StartPrice + b.EndPrice) / 2
}

// WeightedMedian returns the midpoint of the bucket holding the (total+1)/2-th
// unit of cumulative frequency, walking buckets in the order given.
//
// The target rank stays fractional: with an even total the first bucket whose
// cumulative frequency reaches total/2+0.5 wins, and neighbours are never
// averaged.
//
// ok is false when the total frequency is not positive or no bucket reaches
// the target.
func WeightedMedian(buckets []Bucket) (median float64, ok bool) {
	var total int64
	for _, b := range buckets {
		if b.Frequency > 0 {
			total += b.Frequency
		}
	}
	if total <= 0 {
		return 0, false
	}

	target := (float64(total) + 1) / 2
	var cumulative int64
	for _, b := range buckets {
		if b.Frequency <= 0 {
			continue
		}
		cumulative += b.Frequency
		if float64(cumulative) >= target {
			return b.Midpoint(), true
		}
	}
	return 0, false
}

// Median is WeightedMedian over the histogram's buckets. A nil histogram has no
// median.
func (h *Histogram) Median() (float64, bool) {
	if h == nil {
		return 0, false
	}
	return WeightedMedian(h.Buckets)
}

// FormatPrice renders a price with two decimals, or "" when there is none.
func FormatPrice(v float64, ok bool) string {
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
