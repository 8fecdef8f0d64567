package histogram

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWeightedMedian(t *testing.T) {
	tests := []struct {
		name    string
		buckets []Bucket
		want    float64
		wantOK  bool
	}{
		{
			name:    "no buckets",
			buckets: nil,
		},
		{
			name: "all zero frequency",
			buckets: []Bucket{
				{StartPrice: 10, EndPrice: 20, Frequency: 0},
				{StartPrice: 20, EndPrice: 30, Frequency: 0},
			},
		},
		{
			name: "only negative frequency",
			buckets: []Bucket{
				{StartPrice: 10, EndPrice: 20, Frequency: -4},
			},
		},
		{
			name:    "single bucket",
			buckets: []Bucket{{StartPrice: 10, EndPrice: 20, Frequency: 5}},
			want:    15,
			wantOK:  true,
		},
		{
			name: "three equal buckets",
			buckets: []Bucket{
				{StartPrice: 0, EndPrice: 10, Frequency: 1},
				{StartPrice: 10, EndPrice: 20, Frequency: 1},
				{StartPrice: 20, EndPrice: 30, Frequency: 1},
			},
			want:   15,
			wantOK: true,
		},
		{
			name: "even total uses fractional target",
			buckets: []Bucket{
				{StartPrice: 0, EndPrice: 10, Frequency: 2},
				{StartPrice: 10, EndPrice: 20, Frequency: 2},
			},
			// target 2.5: cumulative 2 misses, 4 reaches it.
			want:   15,
			wantOK: true,
		},
		{
			name: "negative frequency does not reduce cumulative",
			buckets: []Bucket{
				{StartPrice: 0, EndPrice: 10, Frequency: 1},
				{StartPrice: 100, EndPrice: 200, Frequency: -50},
				{StartPrice: 10, EndPrice: 20, Frequency: 1},
				{StartPrice: 20, EndPrice: 30, Frequency: 1},
			},
			want:   15,
			wantOK: true,
		},
		{
			name: "input order is not re-sorted",
			buckets: []Bucket{
				{StartPrice: 200, EndPrice: 300, Frequency: 3},
				{StartPrice: 0, EndPrice: 10, Frequency: 1},
			},
			want:   250,
			wantOK: true,
		},
		{
			name: "zero width bucket",
			buckets: []Bucket{
				{StartPrice: 42.5, EndPrice: 42.5, Frequency: 1},
			},
			want:   42.5,
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := WeightedMedian(tt.buckets)
			require.Equal(t, tt.wantOK, ok)
			require.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestFormatPrice(t *testing.T) {
	require.Equal(t, "15.00", FormatPrice(15, true))
	require.Equal(t, "0.00", FormatPrice(0, true))
	require.Equal(t, "123.46", FormatPrice(123.456, true))
	require.Equal(t, "", FormatPrice(15, false))
}

func TestBucket_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Bucket
	}{
		{
			name:  "complete",
			input: `{"startPrice": 10, "endPrice": 20, "frequency": 5}`,
			want:  Bucket{StartPrice: 10, EndPrice: 20, Frequency: 5},
		},
		{
			name:  "missing end defaults to start",
			input: `{"startPrice": 35.5, "frequency": 1}`,
			want:  Bucket{StartPrice: 35.5, EndPrice: 35.5, Frequency: 1},
		},
		{
			name:  "missing start defaults to zero",
			input: `{"endPrice": 8, "frequency": 2}`,
			want:  Bucket{StartPrice: 0, EndPrice: 8, Frequency: 2},
		},
		{
			name:  "missing frequency",
			input: `{"startPrice": 1, "endPrice": 2}`,
			want:  Bucket{StartPrice: 1, EndPrice: 2},
		},
		{
			name:  "negative frequency clamps to zero",
			input: `{"startPrice": 1, "endPrice": 2, "frequency": -7}`,
			want:  Bucket{StartPrice: 1, EndPrice: 2},
		},
		{
			name:  "quoted values",
			input: `{"startPrice": "10", "endPrice": "20.5", "frequency": "3"}`,
			want:  Bucket{StartPrice: 10, EndPrice: 20.5, Frequency: 3},
		},
		{
			name:  "fractional frequency truncates",
			input: `{"startPrice": 1, "endPrice": 3, "frequency": 2.9}`,
			want:  Bucket{StartPrice: 1, EndPrice: 3, Frequency: 2},
		},
		{
			name:  "not an object",
			input: `17`,
			want:  Bucket{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Bucket
			require.NoError(t, json.Unmarshal([]byte(tt.input), &got))
			require.Equal(t, tt.want, got)
		})
	}
}

func TestHistogram_Median(t *testing.T) {
	var h Histogram
	err := json.Unmarshal([]byte(`{"buckets": [
		{"startPrice": 0, "endPrice": 10, "frequency": 1},
		{"startPrice": 10, "endPrice": 20, "frequency": 1},
		{"startPrice": 20, "endPrice": 30, "frequency": 1}
	]}`), &h)
	require.NoError(t, err)

	got, ok := h.Median()
	require.True(t, ok)
	require.Equal(t, "15.00", FormatPrice(got, ok))

	var none *Histogram
	_, ok = none.Median()
	require.False(t, ok)
}
