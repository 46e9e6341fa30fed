package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestDistance(t *testing.T) {
	tests := []struct {
		name   string
		lat1   float64
		lng1   float64
		lat2   float64
		lng2   float64
		wantKm float64
		delta  float64
	}{
		{
			name:   "same point",
			lat1:   -15.3875,
			lng1:   28.3228,
			lat2:   -15.3875,
			lng2:   28.3228,
			wantKm: 0,
			delta:  0.001,
		},
		{
			name:   "one degree of longitude at the equator",
			lat1:   0,
			lng1:   0,
			lat2:   0,
			lng2:   1,
			wantKm: 111.19,
			delta:  0.05,
		},
		{
			name:   "one degree of latitude",
			lat1:   0,
			lng1:   0,
			lat2:   1,
			lng2:   0,
			wantKm: 111.19,
			delta:  0.05,
		},
		{
			name:   "berlin to paris",
			lat1:   52.52,
			lng1:   13.405,
			lat2:   48.8566,
			lng2:   2.3522,
			wantKm: 877.46,
			delta:  1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Distance(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			assert.InDelta(t, tt.wantKm, got, tt.delta)
		})
	}
}

func TestETAMinutes(t *testing.T) {
	t.Run("short hop rounds up", func(t *testing.T) {
		// about 1.3 km at 20 km/h is just under 4 minutes of travel
		minutes, ok := ETAMinutes(ptr(-15.3875), ptr(28.3228), ptr(-15.3990), ptr(28.3250))
		assert.True(t, ok)
		assert.Equal(t, 4, minutes)
	})

	t.Run("zero distance", func(t *testing.T) {
		minutes, ok := ETAMinutes(ptr(10), ptr(20), ptr(10), ptr(20))
		assert.True(t, ok)
		assert.Equal(t, 0, minutes)
	})

	t.Run("missing runner position is indeterminate", func(t *testing.T) {
		minutes, ok := ETAMinutes(nil, nil, ptr(10), ptr(20))
		assert.False(t, ok)
		assert.Zero(t, minutes)
	})

	t.Run("missing delivery point is indeterminate", func(t *testing.T) {
		minutes, ok := ETAMinutes(ptr(10), ptr(20), nil, nil)
		assert.False(t, ok)
		assert.Zero(t, minutes)
	})

	t.Run("partial coordinates are indeterminate", func(t *testing.T) {
		_, ok := ETAMinutes(ptr(10), nil, ptr(10), ptr(20))
		assert.False(t, ok)
	})
}
