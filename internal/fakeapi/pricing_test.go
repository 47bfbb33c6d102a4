package fakeapi

import (
	"math"
	"testing"
)

func TestFare(t *testing.T) {
	p := NewPricer(defaultFare)

	tests := []struct {
		name         string
		distanceKm   float64
		durationMins int
		want         float64
	}{
		{"regular trip", 10, 20, 250}, // 50 + 170 + 30
		{"short trip hits minimum", 0.5, 5, 80},
		{"fractional distance", 3.1, 8, 114.7}, // 50 + 52.7 + 12
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Fare(tt.distanceKm, tt.durationMins)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Fare(%v, %d) = %v, want %v", tt.distanceKm, tt.durationMins, got, tt.want)
			}
		})
	}
}

func TestEstimateDistance(t *testing.T) {
	p := NewPricer(defaultFare)

	// Connaught Place to India Gate, roughly 2.4 km apart.
	got := p.EstimateDistance(28.6315, 77.2167, 28.6129, 77.2295)
	if got < 2.5 || got > 3.5 {
		t.Errorf("EstimateDistance() = %v, want about 3.1 km of road", got)
	}

	if d := p.EstimateDistance(28.6, 77.2, 28.6, 77.2); d != 0 {
		t.Errorf("EstimateDistance(same point) = %v, want 0", d)
	}
}

func TestEstimateDuration(t *testing.T) {
	p := NewPricer(defaultFare)

	tests := []struct {
		distanceKm float64
		want       int
	}{
		{0, 5},
		{1, 5},
		{10, 24},
		{12.5, 30},
	}

	for _, tt := range tests {
		if got := p.EstimateDuration(tt.distanceKm); got != tt.want {
			t.Errorf("EstimateDuration(%v) = %d, want %d", tt.distanceKm, got, tt.want)
		}
	}
}
