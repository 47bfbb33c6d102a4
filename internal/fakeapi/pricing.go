package fakeapi

import (
	"math"
)

// FareConfig holds the tariff applied when a trip completes.
type FareConfig struct {
	BaseFare   float64
	PerKmRate  float64
	PerMinRate float64
	MinFare    float64
}

var defaultFare = FareConfig{BaseFare: 50, PerKmRate: 17, PerMinRate: 1.5, MinFare: 80}

// Pricer fills in distance, duration and fare for a finished trip.
type Pricer interface {
	EstimateDistance(startLat, startLng, endLat, endLng float64) float64
	EstimateDuration(distanceKm float64) int
	Fare(distanceKm float64, durationMins int) float64
}

type pricer struct {
	fare FareConfig
}

func NewPricer(fare FareConfig) Pricer {
	return &pricer{fare: fare}
}

// EstimateDistance calculates straight-line distance and multiplies by road factor
func (p *pricer) EstimateDistance(startLat, startLng, endLat, endLng float64) float64 {
	straightLine := haversineDistance(startLat, startLng, endLat, endLng)
	return round(straightLine * 1.3)
}

// EstimateDuration assumes 25 km/h in city traffic and never less than five minutes.
func (p *pricer) EstimateDuration(distanceKm float64) int {
	durationHours := distanceKm / 25.0
	durationMins := int(math.Ceil(durationHours * 60))
	if durationMins < 5 {
		durationMins = 5
	}
	return durationMins
}

func (p *pricer) Fare(distanceKm float64, durationMins int) float64 {
	total := p.fare.BaseFare + distanceKm*p.fare.PerKmRate + float64(durationMins)*p.fare.PerMinRate
	if total < p.fare.MinFare {
		total = p.fare.MinFare
	}
	return round(total)
}

// haversineDistance calculates the distance between two points on Earth
func haversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadius = 6371 // km

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

func round(f float64) float64 {
	return math.Round(f*100) / 100
}
