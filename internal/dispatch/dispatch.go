// Package dispatch implements the medical-transport driver assignment demo:
// a deterministic multi-factor scoring pass over a small driver fleet. Each
// candidate is gated on hard compatibility (status, vehicle type, oxygen,
// capacity, certifications) and then scored as a weighted sum of proximity,
// route deviation, time-window fit, and load balance.
package dispatch

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Driver statuses.
const (
	StatusAvailable = "available"
	StatusOnRoute   = "on-route"
	StatusBreak     = "break"
)

// Scoring weights. The 0.05 compatibility share is a flat bonus every
// compatible driver receives.
const (
	weightProximity      = 0.40
	weightRouteDeviation = 0.20
	weightTimeWindow     = 0.25
	weightLoadBalance    = 0.10
	weightCompatibility  = 0.05
)

const (
	earthRadiusMiles = 3959
	averageSpeedMPH  = 30
)

// Location is a WGS84 coordinate pair.
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Vehicle describes a driver's vehicle and its medical fit-out.
type Vehicle struct {
	Types          []string `json:"type"`
	OxygenEquipped bool     `json:"oxygenEquipped"`
	Capacity       int      `json:"capacity"`
}

// Driver is one fleet member considered for assignment.
type Driver struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Status         string   `json:"status"`
	Location       Location `json:"location"`
	Vehicle        Vehicle  `json:"vehicle"`
	CurrentLoad    int      `json:"currentLoad"`
	Certifications []string `json:"certifications"`
}

// TimeWindow is the pickup's earliest/latest acceptable arrival.
type TimeWindow struct {
	Earliest time.Time `json:"earliest"`
	Latest   time.Time `json:"latest"`
}

// Pickup describes where and when a trip starts.
type Pickup struct {
	Coordinates Location   `json:"coordinates"`
	TimeWindow  TimeWindow `json:"timeWindow"`
}

// Requirements are the trip's hard constraints.
type Requirements struct {
	VehicleType     string `json:"vehicleType"`
	OxygenRequired  bool   `json:"oxygenRequired"`
	AttendantNeeded bool   `json:"attendantNeeded"`
}

// Trip is an assignment request.
type Trip struct {
	Pickup       Pickup       `json:"pickup"`
	Requirements Requirements `json:"requirements"`
}

// Breakdown holds the component scores behind a match.
type Breakdown struct {
	ProximityScore      float64 `json:"proximityScore"`
	RouteDeviationScore float64 `json:"routeDeviationScore"`
	TimeWindowScore     float64 `json:"timeWindowScore"`
	LoadBalanceScore    float64 `json:"loadBalanceScore"`
	CompatibilityScore  float64 `json:"compatibilityScore"`
}

// Match is one driver's evaluation against a trip. Incompatible drivers carry
// a zero score and the reasons they were rejected.
type Match struct {
	DriverID                string     `json:"driverId"`
	DriverName              string     `json:"driverName"`
	Compatible              bool       `json:"compatible"`
	Reasons                 []string   `json:"reasons,omitempty"`
	Score                   float64    `json:"score"`
	Breakdown               *Breakdown `json:"breakdown,omitempty"`
	DistanceMiles           float64    `json:"distance,omitempty"`
	EstimatedArrivalMinutes float64    `json:"estimatedArrivalMinutes,omitempty"`
	EstimatedArrival        string     `json:"estimatedArrival,omitempty"`
	CurrentLocation         *Location  `json:"currentLocation,omitempty"`
	Status                  string     `json:"status,omitempty"`
	Vehicle                 *Vehicle   `json:"vehicle,omitempty"`
}

// Weights reports the scoring weights for the API's info payload.
func Weights() map[string]float64 {
	return map[string]float64{
		"proximity":      weightProximity,
		"routeDeviation": weightRouteDeviation,
		"timeWindow":     weightTimeWindow,
		"loadBalance":    weightLoadBalance,
		"compatibility":  weightCompatibility,
	}
}

// Distance returns the Haversine great-circle distance in miles, rounded to
// two decimals.
func Distance(a, b Location) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return round2(earthRadiusMiles * c)
}

// ProximityScore maps distance to [0,100]: 0 miles scores 100, 10+ miles
// scores 0.
func ProximityScore(distanceMiles float64) float64 {
	if distanceMiles == 0 {
		return 100
	}
	return round2(math.Max(0, 100-distanceMiles*10))
}

// TimeWindowScore rates an estimated arrival against the pickup window.
// Early arrivals are penalized lightly (floor 50), late ones heavily.
func TimeWindowScore(arrival time.Time, w TimeWindow) float64 {
	switch {
	case arrival.Before(w.Earliest):
		minutesEarly := w.Earliest.Sub(arrival).Minutes()
		return math.Max(50, 100-minutesEarly*2)
	case arrival.After(w.Latest):
		minutesLate := arrival.Sub(w.Latest).Minutes()
		return math.Max(0, 100-minutesLate*5)
	default:
		return 100
	}
}

// LoadBalanceScore rates a driver's current utilization. Partially loaded
// drivers are preferred over empty ones, and nearly full ones score worst.
func LoadBalanceScore(currentLoad, capacity int) float64 {
	if capacity == 0 {
		return 0
	}
	utilization := float64(currentLoad) / float64(capacity)
	switch {
	case utilization == 0:
		return 80
	case utilization < 0.5:
		return 100
	case utilization < 0.8:
		return 70
	default:
		return 30
	}
}

// Compatible checks the trip's hard constraints against a driver. The first
// failing constraint short-circuits; its reason is returned.
func Compatible(d Driver, trip Trip) (bool, []string) {
	if d.Status != StatusAvailable && d.Status != StatusOnRoute {
		return false, []string{fmt.Sprintf("Driver is %s", d.Status)}
	}
	if !contains(d.Vehicle.Types, trip.Requirements.VehicleType) {
		return false, []string{fmt.Sprintf("Vehicle doesn't support %s", trip.Requirements.VehicleType)}
	}
	if trip.Requirements.OxygenRequired && !d.Vehicle.OxygenEquipped {
		return false, []string{"Vehicle lacks oxygen equipment"}
	}
	if d.CurrentLoad >= d.Vehicle.Capacity {
		return false, []string{"Driver at full capacity"}
	}
	if trip.Requirements.AttendantNeeded && !contains(d.Certifications, "medical-attendant") {
		return false, []string{"Driver lacks medical attendant certification"}
	}
	return true, nil
}

// Evaluate scores a single driver-trip pair. now anchors the arrival estimate.
func Evaluate(d Driver, trip Trip, now time.Time) Match {
	ok, reasons := Compatible(d, trip)
	if !ok {
		return Match{
			DriverID:   d.ID,
			DriverName: d.Name,
			Compatible: false,
			Reasons:    reasons,
			Score:      0,
		}
	}

	distance := Distance(d.Location, trip.Pickup.Coordinates)
	travelMinutes := distance / averageSpeedMPH * 60
	arrival := now.Add(time.Duration(travelMinutes * float64(time.Minute)))

	proximity := ProximityScore(distance)
	timeWindow := TimeWindowScore(arrival, trip.Pickup.TimeWindow)
	loadBalance := LoadBalanceScore(d.CurrentLoad, d.Vehicle.Capacity)

	routeDeviation := 100.0
	if d.Status == StatusOnRoute {
		routeDeviation = 20
	}

	total := proximity*weightProximity +
		routeDeviation*weightRouteDeviation +
		timeWindow*weightTimeWindow +
		loadBalance*weightLoadBalance +
		100*weightCompatibility

	loc := d.Location
	veh := d.Vehicle
	return Match{
		DriverID:   d.ID,
		DriverName: d.Name,
		Compatible: true,
		Score:      round2(total),
		Breakdown: &Breakdown{
			ProximityScore:      proximity,
			RouteDeviationScore: routeDeviation,
			TimeWindowScore:     timeWindow,
			LoadBalanceScore:    loadBalance,
			CompatibilityScore:  100,
		},
		DistanceMiles:           distance,
		EstimatedArrivalMinutes: round1(travelMinutes),
		EstimatedArrival:        arrival.Format(time.RFC3339),
		CurrentLocation:         &loc,
		Status:                  d.Status,
		Vehicle:                 &veh,
	}
}

// Rank evaluates every driver against the trip and returns the matches sorted
// by score, highest first. Order among equal scores follows fleet order.
func Rank(fleet []Driver, trip Trip, now time.Time) []Match {
	matches := make([]Match, 0, len(fleet))
	for _, d := range fleet {
		matches = append(matches, Evaluate(d, trip, now))
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

func contains(xs []string, want string) bool {
	for _, x := range xs {
		if x == want {
			return true
		}
	}
	return false
}

func round2(f float64) float64 { return math.Round(f*100) / 100 }
func round1(f float64) float64 { return math.Round(f*10) / 10 }
