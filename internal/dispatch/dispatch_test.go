package dispatch

import (
	"math"
	"testing"
	"time"
)

func demoTrip(tw TimeWindow) Trip {
	return Trip{
		Pickup: Pickup{
			Coordinates: Location{Lat: 40.2732, Lng: -76.8867},
			TimeWindow:  tw,
		},
		Requirements: Requirements{VehicleType: "standard"},
	}
}

func TestDistance_KnownPoints(t *testing.T) {
	// Same point.
	p := Location{Lat: 40.2732, Lng: -76.8867}
	if d := Distance(p, p); d != 0 {
		t.Fatalf("zero distance expected, got %v", d)
	}

	// One degree of latitude is about 69 miles.
	a := Location{Lat: 40, Lng: -76}
	b := Location{Lat: 41, Lng: -76}
	d := Distance(a, b)
	if math.Abs(d-69.09) > 0.5 {
		t.Fatalf("1 degree latitude = %v miles, want ~69.1", d)
	}
}

func TestProximityScore(t *testing.T) {
	cases := []struct {
		distance float64
		want     float64
	}{
		{0, 100},
		{1, 90},
		{5, 50},
		{10, 0},
		{15, 0},
	}
	for _, tc := range cases {
		if got := ProximityScore(tc.distance); got != tc.want {
			t.Fatalf("ProximityScore(%v) = %v, want %v", tc.distance, got, tc.want)
		}
	}
}

func TestTimeWindowScore(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	w := TimeWindow{Earliest: base, Latest: base.Add(30 * time.Minute)}

	if got := TimeWindowScore(base.Add(10*time.Minute), w); got != 100 {
		t.Fatalf("inside window = %v, want 100", got)
	}
	// 10 minutes early: 100 - 20 = 80.
	if got := TimeWindowScore(base.Add(-10*time.Minute), w); got != 80 {
		t.Fatalf("10 min early = %v, want 80", got)
	}
	// Very early floors at 50.
	if got := TimeWindowScore(base.Add(-3*time.Hour), w); got != 50 {
		t.Fatalf("very early = %v, want 50", got)
	}
	// 10 minutes late: 100 - 50 = 50.
	if got := TimeWindowScore(w.Latest.Add(10*time.Minute), w); got != 50 {
		t.Fatalf("10 min late = %v, want 50", got)
	}
	// Very late floors at 0.
	if got := TimeWindowScore(w.Latest.Add(2*time.Hour), w); got != 0 {
		t.Fatalf("very late = %v, want 0", got)
	}
}

func TestLoadBalanceScore(t *testing.T) {
	cases := []struct {
		load, cap int
		want      float64
	}{
		{0, 0, 0},
		{0, 2, 80},
		{1, 3, 100}, // 0.33 utilization
		{1, 2, 70},  // 0.5
		{3, 4, 70},  // 0.75
		{4, 4, 30},
	}
	for _, tc := range cases {
		if got := LoadBalanceScore(tc.load, tc.cap); got != tc.want {
			t.Fatalf("LoadBalanceScore(%d,%d) = %v, want %v", tc.load, tc.cap, got, tc.want)
		}
	}
}

func TestCompatible_Gates(t *testing.T) {
	base := Driver{
		ID:     "d",
		Status: StatusAvailable,
		Vehicle: Vehicle{
			Types:          []string{"standard", "wheelchair"},
			OxygenEquipped: false,
			Capacity:       2,
		},
		Certifications: []string{"basic"},
	}
	trip := Trip{Requirements: Requirements{VehicleType: "standard"}}

	t.Run("on break", func(t *testing.T) {
		d := base
		d.Status = StatusBreak
		ok, reasons := Compatible(d, trip)
		if ok || len(reasons) != 1 || reasons[0] != "Driver is break" {
			t.Fatalf("ok=%v reasons=%v", ok, reasons)
		}
	})
	t.Run("vehicle type", func(t *testing.T) {
		tr := trip
		tr.Requirements.VehicleType = "stretcher"
		ok, reasons := Compatible(base, tr)
		if ok || reasons[0] != "Vehicle doesn't support stretcher" {
			t.Fatalf("ok=%v reasons=%v", ok, reasons)
		}
	})
	t.Run("oxygen", func(t *testing.T) {
		tr := trip
		tr.Requirements.OxygenRequired = true
		ok, reasons := Compatible(base, tr)
		if ok || reasons[0] != "Vehicle lacks oxygen equipment" {
			t.Fatalf("ok=%v reasons=%v", ok, reasons)
		}
	})
	t.Run("capacity", func(t *testing.T) {
		d := base
		d.CurrentLoad = 2
		ok, reasons := Compatible(d, trip)
		if ok || reasons[0] != "Driver at full capacity" {
			t.Fatalf("ok=%v reasons=%v", ok, reasons)
		}
	})
	t.Run("attendant certification", func(t *testing.T) {
		tr := trip
		tr.Requirements.AttendantNeeded = true
		ok, reasons := Compatible(base, tr)
		if ok || reasons[0] != "Driver lacks medical attendant certification" {
			t.Fatalf("ok=%v reasons=%v", ok, reasons)
		}
	})
	t.Run("on-route is eligible", func(t *testing.T) {
		d := base
		d.Status = StatusOnRoute
		if ok, _ := Compatible(d, trip); !ok {
			t.Fatalf("on-route driver should be eligible")
		}
	})
}

func TestEvaluate_IncompatibleScoresZero(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	d := DemoFleet()[3] // Emily, on break
	m := Evaluate(d, demoTrip(TimeWindow{Earliest: now, Latest: now.Add(time.Hour)}), now)
	if m.Compatible || m.Score != 0 || m.Breakdown != nil {
		t.Fatalf("incompatible match unexpected: %+v", m)
	}
}

func TestEvaluate_WeightedSum(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	// Driver exactly at the pickup point, empty vehicle, arrival inside window.
	d := Driver{
		ID:     "d",
		Name:   "Test",
		Status: StatusAvailable,
		Location: Location{Lat: 40.2732, Lng: -76.8867},
		Vehicle: Vehicle{Types: []string{"standard"}, Capacity: 2},
	}
	trip := demoTrip(TimeWindow{Earliest: now.Add(-time.Hour), Latest: now.Add(time.Hour)})

	m := Evaluate(d, trip, now)
	if !m.Compatible {
		t.Fatalf("expected compatible: %+v", m)
	}
	// proximity 100*0.40 + routeDeviation 100*0.20 + timeWindow 100*0.25 +
	// loadBalance 80*0.10 + compatibility 100*0.05 = 98
	if m.Score != 98 {
		t.Fatalf("score = %v, want 98", m.Score)
	}
	if m.Breakdown.LoadBalanceScore != 80 || m.Breakdown.RouteDeviationScore != 100 {
		t.Fatalf("breakdown unexpected: %+v", m.Breakdown)
	}
	if m.DistanceMiles != 0 || m.EstimatedArrivalMinutes != 0 {
		t.Fatalf("travel estimate unexpected: %+v", m)
	}
}

func TestEvaluate_OnRouteDeviationPenalty(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	d := Driver{
		ID:     "d",
		Status: StatusOnRoute,
		Location: Location{Lat: 40.2732, Lng: -76.8867},
		Vehicle: Vehicle{Types: []string{"standard"}, Capacity: 2},
	}
	m := Evaluate(d, demoTrip(TimeWindow{Earliest: now.Add(-time.Hour), Latest: now.Add(time.Hour)}), now)
	if m.Breakdown.RouteDeviationScore != 20 {
		t.Fatalf("on-route deviation = %v, want 20", m.Breakdown.RouteDeviationScore)
	}
}

func TestRank_SortsByScoreDescending(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	trip := demoTrip(TimeWindow{Earliest: now.Add(-time.Hour), Latest: now.Add(2 * time.Hour)})

	matches := Rank(DemoFleet(), trip, now)
	if len(matches) != 4 {
		t.Fatalf("expected 4 matches, got %d", len(matches))
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Fatalf("matches not sorted: %v before %v", matches[i-1].Score, matches[i].Score)
		}
	}
	// Emily (break) must rank last with zero score.
	last := matches[len(matches)-1]
	if last.DriverID != "driver-4" || last.Score != 0 {
		t.Fatalf("expected driver-4 last with 0, got %+v", last)
	}
	// The best match must be compatible.
	if !matches[0].Compatible {
		t.Fatalf("best match incompatible: %+v", matches[0])
	}
}
