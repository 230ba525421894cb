package duty

import "math"

const earthRadiusKm = 6371

// CoveragePolicy decides how many shifts of each type a day needs before it
// counts as covered.
type CoveragePolicy int

const (
	// PolicyBoolean requires at least one DAY and one NIGHT shift per day.
	PolicyBoolean CoveragePolicy = iota
	// PolicyThreshold requires at least two of each, a redundancy rule used
	// by the stricter data source.
	PolicyThreshold
)

func (p CoveragePolicy) String() string {
	if p == PolicyThreshold {
		return "threshold"
	}
	return "boolean"
}

// minimum returns the per-shift-type count a day must reach under this policy.
func (p CoveragePolicy) minimum() int {
	if p == PolicyThreshold {
		return 2
	}
	return 1
}

// Haversine returns the great-circle distance between two points in
// kilometers.
func Haversine(a, b Point) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lon - a.Lon)

	h := math.Pow(math.Sin(dLat/2), 2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*math.Pow(math.Sin(dLon/2), 2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

type shiftCounts struct {
	day   int
	night int
}

// Covered reports whether every calendar day in the window has sufficient
// on-duty coverage within radiusKm of the anchor under the given policy.
// Days absent from the dataset have zero counts; there is no carry-over from
// adjacent days. Coverage is monotonic in radius: widening the radius only
// admits more duties, never removes counted ones.
func Covered(duties []Duty, anchor Point, radiusKm float64, window Window, policy CoveragePolicy) bool {
	counts := make(map[string]*shiftCounts)
	for d := window.From; !d.After(window.To); d = d.AddDate(0, 0, 1) {
		counts[dayKey(d)] = &shiftCounts{}
	}

	for _, duty := range duties {
		if !duty.Located {
			continue
		}
		c, ok := counts[duty.Day]
		if !ok {
			continue
		}
		if Haversine(anchor, duty.Location) > radiusKm {
			continue
		}
		switch duty.Shift {
		case ShiftDay:
			c.day++
		case ShiftNight:
			c.night++
		}
	}

	need := policy.minimum()
	for _, c := range counts {
		if c.day < need || c.night < need {
			return false
		}
	}
	return true
}
