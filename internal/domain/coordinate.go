package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Hemisphere is the compass letter that closes a DMS component.
type Hemisphere byte

const (
	North Hemisphere = 'N'
	South Hemisphere = 'S'
	East  Hemisphere = 'E'
	West  Hemisphere = 'W'
)

// Axis is the half of a coordinate pair a hemisphere belongs to.
type Axis int

const (
	AxisLatitude Axis = iota + 1
	AxisLongitude
)

func (a Axis) String() string {
	switch a {
	case AxisLatitude:
		return "latitude"
	case AxisLongitude:
		return "longitude"
	default:
		return "unknown"
	}
}

// Bound returns the largest absolute decimal value allowed on the axis.
func (a Axis) Bound() float64 {
	if a == AxisLatitude {
		return 90
	}
	return 180
}

// parseHemisphere accepts a single N, S, E, or W in either case.
func parseHemisphere(s string) (Hemisphere, bool) {
	switch strings.ToUpper(s) {
	case "N":
		return North, true
	case "S":
		return South, true
	case "E":
		return East, true
	case "W":
		return West, true
	default:
		return 0, false
	}
}

func (h Hemisphere) String() string { return string(rune(h)) }

// Axis reports whether h tags a latitude (N, S) or a longitude (E, W).
func (h Hemisphere) Axis() Axis {
	switch h {
	case North, South:
		return AxisLatitude
	case East, West:
		return AxisLongitude
	default:
		return 0
	}
}

// Negative reports whether values in this hemisphere carry a minus sign.
func (h Hemisphere) Negative() bool {
	return h == South || h == West
}

// Component is one parsed directional coordinate, e.g. 35°45'30"N.
// Degrees, minutes, and seconds are all non-negative; the hemisphere
// carries the sign.
type Component struct {
	Degrees    float64
	Minutes    float64
	Seconds    float64
	Hemisphere Hemisphere
}

func (c Component) magnitude() float64 {
	return c.Degrees + c.Minutes/60 + c.Seconds/3600
}

// Decimal returns the signed decimal-degree value of the component.
func (c Component) Decimal() float64 {
	v := c.magnitude()
	if c.Hemisphere.Negative() && v != 0 {
		return -v
	}
	return v
}

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f, %.6f", c.Lat, c.Lon)
}

// Convert parses a free-form DMS coordinate pair such as
// `35°45'30"N, 82°18'45"W` and returns it in decimal degrees.
// Errors are *ParseError values.
func Convert(raw string) (Coordinate, error) {
	lat, lon, err := ParseComponents(raw)
	if err != nil {
		return Coordinate{}, err
	}
	return Coordinate{Lat: lat.Decimal(), Lon: lon.Decimal()}, nil
}

// ParseComponents splits raw into its latitude and longitude components,
// whichever order they appear in, and validates each one.
func ParseComponents(raw string) (lat, lon Component, err error) {
	groups, err := splitGroups(raw)
	if err != nil {
		return Component{}, Component{}, err
	}

	var comps [2]Component
	for i, g := range groups {
		c, err := parseGroup(raw, i+1, g)
		if err != nil {
			return Component{}, Component{}, err
		}
		comps[i] = c
	}

	first, second := comps[0], comps[1]
	if first.Hemisphere.Axis() == second.Hemisphere.Axis() {
		return Component{}, Component{}, newParseError(raw, ErrHemisphere,
			fmt.Sprintf("need one N/S and one E/W component, got %s and %s", first.Hemisphere, second.Hemisphere), nil)
	}
	if first.Hemisphere.Axis() == AxisLatitude {
		return first, second, nil
	}
	return second, first, nil
}

// parseGroup turns the numeric fields and hemisphere of one group into a
// validated Component. index is 1-based for error messages.
func parseGroup(raw string, index int, g group) (Component, error) {
	if len(g.fields) > 3 {
		return Component{}, newParseError(raw, ErrFormat,
			fmt.Sprintf("component %d has %d numeric fields, at most 3 allowed", index, len(g.fields)), nil)
	}

	var values [3]float64
	for i, f := range g.fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return Component{}, newParseError(raw, ErrNumeric,
				fmt.Sprintf("component %d %s %q", index, fieldNames[i], f), err)
		}
		values[i] = v
	}

	c := Component{
		Degrees:    values[0],
		Minutes:    values[1],
		Seconds:    values[2],
		Hemisphere: g.hemisphere,
	}

	if c.Degrees < 0 {
		return Component{}, newParseError(raw, ErrRange,
			fmt.Sprintf("component %d degrees %g is negative; use the hemisphere letter for sign", index, c.Degrees), nil)
	}
	if c.Minutes < 0 || c.Minutes >= 60 {
		return Component{}, newParseError(raw, ErrRange,
			fmt.Sprintf("component %d minutes %g outside [0, 60)", index, c.Minutes), nil)
	}
	if c.Seconds < 0 || c.Seconds >= 60 {
		return Component{}, newParseError(raw, ErrRange,
			fmt.Sprintf("component %d seconds %g outside [0, 60)", index, c.Seconds), nil)
	}

	axis := c.Hemisphere.Axis()
	if m := c.magnitude(); m > axis.Bound() {
		return Component{}, newParseError(raw, ErrRange,
			fmt.Sprintf("%s %g%s exceeds %g", axis, m, c.Hemisphere, axis.Bound()), nil)
	}
	return c, nil
}

var fieldNames = [3]string{"degrees", "minutes", "seconds"}
