package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coordinate errors.
var (
	// ErrInvalidCoordinate is returned when a latitude or longitude cell is not a number.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrCoordinateOutOfRange is returned when a value lies outside the WGS84 range.
	ErrCoordinateOutOfRange = errors.New("coordinate out of range")
)

// Axis names used in CoordinateError.
const (
	AxisLatitude  = "latitude"
	AxisLongitude = "longitude"
)

// CoordinateError reports which axis of a coordinate is invalid.
type CoordinateError struct {
	Axis  string
	Value string
	Err   error
}

// Error implements error.
func (e *CoordinateError) Error() string {
	return fmt.Sprintf("%v: %s %s", e.Err, e.Axis, e.Value)
}

// Unwrap returns the sentinel cause.
func (e *CoordinateError) Unwrap() error {
	return e.Err
}

// Brussels is the map reference point: Brussels city centre (Grand-Place area).
var Brussels = Coordinate{Lat: 50.8466, Lon: 4.3528}

// Coordinate is an approximate WGS84 position in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat" validate:"latitude"`
	Lon float64 `json:"lon" yaml:"lon" validate:"longitude"`
}

// NewCoordinate returns a Coordinate after checking that both values are in range.
func NewCoordinate(lat, lon float64) (Coordinate, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return Coordinate{}, &CoordinateError{Axis: AxisLatitude, Value: strconv.FormatFloat(lat, 'f', -1, 64), Err: ErrCoordinateOutOfRange}
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return Coordinate{}, &CoordinateError{Axis: AxisLongitude, Value: strconv.FormatFloat(lon, 'f', -1, 64), Err: ErrCoordinateOutOfRange}
	}
	return Coordinate{Lat: lat, Lon: lon}, nil
}

// ParseCoordinate parses a latitude and a longitude cell.
//
// It returns (nil, nil) when either cell is blank: the record simply has no
// position. A non-blank cell that is not a decimal number is an error.
// A decimal comma ("50,8466") is accepted.
func ParseCoordinate(latText, lonText string) (*Coordinate, error) {
	latText = strings.TrimSpace(latText)
	lonText = strings.TrimSpace(lonText)

	var lat, lon float64
	var latOK, lonOK bool
	var err error

	if latText != "" {
		if lat, err = parseDegrees(latText); err != nil {
			return nil, &CoordinateError{Axis: AxisLatitude, Value: strconv.Quote(latText), Err: ErrInvalidCoordinate}
		}
		latOK = true
	}
	if lonText != "" {
		if lon, err = parseDegrees(lonText); err != nil {
			return nil, &CoordinateError{Axis: AxisLongitude, Value: strconv.Quote(lonText), Err: ErrInvalidCoordinate}
		}
		lonOK = true
	}
	if !latOK || !lonOK {
		return nil, nil
	}

	c, err := NewCoordinate(lat, lon)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func parseDegrees(s string) (float64, error) {
	if strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidCoordinate
	}
	return v, nil
}

// String returns "lat, lon" with four decimals.
func (c Coordinate) String() string {
	return fmt.Sprintf("%.4f, %.4f", c.Lat, c.Lon)
}
