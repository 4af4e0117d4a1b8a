package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so callers can match them
// with errors.Is() and still print a human-readable message.
var (
	// ErrNoDataFile is returned when no dataset path is configured.
	ErrNoDataFile = errors.New("no dataset file specified: use --data or data_file")

	// ErrInvalidAddr is returned when the listen address is not "host:port".
	ErrInvalidAddr = errors.New("invalid listen address: must be host:port")

	// ErrInvalidDelimiter is returned when the CSV delimiter cannot separate fields.
	ErrInvalidDelimiter = errors.New("invalid delimiter: must be a single character other than quote or newline")

	// ErrInvalidReference is returned when the map reference point is out of range.
	ErrInvalidReference = errors.New("invalid reference point: latitude must be within ±90 and longitude within ±180")

	// ErrInvalidZoom is returned when the map zoom is outside 1..18.
	ErrInvalidZoom = errors.New("invalid zoom: must be between 1 and 18")

	// ErrInvalidChartSize is returned when the chart width or height is out of range.
	ErrInvalidChartSize = errors.New("invalid chart size: width and height must be between 200 and 4096")

	// ErrInvalidConfigFile is returned when the configuration file fails validation.
	ErrInvalidConfigFile = errors.New("invalid configuration file")
)
