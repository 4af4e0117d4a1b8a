// Package model defines the core data structures used throughout agencydash.
//
// This package contains the following main types:
//   - Record: One row of the agency dataset (an Agency Record)
//   - Coordinate: An approximate latitude/longitude pair
//   - CompanySize: An employee count or a categorical size band
//   - Profit: The signed "latest profit after tax" value in euros
//
// The types are plain values. A Record is never modified after the dataset
// loader creates it; helpers such as Record.WithCoordinate return a copy.
//
// Coordinates are approximate and carried over from the dataset as-is.
// They are good enough to place a marker on a country-level map and must
// not be used for navigation.
package model
