// Package config provides the configuration of agencydash: defaults, the
// optional YAML configuration file and validation.
package config
