package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/nao1215/agencydash/internal/model"
)

var fileValidate = validator.New()

// File represents the structure of the .agencydash configuration file.
// Every field is optional.
type File struct {
	// DataFile is the agency CSV path.
	DataFile string `yaml:"data_file,omitempty"`

	// Addr is the dashboard listen address.
	Addr string `yaml:"addr,omitempty" validate:"omitempty,hostname_port"`

	// Delimiter is a single-character CSV separator, e.g. ";".
	Delimiter string `yaml:"delimiter,omitempty" validate:"omitempty,len=1"`

	// Reference overrides the map reference point (Brussels centre by default).
	Reference *model.Coordinate `yaml:"reference,omitempty"`

	// Zoom is the initial map zoom.
	Zoom int `yaml:"zoom,omitempty" validate:"omitempty,min=1,max=18"`

	// ChartWidth and ChartHeight size the profit chart in pixels.
	ChartWidth  int `yaml:"chart_width,omitempty" validate:"omitempty,min=200,max=4096"`
	ChartHeight int `yaml:"chart_height,omitempty" validate:"omitempty,min=200,max=4096"`

	// AllowedOrigins lists origins allowed to call the JSON endpoints.
	AllowedOrigins []string `yaml:"allowed_origins,omitempty" validate:"dive,required"`

	// Localities maps a locality to the position used when a record has no
	// coordinates of its own.
	Localities map[string]model.Coordinate `yaml:"localities,omitempty" validate:"dive,keys,required,endkeys"`
}

// Validate checks the file against its field rules and reports every
// violation at once, so a user can fix the file in one go.
func (f *File) Validate() error {
	err := fileValidate.Struct(f)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidConfigFile, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfigFile, strings.Join(msgs, "; "))
}
