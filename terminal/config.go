package terminal

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/terminalsim/sim"
)

// Config describes one run of the terminal scenario.
type Config struct {
	// Duration is the amount of virtual time simulated.
	Duration float64 `yaml:"duration"`

	Gates  int `yaml:"gates"`
	Cranes int `yaml:"cranes"`
	Bays   int `yaml:"bays"`

	TruckMeanInterarrival  float64 `yaml:"truck_mean_interarrival"`
	VesselMeanInterarrival float64 `yaml:"vessel_mean_interarrival"`
	MinService             float64 `yaml:"min_service"`
	MaxService             float64 `yaml:"max_service"`

	Seed int64 `yaml:"seed"`

	// TrucksUseBays makes trucks hold a bay while they are served.
	TrucksUseBays bool `yaml:"trucks_use_bays"`

	// ExportShare is the fraction of trucks that pick up an export container
	// instead of dropping off an import one.
	ExportShare float64 `yaml:"export_share"`

	// MaxTrucks and MaxVessels stop the generators after that many
	// arrivals. Zero means no limit.
	MaxTrucks  int `yaml:"max_trucks"`
	MaxVessels int `yaml:"max_vessels"`
}

// DefaultConfig returns the configuration of the reference terminal.
func DefaultConfig() Config {
	return Config{
		Duration:               50,
		Gates:                  1,
		Cranes:                 2,
		Bays:                   3,
		TruckMeanInterarrival:  5,
		VesselMeanInterarrival: 5,
		MinService:             1,
		MaxService:             3,
		Seed:                   0,
		TrucksUseBays:          true,
	}
}

// Validate rejects configurations that cannot be run.
func (c Config) Validate() error {
	switch {
	case c.Duration <= 0:
		return configErr("duration", "must be positive, got %g", c.Duration)
	case c.Gates <= 0:
		return configErr("gates", "must be positive, got %d", c.Gates)
	case c.Cranes <= 0:
		return configErr("cranes", "must be positive, got %d", c.Cranes)
	case c.Bays <= 0:
		return configErr("bays", "must be positive, got %d", c.Bays)
	case c.TruckMeanInterarrival <= 0:
		return configErr("truck_mean_interarrival",
			"must be positive, got %g", c.TruckMeanInterarrival)
	case c.VesselMeanInterarrival <= 0:
		return configErr("vessel_mean_interarrival",
			"must be positive, got %g", c.VesselMeanInterarrival)
	case c.MinService < 0:
		return configErr("min_service",
			"must not be negative, got %g", c.MinService)
	case c.MaxService < c.MinService:
		return configErr("max_service",
			"must not be smaller than min_service %g, got %g",
			c.MinService, c.MaxService)
	case c.ExportShare < 0 || c.ExportShare > 1:
		return configErr("export_share",
			"must be within [0, 1], got %g", c.ExportShare)
	case c.MaxTrucks < 0:
		return configErr("max_trucks", "must not be negative, got %d", c.MaxTrucks)
	case c.MaxVessels < 0:
		return configErr("max_vessels",
			"must not be negative, got %d", c.MaxVessels)
	}

	return nil
}

func configErr(field, format string, args ...any) error {
	return &sim.ConfigurationError{
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig. Unknown keys are
// rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading terminal config: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	err = decoder.Decode(&cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing terminal config: %w", err)
	}

	return cfg, nil
}
