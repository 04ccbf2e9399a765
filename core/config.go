package core

import (
	"io/ioutil"
	"math"
	"time"

	"gopkg.in/yaml.v2"
)

type Display struct {
	Window      float64 `yaml:"window"`
	Collect     int     `yaml:"collect"`
	RefreshSecs int     `yaml:"refresh"`
	Rows        int     `yaml:"rows"`
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
}

func (d Display) Refresh() time.Duration {
	return time.Duration(d.RefreshSecs) * time.Second
}

type Config struct {
	Database Database `yaml:"database"`
	Display  Display  `yaml:"display"`
	Archive  Archiver `yaml:"archive"`
	Sensors  []*Panel `yaml:"sensors"`
}

// DefaultConfig mirrors the layout the DAQ GUI started with.
func DefaultConfig() *Config {
	return &Config{
		Database: Database{
			Path:        "database_2/the_database.db",
			TimeoutSecs: 5,
			Retries:     3,
		},
		Display: Display{
			Window:      5.0,
			Collect:     30,
			RefreshSecs: 1,
			Rows:        20,
			Width:       60,
			Height:      12,
		},
		Archive: Archiver{
			Enabled: false,
			Path:    "archive",
		},
		Sensors: []*Panel{
			{Kind: ADC, Output: OutputTable, Mode: PrimaryOverTime},
			{Kind: GPS, Output: OutputGraph, Mode: SecondaryOverPrimary},
			{Kind: MKR, Output: OutputTable, Mode: PrimaryOverTime},
		},
	}
}

func Load(filename string) (*Config, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	conf := DefaultConfig()
	// an explicit sensors list replaces the default one
	conf.Sensors = nil

	if err := yaml.Unmarshal(data, conf); err != nil {
		return nil, err
	}

	if conf.Sensors == nil {
		conf.Sensors = DefaultConfig().Sensors
	}

	for _, panel := range conf.Sensors {
		if panel.Output == "" {
			panel.Output = OutputTable
		}
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

// checkWindow accepts any finite, non negative number of minutes.
func checkWindow(window float64) error {
	if math.IsNaN(window) || math.IsInf(window, 0) {
		return validationError("display window must be a finite number, got %v", window)
	} else if window < 0 {
		return validationError("display window can't be negative, got %v", window)
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return validationError("database path can't be empty")
	} else if c.Database.TimeoutSecs <= 0 {
		return validationError("database timeout must be positive, got %d", c.Database.TimeoutSecs)
	} else if c.Database.Retries < 0 {
		return validationError("database retries can't be negative, got %d", c.Database.Retries)
	}

	if err := checkWindow(c.Display.Window); err != nil {
		return err
	} else if c.Display.Collect < 1 || c.Display.Collect > 120 {
		return validationError("collection time must be between 1 and 120 minutes, got %d", c.Display.Collect)
	} else if c.Display.RefreshSecs <= 0 {
		return validationError("refresh period must be positive, got %d", c.Display.RefreshSecs)
	} else if c.Display.Rows <= 0 || c.Display.Width <= 0 || c.Display.Height <= 0 {
		return validationError("display rows, width and height must be positive")
	}

	if c.Archive.Enabled && c.Archive.Path == "" {
		return validationError("archive path can't be empty when archiving is enabled")
	}

	seen := make(map[Kind]bool)
	for _, panel := range c.Sensors {
		if seen[panel.Kind] {
			return validationError("sensor %s configured more than once", panel.Kind)
		}
		seen[panel.Kind] = true

		if err := panel.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// OverrideWindow replaces the display window, leaving the configuration
// untouched if the result would not be valid.
func (c *Config) OverrideWindow(minutes float64) error {
	previous := c.Display.Window
	c.Display.Window = minutes
	if err := c.Validate(); err != nil {
		c.Display.Window = previous
		return err
	}
	return nil
}

// Panel returns the panel configured for kind, if any.
func (c *Config) Panel(kind Kind) *Panel {
	for _, panel := range c.Sensors {
		if panel.Kind == kind {
			return panel
		}
	}
	return nil
}
