package core

import (
	"strconv"
	"strings"
)

// Output is how a panel shows its readings.
type Output string

const (
	OutputTable Output = "table"
	OutputGraph Output = "graph"
)

// Panel is the display configuration of a single sensor.
type Panel struct {
	Kind    Kind     `yaml:"kind"`
	Enabled bool     `yaml:"enabled"`
	Output  Output   `yaml:"output"`
	Mode    PlotMode `yaml:"mode"`
}

// ScrollID is stable for a given sensor kind, so the scroll position of its
// table survives redraws.
func (p *Panel) ScrollID() string {
	return p.Kind.String() + "_scroll_area"
}

func (p *Panel) Title() string {
	return p.Kind.Label() + " Sensor Data"
}

func (p *Panel) Validate() error {
	if !p.Kind.Valid() {
		return validationError("invalid sensor kind %d", int(p.Kind))
	} else if p.Output != OutputTable && p.Output != OutputGraph {
		return validationError("%s: unknown output '%s'", p.Kind, p.Output)
	}
	return p.Mode.Validate()
}

// ParseOffsets parses a comma separated list of kind=rows scroll offsets,
// like "adc=10,gps=3".
func ParseOffsets(list string) (map[Kind]int, error) {
	offsets := make(map[Kind]int)
	for _, item := range strings.Split(list, ",") {
		if strings.TrimSpace(item) == "" {
			continue
		}

		parts := strings.SplitN(item, "=", 2)
		if len(parts) != 2 {
			return nil, validationError("scroll offset '%s' is not in the kind=rows form", item)
		}

		kind, err := ParseKind(parts[0])
		if err != nil {
			return nil, err
		}

		rows, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil || rows < 0 {
			return nil, validationError("invalid scroll offset '%s' for %s", parts[1], kind)
		}

		offsets[kind] = rows
	}
	return offsets, nil
}
