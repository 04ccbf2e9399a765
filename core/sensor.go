package core

import (
	"strings"
)

// Kind identifies a sensor and, through it, the table its readings live in.
type Kind int

const (
	ADC Kind = iota
	GPS
	MKR
)

var kindNames = map[Kind]string{
	ADC: "adc",
	GPS: "gps",
	MKR: "mkr",
}

var kindTables = map[Kind]string{
	ADC: "adc_data",
	GPS: "gps_data",
	MKR: "mkr_data",
}

var kindLabels = map[Kind]string{
	ADC: "ADC",
	GPS: "GPS",
	MKR: "MIKROE",
}

// Kinds returns every supported sensor kind in display order.
func Kinds() []Kind {
	return []Kind{ADC, GPS, MKR}
}

func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for kind, kindName := range kindNames {
		if kindName == name {
			return kind, nil
		}
	}
	return 0, validationError("unknown sensor kind '%s'", name)
}

// ParseKinds parses a comma separated list of sensor kinds.
func ParseKinds(list string) ([]Kind, error) {
	kinds := make([]Kind, 0)
	for _, name := range strings.Split(list, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		kind, err := ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func (k Kind) Valid() bool {
	_, found := kindTables[k]
	return found
}

func (k Kind) String() string {
	if name, found := kindNames[k]; found {
		return name
	}
	return "unknown"
}

// Table is the only table readings of this kind are read from or wiped.
func (k Kind) Table() string {
	return kindTables[k]
}

func (k Kind) Label() string {
	return kindLabels[k]
}

func (k *Kind) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}

	kind, err := ParseKind(name)
	if err != nil {
		return err
	}

	*k = kind
	return nil
}
