package core

import (
	"time"

	"github.com/evilsocket/daqview/models"
)

// PlotMode selects which two reading fields become the X and Y of a point.
type PlotMode int

const (
	// primary value over seconds relative to now
	PrimaryOverTime PlotMode = iota
	// secondary value over seconds relative to now
	SecondaryOverTime
	// primary value over secondary value
	PrimaryOverSecondary
	// secondary value over primary value
	SecondaryOverPrimary
)

var modeNames = map[PlotMode]string{
	PrimaryOverTime:      "data_1 v time",
	SecondaryOverTime:    "data_2 v time",
	PrimaryOverSecondary: "data_1 v data_2",
	SecondaryOverPrimary: "data_2 v data_1",
}

type Point struct {
	X float64
	Y float64
}

func (m PlotMode) Validate() error {
	if _, found := modeNames[m]; !found {
		return validationError("invalid plot mode %d", int(m))
	}
	return nil
}

func (m PlotMode) String() string {
	if name, found := modeNames[m]; found {
		return name
	}
	return "invalid"
}

// TimeBased is true for modes whose X axis is "seconds ago".
func (m PlotMode) TimeBased() bool {
	return m == PrimaryOverTime || m == SecondaryOverTime
}

// secondsSince returns the position of t on a rolling axis where now is 0
// and the past is negative.
func secondsSince(now, t time.Time) float64 {
	return -now.Sub(t).Seconds()
}

// Project maps readings to points according to mode, keeping their order.
func Project(readings []models.Reading, mode PlotMode, now time.Time) ([]Point, error) {
	if err := mode.Validate(); err != nil {
		return nil, err
	}

	points := make([]Point, 0, len(readings))
	for _, r := range readings {
		var p Point
		switch mode {
		case PrimaryOverTime:
			p = Point{X: secondsSince(now, r.Timestamp), Y: r.Primary}
		case SecondaryOverTime:
			p = Point{X: secondsSince(now, r.Timestamp), Y: r.Secondary}
		case PrimaryOverSecondary:
			p = Point{X: r.Secondary, Y: r.Primary}
		case SecondaryOverPrimary:
			p = Point{X: r.Primary, Y: r.Secondary}
		}
		points = append(points, p)
	}

	return points, nil
}
