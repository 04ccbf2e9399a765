package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/evilsocket/islazy/log"
	"github.com/pkg/errors"
	chart "github.com/wcharczuk/go-chart/v2"
)

func axisNames(mode PlotMode) (x, y string) {
	switch mode {
	case PrimaryOverTime:
		return "seconds", "data_1"
	case SecondaryOverTime:
		return "seconds", "data_2"
	case PrimaryOverSecondary:
		return "data_2", "data_1"
	default:
		return "data_1", "data_2"
	}
}

// Export renders every enabled graph panel to <dir>/<kind>_plot.png and
// returns the files it wrote.
func (d *Dashboard) Export(ctx context.Context, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating %s", dir)
	}

	written := make([]string, 0)
	for _, panel := range d.conf.Sensors {
		if !panel.Enabled || panel.Output != OutputGraph {
			continue
		}

		readings, err := d.fetch(ctx, panel)
		if err != nil {
			return written, err
		}

		points, err := Project(readings, panel.Mode, d.clock.Now().UTC())
		if err != nil {
			return written, err
		} else if len(points) < 2 {
			log.Warning("%s: not enough readings to export a plot", panel.Title())
			continue
		}

		series := chart.ContinuousSeries{
			Name:    panel.Title(),
			XValues: make([]float64, len(points)),
			YValues: make([]float64, len(points)),
		}
		for i, p := range points {
			series.XValues[i] = p.X
			series.YValues[i] = p.Y
		}

		xName, yName := axisNames(panel.Mode)
		graph := chart.Chart{
			Title:  panel.Title(),
			Width:  1024,
			Height: 512,
			XAxis:  chart.XAxis{Name: xName},
			YAxis:  chart.YAxis{Name: yName},
			Series: []chart.Series{series},
		}

		fileName := filepath.Join(dir, fmt.Sprintf("%s_plot.png", panel.Kind))
		fp, err := os.Create(fileName)
		if err != nil {
			return written, errors.Wrapf(err, "creating %s", fileName)
		}

		err = graph.Render(chart.PNG, fp)
		fp.Close()
		if err != nil {
			log.Error("%s: rendering %s: %v", panel.Title(), fileName, err)
			os.Remove(fileName)
			continue
		}

		log.Info("%s plot saved to %s", panel.Title(), fileName)
		written = append(written, fileName)
	}

	return written, nil
}
