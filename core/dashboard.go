package core

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/evilsocket/islazy/log"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"

	"github.com/evilsocket/daqview/models"
)

const clearScreen = "\033[H\033[2J"

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	titleStyle   = lipgloss.NewStyle().Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// Dashboard renders the enabled sensor panels, one frame per redraw.
type Dashboard struct {
	// ClearScreen resets the terminal before every frame.
	ClearScreen bool

	conf   *Config
	source Source
	clock  clockwork.Clock
	scroll map[string]int
}

func NewDashboard(conf *Config, source Source, clock clockwork.Clock) *Dashboard {
	return &Dashboard{
		conf:   conf,
		source: source,
		clock:  clock,
		scroll: make(map[string]int),
	}
}

// Scroll moves the table of kind by delta rows. The offset is clamped when
// the table is rendered.
func (d *Dashboard) Scroll(kind Kind, delta int) {
	panel := d.conf.Panel(kind)
	if panel == nil {
		return
	}

	id := panel.ScrollID()
	offset := d.scroll[id] + delta
	if offset < 0 {
		offset = 0
	}
	d.scroll[id] = offset
}

func (d *Dashboard) fetch(ctx context.Context, panel *Panel) ([]models.Reading, error) {
	// nothing invalid may reach the database
	if err := panel.Validate(); err != nil {
		return nil, err
	} else if err := checkWindow(d.conf.Display.Window); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, d.conf.Database.Timeout())
	defer cancel()

	return d.source.Fetch(ctx, panel.Kind, d.conf.Display.Window)
}

func (d *Dashboard) status(readings []models.Reading, now time.Time) string {
	if len(readings) == 0 {
		return fmt.Sprintf("no readings in the last %v minutes", d.conf.Display.Window)
	}

	latest := readings[0].Timestamp
	for _, r := range readings[1:] {
		if r.Timestamp.After(latest) {
			latest = r.Timestamp
		}
	}

	return fmt.Sprintf("%s readings, latest %s", humanize.Comma(int64(len(readings))),
		humanize.RelTime(latest, now, "ago", "from now"))
}

func (d *Dashboard) body(ctx context.Context, panel *Panel) (string, error) {
	readings, err := d.fetch(ctx, panel)
	if err != nil {
		return "", err
	}

	now := d.clock.Now().UTC()

	var view string
	switch panel.Output {
	case OutputTable:
		view = renderTable(readings, d.scroll[panel.ScrollID()], d.conf.Display.Rows)
	case OutputGraph:
		points, err := Project(readings, panel.Mode, now)
		if err != nil {
			return "", err
		}
		plot := Plot{
			Width:  d.conf.Display.Width,
			Height: d.conf.Display.Height,
			XLabel: panel.Mode.String(),
		}
		view = plot.Render(points)
	}

	return view + d.status(readings, now), nil
}

// RenderPanel returns the framed view of a single panel. A failure is shown
// inline in place of the data.
func (d *Dashboard) RenderPanel(ctx context.Context, panel *Panel) string {
	content, err := d.body(ctx, panel)
	if err != nil {
		log.Error("%s: %v", panel.Title(), err)
		content = errorStyle.Render(fmt.Sprintf("error: %v", err))
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(panel.Title()), content))
}

// Render draws one frame with every enabled panel.
func (d *Dashboard) Render(ctx context.Context, out io.Writer) error {
	blocks := []string{headingStyle.Render("DAQ")}

	selected := 0
	for _, panel := range d.conf.Sensors {
		if panel.Enabled {
			blocks = append(blocks, d.RenderPanel(ctx, panel))
			selected++
		}
	}

	if selected == 0 {
		blocks = append(blocks, "no sensors selected")
	}

	frame := lipgloss.JoinVertical(lipgloss.Left, blocks...)
	if !strings.HasSuffix(frame, "\n") {
		frame += "\n"
	}

	if d.ClearScreen {
		frame = clearScreen + frame
	}

	_, err := io.WriteString(out, frame)
	return err
}

// Clear wipes the readings of kind, archiving them first if configured.
func (d *Dashboard) Clear(ctx context.Context, kind Kind) error {
	if !kind.Valid() {
		return validationError("invalid sensor kind %d", int(kind))
	}

	ctx, cancel := context.WithTimeout(ctx, d.conf.Database.Timeout())
	defer cancel()

	if d.conf.Archive.Enabled {
		readings, err := d.source.Dump(ctx, kind)
		if err != nil {
			return err
		}

		if _, err := d.conf.Archive.Save(kind, readings, d.clock.Now().UTC()); err != nil {
			return errors.Wrapf(err, "archiving %s, table left untouched", kind)
		}
	}

	if err := d.source.Clear(ctx, kind); err != nil {
		return err
	}

	if panel := d.conf.Panel(kind); panel != nil {
		delete(d.scroll, panel.ScrollID())
	}

	return nil
}

// Start redraws the dashboard every refresh period until ctx is done.
func (d *Dashboard) Start(ctx context.Context, out io.Writer) error {
	log.Info("refreshing every %s, showing the last %v minutes", d.conf.Display.Refresh(), d.conf.Display.Window)

	ticker := d.clock.NewTicker(d.conf.Display.Refresh())
	defer ticker.Stop()

	for {
		started := d.clock.Now()
		if err := d.Render(ctx, out); err != nil {
			return err
		}
		log.Debug("frame rendered in %s", d.clock.Since(started))

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
		}
	}
}
