package main

import (
	"context"
	"flag"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/evilsocket/islazy/log"
	"github.com/jonboulle/clockwork"
	"github.com/mattn/go-isatty"

	"github.com/evilsocket/daqview/core"
)

var (
	conf      = (*core.Config)(nil)
	store     = (*core.Store)(nil)
	dashboard = (*core.Dashboard)(nil)
)

func clearSensors(ctx context.Context) {
	kinds, err := core.ParseKinds(clearList)
	if err != nil {
		log.Fatal("%v", err)
	}

	for _, kind := range kinds {
		if err := dashboard.Clear(ctx, kind); err != nil {
			log.Error("failed to clear %s data: %v", kind, err)
		}
	}
}

func main() {
	var err error

	flag.Parse()

	setup()
	defer cleanup()

	conf, err = core.Load(confFile)
	if err != nil {
		log.Fatal("error loading configuration from %s: %v", confFile, err)
	}

	if window >= 0 || math.IsNaN(window) {
		if err = conf.OverrideWindow(window); err != nil {
			log.Fatal("invalid -window value: %v", err)
		}
	}

	offsets, err := core.ParseOffsets(scroll)
	if err != nil {
		log.Fatal("invalid -scroll value: %v", err)
	}

	// reserved for the collector, the viewer only reports it
	log.Debug("collection time is %d minutes", conf.Display.Collect)

	store, err = core.Open(conf.Database)
	if err != nil {
		log.Fatal("%v", err)
	}

	dashboard = core.NewDashboard(conf, store, clockwork.NewRealClock())
	dashboard.ClearScreen = !once && isatty.IsTerminal(os.Stdout.Fd())
	for kind, rows := range offsets {
		dashboard.Scroll(kind, rows)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if clearList != "" {
		clearSensors(ctx)
		return
	}

	if pngDir != "" {
		if _, err := dashboard.Export(ctx, pngDir); err != nil {
			log.Error("%v", err)
		}
		return
	}

	if once {
		if err := dashboard.Render(ctx, os.Stdout); err != nil {
			log.Error("%v", err)
		}
		return
	}

	log.Info("daqview starting on %s ...", conf.Database.Path)

	if err := dashboard.Start(ctx, os.Stdout); err != nil {
		log.Error("%v", err)
	}
}
