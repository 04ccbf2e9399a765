package main

import (
	"flag"

	"github.com/evilsocket/islazy/log"
)

var (
	debug     = false
	once      = false
	confFile  = "config.yml"
	clearList = ""
	pngDir    = ""
	scroll    = ""
	window    = -1.0
)

func init() {
	flag.BoolVar(&debug, "debug", debug, "Enable debug logs.")
	flag.StringVar(&log.Output, "log", log.Output, "Log file path or empty for standard output.")
	flag.StringVar(&confFile, "config", confFile, "Configuration file.")
	flag.BoolVar(&once, "once", once, "Render a single frame and exit.")
	flag.StringVar(&clearList, "clear", clearList, "Comma separated list of sensors (adc, gps, mkr) to wipe, then exit.")
	flag.StringVar(&pngDir, "png", pngDir, "Save graph panels as PNG files in this folder, then exit.")
	flag.StringVar(&scroll, "scroll", scroll, "Initial table scroll offsets, for instance adc=10,gps=3.")
	flag.Float64Var(&window, "window", window, "If not negative, override the display window in minutes.")
}

func setup() {
	if debug {
		log.Level = log.DEBUG
	} else {
		log.Level = log.INFO
	}
	log.OnFatal = log.ExitOnFatal

	if err := log.Open(); err != nil {
		panic(err)
	}
}

func cleanup() {
	if store != nil {
		if err := store.Close(); err != nil {
			log.Error("error closing the database: %v", err)
		}
	}
	log.Close()
}
