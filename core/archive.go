package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/evilsocket/islazy/log"
	"github.com/pkg/errors"
	"github.com/teris-io/shortid"

	"github.com/evilsocket/daqview/models"
)

var createArchive = func(fileName string) (io.WriteCloser, error) {
	return os.Create(fileName)
}

// Archiver saves a copy of a sensor table before it gets cleared.
type Archiver struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

func (a *Archiver) Save(kind Kind, readings []models.Reading, now time.Time) (string, error) {
	if err := os.MkdirAll(a.Path, 0755); err != nil {
		return "", errors.Wrapf(err, "creating %s", a.Path)
	}

	id, err := shortid.Generate()
	if err != nil {
		return "", err
	}

	fileName := filepath.Join(a.Path, fmt.Sprintf("archive_%s_%s_%s.csv", kind, now.Format("20060102T150405"), id))

	fp, err := createArchive(fileName)
	if err != nil {
		return "", errors.Wrapf(err, "creating %s", fileName)
	}

	writer := csv.NewWriter(fp)
	writer.Write([]string{
		"recording_time",
		"id",
		"data_1",
		"data_2",
	})

	for _, r := range readings {
		writer.Write([]string{
			r.Timestamp.Format(models.TimeFormat),
			fmt.Sprintf("%d", r.ID),
			fmt.Sprintf("%v", r.Primary),
			fmt.Sprintf("%v", r.Secondary),
		})
	}

	writer.Flush()
	err = writer.Error()
	if closeErr := fp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(fileName)
		return "", errors.Wrapf(err, "writing %s", fileName)
	}

	log.Info("archived %d %s readings to %s", len(readings), kind, fileName)

	return fileName, nil
}
