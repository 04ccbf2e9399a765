package core

import (
	"fmt"
	"time"
)

type Database struct {
	Path        string `yaml:"path"`
	TimeoutSecs int    `yaml:"timeout"`
	Retries     int    `yaml:"retries"`
}

func (d Database) Timeout() time.Duration {
	return time.Duration(d.TimeoutSecs) * time.Second
}

// dsn returns the sqlite connection string, waiting on locks for at most
// the configured timeout.
func (d Database) dsn() string {
	return fmt.Sprintf("file:%s?_busy_timeout=%d", d.Path, d.Timeout().Milliseconds())
}
