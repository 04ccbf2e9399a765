package models

import (
	"fmt"
	"time"
)

// TimeFormat is the layout the collector uses for recording_time.
const TimeFormat = "2006-01-02 15:04:05"

// Row is a sensor table row as it comes out of the database.
type Row struct {
	ID            int64    `gorm:"column:id"`
	RecordingTime string   `gorm:"column:recording_time"`
	Data1         float64  `gorm:"column:data_1"`
	Data2         *float64 `gorm:"column:data_2"`
}

// Reading is one timestamped measurement of a sensor.
type Reading struct {
	Timestamp time.Time `json:"timestamp"`
	ID        int64     `json:"id"`
	Primary   float64   `json:"primary"`
	Secondary float64   `json:"secondary"`
}

func (r Row) Reading() (reading Reading, err error) {
	reading.ID = r.ID
	reading.Primary = r.Data1
	if r.Data2 != nil {
		reading.Secondary = *r.Data2
	}

	reading.Timestamp, err = time.ParseInLocation(TimeFormat, r.RecordingTime, time.UTC)
	return
}

func (r Reading) String() string {
	return fmt.Sprintf("Recording Time: %s, ID: %d, Data_1: %v, Data_2: %v",
		r.Timestamp.Format(TimeFormat), r.ID, r.Primary, r.Secondary)
}
