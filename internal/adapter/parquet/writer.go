// Package parquet exports decoded soundings as Parquet, one row per level.
package parquet

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/couchcryptid/igra-sounding-etl/internal/domain"
)

// LevelRow is the flattened Parquet schema: the owning sounding's header
// fields followed by one level's measurements. Absent measurements are null;
// every measurement keeps its quality flag name.
type LevelRow struct {
	SoundingID  string  `parquet:"sounding_id"`
	Station     string  `parquet:"station"`
	ObsTime     int64   `parquet:"obs_time"` // unix seconds, UTC
	HourMissing bool    `parquet:"obs_hour_missing"`
	Lat         float64 `parquet:"lat"`
	Lon         float64 `parquet:"lon"`
	Level       int32   `parquet:"level"` // 0-based position in the sounding
	Major       string  `parquet:"major"`
	Minor       string  `parquet:"minor"`

	Elapsed           *int32   `parquet:"elapsed_s,optional"`
	ElapsedFlag       string   `parquet:"elapsed_flag"`
	Pressure          *int32   `parquet:"pressure,optional"`
	PressureFlag      string   `parquet:"pressure_flag"`
	Height            *int32   `parquet:"height,optional"`
	HeightFlag        string   `parquet:"height_flag"`
	Temperature       *float64 `parquet:"temperature,optional"`
	TemperatureFlag   string   `parquet:"temperature_flag"`
	Humidity          *float64 `parquet:"humidity,optional"`
	HumidityFlag      string   `parquet:"humidity_flag"`
	DewPoint          *float64 `parquet:"dewpoint,optional"`
	DewPointFlag      string   `parquet:"dewpoint_flag"`
	WindDirection     *int32   `parquet:"winddir,optional"`
	WindDirectionFlag string   `parquet:"winddir_flag"`
	WindSpeed         *float64 `parquet:"windspeed,optional"`
	WindSpeedFlag     string   `parquet:"windspeed_flag"`
}

// Writer streams level rows to a Parquet file.
// It implements pipeline.BatchLoader.
type Writer struct {
	w    *parquet.GenericWriter[LevelRow]
	rows int64
}

// NewWriter writes Parquet to out. Close must be called to flush the footer.
func NewWriter(out io.Writer) *Writer {
	return &Writer{w: parquet.NewGenericWriter[LevelRow](out)}
}

// LoadBatch appends one row per level of every sounding in the batch.
func (w *Writer) LoadBatch(_ context.Context, soundings []*domain.Sounding) error {
	var rows []LevelRow
	for _, s := range soundings {
		rows = append(rows, Rows(s)...)
	}
	if len(rows) == 0 {
		return nil
	}
	n, err := w.w.Write(rows)
	w.rows += int64(n)
	if err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	return nil
}

// RowsWritten is the number of rows written so far.
func (w *Writer) RowsWritten() int64 { return w.rows }

// Close flushes buffered rows and writes the file footer.
func (w *Writer) Close() error {
	return w.w.Close()
}

// Rows flattens s into one LevelRow per level. A sounding without levels
// yields no rows.
func Rows(s *domain.Sounding) []LevelRow {
	id := s.ID()
	rows := make([]LevelRow, len(s.Levels))
	for i, l := range s.Levels {
		rows[i] = LevelRow{
			SoundingID:  id,
			Station:     s.Station,
			ObsTime:     s.ObsTime.Unix(),
			HourMissing: s.HourMissing,
			Lat:         s.Location.Lat,
			Lon:         s.Location.Lon,
			Level:       int32(i),
			Major:       l.Major.String(),
			Minor:       l.Minor.String(),

			Elapsed:           elapsedSeconds(l.Elapsed),
			ElapsedFlag:       l.Elapsed.Flag.String(),
			Pressure:          int32Value(l.Pressure),
			PressureFlag:      l.Pressure.Flag.String(),
			Height:            int32Value(l.Height),
			HeightFlag:        l.Height.Flag.String(),
			Temperature:       l.Temperature.Value,
			TemperatureFlag:   l.Temperature.Flag.String(),
			Humidity:          l.Humidity.Value,
			HumidityFlag:      l.Humidity.Flag.String(),
			DewPoint:          l.DewPoint.Value,
			DewPointFlag:      l.DewPoint.Flag.String(),
			WindDirection:     int32Value(l.WindDirection),
			WindDirectionFlag: l.WindDirection.Flag.String(),
			WindSpeed:         l.WindSpeed.Value,
			WindSpeedFlag:     l.WindSpeed.Flag.String(),
		}
	}
	return rows
}

func int32Value(f domain.Flagged[int]) *int32 {
	v, ok := f.Get()
	if !ok {
		return nil
	}
	out := int32(v)
	return &out
}

func elapsedSeconds(f domain.Flagged[time.Duration]) *int32 {
	d, ok := f.Get()
	if !ok {
		return nil
	}
	out := int32(d / time.Second)
	return &out
}
