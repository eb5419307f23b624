package store

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Fareedh-7/Ai-Air-Quality/internal/aod"
)

// CSVSink writes each reading as a single-row CSV file at a fixed path,
// creating parent directories as needed. Each write replaces the previous
// row; the file always holds the most recent export.
type CSVSink struct {
	Path string
}

var csvHeader = []string{
	"city", "date", "latitude", "longitude", "modis_aod", "granule_id", "source_url",
}

// Write serializes one reading.
func (s CSVSink) Write(r aod.Reading) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(s.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	row := []string{
		r.City,
		r.Date,
		strconv.FormatFloat(r.Latitude, 'g', -1, 64),
		strconv.FormatFloat(r.Longitude, 'g', -1, 64),
		strconv.FormatFloat(r.AOD, 'g', -1, 64),
		r.GranuleID,
		r.SourceURL,
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
