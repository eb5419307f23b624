package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Fareedh-7/Ai-Air-Quality/internal/aod"
)

func reading(city, date string, value float64) aod.Reading {
	return aod.Reading{
		City:      city,
		Date:      date,
		Latitude:  12.0,
		Longitude: 34.0,
		AOD:       value,
		GranuleID: "MOD04_L2." + date,
		SourceURL: "https://example.com/" + date + ".hdf",
	}
}

func TestSaveAndLatest(t *testing.T) {
	s := NewMemoryStore(10, 0)

	s.Save(reading("Testville", "2024-03-08", 0.1))
	s.Save(reading("Testville", "2024-03-09", 0.2))
	s.Save(reading("Testville", "2024-03-10", 0.3))

	got, err := s.Latest("Testville")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got.AOD != 0.3 || got.Date != "2024-03-10" {
		t.Errorf("latest = %+v, want the 2024-03-10 reading", got)
	}

	// Lookup normalizes the city key.
	if _, err := s.Latest("  testville "); err != nil {
		t.Errorf("normalized lookup failed: %v", err)
	}
}

func TestLatestUnknownCity(t *testing.T) {
	s := NewMemoryStore(10, 0)
	if _, err := s.Latest("Ghosttown"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRange(t *testing.T) {
	s := NewMemoryStore(10, 0)
	for day := 1; day <= 5; day++ {
		s.Save(reading("Testville", fmt.Sprintf("2024-03-0%d", day), float64(day)/10))
	}

	from := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	got, err := s.Range("Testville", from, to)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d readings, want 3", len(got))
	}
	if got[0].Date != "2024-03-02" || got[2].Date != "2024-03-04" {
		t.Errorf("range bounds wrong: %s .. %s", got[0].Date, got[2].Date)
	}
}

func TestRetentionByCount(t *testing.T) {
	s := NewMemoryStore(2, 0)
	s.Save(reading("Testville", "2024-03-08", 0.1))
	s.Save(reading("Testville", "2024-03-09", 0.2))
	s.Save(reading("Testville", "2024-03-10", 0.3))

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	got, err := s.Range("Testville", from, to)
	if err != nil {
		t.Fatalf("Range: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d readings after retention, want 2", len(got))
	}
	if got[0].Date != "2024-03-09" {
		t.Errorf("oldest kept reading = %s, want 2024-03-09", got[0].Date)
	}
}

func TestCSVSinkWritesSingleRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "live_aod.csv")
	sink := CSVSink{Path: path}

	r := reading("Testville", "2024-03-10", 0.42)
	if err := sink.Write(r); err != nil {
		t.Fatalf("Write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading sink file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header + one row", len(lines))
	}
	if lines[0] != "city,date,latitude,longitude,modis_aod,granule_id,source_url" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "Testville,2024-03-10,12,34,0.42,") {
		t.Errorf("row = %q", lines[1])
	}
}
