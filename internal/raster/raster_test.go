package raster

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"

	"github.com/Fareedh-7/Ai-Air-Quality/internal/aod"
)

// testGrid is the 2x2 pixel layout used across the decode tests:
// latitudes by row, longitudes by column.
var (
	testLats = []float32{10.0, 10.0, 10.1, 10.1}
	testLons = []float32{20.0, 20.1, 20.0, 20.1}
)

type granuleAttrs struct {
	scale  float64
	offset float64
	fill   int16
	// which attributes to write
	withScale  bool
	withOffset bool
	withFill   bool
}

// writeTestGranule creates a minimal granule file with the three expected
// variables on a 2x2 grid.
func writeTestGranule(t *testing.T, aodRaw []int16, attrs granuleAttrs) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "granule.hdf")
	w, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating test granule: %v", err)
	}
	defer w.Close()

	h := cdf.NewHeader([]string{"y", "x"}, []int{2, 2})
	h.AddVariable("Optical_Depth_Land_And_Ocean", []string{"y", "x"}, []int16{0})
	if attrs.withScale {
		h.AddAttribute("Optical_Depth_Land_And_Ocean", "scale_factor", []float64{attrs.scale})
	}
	if attrs.withOffset {
		h.AddAttribute("Optical_Depth_Land_And_Ocean", "add_offset", []float64{attrs.offset})
	}
	if attrs.withFill {
		h.AddAttribute("Optical_Depth_Land_And_Ocean", "_FillValue", []int16{attrs.fill})
	}
	h.AddVariable("Latitude", []string{"y", "x"}, []float32{0})
	h.AddVariable("Longitude", []string{"y", "x"}, []float32{0})
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		t.Fatalf("writing test granule header: %v", err)
	}
	// The cdf strider returns io.EOF once the write cursor reaches the end
	// of a fixed-size variable, even when every element was written.
	if _, err := f.Writer("Optical_Depth_Land_And_Ocean", nil, nil).Write(aodRaw); err != nil && err != io.EOF {
		t.Fatalf("writing aod variable: %v", err)
	}
	if _, err := f.Writer("Latitude", nil, nil).Write(testLats); err != nil && err != io.EOF {
		t.Fatalf("writing latitude variable: %v", err)
	}
	if _, err := f.Writer("Longitude", nil, nil).Write(testLons); err != nil && err != io.EOF {
		t.Fatalf("writing longitude variable: %v", err)
	}
	if err := cdf.UpdateNumRecs(w); err != nil {
		t.Fatalf("finalizing test granule: %v", err)
	}
	return path
}

func TestOpenAppliesScaleOffsetAndFill(t *testing.T) {
	path := writeTestGranule(t, []int16{100, 200, -9999, 400}, granuleAttrs{
		scale: 0.001, offset: 0.05, fill: -9999,
		withScale: true, withOffset: true, withFill: true,
	})

	ds, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	want := []float64{0.15, 0.25, math.NaN(), 0.45}
	for i, w := range want {
		got := ds.AOD.Elements[i]
		if math.IsNaN(w) {
			if !math.IsNaN(got) {
				t.Errorf("cell %d = %g, want NaN", i, got)
			}
			continue
		}
		if math.Abs(got-w) > 1e-9 {
			t.Errorf("cell %d = %g, want %g", i, got, w)
		}
	}
}

func TestOpenDefaultsReproduceRawValues(t *testing.T) {
	path := writeTestGranule(t, []int16{100, 200, 300, 400}, granuleAttrs{})

	ds, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	want := []float64{100, 200, 300, 400}
	for i, w := range want {
		if got := ds.AOD.Elements[i]; got != w {
			t.Errorf("cell %d = %g, want %g (scale 1, offset 0)", i, got, w)
		}
	}
}

func TestExtractNearestValidFromFile(t *testing.T) {
	// The pixel at (10.0, 20.0) is filled; the nearest valid one for a
	// target right on it is (10.0, 20.1).
	path := writeTestGranule(t, []int16{-9999, 200, 300, 400}, granuleAttrs{
		scale: 0.001, fill: -9999,
		withScale: true, withFill: true,
	})

	got, err := HDFExtractor{}.Extract(path, 10.0, 20.0)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if math.Abs(got-0.2) > 1e-9 {
		t.Errorf("aod = %g, want 0.2", got)
	}
}

// newDataset builds an in-memory 2x2 dataset for nearest-neighbor tests.
func newDataset(values []float64) *Dataset {
	grid := func(vals []float32) *sparse.DenseArray {
		d := sparse.ZerosDense(2, 2)
		for i, v := range vals {
			d.Elements[i] = float64(v)
		}
		return d
	}
	a := sparse.ZerosDense(2, 2)
	copy(a.Elements, values)
	return &Dataset{AOD: a, Lat: grid(testLats), Lon: grid(testLons)}
}

func TestNearestPicksMinimumDistance(t *testing.T) {
	ds := newDataset([]float64{0.1, 0.2, 0.3, 0.4})

	tests := []struct {
		lat, lon float64
		want     float64
	}{
		{10.0, 20.0, 0.1},
		{10.0, 20.1, 0.2},
		{10.11, 20.01, 0.3},
		{10.09, 20.09, 0.4},
	}
	for _, tt := range tests {
		got, err := ds.Nearest(tt.lat, tt.lon)
		if err != nil {
			t.Fatalf("Nearest(%g, %g): %v", tt.lat, tt.lon, err)
		}
		if got != tt.want {
			t.Errorf("Nearest(%g, %g) = %g, want %g", tt.lat, tt.lon, got, tt.want)
		}
	}
}

func TestNearestSkipsMissingCells(t *testing.T) {
	// The geometrically nearest cell for (10.0, 20.0) is missing; the
	// next-nearest valid cell must win.
	ds := newDataset([]float64{math.NaN(), 0.2, 0.3, 0.4})

	got, err := ds.Nearest(10.0, 20.0)
	if err != nil {
		t.Fatalf("Nearest: %v", err)
	}
	if got != 0.2 {
		t.Errorf("aod = %g, want 0.2 (next-nearest valid cell)", got)
	}
}

func TestNearestAllMissing(t *testing.T) {
	nan := math.NaN()
	ds := newDataset([]float64{nan, nan, nan, nan})

	_, err := ds.Nearest(10.0, 20.0)
	if aod.KindOf(err) != aod.KindData {
		t.Fatalf("expected data error, got %v", err)
	}
}
