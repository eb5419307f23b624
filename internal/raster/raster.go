// Package raster decodes MODIS aerosol rasters and extracts point values.
package raster

import (
	"fmt"
	"math"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"

	"github.com/Fareedh-7/Ai-Air-Quality/internal/aod"
)

const (
	aodVariable = "Optical_Depth_Land_And_Ocean"
	latVariable = "Latitude"
	lonVariable = "Longitude"
)

// HDFExtractor implements aod.Extractor for MODIS aerosol granule files.
type HDFExtractor struct{}

// Extract opens the raster at path and returns the AOD value of the valid
// cell nearest to the target coordinates.
func (HDFExtractor) Extract(path string, lat, lon float64) (float64, error) {
	ds, err := Open(path)
	if err != nil {
		return 0, err
	}
	return ds.Nearest(lat, lon)
}

// Dataset is the decoded form of one granule: a scaled AOD grid with missing
// cells marked NaN, plus per-pixel latitude and longitude grids of the same
// shape.
type Dataset struct {
	AOD *sparse.DenseArray
	Lat *sparse.DenseArray
	Lon *sparse.DenseArray
}

// Open decodes the AOD variable and its companion coordinate grids. The
// variable's scale_factor and add_offset attributes (defaults 1 and 0) are
// applied to every cell, and cells equal to the raw _FillValue sentinel
// become NaN.
func Open(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, aod.WrapErr(aod.KindData, "raster.Open", err)
	}
	defer f.Close()

	cf, err := cdf.Open(f)
	if err != nil {
		return nil, aod.WrapErr(aod.KindData, "raster.Open", err)
	}

	aodRaw, err := readGrid(cf, aodVariable)
	if err != nil {
		return nil, err
	}
	latGrid, err := readGrid(cf, latVariable)
	if err != nil {
		return nil, err
	}
	lonGrid, err := readGrid(cf, lonVariable)
	if err != nil {
		return nil, err
	}

	if !sameShape(aodRaw.Shape, latGrid.Shape) || !sameShape(aodRaw.Shape, lonGrid.Shape) {
		return nil, aod.Errorf(aod.KindData, "raster.Open",
			"grid shape mismatch: aod %v, lat %v, lon %v",
			aodRaw.Shape, latGrid.Shape, lonGrid.Shape)
	}

	scale := attrFloat(cf, aodVariable, "scale_factor", 1.0)
	offset := attrFloat(cf, aodVariable, "add_offset", 0.0)
	fill, hasFill := attrFloatOK(cf, aodVariable, "_FillValue")

	scaled := sparse.ZerosDense(aodRaw.Shape...)
	for i, raw := range aodRaw.Elements {
		if hasFill && raw == fill {
			scaled.Elements[i] = math.NaN()
			continue
		}
		scaled.Elements[i] = raw*scale + offset
	}

	return &Dataset{AOD: scaled, Lat: latGrid, Lon: lonGrid}, nil
}

// Nearest returns the AOD value of the non-missing cell with minimum squared
// planar degree distance to the target. The planar metric skips geodesic
// correction; that only holds because granule search is bounded to a ~1 degree
// box around the target, and must not be reused for larger radii.
func (d *Dataset) Nearest(lat, lon float64) (float64, error) {
	best := -1
	bestDist := math.Inf(1)
	for i, v := range d.AOD.Elements {
		if math.IsNaN(v) {
			continue
		}
		dLat := d.Lat.Elements[i] - lat
		dLon := d.Lon.Elements[i] - lon
		dist := dLat*dLat + dLon*dLon
		if dist < bestDist {
			bestDist = dist
			best = i
		}
	}
	if best < 0 {
		return 0, aod.Errorf(aod.KindData, "raster.Nearest",
			"no valid AOD measurement near (%g, %g)", lat, lon)
	}
	return d.AOD.Elements[best], nil
}

// readGrid reads a whole variable into a DenseArray in its raw units.
func readGrid(f *cdf.File, name string) (*sparse.DenseArray, error) {
	if !hasVariable(f, name) {
		return nil, aod.Errorf(aod.KindData, "raster.Open", "variable %s not present", name)
	}
	dims := f.Header.Lengths(name)
	if len(dims) == 0 {
		return nil, aod.Errorf(aod.KindData, "raster.Open", "variable %s has no dimensions", name)
	}

	r := f.Reader(name, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, aod.WrapErr(aod.KindData, "raster.Open",
			fmt.Errorf("reading %s: %w", name, err))
	}

	values, err := toFloat64s(buf)
	if err != nil {
		return nil, aod.WrapErr(aod.KindData, "raster.Open",
			fmt.Errorf("variable %s: %w", name, err))
	}

	grid := sparse.ZerosDense(dims...)
	if len(values) != len(grid.Elements) {
		return nil, aod.Errorf(aod.KindData, "raster.Open",
			"variable %s: expected %d values, read %d", name, len(grid.Elements), len(values))
	}
	copy(grid.Elements, values)
	return grid, nil
}

func hasVariable(f *cdf.File, name string) bool {
	for _, v := range f.Header.Variables() {
		if v == name {
			return true
		}
	}
	return false
}

// attrFloat reads a numeric per-variable attribute, falling back to def when
// the attribute is absent.
func attrFloat(f *cdf.File, variable, attr string, def float64) float64 {
	if v, ok := attrFloatOK(f, variable, attr); ok {
		return v
	}
	return def
}

func attrFloatOK(f *cdf.File, variable, attr string) (float64, bool) {
	raw := f.Header.GetAttribute(variable, attr)
	if raw == nil {
		return 0, false
	}
	switch a := raw.(type) {
	case []float64:
		if len(a) > 0 {
			return a[0], true
		}
	case []float32:
		if len(a) > 0 {
			return float64(a[0]), true
		}
	case []int32:
		if len(a) > 0 {
			return float64(a[0]), true
		}
	case []int16:
		if len(a) > 0 {
			return float64(a[0]), true
		}
	case []int8:
		if len(a) > 0 {
			return float64(a[0]), true
		}
	}
	return 0, false
}

func toFloat64s(buf interface{}) ([]float64, error) {
	switch b := buf.(type) {
	case []float64:
		return b, nil
	case []float32:
		out := make([]float64, len(b))
		for i, v := range b {
			out[i] = float64(v)
		}
		return out, nil
	case []int32:
		out := make([]float64, len(b))
		for i, v := range b {
			out[i] = float64(v)
		}
		return out, nil
	case []int16:
		out := make([]float64, len(b))
		for i, v := range b {
			out[i] = float64(v)
		}
		return out, nil
	case []int8:
		out := make([]float64, len(b))
		for i, v := range b {
			out[i] = float64(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported raster value type %T", buf)
	}
}

func sameShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
