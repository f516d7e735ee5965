// Package sampler resolves point values from gridded data under the NDFD
// nearest-neighbor and bilinear interpolation rules.
package sampler

import (
	"math"

	"hstin/ndprobe/common"
	"hstin/ndprobe/projection"
)

// Interp selects the interpolation kernel.
type Interp int

const (
	Nearest Interp = iota
	Bilinear
)

// GridAttrib is the missing-value policy of one grid. MissMode 0 means the
// grid has no encoded missing value; MissPri is still used for out-of-bounds
// results. MissMode 2 adds a secondary missing constant.
type GridAttrib struct {
	MissMode int
	MissPri  float64
	MissSec  float64
}

// CellFunc fetches the stored value at 1-based cell (x, y).
type CellFunc func(x, y int) (float64, error)

// Options fixes everything about a sampling pass except the point itself.
// Weather grids are categorical, so bilinear is downgraded to nearest no
// matter what the caller asked for. AllowWrap enables the longitudinal border
// variant on full-circle lat/lon grids (GRIB path only).
type Options struct {
	Proj      *projection.Projection
	Kind      common.PointKind
	Nx        int
	Ny        int
	Attrib    GridAttrib
	Interp    Interp
	Weather   bool
	AllowWrap bool
}

// Index converts a 1-based cell (x, y) into the flat data index under the
// grid's scan mode. Scan 64 stores rows bottom-up, scan 0 top-down.
func Index(x, y, nx, ny int, scan byte) int {
	if scan == 64 {
		return (x - 1) + (y-1)*nx
	}
	return (x - 1) + (ny-y)*nx
}

// Sample resolves one point to one scalar. Lat/lon points are projected to
// continuous cell space first; grid-cell points are taken as given.
func Sample(opt Options, pt common.Point, cell CellFunc) (float64, error) {
	var cx, cy float64
	if opt.Kind == common.PointLatLon {
		cx, cy = opt.Proj.CellOf(pt.Y, pt.X)
	} else {
		cx, cy = pt.X, pt.Y
	}

	interp := opt.Interp
	if opt.Weather {
		interp = Nearest
	}

	if interp == Bilinear {
		return bilinear(opt, cx, cy, cell)
	}
	return nearest(opt, cx, cy, cell)
}

func nearest(opt Options, cx, cy float64, cell CellFunc) (float64, error) {
	x := int(math.RoundToEven(cx))
	y := int(math.RoundToEven(cy))
	if x < 1 || x > opt.Nx || y < 1 || y > opt.Ny {
		return opt.Attrib.MissPri, nil
	}
	return cell(x, y)
}

func bilinear(opt Options, cx, cy float64, cell CellFunc) (float64, error) {
	x1 := int(math.Floor(cx))
	y1 := int(math.Floor(cy))
	x2 := x1 + 1
	y2 := y1 + 1

	if x1 < 1 || x2 > opt.Nx || y1 < 1 || y2 > opt.Ny {
		return border(opt, cx, cy, x1, y1, cell)
	}

	d11, err := cell(x1, y1)
	if err != nil {
		return 0, err
	}
	d12, err := cell(x2, y1)
	if err != nil {
		return 0, err
	}
	d21, err := cell(x1, y2)
	if err != nil {
		return 0, err
	}
	d22, err := cell(x2, y2)
	if err != nil {
		return 0, err
	}

	if miss, hit := missingCorner(opt.Attrib, d11, d12, d21, d22); hit {
		return miss, nil
	}
	return interpolate(cx, cy, float64(x1), float64(y1), d11, d12, d21, d22), nil
}

// border handles a bilinear stencil that crosses the grid boundary. Only a
// lat/lon grid spanning a full circle of longitude may wrap; everything else
// is missing.
func border(opt Options, cx, cy float64, x1, y1 int, cell CellFunc) (float64, error) {
	if opt.Proj == nil || !opt.AllowWrap || !opt.Proj.WrapsLon() {
		return opt.Attrib.MissPri, nil
	}
	y2 := y1 + 1
	if y1 < 1 || y2 > opt.Ny {
		return opt.Attrib.MissPri, nil
	}

	wx1 := wrapX(x1, opt.Nx)
	wx2 := wrapX(x1+1, opt.Nx)

	d11, err := cell(wx1, y1)
	if err != nil {
		return 0, err
	}
	d12, err := cell(wx2, y1)
	if err != nil {
		return 0, err
	}
	d21, err := cell(wx1, y2)
	if err != nil {
		return 0, err
	}
	d22, err := cell(wx2, y2)
	if err != nil {
		return 0, err
	}

	if miss, hit := missingCorner(opt.Attrib, d11, d12, d21, d22); hit {
		return miss, nil
	}
	return interpolate(cx, cy, float64(x1), float64(y1), d11, d12, d21, d22), nil
}

func wrapX(x, nx int) int {
	x = (x - 1) % nx
	if x < 0 {
		x += nx
	}
	return x + 1
}

func missingCorner(attrib GridAttrib, corners ...float64) (float64, bool) {
	if attrib.MissMode == 0 {
		return 0, false
	}
	for _, d := range corners {
		if d == attrib.MissPri {
			return attrib.MissPri, true
		}
		if attrib.MissMode == 2 && d == attrib.MissSec {
			return attrib.MissPri, true
		}
	}
	return 0, false
}

// interpolate applies the sign-preserving bilinear form. With unit cell
// spacing the divisors are -1, which reduces to standard bilinear weights.
func interpolate(cx, cy, x1, y1, d11, d12, d21, d22 float64) float64 {
	x2 := x1 + 1
	y2 := y1 + 1
	tx := cx - x1
	ty := cy - y1
	t1 := d11 + tx*(d11-d12)/(x1-x2)
	t2 := d21 + tx*(d21-d22)/(x1-x2)
	return t1 + ty*(t1-t2)/(y1-y2)
}
