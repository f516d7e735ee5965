package sampler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hstin/ndprobe/common"
	"hstin/ndprobe/projection"
)

const miss = 9999.0

// sliceCell adapts a flat value slice to the sampler's accessor.
func sliceCell(vals []float64, nx, ny int, scan byte) CellFunc {
	return func(x, y int) (float64, error) {
		return vals[Index(x, y, nx, ny, scan)], nil
	}
}

func gridOpts(nx, ny int, interp Interp) Options {
	return Options{
		Kind:   common.PointGridCell,
		Nx:     nx,
		Ny:     ny,
		Attrib: GridAttrib{MissMode: 1, MissPri: miss},
		Interp: interp,
	}
}

func TestIndexScanModes(t *testing.T) {
	// 3x2 grid. Scan 64 stores the southern row first, scan 0 the northern.
	assert.Equal(t, 0, Index(1, 1, 3, 2, 64))
	assert.Equal(t, 4, Index(2, 2, 3, 2, 64))
	assert.Equal(t, 3, Index(1, 1, 3, 2, 0))
	assert.Equal(t, 1, Index(2, 2, 3, 2, 0))
}

func TestNearestHitsCellCenterExactly(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5, 6}

	for _, scan := range []byte{64, 0} {
		cell := sliceCell(vals, 3, 2, scan)
		opt := gridOpts(3, 2, Nearest)
		for y := 1; y <= 2; y++ {
			for x := 1; x <= 3; x++ {
				got, err := Sample(opt, common.Point{X: float64(x), Y: float64(y)}, cell)
				require.NoError(t, err)
				want := vals[Index(x, y, 3, 2, scan)]
				assert.Equal(t, want, got, "scan %d cell (%d,%d)", scan, x, y)
			}
		}
	}
}

func TestNearestRounding(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5, 6}
	cell := sliceCell(vals, 3, 2, 64)
	opt := gridOpts(3, 2, Nearest)

	got, err := Sample(opt, common.Point{X: 1.5, Y: 1.5}, cell)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got, "(1.5, 1.5) snaps to cell (2,2)")

	got, err = Sample(opt, common.Point{X: 2.5, Y: 1.5}, cell)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got, "ties snap to the even cell")

	got, err = Sample(opt, common.Point{X: 1.49, Y: 1.49}, cell)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func TestNearestOutOfBoundsIsMissing(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5, 6}
	cell := sliceCell(vals, 3, 2, 64)
	opt := gridOpts(3, 2, Nearest)

	for _, pt := range []common.Point{{X: 0.4, Y: 1}, {X: 3.6, Y: 1}, {X: 1, Y: 0.4}, {X: 1, Y: 2.6}} {
		got, err := Sample(opt, pt, cell)
		require.NoError(t, err)
		assert.Equal(t, miss, got, "point %+v", pt)
	}
}

func TestBilinearAtCellCenterEqualsNearest(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5, 6}
	cell := sliceCell(vals, 3, 2, 64)

	near := gridOpts(3, 2, Nearest)
	bi := gridOpts(3, 2, Bilinear)

	// Interior cell centers: the 2x2 stencil stays in bounds.
	for _, pt := range []common.Point{{X: 1, Y: 1}, {X: 2, Y: 1}} {
		n, err := Sample(near, pt, cell)
		require.NoError(t, err)
		b, err := Sample(bi, pt, cell)
		require.NoError(t, err)
		assert.Equal(t, n, b, "point %+v", pt)
	}
}

func TestBilinearInterpolates(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5, 6}
	cell := sliceCell(vals, 3, 2, 64)
	opt := gridOpts(3, 2, Bilinear)

	// Centroid of cells (1,1),(2,1),(1,2),(2,2): mean of 1,2,4,5.
	got, err := Sample(opt, common.Point{X: 1.5, Y: 1.5}, cell)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, got, 1e-12)
}

func TestBilinearMissingCornerPropagates(t *testing.T) {
	vals := []float64{1, 2, 3, 4, miss, 6}
	cell := sliceCell(vals, 3, 2, 64)
	opt := gridOpts(3, 2, Bilinear)

	got, err := Sample(opt, common.Point{X: 1.5, Y: 1.5}, cell)
	require.NoError(t, err)
	assert.Equal(t, miss, got, "any missing stencil corner yields primary missing")
}

func TestBilinearSecondaryMissing(t *testing.T) {
	const missSec = 9998.0
	vals := []float64{1, 2, 3, 4, missSec, 6}
	cell := sliceCell(vals, 3, 2, 64)

	opt := gridOpts(3, 2, Bilinear)
	opt.Attrib = GridAttrib{MissMode: 2, MissPri: miss, MissSec: missSec}

	got, err := Sample(opt, common.Point{X: 1.5, Y: 1.5}, cell)
	require.NoError(t, err)
	assert.Equal(t, miss, got, "secondary missing collapses to primary missing")
}

func TestBilinearStencilOffGridIsMissing(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5, 6}
	cell := sliceCell(vals, 3, 2, 64)
	opt := gridOpts(3, 2, Bilinear)

	got, err := Sample(opt, common.Point{X: 2.5, Y: 2.5}, cell)
	require.NoError(t, err)
	assert.Equal(t, miss, got, "stencil crossing the north edge without wrap")
}

func TestWeatherForcesNearest(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5, 6}
	cell := sliceCell(vals, 3, 2, 64)

	opt := gridOpts(3, 2, Bilinear)
	opt.Weather = true

	got, err := Sample(opt, common.Point{X: 1.5, Y: 1.5}, cell)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got, "categorical grids are sampled nearest even when bilinear is requested")
}

func TestBilinearWrapsGlobalGrid(t *testing.T) {
	// 4x2 global grid: 90 degree spacing spans the full circle.
	def := projection.GridDef{
		Kind: projection.ProjLatLon,
		Nx:   4, Ny: 2,
		Lat1: 0, Lon1: 0,
		Dx: 90, Dy: 1,
		ScanMode: 64,
	}
	proj, err := projection.Build(def)
	require.NoError(t, err)

	vals := []float64{10, 20, 30, 40, 50, 60, 70, 80}
	cell := sliceCell(vals, 4, 2, 64)

	opt := gridOpts(4, 2, Bilinear)
	opt.Proj = proj
	opt.AllowWrap = true

	// x=4.5 lies between the last column and the wrapped first column.
	got, err := Sample(opt, common.Point{X: 4.5, Y: 1}, cell)
	require.NoError(t, err)
	assert.InDelta(t, (40.0+10.0)/2, got, 1e-12)

	// Without wrap permission the same stencil is missing.
	opt.AllowWrap = false
	got, err = Sample(opt, common.Point{X: 4.5, Y: 1}, cell)
	require.NoError(t, err)
	assert.Equal(t, miss, got)
}

func TestLatLonPointProjectsThenSamples(t *testing.T) {
	def := projection.GridDef{
		Kind: projection.ProjLatLon,
		Nx:   3, Ny: 2,
		Lat1: 0, Lon1: 0,
		Dx: 1, Dy: 1,
		ScanMode: 64,
	}
	proj, err := projection.Build(def)
	require.NoError(t, err)

	vals := []float64{1, 2, 3, 4, 5, 6}
	cell := sliceCell(vals, 3, 2, 64)

	opt := gridOpts(3, 2, Nearest)
	opt.Proj = proj
	opt.Kind = common.PointLatLon

	// lat 1, lon 1 is cell (2,2).
	got, err := Sample(opt, common.Point{X: 1, Y: 1}, cell)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got)
}
