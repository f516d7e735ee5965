package cube

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	. "hstin/ndprobe/helper"

	"hstin/ndprobe/common"
	"hstin/ndprobe/projection"
	"hstin/ndprobe/sampler"
	"hstin/ndprobe/weather"
)

// Params fixes one cube probe invocation.
type Params struct {
	Kind      common.PointKind
	Points    []common.Point
	Elements  []common.ElementDescriptor
	Window    common.TimeWindow
	Interp    sampler.Interp
	WxMode    weather.Mode
	SimpleVer int
}

// Probe walks the FLX index at flxPath and resolves every matching
// (element, refTime, validTime, point) tuple. Data files are opened relative
// to the FLX file's directory, one at a time.
func Probe(flxPath string, prm Params) ([]common.Match, error) {
	idx, err := ReadIndex(flxPath)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(flxPath)

	var (
		matches   []common.Match
		projector projection.Projector
		proj      *projection.Projection
		def       projection.GridDef
		cells     []common.Point
		curGDS    int
		data      *os.File
		dataName  string
	)
	defer func() {
		if data != nil {
			data.Close()
		}
	}()

	for _, group := range idx.Groups {
		if group.Center != common.NDFDCenter {
			Log.Debug().Str("element", group.ElementName).Int("center", group.Center).
				Msg("skipping non-NDFD center")
			continue
		}
		elem := common.LookupElement(group.ElementName, common.ShortName, true)
		if elem == common.NDFD_UNDEF || !wanted(elem, prm.Elements) {
			continue
		}

		for _, pds := range group.PDS {
			if !prm.Window.Contains(pds.ValidTime) {
				continue
			}

			if group.GDSNum != curGDS {
				if group.GDSNum < 1 || group.GDSNum > len(idx.GDS) {
					return matches, fmt.Errorf("cube %s: gds number %d out of range", flxPath, group.GDSNum)
				}
				def = idx.GDS[group.GDSNum-1]
				proj, err = projector.Get(def)
				if err != nil {
					return matches, fmt.Errorf("cube %s: %w", flxPath, err)
				}
				cells = resolveCells(prm.Kind, prm.Points, proj, def)
				curGDS = group.GDSNum
			}

			if pds.DataFile != dataName {
				if data != nil {
					data.Close()
					data = nil
				}
				data, err = os.Open(filepath.Join(dir, pds.DataFile))
				if err != nil {
					return matches, fmt.Errorf("cube %s: %w", flxPath, err)
				}
				dataName = pds.DataFile
			}

			opt := sampler.Options{
				Proj:    proj,
				Kind:    common.PointGridCell,
				Nx:      def.Nx,
				Ny:      def.Ny,
				Attrib:  sampler.GridAttrib{MissMode: 1, MissPri: MissingValue},
				Interp:  prm.Interp,
				Weather: elem == common.NDFD_WX,
			}
			cell := fileCell(data, pds, def.Nx, def.Ny)

			values := make([]common.Value, 0, len(cells))
			for _, c := range cells {
				raw, err := sampler.Sample(opt, c, cell)
				if err != nil {
					return matches, fmt.Errorf("cube %s: read %s: %w", flxPath, pds.DataFile, err)
				}
				values = append(values, cubeValue(raw, elem, pds, prm))
			}

			matches = append(matches, common.Match{
				Element:   common.Catalog[elem],
				RefTime:   group.RefTime,
				ValidTime: pds.ValidTime,
				Unit:      group.Unit,
				Values:    values,
			})
		}
	}
	return matches, nil
}

// resolveCells materializes the probe points in grid-cell space for the
// current grid: lat/lon points are projected once per grid change, grid-cell
// points pass through, and AllCells expands to every cell row-major.
func resolveCells(kind common.PointKind, points []common.Point, proj *projection.Projection, def projection.GridDef) []common.Point {
	switch kind {
	case common.PointLatLon:
		cells := make([]common.Point, len(points))
		for i, p := range points {
			cx, cy := proj.CellOf(p.Y, p.X)
			cells[i] = common.Point{X: cx, Y: cy}
		}
		return cells
	case common.PointAllCells:
		cells := make([]common.Point, 0, def.Nx*def.Ny)
		for y := 1; y <= def.Ny; y++ {
			for x := 1; x <= def.Nx; x++ {
				cells = append(cells, common.Point{X: float64(x), Y: float64(y)})
			}
		}
		return cells
	default:
		return points
	}
}

// fileCell reads 32-bit floats straight out of the data file, addressing by
// the PDS scan mode and decoding per its endianness.
func fileCell(f *os.File, pds PDS, nx, ny int) sampler.CellFunc {
	return func(x, y int) (float64, error) {
		var buf [4]byte
		off := int64(pds.DataOffset) + 4*int64(sampler.Index(x, y, nx, ny, pds.ScanMode))
		if _, err := f.ReadAt(buf[:], off); err != nil {
			return 0, err
		}
		var bits uint32
		if pds.BigEndian {
			bits = binary.BigEndian.Uint32(buf[:])
		} else {
			bits = binary.LittleEndian.Uint32(buf[:])
		}
		return float64(math.Float32frombits(bits)), nil
	}
}

func cubeValue(raw float64, elem common.NDFDElement, pds PDS, prm Params) common.Value {
	if elem == common.NDFD_WX {
		return weather.Translate(raw, pds.WxTable, prm.WxMode, prm.SimpleVer)
	}
	if raw == MissingValue {
		return common.Missing(raw)
	}
	return common.Numeric(raw)
}

func wanted(elem common.NDFDElement, descriptors []common.ElementDescriptor) bool {
	for _, d := range descriptors {
		if d.Elem == elem || d.Elem == common.NDFD_MATCHALL {
			return true
		}
	}
	return false
}
