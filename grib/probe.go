package grib

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	. "hstin/ndprobe/helper"

	"hstin/ndprobe/common"
	"hstin/ndprobe/projection"
	"hstin/ndprobe/sampler"
	"hstin/ndprobe/weather"
)

// Params fixes one GRIB probe invocation.
type Params struct {
	Kind      common.PointKind
	Points    []common.Point
	Elements  []common.ElementDescriptor
	Window    common.TimeWindow
	Interp    sampler.Interp
	WxMode    weather.Mode
	SimpleVer int
}

// Probe iterates the concatenated messages in r and samples every grid that
// passes the element fingerprint and time-window filters. name labels the
// stream in errors and logs.
func Probe(r io.Reader, name string, prm Params) ([]common.Match, error) {
	br := bufio.NewReader(r)

	var (
		matches   []common.Match
		projector projection.Projector
		proj      *projection.Projection
		lastDef   projection.GridDef
		haveDef   bool
		cells     []common.Point
	)

	for {
		head, err := br.Peek(16)
		if err == io.EOF && len(head) == 0 {
			return matches, nil // clean termination on a fresh message
		}
		if err != nil {
			return matches, fmt.Errorf("grib %s: truncated message header: %w", name, err)
		}
		if string(head[0:4]) != "GRIB" {
			return matches, fmt.Errorf("grib %s: unrecognized message magic %q", name, head[0:4])
		}

		if head[7] == 1 {
			// GRIB1: octets 5-7 carry the total length; skip the message.
			msgLen := int64(head[4])<<16 | int64(head[5])<<8 | int64(head[6])
			Log.Warn().Str("file", name).Msg("skipping GRIB1 message (edition not supported)")
			if _, err := br.Discard(int(msgLen)); err != nil {
				return matches, fmt.Errorf("grib %s: skipping GRIB1 message: %w", name, err)
			}
			continue
		}

		msgLen := binary.BigEndian.Uint64(head[8:16])
		if msgLen < 16 || msgLen > 1<<31 {
			return matches, fmt.Errorf("grib %s: implausible message length %d", name, msgLen)
		}
		raw := make([]byte, msgLen)
		if _, err := io.ReadFull(br, raw); err != nil {
			return matches, fmt.Errorf("grib %s: reading message: %w", name, err)
		}

		grids, err := DecodeMessage(raw)
		if err != nil {
			return matches, fmt.Errorf("grib %s: %w", name, err)
		}

		for i := range grids {
			grid := &grids[i]
			if !prm.Window.Contains(grid.ValidTime) {
				continue
			}
			if !anyDescriptorMatches(prm.Elements, grid.Meta) {
				continue
			}

			if !haveDef || grid.Def != lastDef {
				proj, err = projector.Get(grid.Def)
				if err != nil {
					return matches, fmt.Errorf("grib %s: %w", name, err)
				}
				cells = resolveCells(prm.Kind, prm.Points, proj, grid.Def)
				lastDef = grid.Def
				haveDef = true
			}

			matches = append(matches, sampleGrid(grid, proj, cells, prm))
		}
	}
}

func anyDescriptorMatches(descriptors []common.ElementDescriptor, meta common.ProductMeta) bool {
	for _, d := range descriptors {
		if d.Matches(meta) {
			return true
		}
	}
	return false
}

// sampleGrid resolves every point against one grid. The emitted descriptor is
// reconstructed from the grid's own identification, not copied from the
// filter that admitted it.
func sampleGrid(grid *Grid, proj *projection.Projection, cells []common.Point, prm Params) common.Match {
	desc := common.DescriptorFromMeta(grid.Meta)

	opt := sampler.Options{
		Proj:      proj,
		Kind:      common.PointGridCell,
		Nx:        grid.Def.Nx,
		Ny:        grid.Def.Ny,
		Attrib:    grid.Attrib,
		Interp:    prm.Interp,
		Weather:   desc.Elem == common.NDFD_WX,
		AllowWrap: true,
	}
	cell := func(x, y int) (float64, error) { return grid.At(x, y), nil }

	values := make([]common.Value, 0, len(cells))
	for _, c := range cells {
		raw, _ := sampler.Sample(opt, c, cell)
		values = append(values, gridValue(raw, desc.Elem, grid, prm))
	}

	return common.Match{
		Element:   desc,
		RefTime:   grid.RefTime,
		ValidTime: grid.ValidTime,
		Unit:      common.ElementUnit(desc.Elem),
		Values:    values,
	}
}

func gridValue(raw float64, elem common.NDFDElement, grid *Grid, prm Params) common.Value {
	if elem == common.NDFD_WX && len(grid.WxTable) > 0 {
		return weather.Translate(raw, grid.WxTable, prm.WxMode, prm.SimpleVer)
	}
	if raw == grid.Attrib.MissPri {
		return common.Missing(raw)
	}
	return common.Numeric(raw)
}

// resolveCells materializes the probe points in cell space for the grid.
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
