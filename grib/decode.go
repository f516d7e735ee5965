package grib

import (
	"fmt"
	"strings"
	"time"

	"hstin/ndprobe/common"
	"hstin/ndprobe/projection"
	"hstin/ndprobe/sampler"
)

// MissingValue is the sentinel substituted for bitmap-masked cells, matching
// the cube path's universal missing constant.
const MissingValue = 9999.0

// Grid is one decoded field: grid definition, identification, and the dense
// values in stored order; At addresses them by geographic cell through the
// grid's scan mode.
type Grid struct {
	Def       projection.GridDef
	Meta      common.ProductMeta
	RefTime   time.Time
	ValidTime time.Time
	Vals      []float64
	Attrib    sampler.GridAttrib
	WxTable   []string
}

// At returns the stored value at 1-based cell (x, y).
func (g *Grid) At(x, y int) float64 {
	return g.Vals[sampler.Index(x, y, g.Def.Nx, g.Def.Ny, g.Def.ScanMode)]
}

// DecodeMessage decodes one raw GRIB2 message into its fields. Messages may
// repeat sections 2-7, yielding several sub-grids; section state carries over
// between sub-grids the way the format prescribes.
func DecodeMessage(raw []byte) ([]Grid, error) {
	s0, err := parseSection0(raw)
	if err != nil {
		return nil, err
	}
	if s0.Edition != 2 {
		return nil, fmt.Errorf("unsupported GRIB edition %d", s0.Edition)
	}

	var (
		grids   []Grid
		id      ident
		hasID   bool
		def     projection.GridDef
		hasDef  bool
		prod    product
		hasProd bool
		drs     drs0
		hasDRS  bool
		bitmap  []byte
		wxTable []string
	)

	off := 16
	for off < len(raw) {
		sNum, sec, next, err := sectionAt(raw, off)
		if err != nil {
			return nil, err
		}
		switch sNum {
		case 1:
			id, err = parseSection1(sec)
			if err != nil {
				return nil, err
			}
			hasID = true
		case 2:
			wxTable = parseLocalTable(sec)
		case 3:
			def, err = parseSection3(sec)
			if err != nil {
				return nil, err
			}
			hasDef = true
		case 4:
			if !hasID {
				return nil, fmt.Errorf("section 4 before section 1")
			}
			prod, err = parseSection4(sec, id.RefTime, s0.Discipline)
			if err != nil {
				return nil, err
			}
			hasProd = true
		case 5:
			drs, err = parseDRS0(sec)
			if err != nil {
				return nil, err
			}
			hasDRS = true
		case 6:
			bitmap, err = parseSection6(sec, bitmap)
			if err != nil {
				return nil, err
			}
		case 7:
			if !hasDef || !hasProd || !hasDRS {
				return nil, fmt.Errorf("section 7 before sections 3/4/5")
			}
			grid, err := assembleGrid(sec, id, def, prod, drs, bitmap, wxTable)
			if err != nil {
				return nil, err
			}
			grids = append(grids, grid)
		case 8:
			off = next
			continue
		}
		off = next
	}

	if len(grids) == 0 {
		return nil, fmt.Errorf("message carried no data section")
	}
	return grids, nil
}

func assembleGrid(sec7 []byte, id ident, def projection.GridDef, prod product, drs drs0, bitmap []byte, wxTable []string) (Grid, error) {
	vals, err := unpackDRS0(sec7, drs)
	if err != nil {
		return Grid{}, err
	}

	attrib := sampler.GridAttrib{MissPri: MissingValue}
	if bitmap != nil {
		vals, err = applyBitmap(vals, bitmap, def.Nx*def.Ny)
		if err != nil {
			return Grid{}, err
		}
		attrib.MissMode = 1
	}

	if len(vals) != def.Nx*def.Ny {
		return Grid{}, fmt.Errorf("decoded %d values, expected %d (%dx%d)",
			len(vals), def.Nx*def.Ny, def.Nx, def.Ny)
	}

	meta := prod.Meta
	meta.Center = id.Center
	meta.Subcenter = id.Subcenter

	return Grid{
		Def:       def,
		Meta:      meta,
		RefTime:   id.RefTime,
		ValidTime: prod.ValidTime,
		Vals:      vals,
		Attrib:    attrib,
		WxTable:   wxTable,
	}, nil
}

// parseSection6 returns the active bitmap: nil for flag 255 (none), the
// previous one for flag 254, or the packed bits from this section.
func parseSection6(sec []byte, prev []byte) ([]byte, error) {
	if len(sec) < 6 {
		return nil, fmt.Errorf("section 6: too short")
	}
	switch sec[5] {
	case 255:
		return nil, nil
	case 254:
		if prev == nil {
			return nil, fmt.Errorf("section 6: flag 254 with no prior bitmap")
		}
		return prev, nil
	case 0:
		return sec[6:], nil
	default:
		return nil, fmt.Errorf("section 6: unsupported bitmap flag %d", sec[5])
	}
}

// applyBitmap expands packed values onto the full grid, substituting the
// missing sentinel where the bitmap is clear.
func applyBitmap(packed []float64, bitmap []byte, n int) ([]float64, error) {
	if len(bitmap)*8 < n {
		return nil, fmt.Errorf("bitmap of %d bytes cannot cover %d points", len(bitmap), n)
	}
	out := make([]float64, n)
	next := 0
	for i := 0; i < n; i++ {
		if bitmap[i/8]&(1<<(7-i%8)) != 0 {
			if next >= len(packed) {
				return nil, fmt.Errorf("bitmap selects more points than packed values (%d)", len(packed))
			}
			out[i] = packed[next]
			next++
		} else {
			out[i] = MissingValue
		}
	}
	return out, nil
}

// parseLocalTable reads a weather string table from the Local Use section.
// NDFD publishes Wx tables as newline-separated entries; anything else in
// the section is ignored.
func parseLocalTable(sec []byte) []string {
	if len(sec) <= 5 {
		return nil
	}
	body := strings.TrimRight(string(sec[5:]), "\x00\n")
	if body == "" {
		return nil
	}
	return strings.Split(body, "\n")
}
