// Package cube probes collections of raw float grids through their FLX index.
//
// An FLX file is a columnar index over headerless 32-bit float data files:
// a fixed header, a table of grid-definition records, then per-element
// SuperPDS groups each holding the product records (PDS) that point into the
// data files.
package cube

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"time"

	"hstin/ndprobe/projection"
)

const (
	// HeadLen is the fixed FLX header: 4-byte magic, u16 format version,
	// reserved to 16 bytes.
	HeadLen = 16

	// GDSLen is the size of one grid-definition record: u16 projection
	// template, u32 Nx, u32 Ny, eight f64 parameters, u8 scan mode.
	GDSLen = 75

	// Magic identifies an FLX index.
	Magic = "FLX2"

	// MissingValue is the universal cube missing constant. Data files carry
	// no per-grid missing policy; 9999 is missing everywhere.
	MissingValue = 9999.0
)

// Projection template numbers stored in GDS records (GRIB2 GDT numbering).
const (
	gdsLatLon  = 0
	gdsLambert = 30
)

// PDS is one product record: a single grid blob in a data file.
type PDS struct {
	ValidTime  time.Time
	DataFile   string
	DataOffset int32
	BigEndian  bool
	ScanMode   byte
	WxTable    []string
}

// SuperPDS groups the product records of one element at one reference time.
type SuperPDS struct {
	ElementName string
	RefTime     time.Time
	Unit        string
	Comment     string
	GDSNum      int // 1-based into the GDS table
	Center      int
	Subcenter   int
	PDS         []PDS
}

// Index is a fully parsed FLX file.
type Index struct {
	GDS    []projection.GridDef
	Groups []SuperPDS
}

// ParseIndex decodes an FLX index loaded in memory.
func ParseIndex(data []byte) (*Index, error) {
	c := &cursor{b: data}

	magic := c.bytes(4)
	if c.err == nil && string(magic) != Magic {
		return nil, fmt.Errorf("flx: bad magic %q", magic)
	}
	c.skip(HeadLen - 4)

	numGDS := int(c.u16())
	idx := &Index{GDS: make([]projection.GridDef, 0, numGDS)}
	for i := 0; i < numGDS; i++ {
		gds, err := parseGDS(c.bytes(GDSLen))
		if err != nil && c.err == nil {
			return nil, fmt.Errorf("flx: gds %d: %w", i+1, err)
		}
		idx.GDS = append(idx.GDS, gds)
	}

	numSup := int(c.u16())
	for i := 0; i < numSup; i++ {
		sup, err := parseSuperPDS(c)
		if err != nil {
			return nil, fmt.Errorf("flx: superpds %d: %w", i+1, err)
		}
		idx.Groups = append(idx.Groups, sup)
	}

	if c.err != nil {
		return nil, fmt.Errorf("flx: %w", c.err)
	}
	return idx, nil
}

// ReadIndex loads and decodes an FLX file.
func ReadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("flx: %w", err)
	}
	return ParseIndex(data)
}

func parseGDS(b []byte) (projection.GridDef, error) {
	if len(b) < GDSLen {
		return projection.GridDef{}, fmt.Errorf("record truncated")
	}
	c := &cursor{b: b}

	var def projection.GridDef
	switch tmpl := c.u16(); tmpl {
	case gdsLatLon:
		def.Kind = projection.ProjLatLon
	case gdsLambert:
		def.Kind = projection.ProjLambert
	default:
		return projection.GridDef{}, fmt.Errorf("unknown projection template %d", tmpl)
	}
	def.Nx = int(c.u32())
	def.Ny = int(c.u32())
	def.Lat1 = c.f64()
	def.Lon1 = c.f64()
	def.Dx = c.f64()
	def.Dy = c.f64()
	def.OrientLon = c.f64()
	def.ScaleLat1 = c.f64()
	def.ScaleLat2 = c.f64()
	def.RadiusM = c.f64()
	def.ScanMode = c.u8()
	if c.err != nil {
		return projection.GridDef{}, c.err
	}
	return def, nil
}

func parseSuperPDS(outer *cursor) (SuperPDS, error) {
	recLen := int(outer.u32())
	if outer.err != nil {
		return SuperPDS{}, outer.err
	}
	if recLen < 4 {
		return SuperPDS{}, fmt.Errorf("record length %d too small", recLen)
	}
	c := &cursor{b: outer.bytes(recLen - 4)}
	if outer.err != nil {
		return SuperPDS{}, outer.err
	}

	c.skip(2) // reserved

	var sup SuperPDS
	sup.ElementName = c.str8()
	sup.RefTime = timeFrom(c.f64())
	sup.Unit = c.str8()
	sup.Comment = c.str8()
	sup.GDSNum = int(c.u16())
	sup.Center = int(c.u16())
	sup.Subcenter = int(c.u16())

	numPDS := int(c.u16())
	for i := 0; i < numPDS; i++ {
		pds, err := parsePDS(c)
		if err != nil {
			return SuperPDS{}, fmt.Errorf("pds %d: %w", i+1, err)
		}
		sup.PDS = append(sup.PDS, pds)
	}
	if c.err != nil {
		return SuperPDS{}, c.err
	}
	return sup, nil
}

func parsePDS(outer *cursor) (PDS, error) {
	recLen := int(outer.u16())
	if outer.err != nil {
		return PDS{}, outer.err
	}
	if recLen < 2 {
		return PDS{}, fmt.Errorf("record length %d too small", recLen)
	}
	c := &cursor{b: outer.bytes(recLen - 2)}
	if outer.err != nil {
		return PDS{}, outer.err
	}

	var pds PDS
	pds.ValidTime = timeFrom(c.f64())
	pds.DataFile = c.str8()
	pds.DataOffset = c.i32()
	pds.BigEndian = c.u8() == 1
	pds.ScanMode = c.u8()

	numTable := int(c.u16())
	if numTable > 0 {
		pds.WxTable = make([]string, 0, numTable)
		for i := 0; i < numTable; i++ {
			pds.WxTable = append(pds.WxTable, c.str16())
		}
	}
	if c.err != nil {
		return PDS{}, c.err
	}
	return pds, nil
}

func timeFrom(sec float64) time.Time {
	s, frac := math.Modf(sec)
	return time.Unix(int64(s), int64(frac*1e9)).UTC()
}

// cursor walks a little-endian byte slice with a sticky error, so record
// parsers can read a run of fields and check once.
type cursor struct {
	b   []byte
	off int
	err error
}

func (c *cursor) fail() {
	if c.err == nil {
		c.err = fmt.Errorf("truncated at offset %d", c.off)
	}
}

func (c *cursor) bytes(n int) []byte {
	if c.err != nil || c.off+n > len(c.b) {
		c.fail()
		return make([]byte, n)
	}
	out := c.b[c.off : c.off+n]
	c.off += n
	return out
}

func (c *cursor) skip(n int) { _ = c.bytes(n) }

func (c *cursor) u8() byte { return c.bytes(1)[0] }

func (c *cursor) u16() uint16 { return binary.LittleEndian.Uint16(c.bytes(2)) }

func (c *cursor) u32() uint32 { return binary.LittleEndian.Uint32(c.bytes(4)) }

func (c *cursor) i32() int32 { return int32(c.u32()) }

func (c *cursor) f64() float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(c.bytes(8)))
}

// str8 reads an 8-bit length-prefixed string.
func (c *cursor) str8() string { return string(c.bytes(int(c.u8()))) }

// str16 reads a 16-bit length-prefixed string (weather table entries).
func (c *cursor) str16() string { return string(c.bytes(int(c.u16()))) }
