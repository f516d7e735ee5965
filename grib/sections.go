// Package grib iterates concatenated GRIB2 messages and probes their grids.
//
// Section parsing covers the templates NDFD publishes on: GDT 3.0 (lat/lon)
// and 3.30 (Lambert conformal), PDT 4.0/4.8/4.9, DRS 5.0 (simple packing),
// with optional bitmaps.
package grib

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"hstin/ndprobe/common"
	"hstin/ndprobe/projection"
)

// sanity caps on untrusted dimensions
const (
	maxGridDim = 30000
	maxBitWidth = 64
)

type section0 struct {
	Discipline  byte
	Edition     byte
	TotalLength uint64
}

func parseSection0(b []byte) (section0, error) {
	if len(b) < 16 {
		return section0{}, fmt.Errorf("section 0: need 16 bytes, got %d", len(b))
	}
	if string(b[0:4]) != "GRIB" {
		return section0{}, fmt.Errorf("section 0: missing GRIB magic: %q", b[0:4])
	}
	return section0{
		Discipline:  b[6],
		Edition:     b[7],
		TotalLength: binary.BigEndian.Uint64(b[8:16]),
	}, nil
}

// sectionAt returns the section starting at off: its number, bytes, and the
// offset of the next section. The "7777" trailer reports as section 8.
func sectionAt(buf []byte, off int) (byte, []byte, int, error) {
	if off+4 <= len(buf) && string(buf[off:off+4]) == "7777" {
		return 8, buf[off : off+4], off + 4, nil
	}
	if off+5 > len(buf) {
		return 0, nil, 0, fmt.Errorf("section header at %d: out of bounds (buf=%d)", off, len(buf))
	}
	sLen := binary.BigEndian.Uint32(buf[off : off+4])
	sNum := buf[off+4]
	end64 := uint64(off) + uint64(sLen)
	if sLen < 5 || end64 > uint64(len(buf)) {
		return 0, nil, 0, fmt.Errorf("section %d at %d: length %d overflows buffer %d",
			sNum, off, sLen, len(buf))
	}
	return sNum, buf[off:int(end64)], int(end64), nil
}

type ident struct {
	Center    int
	Subcenter int
	RefTime   time.Time
}

func parseSection1(sec []byte) (ident, error) {
	if len(sec) < 21 {
		return ident{}, fmt.Errorf("section 1: too short (%d bytes)", len(sec))
	}
	return ident{
		Center:    int(binary.BigEndian.Uint16(sec[5:7])),
		Subcenter: int(binary.BigEndian.Uint16(sec[7:9])),
		RefTime: time.Date(
			int(binary.BigEndian.Uint16(sec[12:14])),
			time.Month(sec[14]), int(sec[15]),
			int(sec[16]), int(sec[17]), int(sec[18]), 0, time.UTC),
	}, nil
}

// parseSection3 decodes GDT 3.0 and 3.30 into a grid definition. Template
// data begins at sec[14].
func parseSection3(sec []byte) (projection.GridDef, error) {
	if len(sec) < 14+2 {
		return projection.GridDef{}, fmt.Errorf("section 3: too short (%d bytes)", len(sec))
	}
	gdt := int(binary.BigEndian.Uint16(sec[12:14]))
	g := sec[14:]

	u32 := func(off int) (uint32, error) {
		if off+4 > len(g) {
			return 0, fmt.Errorf("section 3: template truncated at %d", off)
		}
		return binary.BigEndian.Uint32(g[off : off+4]), nil
	}
	u8 := func(off int) (byte, error) {
		if off >= len(g) {
			return 0, fmt.Errorf("section 3: template truncated at %d", off)
		}
		return g[off], nil
	}

	var def projection.GridDef
	var err error
	read32 := func(off int) uint32 {
		var v uint32
		if err == nil {
			v, err = u32(off)
		}
		return v
	}
	read8 := func(off int) byte {
		var v byte
		if err == nil {
			v, err = u8(off)
		}
		return v
	}

	radius, rerr := earthRadius(g)
	if rerr != nil {
		return projection.GridDef{}, rerr
	}

	switch gdt {
	case 0:
		def.Kind = projection.ProjLatLon
		def.Nx = int(read32(16))
		def.Ny = int(read32(20))
		def.Lat1 = signMag32(read32(32)) / 1e6
		def.Lon1 = float64(read32(36)) / 1e6
		def.Dx = float64(read32(49)) / 1e6
		def.Dy = float64(read32(53)) / 1e6
		def.ScanMode = read8(57)
	case 30:
		def.Kind = projection.ProjLambert
		def.Nx = int(read32(16))
		def.Ny = int(read32(20))
		def.Lat1 = signMag32(read32(24)) / 1e6
		def.Lon1 = float64(read32(28)) / 1e6
		def.OrientLon = float64(read32(37)) / 1e6
		def.Dx = float64(read32(41)) / 1e3 // mm to metres
		def.Dy = float64(read32(45)) / 1e3
		def.ScanMode = read8(50)
		def.ScaleLat1 = signMag32(read32(51)) / 1e6
		def.ScaleLat2 = signMag32(read32(55)) / 1e6
	default:
		return projection.GridDef{}, fmt.Errorf("section 3: unsupported grid template %d", gdt)
	}
	if err != nil {
		return projection.GridDef{}, err
	}

	def.RadiusM = radius
	if def.Nx <= 0 || def.Nx > maxGridDim || def.Ny <= 0 || def.Ny > maxGridDim {
		return projection.GridDef{}, fmt.Errorf("section 3: invalid grid dimensions %dx%d", def.Nx, def.Ny)
	}
	return def, nil
}

// earthRadius resolves the shape-of-earth octets at the start of the
// template data.
func earthRadius(g []byte) (float64, error) {
	if len(g) < 16 {
		return 0, fmt.Errorf("section 3: shape of earth truncated")
	}
	switch g[0] {
	case 0:
		return 6367470.0, nil
	case 1:
		scale := int(g[1])
		value := binary.BigEndian.Uint32(g[2:6])
		if value == 0 {
			return 0, fmt.Errorf("section 3: zero earth radius")
		}
		return float64(value) / math.Pow(10, float64(scale)), nil
	case 6:
		return 6371229.0, nil
	default:
		// oblate shapes are treated spherically at NDFD scales
		return 6371229.0, nil
	}
}

// product is the decoded Section 4: the meta fingerprint fields plus timing.
type product struct {
	Meta      common.ProductMeta
	ValidTime time.Time
}

func parseSection4(sec []byte, refTime time.Time, discipline byte) (product, error) {
	if len(sec) < 9+25 {
		return product{}, fmt.Errorf("section 4: too short (%d bytes)", len(sec))
	}
	pdt := int(binary.BigEndian.Uint16(sec[7:9]))
	t := sec[9:]

	var p product
	p.Meta.Version = 2
	p.Meta.ProdType = int(discipline)
	p.Meta.Template = pdt
	p.Meta.Category = int(t[0])
	p.Meta.Subcategory = int(t[1])
	p.Meta.GenID = int(t[4])
	p.Meta.LenTime = common.AnyValue

	if t[13] == 255 {
		p.Meta.SurfType = common.AnyValue
	} else {
		p.Meta.SurfType = int(t[13])
		p.Meta.Value = scaledValue(t[14], binary.BigEndian.Uint32(t[15:19]))
	}
	if t[19] != 255 {
		p.Meta.SndValue = scaledValue(t[20], binary.BigEndian.Uint32(t[21:25]))
	}

	unit := t[8]
	fcst := binary.BigEndian.Uint32(t[9:13])

	switch pdt {
	case 0:
		step, err := timeDuration(unit, fcst)
		if err != nil {
			return product{}, err
		}
		p.ValidTime = refTime.Add(step)
	case 8, 9:
		intervalAt := 25
		if pdt == 9 {
			intervalAt = 38
		}
		if len(t) < intervalAt+12 {
			return product{}, fmt.Errorf("section 4: template %d truncated", pdt)
		}
		iv := t[intervalAt:]
		p.ValidTime = time.Date(
			int(binary.BigEndian.Uint16(iv[0:2])),
			time.Month(iv[2]), int(iv[3]),
			int(iv[4]), int(iv[5]), int(iv[6]), 0, time.UTC)

		numRanges := int(iv[7])
		if numRanges == 1 {
			if len(iv) < 12+12 {
				return product{}, fmt.Errorf("section 4: time range truncated")
			}
			rng := iv[12:]
			length, err := timeDuration(rng[2], binary.BigEndian.Uint32(rng[3:7]))
			if err != nil {
				return product{}, err
			}
			p.Meta.LenTime = int(length / time.Hour)
		}
	default:
		return product{}, fmt.Errorf("section 4: unsupported product template %d", pdt)
	}
	return p, nil
}

func scaledValue(scale byte, value uint32) float64 {
	return float64(int32(value)) / math.Pow(10, float64(int8(scale)))
}

func timeDuration(unit byte, n uint32) (time.Duration, error) {
	switch unit {
	case 0:
		return time.Duration(n) * time.Minute, nil
	case 1:
		return time.Duration(n) * time.Hour, nil
	case 2:
		return time.Duration(n) * 24 * time.Hour, nil
	case 10:
		return time.Duration(n) * 3 * time.Hour, nil
	case 11:
		return time.Duration(n) * 6 * time.Hour, nil
	case 12:
		return time.Duration(n) * 12 * time.Hour, nil
	case 13:
		return time.Duration(n) * time.Second, nil
	default:
		return 0, fmt.Errorf("section 4: unsupported time unit %d", unit)
	}
}

// drs0 holds DRS Template 5.0 (simple packing) parameters.
type drs0 struct {
	ReferenceValue     float64
	BinaryScaleFactor  int
	DecimalScaleFactor int
	Nbits              int
	N                  int
}

func parseDRS0(sec []byte) (drs0, error) {
	if len(sec) < 11+10 {
		return drs0{}, fmt.Errorf("section 5: too short (%d bytes)", len(sec))
	}
	tmpl := int(binary.BigEndian.Uint16(sec[9:11]))
	if tmpl != 0 {
		return drs0{}, fmt.Errorf("section 5: unsupported data template %d", tmpl)
	}
	n := binary.BigEndian.Uint32(sec[5:9])
	if n > uint32(maxGridDim)*uint32(maxGridDim) {
		return drs0{}, fmt.Errorf("section 5: N=%d implausibly large", n)
	}

	t := sec[11:]
	p := drs0{
		ReferenceValue:     float64(math.Float32frombits(binary.BigEndian.Uint32(t[0:4]))),
		BinaryScaleFactor:  decodeScaleFactor(binary.BigEndian.Uint16(t[4:6])),
		DecimalScaleFactor: decodeScaleFactor(binary.BigEndian.Uint16(t[6:8])),
		Nbits:              int(t[8]),
		N:                  int(n),
	}
	if p.Nbits > maxBitWidth {
		return drs0{}, fmt.Errorf("section 5: Nbits=%d exceeds %d", p.Nbits, maxBitWidth)
	}
	return p, nil
}

// unpackDRS0 decodes a simple-packing Section 7: N consecutive Nbits-wide
// unsigned integers, Y = (R + X*2^E) / 10^D.
func unpackDRS0(sec7 []byte, p drs0) ([]float64, error) {
	if len(sec7) < 5 {
		return nil, fmt.Errorf("section 7: too short")
	}
	data := sec7[5:]

	scaleE := math.Ldexp(1.0, p.BinaryScaleFactor)
	scaleD := math.Pow(10, float64(p.DecimalScaleFactor))

	result := make([]float64, p.N)
	if p.Nbits == 0 {
		v := p.ReferenceValue / scaleD
		for i := range result {
			result[i] = v
		}
		return result, nil
	}

	br := newBitReader(data)
	for i := 0; i < p.N; i++ {
		x, err := br.read(p.Nbits)
		if err != nil {
			return nil, fmt.Errorf("section 7: value %d: %w", i, err)
		}
		result[i] = (p.ReferenceValue + scaleE*float64(x)) / scaleD
	}
	return result, nil
}

// decodeScaleFactor decodes a GRIB2 sign-magnitude 2-byte scale factor.
func decodeScaleFactor(raw uint16) int {
	magnitude := int(raw & 0x7FFF)
	if raw&0x8000 != 0 {
		return -magnitude
	}
	return magnitude
}

// signMag32 decodes a GRIB2 sign-magnitude 4-byte signed value.
func signMag32(raw uint32) float64 {
	magnitude := float64(raw & 0x7FFFFFFF)
	if raw&0x80000000 != 0 {
		return -magnitude
	}
	return magnitude
}

// bitReader reads unsigned integers of arbitrary bit width, MSB first.
type bitReader struct {
	buf []byte
	pos int
}

func newBitReader(b []byte) *bitReader { return &bitReader{buf: b} }

func (r *bitReader) read(n int) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	end := r.pos + n
	if end > len(r.buf)*8 {
		return 0, fmt.Errorf("bit read of %d at %d overflows %d bytes", n, r.pos, len(r.buf))
	}
	if r.pos%8 == 0 {
		off := r.pos / 8
		switch n {
		case 8:
			r.pos = end
			return uint64(r.buf[off]), nil
		case 16:
			r.pos = end
			return uint64(binary.BigEndian.Uint16(r.buf[off:])), nil
		case 32:
			r.pos = end
			return uint64(binary.BigEndian.Uint32(r.buf[off:])), nil
		}
	}
	var v uint64
	for i := 0; i < n; i++ {
		byteIdx := (r.pos + i) / 8
		bitIdx := 7 - ((r.pos + i) % 8)
		v = (v << 1) | uint64((r.buf[byteIdx]>>bitIdx)&1)
	}
	r.pos = end
	return v, nil
}
