package grib

import (
	"bytes"
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hstin/ndprobe/common"
	"hstin/ndprobe/projection"
)

// msgSpec drives the synthetic GRIB2 message builder. Values are packed with
// DRS 5.0 at 8 bits, reference 0, no scaling, so each byte decodes to itself.
type msgSpec struct {
	discipline byte
	center     uint16
	subcenter  uint16
	refTime    time.Time

	nx, ny     int
	lat1, lon1 float64
	dx, dy     float64
	scan       byte

	pdt         int
	category    byte
	subcategory byte
	genID       byte
	surfType    byte
	surfValue   uint32
	fcstHours   uint32

	// template 8 interval
	validTime    time.Time
	lenTimeHours uint32

	vals    []byte
	bitmap  []byte
	wxTable string
}

func newSection(num byte, size int) []byte {
	s := make([]byte, size)
	binary.BigEndian.PutUint32(s, uint32(size))
	s[4] = num
	return s
}

func putTime(b []byte, ts time.Time) {
	binary.BigEndian.PutUint16(b, uint16(ts.Year()))
	b[2] = byte(ts.Month())
	b[3] = byte(ts.Day())
	b[4] = byte(ts.Hour())
	b[5] = byte(ts.Minute())
	b[6] = byte(ts.Second())
}

func buildSection3(m msgSpec) []byte {
	s := newSection(3, 14+58)
	g := s[14:]
	g[0] = 6 // spherical earth, radius 6371229
	binary.BigEndian.PutUint32(g[16:], uint32(m.nx))
	binary.BigEndian.PutUint32(g[20:], uint32(m.ny))
	binary.BigEndian.PutUint32(g[32:], uint32(m.lat1*1e6))
	binary.BigEndian.PutUint32(g[36:], uint32(m.lon1*1e6))
	binary.BigEndian.PutUint32(g[49:], uint32(m.dx*1e6))
	binary.BigEndian.PutUint32(g[53:], uint32(m.dy*1e6))
	g[57] = m.scan
	return s
}

func buildSection4(m msgSpec) []byte {
	size := 34
	if m.pdt == 8 {
		size = 58
	}
	s := newSection(4, size)
	binary.BigEndian.PutUint16(s[7:9], uint16(m.pdt))
	t := s[9:]
	t[0] = m.category
	t[1] = m.subcategory
	t[4] = m.genID
	t[8] = 1 // hours
	binary.BigEndian.PutUint32(t[9:13], m.fcstHours)
	t[13] = m.surfType
	binary.BigEndian.PutUint32(t[15:19], m.surfValue)
	t[19] = 255

	if m.pdt == 8 {
		iv := t[25:]
		putTime(iv, m.validTime)
		iv[7] = 1 // one time range
		rng := iv[12:]
		rng[2] = 1 // hours
		binary.BigEndian.PutUint32(rng[3:7], m.lenTimeHours)
	}
	return s
}

func buildMessage(m msgSpec) []byte {
	var body bytes.Buffer

	s1 := newSection(1, 21)
	binary.BigEndian.PutUint16(s1[5:7], m.center)
	binary.BigEndian.PutUint16(s1[7:9], m.subcenter)
	putTime(s1[12:], m.refTime)
	body.Write(s1)

	if m.wxTable != "" {
		s2 := newSection(2, 5+len(m.wxTable))
		copy(s2[5:], m.wxTable)
		body.Write(s2)
	}

	body.Write(buildSection3(m))
	body.Write(buildSection4(m))

	s5 := newSection(5, 21)
	binary.BigEndian.PutUint32(s5[5:9], uint32(len(m.vals)))
	s5[11+8] = 8 // bits per value
	body.Write(s5)

	if m.bitmap != nil {
		s6 := newSection(6, 6+len(m.bitmap))
		copy(s6[6:], m.bitmap)
		body.Write(s6)
	} else {
		s6 := newSection(6, 6)
		s6[5] = 255
		body.Write(s6)
	}

	s7 := newSection(7, 5+len(m.vals))
	copy(s7[5:], m.vals)
	body.Write(s7)

	body.WriteString("7777")

	msg := make([]byte, 16+body.Len())
	copy(msg, "GRIB")
	msg[6] = m.discipline
	msg[7] = 2
	binary.BigEndian.PutUint64(msg[8:16], uint64(len(msg)))
	copy(msg[16:], body.Bytes())
	return msg
}

// tempSpec builds a surface-temperature field on a 3x2 degree grid.
func tempSpec(ref time.Time) msgSpec {
	return msgSpec{
		center:  uint16(common.NDFDCenter),
		refTime: ref,
		nx:      3, ny: 2,
		lat1: 0, lon1: 0, dx: 1, dy: 1,
		scan:      64,
		surfType:  103,
		surfValue: 2,
		fcstHours: 6,
		vals:      []byte{1, 2, 3, 4, 5, 6},
	}
}

func TestDecodeMessageLatLon(t *testing.T) {
	ref := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	grids, err := DecodeMessage(buildMessage(tempSpec(ref)))
	require.NoError(t, err)
	require.Len(t, grids, 1)

	g := grids[0]
	assert.Equal(t, projection.ProjLatLon, g.Def.Kind)
	assert.Equal(t, 3, g.Def.Nx)
	assert.Equal(t, 2, g.Def.Ny)
	assert.Equal(t, 1.0, g.Def.Dx)
	assert.Equal(t, 6371229.0, g.Def.RadiusM)

	assert.Equal(t, common.NDFDCenter, g.Meta.Center)
	assert.Equal(t, 2, g.Meta.Version)
	assert.Equal(t, 0, g.Meta.Template)
	assert.Equal(t, 0, g.Meta.Category)
	assert.Equal(t, 0, g.Meta.Subcategory)
	assert.Equal(t, common.AnyValue, g.Meta.LenTime)
	assert.Equal(t, 103, g.Meta.SurfType)
	assert.Equal(t, 2.0, g.Meta.Value)

	assert.Equal(t, ref, g.RefTime)
	assert.Equal(t, ref.Add(6*time.Hour), g.ValidTime)

	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, g.Vals)
	assert.Equal(t, 5.0, g.At(2, 2))
}

func TestDecodeMessageScanZeroAddressing(t *testing.T) {
	ref := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	spec := tempSpec(ref)
	spec.scan = 0
	spec.lat1 = 1                        // first stored point is the north-west corner
	spec.vals = []byte{4, 5, 6, 1, 2, 3} // top row first

	grids, err := DecodeMessage(buildMessage(spec))
	require.NoError(t, err)
	require.Len(t, grids, 1)

	g := grids[0]
	assert.Equal(t, byte(0), g.Def.ScanMode)
	assert.Equal(t, []float64{4, 5, 6, 1, 2, 3}, g.Vals)
	assert.Equal(t, 2.0, g.At(2, 1), "cell row 1 is the south row")
	assert.Equal(t, 5.0, g.At(2, 2))
}

func TestDecodeMessageBitmap(t *testing.T) {
	ref := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	spec := tempSpec(ref)
	spec.vals = []byte{1, 3, 4, 5, 6} // point 2 withheld
	spec.bitmap = []byte{0b10111100}  // 6 points, second bit clear

	grids, err := DecodeMessage(buildMessage(spec))
	require.NoError(t, err)
	require.Len(t, grids, 1)

	g := grids[0]
	assert.Equal(t, 1, g.Attrib.MissMode)
	assert.Equal(t, MissingValue, g.Attrib.MissPri)
	assert.Equal(t, []float64{1, MissingValue, 3, 4, 5, 6}, g.Vals)
}

func TestDecodeMessageIntervalTemplate(t *testing.T) {
	ref := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	spec := tempSpec(ref)
	spec.pdt = 8
	spec.category = 0
	spec.subcategory = 4
	spec.validTime = ref.Add(18 * time.Hour)
	spec.lenTimeHours = 12

	grids, err := DecodeMessage(buildMessage(spec))
	require.NoError(t, err)
	require.Len(t, grids, 1)

	g := grids[0]
	assert.Equal(t, 8, g.Meta.Template)
	assert.Equal(t, 12, g.Meta.LenTime)
	assert.Equal(t, ref.Add(18*time.Hour), g.ValidTime)

	// maximum temperature fingerprint
	assert.Equal(t, common.NDFD_MAX, common.DescriptorFromMeta(g.Meta).Elem)
}

func TestDecodeMessageWxTable(t *testing.T) {
	ref := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	spec := tempSpec(ref)
	spec.wxTable = "<NoCov>:<NoWx>:<NoInten>:<NoVis>:\nSct:RW:-:<NoVis>:"

	grids, err := DecodeMessage(buildMessage(spec))
	require.NoError(t, err)
	require.Len(t, grids, 1)
	assert.Equal(t,
		[]string{"<NoCov>:<NoWx>:<NoInten>:<NoVis>:", "Sct:RW:-:<NoVis>:"},
		grids[0].WxTable)
}

func TestDecodeMessageRejectsEdition1(t *testing.T) {
	ref := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := buildMessage(tempSpec(ref))
	msg[7] = 1

	_, err := DecodeMessage(msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "edition")
}

func TestDecodeMessageTruncatedSection(t *testing.T) {
	ref := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	msg := buildMessage(tempSpec(ref))

	_, err := DecodeMessage(msg[:len(msg)-8])
	require.Error(t, err)
}
