package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogRowsMatchTheirIndex(t *testing.T) {
	for i := 0; i < NumElements; i++ {
		assert.Equal(t, NDFDElement(i), Catalog[i].Elem, "catalog row %d", i)
		assert.Equal(t, NDFDCenter, Catalog[i].Center, "catalog row %d center", i)
	}
}

func TestLookupElement(t *testing.T) {
	tests := []struct {
		name string
		conv NameConvention
		fold bool
		want NDFDElement
	}{
		{"MaxT", ShortName, false, NDFD_MAX},
		{"maxt", ShortName, false, NDFD_UNDEF},
		{"maxt", ShortName, true, NDFD_MAX},
		{"maxt", FileName, false, NDFD_MAX},
		{"mx", TerseName, false, NDFD_MAX},
		{"Wx", ShortName, false, NDFD_WX},
		{"nosuch", ShortName, true, NDFD_UNDEF},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, LookupElement(tc.name, tc.conv, tc.fold), "lookup %q", tc.name)
	}
}

func TestElementName(t *testing.T) {
	assert.Equal(t, "MaxT", ElementName(NDFD_MAX, ShortName))
	assert.Equal(t, "wspd", ElementName(NDFD_WS, FileName))
	assert.Equal(t, "", ElementName(NDFD_UNDEF, ShortName))
	assert.Equal(t, "", ElementName(NDFD_MATCHALL, ShortName))
}

func TestMatchesReflexive(t *testing.T) {
	// A descriptor built from a grid's own meta always matches that grid.
	for i := 0; i < NumElements; i++ {
		meta := Catalog[i].Fingerprint()
		d := DescriptorFromMeta(meta)
		assert.True(t, d.Matches(meta), "element %d", i)
	}
}

func TestDescriptorReconstruction(t *testing.T) {
	meta := Catalog[NDFD_MAX].Fingerprint()
	d := DescriptorFromMeta(meta)
	require.Equal(t, NDFD_MAX, d.Elem)

	// Re-running reconstruction on its own output is a fixed point.
	again := DescriptorFromMeta(d.Fingerprint())
	assert.Equal(t, d, again)

	// An unknown fingerprint stays UNDEF.
	meta.Subcategory = 77
	assert.Equal(t, NDFD_UNDEF, DescriptorFromMeta(meta).Elem)
}

func TestMatchesWildcards(t *testing.T) {
	meta := Catalog[NDFD_TEMP].Fingerprint()

	d := Catalog[NDFD_TEMP]
	d.LenTime = AnyValue
	meta.LenTime = 3
	assert.True(t, d.Matches(meta), "AnyValue lenTime matches any interval")

	d = MatchAllDescriptor()
	assert.True(t, d.Matches(meta), "MATCHALL bypasses fingerprinting")
}

func TestMatchesTemplate8LenTime(t *testing.T) {
	d := Catalog[NDFD_MAX] // template 8, cat 0, subcat 4, lenTime 12

	meta := d.Fingerprint()
	assert.True(t, d.Matches(meta))

	meta.LenTime = 6
	assert.False(t, d.Matches(meta), "wrong interval length must not match")

	meta = d.Fingerprint()
	meta.Template = 0
	assert.False(t, d.Matches(meta), "wrong product template must not match")
}

func TestMatchesNonGRIB2SubsetOnly(t *testing.T) {
	d := Catalog[NDFD_MAX]
	d.Version = 1

	// For non-GRIB2 grids only center, subcenter and version participate.
	meta := ProductMeta{Version: 1, Center: NDFDCenter, Subcenter: 0, Template: 99, Category: 99}
	assert.True(t, d.Matches(meta))

	meta.Center = 7
	assert.False(t, d.Matches(meta))
}

func TestMatchesSurfaceAllOrNothing(t *testing.T) {
	d := Catalog[NDFD_TEMP] // surfType 103, value 2

	meta := d.Fingerprint()
	meta.Value = 10
	assert.False(t, d.Matches(meta), "surface value must match exactly when surfType is set")

	d.SurfType = AnyValue
	assert.True(t, d.Matches(meta), "wildcard surfType skips value comparison")
}
