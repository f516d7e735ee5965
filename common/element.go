package common

import "strings"

// NDFDElement enumerates the forecast variables carried by the NDFD corpus.
// The value doubles as the row index into the element catalog.
type NDFDElement int

const (
	NDFD_MAX NDFDElement = iota
	NDFD_MIN
	NDFD_POP
	NDFD_TEMP
	NDFD_TD
	NDFD_SKY
	NDFD_WD
	NDFD_WS
	NDFD_QPF
	NDFD_SNOW
	NDFD_WX
	NDFD_WH
	NDFD_AT
	NDFD_RH
	NDFD_WG
	NDFD_UNDEF
	NDFD_MATCHALL
)

// NumElements is the number of concrete catalog rows (excludes UNDEF / MATCHALL).
const NumElements = int(NDFD_UNDEF)

// AnyValue marks a fingerprint field as a wildcard that matches every grid.
const AnyValue = -1

// NDFDCenter is the originating center id carried by every NDFD product.
const NDFDCenter = 8

// NameConvention selects one of the three element naming schemes.
type NameConvention int

const (
	ShortName NameConvention = iota // e.g. "MaxT", as stored in FLX indexes
	FileName                        // e.g. "maxt", used in forecast file names
	TerseName                       // e.g. "mx", used in sector file fragments
)

// ElementDescriptor identifies a forecast variable. The fields after Elem form
// the GRIB2 meta fingerprint; AnyValue in any integer field matches every grid.
// Value and SndValue participate only when SurfType is concrete.
type ElementDescriptor struct {
	Elem NDFDElement

	Version     int
	Center      int
	Subcenter   int
	GenID       int
	ProdType    int
	Template    int
	Category    int
	Subcategory int
	LenTime     int
	SurfType    int
	Value       float64
	SndValue    float64
}

// ProductMeta is the identification a decoded grid carries, in the same shape
// as a descriptor fingerprint plus the grid's unit string.
type ProductMeta struct {
	Version     int
	Center      int
	Subcenter   int
	GenID       int
	ProdType    int
	Template    int
	Category    int
	Subcategory int
	LenTime     int
	SurfType    int
	Value       float64
	SndValue    float64
	Unit        string
}

// Matches reports whether the descriptor's fingerprint accepts the grid meta.
// MATCHALL accepts everything. For non-GRIB2 grids only the center, subcenter
// and version fields participate. Surface comparison is all-or-nothing: a
// concrete SurfType requires Value and SndValue to match exactly.
func (d ElementDescriptor) Matches(m ProductMeta) bool {
	if d.Elem == NDFD_MATCHALL {
		return true
	}
	if d.Center != AnyValue && d.Center != m.Center {
		return false
	}
	if d.Subcenter != AnyValue && d.Subcenter != m.Subcenter {
		return false
	}
	if d.Version != AnyValue && d.Version != m.Version {
		return false
	}
	if m.Version != 2 {
		return true
	}
	if d.GenID != AnyValue && d.GenID != m.GenID {
		return false
	}
	if d.ProdType != AnyValue && d.ProdType != m.ProdType {
		return false
	}
	if d.Template != AnyValue && d.Template != m.Template {
		return false
	}
	if d.Category != AnyValue && d.Category != m.Category {
		return false
	}
	if d.Subcategory != AnyValue && d.Subcategory != m.Subcategory {
		return false
	}
	if d.LenTime != AnyValue && d.LenTime != m.LenTime {
		return false
	}
	if d.SurfType != AnyValue {
		if d.SurfType != m.SurfType || d.Value != m.Value || d.SndValue != m.SndValue {
			return false
		}
	}
	return true
}

// Fingerprint returns the descriptor fields as a ProductMeta so descriptors
// can be compared against reconstructed grid identities.
func (d ElementDescriptor) Fingerprint() ProductMeta {
	return ProductMeta{
		Version:     d.Version,
		Center:      d.Center,
		Subcenter:   d.Subcenter,
		GenID:       d.GenID,
		ProdType:    d.ProdType,
		Template:    d.Template,
		Category:    d.Category,
		Subcategory: d.Subcategory,
		LenTime:     d.LenTime,
		SurfType:    d.SurfType,
		Value:       d.Value,
		SndValue:    d.SndValue,
	}
}

// DescriptorFromMeta builds a descriptor out of a grid's own identification
// and resolves it against the catalog: if some catalog row carries the exact
// same fingerprint the row's element is adopted, otherwise NDFD_UNDEF.
func DescriptorFromMeta(m ProductMeta) ElementDescriptor {
	d := ElementDescriptor{
		Elem:        NDFD_UNDEF,
		Version:     m.Version,
		Center:      m.Center,
		Subcenter:   m.Subcenter,
		GenID:       m.GenID,
		ProdType:    m.ProdType,
		Template:    m.Template,
		Category:    m.Category,
		Subcategory: m.Subcategory,
		LenTime:     m.LenTime,
		SurfType:    m.SurfType,
		Value:       m.Value,
		SndValue:    m.SndValue,
	}
	for i := 0; i < NumElements; i++ {
		if Catalog[i].Fingerprint() == d.Fingerprint() {
			d.Elem = Catalog[i].Elem
			break
		}
	}
	return d
}

// LookupElement resolves a name in the given convention to its element,
// returning NDFD_UNDEF when the name is unknown.
func LookupElement(name string, conv NameConvention, fold bool) NDFDElement {
	for i := 0; i < NumElements; i++ {
		candidate := elementNames[i][conv]
		if candidate == name || (fold && strings.EqualFold(candidate, name)) {
			return NDFDElement(i)
		}
	}
	return NDFD_UNDEF
}

// ElementName returns the element's name in the given convention, or "" for
// UNDEF and MATCHALL.
func ElementName(e NDFDElement, conv NameConvention) string {
	if e < 0 || int(e) >= NumElements {
		return ""
	}
	return elementNames[e][conv]
}
