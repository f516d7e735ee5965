package common

// Interest levels used in the element filter score array.
const (
	InterestIgnore = 0
	InterestPrefer = 1
	InterestForce  = 2
)

// ComposeFilter folds the user-requested elements into the caller's interest
// scores and returns the canonical descriptors to probe for, in catalog order.
//
// varFilter must have NDFD_MATCHALL+1 entries. A requested element is bumped
// to at least InterestForce so user intent always survives an ignoring caller.
// When the user requested nothing and the caller forced nothing, every element
// is bumped, which degenerates to "probe everything".
func ComposeFilter(varFilter []int, requested []NDFDElement) []ElementDescriptor {
	for _, e := range requested {
		if e >= 0 && int(e) <= int(NDFD_MATCHALL) {
			bump(&varFilter[e])
		}
	}

	if len(requested) == 0 && !anyForced(varFilter) {
		for i := 0; i < NumElements; i++ {
			bump(&varFilter[i])
		}
	}

	out := make([]ElementDescriptor, 0, NumElements)
	for i := 0; i < NumElements; i++ {
		if varFilter[i] >= InterestForce {
			out = append(out, Catalog[i])
		}
	}
	if varFilter[NDFD_MATCHALL] >= InterestForce {
		out = append(out, MatchAllDescriptor())
	}
	return out
}

func bump(v *int) {
	*v++
	if *v < InterestForce {
		*v = InterestForce
	}
}

func anyForced(varFilter []int) bool {
	for _, v := range varFilter {
		if v >= InterestForce {
			return true
		}
	}
	return false
}

// MatchAllDescriptor returns the wildcard descriptor that accepts every grid.
func MatchAllDescriptor() ElementDescriptor {
	return ElementDescriptor{
		Elem:        NDFD_MATCHALL,
		Version:     AnyValue,
		Center:      AnyValue,
		Subcenter:   AnyValue,
		GenID:       AnyValue,
		ProdType:    AnyValue,
		Template:    AnyValue,
		Category:    AnyValue,
		Subcategory: AnyValue,
		LenTime:     AnyValue,
		SurfType:    AnyValue,
	}
}
