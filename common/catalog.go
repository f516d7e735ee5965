package common

// elementNames holds the three naming conventions per catalog row, indexed by
// NDFDElement then NameConvention.
var elementNames = [NumElements][3]string{
	NDFD_MAX:  {"MaxT", "maxt", "mx"},
	NDFD_MIN:  {"MinT", "mint", "mn"},
	NDFD_POP:  {"PoP12", "pop12", "po"},
	NDFD_TEMP: {"T", "temp", "tt"},
	NDFD_TD:   {"Td", "td", "dp"},
	NDFD_SKY:  {"Sky", "sky", "cl"},
	NDFD_WD:   {"WindDir", "wdir", "wd"},
	NDFD_WS:   {"WindSpd", "wspd", "ws"},
	NDFD_QPF:  {"QPF", "qpf", "qp"},
	NDFD_SNOW: {"SnowAmt", "snow", "sn"},
	NDFD_WX:   {"Wx", "wx", "wx"},
	NDFD_WH:   {"WaveHeight", "waveh", "wh"},
	NDFD_AT:   {"ApparentT", "apt", "at"},
	NDFD_RH:   {"RH", "rhm", "rh"},
	NDFD_WG:   {"WindGust", "wgust", "wg"},
}

// elementUnits holds the unit each element is published in.
var elementUnits = [NumElements]string{
	NDFD_MAX:  "K",
	NDFD_MIN:  "K",
	NDFD_POP:  "%",
	NDFD_TEMP: "K",
	NDFD_TD:   "K",
	NDFD_SKY:  "%",
	NDFD_WD:   "deg",
	NDFD_WS:   "m/s",
	NDFD_QPF:  "kg/m^2",
	NDFD_SNOW: "m",
	NDFD_WX:   "",
	NDFD_WH:   "m",
	NDFD_AT:   "K",
	NDFD_RH:   "%",
	NDFD_WG:   "m/s",
}

// ElementUnit returns the element's published unit, or "" for UNDEF and
// MATCHALL.
func ElementUnit(e NDFDElement) string {
	if e < 0 || int(e) >= NumElements {
		return ""
	}
	return elementUnits[e]
}

// Catalog is the canonical fingerprint table. Row i describes NDFDElement(i),
// fully populated with the GRIB2 identity NDFD publishes for that variable.
var Catalog = [NumElements]ElementDescriptor{
	NDFD_MAX: {Elem: NDFD_MAX, Version: 2, Center: NDFDCenter, Subcenter: 0, GenID: 0,
		ProdType: 0, Template: 8, Category: 0, Subcategory: 4, LenTime: 12, SurfType: 103, Value: 2},
	NDFD_MIN: {Elem: NDFD_MIN, Version: 2, Center: NDFDCenter, Subcenter: 0, GenID: 0,
		ProdType: 0, Template: 8, Category: 0, Subcategory: 5, LenTime: 12, SurfType: 103, Value: 2},
	NDFD_POP: {Elem: NDFD_POP, Version: 2, Center: NDFDCenter, Subcenter: 0, GenID: 0,
		ProdType: 0, Template: 9, Category: 1, Subcategory: 8, LenTime: 12, SurfType: 1, Value: 0},
	NDFD_TEMP: {Elem: NDFD_TEMP, Version: 2, Center: NDFDCenter, Subcenter: 0, GenID: 0,
		ProdType: 0, Template: 0, Category: 0, Subcategory: 0, LenTime: AnyValue, SurfType: 103, Value: 2},
	NDFD_TD: {Elem: NDFD_TD, Version: 2, Center: NDFDCenter, Subcenter: 0, GenID: 0,
		ProdType: 0, Template: 0, Category: 0, Subcategory: 6, LenTime: AnyValue, SurfType: 103, Value: 2},
	NDFD_SKY: {Elem: NDFD_SKY, Version: 2, Center: NDFDCenter, Subcenter: 0, GenID: 0,
		ProdType: 0, Template: 0, Category: 6, Subcategory: 1, LenTime: AnyValue, SurfType: 1, Value: 0},
	NDFD_WD: {Elem: NDFD_WD, Version: 2, Center: NDFDCenter, Subcenter: 0, GenID: 0,
		ProdType: 0, Template: 0, Category: 2, Subcategory: 0, LenTime: AnyValue, SurfType: 103, Value: 10},
	NDFD_WS: {Elem: NDFD_WS, Version: 2, Center: NDFDCenter, Subcenter: 0, GenID: 0,
		ProdType: 0, Template: 0, Category: 2, Subcategory: 1, LenTime: AnyValue, SurfType: 103, Value: 10},
	NDFD_QPF: {Elem: NDFD_QPF, Version: 2, Center: NDFDCenter, Subcenter: 0, GenID: 0,
		ProdType: 0, Template: 8, Category: 1, Subcategory: 8, LenTime: 6, SurfType: 1, Value: 0},
	NDFD_SNOW: {Elem: NDFD_SNOW, Version: 2, Center: NDFDCenter, Subcenter: 0, GenID: 0,
		ProdType: 0, Template: 8, Category: 1, Subcategory: 29, LenTime: 6, SurfType: 1, Value: 0},
	NDFD_WX: {Elem: NDFD_WX, Version: 2, Center: NDFDCenter, Subcenter: 0, GenID: 0,
		ProdType: 0, Template: 0, Category: 1, Subcategory: 192, LenTime: AnyValue, SurfType: 1, Value: 0},
	NDFD_WH: {Elem: NDFD_WH, Version: 2, Center: NDFDCenter, Subcenter: 0, GenID: 0,
		ProdType: 10, Template: 0, Category: 0, Subcategory: 5, LenTime: AnyValue, SurfType: 1, Value: 0},
	NDFD_AT: {Elem: NDFD_AT, Version: 2, Center: NDFDCenter, Subcenter: 0, GenID: 0,
		ProdType: 0, Template: 0, Category: 0, Subcategory: 193, LenTime: AnyValue, SurfType: 103, Value: 2},
	NDFD_RH: {Elem: NDFD_RH, Version: 2, Center: NDFDCenter, Subcenter: 0, GenID: 0,
		ProdType: 0, Template: 0, Category: 1, Subcategory: 1, LenTime: AnyValue, SurfType: 103, Value: 2},
	NDFD_WG: {Elem: NDFD_WG, Version: 2, Center: NDFDCenter, Subcenter: 0, GenID: 0,
		ProdType: 0, Template: 0, Category: 2, Subcategory: 22, LenTime: AnyValue, SurfType: 103, Value: 10},
}
