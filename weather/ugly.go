// Package weather parses NDFD packed weather ("ugly") strings and renders
// categorical weather cells as text.
package weather

import "strings"

// WxGroup is one "^"-separated group of an ugly string, split on its
// ":"-separated fields: coverage, type, intensity, visibility, attributes.
type WxGroup struct {
	Coverage   string
	Type       string
	Intensity  string
	Visibility string
	Attributes []string
}

// UglyString is a parsed ugly string. English holds one rendered phrase per
// group ("" when the group carries no weather), NumValid counts groups with a
// real weather type, and SimpleCode is the collapsed single-integer code.
type UglyString struct {
	Groups     []WxGroup
	English    []string
	NumValid   int
	SimpleCode int
}

var coverageEnglish = map[string]string{
	"<NoCov>": "",
	"Iso":     "Isolated",
	"SChc":    "Slight Chance of",
	"Chc":     "Chance of",
	"Sct":     "Scattered",
	"Lkly":    "Likely",
	"Num":     "Numerous",
	"Def":     "Definite",
	"Wide":    "Widespread",
	"Ocnl":    "Occasional",
	"Patchy":  "Patchy",
	"Areas":   "Areas of",
	"Pds":     "Periods of",
	"Frq":     "Frequent",
	"Inter":   "Intermittent",
	"Brf":     "Brief",
}

var typeEnglish = map[string]string{
	"<NoWx>": "",
	"A":      "Hail",
	"BD":     "Blowing Dust",
	"BN":     "Blowing Sand",
	"BS":     "Blowing Snow",
	"F":      "Fog",
	"FR":     "Frost",
	"H":      "Haze",
	"IC":     "Ice Crystals",
	"IF":     "Ice Fog",
	"IP":     "Ice Pellets",
	"K":      "Smoke",
	"L":      "Drizzle",
	"R":      "Rain",
	"RW":     "Rain Showers",
	"S":      "Snow",
	"SW":     "Snow Showers",
	"T":      "Thunderstorms",
	"VA":     "Volcanic Ash",
	"WP":     "Waterspouts",
	"ZF":     "Freezing Fog",
	"ZL":     "Freezing Drizzle",
	"ZR":     "Freezing Rain",
	"ZY":     "Freezing Spray",
}

var intensityEnglish = map[string]string{
	"<NoInten>": "",
	"--":        "Very Light",
	"-":         "Light",
	"m":         "", // moderate is the unmarked case
	"+":         "Heavy",
}

// simpleCodes ranks weather types for the collapsed simple code. The highest
// ranked type across the groups wins.
var simpleCodes = map[string]int{
	"T":  10,
	"ZR": 9,
	"ZL": 8,
	"IP": 7,
	"S":  6,
	"SW": 6,
	"R":  5,
	"RW": 5,
	"L":  4,
	"ZF": 3,
	"IF": 3,
	"F":  2,
	"H":  1,
	"K":  1,
}

// ParseUgly splits an ugly string into groups and derives the English phrases
// and the simple code. simpleVer selects the simple-code table revision;
// all published revisions agree on the types NDFD currently emits, so it is
// accepted for compatibility and does not change the result.
func ParseUgly(s string, simpleVer int) UglyString {
	_ = simpleVer

	var u UglyString
	if s == "" {
		return u
	}

	for _, raw := range strings.Split(s, "^") {
		fields := strings.Split(raw, ":")
		var g WxGroup
		if len(fields) > 0 {
			g.Coverage = fields[0]
		}
		if len(fields) > 1 {
			g.Type = fields[1]
		}
		if len(fields) > 2 {
			g.Intensity = fields[2]
		}
		if len(fields) > 3 {
			g.Visibility = fields[3]
		}
		if len(fields) > 4 && fields[4] != "" {
			g.Attributes = strings.Split(fields[4], "&")
		}
		u.Groups = append(u.Groups, g)
		u.English = append(u.English, englishPhrase(g))

		if g.Type != "" && g.Type != "<NoWx>" {
			u.NumValid++
			if code, ok := simpleCodes[g.Type]; ok && code > u.SimpleCode {
				u.SimpleCode = code
			}
		}
	}
	return u
}

func englishPhrase(g WxGroup) string {
	typ, ok := typeEnglish[g.Type]
	if !ok {
		typ = g.Type
	}
	if typ == "" {
		return ""
	}

	var parts []string
	if cov, ok := coverageEnglish[g.Coverage]; ok {
		if cov != "" {
			parts = append(parts, cov)
		}
	} else if g.Coverage != "" {
		parts = append(parts, g.Coverage)
	}
	if inten, ok := intensityEnglish[g.Intensity]; ok {
		if inten != "" {
			parts = append(parts, inten)
		}
	} else if g.Intensity != "" {
		parts = append(parts, g.Intensity)
	}
	parts = append(parts, typ)
	return strings.Join(parts, " ")
}
