package weather

import (
	"strconv"
	"strings"

	"hstin/ndprobe/common"
)

// Mode selects the textual form a weather cell is rendered in.
type Mode int

const (
	Ugly    Mode = iota // verbatim table entry
	English             // joined English phrases
	Simple              // collapsed simple code, decimal
)

// Translate renders the categorical cell value against the grid's weather
// table. The raw value is an unsigned 16-bit index; anything outside the
// table yields the stringified index tagged Missing.
func Translate(raw float64, table []string, mode Mode, simpleVer int) common.Value {
	index := int(uint16(raw))
	if index < 0 || index >= len(table) {
		v := common.Missing(float64(index))
		v.Str = strconv.Itoa(index)
		return v
	}

	switch mode {
	case English:
		ugly := ParseUgly(table[index], simpleVer)
		return common.Text(englishJoin(ugly.English))
	case Simple:
		ugly := ParseUgly(table[index], simpleVer)
		return common.Text(strconv.Itoa(ugly.SimpleCode))
	default:
		return common.Text(table[index])
	}
}

// englishJoin joins the non-empty phrases with ", " except for the final
// join, which is " and ". An absent leading phrase means no weather at all.
func englishJoin(phrases []string) string {
	var kept []string
	for _, p := range phrases {
		if p != "" {
			kept = append(kept, p)
		}
	}
	if len(phrases) == 0 || phrases[0] == "" || len(kept) == 0 {
		return "No Weather"
	}
	if len(kept) == 1 {
		return kept[0]
	}
	return strings.Join(kept[:len(kept)-1], ", ") + " and " + kept[len(kept)-1]
}
