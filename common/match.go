package common

import (
	"strconv"
	"time"
)

// ValueKind tags the variants of a probed Value.
type ValueKind int

const (
	ValueNumeric ValueKind = iota
	ValueText
	ValueMissing
)

// Value is one sampled result. Numeric carries Num; Text carries Str; Missing
// carries the missing constant in Num and, for weather cells, the stringified
// index in Str.
type Value struct {
	Kind ValueKind
	Num  float64
	Str  string
}

// Numeric wraps a scalar sample.
func Numeric(v float64) Value { return Value{Kind: ValueNumeric, Num: v} }

// Text wraps a translated weather string.
func Text(s string) Value { return Value{Kind: ValueText, Str: s} }

// Missing wraps the grid's missing constant.
func Missing(miss float64) Value { return Value{Kind: ValueMissing, Num: miss} }

// String renders the value the way the probe output formats it.
func (v Value) String() string {
	switch v.Kind {
	case ValueText:
		return v.Str
	case ValueMissing:
		if v.Str != "" {
			return v.Str
		}
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
}

// Match is one resolved (element, refTime, validTime) record with one value
// per probed point.
type Match struct {
	Element   ElementDescriptor
	RefTime   time.Time
	ValidTime time.Time
	Unit      string
	Values    []Value
}
