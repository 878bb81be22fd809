// Package coltype implements the closed set of scalar column types:
// fixed-width values with copy, comparison, and text/binary conversion
// operations. Rather than a class hierarchy with virtual dispatch, each
// Type is a tagged value and dispatch happens through a switch on its
// Code in one place (ops.go) — no heap allocation per column.
package coltype

import "fmt"

// Code identifies one of the closed set of scalar types.
type Code int

const (
	Invalid Code = iota
	Int8
	Int16
	Int32
	Int64
	Float32
	Float64
	CharN
	Date
	Time
	DateTime
)

func (c Code) String() string {
	switch c {
	case Int8:
		return "INT8"
	case Int16:
		return "INT16"
	case Int32:
		return "INT32"
	case Int64:
		return "INT64"
	case Float32:
		return "FLOAT32"
	case Float64:
		return "FLOAT64"
	case CharN:
		return "CHARN"
	case Date:
		return "DATE"
	case Time:
		return "TIME"
	case DateTime:
		return "DATETIME"
	default:
		return "INVALID"
	}
}

// Type is a scalar column type: a type code plus, for CHARN, its declared
// width. All other codes carry a fixed width implied by the code.
type Type struct {
	Code Code
	// Size is the declared byte width. For CHARN this is the option_size
	// from the schema file; for every other code it is fixed and set by
	// New.
	Size int64
}

// New constructs a Type for a fixed-width code. It panics if called with
// CharN; use NewCharN for that.
func New(code Code) Type {
	size, ok := fixedSizes[code]
	if !ok {
		panic(fmt.Sprintf("coltype: %s is not a fixed-width code", code))
	}
	return Type{Code: code, Size: size}
}

// NewCharN constructs a CHARN(size) type.
func NewCharN(size int64) Type {
	return Type{Code: CharN, Size: size}
}

var fixedSizes = map[Code]int64{
	Int8:     1,
	Int16:    2,
	Int32:    4,
	Int64:    8,
	Float32:  4,
	Float64:  8,
	Date:     8,
	Time:     8,
	DateTime: 8,
}

// ParseCode maps a schema-file type keyword (§6) to a Code. ok is false for
// an unrecognized keyword.
func ParseCode(s string) (Code, bool) {
	switch s {
	case "INT8":
		return Int8, true
	case "INT16":
		return Int16, true
	case "INT32":
		return Int32, true
	case "INT64":
		return Int64, true
	case "FLOAT32":
		return Float32, true
	case "FLOAT64":
		return Float64, true
	case "CHARN":
		return CharN, true
	case "DATE":
		return Date, true
	case "TIME":
		return Time, true
	case "DATETIME":
		return DateTime, true
	default:
		return Invalid, false
	}
}

// IsNumeric reports whether the type participates in SUM/AVG/MAX/MIN
// arithmetic as a number rather than bytewise comparison.
func (t Type) IsNumeric() bool {
	switch t.Code {
	case Int8, Int16, Int32, Int64, Float32, Float64:
		return true
	default:
		return false
	}
}

// Bits returns the type's width in bits, used by the hash index to derive
// a per-column fingerprint bit budget.
func (t Type) Bits() int64 {
	return t.Size * 8
}
