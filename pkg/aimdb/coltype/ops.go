package coltype

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// CompareOp is one of the six ordering relations a Filter or OrderBy can
// apply to two values of the same type.
type CompareOp int

const (
	LT CompareOp = iota
	LE
	EQ
	NE
	GT
	GE
)

// Copy copies exactly t.Size bytes from src into dest. Both slices must be
// at least t.Size bytes long.
func (t Type) Copy(dest, src []byte) {
	copy(dest[:t.Size], src[:t.Size])
}

// Compare returns -1, 0, or 1 as a < b, a == b, or a > b under this type's
// ordering. CHARN compares the first t.Size bytes lexicographically
// (prefix-bounded, matching the source's strncmp).
func (t Type) Compare(a, b []byte) int {
	switch t.Code {
	case Int8:
		return compareOrdered(int8(a[0]), int8(b[0]))
	case Int16:
		return compareOrdered(int16(binary.LittleEndian.Uint16(a)), int16(binary.LittleEndian.Uint16(b)))
	case Int32:
		return compareOrdered(int32(binary.LittleEndian.Uint32(a)), int32(binary.LittleEndian.Uint32(b)))
	case Int64, Date, Time, DateTime:
		return compareOrdered(int64(binary.LittleEndian.Uint64(a)), int64(binary.LittleEndian.Uint64(b)))
	case Float32:
		return compareOrdered(math.Float32frombits(binary.LittleEndian.Uint32(a)), math.Float32frombits(binary.LittleEndian.Uint32(b)))
	case Float64:
		return compareOrdered(math.Float64frombits(binary.LittleEndian.Uint64(a)), math.Float64frombits(binary.LittleEndian.Uint64(b)))
	case CharN:
		return strings.Compare(string(trimNul(a[:t.Size])), string(trimNul(b[:t.Size])))
	default:
		panic(fmt.Sprintf("coltype: compare not supported for %s", t.Code))
	}
}

func compareOrdered[T int8 | int16 | int32 | int64 | float32 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// trimNul trims trailing NUL padding used to fill short CHARN values, so
// that comparison and text formatting ignore the unused tail.
func trimNul(b []byte) []byte {
	n := len(b)
	for n > 0 && b[n-1] == 0 {
		n--
	}
	return b[:n]
}

// Matches evaluates a Compare result against op.
func Matches(op CompareOp, cmp int) bool {
	switch op {
	case LT:
		return cmp < 0
	case LE:
		return cmp <= 0
	case EQ:
		return cmp == 0
	case NE:
		return cmp != 0
	case GT:
		return cmp > 0
	case GE:
		return cmp >= 0
	default:
		return false
	}
}

// FormatText renders the t.Size bytes at data as their printable form.
func (t Type) FormatText(data []byte) (string, error) {
	switch t.Code {
	case Int8:
		return strconv.FormatInt(int64(int8(data[0])), 10), nil
	case Int16:
		return strconv.FormatInt(int64(int16(binary.LittleEndian.Uint16(data))), 10), nil
	case Int32:
		return strconv.FormatInt(int64(int32(binary.LittleEndian.Uint32(data))), 10), nil
	case Int64:
		return strconv.FormatInt(int64(binary.LittleEndian.Uint64(data)), 10), nil
	case Float32:
		return strconv.FormatFloat(float64(math.Float32frombits(binary.LittleEndian.Uint32(data))), 'f', 6, 32), nil
	case Float64:
		return strconv.FormatFloat(math.Float64frombits(binary.LittleEndian.Uint64(data)), 'f', 6, 64), nil
	case CharN:
		return string(trimNul(data[:t.Size])), nil
	case Date:
		return time.Unix(int64(binary.LittleEndian.Uint64(data)), 0).UTC().Format("2006-01-02"), nil
	case Time:
		secs := int64(binary.LittleEndian.Uint64(data))
		return time.Unix(secs, 0).UTC().Format("15:04:05"), nil
	case DateTime:
		return time.Unix(int64(binary.LittleEndian.Uint64(data)), 0).UTC().Format("2006-01-02 15:04:05"), nil
	default:
		return "", fmt.Errorf("%w: formatText not supported for %s", ErrUnsupported, t.Code)
	}
}

// FormatBinary parses a printable value into dest, which must be t.Size
// bytes. Returns an error (never a negative-size sentinel, unlike the
// source) when the literal is out of range or malformed.
func (t Type) FormatBinary(dest []byte, text string) error {
	switch t.Code {
	case Int8:
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil || v < -128 || v > 127 {
			return fmt.Errorf("%w: %q is out of range for INT8", ErrOutOfRange, text)
		}
		dest[0] = byte(int8(v))
		return nil
	case Int16:
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil || v < math.MinInt16 || v > math.MaxInt16 {
			return fmt.Errorf("%w: %q is out of range for INT16", ErrOutOfRange, text)
		}
		binary.LittleEndian.PutUint16(dest, uint16(int16(v)))
		return nil
	case Int32:
		v, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return fmt.Errorf("%w: %q is out of range for INT32", ErrOutOfRange, text)
		}
		binary.LittleEndian.PutUint32(dest, uint32(int32(v)))
		return nil
	case Int64:
		v, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %q is out of range for INT64", ErrOutOfRange, text)
		}
		binary.LittleEndian.PutUint64(dest, uint64(v))
		return nil
	case Float32:
		v, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return fmt.Errorf("%w: %q is not a valid FLOAT32", ErrOutOfRange, text)
		}
		binary.LittleEndian.PutUint32(dest, math.Float32bits(float32(v)))
		return nil
	case Float64:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not a valid FLOAT64", ErrOutOfRange, text)
		}
		binary.LittleEndian.PutUint64(dest, math.Float64bits(v))
		return nil
	case CharN:
		for i := range dest[:t.Size] {
			dest[i] = 0
		}
		copy(dest[:t.Size], text)
		return nil
	case Date:
		tm, err := time.Parse("2006-01-02", text)
		if err != nil {
			return fmt.Errorf("%w: %q is not a valid DATE", ErrOutOfRange, text)
		}
		binary.LittleEndian.PutUint64(dest, uint64(tm.UTC().Unix()))
		return nil
	case Time:
		tm, err := time.Parse("15:04:05", text)
		if err != nil {
			return fmt.Errorf("%w: %q is not a valid TIME", ErrOutOfRange, text)
		}
		secs := tm.Hour()*3600 + tm.Minute()*60 + tm.Second()
		binary.LittleEndian.PutUint64(dest, uint64(secs))
		return nil
	case DateTime:
		tm, err := time.Parse("2006-01-02 15:04:05", text)
		if err != nil {
			return fmt.Errorf("%w: %q is not a valid DATETIME", ErrOutOfRange, text)
		}
		binary.LittleEndian.PutUint64(dest, uint64(tm.UTC().Unix()))
		return nil
	default:
		return fmt.Errorf("%w: formatBinary not supported for %s", ErrUnsupported, t.Code)
	}
}

// AsFloat64 reads a numeric value for use by SUM/AVG/MAX/MIN accumulators.
// It panics for non-numeric types; callers must check IsNumeric first.
func (t Type) AsFloat64(data []byte) float64 {
	switch t.Code {
	case Int8:
		return float64(int8(data[0]))
	case Int16:
		return float64(int16(binary.LittleEndian.Uint16(data)))
	case Int32:
		return float64(int32(binary.LittleEndian.Uint32(data)))
	case Int64:
		return float64(int64(binary.LittleEndian.Uint64(data)))
	case Float32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(data)))
	case Float64:
		return math.Float64frombits(binary.LittleEndian.Uint64(data))
	default:
		panic(fmt.Sprintf("coltype: AsFloat64 not supported for %s", t.Code))
	}
}

// PutFloat64 writes v into dest using this type's binary encoding, used to
// materialize a finalized aggregate (SUM/AVG/MAX/MIN) back into a result
// row. Integral destinations truncate toward zero.
func (t Type) PutFloat64(dest []byte, v float64) {
	switch t.Code {
	case Int8:
		dest[0] = byte(int8(v))
	case Int16:
		binary.LittleEndian.PutUint16(dest, uint16(int16(v)))
	case Int32:
		binary.LittleEndian.PutUint32(dest, uint32(int32(v)))
	case Int64:
		binary.LittleEndian.PutUint64(dest, uint64(int64(v)))
	case Float32:
		binary.LittleEndian.PutUint32(dest, math.Float32bits(float32(v)))
	case Float64:
		binary.LittleEndian.PutUint64(dest, math.Float64bits(v))
	default:
		panic(fmt.Sprintf("coltype: PutFloat64 not supported for %s", t.Code))
	}
}

// DJB2 hashes the first n non-zero-byte-terminated bytes of data, matching
// HashIndex's string hash for CHARN key columns: hash = 5381; hash =
// hash*33 + byte, stopping early at a zero byte.
func DJB2(data []byte, n int64) int64 {
	var hash int64 = 5381
	for i := int64(0); i < n && i < int64(len(data)); i++ {
		b := data[i]
		if b == 0 {
			break
		}
		hash = hash*33 + int64(b)
	}
	return hash
}
