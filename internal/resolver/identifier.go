package resolver

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/JulienPeloton/rocks/internal/naming"
)

// Kind discriminates the identifier forms accepted for lookup.
type Kind int

const (
	// KindEmpty marks the unresolved sentinel. Empty identifiers skip both
	// lookup passes and resolve to the zero Resolution.
	KindEmpty Kind = iota
	// KindNumber is a catalogue number (1 and up).
	KindNumber
	// KindName is a proper name such as "Ceres".
	KindName
	// KindDesignation is a canonical provisional or survey designation
	// such as "2004 ES" or "2040 P-L".
	KindDesignation
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindName:
		return "name"
	case KindDesignation:
		return "designation"
	default:
		return "empty"
	}
}

// Identifier is one standardized lookup input. The zero value is the empty
// sentinel. Build identifiers with Standardize, FromString or FromNumber
// rather than by hand; the fields describe the standardized form.
type Identifier struct {
	Kind   Kind
	Number int64
	Text   string
}

// FromNumber standardizes a catalogue number. Numbering starts at 1, so
// anything below that standardizes to the empty sentinel.
func FromNumber(n int64) Identifier {
	if n < 1 {
		return Identifier{}
	}
	return Identifier{Kind: KindNumber, Number: n}
}

// FromString standardizes a textual identifier: numeric strings become
// catalogue numbers, designations are canonicalized, anything else is kept
// as a cleaned-up name.
func FromString(s string) Identifier {
	s = naming.CollapseSpace(s)
	if s == "" {
		return Identifier{}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return FromNumber(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromFloat(f)
	}
	if d, ok := naming.CanonicalDesignation(s); ok {
		return Identifier{Kind: KindDesignation, Text: d}
	}
	return Identifier{Kind: KindName, Text: s}
}

// fromFloat standardizes float input. NaN is the conventional "missing"
// marker in tabular data and maps to the empty sentinel. Fractional and
// non-finite values cannot be catalogue numbers and map to the sentinel
// too, rather than being silently truncated.
func fromFloat(f float64) Identifier {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f < 1 || f > math.MaxInt64 {
		return Identifier{}
	}
	return FromNumber(int64(f))
}

// Standardize normalizes any supported input into an Identifier. It is the
// boundary for heterogeneous caller input:
//
//   - nil and NaN yield the empty sentinel
//   - integers and integral floats become catalogue numbers
//   - strings are cleaned up and recognized as numbers, designations or names
//   - identifiers pass through unchanged
//
// Standardize never fails. Unsupported types yield the empty sentinel, in
// line with the soft-fail resolution contract.
func Standardize(v any) Identifier {
	switch x := v.(type) {
	case nil:
		return Identifier{}
	case Identifier:
		return x
	case string:
		return FromString(x)
	case int:
		return FromNumber(int64(x))
	case int8:
		return FromNumber(int64(x))
	case int16:
		return FromNumber(int64(x))
	case int32:
		return FromNumber(int64(x))
	case int64:
		return FromNumber(x)
	case uint:
		return fromUint(uint64(x))
	case uint8:
		return FromNumber(int64(x))
	case uint16:
		return FromNumber(int64(x))
	case uint32:
		return FromNumber(int64(x))
	case uint64:
		return fromUint(x)
	case float32:
		return fromFloat(float64(x))
	case float64:
		return fromFloat(x)
	case json.Number:
		return FromString(x.String())
	case fmt.Stringer:
		return FromString(x.String())
	default:
		return Identifier{}
	}
}

func fromUint(n uint64) Identifier {
	if n > math.MaxInt64 {
		return Identifier{}
	}
	return FromNumber(int64(n))
}

// IsEmpty reports whether the identifier is the unresolved sentinel.
func (id Identifier) IsEmpty() bool {
	return id.Kind == KindEmpty
}

// String returns the lookup form: the catalogue number in decimal, or the
// standardized text. Empty identifiers return "".
func (id Identifier) String() string {
	if id.Kind == KindNumber {
		return strconv.FormatInt(id.Number, 10)
	}
	return id.Text
}
