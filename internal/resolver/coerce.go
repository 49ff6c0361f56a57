package resolver

import "github.com/samber/lo"

// CoerceAll normalizes heterogeneous caller input into a flat identifier
// batch. Slices are flattened one level and standardized element-wise;
// every other value is standardized as a single scalar. Input order is
// preserved.
//
// CoerceAll(nil) standardizes nil itself and yields one empty sentinel,
// matching the scalar contract of Standardize.
func CoerceAll(vs ...any) []Identifier {
	out := make([]Identifier, 0, len(vs))
	for _, v := range vs {
		switch x := v.(type) {
		case []Identifier:
			out = append(out, x...)
		case []string:
			out = append(out, lo.Map(x, func(s string, _ int) Identifier { return FromString(s) })...)
		case []int:
			out = append(out, lo.Map(x, func(n int, _ int) Identifier { return FromNumber(int64(n)) })...)
		case []int64:
			out = append(out, lo.Map(x, func(n int64, _ int) Identifier { return FromNumber(n) })...)
		case []float64:
			out = append(out, lo.Map(x, func(f float64, _ int) Identifier { return fromFloat(f) })...)
		case []any:
			out = append(out, lo.Map(x, func(e any, _ int) Identifier { return Standardize(e) })...)
		default:
			out = append(out, Standardize(v))
		}
	}
	return out
}
