package remotemap

import (
	"math"
	"reflect"
	"sort"
)

// Equal reports whether a local value and its remote-derived counterpart are
// equivalent under the entry's comparison rules: entries marked Set compare
// slices order-independently, float comparison is bounded by the declared
// precision, and numeric values compare across int/float representations.
func (e Entry) Equal(a, b any) bool {
	if e.Compare != nil {
		return e.Compare(a, b)
	}
	return valuesEqual(a, b, e)
}

// IsUnset reports whether a local value counts as "not configured": a nil
// interface or a nil pointer. Unset values on Optional entries are treated
// as unmanaged by the change detector.
func IsUnset(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}

func valuesEqual(a, b any, e Entry) bool {
	a = indirect(a)
	b = indirect(b)
	if a == nil || b == nil {
		if a == nil && b == nil {
			return true
		}
		// A nil list and an empty list express the same thing.
		return emptyCollection(a) && emptyCollection(b)
	}

	if af, aok := floatValue(a); aok {
		bf, bok := floatValue(b)
		if !bok {
			return false
		}
		return floatsEqual(af, bf, e.Precision)
	}

	av := reflect.ValueOf(a)
	bv := reflect.ValueOf(b)
	if av.Kind() == reflect.Slice && bv.Kind() == reflect.Slice {
		return slicesEqual(av, bv, e)
	}

	return reflect.DeepEqual(a, b)
}

func emptyCollection(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		return rv.Len() == 0
	default:
		return false
	}
}

// indirect unwraps non-nil pointers so *string and string compare.
func indirect(v any) any {
	if v == nil {
		return nil
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	return rv.Interface()
}

func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

func floatsEqual(a, b float64, precision int) bool {
	if precision <= 0 {
		return a == b
	}
	scale := math.Pow10(precision)
	return math.Round(a*scale) == math.Round(b*scale)
}

func slicesEqual(a, b reflect.Value, e Entry) bool {
	if a.Len() != b.Len() {
		return false
	}

	as := make([]any, a.Len())
	bs := make([]any, b.Len())
	for i := 0; i < a.Len(); i++ {
		as[i] = a.Index(i).Interface()
		bs[i] = b.Index(i).Interface()
	}

	if e.Set {
		sortAny(as)
		sortAny(bs)
	}

	elem := e
	elem.Set = false
	for i := range as {
		if !valuesEqual(as[i], bs[i], elem) {
			return false
		}
	}
	return true
}

// sortAny orders mixed scalar slices deterministically: numbers first by
// value, then everything else by formatted representation.
func sortAny(vs []any) {
	sort.SliceStable(vs, func(i, j int) bool {
		fi, iok := floatValue(indirect(vs[i]))
		fj, jok := floatValue(indirect(vs[j]))
		if iok && jok {
			return fi < fj
		}
		if iok != jok {
			return iok
		}
		return stringify(vs[i]) < stringify(vs[j])
	})
}

func stringify(v any) string {
	if s, ok := indirect(v).(string); ok {
		return s
	}
	return reflect.TypeOf(v).String()
}
