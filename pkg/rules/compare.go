package rules

import "reflect"

// equals implements loose equality over document values: numeric types
// compare by value regardless of width, sequences compare element-wise,
// maps compare key-wise, everything else falls back to deep equality.
func equals(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		return bok && af == bf
	}

	if as, aok := asSequence(a); aok {
		bs, bok := asSequence(b)
		if !bok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !equals(as[i], bs[i]) {
				return false
			}
		}
		return true
	}

	if am, aok := a.(map[string]any); aok {
		bm, bok := b.(map[string]any)
		if !bok || len(am) != len(bm) {
			return false
		}
		for k, av := range am {
			bv, ok := bm[k]
			if !ok || !equals(av, bv) {
				return false
			}
		}
		return true
	}

	return reflect.DeepEqual(a, b)
}

// compareOrdered orders two values: -1, 0 or 1 with ok=true when the pair is
// orderable. Numbers order numerically, strings lexicographically, and
// sequences as ordered sequences (first differing element decides, a proper
// prefix orders first). Mixed or unordered types report ok=false.
func compareOrdered(a, b any) (int, bool) {
	if af, aok := toFloat(a); aok {
		bf, bok := toFloat(b)
		if !bok {
			return 0, false
		}
		switch {
		case af < bf:
			return -1, true
		case af > bf:
			return 1, true
		default:
			return 0, true
		}
	}

	if as, aok := a.(string); aok {
		bs, bok := b.(string)
		if !bok {
			return 0, false
		}
		switch {
		case as < bs:
			return -1, true
		case as > bs:
			return 1, true
		default:
			return 0, true
		}
	}

	if as, aok := asSequence(a); aok {
		bs, bok := asSequence(b)
		if !bok {
			return 0, false
		}
		for i := 0; i < len(as) && i < len(bs); i++ {
			c, ok := compareOrdered(as[i], bs[i])
			if !ok {
				return 0, false
			}
			if c != 0 {
				return c, true
			}
		}
		switch {
		case len(as) < len(bs):
			return -1, true
		case len(as) > len(bs):
			return 1, true
		default:
			return 0, true
		}
	}

	return 0, false
}

// toFloat widens any numeric value to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
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
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// asSequence flattens slices and arrays of any element type to []any.
// Strings are not sequences here; string rules handle them explicitly.
func asSequence(v any) ([]any, bool) {
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// toStr extracts a string value without converting other types.
func toStr(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
