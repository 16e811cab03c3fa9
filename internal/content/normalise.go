package content

import "sort"

// canonicalise recursively converts maps/slices into a form stable for
// equality comparison: nested maps become sortedMap (a slice of key/value
// pairs in lexicographic key order) so that reflect.DeepEqual (or any
// structural equality check) is insensitive to the original map's
// iteration order.
type sortedEntry struct {
	Key   string
	Value any
}

type sortedMap []sortedEntry

func canonicalise(v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(sortedMap, 0, len(keys))
		for _, k := range keys {
			out = append(out, sortedEntry{Key: k, Value: canonicalise(t[k])})
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = canonicalise(e)
		}
		return out
	default:
		return t
	}
}
