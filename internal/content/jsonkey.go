package content

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// JSONKeyGet resolves a dotted path inside source and reports whether it
// was found.
func JSONKeyGet(source, dottedPath string) (gjson.Result, bool) {
	r := gjson.Get(source, dottedPath)
	return r, r.Exists()
}

// JSONKeySet sets value at dottedPath, creating intermediate objects as
// necessary. value is a Go value (string/number/bool/map/slice/nil), not
// pre-encoded JSON.
func JSONKeySet(source, dottedPath string, value any) (string, error) {
	if source == "" {
		source = "{}"
	}
	return sjson.Set(source, dottedPath, value)
}

// JSONKeyDelete removes the value at dottedPath, then removes any
// intermediate object that was created solely to hold it (i.e. is now
// empty), walking up from the leaf, but never touches a parent object that
// still has user keys. Grounded on the teacher's cleanManagedKeys sweep in
// internal/installer/install.go.
func JSONKeyDelete(source, dottedPath string) (string, error) {
	out, err := sjson.Delete(source, dottedPath)
	if err != nil {
		return source, err
	}
	segments := strings.Split(dottedPath, ".")
	for i := len(segments) - 1; i > 0; i-- {
		parentPath := strings.Join(segments[:i], ".")
		parent := gjson.Get(out, parentPath)
		if !parent.Exists() || !parent.IsObject() {
			break
		}
		if len(parent.Map()) != 0 {
			break
		}
		out, err = sjson.Delete(out, parentPath)
		if err != nil {
			return out, err
		}
	}
	return out, nil
}

// IsEmptyObject reports whether source parses as exactly `{}` (no keys).
func IsEmptyObject(source string) bool {
	if !gjson.Valid(source) {
		return false
	}
	r := gjson.Parse(source)
	return r.IsObject() && len(r.Map()) == 0
}
