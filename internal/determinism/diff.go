package determinism

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/roach88/symbolpack/internal/ir"
)

// Diff compares two generic JSON documents and returns the sorted paths at
// which they diverge. Paths use "$" for the root, ".key" for object members
// and "[i]" for array elements. A key or element present on one side only
// is reported at its own path.
func Diff(a, b any) []string {
	paths := []string{}
	diffValue("$", a, b, &paths)
	slices.Sort(paths)
	return paths
}

func diffValue(path string, a, b any, paths *[]string) {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok {
			*paths = append(*paths, path)
			return
		}
		keys := make(map[string]struct{}, len(av)+len(bv))
		for k := range av {
			keys[k] = struct{}{}
		}
		for k := range bv {
			keys[k] = struct{}{}
		}
		for k := range keys {
			childPath := path + "." + k
			aChild, aOK := av[k]
			bChild, bOK := bv[k]
			if aOK != bOK {
				*paths = append(*paths, childPath)
				continue
			}
			diffValue(childPath, aChild, bChild, paths)
		}
	case []any:
		bv, ok := b.([]any)
		if !ok {
			*paths = append(*paths, path)
			return
		}
		n := max(len(av), len(bv))
		for i := 0; i < n; i++ {
			childPath := path + "[" + strconv.Itoa(i) + "]"
			if i >= len(av) || i >= len(bv) {
				*paths = append(*paths, childPath)
				continue
			}
			diffValue(childPath, av[i], bv[i], paths)
		}
	default:
		if !scalarEqual(a, b) {
			*paths = append(*paths, path)
		}
	}
}

// scalarEqual compares leaves by their canonical encoding, so numerically
// equal numbers with different spellings compare equal.
func scalarEqual(a, b any) bool {
	ca, errA := ir.MarshalCanonical(a)
	cb, errB := ir.MarshalCanonical(b)
	if errA != nil || errB != nil {
		return fmt.Sprint(a) == fmt.Sprint(b)
	}
	return string(ca) == string(cb)
}
