package pathutil

import "sort"

// sortKeys sorts paths by descending length (more specific mappings shadow
// shorter ones), breaking ties lexicographically for determinism.
func sortKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
}
