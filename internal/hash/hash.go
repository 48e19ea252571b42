package hash

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
)

// Any serializes a to JSON and returns its FNV-1a 64-bit hash as a hex string.
// Used as cache key for search requests and as ETag of search results.
func Any(a any) (string, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("serialize for hash: %w", err)
	}

	h := fnv.New64a()
	h.Write(data) // nolint:errcheck

	return fmt.Sprintf("%016x", h.Sum64()), nil
}
