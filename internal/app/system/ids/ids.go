// Package ids generates the string document IDs used across all
// collections: "{prefix}_{epochMillis}_{randomSuffix}".
package ids

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Prefixes for the document collections.
const (
	PrefixTeam        = "team"
	PrefixFile        = "file"
	PrefixFolder      = "folder"
	PrefixPerformance = "perf"
)

// New returns a fresh ID for the given prefix. IDs sort roughly by
// creation time thanks to the epoch-millisecond component; the suffix
// disambiguates IDs minted in the same millisecond.
func New(prefix string) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), suffix)
}

// HasPrefix reports whether id carries the given prefix.
func HasPrefix(id, prefix string) bool {
	return strings.HasPrefix(id, prefix+"_")
}
