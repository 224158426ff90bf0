package importer

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ContentHash returns a short hex digest of content for change detection.
func ContentHash(content string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(content))
}
