// Package hash provides the fast string hash used by uel.Table to shard
// its name lookup before falling back to an exact string comparison.
package hash

import "github.com/cespare/xxhash/v2"

// ID computes the xxHash64 of the given UEL name.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}
