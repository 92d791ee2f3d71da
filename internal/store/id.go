package store

import "github.com/google/uuid"

// pointNamespace seeds UUIDv5 derivation so point IDs are stable across
// runs and machines for the same relative path.
var pointNamespace = uuid.MustParse("7f9e6a44-1f0b-4c6a-9b1e-2d3c4e5f6a7b")

// PointID derives the deterministic point ID for a document path.
// Re-indexing the same path always targets the same point, so updates
// are plain upserts.
func PointID(path string) string {
	return uuid.NewSHA1(pointNamespace, []byte(path)).String()
}
