package storage

import "context"

// SnapshotArchiver stores raw upstream snapshots for later reprocessing.
// Archival is best-effort: the ingestion pipeline logs failures and moves
// on.
type SnapshotArchiver interface {
	// ArchiveSnapshot persists one raw snapshot payload for the given
	// player; snapshot is any JSON-serializable value.
	ArchiveSnapshot(ctx context.Context, playerUUID string, snapshot interface{}) error
}
