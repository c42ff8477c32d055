package zfs

// Snapshot is one entry of a snapshot listing.
type Snapshot struct {
	Name string // full identifier, <filesystem>@<short name>
	Used uint64 // space consumed by the snapshot, in bytes
}
