package domain

import "maps"

// Snapshot is the per-page data a view asked to keep. A nil Snapshot is the
// absence of data.
type Snapshot map[string]any

// SnapshotFunc produces a snapshot fragment for the currently mounted view.
// Returning nil means the view has nothing to keep.
type SnapshotFunc func() Snapshot

// MergeSnapshots merges fresh over stored shallowly. Keys in fresh win.
// It returns nil only when both inputs are nil.
func MergeSnapshots(stored, fresh Snapshot) Snapshot {
	if stored == nil && fresh == nil {
		return nil
	}
	out := make(Snapshot, len(stored)+len(fresh))
	maps.Copy(out, stored)
	maps.Copy(out, fresh)
	return out
}
