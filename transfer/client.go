package transfer

import "time"

// EntryKind classifies a remote directory entry.
type EntryKind int

const (
	EntryKindFile EntryKind = iota
	EntryKindDir
	EntryKindOther // symlinks, devices, anything the server reports that is not a plain file or directory
)

// String returns a short name for the entry kind.
func (k EntryKind) String() string {
	switch k {
	case EntryKindFile:
		return "file"
	case EntryKindDir:
		return "dir"
	default:
		return "other"
	}
}

// RemoteEntry is a single name in a remote directory listing.
// Size and Modified are advisory: the authoritative size for
// verification comes from a SIZE round-trip at download time.
type RemoteEntry struct {
	Name     string
	Kind     EntryKind
	Size     int64
	Modified time.Time
}
