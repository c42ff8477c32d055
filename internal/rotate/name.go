package rotate

import (
	"fmt"
	"strings"
	"time"
)

// StampLayout is the timestamp layout embedded in snapshot names. It is
// fixed-width and zero-padded, so names of the same group sort the same way
// as strings and as times.
const StampLayout = "2006-01-02T15:04:05"

// Name is a rotation-managed snapshot identifier, parsed into its parts.
// The full identifier is <filesystem>@<timestamp>-<group>.
type Name struct {
	Filesystem string
	Timestamp  time.Time
	Group      string
}

// NewName builds the snapshot name for a rotation run. The timestamp is taken
// in UTC at second resolution.
func NewName(filesystem, group string, now time.Time) Name {
	return Name{
		Filesystem: filesystem,
		Timestamp:  now.UTC().Truncate(time.Second),
		Group:      group,
	}
}

// Suffix returns the snapshot's short name, the part after the "@".
func (n Name) Suffix() string {
	return n.Timestamp.Format(StampLayout) + "-" + n.Group
}

// String returns the full snapshot identifier.
func (n Name) String() string {
	return n.Filesystem + "@" + n.Suffix()
}

// ValidGroup reports whether group is a usable group label. Labels are
// restricted to [A-Za-z0-9]+ so the suffix stays unambiguous: the group is
// everything after the timestamp's trailing dash.
func ValidGroup(group string) bool {
	if group == "" {
		return false
	}
	for _, c := range group {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

// ValidateGroup returns an error describing why group is not usable, or nil.
func ValidateGroup(group string) error {
	if group == "" {
		return fmt.Errorf("group label is empty")
	}
	if !ValidGroup(group) {
		return fmt.Errorf("invalid group label %q: only letters and digits are allowed", group)
	}
	return nil
}

// ParseName parses a full snapshot identifier into its parts. The second
// return value is false when the identifier was not produced by this tool's
// naming scheme: wrong timestamp shape, a group label outside [A-Za-z0-9]+,
// or no "@" separator at all. Such snapshots are invisible to rotation.
func ParseName(identifier string) (Name, bool) {
	at := strings.IndexByte(identifier, '@')
	if at <= 0 {
		return Name{}, false
	}
	short := identifier[at+1:]

	// <stamp>-<group>, stamp fixed at len(StampLayout) characters.
	if len(short) < len(StampLayout)+2 {
		return Name{}, false
	}
	stamp := short[:len(StampLayout)]
	if short[len(StampLayout)] != '-' {
		return Name{}, false
	}
	group := short[len(StampLayout)+1:]
	if !ValidGroup(group) {
		return Name{}, false
	}

	ts, err := time.ParseInLocation(StampLayout, stamp, time.UTC)
	if err != nil {
		return Name{}, false
	}
	// time.Parse tolerates some non-padded fields; a round-trip check pins
	// the stamp to the exact fixed-width form.
	if ts.Format(StampLayout) != stamp {
		return Name{}, false
	}

	return Name{
		Filesystem: identifier[:at],
		Timestamp:  ts,
		Group:      group,
	}, true
}
