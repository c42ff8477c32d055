package config

// Config is the policy file, loaded once at startup and treated as an
// immutable value from then on.
type Config struct {
	// Journal is the path of the sqlite run journal. Empty disables
	// journaling; rotation itself never depends on it.
	Journal string `yaml:"journal"`

	Policies []Policy `yaml:"policies"`
}

// Policy is one rotation policy: one filesystem, one group.
type Policy struct {
	Filesystem string `yaml:"filesystem"`
	Group      string `yaml:"group"`
	Keep       int    `yaml:"keep"`

	// Schedule is a standard cron expression, used only by the daemon.
	// Policies without a schedule are run by `run` but never by the daemon.
	Schedule string `yaml:"schedule"`

	Recursive bool `yaml:"recursive"`
}

// DefaultPath is where the policy file lives unless --config overrides it.
const DefaultPath = "/etc/zfs-snap-rotate.yaml"

// DefaultJournalPath is the journal location applied when the policy file
// does not set one.
const DefaultJournalPath = "/var/lib/zfs-snap-rotate/journal.db"
