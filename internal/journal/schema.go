package journal

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at TIMESTAMP NOT NULL,
    filesystem TEXT NOT NULL,
    grp TEXT NOT NULL,
    keep INTEGER NOT NULL,
    created TEXT,
    destroyed_count INTEGER NOT NULL,
    failed_count INTEGER NOT NULL,
    status TEXT NOT NULL,
    error TEXT
);

CREATE TABLE IF NOT EXISTS destroyed_snapshots (
    run_id INTEGER NOT NULL,
    identifier TEXT NOT NULL,
    ok BOOLEAN NOT NULL,
    error TEXT,
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
CREATE INDEX IF NOT EXISTS idx_runs_filesystem ON runs(filesystem, grp);
CREATE INDEX IF NOT EXISTS idx_destroyed_run ON destroyed_snapshots(run_id);
`
