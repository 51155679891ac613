package store

// schemaSQL is the base schema. Every snapshot table hangs off runs and is
// removed with it.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	variant TEXT NOT NULL,
	input TEXT NOT NULL,
	directed INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_runs_variant ON runs(variant);

CREATE TABLE IF NOT EXISTS entities (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	label TEXT NOT NULL,
	component INTEGER NOT NULL DEFAULT -1,
	color TEXT,
	PRIMARY KEY (run_id, label)
);

CREATE TABLE IF NOT EXISTS relationships (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	source TEXT NOT NULL,
	target TEXT NOT NULL,
	kind TEXT NOT NULL,
	title TEXT,
	unit INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_relationships_run ON relationships(run_id);
CREATE INDEX IF NOT EXISTS idx_relationships_kind ON relationships(kind);

CREATE TABLE IF NOT EXISTS communities (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	component INTEGER NOT NULL,
	members TEXT NOT NULL,
	PRIMARY KEY (run_id, component)
);
`
