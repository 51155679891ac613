package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/brunobiangulo/entgraph/graph"
)

// ErrRunNotFound is returned when no snapshot exists for a variant or run ID.
var ErrRunNotFound = errors.New("store: run not found")

// Run is one saved graph snapshot.
type Run struct {
	ID        string `json:"id"`
	Variant   string `json:"variant"`
	Input     string `json:"input"`
	Directed  bool   `json:"directed"`
	NodeCount int    `json:"node_count"`
	CreatedAt string `json:"created_at"`
}

// Community is one stored connected component.
type Community struct {
	Component int      `json:"component"`
	Members   []string `json:"members"`
}

// Store wraps the SQLite database holding graph snapshots.
type Store struct {
	db *sql.DB
}

// New opens (or creates) a SQLite database at the given path and
// initialises the schema.
func New(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	// Connection pool settings for SQLite.
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db}

	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// SaveGraph stores g as the latest snapshot of variant, replacing any
// earlier snapshot of the same variant. It returns the new run ID.
func (s *Store) SaveGraph(ctx context.Context, variant, input string, g *graph.Graph) (string, error) {
	id := uuid.NewString()
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM runs WHERE variant = ?", variant); err != nil {
			return fmt.Errorf("clearing previous %s run: %w", variant, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO runs (id, variant, input, directed, node_count) VALUES (?, ?, ?, ?, ?)",
			id, variant, input, g.Directed, g.NumNodes()); err != nil {
			return fmt.Errorf("inserting run: %w", err)
		}

		nodeStmt, err := tx.PrepareContext(ctx,
			"INSERT INTO entities (run_id, position, label, component, color) VALUES (?, ?, ?, ?, ?)")
		if err != nil {
			return err
		}
		defer nodeStmt.Close()

		members := make(map[int][]string)
		for i, n := range g.Nodes() {
			if _, err := nodeStmt.ExecContext(ctx, id, i, n.Label, n.Component, n.Color); err != nil {
				return fmt.Errorf("inserting entity %q: %w", n.Label, err)
			}
			if n.Component >= 0 {
				members[n.Component] = append(members[n.Component], n.Label)
			}
		}

		edgeStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO relationships (run_id, position, source, target, kind, title, unit)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer edgeStmt.Close()

		for i, e := range g.Edges() {
			if _, err := edgeStmt.ExecContext(ctx, id, i, e.Source, e.Target,
				string(e.Kind), e.Title, e.Unit); err != nil {
				return fmt.Errorf("inserting relationship %q -> %q: %w", e.Source, e.Target, err)
			}
		}

		for comp, labels := range members {
			data, err := json.Marshal(labels)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO communities (run_id, component, members) VALUES (?, ?, ?)",
				id, comp, string(data)); err != nil {
				return fmt.Errorf("inserting community %d: %w", comp, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// LatestRun returns the snapshot currently stored for variant.
func (s *Store) LatestRun(ctx context.Context, variant string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, variant, input, directed, COALESCE(node_count, 0), created_at
		FROM runs WHERE variant = ? ORDER BY created_at DESC LIMIT 1
	`, variant)
	return scanRun(row)
}

// GetRun returns a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, variant, input, directed, COALESCE(node_count, 0), created_at
		FROM runs WHERE id = ?
	`, id)
	return scanRun(row)
}

func scanRun(row *sql.Row) (*Run, error) {
	var r Run
	err := row.Scan(&r.ID, &r.Variant, &r.Input, &r.Directed, &r.NodeCount, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Runs lists every stored snapshot ordered by variant.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, variant, input, directed, COALESCE(node_count, 0), created_at
		FROM runs ORDER BY variant
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Variant, &r.Input, &r.Directed, &r.NodeCount, &r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// LoadGraph rebuilds the latest snapshot of variant, preserving node and
// edge insertion order.
func (s *Store) LoadGraph(ctx context.Context, variant string) (*graph.Graph, error) {
	run, err := s.LatestRun(ctx, variant)
	if err != nil {
		return nil, err
	}
	g := graph.New(run.Directed)

	rows, err := s.db.QueryContext(ctx,
		"SELECT label, component, COALESCE(color, '') FROM entities WHERE run_id = ? ORDER BY position",
		run.ID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var label, color string
		var comp int
		if err := rows.Scan(&label, &comp, &color); err != nil {
			rows.Close()
			return nil, err
		}
		n := g.AddNode(label)
		n.Component = comp
		n.Color = color
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	rows, err = s.db.QueryContext(ctx, `
		SELECT source, target, kind, COALESCE(title, ''), unit
		FROM relationships WHERE run_id = ? ORDER BY position
	`, run.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var e graph.Edge
		var kind string
		if err := rows.Scan(&e.Source, &e.Target, &kind, &e.Title, &e.Unit); err != nil {
			return nil, err
		}
		e.Kind = graph.EdgeKind(kind)
		g.AddEdge(e)
	}
	return g, rows.Err()
}

// Communities returns the stored components of variant ordered by index.
func (s *Store) Communities(ctx context.Context, variant string) ([]Community, error) {
	run, err := s.LatestRun(ctx, variant)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT component, members FROM communities WHERE run_id = ? ORDER BY component", run.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Community
	for rows.Next() {
		var c Community
		var members string
		if err := rows.Scan(&c.Component, &members); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(members), &c.Members); err != nil {
			return nil, fmt.Errorf("decoding community %d: %w", c.Component, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DBStats holds row counts across the snapshot tables.
type DBStats struct {
	Runs          int `json:"runs"`
	Entities      int `json:"entities"`
	Relationships int `json:"relationships"`
	Communities   int `json:"communities"`
}

// DBStats returns counts of runs, entities, relationships and communities.
func (s *Store) DBStats(ctx context.Context) (*DBStats, error) {
	stats := &DBStats{}
	queries := []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM runs", &stats.Runs},
		{"SELECT COUNT(*) FROM entities", &stats.Entities},
		{"SELECT COUNT(*) FROM relationships", &stats.Relationships},
		{"SELECT COUNT(*) FROM communities", &stats.Communities},
	}
	for _, q := range queries {
		if err := s.db.QueryRowContext(ctx, q.query).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("counting %s: %w", q.query, err)
		}
	}
	return stats, nil
}

// RelationCounts returns the number of edges per kind in the latest
// snapshot of variant.
func (s *Store) RelationCounts(ctx context.Context, variant string) (map[graph.EdgeKind]int, error) {
	run, err := s.LatestRun(ctx, variant)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT kind, COUNT(*) FROM relationships WHERE run_id = ? GROUP BY kind", run.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[graph.EdgeKind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[graph.EdgeKind(kind)] = n
	}
	return counts, rows.Err()
}

// --- helpers ---

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
