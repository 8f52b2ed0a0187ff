// internal/store/cache.go
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"stylescope/internal/tree"
)

// Cache keeps the last authoritative exploration tree per session in a local
// SQLite database. The push channel offers no replay, so a restarted client
// renders the cached tree immediately and refetches in the background. Node
// lists are stored as zstd-compressed JSON blobs.
type Cache struct {
	db      *sql.DB
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// ErrNotCached is returned when no tree has been cached for a session.
var ErrNotCached = fmt.Errorf("session tree not cached")

// Open creates or opens the cache database at the given path.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}

	encoder, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	decoder, _ := zstd.NewReader(nil)

	c := &Cache{db: db, encoder: encoder, decoder: decoder}
	if err := c.init(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// init creates the cache schema.
func (c *Cache) init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exploration_trees (
		session_id TEXT PRIMARY KEY,
		current_snapshot_id TEXT,
		nodes BLOB NOT NULL,
		node_count INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	_, err := c.db.Exec(schema)
	return err
}

// SaveTree replaces the cached tree for a session.
func (c *Cache) SaveTree(sessionID, currentSnapshotID string, nodes []tree.ExplorationNode) error {
	data, err := json.Marshal(nodes)
	if err != nil {
		return fmt.Errorf("marshal nodes: %w", err)
	}
	compressed := c.encoder.EncodeAll(data, nil)

	_, err = c.db.Exec(`
		INSERT INTO exploration_trees (session_id, current_snapshot_id, nodes, node_count, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			current_snapshot_id = excluded.current_snapshot_id,
			nodes = excluded.nodes,
			node_count = excluded.node_count,
			updated_at = excluded.updated_at
	`, sessionID, currentSnapshotID, compressed, len(nodes), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save tree: %w", err)
	}
	return nil
}

// LoadTree returns the cached tree for a session, or ErrNotCached.
func (c *Cache) LoadTree(sessionID string) ([]tree.ExplorationNode, string, error) {
	var currentSnapshotID string
	var compressed []byte
	err := c.db.QueryRow(`
		SELECT current_snapshot_id, nodes FROM exploration_trees WHERE session_id = ?
	`, sessionID).Scan(&currentSnapshotID, &compressed)
	if err == sql.ErrNoRows {
		return nil, "", ErrNotCached
	}
	if err != nil {
		return nil, "", fmt.Errorf("load tree: %w", err)
	}

	data, err := c.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, "", fmt.Errorf("decompress nodes: %w", err)
	}

	var nodes []tree.ExplorationNode
	if err := json.Unmarshal(data, &nodes); err != nil {
		return nil, "", fmt.Errorf("parse nodes: %w", err)
	}
	return nodes, currentSnapshotID, nil
}

// DeleteTree drops a session's cached tree. Missing rows are not an error.
func (c *Cache) DeleteTree(sessionID string) error {
	_, err := c.db.Exec(`DELETE FROM exploration_trees WHERE session_id = ?`, sessionID)
	return err
}

// Close closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}
