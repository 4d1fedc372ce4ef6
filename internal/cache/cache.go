// Package cache implements the two-tier content-addressed cache (C4):
// an in-process LRU in front of a SQLite-backed blob table, keyed by
// content hash, with reverse-dependency invalidation computed from the
// graph engine's import edges.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "modernc.org/sqlite"

	"github.com/codescalpel/codescalpel/internal/scalpelerr"
)

// Key builds the content-addressed cache key: SHA256(content) combined
// with the analyzer version and a config hash, so a binary upgrade or a
// config change never serves a stale slice.
func Key(content []byte, analyzerVersion, configHash string) string {
	h := sha256.Sum256(content)
	combined := hex.EncodeToString(h[:]) + "|" + analyzerVersion + "|" + configHash
	out := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(out[:])
}

// averageEntryBytes is the assumed size used to translate a byte budget
// into an LRU entry-count capacity; golang-lru bounds by entry count, not
// bytes, so this is an approximation of the configured memory budget.
const averageEntryBytes = 8 * 1024

// Cache is the two-tier store. Reads are served from the memory tier
// first, falling back to disk; a disk hit is promoted back into memory.
type Cache struct {
	mu  sync.Mutex
	mem *lru.Cache[string, []byte]
	db  *sql.DB
}

// Open creates or attaches to a cache at dbPath with a memory tier sized
// to byteBudget.
func Open(dbPath string, byteBudget int) (*Cache, error) {
	capacity := byteBudget / averageEntryBytes
	if capacity <= 0 {
		capacity = 1
	}
	mem, err := lru.New[string, []byte](capacity)
	if err != nil {
		return nil, scalpelerr.New(scalpelerr.KindInternal, "cache: init memory tier: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, scalpelerr.New(scalpelerr.KindDependencyUnavailable, "cache: open sqlite at %s: %v", dbPath, err)
	}
	if _, err := db.Exec(schemaDDL); err != nil {
		return nil, scalpelerr.New(scalpelerr.KindInternal, "cache: apply schema: %v", err)
	}
	return &Cache{mem: mem, db: db}, nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS blobs (
	key     TEXT PRIMARY KEY,
	value   BLOB NOT NULL,
	version INTEGER NOT NULL DEFAULT 1
);
CREATE TABLE IF NOT EXISTS edges (
	src TEXT NOT NULL,
	dst TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS edges_dst_idx ON edges(dst);
CREATE TABLE IF NOT EXISTS manifest (
	schema_version INTEGER NOT NULL,
	compaction_watermark INTEGER NOT NULL DEFAULT 0
);
`

// Close releases the disk handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// GetOrCompute returns the cached value for key, or invokes compute and
// stores its result. On a cache hit — memory or disk — compute is never
// invoked; cross-component contracts (C1-C3 re-parsing avoidance) depend
// on this.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute func() ([]byte, error)) ([]byte, error) {
	if v, ok := c.getMem(key); ok {
		return v, nil
	}
	if v, ok, err := c.getDisk(ctx, key); err != nil {
		return nil, err
	} else if ok {
		c.mem.Add(key, v)
		return v, nil
	}

	v, err := compute()
	if err != nil {
		return nil, err
	}
	if err := c.Store(ctx, key, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (c *Cache) getMem(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mem.Get(key)
}

func (c *Cache) getDisk(ctx context.Context, key string) ([]byte, bool, error) {
	var v []byte
	err := c.db.QueryRowContext(ctx, `SELECT value FROM blobs WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, scalpelerr.New(scalpelerr.KindInternal, "cache: disk read %s: %v", key, err)
	}
	return v, true, nil
}

// Store writes through to both tiers.
func (c *Cache) Store(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	c.mem.Add(key, value)
	c.mu.Unlock()

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO blobs(key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, version = blobs.version + 1`,
		key, value)
	if err != nil {
		return scalpelerr.New(scalpelerr.KindInternal, "cache: disk write %s: %v", key, err)
	}
	return nil
}

// RecordDependency records that importer's cached artifacts depend on
// imported's content — an import edge from the graph engine. Invalidating
// imported must also evict importer.
func (c *Cache) RecordDependency(ctx context.Context, importer, imported string) error {
	_, err := c.db.ExecContext(ctx, `INSERT INTO edges(src, dst) VALUES (?, ?)`, importer, imported)
	if err != nil {
		return scalpelerr.New(scalpelerr.KindInternal, "cache: record dependency %s->%s: %v", importer, imported, err)
	}
	return nil
}

// Invalidate evicts key and its full transitive reverse-dependency
// closure (every cached artifact whose inputs include an evicted key),
// from both tiers, and returns the evicted set.
func (c *Cache) Invalidate(ctx context.Context, key string) (map[string]bool, error) {
	rows, err := c.db.QueryContext(ctx, `
		WITH RECURSIVE affected(k) AS (
			SELECT ?
			UNION
			SELECT e.src FROM edges e JOIN affected a ON e.dst = a.k
		)
		SELECT k FROM affected`, key)
	if err != nil {
		return nil, scalpelerr.New(scalpelerr.KindInternal, "cache: reverse-dep query: %v", err)
	}
	defer rows.Close()

	evicted := make(map[string]bool)
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, scalpelerr.New(scalpelerr.KindInternal, "cache: reverse-dep scan: %v", err)
		}
		evicted[k] = true
	}

	c.mu.Lock()
	for k := range evicted {
		c.mem.Remove(k)
	}
	c.mu.Unlock()

	for k := range evicted {
		if _, err := c.db.ExecContext(ctx, `DELETE FROM blobs WHERE key = ?`, k); err != nil {
			return nil, scalpelerr.New(scalpelerr.KindInternal, "cache: evict %s: %v", k, err)
		}
	}
	return evicted, nil
}
