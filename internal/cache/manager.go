// Package cache implements the content-addressed Scan Cache: a bbolt-backed
// store keyed by virtual_path, invalidated by content hash, rule_version,
// or age, so that a changed file or rule corpus never serves stale findings.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/skillscan/skillscan/internal/model"
)

const (
	entriesBucket = "cache"
	statsBucket   = "cache_stats"

	// DefaultTTL is the maximum age a cache entry survives before being
	// treated as a miss and evicted.
	DefaultTTL = 7 * 24 * time.Hour
)

// Manager is the content-addressed Scan Cache.
type Manager struct {
	db     *bbolt.DB
	logger *zap.Logger
	ttl    time.Duration
	stats  Stats
	dirty  bool
}

// NewManager opens (creating if absent) the cache buckets in db.
func NewManager(db *bbolt.DB, logger *zap.Logger, ttl time.Duration) (*Manager, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{db: db, logger: logger, ttl: ttl}

	err := db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(entriesBucket)); err != nil {
			return fmt.Errorf("create cache bucket: %w", err)
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(statsBucket)); err != nil {
			return fmt.Errorf("create cache stats bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := m.loadStats(); err != nil {
		logger.Warn("cache: failed to load stats, starting fresh", zap.Error(err))
	}

	return m, nil
}

// ContentHash is the SHA-256 hex digest of content, the key-invalidation
// input a Lookup compares against the stored entry.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// Lookup returns a miss (ok=false) on absence, rule_version mismatch, TTL
// expiry, or content hash mismatch, evicting the stale entry as it goes.
func (m *Manager) Lookup(virtualPath, content, ruleVersion string) (findings []model.Finding, ok bool) {
	var rec *record

	err := m.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(entriesBucket))
		data := bucket.Get([]byte(virtualPath))
		if data == nil {
			return nil
		}
		rec = &record{}
		return rec.UnmarshalBinary(data)
	})
	if err != nil {
		m.logger.Warn("cache: corrupt entry, treating as miss", zap.String("virtual_path", virtualPath), zap.Error(err))
		m.evict(virtualPath)
		m.recordMiss()
		return nil, false
	}
	if rec == nil {
		m.recordMiss()
		return nil, false
	}

	if rec.RuleVersion != ruleVersion {
		m.evict(virtualPath)
		m.recordMiss()
		return nil, false
	}
	if time.Since(rec.CreatedAt) > m.ttl {
		m.evict(virtualPath)
		m.recordMiss()
		return nil, false
	}
	if rec.ContentHash != ContentHash(content) {
		m.evict(virtualPath)
		m.recordMiss()
		return nil, false
	}

	m.recordHit()
	return rec.Findings, true
}

// Store records findings for virtualPath under the current content hash
// and rule version.
func (m *Manager) Store(virtualPath, content, ruleVersion string, findings []model.Finding) error {
	rec := &record{
		ContentHash: ContentHash(content),
		RuleVersion: ruleVersion,
		CreatedAt:   time.Now(),
		Findings:    findings,
	}
	data, err := rec.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	err = m.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(entriesBucket)).Put([]byte(virtualPath), data)
	})
	if err != nil {
		m.logger.Warn("cache: save failed, continuing without persisting", zap.Error(err))
		return nil
	}
	m.dirty = true
	return nil
}

func (m *Manager) evict(virtualPath string) {
	_ = m.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(entriesBucket)).Delete([]byte(virtualPath))
	})
	m.stats.EvictedCount++
	m.dirty = true
}

func (m *Manager) recordHit()  { m.stats.HitCount++; m.dirty = true }
func (m *Manager) recordMiss() { m.stats.MissCount++; m.dirty = true }

// Stats returns a snapshot of hit/miss/eviction counters.
func (m *Manager) Stats() Stats {
	return m.stats
}

func (m *Manager) loadStats() error {
	return m.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(statsBucket)).Get([]byte("stats"))
		if data == nil {
			return nil
		}
		return m.stats.UnmarshalBinary(data)
	})
}

// Flush persists stats if dirty. The orchestrator calls this at the end of
// each Scan; a save failure is logged but never fatal, per the CacheError taxonomy.
func (m *Manager) Flush() {
	if !m.dirty {
		return
	}
	err := m.db.Update(func(tx *bbolt.Tx) error {
		data, err := m.stats.MarshalBinary()
		if err != nil {
			return err
		}
		return tx.Bucket([]byte(statsBucket)).Put([]byte("stats"), data)
	})
	if err != nil {
		m.logger.Warn("cache: failed to flush stats", zap.Error(err))
		return
	}
	m.dirty = false
}
