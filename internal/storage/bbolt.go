// Package storage implements the Result Store: a bbolt-backed envelope
// around persisted ScanRecords, with retention eviction and
// baseline/current diffing.
package storage

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	"go.etcd.io/bbolt"
	"go.etcd.io/bbolt/errors"
	"go.uber.org/zap"

	"github.com/skillscan/skillscan/internal/model"
)

// ResultStore wraps bbolt persistence for ScanRecords.
type ResultStore struct {
	db     *bbolt.DB
	logger *zap.SugaredLogger

	// retentionCeiling bounds how many ScanRecords are kept; Save evicts
	// the oldest beyond this count. Zero disables eviction.
	retentionCeiling int
}

// NewResultStore opens (creating if absent) the scans database under
// dataDir, recovering from a stale lock file left behind by an unclean
// shutdown.
func NewResultStore(dataDir string, retentionCeiling int, logger *zap.SugaredLogger) (*ResultStore, error) {
	dbPath := filepath.Join(dataDir, "scans.db")

	db, err := bbolt.Open(dbPath, 0644, &bbolt.Options{Timeout: 10 * time.Second})
	if err != nil {
		logger.Warnf("failed to open scans database on first attempt: %v", err)

		if err == errors.ErrTimeout {
			logger.Info("scans database timeout detected, attempting recovery")

			backupPath := dbPath + ".backup." + time.Now().Format("20060102-150405")
			if cpErr := copyFile(dbPath, backupPath); cpErr != nil {
				logger.Warnf("failed to create backup: %v", cpErr)
			}
			if rmErr := os.Remove(dbPath); rmErr != nil {
				logger.Warnf("failed to remove locked database file: %v", rmErr)
			}

			db, err = bbolt.Open(dbPath, 0644, &bbolt.Options{Timeout: 5 * time.Second})
		}
		if err != nil {
			return nil, fmt.Errorf("open scans database after recovery attempt: %w", err)
		}
	}

	store := &ResultStore{db: db, logger: logger, retentionCeiling: retentionCeiling}
	if err := store.initBuckets(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize buckets: %w", err)
	}
	return store, nil
}

// Close closes the underlying database.
func (s *ResultStore) Close() error {
	return s.db.Close()
}

func (s *ResultStore) initBuckets() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range []string{ScansBucket, MetaBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("create bucket %s: %w", bucket, err)
			}
		}
		meta := tx.Bucket([]byte(MetaBucket))
		versionBytes := make([]byte, 8)
		binary.LittleEndian.PutUint64(versionBytes, CurrentSchemaVersion)
		return meta.Put([]byte(SchemaVersionKey), versionBytes)
	})
}

// NewScanID generates a millisecond-timestamp-plus-random-suffix scan id
// using a ULID, so ids sort lexicographically by creation time.
func NewScanID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Save persists record, then evicts the oldest records beyond the
// configured retention ceiling.
func (s *ResultStore) Save(record model.ScanRecord) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(ScansBucket))
		data, err := toEnvelope(record).MarshalBinary()
		if err != nil {
			return err
		}
		return bucket.Put([]byte(record.ID), data)
	})
	if err != nil {
		return fmt.Errorf("save scan record: %w", err)
	}
	return s.enforceRetention()
}

// Get retrieves a ScanRecord by id.
func (s *ResultStore) Get(id string) (model.ScanRecord, error) {
	var rec model.ScanRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(ScansBucket))
		data := bucket.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("scan record %q not found", id)
		}
		env := &scanRecordEnvelope{}
		if err := env.UnmarshalBinary(data); err != nil {
			return err
		}
		rec = env.toRecord()
		return nil
	})
	return rec, err
}

// List returns every ScanRecord, ordered oldest-first by id (ids are
// time-sortable ULIDs).
func (s *ResultStore) List() ([]model.ScanRecord, error) {
	var records []model.ScanRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(ScansBucket))
		return bucket.ForEach(func(_, v []byte) error {
			env := &scanRecordEnvelope{}
			if err := env.UnmarshalBinary(v); err != nil {
				return err
			}
			records = append(records, env.toRecord())
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// Delete removes a ScanRecord by id.
func (s *ResultStore) Delete(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(ScansBucket)).Delete([]byte(id))
	})
}

// enforceRetention drops the oldest records once the store holds more than
// retentionCeiling. A zero ceiling disables eviction.
func (s *ResultStore) enforceRetention() error {
	if s.retentionCeiling <= 0 {
		return nil
	}
	records, err := s.List()
	if err != nil {
		return err
	}
	if len(records) <= s.retentionCeiling {
		return nil
	}
	excess := len(records) - s.retentionCeiling
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(ScansBucket))
		for i := 0; i < excess; i++ {
			if err := bucket.Delete([]byte(records[i].ID)); err != nil {
				return err
			}
			s.logger.Infow("evicted scan record past retention ceiling", "id", records[i].ID)
		}
		return nil
	})
}

// Backup copies the live database to destPath.
func (s *ResultStore) Backup(destPath string) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return tx.CopyFile(destPath, 0644)
	})
}

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	return err
}
