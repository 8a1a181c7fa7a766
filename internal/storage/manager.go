package storage

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/skillscan/skillscan/internal/index"
	"github.com/skillscan/skillscan/internal/model"
)

// Manager coordinates the bbolt-backed ResultStore with the Finding Index,
// keeping the two in sync on every SaveScan, including records that the
// save evicts past the retention ceiling.
type Manager struct {
	store *ResultStore
	index *index.Manager
	mu    sync.RWMutex
}

// NewManager opens the Result Store and Finding Index rooted at dataDir.
func NewManager(dataDir string, retentionCeiling int, logger *zap.SugaredLogger) (*Manager, error) {
	store, err := NewResultStore(dataDir, retentionCeiling, logger)
	if err != nil {
		return nil, fmt.Errorf("open result store: %w", err)
	}

	idx, err := index.NewManager(dataDir, logger.Desugar())
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("open finding index: %w", err)
	}

	return &Manager{store: store, index: idx}, nil
}

// Close closes the store and index.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	indexErr := m.index.Close()
	storeErr := m.store.Close()
	if storeErr != nil {
		return storeErr
	}
	return indexErr
}

// SaveScan persists record and indexes its findings for search. If the save
// evicts older records past the retention ceiling, their findings are
// removed from the index too.
func (m *Manager) SaveScan(record model.ScanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existingIDs, err := m.existingIDsLocked()
	if err != nil {
		return err
	}

	if err := m.store.Save(record); err != nil {
		return err
	}
	if err := m.index.IndexScan(record.ID, record.Result.Findings); err != nil {
		return fmt.Errorf("index scan findings: %w", err)
	}

	remainingIDs, err := m.existingIDsLocked()
	if err != nil {
		return err
	}
	for id := range existingIDs {
		if !remainingIDs[id] {
			if err := m.index.DeleteScan(id); err != nil {
				return fmt.Errorf("prune evicted scan from index: %w", err)
			}
		}
	}
	return nil
}

func (m *Manager) existingIDsLocked() (map[string]bool, error) {
	records, err := m.store.List()
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(records))
	for _, r := range records {
		ids[r.ID] = true
	}
	return ids, nil
}

// GetScan retrieves a ScanRecord by id.
func (m *Manager) GetScan(id string) (model.ScanRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store.Get(id)
}

// ListScans returns every ScanRecord, oldest first.
func (m *Manager) ListScans() ([]model.ScanRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store.List()
}

// Diff loads baselineID and currentID and returns their DiffResult.
func (m *Manager) Diff(baselineID, currentID string) (model.DiffResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	baseline, err := m.store.Get(baselineID)
	if err != nil {
		return model.DiffResult{}, fmt.Errorf("load baseline scan: %w", err)
	}
	current, err := m.store.Get(currentID)
	if err != nil {
		return model.DiffResult{}, fmt.Errorf("load current scan: %w", err)
	}
	return Diff(baseline, current), nil
}

// Query runs a free-text search over indexed findings.
func (m *Manager) Query(text string, limit int) ([]*index.SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.index.Search(text, limit)
}

// Backup copies the live result store database to destPath.
func (m *Manager) Backup(destPath string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.store.Backup(destPath)
}
