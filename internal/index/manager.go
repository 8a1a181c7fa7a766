package index

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/skillscan/skillscan/internal/model"
)

// Manager provides a concurrency-safe interface over one FindingIndex,
// guarding it with an RWMutex since Bleve indexes are not safe for
// concurrent batch writes.
type Manager struct {
	findingIndex *FindingIndex
	mu           sync.RWMutex
	logger       *zap.Logger
}

// NewManager opens the finding index rooted at dataDir.
func NewManager(dataDir string, logger *zap.Logger) (*Manager, error) {
	findingIndex, err := NewFindingIndex(dataDir, logger)
	if err != nil {
		return nil, fmt.Errorf("create finding index: %w", err)
	}
	return &Manager{findingIndex: findingIndex, logger: logger}, nil
}

// Close closes the underlying Bleve index.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findingIndex != nil {
		return m.findingIndex.Close()
	}
	return nil
}

// IndexScan indexes every finding of one ScanRecord.
func (m *Manager) IndexScan(scanID string, findings []model.Finding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findingIndex.BatchIndex(scanID, findings)
}

// DeleteScan removes a scan's findings from the index, called when a
// ScanRecord is pruned from storage.
func (m *Manager) DeleteScan(scanID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findingIndex.DeleteScan(scanID)
}

// Search runs a full-text query across all indexed findings.
func (m *Manager) Search(query string, limit int) ([]*SearchResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	return m.findingIndex.Search(query, limit)
}

// Stats returns a small summary of the index's current contents.
func (m *Manager) Stats() (map[string]interface{}, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docCount, err := m.findingIndex.DocCount()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"document_count": docCount,
		"index_type":     "bleve",
		"search_backend": "BM25",
	}, nil
}
