// Package index maintains a Bleve full-text index over emitted findings so
// `skillscan query` can search by rule id, message, or file without
// re-running a scan.
package index

import (
	"fmt"
	"path/filepath"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"go.uber.org/zap"

	"github.com/skillscan/skillscan/internal/model"
)

// FindingIndex wraps Bleve index operations over FindingDocuments.
type FindingIndex struct {
	index  bleve.Index
	logger *zap.Logger
}

// FindingDocument is the denormalized, Bleve-searchable projection of a
// model.Finding, carrying its owning scan so results can be scoped.
type FindingDocument struct {
	ScanID     string  `json:"scan_id"`
	RuleID     string  `json:"rule_id"`
	Severity   string  `json:"severity"`
	Category   string  `json:"category"`
	Source     string  `json:"source"`
	Message    string  `json:"message"`
	File       string  `json:"file"`
	Line       int     `json:"line"`
	Confidence float64 `json:"confidence"`
}

// NewFindingIndex opens (or creates) the on-disk Bleve index under dataDir.
func NewFindingIndex(dataDir string, logger *zap.Logger) (*FindingIndex, error) {
	indexPath := filepath.Join(dataDir, "findings.bleve")

	idx, err := bleve.Open(indexPath)
	if err != nil {
		logger.Info("creating new finding index", zap.String("path", indexPath))
		idx, err = createFindingIndex(indexPath)
		if err != nil {
			return nil, fmt.Errorf("create finding index: %w", err)
		}
	} else {
		logger.Info("opened existing finding index", zap.String("path", indexPath))
	}

	return &FindingIndex{index: idx, logger: logger}, nil
}

func createFindingIndex(indexPath string) (bleve.Index, error) {
	indexMapping := bleve.NewIndexMapping()
	findingMapping := bleve.NewDocumentMapping()

	keywordField := func(name string, stored bool) {
		f := bleve.NewTextFieldMapping()
		f.Analyzer = keyword.Name
		f.Store = stored
		f.Index = true
		findingMapping.AddFieldMappingsAt(name, f)
	}
	keywordField("scan_id", true)
	keywordField("rule_id", true)
	keywordField("severity", true)
	keywordField("category", true)
	keywordField("source", true)
	keywordField("file", true)

	messageField := bleve.NewTextFieldMapping()
	messageField.Analyzer = standard.Name
	messageField.Store = true
	messageField.Index = true
	findingMapping.AddFieldMappingsAt("message", messageField)

	indexMapping.AddDocumentMapping("finding", findingMapping)
	indexMapping.DefaultMapping = findingMapping

	return bleve.New(indexPath, indexMapping)
}

// Close closes the index.
func (b *FindingIndex) Close() error {
	return b.index.Close()
}

func findingDocID(scanID string, f model.Finding) string {
	return fmt.Sprintf("%s:%s", scanID, f.Fingerprint())
}

// IndexFinding indexes a single finding under scanID.
func (b *FindingIndex) IndexFinding(scanID string, f model.Finding) error {
	doc := toFindingDocument(scanID, f)
	return b.index.Index(findingDocID(scanID, f), doc)
}

// BatchIndex indexes every finding of one scan in a single Bleve batch.
func (b *FindingIndex) BatchIndex(scanID string, findings []model.Finding) error {
	batch := b.index.NewBatch()
	for _, f := range findings {
		batch.Index(findingDocID(scanID, f), toFindingDocument(scanID, f))
	}
	b.logger.Debug("batch indexing findings", zap.Int("count", len(findings)), zap.String("scan_id", scanID))
	return b.index.Batch(batch)
}

func toFindingDocument(scanID string, f model.Finding) *FindingDocument {
	confidence := 0.0
	if f.Confidence != nil {
		confidence = *f.Confidence
	}
	return &FindingDocument{
		ScanID:     scanID,
		RuleID:     f.RuleID,
		Severity:   string(f.Severity),
		Category:   f.Category,
		Source:     string(f.Source),
		Message:    f.Message,
		File:       f.File,
		Line:       f.Line,
		Confidence: confidence,
	}
}

// DeleteScan removes every finding belonging to scanID from the index.
func (b *FindingIndex) DeleteScan(scanID string) error {
	query := bleve.NewTermQuery(scanID)
	query.SetField("scan_id")

	searchReq := bleve.NewSearchRequest(query)
	searchReq.Size = 100000

	searchResult, err := b.index.Search(searchReq)
	if err != nil {
		return fmt.Errorf("search scan findings: %w", err)
	}

	for _, hit := range searchResult.Hits {
		if err := b.index.Delete(hit.ID); err != nil {
			b.logger.Warn("failed to delete finding", zap.String("doc_id", hit.ID), zap.Error(err))
		}
	}
	b.logger.Info("deleted findings for scan", zap.Int("count", len(searchResult.Hits)), zap.String("scan_id", scanID))
	return nil
}

// SearchResult pairs a matched finding document with its BM25 score.
type SearchResult struct {
	Finding *FindingDocument
	Score   float64
}

// Search runs a full-text query (matched against message, rule_id, file,
// etc.) and returns up to limit results ordered by score.
func (b *FindingIndex) Search(query string, limit int) ([]*SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("search query cannot be empty")
	}

	matchQuery := bleve.NewMatchQuery(query)
	searchReq := bleve.NewSearchRequest(matchQuery)
	searchReq.Size = limit
	searchReq.Fields = []string{"scan_id", "rule_id", "severity", "category", "source", "message", "file", "line", "confidence"}
	searchReq.Highlight = bleve.NewHighlight()

	searchResult, err := b.index.Search(searchReq)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results := make([]*SearchResult, 0, len(searchResult.Hits))
	for _, hit := range searchResult.Hits {
		results = append(results, &SearchResult{
			Finding: &FindingDocument{
				ScanID:     getStringField(hit.Fields, "scan_id"),
				RuleID:     getStringField(hit.Fields, "rule_id"),
				Severity:   getStringField(hit.Fields, "severity"),
				Category:   getStringField(hit.Fields, "category"),
				Source:     getStringField(hit.Fields, "source"),
				Message:    getStringField(hit.Fields, "message"),
				File:       getStringField(hit.Fields, "file"),
				Line:       getIntField(hit.Fields, "line"),
				Confidence: getFloatField(hit.Fields, "confidence"),
			},
			Score: hit.Score,
		})
	}
	return results, nil
}

// DocCount returns the number of finding documents in the index.
func (b *FindingIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

func getStringField(fields map[string]interface{}, name string) string {
	if v, ok := fields[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func getIntField(fields map[string]interface{}, name string) int {
	if v, ok := fields[name]; ok {
		if f, ok := v.(float64); ok {
			return int(f)
		}
	}
	return 0
}

func getFloatField(fields map[string]interface{}, name string) float64 {
	if v, ok := fields[name]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return 0
}
