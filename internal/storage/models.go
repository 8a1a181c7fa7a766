package storage

import (
	"encoding/json"
	"time"

	"github.com/skillscan/skillscan/internal/model"
)

// Bucket names for the bbolt-backed Result Store.
const (
	ScansBucket = "scans"
	MetaBucket  = "meta"
)

// Meta keys.
const (
	SchemaVersionKey = "schema"
)

// CurrentSchemaVersion is bumped whenever the ScanRecord envelope's shape
// changes in a way old records can't be read back as.
const CurrentSchemaVersion = 1

// scanRecordEnvelope is the bbolt-persisted form of a model.ScanRecord.
type scanRecordEnvelope struct {
	ID          string            `json:"id"`
	StartedAt   time.Time         `json:"started_at"`
	FinishedAt  time.Time         `json:"finished_at"`
	RuleVersion string            `json:"rule_version"`
	Options     map[string]string `json:"options"`
	Result      model.ScanResult  `json:"result"`
}

func toEnvelope(r model.ScanRecord) *scanRecordEnvelope {
	return &scanRecordEnvelope{
		ID:          r.ID,
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		RuleVersion: r.RuleVersion,
		Options:     r.Options,
		Result:      r.Result,
	}
}

func (e *scanRecordEnvelope) toRecord() model.ScanRecord {
	return model.ScanRecord{
		ID:          e.ID,
		StartedAt:   e.StartedAt,
		FinishedAt:  e.FinishedAt,
		RuleVersion: e.RuleVersion,
		Options:     e.Options,
		Result:      e.Result,
	}
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (e *scanRecordEnvelope) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (e *scanRecordEnvelope) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}
