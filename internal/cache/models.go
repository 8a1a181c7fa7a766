package cache

import (
	"encoding/json"
	"time"

	"github.com/skillscan/skillscan/internal/model"
)

// record is the on-disk payload behind one cache key (a ContentItem's
// virtual_path): a model.CacheEntry plus the bookkeeping the lookup
// semantics need.
type record struct {
	ContentHash string          `json:"content_hash"`
	RuleVersion string          `json:"rule_version"`
	CreatedAt   time.Time       `json:"created_at"`
	Findings    []model.Finding `json:"findings"`
}

// Stats tracks cache hit/miss/eviction counts across the process lifetime.
type Stats struct {
	HitCount     int `json:"hit_count"`
	MissCount    int `json:"miss_count"`
	EvictedCount int `json:"evicted_count"`
	TotalEntries int `json:"total_entries"`
}

func (r *record) MarshalBinary() ([]byte, error) {
	return json.Marshal(r)
}

func (r *record) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, r)
}

func (s *Stats) MarshalBinary() ([]byte, error) {
	return json.Marshal(s)
}

func (s *Stats) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, s)
}
