// Package contrib records newly confirmed mappings from the fallback tier as
// proposed dictionary entries. Merging them into the shared dictionary is an
// external, human-reviewed act; the ledger only produces and stores records.
package contrib

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/svgreve/tussnorm/internal/dictionary"
	"github.com/svgreve/tussnorm/internal/fileutil"
)

// Status tracks a record through the external review process.
type Status string

const (
	StatusPending  Status = "pending"
	StatusMerged   Status = "merged"
	StatusRejected Status = "rejected"
)

// Record is one proposed dictionary mapping.
type Record struct {
	RawName               string    `yaml:"raw_name"`
	ProposedCanonicalName string    `yaml:"proposed_canonical_name"`
	ProposedCode          string    `yaml:"proposed_code,omitempty"`
	Origin                string    `yaml:"origin"`
	Score                 float64   `yaml:"score"`
	SubmittedAt           time.Time `yaml:"submitted_at"`
	Status                Status    `yaml:"status"`
}

// Ledger is the append-only YAML store of contribution records. A missing or
// corrupt file degrades to an empty ledger.
type Ledger struct {
	path    string
	records []Record
}

func NewLedger(path string) *Ledger {
	ledger := &Ledger{path: path}
	ledger.records = ledger.load()
	return ledger
}

func (l *Ledger) load() []Record {
	contents, err := os.ReadFile(l.path)
	if err != nil {
		return nil
	}
	var records []Record
	if err := yaml.Unmarshal(contents, &records); err != nil {
		slog.Warn("contribution ledger is corrupt, starting empty", "path", l.path, "error", err)
		return nil
	}
	return records
}

// Record appends a pending contribution. A pending record with the same
// normalized raw name is superseded in place rather than duplicated; merged
// and rejected records are never touched.
func (l *Ledger) Record(rawName, proposedCanonicalName, proposedCode string, score float64) {
	key := dictionary.NormalizeName(rawName)
	record := Record{
		RawName:               rawName,
		ProposedCanonicalName: proposedCanonicalName,
		ProposedCode:          proposedCode,
		Origin:                "fallback",
		Score:                 score,
		SubmittedAt:           time.Now(),
		Status:                StatusPending,
	}
	for i := range l.records {
		if l.records[i].Status == StatusPending && dictionary.NormalizeName(l.records[i].RawName) == key {
			l.records[i] = record
			return
		}
	}
	l.records = append(l.records, record)
}

// Pending returns the records still awaiting external review, oldest first.
func (l *Ledger) Pending() []Record {
	pending := make([]Record, 0, len(l.records))
	for _, record := range l.records {
		if record.Status == StatusPending {
			pending = append(pending, record)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		if !pending[i].SubmittedAt.Equal(pending[j].SubmittedAt) {
			return pending[i].SubmittedAt.Before(pending[j].SubmittedAt)
		}
		return pending[i].RawName < pending[j].RawName
	})
	return pending
}

// SetStatus marks the pending record for rawName as merged or rejected,
// reflecting the outcome of the external review. Returns false when no
// pending record matches.
func (l *Ledger) SetStatus(rawName string, status Status) bool {
	key := dictionary.NormalizeName(rawName)
	for i := range l.records {
		if l.records[i].Status == StatusPending && dictionary.NormalizeName(l.records[i].RawName) == key {
			l.records[i].Status = status
			return true
		}
	}
	return false
}

// Save persists the ledger with the atomic replace discipline.
func (l *Ledger) Save() error {
	contents, err := yaml.Marshal(l.records)
	if err != nil {
		return fmt.Errorf("yaml.Marshal > %w", err)
	}
	if err := fileutil.WriteAtomic(l.path, contents, 0644); err != nil {
		return fmt.Errorf("fileutil.WriteAtomic(%s) > %w", l.path, err)
	}
	return nil
}
