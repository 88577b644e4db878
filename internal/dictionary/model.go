package dictionary

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entry is a single canonical exam with the raw name variants known to map to it.
type Entry struct {
	Code         string   `json:"code"`
	StandardName string   `json:"standard_name"`
	DisplayName  string   `json:"display_name,omitempty"`
	Category     string   `json:"category,omitempty"`
	Aliases      []string `json:"aliases,omitempty"`
}

// Display returns the short friendly name, falling back to the standard name.
func (e Entry) Display() string {
	if e.DisplayName != "" {
		return e.DisplayName
	}
	return e.StandardName
}

// DocumentMeta is the metadata block of the remote dictionary document.
type DocumentMeta struct {
	Source       string `json:"source"`
	Version      string `json:"version"`
	TotalEntries int    `json:"total_entries"`
}

// Document is the wire format of the dictionary as published remotely and as
// stored in the local cache file.
type Document struct {
	Meta    DocumentMeta `json:"_meta"`
	Entries []Entry      `json:"entries"`
}

// Validate checks the schema invariants of a fetched document. A document that
// fails validation is treated as an unusable source, not as a fatal error.
func (d Document) Validate() error {
	if len(d.Entries) == 0 {
		return fmt.Errorf("document has no entries")
	}
	codes := make(map[string]struct{}, len(d.Entries))
	for i, entry := range d.Entries {
		if entry.Code == "" {
			return fmt.Errorf("entry %d has an empty code", i)
		}
		if entry.StandardName == "" {
			return fmt.Errorf("entry %s has an empty standard name", entry.Code)
		}
		if _, ok := codes[entry.Code]; ok {
			return fmt.Errorf("duplicate code %s", entry.Code)
		}
		codes[entry.Code] = struct{}{}
	}
	return nil
}

// Snapshot is one immutable version of the full dictionary. It is replaced
// wholesale when a newer document is fetched, never mutated in place.
type Snapshot struct {
	Version   string
	SourceTag string
	FetchedAt time.Time
	Entries   []Entry
}

// ParseDocument decodes and validates a dictionary document.
func ParseDocument(contents []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(contents, &doc); err != nil {
		return Document{}, fmt.Errorf("json.Unmarshal > %w", err)
	}
	if err := doc.Validate(); err != nil {
		return Document{}, fmt.Errorf("doc.Validate > %w", err)
	}
	return doc, nil
}

// NewSnapshot builds an immutable snapshot from a validated document.
func NewSnapshot(doc Document, sourceTag string, fetchedAt time.Time) *Snapshot {
	entries := make([]Entry, len(doc.Entries))
	copy(entries, doc.Entries)
	return &Snapshot{
		Version:   doc.Meta.Version,
		SourceTag: sourceTag,
		FetchedAt: fetchedAt,
		Entries:   entries,
	}
}
