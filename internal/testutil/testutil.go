// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/svgreve/tussnorm/internal/dictionary"
)

// NewTestDocument returns a small dictionary document covering the exam
// categories the matching tests exercise.
func NewTestDocument() dictionary.Document {
	return dictionary.Document{
		Meta: dictionary.DocumentMeta{
			Source:       "test",
			Version:      "2025.01-test",
			TotalEntries: 4,
		},
		Entries: []dictionary.Entry{
			{
				Code:         "40901122",
				StandardName: "Ultrassonografia de abdome total",
				DisplayName:  "USG de abdome total",
				Category:     "Ultrassonografia",
				Aliases:      []string{"USG ABDOME TOTAL", "US ABDOME TOTAL", "ECOGRAFIA DE ABDOME TOTAL"},
			},
			{
				Code:         "40304361",
				StandardName: "Hemograma com contagem de plaquetas ou frações (eritrograma, leucograma, plaquetas)",
				DisplayName:  "Hemograma completo",
				Category:     "Análises Clínicas",
				Aliases:      []string{"HMG COMPLETO", "HEMOGRAMA COMPLETO"},
			},
			{
				Code:         "40808012",
				StandardName: "Radiografia de tórax (PA e perfil)",
				DisplayName:  "RX de tórax",
				Category:     "Radiologia",
				Aliases:      []string{"RX TORAX PA E PERFIL", "RAIO X DE TORAX"},
			},
			{
				Code:         "40302733",
				StandardName: "Tireoestimulante, hormônio (TSH)",
				DisplayName:  "TSH",
				Category:     "Análises Clínicas",
				Aliases:      []string{"TSH ULTRA SENSIVEL"},
			},
		},
	}
}

// NewTestSnapshot builds an in-memory snapshot of the test document.
func NewTestSnapshot(t *testing.T) *dictionary.Snapshot {
	t.Helper()
	doc := NewTestDocument()
	require.NoError(t, doc.Validate())
	return dictionary.NewSnapshot(doc, dictionary.SourceBundled, time.Now())
}

// WriteDictionaryFile writes doc as JSON into dir under the given file name and
// returns the full path.
func WriteDictionaryFile(t *testing.T, dir, fileName string, doc dictionary.Document) string {
	t.Helper()
	contents, err := json.Marshal(doc)
	require.NoError(t, err)
	path := filepath.Join(dir, fileName)
	require.NoError(t, os.WriteFile(path, contents, 0644))
	return path
}
