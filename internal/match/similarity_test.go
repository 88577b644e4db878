package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinRatio(t *testing.T) {
	tcs := map[string]struct {
		a, b string
		want float64
	}{
		"identical":                    {a: "USG ABDOME TOTAL", b: "USG ABDOME TOTAL", want: 100},
		"empty left":                   {a: "", b: "USG", want: 0},
		"empty right":                  {a: "USG", b: "", want: 0},
		"containment uses length ratio": {a: "USG ABDOME", b: "USG ABDOME TOTAL", want: 62.5},
		"single edit":                  {a: "HEMOGRAMA", b: "HEMOGRAMA5", want: 90},
	}
	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, tc.want, levenshteinRatio(tc.a, tc.b), 0.01)
		})
	}
}

func TestLevenshteinRatio_IsSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"USG ABDOME", "USG ABDOME TOTAL"},
		{"HEMOGRAMA", "HEMOGRAMA COMPLETO"},
		{"RX TORAX", "TOMOGRAFIA DE TORAX"},
	}
	for _, pair := range pairs {
		assert.Equal(t, levenshteinRatio(pair[0], pair[1]), levenshteinRatio(pair[1], pair[0]))
	}
}

func TestTokenSortRatio(t *testing.T) {
	t.Run("word order does not matter", func(t *testing.T) {
		assert.Equal(t, 100.0, tokenSortRatio("ABDOME TOTAL USG", "USG ABDOME TOTAL"))
	})
	t.Run("different tokens still differ", func(t *testing.T) {
		assert.Less(t, tokenSortRatio("USG PELVICA", "USG ABDOME TOTAL"), 100.0)
	})
}

func TestSimilarity(t *testing.T) {
	t.Run("takes the better of the two ratios", func(t *testing.T) {
		a, b := "TOTAL ABDOME USG", "USG ABDOME TOTAL"
		assert.Equal(t, 100.0, Similarity(a, b))
		assert.Less(t, levenshteinRatio(a, b), 100.0)
	})

	t.Run("abbreviation scores by containment", func(t *testing.T) {
		score := Similarity("USG ABDOME", "USG ABDOME TOTAL")
		assert.InDelta(t, 62.5, score, 0.01)
	})

	t.Run("closer names score higher", func(t *testing.T) {
		near := Similarity("HEMOGRAMA COMPLETO", "HEMOGRAMA COMPLETO C/ PLAQUETAS")
		far := Similarity("HEMOGRAMA COMPLETO", "TOMOGRAFIA DE CRANIO")
		assert.Greater(t, near, far)
	})
}
