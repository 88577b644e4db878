package normalizer

import (
	"fmt"
	"strings"

	"github.com/svgreve/tussnorm/internal/cache"
)

// FormatStatsMarkdown renders the run and cache statistics as a markdown
// section suitable for an import/audit report.
func FormatStatsMarkdown(stats RunStatistics, cacheStats cache.Stats) string {
	var b strings.Builder
	b.WriteString("## Normalização de Exames (TUSS)\n\n")
	b.WriteString("| Métrica | Valor |\n")
	b.WriteString("|---------|-------|\n")
	fmt.Fprintf(&b, "| Exames normalizados | %d |\n", stats.Total)
	fmt.Fprintf(&b, "| Cache hits (reuso) | %d |\n", stats.CacheHits)
	fmt.Fprintf(&b, "| Match exato | %d |\n", stats.Exact)
	fmt.Fprintf(&b, "| Match fuzzy | %d |\n", stats.Fuzzy)
	fmt.Fprintf(&b, "| Aguardando fallback | %d |\n", stats.NeedsFallback)
	fmt.Fprintf(&b, "| Resolvidos via fallback | %d |\n", stats.FallbackResolved)
	fmt.Fprintf(&b, "| Total no cache (acumulado) | %d |\n", cacheStats.TotalEntries)
	b.WriteString("\n")
	return b.String()
}

// FormatCacheMarkdown renders the cumulative cache state as a standalone
// markdown report, independent of any single run.
func FormatCacheMarkdown(cacheStats cache.Stats) string {
	var b strings.Builder
	b.WriteString("# Relatório de Normalização (TUSS)\n\n")
	b.WriteString("| Métrica | Valor |\n")
	b.WriteString("|---------|-------|\n")
	fmt.Fprintf(&b, "| Total de exames mapeados | %d |\n", cacheStats.TotalEntries)
	fmt.Fprintf(&b, "| Match exato | %d |\n", cacheStats.Exact)
	fmt.Fprintf(&b, "| Match fuzzy | %d |\n", cacheStats.Fuzzy)
	fmt.Fprintf(&b, "| Resolvidos via fallback | %d |\n", cacheStats.FallbackResolved)
	fmt.Fprintf(&b, "| Aguardando fallback | %d |\n", cacheStats.Unresolved)
	b.WriteString("\n")
	return b.String()
}
