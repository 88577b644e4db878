package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/svgreve/tussnorm/internal/cache"
	"github.com/svgreve/tussnorm/internal/fileutil"
	"github.com/svgreve/tussnorm/internal/normalizer"
	"github.com/svgreve/tussnorm/internal/report"
)

func newReportCommand() *cobra.Command {
	var producePDF bool

	command := &cobra.Command{
		Use:   "report",
		Short: "Write a markdown report of the accumulated normalization state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			resultCache := cache.NewResultCache(cfg.Cache.Path)
			contents := normalizer.FormatCacheMarkdown(resultCache.Stats())

			fileName := fmt.Sprintf("normalizacao_%s.md", time.Now().Format("2006-01-02"))
			markdownPath := filepath.Join(cfg.Reports.Directory, fileName)
			if err := fileutil.WriteAtomic(markdownPath, []byte(contents), 0644); err != nil {
				return fmt.Errorf("fileutil.WriteAtomic(%s) > %w", markdownPath, err)
			}
			fmt.Printf("report written to %s\n", markdownPath)

			if producePDF {
				pdfPath, err := report.ConvertMarkdownToPDF(markdownPath)
				if err != nil {
					return fmt.Errorf("report.ConvertMarkdownToPDF > %w", err)
				}
				fmt.Printf("PDF written to %s\n", pdfPath)
			}
			return nil
		},
	}

	command.Flags().BoolVar(&producePDF, "pdf", false, "also render the report as a PDF")
	return command
}
