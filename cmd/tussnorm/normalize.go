package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/svgreve/tussnorm/internal/match"
	"github.com/svgreve/tussnorm/internal/normalizer"
	"github.com/svgreve/tussnorm/internal/resolver"
	"github.com/svgreve/tussnorm/internal/resolver/openai"
)

type outputFormat string

func (f *outputFormat) Set(val string) error {
	for _, format := range allOutputFormats {
		if val == string(format) {
			*f = format
			return nil
		}
	}
	return fmt.Errorf("invalid output format: %s", val)
}

func (f outputFormat) String() string {
	return string(f)
}

func (f *outputFormat) Type() string {
	return "format"
}

const (
	outputText outputFormat = "text"
	outputJSON outputFormat = "json"
)

var (
	_                pflag.Value = (*outputFormat)(nil)
	allOutputFormats             = []outputFormat{outputText, outputJSON}
)

func newNormalizeCommand() *cobra.Command {
	var (
		batchFile   string
		showStats   bool
		runResolver bool
	)
	format := outputText

	command := &cobra.Command{
		Use:   "normalize [exam name]",
		Short: "Normalize one exam name or a batch file (one name per line)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && batchFile == "" {
				return fmt.Errorf("provide an exam name or use --batch with a file")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			coordinator, err := newNormalizer(ctx, cfg)
			if err != nil {
				return err
			}

			var rawNames []string
			if batchFile != "" {
				rawNames, err = readBatchFile(batchFile)
				if err != nil {
					return err
				}
			} else {
				rawNames = args
			}

			results, stats, err := coordinator.NormalizeBatch(rawNames)
			if err != nil {
				return err
			}

			if runResolver {
				if cfg.OpenAI.APIKey == "" {
					return fmt.Errorf("--resolve requires OPENAI_API_KEY to be set")
				}
				client := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, resolver.DefaultMaxRetryAttempts)
				defer func() {
					_ = client.Close()
				}()
				results, err = coordinator.ResolveFallbacks(ctx, results, client)
				if err != nil {
					return fmt.Errorf("coordinator.ResolveFallbacks > %w", err)
				}
				stats = coordinator.Stats()
			}

			if format == outputJSON {
				encoder := json.NewEncoder(os.Stdout)
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(results); err != nil {
					return fmt.Errorf("encoder.Encode > %w", err)
				}
			} else {
				for _, result := range results {
					printResult(result)
				}
			}

			if showStats && format == outputText {
				fmt.Println()
				fmt.Print(normalizer.FormatStatsMarkdown(stats, coordinator.CacheStats()))
			}
			return nil
		},
	}

	command.Flags().StringVarP(&batchFile, "batch", "b", "", "file with exam names, one per line")
	command.Flags().BoolVar(&showStats, "stats", false, "print run statistics")
	command.Flags().BoolVar(&runResolver, "resolve", false, "resolve needs_fallback records with the OpenAI resolver")
	command.Flags().Var(&format, "output", fmt.Sprintf("output format. Possible values are %v", allOutputFormats))
	return command
}

func readBatchFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	var names []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			names = append(names, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner.Err > %w", err)
	}
	return names, nil
}

func printResult(result match.Result) {
	switch result.Tier {
	case match.TierExact:
		color.Green("  ✓ %s → %s [%s, exact]", result.RawName, result.DisplayName, result.Code)
	case match.TierFuzzy:
		color.Yellow("  ~ %s → %s [%s, fuzzy %.0f%%]", result.RawName, result.DisplayName, result.Code, result.Score)
	case match.TierFallbackResolved:
		color.Cyan("  + %s → %s [fallback resolved]", result.RawName, result.CanonicalName)
	default:
		color.Red("  ✗ %s (best score %.0f%%, needs fallback)", result.RawName, result.Score)
	}
}
