package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newDictionaryCommand() *cobra.Command {
	rootCommand := cobra.Command{
		Use:   "dictionary",
		Short: "Inspect and refresh the canonical exam dictionary",
	}

	rootCommand.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show where the current dictionary snapshot came from",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			source := newDictionarySource(cfg)
			if _, err := source.GetSnapshot(cmd.Context()); err != nil {
				return fmt.Errorf("source.GetSnapshot > %w", err)
			}
			status, err := source.Status()
			if err != nil {
				return fmt.Errorf("source.Status > %w", err)
			}

			fmt.Printf("source:    %s\n", status.Source)
			fmt.Printf("version:   %s\n", status.Version)
			fmt.Printf("entries:   %d\n", status.TotalEntries)
			fmt.Printf("cache age: %s\n", status.CacheAge.Round(time.Second))
			fmt.Printf("remote:    %s\n", status.RemoteURL)
			return nil
		},
	})

	rootCommand.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Fetch the remote dictionary, bypassing the cache freshness check",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			source := newDictionarySource(cfg)
			snapshot, err := source.Refresh(cmd.Context())
			if err != nil {
				return fmt.Errorf("source.Refresh > %w", err)
			}
			fmt.Printf("dictionary %s loaded from %s (%d entries)\n",
				snapshot.Version, snapshot.SourceTag, len(snapshot.Entries))
			return nil
		},
	})

	rootCommand.AddCommand(&cobra.Command{
		Use:   "invalidate",
		Short: "Delete the local dictionary cache and validation token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			source := newDictionarySource(cfg)
			if err := source.InvalidateCache(); err != nil {
				return fmt.Errorf("source.InvalidateCache > %w", err)
			}
			fmt.Println("dictionary cache invalidated")
			return nil
		},
	})

	return &rootCommand
}
