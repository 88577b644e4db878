package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/svgreve/tussnorm/internal/contrib"
)

func newContribCommand() *cobra.Command {
	rootCommand := cobra.Command{
		Use:   "contrib",
		Short: "Manage pending dictionary contributions",
	}

	rootCommand.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List contributions awaiting external review",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ledger := contrib.NewLedger(cfg.Contributions.LedgerPath)
			pending := ledger.Pending()
			if len(pending) == 0 {
				fmt.Println("no pending contributions")
				return nil
			}
			for _, record := range pending {
				fmt.Printf("%s → %s [%s] (%s)\n",
					record.RawName, record.ProposedCanonicalName, record.ProposedCode,
					record.SubmittedAt.Format("2006-01-02"))
			}
			return nil
		},
	})

	var outputFile string
	exportCommand := &cobra.Command{
		Use:   "export",
		Short: "Export pending contributions as JSON for the dictionary review process",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			ledger := contrib.NewLedger(cfg.Contributions.LedgerPath)
			contents, err := json.MarshalIndent(ledger.Pending(), "", "  ")
			if err != nil {
				return fmt.Errorf("json.MarshalIndent > %w", err)
			}
			if outputFile == "" {
				fmt.Println(string(contents))
				return nil
			}
			if err := os.WriteFile(outputFile, contents, 0644); err != nil {
				return fmt.Errorf("os.WriteFile(%s) > %w", outputFile, err)
			}
			fmt.Printf("exported %d pending contributions to %s\n", len(ledger.Pending()), outputFile)
			return nil
		},
	}
	exportCommand.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: stdout)")
	rootCommand.AddCommand(exportCommand)

	return &rootCommand
}
