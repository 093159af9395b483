// Package relations implements the relation-linking crawl subcommand.
package relations

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lawglot/lawglot-go/cmd/lstrm"
	"github.com/lawglot/lawglot-go/internal/conf"
)

// Command creates the relations subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relations",
		Short: "Crawl legal-to-daily term relations",
		Long:  "Expand every stored legal term to its daily-term relations and upsert the edges into the store. Requires a prior lstrm run for the seed list.",
		RunE: func(cmd *cobra.Command, args []string) error {
			resume, _ := cmd.Flags().GetBool("resume")
			return lstrm.RunCrawl(settings, "relations", resume)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}
	return cmd
}

// setupFlags configures flags specific to the relations command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().IntVar(&settings.Crawl.FlushEvery, "flush-every", viper.GetInt("crawl.flushevery"), "Relation seeds per committed batch")
	cmd.Flags().IntVar(&settings.Crawl.MaxTerms, "max-terms", viper.GetInt("crawl.maxterms"), "Stop after this many seeds (0 = unlimited)")
	cmd.Flags().DurationVar(&settings.LawAPI.Sleep, "sleep", viper.GetDuration("lawapi.sleep"), "Courtesy delay between upstream calls")
	cmd.Flags().DurationVar(&settings.LawAPI.Timeout, "timeout", viper.GetDuration("lawapi.timeout"), "Per-call upstream timeout")
	cmd.Flags().IntVar(&settings.LawAPI.MaxRetries, "retries", viper.GetInt("lawapi.maxretries"), "Attempts per transient upstream failure")
	cmd.Flags().Bool("resume", false, "Continue from the persisted cursor")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}
	return nil
}
