// Package lstrm implements the legal-term listing crawl subcommand.
package lstrm

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lawglot/lawglot-go/internal/conf"
	"github.com/lawglot/lawglot-go/internal/crawler"
	"github.com/lawglot/lawglot-go/internal/datastore"
	"github.com/lawglot/lawglot-go/internal/lawapi"
	"github.com/lawglot/lawglot-go/internal/observability"
)

// Command creates the lstrm subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lstrm",
		Short: "Crawl the legal-term listing",
		Long:  "Sweep the upstream legal-term listing by initial-consonant group and upsert the terms into the store. Interrupting the run keeps the cursor, restart with --resume to continue.",
		RunE: func(cmd *cobra.Command, args []string) error {
			resume, _ := cmd.Flags().GetBool("resume")
			return RunCrawl(settings, "lstrm", resume)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}
	return cmd
}

// setupFlags configures flags specific to the lstrm command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().IntVar(&settings.Crawl.Display, "display", viper.GetInt("crawl.display"), "Listing page size (1-100)")
	cmd.Flags().IntVar(&settings.Crawl.MaxTerms, "max-terms", viper.GetInt("crawl.maxterms"), "Stop after this many terms (0 = unlimited)")
	cmd.Flags().DurationVar(&settings.LawAPI.Sleep, "sleep", viper.GetDuration("lawapi.sleep"), "Courtesy delay between upstream calls")
	cmd.Flags().DurationVar(&settings.LawAPI.Timeout, "timeout", viper.GetDuration("lawapi.timeout"), "Per-call upstream timeout")
	cmd.Flags().IntVar(&settings.LawAPI.MaxRetries, "retries", viper.GetInt("lawapi.maxretries"), "Attempts per transient upstream failure")
	cmd.Flags().Bool("resume", false, "Continue from the persisted cursor")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}
	return nil
}

// RunCrawl wires the store, the API client and the crawler, then runs one
// strategy to completion. SIGINT and SIGTERM cancel the run; the persisted
// cursor survives for a later --resume.
func RunCrawl(settings *conf.Settings, strategy string, resume bool) error {
	if err := conf.RequireAPIKey(settings); err != nil {
		return err
	}

	store := datastore.New(settings)
	if store == nil {
		return fmt.Errorf("no database backend enabled in configuration")
	}
	if err := store.Open(); err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Printf("error closing store: %v\n", err)
		}
	}()

	client, err := lawapi.NewClient(lawapi.ConfigFromSettings(settings))
	if err != nil {
		return err
	}
	defer client.Close()

	metrics, err := observability.NewMetrics()
	if err != nil {
		return err
	}
	client.SetMetrics(metrics)

	opts := crawler.OptionsFromSettings(settings)
	opts.Resume = resume
	c := crawler.New(client, store, opts, metrics)
	defer c.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := c.Run(ctx, strategy); err != nil {
		return err
	}

	report, err := store.Reconcile(strategy)
	if err != nil {
		return err
	}
	fmt.Printf("crawl %s done: %d batches, %d rows, consistent=%v\n",
		strategy, report.Batches, report.RowCount, report.Consistent)
	return nil
}
