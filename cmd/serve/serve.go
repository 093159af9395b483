// Package serve implements the HTTP API subcommand.
package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lawglot/lawglot-go/internal/conf"
	"github.com/lawglot/lawglot-go/internal/datastore"
	"github.com/lawglot/lawglot-go/internal/httpcontroller"
	"github.com/lawglot/lawglot-go/internal/lawapi"
	"github.com/lawglot/lawglot-go/internal/observability"
	"github.com/lawglot/lawglot-go/internal/resolver"
)

// Command creates the serve subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the translation HTTP API",
		Long:  "Start the HTTP server exposing the translate endpoint backed by the persisted term graph and the live upstream API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}
	return cmd
}

// setupFlags configures flags specific to the serve command.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVar(&settings.WebServer.Port, "port", viper.GetString("webserver.port"), "HTTP listen port")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}
	return nil
}

func runServe(settings *conf.Settings) error {
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

	svc := resolver.New(client, store, resolver.ConfigFromSettings(settings), metrics)
	defer svc.Close()

	server := httpcontroller.New(settings, svc, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
