// main.go sets up the command-line interface for HashGen using Cobra. The
// CLI is a thin shell over the snippet store and signing engine: it collects
// payload, passcode, api key and key order, and prints whatever digest or
// error the engine returns.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	bunrepo "github.com/Thongheng/HashGen/internal/storage/bun"
	filestore "github.com/Thongheng/HashGen/internal/storage/file"
	"github.com/Thongheng/HashGen/pkg/interfaces/logger"
	"github.com/Thongheng/HashGen/pkg/interfaces/store"
	"github.com/Thongheng/HashGen/pkg/snippets"
)

var version = "dev" // set by the linker

var cfgFile string
var rootCmd *cobra.Command

func main() {
	if err := rootCmd.Execute(); err != nil {
		// The error is already printed by Cobra on failure.
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd = newRootCmd()

	// Defaults used when not set in the config file.
	viper.SetDefault("store.backend", "file")
	viper.SetDefault("store.path", "")
	viper.SetDefault("store.dsn", "file:hashgen.db")
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hashgen",
		Short: "HashGen computes custom HMAC-style signatures from stored snippets.",
		Long: `HashGen stores small signing algorithms ("snippets") and executes them
against a JSON payload to produce a keyed digest, for interoperability
testing against third-party APIs requiring custom HMAC-style signatures.

Snippets are JavaScript and must define:

    generate(payload, passcode, apiKey, keyOrder)`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default hashgen.yaml in the working directory)")
	cmd.AddCommand(newGenerateCmd())
	cmd.AddCommand(newSnippetsCmd())
	return cmd
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("hashgen")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}
	// The config file is optional; defaults cover the common case.
	_ = viper.ReadInConfig()
}

// openService builds the snippet service for the configured storage backend.
// The returned cleanup must run after the command finishes.
func openService(ctx context.Context, lgr logger.Logger) (*snippets.Service, func(), error) {
	cleanup := func() {}
	var repo store.Repository

	switch backend := viper.GetString("store.backend"); backend {
	case "", "file":
		path := viper.GetString("store.path")
		if path == "" {
			path = filestore.DefaultPath()
		}
		repo = filestore.New(path, filestore.WithLogger(lgr))
	case "sqlite":
		db, err := bunrepo.OpenSQLite(ctx, viper.GetString("store.dsn"))
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { _ = db.Close() }
		repo, err = bunrepo.New(ctx, db, bunrepo.WithLogger(lgr))
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
	default:
		return nil, cleanup, fmt.Errorf("unsupported store backend %q", backend)
	}

	svc, err := snippets.New(ctx, repo, snippets.WithLogger(lgr))
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return svc, cleanup, nil
}
