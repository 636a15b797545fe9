// mocklet CLI - serve mock APIs from declarative route files.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mocklet/mocklet/pkg/config"
	"github.com/mocklet/mocklet/pkg/logging"
	"github.com/mocklet/mocklet/pkg/mocklet"
	"github.com/mocklet/mocklet/pkg/openapi"
	"github.com/mocklet/mocklet/pkg/server"
)

// Build-time variables set via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "mocklet",
		Short:         "Serve mock HTTP APIs from declarative route files",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newValidateCmd(), newVersionCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var (
		addr        string
		configPath  string
		configDir   string
		openapiPath string
		logLevel    string
		logFormat   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the mock server",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New(logging.Config{
				Level:  logging.ParseLevel(logLevel),
				Format: logging.ParseFormat(logFormat),
			})

			inst := mocklet.New(mocklet.WithLogger(log))

			if configPath != "" {
				rf, err := config.Load(configPath)
				if err != nil {
					return err
				}
				if err := config.Apply(rf, inst); err != nil {
					return err
				}
				log.Info("loaded route file", "path", configPath, "routes", len(rf.Routes), "resources", len(rf.Resources))
			}

			if configDir != "" {
				result, err := config.LoadDir(configDir, "")
				if err != nil {
					return err
				}
				for _, loadErr := range result.Errors {
					log.Warn("skipping route file", "error", loadErr)
				}
				for _, rf := range result.Files {
					if err := config.Apply(rf, inst); err != nil {
						return err
					}
				}
				log.Info("loaded route directory", "path", configDir, "files", len(result.Files))
			}

			if openapiPath != "" {
				plugin, err := openapi.NewFromFile(openapiPath)
				if err != nil {
					return err
				}
				if err := inst.Pipe(plugin); err != nil {
					return err
				}
				log.Info("installed OpenAPI routes", "path", openapiPath)
			}

			if len(inst.Routes()) == 0 {
				return fmt.Errorf("no routes configured; pass --config, --config-dir, or --openapi")
			}

			srv := server.New(inst, server.WithLogger(log))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				_ = srv.Shutdown(context.Background())
			}()

			return srv.ListenAndServe(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":4520", "listen address")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "route file (YAML or JSON)")
	cmd.Flags().StringVar(&configDir, "config-dir", "", "directory of route files")
	cmd.Flags().StringVar(&openapiPath, "openapi", "", "OpenAPI document to auto-register routes from")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	return cmd
}

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a route file without starting the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rf, err := config.Load(args[0])
			if err != nil {
				return err
			}
			// Dry-run the registration to catch bad patterns.
			if err := config.Apply(rf, mocklet.New()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: OK (%d routes, %d resources)\n",
				args[0], len(rf.Routes), len(rf.Resources))
			return nil
		},
	}
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mocklet %s (commit %s, built %s)\n", version, commit, buildDate)
		},
	}
}
