package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"launchpad/internal/backend"
	"launchpad/internal/catalog"
	"launchpad/internal/config"
	"launchpad/internal/gateway"
	"launchpad/internal/httpapi"
	"launchpad/internal/launcher"
	"launchpad/pkg/types"
)

// rootOpts collects persistent flag values before config merging.
type rootOpts struct {
	cfgPath    string
	backendURL string
	logLevel   string
}

func buildRootCmd() *cobra.Command {
	opts := &rootOpts{}
	root := &cobra.Command{
		Use:           "launchpad",
		Short:         "Browse a model catalog and launch instances on a serving backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.cfgPath, "config", "", "Config file (.yaml/.json/.toml)")
	root.PersistentFlags().StringVar(&opts.backendURL, "backend-url", "", "Serving backend base URL (defaults LAUNCHPAD_BACKEND_URL or http://127.0.0.1:9997)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error")

	root.AddCommand(buildServeCmd(opts))
	root.AddCommand(buildLaunchCmd(opts))
	root.AddCommand(buildModelsCmd(opts))
	root.AddCommand(buildDescribeCmd(opts))
	root.AddCommand(buildTerminateCmd(opts))
	return root
}

// loadConfig merges file config, environment and flags; flags win.
func loadConfig(opts *rootOpts) (config.Config, error) {
	var cfg config.Config
	if opts.cfgPath != "" {
		loaded, err := config.Load(opts.cfgPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	if opts.backendURL != "" {
		cfg.BackendURL = opts.backendURL
	}
	if cfg.BackendURL == "" {
		cfg.BackendURL = os.Getenv("LAUNCHPAD_BACKEND_URL")
	}
	if cfg.BackendURL == "" {
		cfg.BackendURL = "http://127.0.0.1:9997"
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9090"
	}
	if cfg.CatalogDir == "" {
		cfg.CatalogDir = "./catalog"
	}
	return cfg, nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).With().Timestamp().Logger()
}

func newClient(cfg config.Config) *backend.Client {
	return backend.NewClient(
		cfg.BackendURL,
		time.Duration(cfg.RequestTimeoutSec)*time.Second,
		time.Duration(cfg.ConnectTimeoutSec)*time.Second,
	)
}

func buildServeCmd(opts *rootOpts) *cobra.Command {
	var addr, catalogDir string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the launch gateway HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if catalogDir != "" {
				cfg.CatalogDir = catalogDir
			}
			log := newLogger(cfg.LogLevel)

			entries, err := catalog.LoadDir(cfg.CatalogDir)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			log.Info().Int("entries", len(entries)).Str("dir", cfg.CatalogDir).Msg("catalog loaded")

			be := newClient(cfg)
			seq := launcher.NewSequencer(launcher.SequencerConfig{
				Backend: be,
				Opener:  backend.ExecOpener{Command: cfg.OpenCommand},
				Gate:    launcher.NewGate(),
				Logger:  log,
			})
			gw := gateway.New(entries, seq, be)

			baseCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			httpapi.SetBaseContext(baseCtx)
			httpapi.SetLogger(log)
			httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins,
				[]string{"GET", "POST", "DELETE"}, []string{"Content-Type", "X-Log-Level"})

			srv := &http.Server{Addr: cfg.Addr, Handler: httpapi.NewMux(gw)}
			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", cfg.Addr).Str("backend", cfg.BackendURL).Msg("launchpad listening")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-baseCtx.Done():
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("graceful shutdown error")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address, e.g. :9090")
	cmd.Flags().StringVar(&catalogDir, "catalog-dir", "", "Directory of catalog entry files")
	return cmd
}

func buildLaunchCmd(opts *rootOpts) *cobra.Command {
	var catalogDir, model, format, size, quantization string
	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Launch a model instance directly from the CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if catalogDir != "" {
				cfg.CatalogDir = catalogDir
			}
			log := newLogger(cfg.LogLevel)

			entries, err := catalog.LoadDir(cfg.CatalogDir)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			var entry types.CatalogEntry
			found := false
			for _, e := range entries {
				if e.Name == model {
					entry = e
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("model not found in catalog: %s", model)
			}

			be := newClient(cfg)
			seq := launcher.NewSequencer(launcher.SequencerConfig{
				Backend: be,
				Opener:  backend.ExecOpener{Command: cfg.OpenCommand},
				Logger:  log,
			})
			resp, err := seq.Launch(cmd.Context(), entry, types.Selection{
				Format:       format,
				Size:         size,
				Quantization: quantization,
			})
			if err != nil {
				return err
			}
			fmt.Printf("launched %s\nendpoint: %s\n", resp.ModelUID, resp.Endpoint)
			return nil
		},
	}
	cmd.Flags().StringVar(&catalogDir, "catalog-dir", "", "Directory of catalog entry files")
	cmd.Flags().StringVar(&model, "model", "", "Catalog entry name")
	cmd.Flags().StringVar(&format, "format", "", "Weight format, e.g. pytorch")
	cmd.Flags().StringVar(&size, "size", "", "Size in billions, e.g. 7")
	cmd.Flags().StringVar(&quantization, "quantization", "", "Quantization, e.g. int4")
	_ = cmd.MarkFlagRequired("model")
	return cmd
}

func buildModelsCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List running instances on the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			running, err := newClient(cfg).ListModels(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(running)
		},
	}
}

func buildDescribeCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <model-uid>",
		Short: "Show the backend's detail document for one instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			info, err := newClient(cfg).DescribeModel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(info)
		},
	}
}

func buildTerminateCmd(opts *rootOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "terminate <model-uid>",
		Short: "Stop and remove a running instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := newClient(cfg).TerminateModel(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("terminated", args[0])
			return nil
		},
	}
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
