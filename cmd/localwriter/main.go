package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/germanamz/localwriter/pkg/apiclient"
	"github.com/germanamz/localwriter/pkg/config"
	"github.com/germanamz/localwriter/pkg/logging"
	"github.com/germanamz/localwriter/pkg/prefs"
	"github.com/germanamz/localwriter/pkg/writerdir"
	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	envFile string
	apiURL  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "localwriter",
		Short: "Local AI Writer, a terminal client for a local text-generation backend",
		Long: "Local AI Writer sends a prompt and a temperature to a locally hosted model and shows the generated text.\n" +
			"Without a subcommand it opens the interactive writer.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env", ".env", "path to .env file (ignored if missing)")
	cmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "backend URL (overrides LOCALWRITER_API_URL)")

	cmd.AddCommand(
		newGenerateCmd(opts),
		newHealthCmd(opts),
		newLogsCmd(opts),
		newInfoCmd(opts),
		newSettingsCmd(opts),
	)

	return cmd
}

// services is everything a command needs, built from the configuration.
type services struct {
	cfg    config.Config
	dir    writerdir.Dir
	log    *slog.Logger
	client *apiclient.Client
	prefs  *prefs.Store

	logFile io.Closer
}

// setup resolves the configuration and wires the client, the preferences
// store and the file logger. The caller must Close the result.
func (o *rootOptions) setup() (*services, error) {
	cfg, err := config.Load(o.envFile)
	if err != nil {
		return nil, err
	}

	if o.apiURL != "" {
		cfg.APIURL = strings.TrimSuffix(strings.TrimSpace(o.apiURL), "/")
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	dir, err := dataDir(cfg)
	if err != nil {
		return nil, err
	}

	if err := writerdir.EnsureStructure(dir); err != nil {
		return nil, err
	}

	log, logFile, err := logging.OpenFile(dir.LogPath(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	client := apiclient.New(cfg.APIURL,
		apiclient.WithTimeout(cfg.Timeout),
		apiclient.WithHealthTimeout(cfg.HealthTimeout),
		apiclient.WithLogger(log),
	)

	return &services{
		cfg:     cfg,
		dir:     dir,
		log:     log,
		client:  client,
		prefs:   prefs.New(dir.PreferencesPath(), prefs.WithLogger(log)),
		logFile: logFile,
	}, nil
}

// Close releases the log file.
func (s *services) Close() error {
	if s.logFile == nil {
		return nil
	}

	if err := s.logFile.Close(); err != nil {
		return fmt.Errorf("close log: %w", err)
	}

	return nil
}

func dataDir(cfg config.Config) (writerdir.Dir, error) {
	if cfg.DataDir != "" {
		return writerdir.New(cfg.DataDir), nil
	}

	return writerdir.Default()
}
