// Package cli provides the command-line interface for soractl.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/raphaelgruber/soractl/internal/client"
	"github.com/raphaelgruber/soractl/internal/config"
	"github.com/raphaelgruber/soractl/internal/db"
	"github.com/raphaelgruber/soractl/internal/kv"
	"github.com/raphaelgruber/soractl/internal/metrics"
	"github.com/raphaelgruber/soractl/internal/prompts"
	"github.com/raphaelgruber/soractl/internal/service"
	"github.com/raphaelgruber/soractl/internal/storage"
	"github.com/spf13/cobra"
)

// annotationAPI marks commands that talk to the provider.
const annotationAPI = "soractl/api"

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Wired in PersistentPreRunE
	cfg       config.Config
	logger    *slog.Logger
	collector *metrics.Collector
	apiClient *client.Client
	videoSvc  *service.VideoService
	closers   []func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "soractl",
	Short: "Generate and manage Sora videos from the terminal",
	Long: `soractl drives the OpenAI video generation API: submit prompts, watch
jobs render, download finished videos before they expire, and reuse
prompts from a local history.

Configuration comes from environment variables (OPENAI_API_KEY, SORA_*),
an optional .env file and ~/.config/soractl/config.yaml.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		var closeLog func() error
		logger, closeLog = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		closers = append(closers, closeLog)

		ctx := cmd.Context()
		store, closeStore, err := openStore(ctx, cfg, logger)
		if err != nil {
			return err
		}
		closers = append(closers, closeStore)

		collector = metrics.NewCollector()
		if needsAPI(cmd) {
			if err := cfg.RequireAPIKey(); err != nil {
				return err
			}
			apiClient, err = client.New(client.Options{
				APIKey:       cfg.APIKey,
				BaseURL:      cfg.APIBaseURL,
				SiteURL:      cfg.SiteURL,
				Organization: cfg.Organization,
				HTTPClient:   &http.Client{Timeout: cfg.HTTPTimeout},
				Logger:       logger,
				Metrics:      collector,
			})
			if err != nil {
				return fmt.Errorf("init api client: %w", err)
			}
		}

		var api service.VideoAPI
		if apiClient != nil {
			api = apiClient
		}
		videoSvc = service.NewVideoService(
			api,
			prompts.NewAssociationStore(store, logger),
			prompts.NewHistoryStore(store, logger),
			storage.NewDownloads(cfg.DownloadDir),
			logger,
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if verbose && collector != nil {
			printMetrics(collector.Snapshot())
		}
	},
}

// needsAPI reports whether cmd or one of its parents is marked as talking to the provider.
func needsAPI(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[annotationAPI] == "true" {
			return true
		}
	}
	return false
}

var apiAnnotation = map[string]string{annotationAPI: "true"}

// openStore builds the key-value backend selected by cfg.Store.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (kv.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Store {
	case config.StoreMemory:
		return kv.NewMemoryStore(), noop, nil

	case config.StoreRedis:
		rs := kv.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisPrefix)
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		return rs, rs.Close, nil

	case config.StoreSurrealDB:
		c, err := db.NewClient(ctx, db.Config{
			URL:       cfg.SurrealDBURL,
			Namespace: cfg.SurrealDBNamespace,
			Database:  cfg.SurrealDBDatabase,
			Username:  cfg.SurrealDBUser,
			Password:  cfg.SurrealDBPass,
			AuthLevel: cfg.SurrealDBAuthLevel,
		}, log)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := c.InitSchema(ctx); err != nil {
			_ = c.Close(ctx)
			return nil, nil, fmt.Errorf("initialize schema: %w", err)
		}
		return c, func() error { return c.Close(context.Background()) }, nil

	default:
		fs, err := kv.NewFileStore(cfg.StoreDir)
		if err != nil {
			return nil, nil, err
		}
		return fs, noop, nil
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	defer closeAll()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var actionErr *service.ActionError
	if errors.As(err, &actionErr) {
		printActionError(os.Stderr, actionErr)
		return errReported
	}
	return err
}

// errReported signals a failure whose details were already printed.
var errReported = errors.New("command failed")

// ErrReported reports whether err was already shown to the user.
func ErrReported(err error) bool {
	return errors.Is(err, errReported)
}

func closeAll() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: cleanup failed: %v\n", err)
		}
	}
	closers = nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print API timings after the command")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(urlCmd)
	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(regenerateCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(openCmd)
}
