package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirius-dms/dms-client/internal/apiclient"
	"github.com/sirius-dms/dms-client/internal/async"
	"github.com/sirius-dms/dms-client/internal/config"
	"github.com/sirius-dms/dms-client/internal/credential"
	"github.com/sirius-dms/dms-client/internal/logging"
	"github.com/sirius-dms/dms-client/internal/notify"
	"github.com/sirius-dms/dms-client/internal/services"
	"github.com/sirius-dms/dms-client/internal/session"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const version = "0.1.0"

// For testing
var (
	osExit = os.Exit
	fsys   = afero.NewOsFs()
	stdin  = io.Reader(os.Stdin)
)

// Global flags
var (
	envFile   string
	apiURL    string
	logLevel  string
	storeKind string
)

// app is everything a command needs, built once per invocation.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   credential.Store
	client  *apiclient.Client
	svc     *services.Services
	session *session.Session
	notes   *notify.Center

	out     io.Writer
	errOut  io.Writer
	closers []func() error
}

func newApp(cmd *cobra.Command) (*app, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if storeKind != "" {
		cfg.CredentialStore = storeKind
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.NewLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		out:    cmd.OutOrStdout(),
		errOut: cmd.ErrOrStderr(),
	}
	a.closers = append(a.closers, func() error { _ = logger.Sync(); return nil })

	a.store, err = a.openStore()
	if err != nil {
		return nil, err
	}

	a.client, err = apiclient.New(apiclient.Config{
		BaseURL:   cfg.APIURL,
		Timeout:   cfg.RequestTimeout,
		CacheTTL:  cfg.CacheTTL,
		UserAgent: "dms-cli/" + version,
	}, a.store, logger)
	if err != nil {
		return nil, err
	}

	a.svc = services.New(a.client, logger)
	a.session = session.New(a.svc.Auth, a.store, logger)
	a.notes = notify.NewCenter(cfg.NotifyDelay, logger)
	a.closers = append(a.closers, func() error { a.notes.Clear(); return nil })
	a.closers = append(a.closers, printNotifications(a.notes, a.errOut))

	logger.Debug("client initialized",
		zap.String("api_url", cfg.APIURL),
		zap.String("credential_store", cfg.CredentialStore))
	return a, nil
}

func (a *app) openStore() (credential.Store, error) {
	switch a.cfg.CredentialStore {
	case config.CredentialStoreMemory:
		return credential.NewMemoryStore(), nil
	case config.CredentialStoreRedis:
		rdb := redis.NewClient(&redis.Options{Addr: a.cfg.RedisAddr, DB: a.cfg.RedisDB})
		a.closers = append(a.closers, rdb.Close)
		return credential.NewRedisStore(rdb, a.cfg.RedisKeyPrefix), nil
	default:
		return credential.NewFileStoreFs(fsys, a.cfg.CredentialFile), nil
	}
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Debug("close failed", zap.Error(err))
		}
	}
}

// withApp builds the app for a command and tears it down afterwards.
func withApp(run func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd.Context(), a, args)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dms",
		Short:         "Command-line client for the document management system",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", config.EnvOrDefault("DMS_ENV_FILE", ".env"), "Path to a .env file")
	root.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (overrides DMS_API_URL)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")
	root.PersistentFlags().StringVar(&storeKind, "credential-store", "", "Credential store: file, redis or memory")

	root.AddCommand(
		newLoginCmd(), newRegisterCmd(), newLogoutCmd(), newWhoamiCmd(),
		newDocsCmd(), newCounterpartiesCmd(), newAnalyticsCmd(),
		newSettingsCmd(), newStorageCmd(), newChatCmd(),
	)
	return root
}

func main() {
	color.NoColor = color.NoColor || config.EnvBoolOrDefault("DMS_NO_COLOR", false)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "Error: %s\n", async.ErrorMessage(err))
		stop()
		osExit(1)
	}
}
