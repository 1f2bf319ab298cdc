package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MarcoPoloResearchLab/dagbok/internal/config"
	"github.com/MarcoPoloResearchLab/dagbok/internal/database"
	"github.com/MarcoPoloResearchLab/dagbok/internal/journal"
	"github.com/MarcoPoloResearchLab/dagbok/internal/logging"
	"github.com/MarcoPoloResearchLab/dagbok/internal/server"
	"github.com/MarcoPoloResearchLab/dagbok/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	cfgFile string
)

func main() {
	rootCmd := newRootCommand()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "dagbok",
		Short: "Daily mood journal",
		Long:  "Dagbok records one mood score and thought per day. Without a subcommand it serves the JSON API.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
		SilenceUsage: true,
	}

	setupFlags(rootCmd)
	rootCmd.AddCommand(
		newTodayCommand(),
		newSaveCommand(),
		newClearCommand(),
		newHistoryCommand(),
		newThoughtCommand(),
		newExportCommand(),
		newImportCommand(),
	)
	return rootCmd
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("database-path", defaults.GetString("database.path"), "SQLite database path")
	cmd.PersistentFlags().String("storage-key", defaults.GetString("storage.key"), "Namespace key the journal is stored under")
	cmd.PersistentFlags().Int("history-limit", defaults.GetInt("history.limit"), "Number of days shown in history")
	cmd.PersistentFlags().String("timezone", defaults.GetString("journal.timezone"), "IANA time zone for the daily date key (default: system local)")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.path", "database-path")
	bindFlag(cmd, "storage.key", "storage-key")
	bindFlag(cmd, "history.limit", "history-limit")
	bindFlag(cmd, "journal.timezone", "timezone")
	bindFlag(cmd, "log.level", "log-level")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

// app bundles what every command needs; close releases the database.
type app struct {
	config  config.AppConfig
	logger  *zap.Logger
	db      *gorm.DB
	journal *journal.Store
}

func openRuntime(console bool) (*app, error) {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel, console)
	if err != nil {
		return nil, err
	}

	db, err := database.OpenSQLite(appConfig.DatabasePath, logger)
	if err != nil {
		logger.Sync() //nolint:errcheck
		return nil, err
	}
	rt := &app{config: appConfig, logger: logger, db: db}

	backend, err := storage.NewKeyValueStore(db, time.Now)
	if err != nil {
		rt.close()
		return nil, err
	}

	store, err := journal.NewStore(journal.StoreConfig{
		Backend:   backend,
		Namespace: appConfig.StorageKey,
		Clock:     time.Now,
		Location:  appConfig.Location,
		Logger:    logger,
	})
	if err != nil {
		rt.close()
		return nil, err
	}
	rt.journal = store

	return rt, nil
}

func (r *app) close() {
	if sqlDB, err := r.db.DB(); err == nil {
		sqlDB.Close()
	}
	r.logger.Sync() //nolint:errcheck
}

func runServer(ctx context.Context) error {
	rt, err := openRuntime(false)
	if err != nil {
		return err
	}
	defer rt.close()

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Journal:      rt.journal,
		HistoryLimit: rt.config.HistoryLimit,
		Logger:       rt.logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              rt.config.HTTPAddress,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		rt.logger.Info("server starting",
			zap.String("address", rt.config.HTTPAddress),
			zap.String("storage_key", rt.config.StorageKey))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// withRuntime runs fn against a freshly opened store with console logging.
func withRuntime(fn func(ctx context.Context, rt *app, out io.Writer, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(true)
		if err != nil {
			return err
		}
		defer rt.close()
		return fn(cmd.Context(), rt, cmd.OutOrStdout(), args)
	}
}

func printEntryLine(out io.Writer, dateText string, entry journal.Entry) {
	fmt.Fprintf(out, "%s  %s · %g\n  %s\n", dateText, journal.MoodLabel(entry.Mood), entry.Mood, entry.Thought)
}
