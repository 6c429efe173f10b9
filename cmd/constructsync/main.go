package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/constructsync/dashboard/internal/api"
	"github.com/constructsync/dashboard/internal/cache"
	"github.com/constructsync/dashboard/internal/config"
	"github.com/constructsync/dashboard/internal/logger"
	"github.com/constructsync/dashboard/internal/session"
	"github.com/constructsync/dashboard/internal/storage"
	"github.com/constructsync/dashboard/internal/tui"
	"github.com/constructsync/dashboard/internal/tui/screens"
	"github.com/constructsync/dashboard/internal/wizard"
)

// env is everything a command needs once config and storage are open.
type env struct {
	cfg     *config.Config
	store   storage.Store
	client  *api.Client
	data    *api.Collections
	session *session.State
	wizard  *wizard.Wizard
	log     io.Closer
}

func (e *env) Close() {
	if e.store != nil {
		e.store.Close()
	}
	if e.log != nil {
		e.log.Close()
	}
}

// setup loads config and opens the local store. Logs go to the log file when
// toFile is set, otherwise to stdout.
func setup(ctx context.Context, toFile bool) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := config.EnsureDirectories(); err != nil {
		return nil, err
	}

	logPath := ""
	if toFile {
		if logPath, err = config.LogPath(); err != nil {
			return nil, err
		}
	}
	closer, err := logger.Setup(cfg.LogLevel, logPath)
	if err != nil {
		return nil, fmt.Errorf("opening log: %w", err)
	}

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		closer.Close()
		return nil, fmt.Errorf("opening %s store: %w", cfg.Store, err)
	}

	state, err := session.Load(ctx, store)
	if err != nil {
		store.Close()
		closer.Close()
		return nil, err
	}

	client := api.New(cfg.APIURL,
		api.WithTimeout(cfg.RequestTimeout.Duration),
		api.WithSessionCookie(cfg.SessionCookie),
	)
	c := cache.New(
		cache.WithStaleAfter(cfg.StaleAfter.Duration),
		cache.WithRetries(cfg.RetryCount, 500*time.Millisecond),
	)

	return &env{
		cfg:     cfg,
		store:   store,
		client:  client,
		data:    api.NewCollections(client, c),
		session: state,
		wizard:  wizard.New(store, client, wizard.WithInvalidator(c)),
		log:     closer,
	}, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

var rootCmd = &cobra.Command{
	Use:   "constructsync",
	Short: "Construction management dashboard",
	Long:  `ConstructSync shows jobs, crews, variations, timesheets and safety records from the ConstructSync API.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signalContext()
		defer stop()

		e, err := setup(ctx, true)
		if err != nil {
			fail("Error: %v", err)
		}
		defer e.Close()

		if err := e.wizard.Load(ctx); err != nil {
			logger.WithContext(ctx).WithError(err).Warn("could not restore job drafts")
		}

		deps := &screens.Deps{
			Data:       e.data,
			Session:    e.session,
			Wizard:     e.wizard,
			ReportsDir: e.cfg.ReportsOutput,
			Now:        time.Now,
		}
		if err := tui.Run(ctx, deps); err != nil {
			fail("Error: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(proxyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(draftsCmd)
	rootCmd.AddCommand(dbCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
