package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/jgivc/mediaindex/internal/adapter/fsadapter"
	"github.com/jgivc/mediaindex/internal/common"
	"github.com/jgivc/mediaindex/internal/config"
	"github.com/jgivc/mediaindex/internal/repository/publish"
	sindex "github.com/jgivc/mediaindex/internal/service/index"
	"github.com/jgivc/mediaindex/internal/storage/index"
	"github.com/spf13/afero"
)

type App struct {
	cfgPath   string
	cfg       *config.Config
	fs        afero.Fs
	lookupEnv func(string) (string, bool)
	out       io.Writer
	logOut    io.Writer
	log       *slog.Logger
}

func New(cfgPath string) *App {
	return &App{
		cfgPath:   cfgPath,
		fs:        afero.NewOsFs(),
		lookupEnv: os.LookupEnv,
		out:       os.Stdout,
		logOut:    os.Stderr,
	}
}

// Run builds every configured category index once.
func (a *App) Run(ctx context.Context) error {
	if a.cfg == nil {
		cfg, err := config.Load(a.cfgPath)
		if err != nil {
			return fmt.Errorf("cannot load config: %w", err)
		}
		a.cfg = cfg
	}

	log, err := newLogger(a.logOut, a.cfg.LogLevel)
	if err != nil {
		return err
	}
	a.log = log.With(slog.String("run_id", uuid.NewString()))

	categories, err := a.cfg.MediaCategories()
	if err != nil {
		return fmt.Errorf("cannot build categories: %w", err)
	}

	store := index.NewIndexStorageWithFS(a.fs, a.cfg.IndexDir(), a.log)
	if err := store.EnsureDir(); err != nil {
		return err
	}

	if a.skipped() {
		a.log.Info("Running in deployment environment, skip media index generation", slog.String("env", a.cfg.SkipEnv))
		fmt.Fprintf(a.out, "%s is set, skip media index generation\n", a.cfg.SkipEnv)

		return nil
	}

	var publisher sindex.IndexPublisher
	if a.cfg.Storage.Enabled() {
		s3, err := publish.NewS3Publisher(&a.cfg.Storage, a.log)
		if err != nil {
			return fmt.Errorf("cannot create publisher: %w", err)
		}
		publisher = s3
	}

	scanner := fsadapter.NewFSAdapterWithFS(a.fs, a.cfg.PublicDir, a.log)
	indexer := sindex.NewIndexService(scanner, store, publisher, a.cfg.Protection, a.log)

	results, err := indexer.Index(ctx, categories)
	if err != nil {
		return fmt.Errorf("cannot build index: %w", err)
	}

	for n, res := range results {
		fmt.Fprintf(a.out, "%d. %s -> %s: %s, scanned: %d, existing: %d\n",
			n+1, res.Category, res.FilePath, res.Action, res.ScannedCount, res.ExistingCount)
	}

	return nil
}

// skipped reports whether the deployment marker variable is set to a non-empty value.
func (a *App) skipped() bool {
	if a.cfg.SkipEnv == "" {
		return false
	}

	value, exists := a.lookupEnv(a.cfg.SkipEnv)

	return exists && value != ""
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	lo := &slog.HandlerOptions{}
	switch level {
	case config.LogLevelInfo:
		lo.Level = slog.LevelInfo
	case config.LogLevelWarn:
		lo.Level = slog.LevelWarn
	case config.LogLevelError:
		lo.Level = slog.LevelError
	case config.LogLevelDebug:
		lo.Level = slog.LevelDebug
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownLogLevel, level)
	}

	return slog.New(slog.NewTextHandler(w, lo)), nil
}
