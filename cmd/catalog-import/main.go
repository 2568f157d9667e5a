// Command catalog-import validates a YAML module catalog and upserts it into
// PostgreSQL so servers running with LEARN_CATALOG_SOURCE=postgres can serve
// it.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/p-n-ai/pai-quest/internal/curriculum"
	"github.com/p-n-ai/pai-quest/internal/platform/config"
	"github.com/p-n-ai/pai-quest/internal/platform/database"
	"github.com/p-n-ai/pai-quest/internal/platform/logging"
)

// Config holds importer settings.
type Config struct {
	Dir         string
	DatabaseURL string
	DryRun      bool
}

// ModuleWriter stores a module and reports whether it changed.
type ModuleWriter interface {
	PutModule(ctx context.Context, m curriculum.Module) (bool, error)
}

func main() {
	slog.SetDefault(logging.New(os.Stderr, "info", "text"))

	cfg, err := ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		slog.Error("invalid arguments", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := Run(ctx, cfg, os.Stdout); err != nil {
		slog.Error("import failed", "error", err)
		os.Exit(1)
	}
}

// ParseConfig reads flags. The database URL defaults to LEARN_DATABASE_URL.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	defaults, err := config.Load()
	if err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.Dir, "dir", defaults.Catalog.Path, "directory containing module and skill YAML files")
	fs.StringVar(&cfg.DatabaseURL, "database-url", defaults.Database.URL, "PostgreSQL connection URL")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "validate without writing to the database")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.Dir) == "" {
		return Config{}, errors.New("dir is required")
	}
	if !cfg.DryRun && strings.TrimSpace(cfg.DatabaseURL) == "" {
		return Config{}, errors.New("database-url is required unless -dry-run is set")
	}
	return cfg, nil
}

// Run loads the catalog and writes it to the database.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	catalog, err := curriculum.LoadDir(cfg.Dir)
	if err != nil {
		return err
	}
	modules, err := catalog.ListModules(ctx)
	if err != nil {
		return err
	}

	if cfg.DryRun {
		fmt.Fprintf(out, "validated %d modules and %d skills\n", len(modules), len(catalog.Skills()))
		return nil
	}

	db, err := database.New(ctx, cfg.DatabaseURL, 2, 0)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}
	repo, err := curriculum.NewPostgresRepository(db.Pool)
	if err != nil {
		return err
	}
	return importModules(ctx, repo, modules, out)
}

func importModules(ctx context.Context, w ModuleWriter, modules []curriculum.Module, out io.Writer) error {
	changed := 0
	for _, m := range modules {
		ok, err := w.PutModule(ctx, m)
		if err != nil {
			return fmt.Errorf("import %s: %w", m.ID, err)
		}
		if ok {
			changed++
			slog.Info("module imported", "module_id", m.ID, "fingerprint", m.Fingerprint())
		}
	}
	fmt.Fprintf(out, "imported %d modules (%d changed, %d unchanged)\n", len(modules), changed, len(modules)-changed)
	return nil
}
