package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/erp/stockledger/internal/infrastructure/config"
	"github.com/erp/stockledger/internal/infrastructure/logger"
	"github.com/erp/stockledger/internal/infrastructure/migration"
	"github.com/erp/stockledger/migrations"
)

const usage = `stockledger schema migrations

Usage:
  migrate [flags] <command> [argument]

Commands:
  up                Apply all pending migrations
  down              Roll back every migration
  steps <n>         Apply n migrations, negative n rolls back
  goto <version>    Migrate up or down to version
  version           Print the applied version
  force <version>   Mark version as applied (clears a dirty state)
  create <name>     Write an empty migration pair into --path
  list              List migrations in --path, or the embedded set

Flags:
`

func main() {
	flags := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	path := flags.StringP("path", "p", "", "migrations directory (default: embedded migrations)")
	logLevel := flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}
	args := flags.Args()
	if len(args) == 0 {
		flags.Usage()
		os.Exit(2)
	}

	log, err := logger.New(logger.Config{Level: *logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(args, *path, log); err != nil {
		log.Fatal("migrate failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func run(args []string, path string, log *zap.Logger) error {
	command := args[0]
	arg := ""
	if len(args) > 1 {
		arg = args[1]
	}

	switch command {
	case "create":
		if path == "" {
			path = "migrations"
		}
		if arg == "" {
			return errors.New("usage: migrate create <name>")
		}
		mf, err := migration.CreateMigration(path, arg)
		if err != nil {
			return err
		}
		log.Info("Migration created", zap.String("up", mf.UpPath), zap.String("down", mf.DownPath))
		return nil
	case "list":
		return list(path)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations target postgres, configured driver is %q", cfg.Database.Driver)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	var m *migration.Migrator
	if path != "" {
		m, err = migration.NewWithSource(db, os.DirFS(path), log)
	} else {
		m, err = migration.New(db, log)
	}
	if err != nil {
		return err
	}
	defer m.Close()

	switch command {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "steps":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("usage: migrate steps <n>: %w", err)
		}
		return m.Steps(n)
	case "goto":
		v, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return fmt.Errorf("usage: migrate goto <version>: %w", err)
		}
		return m.GoTo(uint(v))
	case "version":
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("Current migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
		return nil
	case "force":
		v, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("usage: migrate force <version>: %w", err)
		}
		return m.Force(v)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func list(path string) error {
	var (
		files []migration.MigrationFile
		err   error
	)
	if path == "" {
		files, err = migration.ListMigrations(migrations.FS)
	} else {
		files, err = migration.ListMigrations(os.DirFS(path))
	}
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Println(f.BaseName())
	}
	return nil
}
