// Command migrate applies or rolls back the ledger schema.
//
//	migrate [-config path] up|down|version
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-config path] up|down|version\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	if err := run(cfg.DB, flag.Arg(0)); err != nil {
		slog.Error("Migration failed", "command", flag.Arg(0), "error", err)
		os.Exit(1)
	}
}

func run(cfg config.DBConfig, command string) error {
	db, err := sqlite.Open(cfg)
	if err != nil {
		return err
	}
	mg, err := sqlite.NewMigrator(db.DB)
	if err != nil {
		db.Close()
		return err
	}
	// Closing the migrator closes db as well.
	defer mg.Close()

	switch command {
	case "up":
		err = mg.Up()
	case "down":
		err = mg.Down()
	case "version":
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	if err != nil {
		return err
	}

	version, dirty, err := mg.Version()
	if err != nil {
		return err
	}
	slog.Info("Schema version", "database", cfg.Path, "version", version, "dirty", dirty)
	return nil
}
