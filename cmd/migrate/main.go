package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog"
	"github.com/sysocial/sysocial-backend/internal/config"
	"github.com/sysocial/sysocial-backend/internal/logger"
)

func main() {
	var dir string
	flag.StringVar(&dir, "path", "migrations", "directory holding the *.up.sql/*.down.sql files")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()
	log := logger.Setup("migrate", cfg.LogLevel, cfg.LogFormat)

	m, err := migrate.New("file://"+dir, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("path", dir).Msg("Failed to initialise migrations")
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if err := errors.Join(srcErr, dbErr); err != nil {
			log.Warn().Err(err).Msg("Closing migrate")
		}
	}()

	if err := run(m, args, log); err != nil {
		log.Error().Err(err).Str("command", args[0]).Msg("Migration failed")
		os.Exit(1)
	}
}

func run(m *migrate.Migrate, args []string, log zerolog.Logger) error {
	switch args[0] {
	case "up":
		return report(m, m.Up(), log)
	case "down":
		return report(m, m.Down(), log)
	case "steps":
		n, err := intArg(args)
		if err != nil {
			return err
		}
		return report(m, m.Steps(n), log)
	case "force":
		v, err := intArg(args)
		if err != nil {
			return err
		}
		return report(m, m.Force(v), log)
	case "version":
		return report(m, migrate.ErrNoChange, log)
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// report logs the schema version after a command. ErrNoChange is not a failure.
func report(m *migrate.Migrate, cmdErr error, log zerolog.Logger) error {
	if cmdErr != nil && !errors.Is(cmdErr, migrate.ErrNoChange) {
		return cmdErr
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info().Msg("No migrations applied")
		return nil
	case err != nil:
		return err
	}
	log.Info().
		Uint("version", version).
		Bool("dirty", dirty).
		Bool("changed", cmdErr == nil).
		Msg("Schema version")
	return nil
}

func intArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("%s requires a number", args[0])
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", args[1], err)
	}
	return n, nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: migrate [-path dir] <up|down|steps N|force V|version>")
	flag.PrintDefaults()
}
