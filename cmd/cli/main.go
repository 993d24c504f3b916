package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/mlotysz/hivebridge/internal/condenser"
	"github.com/mlotysz/hivebridge/internal/db"
	"github.com/mlotysz/hivebridge/internal/follows"
	"github.com/mlotysz/hivebridge/internal/logger"
	"github.com/mlotysz/hivebridge/internal/normalize"
)

func main() {
	godotenv.Load()

	log := logger.New()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "accounts":
		runAccounts(log)
	case "posts":
		runPosts(log)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Hivebridge CLI")
	fmt.Println("\nUsage:")
	fmt.Println("  cli <command> [options]")
	fmt.Println("\nCommands:")
	fmt.Println("  accounts  Fetch condenser-style account objects by name")
	fmt.Println("  posts     Fetch condenser-style post objects by id")
	fmt.Println("  help      Show this help message")
	fmt.Println("\nRun 'cli <command> -h' for more information on a command.")
}

func runAccounts(log zerolog.Logger) {
	fs := flag.NewFlagSet("accounts", flag.ExitOnError)
	names := fs.String("names", "", "Comma-separated account names")
	observer := fs.Int64("observer", 0, "Observer account id for follow context")
	dsn := fs.String("db", os.Getenv("DATABASE_URL"), "Postgres connection string (or set DATABASE_URL env)")
	fs.Parse(os.Args[2:])

	if *names == "" {
		log.Fatal().Msg("Error: --names is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	loader, pool := newLoader(ctx, log, *dsn)
	defer pool.Close()

	accounts, err := loader.LoadAccounts(ctx, splitNames(*names), *observer)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load accounts")
	}

	printJSON(log, accounts)
}

func runPosts(log zerolog.Logger) {
	fs := flag.NewFlagSet("posts", flag.ExitOnError)
	ids := fs.String("ids", "", "Comma-separated post ids")
	truncate := fs.Int("truncate-body", 0, "Truncate post bodies to N characters (0 keeps them whole)")
	dsn := fs.String("db", os.Getenv("DATABASE_URL"), "Postgres connection string (or set DATABASE_URL env)")
	fs.Parse(os.Args[2:])

	if *ids == "" {
		log.Fatal().Msg("Error: --ids is required")
	}

	postIDs, err := parseIDs(*ids)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid --ids value")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	loader, pool := newLoader(ctx, log, *dsn)
	defer pool.Close()

	posts, err := loader.LoadPosts(ctx, postIDs, *truncate)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load posts")
	}

	printJSON(log, posts)
}

func newLoader(ctx context.Context, log zerolog.Logger, dsn string) (*condenser.Loader, *pgxpool.Pool) {
	if dsn == "" {
		log.Fatal().Msg("No database configured - set -db or DATABASE_URL")
	}

	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}

	store := db.NewStore(pool)
	enricher := follows.NewEnricher(pool)
	loader := condenser.NewLoader(store, enricher, normalize.RepToRaw, normalize.ParseSBD, log)
	return loader, pool
}

func splitNames(raw string) []string {
	var names []string
	for _, name := range strings.Split(raw, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

func parseIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parseIDs: %q: %w", field, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func printJSON(log zerolog.Logger, v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode output")
	}
}
