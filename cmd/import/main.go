package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	"github.com/lexibot/word-of-the-day-bot/internal/dal"
	sqlrepo "github.com/lexibot/word-of-the-day-bot/internal/dal/sql"
	"github.com/lexibot/word-of-the-day-bot/internal/data"
	"github.com/lexibot/word-of-the-day-bot/internal/words"
)

var (
	source string
	dbPath string
)

func main() {
	flag.StringVar(&source, "source", "", "path to a word list file")
	flag.StringVar(&dbPath, "db", "wotd.db", "path to the sqlite database")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	if source == "" {
		fmt.Println("-source is required")
		os.Exit(1)
	}

	f, err := os.Open(source)
	if err != nil {
		fmt.Printf("failed to open source file: %v\n", err)
		os.Exit(1)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		fmt.Printf("failed to open database: %v\n", err)
		os.Exit(2)
	}
	defer db.Close()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	repo := sqlrepo.NewRepository(ctx, db, log)
	if err := repo.Bootstrap(ctx); err != nil {
		fmt.Printf("failed to bootstrap database: %v\n", err)
		os.Exit(2)
	}
	wordSource := words.NewSource(repo, log)

	entries := make(chan dal.WordEntry)
	imported := 0

	// invalid lines are reported after the valid ones are stored, they must
	// not cancel the group
	var parsingErr *data.ParsingError

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := data.Parse(gCtx, f, entries)
		if errors.As(err, &parsingErr) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		for entry := range entries {
			stored, err := wordSource.Append(gCtx, entry)
			if err != nil {
				return fmt.Errorf("append %q: %w", entry.Word, err)
			}
			imported++
			fmt.Printf("%s: %s\n", stored.Date, stored.Word)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		fmt.Printf("import failed: %v\n", err)
		os.Exit(3)
	}
	if parsingErr != nil {
		fmt.Printf("skipped invalid lines: %v\n", parsingErr.InvalidLines)
	}

	fmt.Printf("done, imported %d words\n", imported)
}
